package adminapi

import (
	"context"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
	"github.com/mkrupp/mailosaurus-admin/internal/svc/adminclient"
)

const (
	mfaStatusPath     = "/mfa/status"
	mfaTOTPEnablePath = "/mfa/totp/enable"
	mfaDisablePath    = "/mfa/disable"
)

// MFAStatus lists the enabled second factors and offers a new TOTP secret.
func (a *API) MFAStatus(ctx context.Context) domain.Envelope[domain.MFAStatus] {
	return domain.MapEnvelope(
		adminclient.Decode[domain.MFAStatus](a.client.Post(ctx, mfaStatusPath, nil)),
		func(status domain.MFAStatus) (domain.MFAStatus, error) {
			if status.EnabledMFA == nil {
				status.EnabledMFA = []domain.MFADevice{}
			}

			return status, nil
		},
	)
}

// EnableTOTP confirms the offered secret with a code generated from it.
func (a *API) EnableTOTP(ctx context.Context, secret, token, label string) domain.Envelope[string] {
	form := adminclient.NewForm().
		Add("secret", secret).
		Add("token", token).
		Add("label", label)

	return adminclient.Text(a.client.Post(ctx, mfaTOTPEnablePath, form))
}

// DisableMFA removes the second factor with the given id.
func (a *API) DisableMFA(ctx context.Context, id string) domain.Envelope[string] {
	form := adminclient.NewForm().Add("mfa-id", id)

	return adminclient.Text(a.client.Post(ctx, mfaDisablePath, form))
}
