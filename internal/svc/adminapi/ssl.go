package adminapi

import (
	"context"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
	"github.com/mkrupp/mailosaurus-admin/internal/svc/adminclient"
)

const (
	sslStatusPath    = "/ssl/status"
	sslProvisionPath = "/ssl/provision"
	sslInstallPath   = "/ssl/install"
	sslCSRPath       = "/ssl/csr"
)

// SSLStatus returns the certificate state of every domain.
func (a *API) SSLStatus(ctx context.Context) domain.Envelope[domain.SSLStatus] {
	return domain.MapEnvelope(
		adminclient.Decode[domain.SSLStatus](a.client.Get(ctx, sslStatusPath)),
		func(status domain.SSLStatus) (domain.SSLStatus, error) {
			if status.CanProvision == nil {
				status.CanProvision = domain.StringList{}
			}

			if status.Status == nil {
				status.Status = []domain.SSLDomain{}
			}

			return status, nil
		},
	)
}

// ProvisionSSL requests certificates for every domain that can be provisioned.
// The answer is returned as received.
func (a *API) ProvisionSSL(ctx context.Context) domain.Envelope[string] {
	return adminclient.Text(a.client.Post(ctx, sslProvisionPath, nil))
}

// InstallCertificate installs a PEM certificate and chain for a domain.
func (a *API) InstallCertificate(ctx context.Context, install domain.CertificateInstall) domain.Envelope[string] {
	form := adminclient.NewForm().
		Add("domain", install.Domain).
		Add("cert", install.Cert).
		Add("chain", install.Chain)

	return adminclient.Text(a.client.Post(ctx, sslInstallPath, form))
}

// GenerateCSR returns a PEM certificate signing request for domain.
func (a *API) GenerateCSR(ctx context.Context, domainName, countryCode string) domain.Envelope[string] {
	form := adminclient.NewForm().Add("countrycode", countryCode)

	return adminclient.Text(a.client.Post(ctx, endpoint(sslCSRPath, domainName), form))
}
