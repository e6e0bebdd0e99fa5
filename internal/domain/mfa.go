package domain

// MFADevice is an enabled second factor.
type MFADevice struct {
	ID      FlexString `json:"id"`
	Type    string     `json:"type"`
	Label   string     `json:"label"`
	Created string     `json:"created"`
}

// TOTPProvisioning is a freshly generated TOTP secret offered by the backend.
type TOTPProvisioning struct {
	Secret          string `json:"secret"`
	QRCodeURL       string `json:"qr_code_url"`
	QRCodeBase64    string `json:"qr_code_base64"`
	ProvisioningURI string `json:"provisioning_uri"`
}

// MFAStatus is returned by the MFA status endpoint.
type MFAStatus struct {
	EnabledMFA []MFADevice `json:"enabled_mfa"`
	NewMFA     *struct {
		TOTP *TOTPProvisioning `json:"totp"`
	} `json:"new_mfa"`
}

// Provisioning returns the offered TOTP secret, if any.
func (s MFAStatus) Provisioning() (TOTPProvisioning, bool) {
	if s.NewMFA == nil || s.NewMFA.TOTP == nil {
		return TOTPProvisioning{}, false
	}

	return *s.NewMFA.TOTP, true
}
