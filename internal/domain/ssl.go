package domain

// SSLDomain is the certificate state of one domain.
type SSLDomain struct {
	Domain string `json:"domain"`
	Status string `json:"status"`
	Text   string `json:"text"`
}

// SSLStatus is returned by the certificate status endpoint.
type SSLStatus struct {
	CanProvision StringList  `json:"can_provision"`
	Status       []SSLDomain `json:"status"`
}

// CertificateInstall holds the form fields of the install-certificate operation.
type CertificateInstall struct {
	Domain string
	Cert   string
	Chain  string
}
