package domain

// WebDomain is a domain served by the static web server.
type WebDomain struct {
	Domain         string     `json:"domain"`
	Root           string     `json:"root"`
	CustomRoot     string     `json:"custom_root"`
	SSLCertificate StringList `json:"ssl_certificate"`
}
