package domain

import "errors"

var (
	// ErrInvalidCredential is returned when a credential is missing its identity or token.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrNoCredential is returned when an operation requires a session but none is stored.
	ErrNoCredential = errors.New("no credential")
)

// Credential is the identity/token pair attached to authenticated requests.
type Credential struct {
	Identity string // User email
	Token    string // Opaque session key issued by the backend
}

// Valid reports whether both halves of the credential are set.
func (c Credential) Valid() bool {
	return c.Identity != "" && c.Token != ""
}

// LoginResult is returned by a successful login exchange.
type LoginResult struct {
	Status     string   `json:"status"`
	Identity   string   `json:"email"`
	Token      string   `json:"api_key"`
	Privileges []string `json:"privileges"`
}

// IsAdmin reports whether the privilege list contains "admin".
func (r LoginResult) IsAdmin() bool {
	return HasPrivilege(r.Privileges, PrivilegeAdmin)
}
