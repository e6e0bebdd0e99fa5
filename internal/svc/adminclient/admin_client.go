package adminclient

import (
	"context"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
)

// AdminClient defines the request façade of the management API.
// Every call reads the credential once, at send time.
type AdminClient interface {
	// Get issues an authenticated GET request.
	Get(ctx context.Context, path string) domain.Envelope[Payload]

	// Post issues an authenticated POST request. See NewRequestBody for the accepted body types.
	Post(ctx context.Context, path string, body any) domain.Envelope[Payload]

	// Delete issues an authenticated DELETE request.
	Delete(ctx context.Context, path string, body any) domain.Envelope[Payload]

	// Login exchanges identity and secret for a session token and stores it.
	// A non-empty otp is sent as the one-time code.
	Login(ctx context.Context, identity, secret, otp string) domain.Envelope[domain.LoginResult]

	// Logout forgets the stored session without contacting the backend.
	Logout(ctx context.Context) error

	// IsAuthenticated reports whether a credential is stored. The token is not validated.
	IsAuthenticated() bool
}

// Session is the credential holder the client reads from and writes to.
type Session interface {
	Current() (domain.Credential, bool)
	Save(ctx context.Context, identity, token string) error
	Clear(ctx context.Context) error
}

// PrivilegeStore caches the privileges reported at login.
type PrivilegeStore interface {
	Save(ctx context.Context, privileges []string) error
	Clear(ctx context.Context) error
}
