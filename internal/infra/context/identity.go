package context

import (
	"context"
)

const contextKeyIdentity = contextKey("identity")

// IdentityFromContext extracts the claimed user identity from the context.
// The identity is informational only; it is never verified locally.
func IdentityFromContext(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(contextKeyIdentity).(string)

	return identity, ok && identity != ""
}

// WithIdentity creates a new context carrying the given user identity.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, contextKeyIdentity, identity)
}
