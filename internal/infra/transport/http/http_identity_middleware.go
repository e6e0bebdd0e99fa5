package http

import (
	"net/http"

	context_ "github.com/mkrupp/mailosaurus-admin/internal/infra/context"
)

// IdentityMiddleware creates middleware that records the claimed identity of
// Basic-authenticated requests in the request context.
// Nothing is validated here and no request is rejected; the upstream stays the
// authority and the identity only enriches logs.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, _, ok := r.BasicAuth(); ok && identity != "" {
			r = r.WithContext(context_.WithIdentity(r.Context(), identity))
		}

		next.ServeHTTP(w, r)
	})
}
