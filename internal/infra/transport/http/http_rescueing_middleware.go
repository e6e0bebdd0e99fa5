package http

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/mkrupp/mailosaurus-admin/internal/infra/logging"
)

// RescueingMiddleware recovers from handler panics. The panic is logged with its
// stack and, when nothing was written yet, answered with 500. http.ErrAbortHandler,
// which the reverse proxy raises when a client goes away mid-body, is passed on
// untouched so the server aborts the connection quietly.
func RescueingMiddleware(next http.Handler, metrics *Metrics, log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := NewResponseRecorder(w)

		defer func() {
			p := recover()
			if p == nil {
				return
			}

			if err, ok := p.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(p)
			}

			if metrics != nil {
				metrics.panics.Inc()
			}

			log.ErrorContext(r.Context(), "request panic",
				slog.Group("http", "path", r.URL.Path, "method", r.Method),
				slog.Group("error", "panic", p, "stack", string(debug.Stack())),
			)

			if !rec.wroteHeader {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(rec, r)
	})
}
