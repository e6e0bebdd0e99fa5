package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mkrupp/mailosaurus-admin/internal/infra/logging"
)

// LoggingMiddleware logs every request at debug and its response at a level
// following the status: error for 5xx, warn for 4xx, info otherwise.
// Only the path is logged since query strings may carry secrets.
func LoggingMiddleware(next http.Handler, log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		log.DebugContext(ctx, "request", slog.Group("http",
			"path", r.URL.Path,
			"method", r.Method,
			"remote", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		))

		rec := NewResponseRecorder(w)
		next.ServeHTTP(rec, r)

		log.Log(ctx, levelForStatus(rec.StatusCode), "response", slog.Group("http",
			"path", r.URL.Path,
			"method", r.Method,
			"status", rec.StatusCode,
			"bytes_sent", rec.BytesSent,
			"duration", time.Since(start),
		))
	})
}

func levelForStatus(code int) logging.Level {
	switch {
	case code >= http.StatusInternalServerError:
		return logging.LevelError
	case code >= http.StatusBadRequest:
		return logging.LevelWarn
	default:
		return logging.LevelInfo
	}
}
