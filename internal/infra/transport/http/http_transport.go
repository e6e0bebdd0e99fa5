package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mkrupp/mailosaurus-admin/internal/infra/logging"
)

// MetricsPath is where the metrics handler is mounted when metrics are enabled.
const MetricsPath = "/metrics"

// HTTPTransportConfig contains configuration parameters for HTTP servers.
type HTTPTransportConfig struct {
	// ServerAddr is the network address to listen on
	ServerAddr string `env:"SERVER_ADDR" default:":8080"`
	// ReadHeaderTimeout is the timeout for reading request headers
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" default:"5s"`

	ReadTimeout  time.Duration `env:"READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" default:"120s"`

	// ShutdownTimeout bounds the graceful shutdown once the context is done
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Metrics enables the Prometheus endpoint
	Metrics bool `env:"METRICS" default:"true"`
}

// HTTPTransport defines the interface for HTTP handlers that can serve requests.
type HTTPTransport interface {
	http.Handler
}

// HTTPHandlerFunc converts an HTTPTransport into a standard http.HandlerFunc.
// This allows using HTTPTransport implementations with standard HTTP middleware.
func HTTPHandlerFunc(handler HTTPTransport) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}
}

// Handler wraps handler with the standard middleware stack: panic recovery,
// identity, logging, metrics and tracing (outermost). With metrics set, the
// metrics endpoint is mounted at MetricsPath, outside of the metrics middleware.
func Handler(handler HTTPTransport, metrics *Metrics, log logging.Logger) http.Handler {
	var wrapped http.Handler = handler

	wrapped = RescueingMiddleware(wrapped, metrics, log)
	wrapped = IdentityMiddleware(wrapped)

	if metrics != nil {
		wrapped = MetricsMiddleware(wrapped, metrics)

		mux := http.NewServeMux()
		mux.Handle(MetricsPath, metrics.Handler())
		mux.Handle("/", wrapped)
		wrapped = mux
	}

	wrapped = LoggingMiddleware(wrapped, log)
	wrapped = TracingMiddleware(wrapped)

	return wrapped
}

// ListenAndServe starts an HTTP server with the given handler and configuration.
// It sets up the standard middleware (see Handler) and shuts the server down
// gracefully when ctx is done.
// Returns an error if the server fails to start or encounters an error while running.
func ListenAndServe(ctx context.Context, handler HTTPTransport, cfg HTTPTransportConfig, namespace string) (err error) {
	log := logging.GetLogger("infra.transport.http")

	var metrics *Metrics
	if cfg.Metrics {
		metrics = NewMetrics(namespace)
	}

	//nolint:exhaustruct
	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           Handler(handler, metrics, log),
		ErrorLog:          logging.GetLogLogger(log, logging.LevelError),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	defer server.Close()

	sock, err := net.Listen("tcp", cfg.ServerAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer sock.Close()

	log.InfoContext(ctx, "listening", "addr", sock.Addr().String(), "metrics", cfg.Metrics)

	stopped := make(chan struct{})
	shutdown := make(chan struct{})

	go func() {
		defer close(shutdown)

		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(ctx, "shutdown failed", "error", err)
		}
	}()

	err = server.Serve(sock)
	close(stopped)
	<-shutdown

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	log.InfoContext(ctx, "server stopped")

	return nil
}
