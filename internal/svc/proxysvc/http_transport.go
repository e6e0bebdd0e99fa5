package proxysvc

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/http/httputil"
	"net/url"
	"path"
	"strings"

	"github.com/mkrupp/mailosaurus-admin/internal/infra/logging"
	http_ "github.com/mkrupp/mailosaurus-admin/internal/infra/transport/http"
)

// ErrInvalidBackendURL is returned when the backend URL is not an absolute http(s) URL.
var ErrInvalidBackendURL = errors.New("invalid backend url")

// HTTPTransportConfig contains configuration parameters for the dashboard server.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig

	// BackendURL is the appliance the API prefix is forwarded to; the request path is kept
	BackendURL string `env:"BACKEND_URL" default:"http://localhost:10222"`

	// APIPrefix is the path prefix forwarded to the backend
	APIPrefix string `env:"API_PREFIX" default:"/admin/"`

	// StaticDir holds the built dashboard bundle
	StaticDir string `env:"STATIC_DIR" default:"dist"`

	// IndexFile is served for paths that match no static file
	IndexFile string `env:"INDEX_FILE" default:"index.html"`
}

// HTTPTransport serves the dashboard bundle and forwards API calls to the backend.
type HTTPTransport struct {
	handler http.Handler
	static  fs.FS
	files   http.Handler
	log     logging.Logger
	cfg     HTTPTransportConfig
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport serving static files from static.
// Returns ErrInvalidBackendURL if the backend URL cannot be used.
func NewHTTPTransport(cfg HTTPTransportConfig, static fs.FS) (*HTTPTransport, error) {
	log := logging.GetLogger("svc.proxysvc.http_transport")

	backend, err := url.Parse(cfg.BackendURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBackendURL, err)
	} else if (backend.Scheme != "http" && backend.Scheme != "https") || backend.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBackendURL, cfg.BackendURL)
	}

	ht := &HTTPTransport{
		static: static,
		files:  http.FileServerFS(static),
		log:    log,
		cfg:    cfg,
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.APIPrefix, ht.newReverseProxy(backend))
	mux.HandleFunc("GET /healthz", ht.HandleHealth)
	mux.HandleFunc("/", ht.HandleStatic)
	ht.handler = mux

	log.Debug("proxy configured", "backend", backend.Redacted(), "prefix", cfg.APIPrefix)

	return ht, nil
}

// ServeHTTP implements http.Handler with the following routes:
// - <APIPrefix>...: forwarded to the backend
// - GET /healthz: liveness probe
// - /...: static files, falling back to the index file.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.handler.ServeHTTP(w, r)
}

func (ht *HTTPTransport) newReverseProxy(backend *url.URL) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(backend)
			r.SetXForwarded()

			if traceID := r.In.Header.Get(http_.TraceIDHeader); traceID != "" {
				r.Out.Header.Set(http_.TraceIDHeader, traceID)
			}
		},
		ErrorLog: logging.GetLogLogger(ht.log, logging.LevelError),
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			ht.log.ErrorContext(r.Context(), "proxy request failed", "path", r.URL.Path, "error", err)
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		},
	}
}

// HandleHealth answers liveness probes.
func (ht *HTTPTransport) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

// HandleStatic serves a file of the bundle. Unknown paths get the index file,
// so client side routes survive a reload.
func (ht *HTTPTransport) HandleStatic(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = "."
	}

	if _, err := fs.Stat(ht.static, name); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			ht.log.ErrorContext(r.Context(), "stat static file failed", "name", name, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

			return
		}

		if _, err := fs.Stat(ht.static, ht.cfg.IndexFile); err != nil {
			http.NotFound(w, r)

			return
		}

		http.ServeFileFS(w, r, ht.static, ht.cfg.IndexFile)

		return
	}

	ht.files.ServeHTTP(w, r)
}
