package proxysvc_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	. "github.com/mkrupp/mailosaurus-admin/internal/svc/proxysvc"
)

func newTestTransport(t *testing.T, backendURL string) *HTTPTransport {
	t.Helper()

	static := fstest.MapFS{
		"index.html":    {Data: []byte("<html>app</html>")},
		"assets/app.js": {Data: []byte("console.log(1)")},
	}

	ht, err := NewHTTPTransport(HTTPTransportConfig{
		BackendURL: backendURL,
		APIPrefix:  "/admin/",
		IndexFile:  "index.html",
	}, static)
	if err != nil {
		t.Fatalf("failed to create transport: %v", err)
	}

	return ht
}

func TestHTTPTransport_Proxy(t *testing.T) {
	t.Parallel()

	type seen struct {
		path, query, auth, traceID, body string
	}

	received := make(chan seen, 1)

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- seen{
			path:    r.URL.Path,
			query:   r.URL.RawQuery,
			auth:    r.Header.Get("Authorization"),
			traceID: r.Header.Get("X-Request-ID"),
			body:    string(body),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	}))
	t.Cleanup(backend.Close)

	proxy := httptest.NewServer(newTestTransport(t, backend.URL))
	t.Cleanup(proxy.Close)

	req, _ := http.NewRequest(http.MethodPost, proxy.URL+"/admin/mail/users?format=json", nil)
	req.SetBasicAuth("admin@example.com", "T")
	req.Header.Set("X-Request-ID", "trace-1")

	resp, err := proxy.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated || string(body) != `{"status":"ok"}` {
		t.Errorf("unexpected response %d %q", resp.StatusCode, body)
	}

	got := <-received
	if got.path != "/admin/mail/users" || got.query != "format=json" {
		t.Errorf("backend saw %s?%s", got.path, got.query)
	}

	if got.auth == "" || got.traceID != "trace-1" {
		t.Errorf("headers not forwarded: %+v", got)
	}
}

func TestHTTPTransport_BackendDown(t *testing.T) {
	t.Parallel()

	backend := httptest.NewServer(http.NotFoundHandler())
	backend.Close()

	proxy := httptest.NewServer(newTestTransport(t, backend.URL))
	t.Cleanup(proxy.Close)

	resp, err := proxy.Client().Get(proxy.URL + "/admin/system/status")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

func TestHTTPTransport_Static(t *testing.T) {
	t.Parallel()

	ht := newTestTransport(t, "http://localhost:10222")

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "asset", path: "/assets/app.js", wantStatus: http.StatusOK, wantBody: "console.log(1)"},
		{name: "root", path: "/", wantStatus: http.StatusOK, wantBody: "<html>app</html>"},
		{name: "client side route", path: "/users", wantStatus: http.StatusOK, wantBody: "<html>app</html>"},
		{name: "health", path: "/healthz", wantStatus: http.StatusOK, wantBody: "ok\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			ht.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus || rec.Body.String() != tt.wantBody {
				t.Errorf("GET %s = %d %q, want %d %q", tt.path, rec.Code, rec.Body.String(), tt.wantStatus, tt.wantBody)
			}
		})
	}
}

func TestNewHTTPTransport_InvalidBackend(t *testing.T) {
	t.Parallel()

	for _, backendURL := range []string{"", "localhost:10222", "ftp://box", "http://"} {
		_, err := NewHTTPTransport(HTTPTransportConfig{BackendURL: backendURL, APIPrefix: "/admin/"}, fstest.MapFS{})
		if !errors.Is(err, ErrInvalidBackendURL) {
			t.Errorf("%q: want ErrInvalidBackendURL, got %v", backendURL, err)
		}
	}
}
