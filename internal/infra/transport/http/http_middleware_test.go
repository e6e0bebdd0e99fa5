package http_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	context_ "github.com/mkrupp/mailosaurus-admin/internal/infra/context"
	"github.com/mkrupp/mailosaurus-admin/internal/infra/logging"

	. "github.com/mkrupp/mailosaurus-admin/internal/infra/transport/http"
)

func TestTracingMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
	}{
		{name: "keeps incoming request id", header: "incoming-id"},
		{name: "generates request id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seen, forwarded string

			handler := TracingMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen, _ = context_.TraceIDFromContext(r.Context())
				forwarded = r.Header.Get(TraceIDHeader)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(TraceIDHeader, tt.header)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if seen == "" || seen != forwarded || seen != rec.Header().Get(TraceIDHeader) {
				t.Errorf("inconsistent trace ids: ctx=%q header=%q response=%q", seen, forwarded, rec.Header().Get(TraceIDHeader))
			}

			if tt.header != "" && seen != tt.header {
				t.Errorf("trace id = %q, want %q", seen, tt.header)
			}
		})
	}
}

func TestIdentityMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		identity string
		wantOk   bool
	}{
		{name: "basic credentials", identity: "admin@example.com", wantOk: true},
		{name: "anonymous request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				got string
				ok  bool
			)

			handler := IdentityMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got, ok = context_.IdentityFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/admin/mail/users", nil)
			if tt.identity != "" {
				req.SetBasicAuth(tt.identity, "secret")
			}

			handler.ServeHTTP(httptest.NewRecorder(), req)

			if ok != tt.wantOk || got != tt.identity {
				t.Errorf("identity = %q (ok=%v), want %q (ok=%v)", got, ok, tt.identity, tt.wantOk)
			}
		})
	}
}

func TestHandler(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics("dashboard")
	app := http.NewServeMux()
	app.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	app.HandleFunc("/missing", http.NotFound)
	app.HandleFunc("/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	server := httptest.NewServer(Handler(app, metrics, logging.NewNopLogger()))
	t.Cleanup(server.Close)

	for path, wantStatus := range map[string]int{
		"/ok":      http.StatusOK,
		"/missing": http.StatusNotFound,
		"/panic":   http.StatusInternalServerError,
	} {
		resp, err := server.Client().Get(server.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()

		if resp.StatusCode != wantStatus {
			t.Errorf("GET %s = %d, want %d", path, resp.StatusCode, wantStatus)
		}

		if resp.Header.Get(TraceIDHeader) == "" {
			t.Errorf("GET %s: missing request id", path)
		}
	}

	resp, err := server.Client().Get(server.URL + MetricsPath)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`dashboard_http_requests_total{code="200",method="GET"} 1`,
		`dashboard_http_requests_total{code="404",method="GET"} 1`,
		`dashboard_http_requests_total{code="500",method="GET"} 1`,
		`dashboard_http_request_duration_seconds_count{method="GET"} 3`,
		`dashboard_http_panics_total 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output lacks %q", want)
		}
	}
}

func TestRescueingMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("LateWritePanic", func(t *testing.T) {
		t.Parallel()

		handler := RescueingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "partial")

			panic("boom")
		}), nil, logging.NewNopLogger())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK || rec.Body.String() != "partial" {
			t.Errorf("response = %d %q, want the partial answer untouched", rec.Code, rec.Body.String())
		}
	})

	t.Run("AbortHandlerIsRepanicked", func(t *testing.T) {
		t.Parallel()

		handler := RescueingMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic(http.ErrAbortHandler)
		}), nil, logging.NewNopLogger())

		defer func() {
			err, _ := recover().(error)
			if !errors.Is(err, http.ErrAbortHandler) {
				t.Errorf("recovered %v, want %v", err, http.ErrAbortHandler)
			}
		}()

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
