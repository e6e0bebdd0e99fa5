package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	context_ "github.com/mkrupp/mailosaurus-admin/internal/infra/context"

	. "github.com/mkrupp/mailosaurus-admin/internal/infra/logging"
)

//nolint:paralleltest
func TestFilter(t *testing.T) {
	tests := []struct {
		name   string
		json   bool
		logger string
		level  Level
		want   bool
	}{
		{"DefaultLevelDropsDebug", false, "repo.kv.sqlite_repository", LevelDebug, false},
		{"DefaultLevelKeepsWarn", false, "repo.kv.sqlite_repository", LevelWarn, true},
		{"PrefixLowersLevel", false, "svc.adminclient.http_client", LevelDebug, true},
		{"LongestPrefixWins", false, "svc.adminclient.quiet", LevelWarn, false},
		{"PrefixMatchesWholeSegments", false, "svc.adminclientx", LevelDebug, false},
		{"JSONPrefixLowersLevel", true, "svc.adminclient.http_client", LevelDebug, true},
		{"JSONLongestPrefixWins", true, "svc.adminclient.quiet", LevelWarn, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			err := Configure(context.Background(), LoggerConfig{
				OutputHandle: &buf,
				Level:        "info",
				Filter:       "svc.adminclient:debug, svc.adminclient.quiet:error",
				JSON:         tt.json,
			}, "test")
			if err != nil {
				t.Fatalf("configure: %v", err)
			}

			GetLogger(tt.logger).Log(context.Background(), tt.level, "probe")

			if got := strings.Contains(buf.String(), "probe"); got != tt.want {
				t.Errorf("logged = %v, want %v: %q", got, tt.want, buf.String())
			}
		})
	}
}

//nolint:paralleltest
func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer

	if err := Configure(context.Background(), LoggerConfig{OutputHandle: &buf, Level: "info"}, "test"); err != nil {
		t.Fatalf("configure: %v", err)
	}

	GetLogger("cmd.mailadm").
		With(Group("request", "method", "GET")).
		InfoContext(context.Background(), "sent", "status", 200)

	out := buf.String()

	if strings.Contains(out, "\033[") {
		t.Errorf("colors written to a non-terminal: %q", out)
	}

	for _, want := range []string{"[INFO] sent |", "status=200", "request.method=GET", "logger=cmd.mailadm", "app=test"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q: %q", want, out)
		}
	}

	if strings.Count(out, "\n") != 1 {
		t.Errorf("want a single line without source: %q", out)
	}
}

//nolint:paralleltest
func TestConfigureInvalidOutput(t *testing.T) {
	err := Configure(context.Background(), LoggerConfig{
		Output: filepath.Join(t.TempDir(), "missing", "dir", "log.txt"),
	}, "test")
	if !errors.Is(err, ErrInvalidOutput) {
		t.Errorf("err = %v, want %v", err, ErrInvalidOutput)
	}
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	if NewNopLogger().Enabled(context.Background(), LevelError) {
		t.Error("nop logger reports enabled")
	}
}

//nolint:paralleltest
func TestTracingHandler(t *testing.T) {
	var buf bytes.Buffer

	if err := Configure(context.Background(), LoggerConfig{OutputHandle: &buf, Level: "info", JSON: true}, "test"); err != nil {
		t.Fatalf("configure: %v", err)
	}

	ctx := context_.WithIdentity(context_.WithTraceID(context.Background(), "trace-1"), "admin@example.org")
	GetLogger("svc.proxysvc").InfoContext(ctx, "forwarded")

	var record struct {
		Trace    struct{ ID string } `json:"trace"`
		Identity string              `json:"identity"`
	}

	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record %q: %v", buf.String(), err)
	}

	if record.Trace.ID != "trace-1" || record.Identity != "admin@example.org" {
		t.Errorf("record = %+v", record)
	}
}
