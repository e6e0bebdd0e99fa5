package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	. "github.com/mkrupp/mailosaurus-admin/internal/infra/config"
)

type testConfig struct {
	EnvConfig

	Name     string        `env:"NAME" default:"default"`
	Port     int           `env:"PORT" default:"42"`
	Workers  uint8         `env:"WORKERS" default:"4"`
	Enabled  bool          `env:"ENABLED" default:"true"`
	Timeout  time.Duration `env:"TIMEOUT" default:"30s"`
	Keys     []string      `env:"KEYS" default:"a,b"`
	Untagged string

	Log testLogConfig `envPrefix:"LOG_"`
}

type testLogConfig struct {
	Level string `env:"LEVEL" default:"info"`
}

func defaults() testConfig {
	return testConfig{
		Name:    "default",
		Port:    42,
		Workers: 4,
		Enabled: true,
		Timeout: 30 * time.Second,
		Keys:    []string{"a", "b"},
		Log:     testLogConfig{Level: "info"},
	}
}

func with(fn func(*testConfig)) testConfig {
	cfg := defaults()
	fn(&cfg)

	return cfg
}

//nolint:paralleltest
func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		env       map[string]string
		want      testConfig
		wantErr   error
	}{
		{
			name: "Defaults",
			want: defaults(),
		},
		{
			name: "BareNames",
			env:  map[string]string{"NAME": "bare", "PORT": "8080", "ENABLED": "false", "LOG_LEVEL": "debug"},
			want: with(func(c *testConfig) {
				c.Name, c.Port, c.Enabled, c.Log.Level = "bare", 8080, false, "debug"
			}),
		},
		{
			name:      "NamespacedNames",
			namespace: "MAILOSAURUS_MAILADM",
			env:       map[string]string{"MAILOSAURUS_MAILADM_LOG_LEVEL": "warn", "MAILOSAURUS_TIMEOUT": "1m30s"},
			want: with(func(c *testConfig) {
				c.Log.Level, c.Timeout = "warn", 90*time.Second
			}),
		},
		{
			name:      "MostSpecificWins",
			namespace: "MAILOSAURUS_MAILADM",
			env: map[string]string{
				"NAME":                      "bare",
				"MAILOSAURUS_NAME":          "app",
				"MAILOSAURUS_MAILADM_NAME":  "service",
				"MAILOSAURUS_LOG_LEVEL":     "error",
				"LOG_LEVEL":                 "debug",
				"MAILOSAURUS_DASHBOARD_KEY": "ignored",
			},
			want: with(func(c *testConfig) {
				c.Name, c.Log.Level = "service", "error"
			}),
		},
		{
			name:      "BareNameFallback",
			namespace: "MAILOSAURUS_MAILADM",
			env:       map[string]string{"LOG_LEVEL": "debug"},
			want:      with(func(c *testConfig) { c.Log.Level = "debug" }),
		},
		{
			name: "ListsAreTrimmed",
			env:  map[string]string{"KEYS": " x, ,y "},
			want: with(func(c *testConfig) { c.Keys = []string{"x", "y"} }),
		},
		{
			name: "EmptyValuesOverrideDefaults",
			env:  map[string]string{"NAME": "", "KEYS": ""},
			want: with(func(c *testConfig) { c.Name, c.Keys = "", []string{} }),
		},
		{
			name: "ZeroInt",
			env:  map[string]string{"PORT": "0"},
			want: with(func(c *testConfig) { c.Port = 0 }),
		},
		{name: "InvalidInt", env: map[string]string{"PORT": "eighty"}, wantErr: ErrInvalidValue},
		{name: "UintOverflow", env: map[string]string{"WORKERS": "300"}, wantErr: ErrInvalidValue},
		{name: "InvalidDuration", env: map[string]string{"TIMEOUT": "soon"}, wantErr: ErrInvalidValue},
		{name: "InvalidBool", env: map[string]string{"ENABLED": "maybe"}, wantErr: ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var cfg testConfig

			err := Parse(context.Background(), &cfg, tt.namespace)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
			} else if err != nil {
				return
			}

			if cfg.Namespace() != tt.namespace {
				t.Errorf("Namespace() = %q, want %q", cfg.Namespace(), tt.namespace)
			}

			tt.want.EnvConfig = cfg.EnvConfig
			if !reflect.DeepEqual(cfg, tt.want) {
				t.Errorf("Parse() = %+v, want %+v", cfg, tt.want)
			}
		})
	}
}

//nolint:paralleltest
func TestParseRequired(t *testing.T) {
	var cfg struct {
		EnvConfig

		Secret string `env:"SECRET"`
	}

	err := Parse(context.Background(), &cfg, "APP")
	if !errors.Is(err, ErrVarNotSet) {
		t.Fatalf("Parse() error = %v, want %v", err, ErrVarNotSet)
	}

	t.Setenv("APP_SECRET", "s3cret")

	if err := Parse(context.Background(), &cfg, "APP"); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Secret != "s3cret" {
		t.Errorf("Secret = %q", cfg.Secret)
	}
}

func TestParseInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     any
		wantErr error
	}{
		{"NonPointer", testConfig{}, ErrInvalidConfig},
		{"NonStructPointer", new(string), ErrInvalidConfig},
		{"MissingEnvConfig", &struct {
			Value string `env:"VALUE"`
		}{}, ErrInvalidConfig},
		{"UnsupportedType", &struct {
			EnvConfig

			Ratio float64 `env:"RATIO" default:"0.5"`
		}{}, ErrUnsupportedVarType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := Parse(context.Background(), tt.cfg, ""); !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

//nolint:paralleltest
func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, ".env")

	if err := os.WriteFile(filename, []byte("DOTENV_ONLY=from-file\nDOTENV_BOTH=from-file\n"), 0o600); err != nil {
		t.Fatalf("failed to write dotenv file: %v", err)
	}

	t.Setenv("DOTENV_BOTH", "from-env")
	t.Setenv("DOTENV_ONLY", "")
	os.Unsetenv("DOTENV_ONLY")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), filename); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}

	if got := os.Getenv("DOTENV_ONLY"); got != "from-file" {
		t.Errorf("DOTENV_ONLY = %q, want %q", got, "from-file")
	}

	if got := os.Getenv("DOTENV_BOTH"); got != "from-env" {
		t.Errorf("DOTENV_BOTH = %q, want %q", got, "from-env")
	}
}
