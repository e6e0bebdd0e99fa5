package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
	"github.com/mkrupp/mailosaurus-admin/internal/infra/config"
	"github.com/mkrupp/mailosaurus-admin/internal/infra/logging"
	"github.com/mkrupp/mailosaurus-admin/internal/repo/kv"
	"github.com/mkrupp/mailosaurus-admin/internal/svc/adminclient"
)

const (
	appName = "mailosaurus"
	svcName = "mailadm"
)

type Config struct {
	config.EnvConfig

	Log    logging.LoggerConfig         `envPrefix:"LOG_"`
	KV     kv.Config                    `envPrefix:"KV_"`
	Client adminclient.HTTPClientConfig `envPrefix:"API_"`

	// Timeout bounds every request to the management API; 0 leaves it to the transport
	Timeout time.Duration `env:"TIMEOUT" default:"0"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	opts, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if opts.baseURL != "" {
		cfg.Client.BaseURL = opts.baseURL
	}

	// Keep the terminal clean unless asked otherwise.
	if opts.verbose {
		cfg.Log.Level = "debug"
	} else if cfg.Log.Level == "info" {
		cfg.Log.Level = "error"
	}

	if err := logging.Configure(ctx, cfg.Log, loggerName); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, opts, args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)

		if domain.IsAuthError(err) || errors.Is(err, domain.ErrNoCredential) {
			fmt.Fprintln(os.Stderr, "hint: run `mailadm login` to start a new session")
		}

		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, opts globalOptions, args []string) (err error) {
	log := logging.GetLogger("cmd.mailadm")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "command failed", "args", strings.Join(args, " "), "error", err)
		}
	}()

	repoFactory, err := kv.RepositoryFactoryFor(cfg.KV)
	if err != nil {
		return fmt.Errorf("kv repository: %w", err)
	}

	repo, err := repoFactory(ctx)
	if err != nil {
		return fmt.Errorf("new kv repository: %w", err)
	}
	defer repo.Close()

	app := newApp(repo, cfg.Client, newHTTPClient(cfg), opts)
	app.load(ctx)

	return app.run(ctx, args)
}

// newHTTPClient sets a client deadline only when one is configured.
func newHTTPClient(cfg Config) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}
