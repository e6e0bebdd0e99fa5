package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkrupp/mailosaurus-admin/internal/infra/config"
	"github.com/mkrupp/mailosaurus-admin/internal/infra/logging"
	"github.com/mkrupp/mailosaurus-admin/internal/infra/transport/http"
	"github.com/mkrupp/mailosaurus-admin/internal/svc/proxysvc"
)

const (
	appName = "mailosaurus"
	svcName = "dashboard"
)

type Config struct {
	config.EnvConfig

	Log  logging.LoggerConfig         `envPrefix:"LOG_"`
	HTTP proxysvc.HTTPTransportConfig `envPrefix:"HTTP_"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(".env"); err != nil {
		panic(err)
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	if err := logging.Configure(ctx, cfg.Log, loggerName); err != nil {
		panic(err)
	}

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	defer func() {
		log := logging.GetLogger("cmd.dashboardsvc")

		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)

			return
		}

		log.InfoContext(ctx, "shutdown")
	}()

	httpTransport, err := proxysvc.NewHTTPTransport(cfg.HTTP, os.DirFS(cfg.HTTP.StaticDir))
	if err != nil {
		return fmt.Errorf("new http transport: %w", err)
	}

	if err := http.ListenAndServe(ctx, httpTransport, cfg.HTTP.HTTPTransportConfig, svcName); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
