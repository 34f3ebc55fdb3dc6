// Command api runs the HTTP API server for multi-region page analysis.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"go.temporal.io/sdk/client"

	"github.com/babdulhakim2/webpulse/internal/api"
	"github.com/babdulhakim2/webpulse/internal/bootstrap"
	"github.com/babdulhakim2/webpulse/internal/config"
	"github.com/babdulhakim2/webpulse/internal/observability"
	"github.com/babdulhakim2/webpulse/internal/temporal/querier"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(cfg.LogLevel)
	ctx := context.Background()

	if cfg.OTelEnabled {
		shutdown, err := observability.InitTracer(ctx, "webpulse-api")
		if err != nil {
			logger.Error("otel init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	rt, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	// Lazy so the synchronous routes keep serving while Temporal is unreachable.
	c, err := client.NewLazyClient(client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    observability.NewTemporalSlogAdapter(logger),
	})
	if err != nil {
		logger.Error("unable to create Temporal client", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	srv, err := api.New(ctx, rt.Engine, querier.New(c), api.Options{
		CORSOrigins: cfg.CORSOrigins,
		OIDC: api.OIDCConfig{
			IssuerURL: cfg.OIDCIssuer,
			Audience:  cfg.OIDCAudience,
			Enabled:   cfg.AuthEnabled(),
		},
		Budget: rt.Budget,
		Logger: logger,
	})
	if err != nil {
		logger.Error("api init failed", "error", err)
		os.Exit(1)
	}

	addr := ":" + cfg.APIPort
	logger.Info("starting API server", "addr", addr, "mode", cfg.Mode, "oidc_enabled", cfg.AuthEnabled())
	if err := http.ListenAndServe(addr, srv); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
