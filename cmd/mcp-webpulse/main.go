// Command mcp-webpulse runs the MCP tool server for multi-region page analysis.
// Uses stdio transport for integration with AI assistants; logs go to stderr.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.temporal.io/sdk/client"

	"github.com/babdulhakim2/webpulse/internal/bootstrap"
	"github.com/babdulhakim2/webpulse/internal/config"
	"github.com/babdulhakim2/webpulse/internal/mcpserver"
	"github.com/babdulhakim2/webpulse/internal/observability"
	"github.com/babdulhakim2/webpulse/internal/temporal/querier"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(cfg.LogLevel, os.Stderr)
	ctx := context.Background()

	rt, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

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

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "webpulse",
		Version: "v1.0.0",
	}, nil)
	mcpserver.RegisterTools(server, rt.Engine, querier.New(c))

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
