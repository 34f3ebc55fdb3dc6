// Command worker runs the Temporal worker for durable regional analyses.
// One worker process can poll the analysis queue, the capture queue, or both.
package main

import (
	"context"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/babdulhakim2/webpulse/internal/bootstrap"
	"github.com/babdulhakim2/webpulse/internal/config"
	"github.com/babdulhakim2/webpulse/internal/observability"
	"github.com/babdulhakim2/webpulse/internal/temporal/queues"
	"github.com/babdulhakim2/webpulse/internal/temporal/versioning"
	"github.com/babdulhakim2/webpulse/internal/temporal/workflows"
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
		shutdown, err := observability.InitTracer(ctx, "webpulse-worker")
		if err != nil {
			logger.Error("otel init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	names, err := queues.ParseQueues(cfg.WorkerQueues)
	if err != nil {
		logger.Error("invalid worker queues", "error", err)
		os.Exit(1)
	}

	rt, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    observability.NewTemporalSlogAdapter(logger),
	})
	if err != nil {
		logger.Error("unable to create Temporal client", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	acts := rt.Activities()
	configs := queues.DefaultConfigs()
	workers := make([]worker.Worker, 0, len(names))
	for _, name := range names {
		w := worker.New(c, name, configs[name].Options)
		switch name {
		case versioning.QueueAnalysis:
			w.RegisterWorkflow(workflows.RegionalAnalysisWorkflow)
			w.RegisterActivity(acts.PublishReport)
		case versioning.QueueCapture:
			w.RegisterActivity(acts.CaptureRegion)
		}
		if err := w.Start(); err != nil {
			logger.Error("worker start failed", "queue", name, "error", err)
			os.Exit(1)
		}
		workers = append(workers, w)
		logger.Info("worker started", "queue", name, "mode", cfg.Mode)
	}

	<-worker.InterruptCh()
	for _, w := range workers {
		w.Stop()
	}
	logger.Info("workers stopped")
}
