// Package bootstrap wires configuration into the shared runtime used by every
// binary: region catalog, renderer, capture orchestrator, engine and score export.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/babdulhakim2/webpulse/internal/capture"
	"github.com/babdulhakim2/webpulse/internal/config"
	awsauth "github.com/babdulhakim2/webpulse/internal/connectors/aws"
	"github.com/babdulhakim2/webpulse/internal/connectors/aws/cloudwatch"
	"github.com/babdulhakim2/webpulse/internal/engine"
	"github.com/babdulhakim2/webpulse/internal/observability"
	"github.com/babdulhakim2/webpulse/internal/ratelimit"
	"github.com/babdulhakim2/webpulse/internal/regions"
	"github.com/babdulhakim2/webpulse/internal/render"
	"github.com/babdulhakim2/webpulse/internal/temporal/activities"
)

// Runtime holds the collaborators built from one Config.
type Runtime struct {
	Config       config.Config
	Logger       *slog.Logger
	Metrics      *observability.Metrics
	Registry     *regions.Registry
	Orchestrator *capture.Orchestrator
	Engine       *engine.Engine
	Budget       *ratelimit.AnalysisBudget
	// Sink is nil when score export is disabled.
	Sink *cloudwatch.Client
}

// Option adjusts a Runtime before the engine is built.
type Option func(*options)

type options struct {
	renderer render.Renderer
}

// WithRenderer overrides the renderer chosen by mode.
func WithRenderer(r render.Renderer) Option {
	return func(o *options) { o.renderer = r }
}

// New builds a Runtime. Stub mode renders with the deterministic stub;
// production mode calls the rendering provider over HTTP.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*Runtime, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	logger = observability.LoggerOrDefault(logger)

	registry, err := regions.Load(cfg.RegionsFile, cfg.RenderURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("bootstrap: metrics: %w", err)
	}

	renderer := o.renderer
	if renderer == nil {
		switch cfg.Mode {
		case config.ModeProduction:
			renderer = render.New()
		default:
			renderer = render.NewStub()
		}
	}

	orch := capture.NewOrchestrator(registry, renderer,
		capture.WithLimiter(ratelimit.NewRegionLimiter(cfg.RenderRPS)),
		capture.WithMetrics(metrics),
		capture.WithLogger(logger),
	)

	rt := &Runtime{
		Config:       cfg,
		Logger:       logger,
		Metrics:      metrics,
		Registry:     registry,
		Orchestrator: orch,
		Budget:       ratelimit.NewAnalysisBudget(cfg.AnalysisBudget, cfg.BudgetWindow),
	}

	engineOpts := []engine.Option{engine.WithMetrics(metrics), engine.WithLogger(logger)}
	if cfg.ScoreExportEnabled() {
		awsCfg, err := awsauth.NewAWSConfig(ctx, cfg.AWSRegion, cfg.AWSProfile, cfg.AWSRoleARN)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: %w", err)
		}
		rt.Sink = cloudwatch.New(awsCfg, cfg.CloudWatchNamespace)
		engineOpts = append(engineOpts, engine.WithScoreSink(rt.Sink))
	}
	rt.Engine = engine.New(orch, engineOpts...)

	logger.Info("runtime ready",
		"mode", cfg.Mode, "regions", registry.Names(), "score_export", rt.Sink != nil)
	return rt, nil
}

// Activities returns the worker activities backed by this runtime.
func (r *Runtime) Activities() *activities.Activities {
	acts := &activities.Activities{
		Orchestrator: r.Orchestrator,
		Metrics:      r.Metrics,
	}
	if r.Sink != nil {
		acts.Sink = r.Sink
	}
	return acts
}
