// Package engine is the entry point for the three analysis operations:
// full multi-region analysis, issue analysis and regional performance comparison.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/babdulhakim2/webpulse/internal/analysis"
	"github.com/babdulhakim2/webpulse/internal/capture"
	"github.com/babdulhakim2/webpulse/internal/domain"
	"github.com/babdulhakim2/webpulse/internal/observability"
	"github.com/babdulhakim2/webpulse/internal/regions"
)

// ScoreSink receives every assembled report for export. Failures are logged
// and never affect the report.
type ScoreSink interface {
	PublishScores(ctx context.Context, r *domain.AnalysisReport) error
}

// Engine coordinates capture and the analysis pipeline. It keeps no state
// between calls.
type Engine struct {
	orchestrator *capture.Orchestrator
	pipeline     *analysis.Pipeline
	sink         ScoreSink
	metrics      *observability.Metrics
	logger       *slog.Logger
	now          func() time.Time
	newID        func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithPipeline replaces the default analysis stages.
func WithPipeline(p *analysis.Pipeline) Option {
	return func(e *Engine) { e.pipeline = p }
}

// WithScoreSink exports scores after each analysis.
func WithScoreSink(s ScoreSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithMetrics records analysis and issue counts.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides report ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// New creates an Engine around an orchestrator.
func New(orchestrator *capture.Orchestrator, opts ...Option) *Engine {
	e := &Engine{
		orchestrator: orchestrator,
		pipeline:     analysis.NewPipeline(),
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = observability.LoggerOrDefault(e.logger)
	return e
}

// Regions returns the region catalog.
func (e *Engine) Regions() *regions.Registry {
	return e.orchestrator.Registry()
}

// Pipeline returns the analysis stages.
func (e *Engine) Pipeline() *analysis.Pipeline {
	return e.pipeline
}

// run captures req and runs the pipeline over the settled results.
func (e *Engine) run(ctx context.Context, req capture.Request, opts analysis.Options) (domain.AnalysisReport, error) {
	batch, err := e.orchestrator.Capture(ctx, req)
	if err != nil {
		return domain.AnalysisReport{}, err
	}
	meta := analysis.Meta{
		ID:               e.newID(),
		URL:              req.URL,
		Timestamp:        e.now(),
		RequestedRegions: batch.Names(),
	}
	return e.pipeline.RunConcurrent(ctx, meta, batch.Results, opts), nil
}

// Publish records metrics for r and hands it to the score sink.
func (e *Engine) Publish(ctx context.Context, operation string, r *domain.AnalysisReport) {
	e.metrics.RecordAnalysis(ctx, operation)
	for _, is := range r.Issues {
		e.metrics.RecordIssue(ctx, string(is.Type), string(is.Severity))
	}
	if e.sink == nil || len(r.Scores) == 0 {
		return
	}
	if err := e.sink.PublishScores(ctx, r); err != nil {
		e.logger.Warn("score export failed", "url", r.URL, "report_id", r.ID, "error", err)
	}
}
