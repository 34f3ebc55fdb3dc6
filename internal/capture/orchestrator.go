// Package capture fans one render call out per region and gathers a result
// for every region, whether it succeeded, failed or timed out.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/babdulhakim2/webpulse/internal/domain"
	"github.com/babdulhakim2/webpulse/internal/observability"
	"github.com/babdulhakim2/webpulse/internal/ratelimit"
	"github.com/babdulhakim2/webpulse/internal/regions"
	"github.com/babdulhakim2/webpulse/internal/render"
)

// Defaults and accepted ranges for capture parameters.
const (
	DefaultTimeout = 60 * time.Second
	DefaultWidth   = 1920
	DefaultHeight  = 1080

	MinTimeout = time.Second
	MaxTimeout = 300 * time.Second
	MinWidth   = 320
	MaxWidth   = 7680
	MinHeight  = 240
	MaxHeight  = 4320
)

// Request describes one multi-region capture. Zero values take the defaults.
type Request struct {
	URL      string
	Regions  []string
	Timeout  time.Duration
	Width    int
	Height   int
	FullPage bool
}

// WithDefaults returns a copy of r with zero fields filled in.
func (r Request) WithDefaults() Request {
	if r.Timeout == 0 {
		r.Timeout = DefaultTimeout
	}
	if r.Width == 0 {
		r.Width = DefaultWidth
	}
	if r.Height == 0 {
		r.Height = DefaultHeight
	}
	return r
}

// Validate checks URL and parameter ranges. It does not look at region names.
func (r Request) Validate() error {
	if err := domain.ValidateTargetURL(r.URL); err != nil {
		return err
	}
	if r.Timeout < MinTimeout || r.Timeout > MaxTimeout {
		return domain.NewValidationError("timeout", "must be between %d and %d ms, got %d",
			MinTimeout.Milliseconds(), MaxTimeout.Milliseconds(), r.Timeout.Milliseconds())
	}
	if r.Width < MinWidth || r.Width > MaxWidth {
		return domain.NewValidationError("width", "must be between %d and %d, got %d", MinWidth, MaxWidth, r.Width)
	}
	if r.Height < MinHeight || r.Height > MaxHeight {
		return domain.NewValidationError("height", "must be between %d and %d, got %d", MinHeight, MaxHeight, r.Height)
	}
	return nil
}

// Batch is the settled outcome of a capture: one result per resolved region,
// in resolution order.
type Batch struct {
	Regions []domain.Region
	Results []domain.CaptureResult
}

// Names returns the resolved region names in order.
func (b *Batch) Names() []string {
	names := make([]string, len(b.Regions))
	for i, r := range b.Regions {
		names[i] = r.Name
	}
	return names
}

// Orchestrator runs captures against a renderer for regions from a registry.
type Orchestrator struct {
	registry *regions.Registry
	renderer render.Renderer
	limiter  *ratelimit.RegionLimiter
	metrics  *observability.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer

	// OnSettled, when set, is called once per region as soon as it settles.
	// It may be called concurrently.
	OnSettled func(domain.CaptureResult)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLimiter rate-limits calls per region.
func WithLimiter(l *ratelimit.RegionLimiter) Option {
	return func(o *Orchestrator) { o.limiter = l }
}

// WithMetrics records capture counts and latency.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(registry *regions.Registry, renderer render.Renderer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		renderer: renderer,
		tracer:   observability.Tracer(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = observability.LoggerOrDefault(o.logger)
	return o
}

// Registry returns the region catalog the orchestrator resolves against.
func (o *Orchestrator) Registry() *regions.Registry { return o.registry }

// Prepare applies defaults, validates the request and resolves its regions.
// Any error is a validation error and no capture has been attempted.
func (o *Orchestrator) Prepare(req Request) (Request, []domain.Region, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return req, nil, err
	}
	resolved, err := o.registry.Resolve(req.Regions)
	if err != nil {
		return req, nil, err
	}
	return req, resolved, nil
}

// Capture validates req and captures it from every resolved region
// concurrently. It returns only after every region has settled; a regional
// failure is recorded in that region's result and never cancels its siblings.
func (o *Orchestrator) Capture(ctx context.Context, req Request) (*Batch, error) {
	req, resolved, err := o.Prepare(req)
	if err != nil {
		return nil, err
	}

	ctx, span := o.tracer.Start(ctx, "capture.multi_region",
		trace.WithAttributes(attribute.String("url", req.URL), attribute.Int("regions", len(resolved))))
	defer span.End()

	results := make([]domain.CaptureResult, len(resolved))
	var g errgroup.Group
	for i, region := range resolved {
		g.Go(func() error {
			results[i] = o.CaptureRegion(ctx, region, req)
			if o.OnSettled != nil {
				o.OnSettled(results[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if !r.Succeeded {
			failed++
		}
	}
	span.SetAttributes(attribute.Int("failed_regions", failed))
	o.logger.Info("capture settled", "url", req.URL, "regions", len(resolved), "failed", failed)

	return &Batch{Regions: resolved, Results: results}, nil
}

// CaptureRegion captures req from one region, bounded by req.Timeout. It never
// returns an error: failures become a failed CaptureResult.
func (o *Orchestrator) CaptureRegion(ctx context.Context, region domain.Region, req Request) domain.CaptureResult {
	ctx, span := o.tracer.Start(ctx, "capture.region", trace.WithAttributes(attribute.String("region", region.Name)))
	defer span.End()

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	tel, err := o.render(ctx, region, req)
	elapsed := time.Since(start)

	if err != nil {
		kind := render.FailureKind(err)
		res := domain.FailedCapture(region, kind, err.Error())
		res.DurationMs = elapsed.Milliseconds()
		span.SetStatus(codes.Error, err.Error())
		o.metrics.RecordCapture(ctx, region.Name, string(kind), elapsed)
		o.logger.Warn("regional capture failed",
			"region", region.Name, "url", req.URL, "kind", kind, "duration", elapsed, "error", err)
		return res
	}

	o.metrics.RecordCapture(ctx, region.Name, "success", elapsed)
	o.logger.Debug("regional capture succeeded", "region", region.Name, "url", req.URL, "duration", elapsed)
	return domain.CaptureResult{
		Region:        region.Name,
		Location:      region.Location,
		Succeeded:     true,
		ScreenshotRef: tel.ScreenshotRef,
		Console:       tel.Console,
		Network:       tel.Network,
		Timing:        tel.Timing,
		Layout:        tel.Layout,
		DurationMs:    elapsed.Milliseconds(),
	}
}

func (o *Orchestrator) render(ctx context.Context, region domain.Region, req Request) (tel *render.Telemetry, err error) {
	defer func() {
		if p := recover(); p != nil {
			tel, err = nil, fmt.Errorf("%w: renderer panic: %v", render.ErrProvider, p)
		}
	}()

	// The limiter only fails when the region's deadline cannot be met.
	if err := o.limiter.Wait(ctx, region.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", render.ErrTimeout, err)
	}
	tel, err = o.renderer.Capture(ctx, region, render.Request{
		URL:      req.URL,
		Width:    req.Width,
		Height:   req.Height,
		FullPage: req.FullPage,
		Timeout:  req.Timeout,
	})
	if err == nil && tel == nil {
		err = fmt.Errorf("%w: renderer returned no telemetry", render.ErrMalformed)
	}
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, render.ErrTimeout) {
		err = fmt.Errorf("%w: %v", render.ErrTimeout, err)
	}
	return tel, err
}
