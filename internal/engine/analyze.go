package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/babdulhakim2/webpulse/internal/analysis"
	"github.com/babdulhakim2/webpulse/internal/capture"
	"github.com/babdulhakim2/webpulse/internal/domain"
	"github.com/babdulhakim2/webpulse/internal/report"
)

// AnalyzeRequest is the input of a full multi-region analysis.
// Nil toggles default to true; zero sizes and timeout take the capture defaults.
type AnalyzeRequest struct {
	URL                    string
	Regions                []string
	EnableVisualComparison *bool
	EnableIssueDetection   *bool
	KVOptimized            bool
	Width                  int
	Height                 int
	FullPage               bool
	Timeout                time.Duration
}

// CaptureRequest returns the capture part of r.
func (r AnalyzeRequest) CaptureRequest() capture.Request {
	return capture.Request{
		URL:      r.URL,
		Regions:  r.Regions,
		Timeout:  r.Timeout,
		Width:    r.Width,
		Height:   r.Height,
		FullPage: r.FullPage,
	}
}

// Options returns the pipeline options selected by r.
func (r AnalyzeRequest) Options() analysis.Options {
	return analysis.Options{
		SkipIssues:      !boolOr(r.EnableIssueDetection, true),
		SkipComparisons: !boolOr(r.EnableVisualComparison, true),
	}
}

// AnalyzeResult carries the full report, plus its reduced form when requested.
type AnalyzeResult struct {
	Report    domain.AnalysisReport
	Optimized *report.OptimizedReport
}

// Value returns what a transport should send: the reduced form when present.
func (r *AnalyzeResult) Value() any {
	if r.Optimized != nil {
		return r.Optimized
	}
	return r.Report
}

// Analyze captures req.URL from every requested region and returns the
// assembled report. Validation errors are returned before any capture; all
// regional failures are recorded in the report instead.
func (e *Engine) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	rep, err := e.run(ctx, req.CaptureRequest(), req.Options())
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	e.Publish(ctx, "analyze", &rep)

	out := &AnalyzeResult{Report: rep}
	if req.KVOptimized {
		o := report.Optimize(rep, report.DefaultMaxRegions)
		out.Optimized = &o
	}
	e.logger.Info("analysis complete",
		"report_id", rep.ID, "url", rep.URL,
		"regions", len(rep.RegionResults), "failed", len(rep.FailedRegions()),
		"issues", len(rep.Issues), "best_region", rep.BestRegion)
	return out, nil
}

// Plan is a validated analysis request ready for durable execution.
type Plan struct {
	ID      string
	Capture capture.Request
	Regions []domain.Region
	Options analysis.Options
}

// Plan validates req and resolves its regions without capturing anything.
func (e *Engine) Plan(req AnalyzeRequest) (Plan, error) {
	creq, resolved, err := e.orchestrator.Prepare(req.CaptureRequest())
	if err != nil {
		return Plan{}, fmt.Errorf("plan: %w", err)
	}
	return Plan{ID: e.newID(), Capture: creq, Regions: resolved, Options: req.Options()}, nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
