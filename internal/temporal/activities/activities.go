package activities

import (
	"context"
	"fmt"

	"github.com/babdulhakim2/webpulse/internal/capture"
	"github.com/babdulhakim2/webpulse/internal/domain"
	"github.com/babdulhakim2/webpulse/internal/observability"
)

// ScoreSink receives finished reports for export.
type ScoreSink interface {
	PublishScores(ctx context.Context, r *domain.AnalysisReport) error
}

// Activities holds the dependencies for all Temporal activities.
// Each method is registered as a Temporal activity.
type Activities struct {
	Orchestrator *capture.Orchestrator
	Sink         ScoreSink // nil = no export
	Metrics      *observability.Metrics
}

// CaptureRegion captures one region. It only returns an error when the
// worker cannot attempt the capture at all; provider failures come back as a
// failed CaptureResult. Captures share no state across runs; callers are
// metered when the run is started.
func (a *Activities) CaptureRegion(ctx context.Context, in CaptureRegionInput) (CaptureRegionOutput, error) {
	if a.Orchestrator == nil {
		return CaptureRegionOutput{}, fmt.Errorf("capture activity: orchestrator not configured")
	}
	res := a.Orchestrator.CaptureRegion(ctx, in.Region, in.Request())
	return CaptureRegionOutput{Result: res}, nil
}

// PublishReport hands a finished report to the score sink and records
// analysis metrics.
func (a *Activities) PublishReport(ctx context.Context, in PublishReportInput) error {
	a.Metrics.RecordAnalysis(ctx, "workflow")
	for _, is := range in.Report.Issues {
		a.Metrics.RecordIssue(ctx, string(is.Type), string(is.Severity))
	}
	if a.Sink == nil || len(in.Report.Scores) == 0 {
		return nil
	}
	if err := a.Sink.PublishScores(ctx, &in.Report); err != nil {
		return fmt.Errorf("publish report activity: %w", err)
	}
	return nil
}
