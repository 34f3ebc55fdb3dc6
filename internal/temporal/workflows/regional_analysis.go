// Package workflows defines the Temporal workflow functions.
package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/babdulhakim2/webpulse/internal/analysis"
	"github.com/babdulhakim2/webpulse/internal/capture"
	"github.com/babdulhakim2/webpulse/internal/domain"
	"github.com/babdulhakim2/webpulse/internal/temporal/activities"
	"github.com/babdulhakim2/webpulse/internal/temporal/versioning"
)

// QueryNameState is the Temporal Query handler name for progress.
const QueryNameState = "state"

// CaptureGrace is added to the capture timeout for the activity's
// StartToCloseTimeout so the activity reports its own timeout first.
const CaptureGrace = 5 * time.Second

// Phase describes where a run is.
type Phase string

const (
	PhaseCapturing Phase = "capturing"
	PhaseAnalyzing Phase = "analyzing"
	PhaseCompleted Phase = "completed"
)

// AnalysisInput is the input to the regional analysis workflow. Regions are
// resolved and the request validated before the workflow is started.
type AnalysisInput struct {
	ID        string           `json:"id"`
	URL       string           `json:"url"`
	Regions   []domain.Region  `json:"regions"`
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	FullPage  bool             `json:"full_page"`
	TimeoutMs int64            `json:"timeout_ms"`
	Options   analysis.Options `json:"options"`
}

// InputFromRequest builds the workflow input from a prepared capture request.
func InputFromRequest(id string, req capture.Request, regions []domain.Region, opts analysis.Options) AnalysisInput {
	return AnalysisInput{
		ID:        id,
		URL:       req.URL,
		Regions:   regions,
		Width:     req.Width,
		Height:    req.Height,
		FullPage:  req.FullPage,
		TimeoutMs: req.Timeout.Milliseconds(),
		Options:   opts,
	}
}

// RegionProgress is the settlement state of one region.
type RegionProgress struct {
	Region    string `json:"region"`
	Settled   bool   `json:"settled"`
	Succeeded bool   `json:"succeeded"`
}

// WorkflowResult is both the query view and the final output of the
// workflow. Report is set once the run completes.
type WorkflowResult struct {
	ID      string                 `json:"id"`
	URL     string                 `json:"url"`
	Phase   Phase                  `json:"phase"`
	Settled int                    `json:"settled"`
	Total   int                    `json:"total"`
	Regions []RegionProgress       `json:"regions"`
	Report  *domain.AnalysisReport `json:"report,omitempty"`
}

// Done reports whether the run has produced its report.
func (r *WorkflowResult) Done() bool {
	return r.Phase == PhaseCompleted
}

// RegionalAnalysisWorkflow captures the URL from every region in parallel on
// the capture queue, waits for all of them to settle, then runs the analysis
// pipeline in-workflow. The pipeline is pure, so it is replay-safe; the
// report timestamp comes from workflow.Now.
func RegionalAnalysisWorkflow(ctx workflow.Context, input AnalysisInput) (WorkflowResult, error) {
	logger := workflow.GetLogger(ctx)

	state := WorkflowResult{
		ID:      input.ID,
		URL:     input.URL,
		Phase:   PhaseCapturing,
		Total:   len(input.Regions),
		Regions: make([]RegionProgress, len(input.Regions)),
	}
	for i, r := range input.Regions {
		state.Regions[i] = RegionProgress{Region: r.Name}
	}
	if err := workflow.SetQueryHandler(ctx, QueryNameState, func() (WorkflowResult, error) {
		return state, nil
	}); err != nil {
		return WorkflowResult{}, fmt.Errorf("register state query: %w", err)
	}

	if len(input.Regions) == 0 {
		return WorkflowResult{}, temporal.NewNonRetryableApplicationError("no regions to capture", "validation", nil)
	}

	timeout := time.Duration(input.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = capture.DefaultTimeout
	}
	// Captures are never retried: a failed region is reported, not repeated.
	captureCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		TaskQueue:           versioning.QueueCapture,
		StartToCloseTimeout: timeout + CaptureGrace,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})

	results := make([]domain.CaptureResult, len(input.Regions))
	selector := workflow.NewSelector(ctx)
	for i, region := range input.Regions {
		f := workflow.ExecuteActivity(captureCtx, activities.NameCaptureRegion, activities.CaptureRegionInput{
			Region:    region,
			URL:       input.URL,
			Width:     input.Width,
			Height:    input.Height,
			FullPage:  input.FullPage,
			TimeoutMs: timeout.Milliseconds(),
		})
		selector.AddFuture(f, func(f workflow.Future) {
			var out activities.CaptureRegionOutput
			if err := f.Get(ctx, &out); err != nil {
				results[i] = domain.FailedCapture(region, activityFailureKind(err), err.Error())
				logger.Warn("capture activity failed", "region", region.Name, "error", err)
			} else {
				results[i] = out.Result
			}
			state.Settled++
			state.Regions[i].Settled = true
			state.Regions[i].Succeeded = results[i].Succeeded
		})
	}
	for range input.Regions {
		selector.Select(ctx)
	}

	state.Phase = PhaseAnalyzing
	names := make([]string, len(input.Regions))
	for i, r := range input.Regions {
		names[i] = r.Name
	}
	rep := analysis.NewPipeline().Run(analysis.Meta{
		ID:               input.ID,
		URL:              input.URL,
		Timestamp:        workflow.Now(ctx),
		RequestedRegions: names,
	}, results, input.Options)
	logger.Info("analysis complete", "url", input.URL, "failed", len(rep.FailedRegions()), "issues", len(rep.Issues))

	publishCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
	})
	if err := workflow.ExecuteActivity(publishCtx, activities.NamePublishReport,
		activities.PublishReportInput{Report: rep}).Get(ctx, nil); err != nil {
		logger.Warn("score export failed", "error", err)
	}

	state.Report = &rep
	state.Phase = PhaseCompleted
	return state, nil
}

// activityFailureKind maps an activity-level error onto a capture failure kind.
func activityFailureKind(err error) domain.FailureKind {
	switch {
	case temporal.IsTimeoutError(err), temporal.IsCanceledError(err):
		return domain.FailureTimeout
	case temporal.IsApplicationError(err):
		return domain.FailureProvider
	default:
		return domain.FailureNetwork
	}
}
