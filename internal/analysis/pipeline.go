// Package analysis runs the pure downstream stages over settled captures:
// per-region detection and scoring, then comparison, recommendations and
// assembly once every region is available.
package analysis

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/babdulhakim2/webpulse/internal/compare"
	"github.com/babdulhakim2/webpulse/internal/detect"
	"github.com/babdulhakim2/webpulse/internal/domain"
	"github.com/babdulhakim2/webpulse/internal/recommend"
	"github.com/babdulhakim2/webpulse/internal/report"
	"github.com/babdulhakim2/webpulse/internal/scoring"
)

// Options selects which stages run.
type Options struct {
	// Filter applies to detected issues before they reach the report.
	Filter detect.Filter
	// SkipIssues disables issue detection.
	SkipIssues bool
	// SkipComparisons leaves the pairwise comparisons empty. Ranking is still computed.
	SkipComparisons bool
	// SkipRecommendations leaves the recommendations empty.
	SkipRecommendations bool
}

// Meta identifies one run.
type Meta struct {
	ID               string
	URL              string
	Timestamp        time.Time
	RequestedRegions []string
}

// RegionOutcome is the detector and scorer output for one region.
// Score is nil and Issues empty for failed captures.
type RegionOutcome struct {
	Result domain.CaptureResult
	Issues []domain.Issue
	Score  *domain.PerformanceScore
}

// Pipeline holds the stage implementations. All stages are stateless.
type Pipeline struct {
	Detector    *detect.Detector
	Scorer      *scoring.Scorer
	Comparator  *compare.Comparator
	Recommender *recommend.Engine
}

// NewPipeline returns a pipeline with default stages.
func NewPipeline() *Pipeline {
	return &Pipeline{
		Detector:    detect.NewDetector(),
		Scorer:      scoring.NewScorer(),
		Comparator:  compare.NewComparator(),
		Recommender: recommend.NewEngine(),
	}
}

// Region runs detection and scoring for one settled capture.
func (p *Pipeline) Region(res domain.CaptureResult, opts Options) RegionOutcome {
	out := RegionOutcome{Result: res}
	if !res.Succeeded {
		return out
	}
	if !opts.SkipIssues {
		out.Issues = p.Detector.Detect(res, opts.Filter)
	}
	score := p.Scorer.Score(res)
	out.Score = &score
	return out
}

// Regions runs Region for every result concurrently and returns outcomes in
// input order. It waits for every region before returning.
func (p *Pipeline) Regions(ctx context.Context, results []domain.CaptureResult, opts Options) []RegionOutcome {
	outcomes := make([]RegionOutcome, len(results))
	var g errgroup.Group
	for i, res := range results {
		g.Go(func() error {
			outcomes[i] = p.Region(res, opts)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// Report runs the cross-region stages over complete outcomes and assembles the report.
func (p *Pipeline) Report(meta Meta, outcomes []RegionOutcome, opts Options) domain.AnalysisReport {
	var (
		results   = make([]domain.CaptureResult, 0, len(outcomes))
		issues    []domain.Issue
		scores    []domain.PerformanceScore
		summaries []compare.RegionSummary
	)
	for _, o := range outcomes {
		results = append(results, o.Result)
		if o.Score == nil {
			continue
		}
		issues = append(issues, o.Issues...)
		scores = append(scores, *o.Score)
		summaries = append(summaries, compare.RegionSummary{Region: o.Result.Region, Score: o.Score.Score, Issues: o.Issues})
	}

	cmp := p.Comparator.Compare(summaries)
	if opts.SkipComparisons {
		cmp.Pairs = nil
	}

	var recs []domain.Recommendation
	if !opts.SkipRecommendations {
		recs = p.Recommender.Recommend(recommend.Input{Issues: issues, Scores: scores})
	}

	requested := meta.RequestedRegions
	if len(requested) == 0 {
		for _, r := range results {
			requested = append(requested, r.Region)
		}
	}

	return report.Assemble(report.Parts{
		ID:               meta.ID,
		URL:              meta.URL,
		Timestamp:        meta.Timestamp,
		RequestedRegions: requested,
		Results:          results,
		Issues:           issues,
		Scores:           scores,
		Comparisons:      cmp.Pairs,
		Ranking:          cmp.Ranking,
		BestRegion:       cmp.Best,
		WorstRegion:      cmp.Worst,
		Recommendations:  recs,
	})
}

// Run is the sequential form used where goroutines are not allowed, such as
// inside a durable workflow.
func (p *Pipeline) Run(meta Meta, results []domain.CaptureResult, opts Options) domain.AnalysisReport {
	outcomes := make([]RegionOutcome, len(results))
	for i, res := range results {
		outcomes[i] = p.Region(res, opts)
	}
	return p.Report(meta, outcomes, opts)
}

// RunConcurrent detects and scores regions in parallel, then joins before
// the cross-region stages.
func (p *Pipeline) RunConcurrent(ctx context.Context, meta Meta, results []domain.CaptureResult, opts Options) domain.AnalysisReport {
	return p.Report(meta, p.Regions(ctx, results, opts), opts)
}
