package report

import (
	"time"

	"github.com/babdulhakim2/webpulse/internal/domain"
)

// Limits of the reduced report form.
const (
	DefaultMaxRegions = 5
	MaxIssues         = 50
)

// RegionDigest is a region result without raw console and network entries.
type RegionDigest struct {
	Region             string                 `json:"region"`
	Location           string                 `json:"location,omitempty"`
	Succeeded          bool                   `json:"succeeded"`
	ScreenshotRef      string                 `json:"screenshot_ref,omitempty"`
	Timing             *domain.Timing         `json:"timing,omitempty"`
	ConsoleErrorCount  int                    `json:"console_error_count"`
	FailedRequestCount int                    `json:"failed_request_count"`
	Error              *domain.CaptureFailure `json:"error,omitempty"`
}

// OptimizedReport is the reduced projection of an AnalysisReport sized for
// key-value stores and tool transports with payload limits.
type OptimizedReport struct {
	ID               string                    `json:"id"`
	URL              string                    `json:"url"`
	Timestamp        time.Time                 `json:"timestamp"`
	RequestedRegions []string                  `json:"requested_regions"`
	Regions          []RegionDigest            `json:"regions"`
	OmittedRegions   int                       `json:"omitted_regions,omitempty"`
	Issues           []domain.Issue            `json:"issues"`
	TotalIssues      int                       `json:"total_issues"`
	Scores           []domain.PerformanceScore `json:"scores"`
	Comparisons      []domain.ComparisonPair   `json:"comparisons"`
	Ranking          []domain.RankedRegion     `json:"ranking"`
	BestRegion       string                    `json:"best_region,omitempty"`
	WorstRegion      string                    `json:"worst_region,omitempty"`
	Recommendations  []string                  `json:"recommendations"`
}

// Optimize projects r into its reduced form, keeping at most maxRegions
// region digests in request order. A non-positive maxRegions means
// DefaultMaxRegions. r is not modified.
func Optimize(r domain.AnalysisReport, maxRegions int) OptimizedReport {
	if maxRegions <= 0 {
		maxRegions = DefaultMaxRegions
	}
	o := OptimizedReport{
		ID:               r.ID,
		URL:              r.URL,
		Timestamp:        r.Timestamp,
		RequestedRegions: clone(r.RequestedRegions),
		Regions:          []RegionDigest{},
		TotalIssues:      len(r.Issues),
		Scores:           clone(r.Scores),
		Comparisons:      clone(r.Comparisons),
		Ranking:          clone(r.Ranking),
		BestRegion:       r.BestRegion,
		WorstRegion:      r.WorstRegion,
		Recommendations:  clone(r.Recommendations),
	}
	for i, res := range r.RegionResults {
		if i >= maxRegions {
			o.OmittedRegions = len(r.RegionResults) - maxRegions
			break
		}
		o.Regions = append(o.Regions, digest(res))
	}
	issues := r.Issues
	if len(issues) > MaxIssues {
		issues = issues[:MaxIssues]
	}
	o.Issues = clone(issues)
	return o
}

func digest(res domain.CaptureResult) RegionDigest {
	d := RegionDigest{
		Region:        res.Region,
		Location:      res.Location,
		Succeeded:     res.Succeeded,
		ScreenshotRef: res.ScreenshotRef,
		Error:         res.Error,
	}
	if !res.Succeeded {
		return d
	}
	timing := res.Timing
	d.Timing = &timing
	for _, c := range res.Console {
		if c.IsError() {
			d.ConsoleErrorCount++
		}
	}
	for _, n := range res.Network {
		if n.Failed() {
			d.FailedRequestCount++
		}
	}
	return d
}
