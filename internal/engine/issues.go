package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/babdulhakim2/webpulse/internal/analysis"
	"github.com/babdulhakim2/webpulse/internal/detect"
	"github.com/babdulhakim2/webpulse/internal/domain"
)

// IssuesRequest is the input of an issue analysis. Empty IssueTypes means
// every category; empty SeverityFilter means low (no filtering).
type IssuesRequest struct {
	URL            string
	Regions        []string
	IssueTypes     []string
	SeverityFilter string
	Timeout        time.Duration
}

// Filter parses the type and severity selections.
func (r IssuesRequest) Filter() (detect.Filter, error) {
	minSev, err := domain.ParseSeverity(r.SeverityFilter)
	if err != nil {
		return detect.Filter{}, domain.NewValidationError("severityFilter", "%v", err)
	}
	f := detect.Filter{MinSeverity: minSev}
	for _, s := range r.IssueTypes {
		t, err := domain.ParseIssueType(s)
		if err != nil {
			return detect.Filter{}, domain.NewValidationError("issueTypes", "%v", err)
		}
		f.IssueTypes = append(f.IssueTypes, t)
	}
	return f, nil
}

// RegionIssues is the issue list of one region.
type RegionIssues struct {
	Region      string                 `json:"region"`
	Location    string                 `json:"location,omitempty"`
	Succeeded   bool                   `json:"succeeded"`
	Error       *domain.CaptureFailure `json:"error,omitempty"`
	MaxSeverity domain.Severity        `json:"max_severity,omitempty"`
	Issues      []domain.Issue         `json:"issues"`
}

// IssuesResult groups filtered issues by region, in request order.
type IssuesResult struct {
	URL            string          `json:"url"`
	Timestamp      time.Time       `json:"timestamp"`
	SeverityFilter domain.Severity `json:"severity_filter"`
	TotalIssues    int             `json:"total_issues"`
	BySeverity     map[string]int  `json:"by_severity"`
	Regions        []RegionIssues  `json:"regions"`
}

// AnalyzeIssues captures the page and returns the issues meeting the filter,
// grouped by region.
func (e *Engine) AnalyzeIssues(ctx context.Context, req IssuesRequest) (*IssuesResult, error) {
	filter, err := req.Filter()
	if err != nil {
		return nil, fmt.Errorf("analyze issues: %w", err)
	}
	rep, err := e.run(ctx, req.captureRequest(),
		analysis.Options{Filter: filter, SkipRecommendations: true})
	if err != nil {
		return nil, fmt.Errorf("analyze issues: %w", err)
	}
	e.Publish(ctx, "issues", &rep)

	out := &IssuesResult{
		URL:            rep.URL,
		Timestamp:      rep.Timestamp,
		SeverityFilter: filter.MinSeverity,
		TotalIssues:    len(rep.Issues),
		BySeverity:     map[string]int{},
		Regions:        make([]RegionIssues, 0, len(rep.RegionResults)),
	}
	for _, is := range rep.Issues {
		out.BySeverity[string(is.Severity)]++
	}
	grouped := domain.IssuesByRegion(rep.Issues)
	for _, res := range rep.RegionResults {
		issues := grouped[res.Region]
		if issues == nil {
			issues = []domain.Issue{}
		}
		out.Regions = append(out.Regions, RegionIssues{
			Region:      res.Region,
			Location:    res.Location,
			Succeeded:   res.Succeeded,
			Error:       res.Error,
			MaxSeverity: domain.MaxSeverity(issues),
			Issues:      issues,
		})
	}
	return out, nil
}
