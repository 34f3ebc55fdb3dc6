// Package report assembles the final AnalysisReport and renders it for
// humans and for size-constrained stores.
package report

import (
	"time"

	"github.com/babdulhakim2/webpulse/internal/domain"
)

// Parts are the stage outputs combined into one report.
type Parts struct {
	ID               string
	URL              string
	Timestamp        time.Time
	RequestedRegions []string
	Results          []domain.CaptureResult
	Issues           []domain.Issue
	Scores           []domain.PerformanceScore
	Comparisons      []domain.ComparisonPair
	Ranking          []domain.RankedRegion
	BestRegion       string
	WorstRegion      string
	Recommendations  []domain.Recommendation
}

// Assemble builds the report. Slices are copied so the report does not alias
// its inputs, and empty collections encode as [] rather than null.
func Assemble(p Parts) domain.AnalysisReport {
	recs := make([]string, len(p.Recommendations))
	for i, r := range p.Recommendations {
		recs[i] = r.String()
	}
	r := domain.AnalysisReport{
		ID:               p.ID,
		URL:              p.URL,
		Timestamp:        p.Timestamp.UTC(),
		RequestedRegions: clone(p.RequestedRegions),
		RegionResults:    clone(p.Results),
		Issues:           clone(p.Issues),
		Scores:           clone(p.Scores),
		Comparisons:      clone(p.Comparisons),
		Ranking:          clone(p.Ranking),
		Recommendations:  recs,
	}
	if len(r.Ranking) >= 2 {
		r.BestRegion = p.BestRegion
		r.WorstRegion = p.WorstRegion
	}
	return r
}

func clone[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
