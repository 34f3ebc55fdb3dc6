package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/babdulhakim2/webpulse/internal/analysis"
	"github.com/babdulhakim2/webpulse/internal/domain"
)

// CompareRequest is the input of a regional performance comparison.
// Regions must name at least one region. GenerateRecommendations defaults to true.
type CompareRequest struct {
	URL                     string
	Regions                 []string
	IncludeNetworkAnalysis  bool
	GenerateRecommendations *bool
	Timeout                 time.Duration
}

// NetworkSummary aggregates one region's network entries.
type NetworkSummary struct {
	Region            string         `json:"region"`
	TotalRequests     int            `json:"total_requests"`
	FailedRequests    int            `json:"failed_requests"`
	AverageDurationMs float64        `json:"average_duration_ms"`
	SlowestURL        string         `json:"slowest_url,omitempty"`
	SlowestDurationMs float64        `json:"slowest_duration_ms"`
	RequestsByType    map[string]int `json:"requests_by_type"`
	NetworkLatencyMs  float64        `json:"network_latency_ms"`
}

// CompareResult is the ranking and pairwise comparison of succeeded regions.
type CompareResult struct {
	URL             string                    `json:"url"`
	Timestamp       time.Time                 `json:"timestamp"`
	Ranking         []domain.RankedRegion     `json:"ranking"`
	BestRegion      string                    `json:"best_region,omitempty"`
	WorstRegion     string                    `json:"worst_region,omitempty"`
	Comparisons     []domain.ComparisonPair   `json:"comparisons"`
	Scores          []domain.PerformanceScore `json:"scores"`
	FailedRegions   []RegionIssues            `json:"failed_regions,omitempty"`
	Network         []NetworkSummary          `json:"network,omitempty"`
	Recommendations []string                  `json:"recommendations,omitempty"`
}

// ComparePerformance captures the page from the named regions and compares them.
func (e *Engine) ComparePerformance(ctx context.Context, req CompareRequest) (*CompareResult, error) {
	if !anyNamed(req.Regions) {
		return nil, fmt.Errorf("compare: %w", domain.NewValidationError("regions", "at least one region is required"))
	}
	genRecs := boolOr(req.GenerateRecommendations, true)
	rep, err := e.run(ctx, req.captureRequest(),
		analysis.Options{SkipRecommendations: !genRecs})
	if err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}
	e.Publish(ctx, "compare", &rep)

	out := &CompareResult{
		URL:         rep.URL,
		Timestamp:   rep.Timestamp,
		Ranking:     rep.Ranking,
		BestRegion:  rep.BestRegion,
		WorstRegion: rep.WorstRegion,
		Comparisons: rep.Comparisons,
		Scores:      rep.Scores,
	}
	for _, res := range rep.RegionResults {
		if !res.Succeeded {
			out.FailedRegions = append(out.FailedRegions, RegionIssues{
				Region: res.Region, Location: res.Location, Error: res.Error, Issues: []domain.Issue{},
			})
			continue
		}
		if req.IncludeNetworkAnalysis {
			out.Network = append(out.Network, SummarizeNetwork(res))
		}
	}
	if genRecs {
		out.Recommendations = rep.Recommendations
	}
	return out, nil
}

// SummarizeNetwork aggregates the network entries of a succeeded capture.
// Requests without a duration are counted but not averaged.
func SummarizeNetwork(res domain.CaptureResult) NetworkSummary {
	s := NetworkSummary{
		Region:           res.Region,
		TotalRequests:    len(res.Network),
		RequestsByType:   map[string]int{},
		NetworkLatencyMs: res.Timing.NetworkLatencyMs,
	}
	var (
		sum   float64
		timed int
	)
	for _, n := range res.Network {
		kind := n.ResourceType
		if kind == "" {
			kind = "other"
		}
		s.RequestsByType[kind]++
		if n.Failed() {
			s.FailedRequests++
		}
		if n.DurationMs == nil {
			continue
		}
		sum += *n.DurationMs
		timed++
		if *n.DurationMs > s.SlowestDurationMs {
			s.SlowestDurationMs = *n.DurationMs
			s.SlowestURL = n.URL
		}
	}
	if timed > 0 {
		s.AverageDurationMs = sum / float64(timed)
	}
	return s
}

func anyNamed(names []string) bool {
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			return true
		}
	}
	return false
}
