// Package domain holds the data model shared by every analysis stage.
// Values are created once per analysis run and treated as immutable afterwards.
package domain

import (
	"strings"
	"time"
)

// Region is a named vantage point backed by one rendering provider instance.
type Region struct {
	Name     string `json:"name" yaml:"name"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	Location string `json:"location" yaml:"location"`
}

// ConsoleEntry is one browser console message.
type ConsoleEntry struct {
	Level     string    `json:"level"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// IsError reports whether the entry is a console error.
func (c ConsoleEntry) IsError() bool {
	return strings.EqualFold(c.Level, "error")
}

// IsWarning reports whether the entry is a console warning.
func (c ConsoleEntry) IsWarning() bool {
	l := strings.ToLower(c.Level)
	return l == "warning" || l == "warn"
}

// NetworkEntry is one request observed while loading the page.
// Status and DurationMs are absent for requests that never completed.
type NetworkEntry struct {
	URL          string   `json:"url"`
	Method       string   `json:"method"`
	ResourceType string   `json:"resource_type"`
	Status       *int     `json:"status,omitempty"`
	DurationMs   *float64 `json:"duration_ms,omitempty"`
}

// Failed reports whether the request completed with a 4xx or 5xx status.
func (n NetworkEntry) Failed() bool {
	return n.Status != nil && *n.Status >= 400 && *n.Status < 600
}

// ServerError reports whether the request completed with a 5xx status.
func (n NetworkEntry) ServerError() bool {
	return n.Status != nil && *n.Status >= 500 && *n.Status < 600
}

// Timing holds page timing telemetry in milliseconds.
type Timing struct {
	LoadTimeMs               float64 `json:"load_time_ms"`
	DOMContentLoadedMs       float64 `json:"dom_content_loaded_ms"`
	LargestContentfulPaintMs float64 `json:"largest_contentful_paint_ms"`
	NetworkLatencyMs         float64 `json:"network_latency_ms"`
	DOMProcessingMs          float64 `json:"dom_processing_ms"`
}

// LayoutAnomaly is a structural problem reported by the rendering provider itself.
type LayoutAnomaly struct {
	Message  string   `json:"message"`
	Evidence string   `json:"evidence,omitempty"`
	Severity Severity `json:"severity,omitempty"`
}

// CaptureFailure describes why a region produced no telemetry.
type CaptureFailure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// CaptureResult is the outcome of one capture attempt from one region.
// Exactly one of (Succeeded with telemetry) or (Error set) holds.
type CaptureResult struct {
	Region        string          `json:"region"`
	Location      string          `json:"location,omitempty"`
	Succeeded     bool            `json:"succeeded"`
	ScreenshotRef string          `json:"screenshot_ref,omitempty"`
	Console       []ConsoleEntry  `json:"console_entries,omitempty"`
	Network       []NetworkEntry  `json:"network_entries,omitempty"`
	Timing        Timing          `json:"timing"`
	Layout        []LayoutAnomaly `json:"layout_anomalies,omitempty"`
	Error         *CaptureFailure `json:"error,omitempty"`
	DurationMs    int64           `json:"duration_ms"`
}

// FailedCapture builds a failed CaptureResult for region.
func FailedCapture(region Region, kind FailureKind, msg string) CaptureResult {
	return CaptureResult{
		Region:   region.Name,
		Location: region.Location,
		Error:    &CaptureFailure{Kind: kind, Message: msg},
	}
}

// Issue is a classified anomaly detected in one region's capture.
type Issue struct {
	Type     IssueType `json:"type"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Evidence string    `json:"evidence,omitempty"`
	Region   string    `json:"region"`
}

// Deduction is one applied penalty inside a PerformanceScore.
type Deduction struct {
	Reason string  `json:"reason"`
	Amount float64 `json:"amount"`
}

// PerformanceScore is the 0-100 health score of one succeeded region.
type PerformanceScore struct {
	Region     string      `json:"region"`
	Score      int         `json:"score"`
	Deductions []Deduction `json:"deductions"`
}

// ComparisonPair summarizes how similar two succeeded regions are.
type ComparisonPair struct {
	RegionA           string   `json:"region_a"`
	RegionB           string   `json:"region_b"`
	SimilarityPercent int      `json:"similarity_percent"`
	Differences       []string `json:"differences"`
}

// RankedRegion is one entry of the best-to-worst ranking.
type RankedRegion struct {
	Rank       int    `json:"rank"`
	Region     string `json:"region"`
	Score      int    `json:"score"`
	IssueCount int    `json:"issue_count"`
}

// Recommendation is one rule-derived suggestion.
type Recommendation struct {
	Rule     string   `json:"rule"`
	Priority Priority `json:"priority"`
	Message  string   `json:"message"`
}

// String renders the recommendation the way it appears in reports.
func (r Recommendation) String() string {
	return "[" + strings.ToUpper(string(r.Priority)) + "] " + r.Message
}

// AnalysisReport is the root aggregate of one analysis invocation.
// BestRegion and WorstRegion are empty when fewer than two regions succeeded.
type AnalysisReport struct {
	ID               string             `json:"id"`
	URL              string             `json:"url"`
	Timestamp        time.Time          `json:"timestamp"`
	RequestedRegions []string           `json:"requested_regions"`
	RegionResults    []CaptureResult    `json:"region_results"`
	Issues           []Issue            `json:"issues"`
	Scores           []PerformanceScore `json:"scores"`
	Comparisons      []ComparisonPair   `json:"comparisons"`
	Ranking          []RankedRegion     `json:"ranking"`
	BestRegion       string             `json:"best_region,omitempty"`
	WorstRegion      string             `json:"worst_region,omitempty"`
	Recommendations  []string           `json:"recommendations"`
}

// SucceededRegions returns the names of regions that produced telemetry, in result order.
func (r *AnalysisReport) SucceededRegions() []string {
	var names []string
	for _, res := range r.RegionResults {
		if res.Succeeded {
			names = append(names, res.Region)
		}
	}
	return names
}

// FailedRegions returns the names of regions that failed, in result order.
func (r *AnalysisReport) FailedRegions() []string {
	var names []string
	for _, res := range r.RegionResults {
		if !res.Succeeded {
			names = append(names, res.Region)
		}
	}
	return names
}

// IssuesByRegion groups issues per region, preserving order.
func IssuesByRegion(issues []Issue) map[string][]Issue {
	grouped := make(map[string][]Issue)
	for _, is := range issues {
		grouped[is.Region] = append(grouped[is.Region], is)
	}
	return grouped
}

// MaxSeverity returns the highest severity among issues, or "" when there are none.
func MaxSeverity(issues []Issue) Severity {
	var max Severity
	for _, is := range issues {
		if max == "" || SeverityRank[is.Severity] > SeverityRank[max] {
			max = is.Severity
		}
	}
	return max
}
