// Package detect classifies one region's raw telemetry into typed issues.
//
// Detection is a table of rules, one per issue category, evaluated in the
// fixed category order layout, missing_resource, rendering, performance.
// Rules are independent: no rule looks at another rule's output.
package detect

import (
	"fmt"
	"strings"
	"time"

	"github.com/babdulhakim2/webpulse/internal/domain"
)

// Thresholds are the timing limits above which a performance issue is raised.
type Thresholds struct {
	SlowLoadMs float64
	LCPMs      float64
}

// DefaultThresholds returns the documented defaults: 3000ms load, 2500ms LCP.
func DefaultThresholds() Thresholds {
	return Thresholds{SlowLoadMs: 3000, LCPMs: 2500}
}

// Filter selects which issues are kept. An empty IssueTypes keeps every
// category; an empty MinSeverity keeps every severity.
type Filter struct {
	IssueTypes  []domain.IssueType
	MinSeverity domain.Severity
}

// Allows reports whether is passes the filter.
func (f Filter) Allows(is domain.Issue) bool {
	if f.MinSeverity != "" && !is.Severity.AtLeast(f.MinSeverity) {
		return false
	}
	if len(f.IssueTypes) == 0 {
		return true
	}
	for _, t := range f.IssueTypes {
		if t == is.Type {
			return true
		}
	}
	return false
}

// Rule emits the issues of one category for a succeeded capture.
type Rule struct {
	Type   domain.IssueType
	Detect func(res domain.CaptureResult, th Thresholds) []domain.Issue
}

// DefaultRules returns the built-in rule table in category order.
func DefaultRules() []Rule {
	return []Rule{
		{Type: domain.IssueLayout, Detect: detectLayout},
		{Type: domain.IssueMissingResource, Detect: detectMissingResources},
		{Type: domain.IssueRendering, Detect: detectRendering},
		{Type: domain.IssuePerformance, Detect: detectPerformance},
	}
}

// Detector runs the rule table over succeeded captures.
type Detector struct {
	Thresholds Thresholds
	Rules      []Rule
}

// NewDetector returns a Detector with the default thresholds and rules.
func NewDetector() *Detector {
	return &Detector{Thresholds: DefaultThresholds(), Rules: DefaultRules()}
}

// Detect returns the issues in res that pass f, in rule order then discovery
// order. Failed captures carry no telemetry and yield no issues.
func (d *Detector) Detect(res domain.CaptureResult, f Filter) []domain.Issue {
	if !res.Succeeded {
		return nil
	}
	var out []domain.Issue
	for _, rule := range d.Rules {
		if len(f.IssueTypes) > 0 && !f.Allows(domain.Issue{Type: rule.Type, Severity: domain.SeverityCritical}) {
			continue
		}
		for _, is := range rule.Detect(res, d.Thresholds) {
			is.Type = rule.Type
			is.Region = res.Region
			if f.Allows(is) {
				out = append(out, is)
			}
		}
	}
	return out
}

func detectLayout(res domain.CaptureResult, _ Thresholds) []domain.Issue {
	var out []domain.Issue
	for _, a := range res.Layout {
		sev := a.Severity
		if !sev.Valid() {
			sev = domain.SeverityMedium
		}
		out = append(out, domain.Issue{Severity: sev, Message: a.Message, Evidence: a.Evidence})
	}
	return out
}

func detectMissingResources(res domain.CaptureResult, _ Thresholds) []domain.Issue {
	var out []domain.Issue
	for _, n := range res.Network {
		if !n.Failed() {
			continue
		}
		kind := n.ResourceType
		if kind == "" {
			kind = "resource"
		}
		out = append(out, domain.Issue{
			Severity: missingResourceSeverity(n),
			Message:  fmt.Sprintf("Failed to load %s: %s (HTTP %d)", kind, n.URL, *n.Status),
			Evidence: fmt.Sprintf("%s %s -> %d", methodOrGet(n.Method), n.URL, *n.Status),
		})
	}
	return out
}

// missingResourceSeverity is high for server errors and for any failed
// stylesheet or script, medium otherwise.
func missingResourceSeverity(n domain.NetworkEntry) domain.Severity {
	if n.ServerError() {
		return domain.SeverityHigh
	}
	switch strings.ToLower(n.ResourceType) {
	case "stylesheet", "script":
		return domain.SeverityHigh
	}
	return domain.SeverityMedium
}

func methodOrGet(m string) string {
	if m == "" {
		return "GET"
	}
	return strings.ToUpper(m)
}

func detectRendering(res domain.CaptureResult, _ Thresholds) []domain.Issue {
	var out []domain.Issue
	for _, c := range res.Console {
		var sev domain.Severity
		switch {
		case c.IsError():
			sev = domain.SeverityHigh
		case c.IsWarning():
			sev = domain.SeverityLow
		default:
			continue
		}
		evidence := "console." + strings.ToLower(c.Level)
		if !c.Timestamp.IsZero() {
			evidence += " at " + c.Timestamp.UTC().Format(time.RFC3339)
		}
		out = append(out, domain.Issue{
			Severity: sev,
			Message:  fmt.Sprintf("Console %s: %s", strings.ToLower(c.Level), c.Text),
			Evidence: evidence,
		})
	}
	return out
}

func detectPerformance(res domain.CaptureResult, th Thresholds) []domain.Issue {
	var out []domain.Issue
	load := res.Timing.LoadTimeMs
	if load > th.SlowLoadMs {
		sev := domain.SeverityHigh
		if load > 2*th.SlowLoadMs {
			sev = domain.SeverityCritical
		}
		out = append(out, domain.Issue{
			Severity: sev,
			Message:  fmt.Sprintf("Slow page load: %.0fms exceeds the %.0fms threshold", load, th.SlowLoadMs),
			Evidence: fmt.Sprintf("loadTimeMs=%.0f domContentLoadedMs=%.0f", load, res.Timing.DOMContentLoadedMs),
		})
	}
	lcp := res.Timing.LargestContentfulPaintMs
	if lcp > th.LCPMs {
		out = append(out, domain.Issue{
			Severity: domain.SeverityMedium,
			Message:  fmt.Sprintf("Slow largest contentful paint: %.0fms exceeds %.0fms", lcp, th.LCPMs),
			Evidence: fmt.Sprintf("largestContentfulPaintMs=%.0f", lcp),
		})
	}
	return out
}
