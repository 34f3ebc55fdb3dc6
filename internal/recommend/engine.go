// Package recommend turns aggregated issues and scores into prioritized,
// human-actionable recommendations.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/babdulhakim2/webpulse/internal/domain"
)

// Thresholds configures the rule conditions.
type Thresholds struct {
	// LowScore flags any region scoring strictly below it.
	LowScore int
	// ScoreSpread flags a best-to-worst score gap strictly above it.
	ScoreSpread int
	// TotalIssues flags a total issue count strictly above it.
	TotalIssues int
	// MinRegions is how many regions must share a category for the
	// cross-region rules to fire.
	MinRegions int
}

// DefaultThresholds returns the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{LowScore: 75, ScoreSpread: 15, TotalIssues: 10, MinRegions: 2}
}

// Input is the frozen aggregate the rules read.
type Input struct {
	Issues []domain.Issue
	Scores []domain.PerformanceScore
}

// Rule yields at most one recommendation when its condition holds.
type Rule struct {
	Name     string
	Priority domain.Priority
	Evaluate func(in Input, th Thresholds) (string, bool)
}

// DefaultRules returns the built-in rule table.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "missing_resources",
			Priority: domain.PriorityHigh,
			Evaluate: func(in Input, th Thresholds) (string, bool) {
				regions := regionsWith(in.Issues, domain.IssueMissingResource)
				if len(regions) < th.MinRegions {
					return "", false
				}
				return fmt.Sprintf("Missing resources in %d regions (%s): verify CDN distribution and asset availability for every edge location",
					len(regions), strings.Join(regions, ", ")), true
			},
		},
		{
			Name:     "slow_load",
			Priority: domain.PriorityHigh,
			Evaluate: func(in Input, th Thresholds) (string, bool) {
				regions := regionsWith(in.Issues, domain.IssuePerformance)
				if len(regions) < th.MinRegions {
					return "", false
				}
				return fmt.Sprintf("Performance issues in %d regions (%s): reduce page weight, compress assets and defer non-critical scripts",
					len(regions), strings.Join(regions, ", ")), true
			},
		},
		{
			Name:     "low_score",
			Priority: domain.PriorityCritical,
			Evaluate: func(in Input, th Thresholds) (string, bool) {
				var low []domain.PerformanceScore
				for _, s := range in.Scores {
					if s.Score < th.LowScore {
						low = append(low, s)
					}
				}
				if len(low) == 0 {
					return "", false
				}
				sort.SliceStable(low, func(i, j int) bool {
					if low[i].Score != low[j].Score {
						return low[i].Score < low[j].Score
					}
					return low[i].Region < low[j].Region
				})
				parts := make([]string, len(low))
				for i, s := range low {
					parts[i] = fmt.Sprintf("%s (%d)", s.Region, s.Score)
				}
				return fmt.Sprintf("Poor performance in %s: review infrastructure and CDN coverage for these regions",
					strings.Join(parts, ", ")), true
			},
		},
		{
			Name:     "score_spread",
			Priority: domain.PriorityMedium,
			Evaluate: func(in Input, th Thresholds) (string, bool) {
				if len(in.Scores) < 2 {
					return "", false
				}
				lo, hi := in.Scores[0], in.Scores[0]
				for _, s := range in.Scores[1:] {
					if s.Score < lo.Score {
						lo = s
					}
					if s.Score > hi.Score {
						hi = s
					}
				}
				spread := hi.Score - lo.Score
				if spread <= th.ScoreSpread {
					return "", false
				}
				return fmt.Sprintf("Scores vary by %d points across regions (%s: %d, %s: %d): consider regional CDN optimization or edge caching",
					spread, hi.Region, hi.Score, lo.Region, lo.Score), true
			},
		},
		{
			Name:     "issue_volume",
			Priority: domain.PriorityLow,
			Evaluate: func(in Input, th Thresholds) (string, bool) {
				if len(in.Issues) <= th.TotalIssues {
					return "", false
				}
				return fmt.Sprintf("%d issues detected across all regions: schedule a general review of the page", len(in.Issues)), true
			},
		},
	}
}

// Engine evaluates the rule table. It holds no mutable state.
type Engine struct {
	Thresholds Thresholds
	Rules      []Rule
}

// NewEngine returns an Engine with the default thresholds and rules.
func NewEngine() *Engine {
	return &Engine{Thresholds: DefaultThresholds(), Rules: DefaultRules()}
}

// Recommend evaluates every rule and returns the fired recommendations,
// highest priority first. Rules of equal priority keep table order.
func (e *Engine) Recommend(in Input) []domain.Recommendation {
	out := []domain.Recommendation{}
	for _, r := range e.Rules {
		if msg, ok := r.Evaluate(in, e.Thresholds); ok {
			out = append(out, domain.Recommendation{Rule: r.Name, Priority: r.Priority, Message: msg})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return domain.PriorityRank[out[i].Priority] > domain.PriorityRank[out[j].Priority]
	})
	return out
}

// Strings renders recommendations in report form.
func Strings(recs []domain.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.String()
	}
	return out
}

// regionsWith returns the distinct regions having an issue of type t, in first-seen order.
func regionsWith(issues []domain.Issue, t domain.IssueType) []string {
	seen := map[string]bool{}
	var out []string
	for _, is := range issues {
		if is.Type == t && !seen[is.Region] {
			seen[is.Region] = true
			out = append(out, is.Region)
		}
	}
	return out
}
