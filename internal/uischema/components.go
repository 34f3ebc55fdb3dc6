package uischema

import (
	"github.com/babdulhakim2/webpulse/internal/domain"
	"github.com/babdulhakim2/webpulse/internal/temporal/workflows"
)

func regionProgress(state *workflows.WorkflowResult) Component {
	vis := VisibilityVisible
	if state.Done() {
		vis = VisibilityCollapsed
	}
	return Component{
		Type:       ComponentRegionProgress,
		Title:      "Region Progress",
		Priority:   0,
		Visibility: vis,
		Data: map[string]any{
			"url":     state.URL,
			"settled": state.Settled,
			"total":   state.Total,
			"regions": state.Regions,
		},
	}
}

func runSummary(r *domain.AnalysisReport) Component {
	return Component{
		Type:       ComponentRunSummary,
		Title:      "Summary",
		Priority:   10,
		Visibility: VisibilityVisible,
		Data: map[string]any{
			"url":          r.URL,
			"analyzed_at":  r.Timestamp,
			"succeeded":    len(r.SucceededRegions()),
			"failed":       len(r.FailedRegions()),
			"issue_count":  len(r.Issues),
			"max_severity": string(domain.MaxSeverity(r.Issues)),
			"best_region":  r.BestRegion,
			"worst_region": r.WorstRegion,
		},
	}
}

// failedRegions lists regions without telemetry and why.
func failedRegions(r *domain.AnalysisReport) Component {
	var failures []map[string]any
	for _, res := range r.RegionResults {
		if res.Succeeded || res.Error == nil {
			continue
		}
		failures = append(failures, map[string]any{
			"region":  res.Region,
			"kind":    string(res.Error.Kind),
			"message": res.Error.Message,
		})
	}
	return Component{
		Type:       ComponentFailedRegions,
		Title:      "Failed Regions",
		Priority:   15,
		Visibility: VisibilityVisible,
		Data:       map[string]any{"failures": failures},
	}
}

func scoreRanking(r *domain.AnalysisReport) Component {
	vis := VisibilityVisible
	if len(r.Ranking) == 0 {
		vis = VisibilityHidden
	}
	return Component{
		Type:       ComponentScoreRanking,
		Title:      "Performance Ranking",
		Priority:   20,
		Visibility: vis,
		Data: map[string]any{
			"ranking": r.Ranking,
			"scores":  r.Scores,
		},
	}
}

// issueList groups issues by region. Without critical or high issues it is
// collapsed.
func issueList(r *domain.AnalysisReport) Component {
	vis := VisibilityCollapsed
	max := domain.MaxSeverity(r.Issues)
	if max != "" && max.AtLeast(domain.SeverityHigh) {
		vis = VisibilityVisible
	}
	bySeverity := make(map[string]int)
	for _, is := range r.Issues {
		bySeverity[string(is.Severity)]++
	}
	return Component{
		Type:       ComponentIssueList,
		Title:      "Issues",
		Priority:   30,
		Visibility: vis,
		Data: map[string]any{
			"by_region":   domain.IssuesByRegion(r.Issues),
			"by_severity": bySeverity,
		},
	}
}

func comparisonMatrix(r *domain.AnalysisReport) Component {
	return Component{
		Type:       ComponentComparisonMatrix,
		Title:      "Regional Comparison",
		Priority:   40,
		Visibility: VisibilityVisible,
		Data:       map[string]any{"pairs": r.Comparisons},
	}
}

func recommendations(r *domain.AnalysisReport) Component {
	return Component{
		Type:       ComponentRecommendations,
		Title:      "Recommendations",
		Priority:   50,
		Visibility: VisibilityVisible,
		Data:       map[string]any{"items": r.Recommendations},
	}
}
