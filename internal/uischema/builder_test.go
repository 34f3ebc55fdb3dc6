package uischema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babdulhakim2/webpulse/internal/domain"
	"github.com/babdulhakim2/webpulse/internal/temporal/workflows"
	"github.com/babdulhakim2/webpulse/internal/testutil"
	"github.com/babdulhakim2/webpulse/internal/uischema"
)

const base = "/api/v1/workflows/wf-1"

func completed(rep *domain.AnalysisReport) *workflows.WorkflowResult {
	return &workflows.WorkflowResult{
		ID: "a1", URL: rep.URL, Phase: workflows.PhaseCompleted,
		Settled: len(rep.RegionResults), Total: len(rep.RegionResults),
		Report: rep,
	}
}

func types(schema uischema.UISchema) []uischema.ComponentType {
	var out []uischema.ComponentType
	for _, c := range schema.Components {
		out = append(out, c.Type)
	}
	return out
}

func TestBuild_Capturing(t *testing.T) {
	state := &workflows.WorkflowResult{
		ID: "a1", URL: "https://example.com", Phase: workflows.PhaseCapturing,
		Settled: 1, Total: 2,
		Regions: []workflows.RegionProgress{
			{Region: "us-east", Settled: true, Succeeded: true},
			{Region: "eu-west"},
		},
	}

	schema := uischema.Build(state, base)
	assert.Equal(t, "v1", schema.Version)
	assert.Equal(t, "capturing", schema.Phase)
	require.Len(t, schema.Components, 1)
	assert.Equal(t, uischema.ComponentRegionProgress, schema.Components[0].Type)
	assert.Equal(t, uischema.VisibilityVisible, schema.Components[0].Visibility)
	assert.Equal(t, 1, schema.Components[0].Data["settled"])

	require.Len(t, schema.Actions, 1)
	assert.Equal(t, uischema.ActionFollow, schema.Actions[0].Type)
	assert.Equal(t, base+"/stream", schema.Actions[0].Href)
}

func TestBuild_CompletedWithFailures(t *testing.T) {
	rep := &domain.AnalysisReport{
		URL:              "https://example.com",
		RequestedRegions: []string{"us-east", "eu-west", "ap-southeast"},
		RegionResults: []domain.CaptureResult{
			testutil.Clean("us-east"),
			testutil.SlowLoad("eu-west", 7000),
			testutil.Failed("ap-southeast", domain.FailureTimeout),
		},
		Issues: []domain.Issue{
			{Type: domain.IssuePerformance, Severity: domain.SeverityCritical, Region: "eu-west", Message: "slow"},
		},
		Scores: []domain.PerformanceScore{{Region: "us-east", Score: 100}, {Region: "eu-west", Score: 60}},
		Ranking: []domain.RankedRegion{
			{Rank: 1, Region: "us-east", Score: 100},
			{Rank: 2, Region: "eu-west", Score: 60, IssueCount: 1},
		},
		Comparisons:     []domain.ComparisonPair{{RegionA: "us-east", RegionB: "eu-west", SimilarityPercent: 70}},
		BestRegion:      "us-east",
		WorstRegion:     "eu-west",
		Recommendations: []string{"[CRITICAL] Investigate eu-west"},
	}

	schema := uischema.Build(completed(rep), base)
	assert.Equal(t, []uischema.ComponentType{
		uischema.ComponentRegionProgress,
		uischema.ComponentRunSummary,
		uischema.ComponentFailedRegions,
		uischema.ComponentScoreRanking,
		uischema.ComponentIssueList,
		uischema.ComponentComparisonMatrix,
		uischema.ComponentRecommendations,
	}, types(schema))

	assert.Equal(t, uischema.VisibilityCollapsed, schema.Components[0].Visibility)
	summary := schema.Components[1].Data
	assert.Equal(t, 2, summary["succeeded"])
	assert.Equal(t, 1, summary["failed"])
	assert.Equal(t, "critical", summary["max_severity"])

	failures := schema.Components[2].Data["failures"].([]map[string]any)
	require.Len(t, failures, 1)
	assert.Equal(t, "timeout", failures[0]["kind"])

	assert.Equal(t, uischema.VisibilityVisible, schema.Components[4].Visibility)

	require.Len(t, schema.Actions, 2)
	assert.Equal(t, uischema.ActionDownloadReport, schema.Actions[0].Type)
	assert.Equal(t, base+"/report", schema.Actions[0].Href)
	require.NotNil(t, schema.Actions[1].Confirm)
	assert.True(t, schema.Actions[1].Confirm.Required)
}

func TestBuild_CompletedClean(t *testing.T) {
	rep := &domain.AnalysisReport{
		URL:              "https://example.com",
		RequestedRegions: []string{"us-east"},
		RegionResults:    []domain.CaptureResult{testutil.Clean("us-east")},
		Scores:           []domain.PerformanceScore{{Region: "us-east", Score: 100}},
		Ranking:          []domain.RankedRegion{{Rank: 1, Region: "us-east", Score: 100}},
	}

	schema := uischema.Build(completed(rep), base)
	assert.Equal(t, []uischema.ComponentType{
		uischema.ComponentRegionProgress,
		uischema.ComponentRunSummary,
		uischema.ComponentScoreRanking,
		uischema.ComponentIssueList,
	}, types(schema))
	assert.Equal(t, uischema.VisibilityCollapsed, schema.Components[3].Visibility)
	assert.Equal(t, "", schema.Components[1].Data["max_severity"])
}

func TestBuild_NoScoresHidesRanking(t *testing.T) {
	rep := &domain.AnalysisReport{
		URL:              "https://example.com",
		RequestedRegions: []string{"us-east"},
		RegionResults:    []domain.CaptureResult{testutil.Failed("us-east", domain.FailureNetwork)},
	}

	schema := uischema.Build(completed(rep), base)
	for _, c := range schema.Components {
		if c.Type == uischema.ComponentScoreRanking {
			assert.Equal(t, uischema.VisibilityHidden, c.Visibility)
		}
	}
}
