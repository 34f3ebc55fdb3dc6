package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babdulhakim2/webpulse/internal/domain"
	"github.com/babdulhakim2/webpulse/internal/render"
	"github.com/babdulhakim2/webpulse/internal/testutil"
)

func TestComparePerformance(t *testing.T) {
	e, _ := newEngine(t, map[string]testutil.Response{
		"us-east":      {Telemetry: testutil.CleanTelemetry()},
		"eu-west":      {Telemetry: noisyTelemetry()},
		"ap-southeast": {Err: render.ErrProvider},
	})

	res, err := e.ComparePerformance(context.Background(), CompareRequest{
		URL:                    "https://example.com",
		Regions:                []string{"us-east", "eu-west", "ap-southeast"},
		IncludeNetworkAnalysis: true,
	})
	require.NoError(t, err)

	require.Len(t, res.Ranking, 2)
	assert.Equal(t, "us-east", res.BestRegion)
	assert.Equal(t, "eu-west", res.WorstRegion)
	require.Len(t, res.Comparisons, 1)
	assert.Less(t, res.Comparisons[0].SimilarityPercent, 100)
	require.Len(t, res.FailedRegions, 1)
	assert.Equal(t, "ap-southeast", res.FailedRegions[0].Region)
	require.Len(t, res.Network, 2)
	assert.Equal(t, 2, res.Network[1].FailedRequests)
	assert.NotEmpty(t, res.Recommendations)
}

func TestComparePerformance_NoRecommendations(t *testing.T) {
	e, _ := newEngine(t, map[string]testutil.Response{"eu-west": {Telemetry: noisyTelemetry()}})
	res, err := e.ComparePerformance(context.Background(), CompareRequest{
		URL:                     "https://example.com",
		Regions:                 []string{"us-east", "eu-west"},
		GenerateRecommendations: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Recommendations)
	assert.Empty(t, res.Network)
}

func TestComparePerformance_SingleSuccess(t *testing.T) {
	e, _ := newEngine(t, map[string]testutil.Response{"eu-west": {Err: render.ErrNetwork}})
	res, err := e.ComparePerformance(context.Background(), CompareRequest{
		URL:     "https://example.com",
		Regions: []string{"us-east", "eu-west"},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Comparisons)
	assert.Empty(t, res.Ranking)
	assert.Empty(t, res.BestRegion)
	assert.Empty(t, res.WorstRegion)
}

func TestComparePerformance_RegionsRequired(t *testing.T) {
	e, _ := newEngine(t, nil)
	_, err := e.ComparePerformance(context.Background(), CompareRequest{URL: "https://example.com", Regions: []string{" "}})
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func TestSummarizeNetwork(t *testing.T) {
	res := testutil.Succeeded("us-east", testutil.TelemetryWith(func(tel *render.Telemetry) {
		tel.Network = []domain.NetworkEntry{
			{URL: "https://example.com/", ResourceType: "document", Status: testutil.Status(200), DurationMs: testutil.Duration(100)},
			{URL: "https://example.com/big.js", ResourceType: "script", Status: testutil.Status(200), DurationMs: testutil.Duration(900)},
			{URL: "https://example.com/gone.png", ResourceType: "image", Status: testutil.Status(404), DurationMs: testutil.Duration(20)},
			{URL: "https://example.com/pending"},
		}
	}))
	s := SummarizeNetwork(res)
	assert.Equal(t, 4, s.TotalRequests)
	assert.Equal(t, 1, s.FailedRequests)
	assert.InDelta(t, 340.0, s.AverageDurationMs, 0.001)
	assert.Equal(t, "https://example.com/big.js", s.SlowestURL)
	assert.Equal(t, 900.0, s.SlowestDurationMs)
	assert.Equal(t, map[string]int{"document": 1, "script": 1, "image": 1, "other": 1}, s.RequestsByType)
}
