package mcpserver_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babdulhakim2/webpulse/internal/capture"
	"github.com/babdulhakim2/webpulse/internal/domain"
	"github.com/babdulhakim2/webpulse/internal/engine"
	"github.com/babdulhakim2/webpulse/internal/mcpserver"
	"github.com/babdulhakim2/webpulse/internal/render"
	"github.com/babdulhakim2/webpulse/internal/temporal/querier"
	"github.com/babdulhakim2/webpulse/internal/temporal/workflows"
	"github.com/babdulhakim2/webpulse/internal/testutil"
)

type stubQuerier struct {
	state *workflows.WorkflowResult
	err   error
}

func (s *stubQuerier) StartAnalysis(_ context.Context, in workflows.AnalysisInput) (*querier.StartedWorkflow, error) {
	return &querier.StartedWorkflow{WorkflowID: querier.WorkflowIDPrefix + in.ID}, s.err
}

func (s *stubQuerier) ListWorkflows(_ context.Context, _ querier.ListOptions) ([]querier.WorkflowSummary, error) {
	return nil, s.err
}

func (s *stubQuerier) GetWorkflowState(_ context.Context, _ string) (*workflows.WorkflowResult, error) {
	return s.state, s.err
}

func (s *stubQuerier) DescribeWorkflow(_ context.Context, _ string) (*querier.WorkflowDescription, error) {
	return nil, s.err
}

func connect(t *testing.T, responses map[string]testutil.Response, q querier.WorkflowQuerier) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	orch := capture.NewOrchestrator(testutil.Registry(), testutil.NewScriptedRenderer(responses))
	eng := engine.New(orch,
		engine.WithClock(func() time.Time { return testutil.Epoch }),
		engine.WithIDGenerator(func() string { return "a1" }))

	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "v1"}, nil)
	mcpserver.RegisterTools(server, eng, q)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	_, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func call(t *testing.T, s *mcp.ClientSession, name string, args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	res, err := s.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return res, text.Text
}

func TestRegisterTools_List(t *testing.T) {
	s := connect(t, nil, nil)
	res, err := s.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"multi_region_screenshots", "analyze_visual_issues", "compare_regional_performance",
		"list_regions", "get_analysis",
	}, names)
}

func TestMultiRegionScreenshots(t *testing.T) {
	s := connect(t, map[string]testutil.Response{"eu-west": {Err: render.ErrMalformed}}, nil)

	res, text := call(t, s, "multi_region_screenshots", map[string]any{
		"url":     "https://example.com",
		"regions": []string{"us-east", "eu-west"},
	})
	require.False(t, res.IsError, text)

	var rep domain.AnalysisReport
	require.NoError(t, json.Unmarshal([]byte(text), &rep))
	assert.Equal(t, "a1", rep.ID)
	assert.Equal(t, []string{"us-east", "eu-west"}, rep.RequestedRegions)
	assert.Equal(t, []string{"eu-west"}, rep.FailedRegions())
}

func TestMultiRegionScreenshots_KVOptimized(t *testing.T) {
	s := connect(t, nil, nil)
	res, text := call(t, s, "multi_region_screenshots", map[string]any{
		"url":         "https://example.com",
		"kvOptimized": true,
	})
	require.False(t, res.IsError, text)

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &raw))
	assert.Contains(t, raw, "regions")
	assert.NotContains(t, raw, "region_results")
}

func TestMultiRegionScreenshots_ValidationError(t *testing.T) {
	s := connect(t, nil, nil)
	res, text := call(t, s, "multi_region_screenshots", map[string]any{
		"url":     "https://example.com",
		"regions": []string{"mars-north"},
	})
	assert.True(t, res.IsError)
	assert.Contains(t, text, "mars-north")
}

func TestAnalyzeVisualIssues(t *testing.T) {
	s := connect(t, map[string]testutil.Response{
		"us-east": {Telemetry: testutil.TelemetryWith(func(tel *render.Telemetry) {
			tel.Console = []domain.ConsoleEntry{testutil.Console("warning", "deprecated API")}
			tel.Network = append(tel.Network, testutil.Request("https://example.com/app.js", "script", 500))
		})},
	}, nil)

	res, text := call(t, s, "analyze_visual_issues", map[string]any{
		"url":            "https://example.com",
		"regions":        []string{"us-east"},
		"severityFilter": "high",
	})
	require.False(t, res.IsError, text)

	var out engine.IssuesResult
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	require.Len(t, out.Regions, 1)
	require.Len(t, out.Regions[0].Issues, 1)
	assert.Equal(t, domain.IssueMissingResource, out.Regions[0].Issues[0].Type)
	assert.Equal(t, domain.SeverityHigh, out.Regions[0].Issues[0].Severity)
}

func TestCompareRegionalPerformance(t *testing.T) {
	s := connect(t, nil, nil)

	res, text := call(t, s, "compare_regional_performance", map[string]any{
		"url":                    "https://example.com",
		"regions":                []string{"us-east", "ap-northeast"},
		"includeNetworkAnalysis": true,
	})
	require.False(t, res.IsError, text)

	var out engine.CompareResult
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.Len(t, out.Ranking, 2)
	assert.Len(t, out.Comparisons, 1)
	assert.Len(t, out.Network, 2)

	res, _ = call(t, s, "compare_regional_performance", map[string]any{
		"url":     "https://example.com",
		"regions": []string{},
	})
	assert.True(t, res.IsError)
}

func TestListRegions(t *testing.T) {
	s := connect(t, nil, nil)
	res, text := call(t, s, "list_regions", map[string]any{})
	require.False(t, res.IsError)

	var out struct {
		Regions []domain.Region `json:"regions"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.Len(t, out.Regions, 5)
	assert.Equal(t, "us-east", out.Regions[0].Name)
}

func TestGetAnalysis(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		s := connect(t, nil, nil)
		res, text := call(t, s, "get_analysis", map[string]any{"workflow_id": "wf-1"})
		assert.True(t, res.IsError)
		assert.Contains(t, text, "not configured")
	})

	t.Run("missing id", func(t *testing.T) {
		s := connect(t, nil, &stubQuerier{})
		res, _ := call(t, s, "get_analysis", map[string]any{"workflow_id": ""})
		assert.True(t, res.IsError)
	})

	t.Run("state", func(t *testing.T) {
		q := &stubQuerier{state: &workflows.WorkflowResult{ID: "a1", Phase: workflows.PhaseCapturing, Settled: 1, Total: 3}}
		s := connect(t, nil, q)
		res, text := call(t, s, "get_analysis", map[string]any{"workflow_id": "webpulse-analysis-a1"})
		require.False(t, res.IsError)

		var out workflows.WorkflowResult
		require.NoError(t, json.Unmarshal([]byte(text), &out))
		assert.Equal(t, 1, out.Settled)
		assert.False(t, out.Done())
	})
}
