// Package mcpserver exposes the analysis engine and durable runs via MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/babdulhakim2/webpulse/internal/domain"
	"github.com/babdulhakim2/webpulse/internal/engine"
	"github.com/babdulhakim2/webpulse/internal/temporal/querier"
)

// RegisterTools registers all analysis MCP tools on the given server.
// q may be nil, in which case get_analysis reports that durable runs are
// not configured.
func RegisterTools(server *mcp.Server, eng *engine.Engine, q querier.WorkflowQuerier) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "multi_region_screenshots",
			Description: "Capture a URL from several geographic regions and return the full analysis report: per-region results, issues, scores, comparisons, ranking and recommendations",
		},
		multiRegionScreenshotsHandler(eng),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "analyze_visual_issues",
			Description: "Detect layout, missing resource, rendering and performance issues for a URL, grouped by region and filtered by type and minimum severity",
		},
		analyzeVisualIssuesHandler(eng),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "compare_regional_performance",
			Description: "Rank regions by performance score and compare them pairwise, optionally with network summaries and recommendations",
		},
		compareRegionalPerformanceHandler(eng),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_regions",
			Description: "List the regions a URL can be captured from",
		},
		listRegionsHandler(eng),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_analysis",
			Description: "Get progress and, once complete, the report of a durable analysis run",
		},
		getAnalysisHandler(q),
	)
}

type screenshotsInput struct {
	URL                    string   `json:"url" jsonschema:"absolute http(s) URL to analyze"`
	Regions                []string `json:"regions,omitempty" jsonschema:"region names; all regions when empty"`
	EnableVisualComparison *bool    `json:"enableVisualComparison,omitempty" jsonschema:"compute pairwise region comparisons (default true)"`
	EnableIssueDetection   *bool    `json:"enableIssueDetection,omitempty" jsonschema:"detect issues (default true)"`
	KVOptimized            bool     `json:"kvOptimized,omitempty" jsonschema:"return the reduced report without raw console and network entries"`
	Width                  int      `json:"width,omitempty" jsonschema:"viewport width in pixels (default 1920)"`
	Height                 int      `json:"height,omitempty" jsonschema:"viewport height in pixels (default 1080)"`
	FullPage               bool     `json:"fullPage,omitempty" jsonschema:"capture the full scrollable page"`
	Timeout                int      `json:"timeout,omitempty" jsonschema:"per-region timeout in milliseconds (default 60000)"`
}

func multiRegionScreenshotsHandler(eng *engine.Engine) mcp.ToolHandlerFor[screenshotsInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input screenshotsInput) (*mcp.CallToolResult, any, error) {
		res, err := eng.Analyze(ctx, engine.AnalyzeRequest{
			URL:                    input.URL,
			Regions:                input.Regions,
			EnableVisualComparison: input.EnableVisualComparison,
			EnableIssueDetection:   input.EnableIssueDetection,
			KVOptimized:            input.KVOptimized,
			Width:                  input.Width,
			Height:                 input.Height,
			FullPage:               input.FullPage,
			Timeout:                millis(input.Timeout),
		})
		if err != nil {
			return toolError("multi_region_screenshots", err)
		}
		return textResult(res.Value())
	}
}

type issuesInput struct {
	URL            string   `json:"url" jsonschema:"absolute http(s) URL to analyze"`
	Regions        []string `json:"regions,omitempty" jsonschema:"region names; all regions when empty"`
	IssueTypes     []string `json:"issueTypes,omitempty" jsonschema:"layout, missing_resource, rendering or performance; all when empty"`
	SeverityFilter string   `json:"severityFilter,omitempty" jsonschema:"minimum severity: low, medium, high or critical (default low)"`
	Timeout        int      `json:"timeout,omitempty" jsonschema:"per-region timeout in milliseconds (default 60000)"`
}

func analyzeVisualIssuesHandler(eng *engine.Engine) mcp.ToolHandlerFor[issuesInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input issuesInput) (*mcp.CallToolResult, any, error) {
		res, err := eng.AnalyzeIssues(ctx, engine.IssuesRequest{
			URL:            input.URL,
			Regions:        input.Regions,
			IssueTypes:     input.IssueTypes,
			SeverityFilter: input.SeverityFilter,
			Timeout:        millis(input.Timeout),
		})
		if err != nil {
			return toolError("analyze_visual_issues", err)
		}
		return textResult(res)
	}
}

type compareInput struct {
	URL                     string   `json:"url" jsonschema:"absolute http(s) URL to analyze"`
	Regions                 []string `json:"regions" jsonschema:"region names to compare"`
	IncludeNetworkAnalysis  bool     `json:"includeNetworkAnalysis,omitempty" jsonschema:"add per-region network summaries"`
	GenerateRecommendations *bool    `json:"generateRecommendations,omitempty" jsonschema:"add recommendations (default true)"`
	Timeout                 int      `json:"timeout,omitempty" jsonschema:"per-region timeout in milliseconds (default 60000)"`
}

func compareRegionalPerformanceHandler(eng *engine.Engine) mcp.ToolHandlerFor[compareInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input compareInput) (*mcp.CallToolResult, any, error) {
		res, err := eng.ComparePerformance(ctx, engine.CompareRequest{
			URL:                     input.URL,
			Regions:                 input.Regions,
			IncludeNetworkAnalysis:  input.IncludeNetworkAnalysis,
			GenerateRecommendations: input.GenerateRecommendations,
			Timeout:                 millis(input.Timeout),
		})
		if err != nil {
			return toolError("compare_regional_performance", err)
		}
		return textResult(res)
	}
}

type emptyInput struct{}

func listRegionsHandler(eng *engine.Engine) mcp.ToolHandlerFor[emptyInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
		return textResult(map[string]any{"regions": eng.Regions().All()})
	}
}

type workflowIDInput struct {
	WorkflowID string `json:"workflow_id" jsonschema:"durable analysis workflow ID"`
}

func getAnalysisHandler(q querier.WorkflowQuerier) mcp.ToolHandlerFor[workflowIDInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input workflowIDInput) (*mcp.CallToolResult, any, error) {
		if q == nil {
			return errorResult("durable analyses are not configured"), nil, nil
		}
		if input.WorkflowID == "" {
			return errorResult("workflow_id is required"), nil, nil
		}

		result, err := q.GetWorkflowState(ctx, input.WorkflowID)
		if err != nil {
			return nil, nil, fmt.Errorf("get_analysis: %w", err)
		}

		return textResult(result)
	}
}

// toolError reports validation failures as tool results so the caller can
// correct its input; anything else is a protocol-level error.
func toolError(tool string, err error) (*mcp.CallToolResult, any, error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return errorResult(ve.Error()), nil, nil
	}
	return nil, nil, fmt.Errorf("%s: %w", tool, err)
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func textResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
