package querier

import (
	"context"

	"github.com/babdulhakim2/webpulse/internal/temporal/workflows"
)

// WorkflowQuerier starts durable analyses and provides read access to their
// state. Used by the HTTP API, AG-UI streamer, MCP server and CLI.
type WorkflowQuerier interface {
	StartAnalysis(ctx context.Context, input workflows.AnalysisInput) (*StartedWorkflow, error)
	ListWorkflows(ctx context.Context, opts ListOptions) ([]WorkflowSummary, error)
	GetWorkflowState(ctx context.Context, workflowID string) (*workflows.WorkflowResult, error)
	DescribeWorkflow(ctx context.Context, workflowID string) (*WorkflowDescription, error)
}
