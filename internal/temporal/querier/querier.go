package querier

import (
	"context"
	"fmt"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"

	"github.com/babdulhakim2/webpulse/internal/temporal/versioning"
	"github.com/babdulhakim2/webpulse/internal/temporal/workflows"
)

// TemporalQuerier implements WorkflowQuerier using a Temporal client.
type TemporalQuerier struct {
	client client.Client
}

// New creates a TemporalQuerier.
func New(c client.Client) *TemporalQuerier {
	return &TemporalQuerier{client: c}
}

// StartAnalysis starts a RegionalAnalysisWorkflow on the analysis queue.
// The workflow ID is derived from the analysis ID.
func (q *TemporalQuerier) StartAnalysis(ctx context.Context, input workflows.AnalysisInput) (*StartedWorkflow, error) {
	run, err := q.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        WorkflowIDPrefix + input.ID,
		TaskQueue: versioning.QueueAnalysis,
	}, workflows.RegionalAnalysisWorkflow, input)
	if err != nil {
		return nil, fmt.Errorf("start analysis workflow: %w", err)
	}
	return &StartedWorkflow{WorkflowID: run.GetID(), RunID: run.GetRunID()}, nil
}

// ListWorkflows lists workflow executions using Temporal's visibility API.
func (q *TemporalQuerier) ListWorkflows(ctx context.Context, opts ListOptions) ([]WorkflowSummary, error) {
	query := ""
	if opts.TaskQueue != "" {
		query = fmt.Sprintf("TaskQueue = %q", opts.TaskQueue)
	}
	if opts.StatusFilter != "" {
		if query != "" {
			query += " AND "
		}
		query += fmt.Sprintf("ExecutionStatus = %q", opts.StatusFilter)
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	resp, err := q.client.ListWorkflow(ctx, &workflowservice.ListWorkflowExecutionsRequest{
		Query:    query,
		PageSize: int32(pageSize),
	})
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}

	summaries := make([]WorkflowSummary, 0, len(resp.Executions))
	for _, exec := range resp.Executions {
		s := WorkflowSummary{
			WorkflowID: exec.Execution.WorkflowId,
			RunID:      exec.Execution.RunId,
			Status:     exec.Status.String(),
			StartTime:  exec.StartTime.AsTime(),
			TaskQueue:  exec.TaskQueue,
		}
		if exec.CloseTime != nil {
			s.CloseTime = exec.CloseTime.AsTime()
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// GetWorkflowState returns the current progress of a run.
// For completed runs, reads the result directly.
// For running runs, uses the state Query handler.
func (q *TemporalQuerier) GetWorkflowState(ctx context.Context, workflowID string) (*workflows.WorkflowResult, error) {
	desc, err := q.client.DescribeWorkflowExecution(ctx, workflowID, "")
	if err != nil {
		return nil, fmt.Errorf("describe workflow: %w", err)
	}

	switch status := desc.WorkflowExecutionInfo.Status; status {
	case enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		run := q.client.GetWorkflow(ctx, workflowID, "")
		var result workflows.WorkflowResult
		if err := run.Get(ctx, &result); err != nil {
			return nil, fmt.Errorf("get workflow result: %w", err)
		}
		return &result, nil

	case enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING:
		resp, err := q.client.QueryWorkflow(ctx, workflowID, "", workflows.QueryNameState)
		if err != nil {
			return nil, fmt.Errorf("query workflow state: %w", err)
		}
		var result workflows.WorkflowResult
		if err := resp.Get(&result); err != nil {
			return nil, fmt.Errorf("decode query result: %w", err)
		}
		return &result, nil

	default:
		return nil, fmt.Errorf("%w: workflow %s has status %s", ErrNotReadable, workflowID, status)
	}
}

// DescribeWorkflow returns detailed information about a workflow execution.
func (q *TemporalQuerier) DescribeWorkflow(ctx context.Context, workflowID string) (*WorkflowDescription, error) {
	desc, err := q.client.DescribeWorkflowExecution(ctx, workflowID, "")
	if err != nil {
		return nil, fmt.Errorf("describe workflow: %w", err)
	}

	info := desc.WorkflowExecutionInfo
	wd := &WorkflowDescription{
		WorkflowSummary: WorkflowSummary{
			WorkflowID: info.Execution.WorkflowId,
			RunID:      info.Execution.RunId,
			Status:     info.Status.String(),
			StartTime:  info.StartTime.AsTime(),
			TaskQueue:  info.TaskQueue,
		},
		HistoryLength: info.HistoryLength,
		PendingTasks:  len(desc.PendingActivities),
	}
	if info.CloseTime != nil {
		wd.CloseTime = info.CloseTime.AsTime()
	}
	return wd, nil
}
