package querier_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	commonpb "go.temporal.io/api/common/v1"
	enumspb "go.temporal.io/api/enums/v1"
	workflowpb "go.temporal.io/api/workflow/v1"
	"go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"

	"github.com/babdulhakim2/webpulse/internal/temporal/querier"
	"github.com/babdulhakim2/webpulse/internal/temporal/versioning"
	"github.com/babdulhakim2/webpulse/internal/temporal/workflows"
)

func execInfo(id string, status enumspb.WorkflowExecutionStatus) *workflowpb.WorkflowExecutionInfo {
	return &workflowpb.WorkflowExecutionInfo{
		Execution:     &commonpb.WorkflowExecution{WorkflowId: id, RunId: "run-" + id},
		Status:        status,
		TaskQueue:     versioning.QueueAnalysis,
		HistoryLength: 12,
	}
}

func TestStartAnalysis(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	run.On("GetID").Return("webpulse-analysis-a1")
	run.On("GetRunID").Return("run-1")

	input := workflows.AnalysisInput{ID: "a1", URL: "https://example.com"}
	c.On("ExecuteWorkflow", mock.Anything,
		mock.MatchedBy(func(o client.StartWorkflowOptions) bool {
			return o.ID == "webpulse-analysis-a1" && o.TaskQueue == versioning.QueueAnalysis
		}),
		mock.Anything, input,
	).Return(run, nil)

	started, err := querier.New(c).StartAnalysis(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "webpulse-analysis-a1", started.WorkflowID)
	assert.Equal(t, "run-1", started.RunID)
	c.AssertExpectations(t)
}

func TestStartAnalysis_Error(t *testing.T) {
	c := &mocks.Client{}
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("namespace not found"))

	_, err := querier.New(c).StartAnalysis(context.Background(), workflows.AnalysisInput{ID: "a1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start analysis workflow")
}

func TestListWorkflows(t *testing.T) {
	c := &mocks.Client{}
	c.On("ListWorkflow", mock.Anything, mock.MatchedBy(func(req *workflowservice.ListWorkflowExecutionsRequest) bool {
		return req.Query == `TaskQueue = "webpulse-analysis" AND ExecutionStatus = "Running"` && req.PageSize == 50
	})).Return(&workflowservice.ListWorkflowExecutionsResponse{
		Executions: []*workflowpb.WorkflowExecutionInfo{
			execInfo("wf-1", enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING),
			execInfo("wf-2", enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING),
		},
	}, nil)

	got, err := querier.New(c).ListWorkflows(context.Background(), querier.ListOptions{
		TaskQueue:    versioning.QueueAnalysis,
		StatusFilter: "Running",
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "wf-1", got[0].WorkflowID)
	assert.Equal(t, "run-wf-1", got[0].RunID)
	assert.Equal(t, "Running", got[0].Status)
	assert.True(t, got[0].CloseTime.IsZero())
}

func TestDescribeWorkflow(t *testing.T) {
	c := &mocks.Client{}
	c.On("DescribeWorkflowExecution", mock.Anything, "wf-1", "").Return(&workflowservice.DescribeWorkflowExecutionResponse{
		WorkflowExecutionInfo: execInfo("wf-1", enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING),
		PendingActivities:     []*workflowpb.PendingActivityInfo{{}, {}},
	}, nil)

	desc, err := querier.New(c).DescribeWorkflow(context.Background(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "wf-1", desc.WorkflowID)
	assert.Equal(t, versioning.QueueAnalysis, desc.TaskQueue)
	assert.EqualValues(t, 12, desc.HistoryLength)
	assert.Equal(t, 2, desc.PendingTasks)
}

func TestGetWorkflowState_NotReadable(t *testing.T) {
	c := &mocks.Client{}
	c.On("DescribeWorkflowExecution", mock.Anything, "wf-1", "").Return(&workflowservice.DescribeWorkflowExecutionResponse{
		WorkflowExecutionInfo: execInfo("wf-1", enumspb.WORKFLOW_EXECUTION_STATUS_TERMINATED),
	}, nil)

	_, err := querier.New(c).GetWorkflowState(context.Background(), "wf-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, querier.ErrNotReadable)
}

func TestGetWorkflowState_Completed(t *testing.T) {
	c := &mocks.Client{}
	c.On("DescribeWorkflowExecution", mock.Anything, "wf-1", "").Return(&workflowservice.DescribeWorkflowExecutionResponse{
		WorkflowExecutionInfo: execInfo("wf-1", enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED),
	}, nil)
	run := &mocks.WorkflowRun{}
	run.On("Get", mock.Anything, mock.AnythingOfType("*workflows.WorkflowResult")).
		Run(func(args mock.Arguments) {
			res := args.Get(1).(*workflows.WorkflowResult)
			res.ID = "a1"
			res.Phase = workflows.PhaseCompleted
		}).Return(nil)
	c.On("GetWorkflow", mock.Anything, "wf-1", "").Return(run)

	got, err := querier.New(c).GetWorkflowState(context.Background(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)
	assert.True(t, got.Done())
}
