package uischema

import (
	"github.com/babdulhakim2/webpulse/internal/temporal/workflows"
)

const schemaVersion = "v1"

// Build constructs a UISchema from the current workflow state. basePath is
// the workflow's API path and prefixes action links.
func Build(state *workflows.WorkflowResult, basePath string) UISchema {
	schema := UISchema{
		Version:    schemaVersion,
		WorkflowID: state.ID,
		Phase:      string(state.Phase),
	}

	// Region progress is always shown; it collapses once the report exists.
	schema.Components = append(schema.Components, regionProgress(state))

	if !state.Done() || state.Report == nil {
		schema.Actions = append(schema.Actions, Action{
			Type:  ActionFollow,
			Label: "Follow Progress",
			Href:  basePath + "/stream",
		})
		return schema
	}

	r := state.Report
	schema.Components = append(schema.Components, runSummary(r))
	if len(r.FailedRegions()) > 0 {
		schema.Components = append(schema.Components, failedRegions(r))
	}
	schema.Components = append(schema.Components, scoreRanking(r), issueList(r))
	if len(r.Comparisons) > 0 {
		schema.Components = append(schema.Components, comparisonMatrix(r))
	}
	if len(r.Recommendations) > 0 {
		schema.Components = append(schema.Components, recommendations(r))
	}

	schema.Actions = append(schema.Actions,
		Action{
			Type:  ActionDownloadReport,
			Label: "Download Report",
			Href:  basePath + "/report",
		},
		Action{
			Type:  ActionRerun,
			Label: "Run Again",
			Confirm: &ConfirmConfig{
				Required:        true,
				AcknowledgeText: "A new run captures every region again and counts against your analysis budget",
			},
		},
	)
	return schema
}
