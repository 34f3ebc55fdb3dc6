// Package uischema defines the typed UI contract emitted for a durable analysis run.
// The frontend renders dynamic components based on this schema; it never
// decides what to show on its own.
package uischema

// UISchema is the top-level schema the backend emits for a workflow state.
type UISchema struct {
	Version    string      `json:"ui_schema_version"`
	WorkflowID string      `json:"workflow_id"`
	Phase      string      `json:"phase"`
	Components []Component `json:"components"`
	Actions    []Action    `json:"actions"`
}

// ComponentType identifies what frontend component to render.
type ComponentType string

const (
	ComponentRegionProgress   ComponentType = "region_progress"
	ComponentRunSummary       ComponentType = "run_summary"
	ComponentScoreRanking     ComponentType = "score_ranking"
	ComponentIssueList        ComponentType = "issue_list"
	ComponentComparisonMatrix ComponentType = "comparison_matrix"
	ComponentFailedRegions    ComponentType = "failed_regions"
	ComponentRecommendations  ComponentType = "recommendations"
)

// Visibility controls component rendering.
type Visibility string

const (
	VisibilityVisible   Visibility = "visible"
	VisibilityHidden    Visibility = "hidden"
	VisibilityCollapsed Visibility = "collapsed"
)

// Component is a single renderable UI element.
type Component struct {
	Type       ComponentType  `json:"type"`
	Title      string         `json:"title"`
	Priority   int            `json:"priority"`
	Visibility Visibility     `json:"visibility"`
	Data       map[string]any `json:"data,omitempty"`
}

// ActionUIType classifies the user-facing action.
type ActionUIType string

const (
	ActionFollow         ActionUIType = "follow"
	ActionDownloadReport ActionUIType = "download_report"
	ActionRerun          ActionUIType = "rerun"
)

// ConfirmConfig describes confirmation requirements for actions that spend budget.
type ConfirmConfig struct {
	Required        bool   `json:"required"`
	AcknowledgeText string `json:"acknowledge_text,omitempty"`
}

// Action is a user-triggerable operation from the UI.
type Action struct {
	Type    ActionUIType   `json:"type"`
	Label   string         `json:"label"`
	Href    string         `json:"href,omitempty"`
	Confirm *ConfirmConfig `json:"confirm,omitempty"`
}
