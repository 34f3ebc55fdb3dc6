// Package agui implements AG-UI protocol SSE streaming for durable analysis runs.
package agui

import "time"

// EventType identifies an AG-UI event.
type EventType string

const (
	EventRunStarted    EventType = "RUN_STARTED"
	EventRunFinished   EventType = "RUN_FINISHED"
	EventRunError      EventType = "RUN_ERROR"
	EventStepStarted   EventType = "STEP_STARTED"
	EventStepFinished  EventType = "STEP_FINISHED"
	EventStateSnapshot EventType = "STATE_SNAPSHOT"
)

// Event is a single SSE event emitted to the client.
type Event struct {
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id"`
	Data       any       `json:"data,omitempty"`
}

// StateSnapshotData carries the full run state in a STATE_SNAPSHOT event.
type StateSnapshotData struct {
	Phase string `json:"phase"`
	State any    `json:"state"`
}

// StepData carries a phase transition.
type StepData struct {
	Phase string `json:"phase"`
}

// RegionSettledData is the STEP_FINISHED payload for one settled region.
type RegionSettledData struct {
	Region    string `json:"region"`
	Succeeded bool   `json:"succeeded"`
	Settled   int    `json:"settled"`
	Total     int    `json:"total"`
}

// RunFinishedData closes a stream with the report headline.
type RunFinishedData struct {
	ReportID    string `json:"report_id,omitempty"`
	BestRegion  string `json:"best_region,omitempty"`
	WorstRegion string `json:"worst_region,omitempty"`
	Issues      int    `json:"issues"`
}

// ErrorData carries error info for RUN_ERROR events.
type ErrorData struct {
	Message string `json:"message"`
}
