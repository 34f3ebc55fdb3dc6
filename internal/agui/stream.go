package agui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/babdulhakim2/webpulse/internal/temporal/querier"
	"github.com/babdulhakim2/webpulse/internal/temporal/workflows"
)

// StreamConfig controls SSE stream behavior.
type StreamConfig struct {
	PollInterval time.Duration
	MaxDuration  time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() StreamConfig {
	return StreamConfig{
		PollInterval: time.Second,
		MaxDuration:  15 * time.Minute,
	}
}

// StreamHandler serves SSE events for a run: RUN_STARTED, an initial
// STATE_SNAPSHOT, one STEP_FINISHED per settled region, phase steps, and a
// final STATE_SNAPSHOT plus RUN_FINISHED once the report exists.
func StreamHandler(q querier.WorkflowQuerier, cfg StreamConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wfID := r.PathValue("id")
		if wfID == "" {
			http.Error(w, "workflow id required", http.StatusBadRequest)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		ctx, cancel := context.WithTimeout(r.Context(), cfg.MaxDuration)
		defer cancel()

		emit := func(t EventType, data any) {
			writeSSE(w, flusher, Event{Type: t, Timestamp: time.Now().UTC(), WorkflowID: wfID, Data: data})
		}

		emit(EventRunStarted, nil)

		result, err := q.GetWorkflowState(ctx, wfID)
		if err != nil {
			emit(EventRunError, ErrorData{Message: err.Error()})
			return
		}
		emit(EventStateSnapshot, StateSnapshotData{Phase: string(result.Phase), State: result})

		t := tracker{}
		t.observe(result, emit)
		if result.Done() {
			finish(result, emit)
			return
		}

		ticker := time.NewTicker(cfg.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				result, err = q.GetWorkflowState(ctx, wfID)
				if err != nil {
					emit(EventRunError, ErrorData{Message: err.Error()})
					return
				}
				t.observe(result, emit)
				if result.Done() {
					emit(EventStateSnapshot, StateSnapshotData{Phase: string(result.Phase), State: result})
					finish(result, emit)
					return
				}
			}
		}
	}
}

// tracker remembers what has been announced so each region and phase
// transition is emitted once.
type tracker struct {
	phase   workflows.Phase
	settled map[string]bool
}

func (t *tracker) observe(result *workflows.WorkflowResult, emit func(EventType, any)) {
	if t.settled == nil {
		t.settled = make(map[string]bool)
	}
	if t.phase == "" {
		t.phase = result.Phase
		emit(EventStepStarted, StepData{Phase: string(result.Phase)})
	}

	for _, rp := range result.Regions {
		if !rp.Settled || t.settled[rp.Region] {
			continue
		}
		t.settled[rp.Region] = true
		emit(EventStepFinished, RegionSettledData{
			Region:    rp.Region,
			Succeeded: rp.Succeeded,
			Settled:   len(t.settled),
			Total:     result.Total,
		})
	}

	if result.Phase != t.phase {
		emit(EventStepFinished, StepData{Phase: string(t.phase)})
		emit(EventStepStarted, StepData{Phase: string(result.Phase)})
		t.phase = result.Phase
	}
}

func finish(result *workflows.WorkflowResult, emit func(EventType, any)) {
	data := RunFinishedData{}
	if rep := result.Report; rep != nil {
		data.ReportID = rep.ID
		data.BestRegion = rep.BestRegion
		data.WorstRegion = rep.WorstRegion
		data.Issues = len(rep.Issues)
	}
	emit(EventRunFinished, data)
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
	flusher.Flush()
}
