package engine

import (
	"fmt"

	"github.com/babdulhakim2/webpulse/internal/capture"
	"github.com/babdulhakim2/webpulse/internal/domain"
)

// ValidateAnalyze reports whether Analyze would reject req, without capturing.
func (e *Engine) ValidateAnalyze(req AnalyzeRequest) error {
	if _, _, err := e.orchestrator.Prepare(req.CaptureRequest()); err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	return nil
}

// ValidateIssues reports whether AnalyzeIssues would reject req, without capturing.
func (e *Engine) ValidateIssues(req IssuesRequest) error {
	if _, err := req.Filter(); err != nil {
		return fmt.Errorf("analyze issues: %w", err)
	}
	if _, _, err := e.orchestrator.Prepare(req.captureRequest()); err != nil {
		return fmt.Errorf("analyze issues: %w", err)
	}
	return nil
}

// ValidateCompare reports whether ComparePerformance would reject req, without capturing.
func (e *Engine) ValidateCompare(req CompareRequest) error {
	if !anyNamed(req.Regions) {
		return fmt.Errorf("compare: %w", domain.NewValidationError("regions", "at least one region is required"))
	}
	if _, _, err := e.orchestrator.Prepare(req.captureRequest()); err != nil {
		return fmt.Errorf("compare: %w", err)
	}
	return nil
}

func (r IssuesRequest) captureRequest() capture.Request {
	return capture.Request{URL: r.URL, Regions: r.Regions, Timeout: r.Timeout}
}

func (r CompareRequest) captureRequest() capture.Request {
	return capture.Request{URL: r.URL, Regions: r.Regions, Timeout: r.Timeout}
}
