// Package activities defines the Temporal activity I/O structs and the
// Activities implementation that bridges Temporal's serialization boundary
// to the capture and export packages in internal/.
package activities

import (
	"time"

	"github.com/babdulhakim2/webpulse/internal/capture"
	"github.com/babdulhakim2/webpulse/internal/domain"
)

// Activity names as registered on the worker.
const (
	NameCaptureRegion = "CaptureRegion"
	NamePublishReport = "PublishReport"
)

// CaptureRegionInput is the activity input for one regional capture.
type CaptureRegionInput struct {
	Region    domain.Region `json:"region"`
	URL       string        `json:"url"`
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	FullPage  bool          `json:"full_page"`
	TimeoutMs int64         `json:"timeout_ms"`
}

// Request converts the input back to a capture request.
func (in CaptureRegionInput) Request() capture.Request {
	return capture.Request{
		URL:      in.URL,
		Regions:  []string{in.Region.Name},
		Timeout:  time.Duration(in.TimeoutMs) * time.Millisecond,
		Width:    in.Width,
		Height:   in.Height,
		FullPage: in.FullPage,
	}.WithDefaults()
}

// CaptureRegionOutput is the activity output of one regional capture.
// Failed captures are reported here, not as activity errors.
type CaptureRegionOutput struct {
	Result domain.CaptureResult `json:"result"`
}

// PublishReportInput is the activity input for score export.
type PublishReportInput struct {
	Report domain.AnalysisReport `json:"report"`
}
