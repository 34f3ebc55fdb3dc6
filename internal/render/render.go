// Package render talks to the external rendering provider that loads a page
// from one region and reports its screenshot and raw telemetry.
package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/babdulhakim2/webpulse/internal/domain"
)

// Capture failure classes. Renderers wrap one of these so the orchestrator can
// record a typed failure descriptor.
var (
	ErrTimeout   = errors.New("render: timeout")
	ErrNetwork   = errors.New("render: network failure")
	ErrMalformed = errors.New("render: malformed response")
	ErrProvider  = errors.New("render: provider error")
)

// Request is one capture request for a single region.
type Request struct {
	URL      string
	Width    int
	Height   int
	FullPage bool
	Timeout  time.Duration
}

// Telemetry is the raw output of a successful capture.
type Telemetry struct {
	ScreenshotRef string
	Console       []domain.ConsoleEntry
	Network       []domain.NetworkEntry
	Timing        domain.Timing
	Layout        []domain.LayoutAnomaly
}

// Renderer captures a page from one region.
type Renderer interface {
	Capture(ctx context.Context, region domain.Region, req Request) (*Telemetry, error)
}

// FailureKind maps an error returned by a Renderer onto a failure kind.
// Errors outside the known classes are treated as network failures, and a
// context deadline anywhere in the chain is a timeout.
func FailureKind(err error) domain.FailureKind {
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return domain.FailureTimeout
	case errors.Is(err, ErrMalformed):
		return domain.FailureMalformed
	case errors.Is(err, ErrProvider):
		return domain.FailureProvider
	default:
		return domain.FailureNetwork
	}
}

// ProviderError carries the structured error body returned by the provider.
type ProviderError struct {
	Status  int
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider returned %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("provider returned %d: %s", e.Status, e.Message)
}

func (e *ProviderError) Unwrap() error { return ErrProvider }
