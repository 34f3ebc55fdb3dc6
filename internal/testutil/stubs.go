// Package testutil provides telemetry fixtures and scripted collaborators
// shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/babdulhakim2/webpulse/internal/domain"
	"github.com/babdulhakim2/webpulse/internal/regions"
	"github.com/babdulhakim2/webpulse/internal/render"
)

// Response is a scripted answer for one region.
type Response struct {
	Telemetry *render.Telemetry
	Err       error
	// Delay is waited before answering; the caller's deadline still applies.
	Delay time.Duration
	// Block makes the renderer wait until the caller's context is done.
	Block bool
}

// ScriptedRenderer satisfies render.Renderer with per-region canned responses.
// Regions without a script get a clean capture.
type ScriptedRenderer struct {
	Responses map[string]Response

	mu       sync.Mutex
	requests []render.Request
	calls    map[string]int
	inflight atomic.Int32
	peak     atomic.Int32
}

// NewScriptedRenderer creates a renderer from region → response.
func NewScriptedRenderer(responses map[string]Response) *ScriptedRenderer {
	return &ScriptedRenderer{Responses: responses, calls: make(map[string]int)}
}

func (s *ScriptedRenderer) Capture(ctx context.Context, region domain.Region, req render.Request) (*render.Telemetry, error) {
	n := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.calls[region.Name]++
	resp, ok := s.Responses[region.Name]
	s.mu.Unlock()

	if !ok {
		return CleanTelemetry(), nil
	}
	if resp.Block {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %v", render.ErrTimeout, ctx.Err())
	}
	if resp.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", render.ErrTimeout, ctx.Err())
		case <-time.After(resp.Delay):
		}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	if resp.Telemetry == nil {
		return CleanTelemetry(), nil
	}
	return resp.Telemetry, nil
}

// Calls returns how many captures region received.
func (s *ScriptedRenderer) Calls(region string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[region]
}

// Requests returns every request seen, in arrival order.
func (s *ScriptedRenderer) Requests() []render.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]render.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// PeakConcurrency returns the highest number of overlapping captures observed.
func (s *ScriptedRenderer) PeakConcurrency() int {
	return int(s.peak.Load())
}

// Registry returns the default five-region catalog rooted at a dummy address.
func Registry() *regions.Registry {
	r, err := regions.Default("http://render.test")
	if err != nil {
		panic(err)
	}
	return r
}
