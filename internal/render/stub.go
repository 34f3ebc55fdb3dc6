package render

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"
	"time"

	"github.com/babdulhakim2/webpulse/internal/domain"
)

// Stub is a deterministic Renderer used in stub mode and local development.
// Telemetry is derived from the URL and region name, so repeated captures of
// the same page from the same region return identical data.
type Stub struct {
	// Latency is waited before answering; the caller's deadline still applies.
	Latency time.Duration
	// Epoch anchors console timestamps.
	Epoch time.Time
}

// NewStub returns a Stub with no artificial latency.
func NewStub() *Stub {
	return &Stub{Epoch: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Capture synthesizes telemetry for region.
func (s *Stub) Capture(ctx context.Context, region domain.Region, req Request) (*Telemetry, error) {
	if s.Latency > 0 {
		timer := time.NewTimer(s.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		case <-timer.C:
		}
	}

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	h := fnv.New64a()
	h.Write([]byte(req.URL + "|" + region.Name))
	seed := h.Sum64()

	load := 900 + float64(seed%2600)
	if strings.Contains(u.Path, "slow") {
		load += 4000
	}
	dcl := load * 0.6
	origin := u.Scheme + "://" + u.Host

	t := &Telemetry{
		ScreenshotRef: fmt.Sprintf("stub://%s/%x.png", region.Name, seed),
		Timing: domain.Timing{
			LoadTimeMs:               load,
			DOMContentLoadedMs:       dcl,
			LargestContentfulPaintMs: load * 0.75,
			NetworkLatencyMs:         40 + float64(seed%260),
			DOMProcessingMs:          load - dcl,
		},
		Network: []domain.NetworkEntry{
			stubEntry(req.URL, "document", 200, load*0.2),
			stubEntry(origin+"/assets/app.css", "stylesheet", 200, load*0.1),
			stubEntry(origin+"/assets/app.js", "script", 200, load*0.15),
		},
	}

	if seed%5 == 0 {
		t.Network = append(t.Network, stubEntry(origin+"/images/hero.webp", "image", 404, 35))
		t.Console = append(t.Console, domain.ConsoleEntry{
			Level:     "error",
			Text:      "Failed to load resource: the server responded with a status of 404",
			Timestamp: s.Epoch.Add(time.Duration(load) * time.Millisecond),
		})
	} else {
		t.Network = append(t.Network, stubEntry(origin+"/images/hero.webp", "image", 200, load*0.05))
	}
	if seed%4 == 0 {
		t.Console = append(t.Console, domain.ConsoleEntry{
			Level:     "warning",
			Text:      "Deprecated API usage detected",
			Timestamp: s.Epoch.Add(time.Duration(dcl) * time.Millisecond),
		})
	}
	return t, nil
}

func stubEntry(rawURL, resourceType string, status int, durationMs float64) domain.NetworkEntry {
	return domain.NetworkEntry{
		URL:          rawURL,
		Method:       "GET",
		ResourceType: resourceType,
		Status:       &status,
		DurationMs:   &durationMs,
	}
}
