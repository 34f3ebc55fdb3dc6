package testutil

import (
	"time"

	"github.com/babdulhakim2/webpulse/internal/domain"
	"github.com/babdulhakim2/webpulse/internal/render"
)

// Epoch is the fixed timestamp used by fixtures.
var Epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// Status returns a pointer to code.
func Status(code int) *int { return &code }

// Duration returns a pointer to ms.
func Duration(ms float64) *float64 { return &ms }

// Request builds a completed network entry.
func Request(url, resourceType string, status int) domain.NetworkEntry {
	return domain.NetworkEntry{
		URL:          url,
		Method:       "GET",
		ResourceType: resourceType,
		Status:       Status(status),
		DurationMs:   Duration(50),
	}
}

// Console builds a console entry.
func Console(level, text string) domain.ConsoleEntry {
	return domain.ConsoleEntry{Level: level, Text: text, Timestamp: Epoch}
}

// IdealTiming is within every threshold.
func IdealTiming() domain.Timing {
	return domain.Timing{
		LoadTimeMs:               1200,
		DOMContentLoadedMs:       700,
		LargestContentfulPaintMs: 1100,
		NetworkLatencyMs:         60,
		DOMProcessingMs:          400,
	}
}

// CleanTelemetry has ideal timing, only successful requests and no console output.
func CleanTelemetry() *render.Telemetry {
	return &render.Telemetry{
		ScreenshotRef: "fixture://clean.png",
		Timing:        IdealTiming(),
		Network: []domain.NetworkEntry{
			Request("https://example.com/", "document", 200),
			Request("https://example.com/app.css", "stylesheet", 200),
		},
	}
}

// TelemetryWith returns clean telemetry modified by fn.
func TelemetryWith(fn func(t *render.Telemetry)) *render.Telemetry {
	t := CleanTelemetry()
	fn(t)
	return t
}

// Succeeded builds a succeeded CaptureResult for region from telemetry.
func Succeeded(region string, t *render.Telemetry) domain.CaptureResult {
	return domain.CaptureResult{
		Region:        region,
		Succeeded:     true,
		ScreenshotRef: t.ScreenshotRef,
		Console:       t.Console,
		Network:       t.Network,
		Timing:        t.Timing,
		Layout:        t.Layout,
	}
}

// Clean builds a succeeded CaptureResult with clean telemetry.
func Clean(region string) domain.CaptureResult {
	return Succeeded(region, CleanTelemetry())
}

// Failed builds a failed CaptureResult.
func Failed(region string, kind domain.FailureKind) domain.CaptureResult {
	return domain.FailedCapture(domain.Region{Name: region}, kind, string(kind)+" in fixture")
}

// SlowLoad builds a succeeded result whose load time is loadMs.
func SlowLoad(region string, loadMs float64) domain.CaptureResult {
	return Succeeded(region, TelemetryWith(func(t *render.Telemetry) {
		t.Timing.LoadTimeMs = loadMs
	}))
}

// BrokenResources builds a succeeded result with a 404 image and a 503 script.
func BrokenResources(region string) domain.CaptureResult {
	return Succeeded(region, TelemetryWith(func(t *render.Telemetry) {
		t.Network = append(t.Network,
			Request("https://example.com/missing.png", "image", 404),
			Request("https://example.com/api.js", "script", 503),
		)
	}))
}
