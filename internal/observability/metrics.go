package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds OTel metric instruments for the analysis engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	CaptureCount   metric.Int64Counter
	CaptureLatency metric.Float64Histogram
	IssueCount     metric.Int64Counter
	AnalysisCount  metric.Int64Counter
}

// NewMetrics creates the webpulse metric instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsFromMeter(otel.Meter("webpulse"))
}

// NewMetricsFromMeter creates the instruments on meter.
func NewMetricsFromMeter(meter metric.Meter) (*Metrics, error) {
	captureCount, err := meter.Int64Counter("webpulse.capture.count",
		metric.WithDescription("Regional captures by outcome"),
	)
	if err != nil {
		return nil, err
	}

	captureLatency, err := meter.Float64Histogram("webpulse.capture.latency_ms",
		metric.WithDescription("Wall time of one regional capture"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	issueCount, err := meter.Int64Counter("webpulse.issue.count",
		metric.WithDescription("Detected issues by type and severity"),
	)
	if err != nil {
		return nil, err
	}

	analysisCount, err := meter.Int64Counter("webpulse.analysis.count",
		metric.WithDescription("Completed analysis runs by operation"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		CaptureCount:   captureCount,
		CaptureLatency: captureLatency,
		IssueCount:     issueCount,
		AnalysisCount:  analysisCount,
	}, nil
}

// RecordCapture records one settled regional capture. outcome is "success"
// or the failure kind.
func (m *Metrics) RecordCapture(ctx context.Context, region, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("region", region), attribute.String("outcome", outcome))
	m.CaptureCount.Add(ctx, 1, attrs)
	m.CaptureLatency.Record(ctx, float64(d.Milliseconds()), metric.WithAttributes(attribute.String("region", region)))
}

// RecordIssue records a detected issue.
func (m *Metrics) RecordIssue(ctx context.Context, issueType, severity string) {
	if m == nil {
		return
	}
	m.IssueCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("type", issueType),
			attribute.String("severity", severity),
		),
	)
}

// RecordAnalysis records a completed analysis.
func (m *Metrics) RecordAnalysis(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.AnalysisCount.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}
