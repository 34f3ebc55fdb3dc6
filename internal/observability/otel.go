package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName scopes the capture and analysis spans.
const TracerName = "github.com/babdulhakim2/webpulse"

// Tracer returns the webpulse tracer. Spans are dropped until InitTracer
// installs a provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// InitTracer exports webpulse spans over OTLP/HTTP, configured by the
// standard OTEL_EXPORTER_OTLP_* variables. The returned func flushes
// pending spans and must run before the binary exits.
func InitTracer(ctx context.Context, serviceName string) (func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("tracing: otlp exporter for %s: %w", serviceName, err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing: resource for %s: %w", serviceName, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	slog.Info("tracing enabled", "service", serviceName, "scope", TracerName)
	return tp.Shutdown, nil
}
