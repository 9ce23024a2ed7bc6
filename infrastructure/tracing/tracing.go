package tracing

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	nameTracer = "carrot-notes-tracer"
)

// InitTracing installs a Jaeger-backed tracer provider for service. Until it
// is called StartSpan uses the global no-op provider.
func InitTracing(endpoint, service string, logger *slog.Logger) (trace.Tracer, func(), error) {
	exporter, err := jaeger.New(
		jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init jaeger exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(service)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build tracing resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer provider", "error", err)
		}
	}

	logger.Info("tracing enabled", "endpoint", endpoint, "service", service)
	return otel.Tracer(nameTracer), cleanup, nil
}

func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	return otel.Tracer(nameTracer).Start(ctx, spanName)
}
