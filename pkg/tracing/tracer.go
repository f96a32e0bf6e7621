// Package tracing provides a shared OTel tracer helper for domain packages.
//
// When no TracerProvider is registered (tests, local dev without an OTLP
// endpoint configured), the global no-op provider is used automatically and
// Start is inert with zero overhead.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "zerg"

// Start opens a span as a child of the span in ctx, or a root span when ctx
// carries none. Callers must call span.End(), typically via defer.
//
//	ctx, span := tracing.Start(ctx, "supervisor.dispatch",
//	    attribute.String("run.id", run.ID),
//	)
//	defer span.End()
func Start(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName, trace.WithAttributes(attrs...))
}
