package ports

import (
	"context"
	"io"
)

// SpanConfig carries options applied when starting a span.
type SpanConfig struct{}

// SpanOption configures a SpanConfig.
type SpanOption func(*SpanConfig)

// Span represents a single traced build step. Writes are forwarded to the
// renderer as step output.
type Span interface {
	io.Writer

	// End completes the span.
	End()

	// RecordError records an error for the span and marks it failed.
	RecordError(err error)

	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// Tracer creates spans for build steps and reports the planned step graph.
//
//go:generate mockgen -source=tracer.go -destination=mocks/mock_tracer.go -package=mocks
type Tracer interface {
	// Start creates a new span under the current context.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)

	// EmitPlan signals the planned step graph before execution starts.
	EmitPlan(ctx context.Context, steps []string, deps map[string][]string)

	// Shutdown flushes and stops background processing.
	Shutdown(ctx context.Context) error
}
