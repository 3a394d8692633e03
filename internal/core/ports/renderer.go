package ports

import (
	"context"
	"time"
)

// Renderer is the abstraction for build output rendering. It decouples
// telemetry collection from presentation so the same event stream can feed
// the local terminal or the plain dyno build log.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer and begins its lifecycle.
	Start(ctx context.Context) error

	// Stop signals the renderer to stop accepting new events and flush
	// any buffered output.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnPlanEmit is called once the step graph has been planned.
	// steps: step names in execution order
	// deps: dependency map (step -> list of steps it needs)
	OnPlanEmit(steps []string, deps map[string][]string)

	// OnStepStart is called when a step begins execution.
	OnStepStart(spanID, parentID, name string, startTime time.Time)

	// OnStepLog is called when a step emits output. data may contain
	// partial lines or ANSI sequences.
	OnStepLog(spanID string, data []byte)

	// OnStepComplete is called when a step finishes. err is nil on
	// success.
	OnStepComplete(spanID string, endTime time.Time, err error)
}
