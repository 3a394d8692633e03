// Package linear provides a chronological build-log renderer. Build
// output on the platform is a single linear stream, so steps print a
// header when they start and indent everything they emit.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/muesli/termenv"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer with platform build-log
// formatting: "-----> step" headers and indented output lines.
type Renderer struct {
	stdout io.Writer
	output *termenv.Output

	mu      sync.Mutex
	steps   map[string]*stepState
	buffers map[string]*bytes.Buffer
}

type stepState struct {
	name      string
	startTime time.Time
}

// NewRenderer creates a Renderer writing to stdout.
func NewRenderer(stdout io.Writer, profile termenv.Profile) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}

	return &Renderer{
		stdout:  stdout,
		output:  termenv.NewOutput(stdout, termenv.WithProfile(profile)),
		steps:   make(map[string]*stepState),
		buffers: make(map[string]*bytes.Buffer),
	}
}

// Start is a no-op; the renderer is synchronous.
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes all remaining buffers.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for spanID := range r.buffers {
		r.flushBufferLocked(spanID)
	}

	return nil
}

// Wait is a no-op; the renderer is synchronous.
func (r *Renderer) Wait() error {
	return nil
}

// OnPlanEmit announces how many steps the build will run.
func (r *Renderer) OnPlanEmit(steps []string, _ map[string][]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.stdout, "%s\n", style.Header(fmt.Sprintf("Running %d build steps", len(steps))))
}

// OnStepStart prints the step header.
func (r *Renderer) OnStepStart(spanID, _ /* parentID */, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.steps[spanID] = &stepState{
		name:      name,
		startTime: startTime,
	}
	r.buffers[spanID] = new(bytes.Buffer)

	header := r.output.String(style.StepPrefix + name).Bold().String()
	_, _ = fmt.Fprintf(r.stdout, "%s\n", header)
}

// OnStepLog buffers step output and prints complete lines indented.
func (r *Renderer) OnStepLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.steps[spanID]; !ok {
		return
	}

	buf := r.buffers[spanID]
	buf.Write(data)

	for {
		line, err := buf.ReadBytes('\n')
		if err != nil {
			if len(line) > 0 {
				newBuf := new(bytes.Buffer)
				newBuf.Write(line)
				r.buffers[spanID] = newBuf
			}
			break
		}

		r.printLineLocked(line)
	}
}

// OnStepComplete flushes the step buffer and prints its outcome.
func (r *Renderer) OnStepComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	step, ok := r.steps[spanID]
	if !ok {
		return
	}

	r.flushBufferLocked(spanID)

	duration := endTime.Sub(step.startTime).Round(time.Millisecond)
	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.stdout, "%s%s %s failed after %v: %v\n",
			style.IndentPrefix, symbol, step.name, duration, err)
	} else {
		symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
		_, _ = fmt.Fprintf(r.stdout, "%s%s %s done (%v)\n",
			style.IndentPrefix, symbol, step.name, duration)
	}

	delete(r.steps, spanID)
	delete(r.buffers, spanID)
}

// flushBufferLocked prints any partial line left in a step's buffer.
// Must be called with r.mu held.
func (r *Renderer) flushBufferLocked(spanID string) {
	if _, ok := r.steps[spanID]; !ok {
		return
	}

	buf := r.buffers[spanID]
	if buf.Len() > 0 {
		r.printLineLocked(buf.Bytes())
		buf.Reset()
	}
}

// printLineLocked prints one indented output line.
// Must be called with r.mu held.
func (r *Renderer) printLineLocked(line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))

	if len(line) == 0 {
		return
	}

	_, _ = fmt.Fprintf(r.stdout, "%s%s\n", style.IndentPrefix, string(line))
}
