// Package pipeline executes the build as a small graph of named steps.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports"
	"go.trai.ch/zerr"
)

// StepStatus represents the status of a step.
type StepStatus string

const (
	// StatusPending indicates the step is waiting to be executed.
	StatusPending StepStatus = "Pending"
	// StatusRunning indicates the step is currently executing.
	StatusRunning StepStatus = "Running"
	// StatusCompleted indicates the step has finished successfully.
	StatusCompleted StepStatus = "Completed"
	// StatusFailed indicates the step execution failed.
	StatusFailed StepStatus = "Failed"
	// StatusSkipped indicates the step never ran because a step it needs failed.
	StatusSkipped StepStatus = "Skipped"
)

// StepFunc is the body of a step. Output written to the span is streamed
// to the renderer as step output.
type StepFunc func(ctx context.Context, span ports.Span) error

// Step is a named unit of build work with explicit ordering constraints.
type Step struct {
	Name  string
	Needs []string
	Run   StepFunc
}

// Pipeline executes registered steps respecting their dependencies,
// running independent steps concurrently.
type Pipeline struct {
	tracer ports.Tracer
	steps  []Step

	mu     sync.RWMutex
	status map[string]StepStatus
}

// New creates an empty Pipeline reporting through the given tracer.
func New(tracer ports.Tracer) *Pipeline {
	return &Pipeline{
		tracer: tracer,
		status: make(map[string]StepStatus),
	}
}

// Add registers a step. Steps may be added in any order; dependencies are
// validated when Run is called.
func (p *Pipeline) Add(step Step) {
	p.steps = append(p.steps, step)
}

// Status returns the last observed status of a step.
func (p *Pipeline) Status(name string) StepStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status[name]
}

func (p *Pipeline) setStatus(name string, status StepStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status[name] = status
}

// validate checks for duplicate names, unknown dependencies and cycles,
// and returns the steps in a valid execution order.
func (p *Pipeline) validate() ([]string, error) {
	byName := make(map[string]Step, len(p.steps))
	for _, s := range p.steps {
		if _, dup := byName[s.Name]; dup {
			return nil, zerr.With(domain.ErrDuplicateStep, "step", s.Name)
		}
		byName[s.Name] = s
	}

	inDegree := make(map[string]int, len(p.steps))
	for _, s := range p.steps {
		for _, need := range s.Needs {
			if _, ok := byName[need]; !ok {
				err := zerr.With(domain.ErrUnknownStep, "step", s.Name)
				return nil, zerr.With(err, "needs", need)
			}
		}
		inDegree[s.Name] = len(s.Needs)
	}

	// Kahn's algorithm over a copy of the in-degrees. Iterating p.steps
	// in insertion order keeps the plan deterministic.
	dependents := make(map[string][]string)
	for _, s := range p.steps {
		for _, need := range s.Needs {
			dependents[need] = append(dependents[need], s.Name)
		}
	}

	degrees := make(map[string]int, len(inDegree))
	for name, d := range inDegree {
		degrees[name] = d
	}

	var order []string
	var ready []string
	for _, s := range p.steps {
		if degrees[s.Name] == 0 {
			ready = append(ready, s.Name)
		}
	}
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)
		for _, dep := range dependents[name] {
			degrees[dep]--
			if degrees[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(p.steps) {
		return nil, domain.ErrStepCycle
	}

	return order, nil
}

type result struct {
	name string
	err  error
}

type runState struct {
	ctx         context.Context
	p           *Pipeline
	byName      map[string]Step
	inDegree    map[string]int
	dependents  map[string][]string
	ready       []string
	active      int
	parallelism int
	resultsCh   chan result
	errs        error
}

// Run executes all registered steps with the given parallelism. The first
// failure prevents dependent steps from starting; independent steps that
// are already running are allowed to finish.
func (p *Pipeline) Run(ctx context.Context, parallelism int) error {
	order, err := p.validate()
	if err != nil {
		return err
	}
	if parallelism < 1 {
		parallelism = 1
	}

	byName := make(map[string]Step, len(p.steps))
	inDegree := make(map[string]int, len(p.steps))
	dependents := make(map[string][]string)
	for _, s := range p.steps {
		byName[s.Name] = s
		inDegree[s.Name] = len(s.Needs)
		for _, need := range s.Needs {
			dependents[need] = append(dependents[need], s.Name)
		}
	}

	deps := make(map[string][]string, len(p.steps))
	for _, s := range p.steps {
		deps[s.Name] = s.Needs
		p.setStatus(s.Name, StatusPending)
	}
	p.tracer.EmitPlan(ctx, order, deps)

	state := &runState{
		ctx:         ctx,
		p:           p,
		byName:      byName,
		inDegree:    inDegree,
		dependents:  dependents,
		parallelism: parallelism,
		resultsCh:   make(chan result, parallelism),
	}
	for _, name := range order {
		if inDegree[name] == 0 {
			state.ready = append(state.ready, name)
		}
	}

	return state.run()
}

func (state *runState) run() error {
	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		// Once canceled, nothing new is scheduled; drain the steps that
		// are still running.
		if state.ctx.Err() != nil {
			if state.active == 0 {
				break
			}
			state.handleResult(<-state.resultsCh)
			continue
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-state.ctx.Done():
		}
	}

	state.markSkipped()

	if state.ctx.Err() != nil {
		state.errs = errors.Join(state.errs, state.ctx.Err())
	}

	return state.errs
}

func (state *runState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *runState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism && state.ctx.Err() == nil {
		name := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.p.setStatus(name, StatusRunning)

		step := state.byName[name]
		go state.executeStep(step)
	}
}

func (state *runState) executeStep(step Step) {
	// The span must be ended before the result is sent so the renderer
	// observes completion in order.
	res := func() result {
		ctx, span := state.p.tracer.Start(state.ctx, step.Name)
		defer span.End()

		if err := step.Run(ctx, span); err != nil {
			span.RecordError(err)
			return result{name: step.Name, err: err}
		}
		return result{name: step.Name}
	}()

	state.resultsCh <- res
}

func (state *runState) handleResult(res result) {
	state.active--

	if res.err != nil {
		enhanced := zerr.With(fmt.Errorf("%w: %w", domain.ErrStepFailed, res.err), "step", res.name)
		state.errs = errors.Join(state.errs, enhanced)
		state.p.setStatus(res.name, StatusFailed)
		return
	}

	state.p.setStatus(res.name, StatusCompleted)
	for _, dep := range state.dependents[res.name] {
		state.inDegree[dep]--
		if state.inDegree[dep] == 0 {
			state.ready = append(state.ready, dep)
		}
	}
}

// markSkipped flags steps that never became ready because something they
// need failed.
func (state *runState) markSkipped() {
	for name := range state.byName {
		if state.p.Status(name) == StatusPending {
			state.p.setStatus(name, StatusSkipped)
		}
	}
}
