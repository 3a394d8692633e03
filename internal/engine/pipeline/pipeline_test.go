package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports/mocks"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/engine/pipeline"
)

// newTestPipeline creates a pipeline with a permissive tracer so tests can
// focus on scheduling behavior.
func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	ctrl := gomock.NewController(t)

	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	span.EXPECT().Write(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		return len(p), nil
	}).AnyTimes()

	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, span
		},
	).AnyTimes()
	tracer.EXPECT().EmitPlan(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	return pipeline.New(tracer)
}

// orderRecorder tracks completion order across concurrently running steps.
type orderRecorder struct {
	mu    sync.Mutex
	order []string
}

func (r *orderRecorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, name)
}

func (r *orderRecorder) index(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.order {
		if n == name {
			return i
		}
	}
	return -1
}

func noop(_ context.Context, _ ports.Span) error { return nil }

func TestRun_OrderRespectsNeeds(t *testing.T) {
	p := newTestPipeline(t)
	rec := &orderRecorder{}

	step := func(name string, needs ...string) pipeline.Step {
		return pipeline.Step{
			Name:  name,
			Needs: needs,
			Run: func(_ context.Context, _ ports.Span) error {
				rec.record(name)
				return nil
			},
		}
	}

	p.Add(step("a"))
	p.Add(step("b", "a"))
	p.Add(step("c", "a"))
	p.Add(step("d", "b", "c"))

	require.NoError(t, p.Run(context.Background(), 4))

	assert.Less(t, rec.index("a"), rec.index("b"))
	assert.Less(t, rec.index("a"), rec.index("c"))
	assert.Less(t, rec.index("b"), rec.index("d"))
	assert.Less(t, rec.index("c"), rec.index("d"))

	for _, name := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, pipeline.StatusCompleted, p.Status(name))
	}
}

func TestRun_FailureSkipsDependents(t *testing.T) {
	p := newTestPipeline(t)
	stepErr := errors.New("boom")

	p.Add(pipeline.Step{Name: "a", Run: func(_ context.Context, _ ports.Span) error {
		return stepErr
	}})
	p.Add(pipeline.Step{Name: "b", Needs: []string{"a"}, Run: noop})
	p.Add(pipeline.Step{Name: "independent", Run: noop})

	err := p.Run(context.Background(), 2)
	require.Error(t, err)
	require.ErrorIs(t, err, stepErr)
	require.ErrorIs(t, err, domain.ErrStepFailed)

	assert.Equal(t, pipeline.StatusFailed, p.Status("a"))
	assert.Equal(t, pipeline.StatusSkipped, p.Status("b"))
	assert.Equal(t, pipeline.StatusCompleted, p.Status("independent"))
}

func TestRun_ParallelismOne(t *testing.T) {
	p := newTestPipeline(t)

	var active, maxActive int
	var mu sync.Mutex

	step := func(name string) pipeline.Step {
		return pipeline.Step{Name: name, Run: func(_ context.Context, _ ports.Span) error {
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			mu.Lock()
			active--
			mu.Unlock()
			return nil
		}}
	}

	p.Add(step("a"))
	p.Add(step("b"))
	p.Add(step("c"))

	require.NoError(t, p.Run(context.Background(), 1))

	assert.Equal(t, 1, maxActive)
}

func TestRun_ValidationErrors(t *testing.T) {
	t.Run("duplicate step names", func(t *testing.T) {
		p := newTestPipeline(t)
		p.Add(pipeline.Step{Name: "a", Run: noop})
		p.Add(pipeline.Step{Name: "a", Run: noop})

		err := p.Run(context.Background(), 1)
		require.ErrorIs(t, err, domain.ErrDuplicateStep)
	})

	t.Run("unknown dependency", func(t *testing.T) {
		p := newTestPipeline(t)
		p.Add(pipeline.Step{Name: "a", Needs: []string{"ghost"}, Run: noop})

		err := p.Run(context.Background(), 1)
		require.ErrorIs(t, err, domain.ErrUnknownStep)
	})

	t.Run("dependency cycle", func(t *testing.T) {
		p := newTestPipeline(t)
		p.Add(pipeline.Step{Name: "a", Needs: []string{"b"}, Run: noop})
		p.Add(pipeline.Step{Name: "b", Needs: []string{"a"}, Run: noop})

		err := p.Run(context.Background(), 1)
		require.ErrorIs(t, err, domain.ErrStepCycle)
	})
}

func TestRun_ContextCancellation(t *testing.T) {
	p := newTestPipeline(t)

	started := make(chan struct{})
	release := make(chan struct{})

	p.Add(pipeline.Step{Name: "blocker", Run: func(_ context.Context, _ ports.Span) error {
		close(started)
		<-release
		return nil
	}})
	p.Add(pipeline.Step{Name: "after", Needs: []string{"blocker"}, Run: noop})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
		close(release)
	}()

	err := p.Run(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, pipeline.StatusSkipped, p.Status("after"))
}

func TestRun_EmptyPipeline(t *testing.T) {
	p := newTestPipeline(t)
	require.NoError(t, p.Run(context.Background(), 4))
}
