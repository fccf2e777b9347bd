package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/serranolab/clinstat/internal/model"
)

// fakeStep is a configurable step for pipeline behavior tests.
type fakeStep struct {
	name     string
	err      error
	executed bool
}

func (s *fakeStep) Name() string { return s.name }

func (s *fakeStep) Do(_ context.Context, _ *model.AnalysisRun) error {
	s.executed = true
	return s.err
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		first := &fakeStep{name: "first"}
		second := &fakeStep{name: "second"}

		p := New()
		p.AddSteps(first, second)

		run := model.NewAnalysisRun(model.TestFriedman, "in.csv")
		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !first.executed || !second.executed {
			t.Error("not all steps executed")
		}
		if len(run.PerformedSteps) != 2 || run.PerformedSteps[0] != "first" || run.PerformedSteps[1] != "second" {
			t.Errorf("performed steps = %v, want [first second]", run.PerformedSteps)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		failing := &fakeStep{name: "failing", err: boom}
		after := &fakeStep{name: "after"}

		p := New()
		p.AddSteps(failing, after)

		run := model.NewAnalysisRun(model.TestFriedman, "in.csv")
		if err := p.Execute(context.Background(), run); !errors.Is(err, boom) {
			t.Fatalf("error = %v, want boom", err)
		}
		if after.executed {
			t.Error("step after failure was executed")
		}
		if !errors.Is(run.Err, boom) {
			t.Errorf("run.Err = %v, want boom", run.Err)
		}
	})

	t.Run("continue on error runs all steps", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		failing := &fakeStep{name: "failing", err: boom}
		after := &fakeStep{name: "after"}

		p := New(WithContinueOnError(true))
		p.AddSteps(failing, after)

		run := model.NewAnalysisRun(model.TestFriedman, "in.csv")
		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !after.executed {
			t.Error("step after failure was not executed")
		}
		if !errors.Is(run.Err, boom) {
			t.Errorf("run.Err = %v, want first error preserved", run.Err)
		}
	})

	t.Run("cancellation stops the pipeline", func(t *testing.T) {
		t.Parallel()

		step := &fakeStep{name: "never"}
		p := New()
		p.AddStep(step)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		run := model.NewAnalysisRun(model.TestFriedman, "in.csv")
		if err := p.Execute(ctx, run); !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
		if step.executed {
			t.Error("step executed after cancellation")
		}
	})

	t.Run("step names", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&fakeStep{name: "a"}, &fakeStep{name: "b"})

		if p.StepCount() != 2 {
			t.Errorf("step count = %d, want 2", p.StepCount())
		}
		names := p.StepNames()
		if len(names) != 2 || names[0] != "a" || names[1] != "b" {
			t.Errorf("names = %v, want [a b]", names)
		}
	})
}
