package pipeline

import (
	"context"

	"github.com/example/crudmaker/internal/core/effects"
	"github.com/example/crudmaker/internal/scaffold"
)

// Executor runs effects. internal/app provides the real one.
type Executor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// Observer receives progress ticks.
type Observer interface {
	Start(total int)
	Advance(step string, ran bool)
	Finish()
}

// NopObserver ignores progress.
type NopObserver struct{}

func (NopObserver) Start(int)            {}
func (NopObserver) Advance(string, bool) {}
func (NopObserver) Finish()              {}

// StepDirectories names the directory preparation in errors.
const StepDirectories = "directories"

// Run executes plan: section directories first, then each step in order.
// Every step ticks the observer whether or not it ran; Finish is the last
// tick. The first failure stops the run and comes back as a
// *scaffold.GenerationError. Completed writes are not rolled back.
func Run(ctx context.Context, plan Plan, exec Executor, obs Observer) error {
	if obs == nil {
		obs = NopObserver{}
	}
	obs.Start(plan.Ticks())

	if len(plan.Directories) > 0 {
		dirs := make([]effects.Effect, 0, len(plan.Directories))
		for _, d := range plan.Directories {
			dirs = append(dirs, d)
		}
		if err := exec.Execute(ctx, dirs); err != nil {
			return &scaffold.GenerationError{Step: StepDirectories, Cause: err}
		}
	}

	for _, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return &scaffold.GenerationError{Step: step.Name, Cause: err}
		}
		if step.Ran {
			if err := exec.Execute(ctx, step.Effects()); err != nil {
				return &scaffold.GenerationError{Step: step.Name, Cause: err}
			}
		}
		obs.Advance(step.Name, step.Ran)
	}

	obs.Finish()
	return nil
}
