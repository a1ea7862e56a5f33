// Package modifier provides the actuators that push the temperature back into the band.
package modifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alittlebrighter/bandstat"
	"github.com/alittlebrighter/bandstat/simulation"
)

const (
	DefaultStep      = 1.0
	DefaultStepDelay = 100 * time.Millisecond
	DefaultMaxSteps  = 1000
)

var ErrTargetNotReached = errors.New("target temperature not reached")

var _ bandstat.Modifier = (*Ramp)(nil)

// Ramp moves the simulated temperature toward the target one Step at a time, sleeping
// StepDelay between steps. It gives up after MaxSteps steps.
type Ramp struct {
	Temperature *simulation.Temperature
	Step        float64
	StepDelay   time.Duration
	MaxSteps    int
	// Sleep waits between steps; time.Sleep unless replaced.
	Sleep func(time.Duration)
}

func NewRamp(temp *simulation.Temperature) *Ramp {
	return &Ramp{
		Temperature: temp,
		Step:        DefaultStep,
		StepDelay:   DefaultStepDelay,
		MaxSteps:    DefaultMaxSteps,
		Sleep:       time.Sleep,
	}
}

func (r *Ramp) LowerTemperature(ctx context.Context, target float64) error {
	return r.adjust(ctx, -1, func(t float64) bool { return t <= target })
}

func (r *Ramp) RaiseTemperature(ctx context.Context, target float64) error {
	return r.adjust(ctx, 1, func(t float64) bool { return t >= target })
}

func (r *Ramp) adjust(ctx context.Context, direction float64, reached func(float64) bool) error {
	if r.Step <= 0 {
		return fmt.Errorf("invalid ramp step %f", r.Step)
	}

	for steps := 0; ; steps++ {
		current := r.Temperature.Get()
		if reached(current) {
			return nil
		}
		if steps >= r.MaxSteps {
			return fmt.Errorf("%w after %d steps, stuck at %f", ErrTargetNotReached, steps, current)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		r.Temperature.Add(direction * r.Step)
		r.Sleep(r.StepDelay)
	}
}
