package thermometer

import (
	"context"

	"github.com/alittlebrighter/bandstat/simulation"
)

// Simulated reports the simulated room temperature. It never fails.
type Simulated struct {
	Temperature *simulation.Temperature
}

func (meter *Simulated) ReadTemperature(ctx context.Context) (float64, error) {
	return meter.Temperature.Get(), nil
}

func (meter *Simulated) Shutdown() {}
