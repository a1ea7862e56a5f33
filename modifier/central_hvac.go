package modifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/stianeikeland/go-rpio"

	"github.com/alittlebrighter/bandstat"
)

const (
	on  = rpio.Low
	off = rpio.High

	DefaultPollDelay   = 5 * time.Second
	DefaultMaxPolls    = 720
	DefaultFanCooldown = 1 * time.Minute
)

var _ bandstat.Modifier = (*CentralHVAC)(nil)

// Pin is a relay output. rpio.Pin satisfies it.
type Pin interface {
	Write(state rpio.State)
}

// CentralHVAC runs the furnace or air conditioner of a central HVAC system until a sensor
// reports the target, keeping the fan on for FanCooldown once an element shuts off.
type CentralHVAC struct {
	PollDelay   time.Duration
	MaxPolls    int
	FanCooldown time.Duration
	Sleep       func(time.Duration)

	fan, heat, cool Pin
	sensor          bandstat.Sensor
	closeGPIO       func() error

	mu        sync.Mutex
	direction bandstat.SystemState
	fanTimer  *time.Timer
}

// NewCentralHVAC opens the GPIO memory and drives the given BCM pins.
func NewCentralHVAC(heatPin, coolPin, fanPin int, sensor bandstat.Sensor) (*CentralHVAC, error) {
	if err := rpio.Open(); err != nil {
		return nil, err
	}

	heat, cool, fan := rpio.Pin(heatPin), rpio.Pin(coolPin), rpio.Pin(fanPin)
	heat.Output()
	cool.Output()
	fan.Output()

	c := newCentralHVAC(heat, cool, fan, sensor)
	c.closeGPIO = rpio.Close
	return c, nil
}

func newCentralHVAC(heat, cool, fan Pin, sensor bandstat.Sensor) *CentralHVAC {
	c := &CentralHVAC{
		PollDelay:   DefaultPollDelay,
		MaxPolls:    DefaultMaxPolls,
		FanCooldown: DefaultFanCooldown,
		Sleep:       time.Sleep,
		heat:        heat,
		cool:        cool,
		fan:         fan,
		sensor:      sensor,
		direction:   bandstat.Idle,
	}

	c.fan.Write(off)
	c.heat.Write(off)
	c.cool.Write(off)

	return c
}

// Direction is a getter for the direction of the HVAC system.
func (c *CentralHVAC) Direction() bandstat.SystemState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.direction
}

// RaiseTemperature runs the heat until the sensor reads at least target.
func (c *CentralHVAC) RaiseTemperature(ctx context.Context, target float64) error {
	c.Heat()
	defer c.Off()
	return c.waitFor(ctx, func(t float64) bool { return t >= target })
}

// LowerTemperature runs the air conditioner until the sensor reads at most target.
func (c *CentralHVAC) LowerTemperature(ctx context.Context, target float64) error {
	c.Cool()
	defer c.Off()
	return c.waitFor(ctx, func(t float64) bool { return t <= target })
}

func (c *CentralHVAC) waitFor(ctx context.Context, reached func(float64) bool) error {
	var lastErr error
	for polls := 0; polls < c.MaxPolls; polls++ {
		temp, err := c.sensor.ReadTemperature(ctx)
		switch {
		case err != nil:
			lastErr = err
			log.Warn().Err(err).Msg("could not read temperature while running HVAC")
		case reached(temp):
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		c.Sleep(c.PollDelay)
	}

	if lastErr != nil {
		return fmt.Errorf("%w after %d polls: %v", ErrTargetNotReached, c.MaxPolls, lastErr)
	}
	return fmt.Errorf("%w after %d polls", ErrTargetNotReached, c.MaxPolls)
}

func (c *CentralHVAC) stopFanCooldown() {
	if c.fanTimer != nil {
		c.fanTimer.Stop()
		c.fanTimer = nil
	}
}

// Off shuts down all HVAC components, leaving the fan on for FanCooldown after heating or cooling.
func (c *CentralHVAC) Off() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.heat.Write(off)
	c.cool.Write(off)
	c.stopFanCooldown()
	if c.direction == bandstat.Heating || c.direction == bandstat.Cooling {
		c.fanTimer = time.AfterFunc(c.FanCooldown, func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.direction == bandstat.Idle {
				c.fan.Write(off)
			}
		})
	} else {
		c.fan.Write(off)
	}

	c.direction = bandstat.Idle
}

// Heat turns on the heating element and central fan.
func (c *CentralHVAC) Heat() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.direction = bandstat.Heating
	c.stopFanCooldown()

	c.fan.Write(on)
	c.cool.Write(off)
	c.heat.Write(on)
}

// Cool turns on the air conditioner and central fan.
func (c *CentralHVAC) Cool() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.direction = bandstat.Cooling
	c.stopFanCooldown()

	c.fan.Write(on)
	c.cool.Write(on)
	c.heat.Write(off)
}

// Shutdown turns off all HVAC components and closes the GPIO connection.
func (c *CentralHVAC) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.direction = bandstat.Idle
	c.stopFanCooldown()

	c.cool.Write(off)
	c.heat.Write(off)
	c.fan.Write(off)

	if c.closeGPIO != nil {
		if err := c.closeGPIO(); err != nil {
			log.Error().Err(err).Msg("could not close GPIO")
		}
	}
}
