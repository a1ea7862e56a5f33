package bandstat

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// Band defines the low and high temperatures the controller keeps the reading between.
type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ConfigProvider yields the band to hold for the current cycle. A nil band with a nil error
// means the source answered but could not be turned into a band.
type ConfigProvider interface {
	Band(ctx context.Context) (*Band, error)
}

// Sensor yields the current temperature. Any error is treated as "no reading".
type Sensor interface {
	ReadTemperature(ctx context.Context) (float64, error)
}

// Modifier drives the temperature toward a target, blocking until the target is reached
// (value <= target when lowering, value >= target when raising) or the attempt fails.
type Modifier interface {
	LowerTemperature(ctx context.Context, target float64) error
	RaiseTemperature(ctx context.Context, target float64) error
}

// Event describes the outcome of one cycle.
type Event struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Reading   *float64    `json:"reading,omitempty"`
	Band      *Band       `json:"band,omitempty"`
	From      SystemState `json:"from"`
	To        SystemState `json:"to"`
	Error     string      `json:"error,omitempty"`
}

// Observer receives an Event after every cycle.
type Observer interface {
	Observe(event *Event)
}

// Option configures a Controller.
type Option func(*Controller)

// WithMaxActuationFailures makes Update return ErrActuationFailed once more than n
// consecutive actuation attempts have failed. Zero, the default, retries forever.
func WithMaxActuationFailures(n uint) Option {
	return func(c *Controller) {
		c.MaxFailures = n
	}
}

// WithObserver registers an observer for cycle events.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, o)
	}
}

// Controller is the band-threshold state machine. It is not safe for concurrent use;
// cycles are expected to run one after another.
type Controller struct {
	MaxFailures, failureCount uint

	config    ConfigProvider
	sensor    Sensor
	modifier  Modifier
	state     SystemState
	observers []Observer
	now       func() time.Time
}

// NewController builds a Controller in the Idle state.
func NewController(config ConfigProvider, sensor Sensor, modifier Modifier, opts ...Option) *Controller {
	c := &Controller{
		config:   config,
		sensor:   sensor,
		modifier: modifier,
		state:    Idle,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentState returns the state the next cycle will dispatch on.
func (c *Controller) CurrentState() SystemState {
	return c.state
}

// Update runs one poll-evaluate-act cycle. Failing to get a band or a reading aborts the
// cycle without touching the state. A failed actuation leaves the state unchanged so the
// next cycle tries again; it is only reported once the failure limit is exceeded.
func (c *Controller) Update(ctx context.Context) error {
	event := &Event{ID: xid.New().String(), Timestamp: c.now(), From: c.state, To: c.state}
	defer c.notify(event)

	band, err := c.config.Band(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrConfigRead, err)
		event.Error = err.Error()
		return err
	}
	if band == nil {
		event.Error = ErrConfigInvalid.Error()
		return ErrConfigInvalid
	}
	event.Band = band

	temp, err := c.sensor.ReadTemperature(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrSensorUnavailable, err)
		event.Error = err.Error()
		return err
	}
	event.Reading = &temp

	log.Info().Msgf("Current Temperature: %f, Target: %f to %f, State: %s", temp, band.Min, band.Max, c.state)

	var actErr error
	switch c.state {
	case Idle:
		switch {
		case temp <= band.Min:
			log.Info().Msg("turning on HEAT")
			c.state = Heating
		case temp >= band.Max:
			log.Info().Msg("turning on COOL")
			c.state = Cooling
		default:
			log.Debug().Msg("doing NOTHING")
		}
	case Cooling:
		actErr = c.modifier.LowerTemperature(ctx, band.Max-1)
	case Heating:
		actErr = c.modifier.RaiseTemperature(ctx, band.Min+1)
	}
	event.To = c.state

	if event.From == Idle {
		return nil
	}
	if actErr != nil {
		event.Error = actErr.Error()
		return c.handleActuationError(actErr)
	}

	log.Info().Msg("turning OFF")
	c.failureCount = 0
	c.state = Idle
	event.To = Idle
	return nil
}

// handleActuationError counts consecutive failures and escalates once the limit is passed.
func (c *Controller) handleActuationError(err error) error {
	c.failureCount++
	log.Error().Err(err).Stringer("state", c.state).Uint("failures", c.failureCount).
		Msg("Failed to reach target temperature")

	if c.MaxFailures == 0 || c.failureCount <= c.MaxFailures {
		return nil
	}

	count := c.failureCount
	c.failureCount = 0
	return fmt.Errorf("%w: %d consecutive failures while %s: %v", ErrActuationFailed, count, c.state, err)
}

func (c *Controller) notify(event *Event) {
	for _, o := range c.observers {
		o.Observe(event)
	}
}

// Run starts the polling loop: one cycle right away, then one per interval. It returns the
// first cycle error, or nil once ctx is done.
func (c *Controller) Run(ctx context.Context, interval time.Duration) error {
	// we want to do something right away
	if err := c.Update(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.Update(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}
