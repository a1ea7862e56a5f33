package thermometer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	nats "github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/alittlebrighter/bandstat/models"
	"github.com/alittlebrighter/bandstat/util"
)

// NATS keeps the latest temperature published on the message bus.
type NATS struct {
	// MaxAge is how long a value stays usable. Zero keeps the last value forever.
	MaxAge time.Duration

	units    util.TemperatureUnits
	sub      *nats.Subscription
	now      func() time.Time
	mu       sync.RWMutex
	last     float64
	received time.Time
}

// NewNATS subscribes to subject (models.SensorSubject when empty) on nc.
func NewNATS(nc *nats.Conn, subject string, units util.TemperatureUnits, maxAge time.Duration) (*NATS, error) {
	if subject == "" {
		subject = models.SensorSubject
	}

	meter := newNATS(units, maxAge)
	sub, err := nc.Subscribe(subject, meter.HandleMessage)
	if err != nil {
		return nil, fmt.Errorf("could not subscribe to %s: %w", subject, err)
	}
	meter.sub = sub

	return meter, nil
}

func newNATS(units util.TemperatureUnits, maxAge time.Duration) *NATS {
	return &NATS{MaxAge: maxAge, units: units, now: time.Now}
}

// HandleMessage stores a models.SensorUpdate received from the bus.
func (meter *NATS) HandleMessage(m *nats.Msg) {
	update := new(models.SensorUpdate)
	if err := json.Unmarshal(m.Data, update); err != nil {
		log.Warn().Err(err).Str("subject", m.Subject).Msg("could not parse update from NATS")
		return
	}

	unit := update.Value.Unit
	if unit == "" {
		unit = util.Celsius
	}

	meter.mu.Lock()
	meter.last = util.Convert(update.Value.Degrees, unit, meter.units)
	meter.received = meter.now()
	meter.mu.Unlock()

	log.Debug().Str("location", update.Location).Float64("degrees", update.Value.Degrees).Msg("got update from NATS")
}

func (meter *NATS) ReadTemperature(ctx context.Context) (float64, error) {
	meter.mu.RLock()
	defer meter.mu.RUnlock()

	if meter.received.IsZero() {
		return 0, fmt.Errorf("%w: no update received yet", ErrTempReading)
	}
	if meter.MaxAge > 0 && meter.now().Sub(meter.received) > meter.MaxAge {
		return 0, fmt.Errorf("%w: last update is older than %s", ErrTempReading, meter.MaxAge)
	}
	return meter.last, nil
}

func (meter *NATS) Shutdown() {
	if meter.sub != nil {
		meter.sub.Unsubscribe()
	}
}
