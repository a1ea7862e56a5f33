package models

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/alittlebrighter/bandstat"
	"github.com/alittlebrighter/bandstat/util"
)

const (
	SensorSubject = "otto.sensor.temperature.current"
	StateSubject  = "otto.thermostat.state"
)

type SensorUpdate struct {
	Location string      `json:"location"`
	Type     string      `json:"type"`
	Value    Temperature `json:"value"`
}

type Temperature struct {
	Degrees float64               `json:"degrees"`
	Unit    util.TemperatureUnits `json:"unit"`
}

// StateChange is published after every cycle.
type StateChange struct {
	Location string `json:"location"`
	*bandstat.Event
}

// Bus is the part of *nats.Conn the publisher needs.
type Bus interface {
	Publish(subject string, data []byte) error
}

// Publisher is a bandstat.Observer that forwards cycle events to the message bus.
type Publisher struct {
	Subject  string
	Location string

	bus Bus
}

func NewPublisher(bus Bus, subject, location string) *Publisher {
	if subject == "" {
		subject = StateSubject
	}
	return &Publisher{Subject: subject, Location: location, bus: bus}
}

func (p *Publisher) Observe(event *bandstat.Event) {
	dat, err := json.Marshal(&StateChange{Location: p.Location, Event: event})
	if err != nil {
		log.Error().Err(err).Msg("could not marshal state change")
		return
	}

	if err = p.bus.Publish(p.Subject, dat); err != nil {
		log.Warn().Err(err).Str("subject", p.Subject).Msg("could not publish state change")
	}
}
