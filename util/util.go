package util

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/alittlebrighter/bandstat"
)

type TemperatureUnits string

const (
	Celsius    TemperatureUnits = "Celsius"
	Fahrenheit TemperatureUnits = "Fahrenheit"
)

// ParseUnits accepts the unit names used in config files. An empty string means Celsius.
func ParseUnits(s string) (TemperatureUnits, error) {
	switch TemperatureUnits(s) {
	case "", Celsius:
		return Celsius, nil
	case Fahrenheit:
		return Fahrenheit, nil
	}
	return "", fmt.Errorf("unknown temperature units %q", s)
}

// TempCToF converts temperature degrees from Celsius to Fahrenheit
func TempCToF(tempC float64) float64 {
	return tempC*9/5 + 32
}

// TempFToC converts temperature degrees from Fahrenheit to Celsius
func TempFToC(tempF float64) float64 {
	return (tempF - 32) * 5 / 9
}

// Convert expresses temp, measured in from, in the units to.
func Convert(temp float64, from, to TemperatureUnits) float64 {
	switch {
	case from == Celsius && to == Fahrenheit:
		return TempCToF(temp)
	case from == Fahrenheit && to == Celsius:
		return TempFToC(temp)
	default:
		return temp
	}
}

// RingBuffer keeps the most recent cycle events. It is an Observer and is safe to read from
// another goroutine while the control loop writes to it.
type RingBuffer struct {
	mu     sync.RWMutex
	buffer []*bandstat.Event
	index  uint
}

func NewRingBuffer(size uint) *RingBuffer {
	return &RingBuffer{buffer: make([]*bandstat.Event, size)}
}

func (buf *RingBuffer) Observe(event *bandstat.Event) {
	buf.Add(event)
}

func (buf *RingBuffer) Add(item *bandstat.Event) {
	buf.mu.Lock()
	defer buf.mu.Unlock()

	if buf.index == uint(len(buf.buffer)) {
		buf.index = 0
	}
	buf.buffer[buf.index] = item
	buf.index = buf.index + 1
}

// GetAll returns the stored events oldest first, skipping unused slots.
func (buf *RingBuffer) GetAll() []*bandstat.Event {
	buf.mu.RLock()
	defer buf.mu.RUnlock()

	ordered := append(append([]*bandstat.Event{}, buf.buffer[buf.index:]...), buf.buffer[:buf.index]...)
	events := make([]*bandstat.Event, 0, len(ordered))
	for _, e := range ordered {
		if e != nil {
			events = append(events, e)
		}
	}
	return events
}

func (buf *RingBuffer) GetLast() *bandstat.Event {
	buf.mu.RLock()
	defer buf.mu.RUnlock()

	if buf.index == 0 {
		return buf.buffer[len(buf.buffer)-1]
	}

	return buf.buffer[buf.index-1]
}

// Duration reads "90s" style durations from JSON and YAML config.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"3s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
