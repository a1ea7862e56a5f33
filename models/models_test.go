package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alittlebrighter/bandstat"
)

type mockBus struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (mb *mockBus) Publish(subject string, data []byte) error {
	mb.subjects = append(mb.subjects, subject)
	mb.payloads = append(mb.payloads, data)
	return mb.err
}

func TestPublisherObserve(t *testing.T) {
	bus := new(mockBus)
	p := NewPublisher(bus, "", "living room")

	reading := 15.0
	p.Observe(&bandstat.Event{
		ID:        "cycle-1",
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Reading:   &reading,
		Band:      &bandstat.Band{Min: -5, Max: 10},
		From:      bandstat.Idle,
		To:        bandstat.Cooling,
	})

	require.Len(t, bus.payloads, 1)
	assert.Equal(t, StateSubject, bus.subjects[0])

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(bus.payloads[0], &decoded))
	assert.Equal(t, "living room", decoded["location"])
	assert.Equal(t, "cycle-1", decoded["id"])
	assert.Equal(t, "idle", decoded["from"])
	assert.Equal(t, "cooling", decoded["to"])
	assert.Equal(t, 15.0, decoded["reading"])
	assert.NotContains(t, decoded, "error")
}

func TestPublisherIgnoresBusErrors(t *testing.T) {
	bus := &mockBus{err: errors.New("nats: connection closed")}
	p := NewPublisher(bus, "custom.subject", "")

	assert.NotPanics(t, func() { p.Observe(&bandstat.Event{ID: "x"}) })
	assert.Equal(t, []string{"custom.subject"}, bus.subjects)
}
