// Package simulation holds the simulated ambient temperature shared by the simulated
// thermometer and the ramp modifier.
package simulation

import (
	"math/rand"
	"sync"
)

const (
	randomLow  = -35
	randomHigh = 35
)

// Temperature is a mutex guarded temperature value. Pass the same instance to every
// collaborator that should observe the same room.
type Temperature struct {
	mu    sync.Mutex
	value float64
}

// NewTemperature starts the simulation at initial.
func NewTemperature(initial float64) *Temperature {
	return &Temperature{value: initial}
}

// NewRandomTemperature starts the simulation at a whole degree in [-35, 35).
func NewRandomTemperature(r *rand.Rand) *Temperature {
	return NewTemperature(float64(r.Intn(randomHigh-randomLow) + randomLow))
}

func (t *Temperature) Get() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

func (t *Temperature) Set(value float64) {
	t.mu.Lock()
	t.value = value
	t.mu.Unlock()
}

// Add shifts the value by delta and returns the result.
func (t *Temperature) Add(delta float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.value += delta
	return t.value
}
