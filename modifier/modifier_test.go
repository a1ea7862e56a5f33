package modifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stianeikeland/go-rpio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alittlebrighter/bandstat"
	"github.com/alittlebrighter/bandstat/simulation"
	"github.com/alittlebrighter/bandstat/thermometer"
)

func newTestRamp(initial float64) (*Ramp, *simulation.Temperature, *int) {
	temp := simulation.NewTemperature(initial)
	sleeps := new(int)
	r := NewRamp(temp)
	r.Sleep = func(time.Duration) { *sleeps++ }
	return r, temp, sleeps
}

func TestRampRaise(t *testing.T) {
	tests := []struct {
		name     string
		initial  float64
		target   float64
		expected float64
		steps    int
	}{
		{"raise above current", 5, 10, 10, 5},
		{"raise below current", 5, 3, 5, 0},
		{"raise to fractional target", -7, -4.5, -4, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, temp, sleeps := newTestRamp(tt.initial)

			require.NoError(t, r.RaiseTemperature(context.Background(), tt.target))
			assert.Equal(t, tt.expected, temp.Get())
			assert.GreaterOrEqual(t, temp.Get(), tt.target)
			assert.Equal(t, tt.steps, *sleeps)
		})
	}
}

func TestRampLower(t *testing.T) {
	tests := []struct {
		name     string
		initial  float64
		target   float64
		expected float64
	}{
		{"lower below current", 5, 3, 3},
		{"lower above current", 5, 10, 5},
		{"lower to fractional target", 15, 9.5, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, temp, _ := newTestRamp(tt.initial)

			require.NoError(t, r.LowerTemperature(context.Background(), tt.target))
			assert.Equal(t, tt.expected, temp.Get())
			assert.LessOrEqual(t, temp.Get(), tt.target)
		})
	}
}

func TestRampMaxSteps(t *testing.T) {
	r, temp, _ := newTestRamp(0)
	r.MaxSteps = 3

	err := r.RaiseTemperature(context.Background(), 10)
	assert.ErrorIs(t, err, ErrTargetNotReached)
	assert.Equal(t, 3.0, temp.Get())
}

func TestRampCancelled(t *testing.T) {
	r, temp, _ := newTestRamp(0)
	ctx, cancel := context.WithCancel(context.Background())
	r.Sleep = func(time.Duration) { cancel() }

	err := r.LowerTemperature(ctx, -10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, -1.0, temp.Get())
}

func TestRampInvalidStep(t *testing.T) {
	r, _, _ := newTestRamp(0)
	r.Step = 0
	assert.Error(t, r.RaiseTemperature(context.Background(), 1))
}

func TestRampWithController(t *testing.T) {
	temp := simulation.NewTemperature(-7)
	r := NewRamp(temp)
	r.Sleep = func(time.Duration) {}

	band := &bandstat.Band{Min: -5, Max: 10}
	c := bandstat.NewController(staticBand{band}, thermometer.NewSimulated(temp), r)

	require.NoError(t, c.Update(context.Background()))
	require.Equal(t, bandstat.Heating, c.CurrentState())
	require.NoError(t, c.Update(context.Background()))
	assert.Equal(t, bandstat.Idle, c.CurrentState())
	assert.Equal(t, -4.0, temp.Get())

	require.NoError(t, c.Update(context.Background()))
	assert.Equal(t, bandstat.Idle, c.CurrentState(), "reading inside the band after the overshoot")

	temp.Set(15)
	require.NoError(t, c.Update(context.Background()))
	require.Equal(t, bandstat.Cooling, c.CurrentState())
	require.NoError(t, c.Update(context.Background()))
	assert.Equal(t, bandstat.Idle, c.CurrentState())
	assert.Equal(t, 9.0, temp.Get())
}

type staticBand struct{ band *bandstat.Band }

func (s staticBand) Band(ctx context.Context) (*bandstat.Band, error) {
	return s.band, nil
}

type mockPin struct {
	mu     sync.Mutex
	states []rpio.State
}

func (mp *mockPin) Write(state rpio.State) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.states = append(mp.states, state)
}

func (mp *mockPin) Last() rpio.State {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.states[len(mp.states)-1]
}

type scriptedSensor struct {
	readings []float64
	errs     []error
	reads    int
}

func (ss *scriptedSensor) ReadTemperature(ctx context.Context) (float64, error) {
	i := ss.reads
	if i >= len(ss.readings) {
		i = len(ss.readings) - 1
	}
	ss.reads++
	var err error
	if i < len(ss.errs) {
		err = ss.errs[i]
	}
	return ss.readings[i], err
}

func newTestHVAC(sensor bandstat.Sensor) (*CentralHVAC, *mockPin, *mockPin, *mockPin) {
	heat, cool, fan := new(mockPin), new(mockPin), new(mockPin)
	c := newCentralHVAC(heat, cool, fan, sensor)
	c.Sleep = func(time.Duration) {}
	c.FanCooldown = time.Hour
	return c, heat, cool, fan
}

func TestCentralHVACRaise(t *testing.T) {
	sensor := &scriptedSensor{readings: []float64{17, 17.5, 18.2, 19.1}}
	c, heat, cool, fan := newTestHVAC(sensor)
	defer c.Shutdown()

	require.NoError(t, c.RaiseTemperature(context.Background(), 19))
	assert.Equal(t, 4, sensor.reads)
	assert.Contains(t, heat.states, on)
	assert.Equal(t, off, heat.Last())
	assert.Equal(t, off, cool.Last())
	assert.Equal(t, on, fan.Last(), "fan keeps running during cooldown")
	assert.Equal(t, bandstat.Idle, c.Direction())
}

func TestCentralHVACLower(t *testing.T) {
	sensor := &scriptedSensor{readings: []float64{26, 25, 24}}
	c, heat, cool, _ := newTestHVAC(sensor)
	defer c.Shutdown()

	require.NoError(t, c.LowerTemperature(context.Background(), 24))
	assert.Contains(t, cool.states, on)
	assert.NotContains(t, heat.states, on)
	assert.Equal(t, off, cool.Last())
}

func TestCentralHVACGivesUp(t *testing.T) {
	sensor := &scriptedSensor{
		readings: []float64{0, 0, 0},
		errs:     []error{nil, errors.New("i2c timeout"), nil},
	}
	c, heat, _, fan := newTestHVAC(sensor)
	c.MaxPolls = 3

	err := c.RaiseTemperature(context.Background(), 20)
	assert.ErrorIs(t, err, ErrTargetNotReached)
	assert.Equal(t, off, heat.Last())

	c.Shutdown()
	assert.Equal(t, off, fan.Last())
}

func TestCentralHVACFanCooldown(t *testing.T) {
	c, _, _, fan := newTestHVAC(&scriptedSensor{readings: []float64{30}})
	c.FanCooldown = 10 * time.Millisecond

	c.Heat()
	c.Off()
	assert.Equal(t, on, fan.Last())
	assert.Eventually(t, func() bool { return fan.Last() == off }, time.Second, 5*time.Millisecond)
}
