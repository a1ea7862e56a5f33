package thermometer

import (
	"context"
	"fmt"
	"sync"

	"github.com/alittlebrighter/embd"
	_ "github.com/alittlebrighter/embd/host/rpi"
	"github.com/alittlebrighter/embd/sensor/mcp9808"

	"github.com/alittlebrighter/bandstat/util"
)

// MCP9808 is a simple wrapper of an MCP9808 temperature sensor on I2C bus 1.
type MCP9808 struct {
	sensor *mcp9808.MCP9808
	units  util.TemperatureUnits
	mu     sync.Mutex
}

// NewMCP9808 is the constructor for the MCP9808 wrapper. Readings are reported in units.
func NewMCP9808(units util.TemperatureUnits) (*MCP9808, error) {
	meter := &MCP9808{units: units}

	var err error
	bus := embd.NewI2CBus(1)
	meter.sensor, err = mcp9808.New(bus)
	if err != nil {
		return nil, err
	}

	if err = meter.sensor.SetShutdownMode(false); err != nil {
		return nil, err
	}
	meter.sensor.SetTempResolution(mcp9808.SixteenthC)
	meter.sensor.SetTempHysteresis(mcp9808.Zero)

	return meter, nil
}

// ReadTemperature reads the current ambient temperature from an MCP9808 unit.
func (meter *MCP9808) ReadTemperature(ctx context.Context) (float64, error) {
	meter.mu.Lock()
	defer meter.mu.Unlock()

	tempReading, err := meter.sensor.AmbientTemp()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTempReading, err)
	}
	return util.Convert(tempReading.CelsiusDeg, util.Celsius, meter.units), nil
}

// Shutdown is the deconstructor for an MCP9808.
func (meter *MCP9808) Shutdown() {
	meter.mu.Lock()
	defer meter.mu.Unlock()

	meter.sensor.SetShutdownMode(true)
	embd.CloseI2C()
}
