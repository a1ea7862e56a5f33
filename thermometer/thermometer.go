// Package thermometer provides the sensors the controller samples each cycle. Every failure,
// whatever its cause, comes back as an error meaning "no reading this cycle".
package thermometer

import (
	"errors"

	"github.com/alittlebrighter/bandstat"
	"github.com/alittlebrighter/bandstat/simulation"
	"github.com/alittlebrighter/bandstat/util"
)

var ErrTempReading = errors.New("could not read temperature")

// Thermometer is a sensor that holds resources to release on shutdown.
type Thermometer interface {
	bandstat.Sensor
	Shutdown()
}

// NewLocal returns a thermometer wired to the local I2C bus.
func NewLocal(units util.TemperatureUnits) (Thermometer, error) {
	meter, err := NewMCP9808(units)
	if err != nil {
		return nil, err
	}
	return meter, nil
}

// NewRemote returns a thermometer service hosted remotely.
func NewRemote(endpoint string) (Thermometer, error) {
	return NewJSONWebService(endpoint), nil
}

// NewSimulated returns a thermometer reading the simulated room temp.
func NewSimulated(temp *simulation.Temperature) Thermometer {
	return &Simulated{Temperature: temp}
}
