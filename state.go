package bandstat

import "fmt"

// SystemState is the phase of the control loop.
type SystemState uint8

const (
	Idle SystemState = iota
	Heating
	Cooling
)

func (s SystemState) String() string {
	switch s {
	case Heating:
		return "heating"
	case Cooling:
		return "cooling"
	default:
		return "idle"
	}
}

func (s SystemState) MarshalText() (text []byte, err error) {
	return []byte(s.String()), nil
}

func (s *SystemState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = Idle
	case "heating":
		*s = Heating
	case "cooling":
		*s = Cooling
	default:
		return fmt.Errorf("unknown system state %q", text)
	}
	return nil
}
