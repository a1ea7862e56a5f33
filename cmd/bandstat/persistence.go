package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ghodss/yaml"

	"github.com/alittlebrighter/bandstat/util"
)

// Config defines the configuration needed to run the thermostat.
type Config struct {
	PollInterval         util.Duration `json:"pollInterval"`
	Units                string        `json:"units"`
	Location             string        `json:"location"`
	MaxActuationFailures uint          `json:"maxActuationFailures"`
	ServeAt              string        `json:"serveAt"`

	Band struct {
		Source, Path, DSN string
	}
	Thermometer struct {
		Type, Endpoint, Subject string
		MaxAge                  util.Duration
	}
	Modifier struct {
		Type                              string
		Step                              float64
		StepDelay, PollDelay, FanCooldown util.Duration
		MaxSteps, MaxPolls                int
		Pins                              struct{ Fan, Cool, Heat int }
	}
	Simulation struct {
		Initial *float64
	}
	NATS struct {
		URL, StateSubject string
	}
}

const (
	defaultPollInterval = 3 * time.Second
	defaultBandFile     = "config.txt"
)

// readConfig loads the YAML file at path, expanding ${VAR} references from the environment.
func readConfig(path string) (*Config, error) {
	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := new(Config)
	if err = yaml.Unmarshal([]byte(os.ExpandEnv(string(dat))), config); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}

	config.setDefaults()
	if err = config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return config, nil
}

func (c *Config) setDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = util.Duration(defaultPollInterval)
	}
	if c.Band.Source == "" {
		c.Band.Source = "file"
	}
	if c.Band.Source == "file" && c.Band.Path == "" {
		c.Band.Path = defaultBandFile
	}
	if c.Thermometer.Type == "" {
		c.Thermometer.Type = "simulated"
	}
	if c.Modifier.Type == "" {
		c.Modifier.Type = "ramp"
	}
}

// Validate checks the parts of the configuration that would otherwise only fail once the loop runs.
func (c *Config) Validate() error {
	if _, err := util.ParseUnits(c.Units); err != nil {
		return err
	}

	switch c.Band.Source {
	case "file":
	case "mysql", "sqlite":
		if c.Band.DSN == "" {
			return fmt.Errorf("band source %s needs a dsn", c.Band.Source)
		}
	default:
		return fmt.Errorf("unknown band source %q", c.Band.Source)
	}

	switch c.Thermometer.Type {
	case "simulated", "http", "mcp9808":
	case "nats":
		if c.NATS.URL == "" {
			return fmt.Errorf("nats thermometer needs nats.url")
		}
	default:
		return fmt.Errorf("unknown thermometer type %q", c.Thermometer.Type)
	}

	switch c.Modifier.Type {
	case "ramp":
		if c.Thermometer.Type != "simulated" && c.Thermometer.Type != "http" {
			return fmt.Errorf("ramp modifier only moves the simulated temperature; use a simulated or http thermometer")
		}
	case "relay":
		if c.Modifier.Pins.Heat == c.Modifier.Pins.Cool {
			return fmt.Errorf("relay modifier needs distinct heat and cool pins")
		}
	default:
		return fmt.Errorf("unknown modifier type %q", c.Modifier.Type)
	}

	return nil
}

// usesSimulation reports whether any collaborator reads or writes the simulated temperature.
func (c *Config) usesSimulation() bool {
	return c.Thermometer.Type == "simulated" || c.Modifier.Type == "ramp"
}
