package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	nats "github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"github.com/tebeka/atexit"

	"github.com/alittlebrighter/bandstat"
	"github.com/alittlebrighter/bandstat/config"
	"github.com/alittlebrighter/bandstat/modifier"
	"github.com/alittlebrighter/bandstat/simulation"
	"github.com/alittlebrighter/bandstat/thermometer"
	"github.com/alittlebrighter/bandstat/util"
)

func newSimulation(cfg *Config) *simulation.Temperature {
	if cfg.Simulation.Initial != nil {
		return simulation.NewTemperature(*cfg.Simulation.Initial)
	}
	return simulation.NewRandomTemperature(rand.New(rand.NewSource(time.Now().UnixNano())))
}

func newConfigProvider(ctx context.Context, cfg *Config) (bandstat.ConfigProvider, error) {
	switch cfg.Band.Source {
	case "mysql", "sqlite":
		driver := config.DriverMySQL
		if cfg.Band.Source == "sqlite" {
			driver = config.DriverSQLite
		}

		provider, err := config.NewSQLProvider(driver, cfg.Band.DSN)
		if err != nil {
			return nil, err
		}
		atexit.Register(func() { provider.Close() })

		if err = provider.Setup(ctx); err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return config.NewFileProvider(cfg.Band.Path), nil
	}
}

func newThermometer(cfg *Config, units util.TemperatureUnits, sim *simulation.Temperature, nc *nats.Conn) (thermometer.Thermometer, error) {
	switch cfg.Thermometer.Type {
	case "http":
		return thermometer.NewRemote(cfg.Thermometer.Endpoint)
	case "nats":
		return thermometer.NewNATS(nc, cfg.Thermometer.Subject, units, time.Duration(cfg.Thermometer.MaxAge))
	case "mcp9808":
		return thermometer.NewLocal(units)
	default:
		return thermometer.NewSimulated(sim), nil
	}
}

func newModifier(cfg *Config, sim *simulation.Temperature, sensor bandstat.Sensor) (bandstat.Modifier, error) {
	mc := cfg.Modifier

	if mc.Type == "relay" {
		hvac, err := modifier.NewCentralHVAC(mc.Pins.Heat, mc.Pins.Cool, mc.Pins.Fan, sensor)
		if err != nil {
			return nil, fmt.Errorf("error starting relays: %w", err)
		}
		if mc.PollDelay > 0 {
			hvac.PollDelay = time.Duration(mc.PollDelay)
		}
		if mc.MaxPolls > 0 {
			hvac.MaxPolls = mc.MaxPolls
		}
		if mc.FanCooldown > 0 {
			hvac.FanCooldown = time.Duration(mc.FanCooldown)
		}
		hvac.Off()
		atexit.Register(hvac.Shutdown)
		return hvac, nil
	}

	ramp := modifier.NewRamp(sim)
	if mc.Step > 0 {
		ramp.Step = mc.Step
	}
	if mc.StepDelay > 0 {
		ramp.StepDelay = time.Duration(mc.StepDelay)
	}
	if mc.MaxSteps > 0 {
		ramp.MaxSteps = mc.MaxSteps
	}
	return ramp, nil
}

func connectNATS(cfg *Config) (*nats.Conn, error) {
	if cfg.NATS.URL == "" {
		return nil, nil
	}

	nc, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to message bus: %w", err)
	}
	atexit.Register(func() {
		if err := nc.Drain(); err != nil {
			log.Warn().Err(err).Msg("could not drain NATS connection")
			nc.Close()
		}
	})
	log.Info().Str("url", cfg.NATS.URL).Msg("Connected to NATS.")

	return nc, nil
}
