package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/alittlebrighter/bandstat"
	"github.com/alittlebrighter/bandstat/models"
	"github.com/alittlebrighter/bandstat/util"
	"github.com/alittlebrighter/bandstat/web"
)

var (
	ConfigPath = "/etc/bandstat.yaml"
	EnvFile    = ".env"
	LogLevel   = "info"
)

var rootCmd = &cobra.Command{
	Use:   "bandstat",
	Short: "Keeps a room inside a temperature band.",
	Long: `bandstat polls a temperature band and a thermometer every few seconds and runs ` +
		`a heater or cooler until the temperature is back inside the band.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&ConfigPath, "config", ConfigPath, "Path to the configuration file to use.")
	rootCmd.Flags().StringVar(&EnvFile, "env-file", EnvFile, "Environment file holding secrets referenced by the configuration.")
	rootCmd.Flags().StringVar(&LogLevel, "log-level", LogLevel, "Log level (debug, info, warn, error).")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	return nil
}

func run(ctx context.Context) error {
	if err := setupLogging(LogLevel); err != nil {
		return err
	}

	log.Info().Msg("Starting thermostat.")

	if err := godotenv.Load(EnvFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		log.Debug().Str("path", EnvFile).Msg("no environment file")
	}

	cfg, err := readConfig(ConfigPath)
	if err != nil {
		log.Error().Err(err).Msg("could not read configuration")
		return err
	}
	units, _ := util.ParseUnits(cfg.Units)

	nc, err := connectNATS(cfg)
	if err != nil {
		log.Error().Err(err).Send()
		return err
	}

	sim := newSimulation(cfg)
	if cfg.usesSimulation() {
		log.Info().Float64("temperature", sim.Get()).Msg("Simulating room temperature.")
	}

	provider, err := newConfigProvider(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Error getting band source")
		return err
	}

	meter, err := newThermometer(cfg, units, sim, nc)
	if err != nil {
		log.Error().Err(err).Msg("Error getting thermometer instance")
		return err
	}
	atexit.Register(meter.Shutdown)

	log.Info().Msg("Setting up modifier.")
	mod, err := newModifier(cfg, sim, meter)
	if err != nil {
		log.Error().Err(err).Send()
		return err
	}

	events := util.NewRingBuffer(60)
	opts := []bandstat.Option{
		bandstat.WithObserver(events),
		bandstat.WithMaxActuationFailures(cfg.MaxActuationFailures),
	}
	if nc != nil {
		opts = append(opts, bandstat.WithObserver(models.NewPublisher(nc, cfg.NATS.StateSubject, cfg.Location)))
	}

	if cfg.ServeAt != "" {
		simulated := sim
		if !cfg.usesSimulation() {
			simulated = nil
		}
		server := &http.Server{Addr: cfg.ServeAt, Handler: web.NewRouter(events, simulated)}
		atexit.Register(func() { server.Close() })
		go func() {
			log.Info().Str("addr", cfg.ServeAt).Msg("Starting web server.")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("web server stopped")
			}
		}()
	}

	log.Info().Msg("Initializing thermostat.")
	controller := bandstat.NewController(provider, meter, mod, opts...)
	if err = controller.Run(ctx, time.Duration(cfg.PollInterval)); err != nil {
		log.Error().Err(err).Msg("Something went wrong")
		return err
	}

	log.Info().Msg("Stopping thermostat.")
	return nil
}
