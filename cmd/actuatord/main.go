// actuatord - MQTT PWM actuator node
//
// actuatord drives a single PWM output (dimmer, fan, LED) from MQTT
// commands and reports telemetry, acknowledgments, and presence back to
// the broker. It is the device-side counterpart of the MC Connect app's
// knob/slider widgets.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/mcconnect/actuator-node/migrations"

	"github.com/mcconnect/actuator-node/internal/controller"
	"github.com/mcconnect/actuator-node/internal/infrastructure/config"
	"github.com/mcconnect/actuator-node/internal/infrastructure/database"
	"github.com/mcconnect/actuator-node/internal/infrastructure/history"
	"github.com/mcconnect/actuator-node/internal/infrastructure/logging"
	"github.com/mcconnect/actuator-node/internal/infrastructure/mqtt"
	"github.com/mcconnect/actuator-node/internal/output"
	"github.com/mcconnect/actuator-node/internal/state"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Only configuration and local-resource failures are fatal here; broker
// connectivity is the controller's problem and is retried forever.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting actuatord",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the state database
	db, err := database.Open(database.Config{
		Path:        cfg.State.Path,
		BusyTimeout: cfg.State.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening state database: %w", err)
	}
	defer func() {
		log.Info("closing state database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("state database opened", "path", cfg.State.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	store := state.NewStore(db.DB, cfg.Output.Keyword)

	// Connect to InfluxDB telemetry history (optional)
	var historyClient *history.Client
	if cfg.History.Enabled {
		historyClient, err = history.Connect(cfg.History)
		if err != nil {
			return fmt.Errorf("connecting to history: %w", err)
		}
		defer func() {
			log.Info("closing history connection")
			if closeErr := historyClient.Close(); closeErr != nil {
				log.Error("error closing history", "error", closeErr)
			}
		}()
		historyClient.SetOnError(func(err error) {
			log.Error("history write error", "error", err)
		})
		log.Info("history connected",
			"url", cfg.History.URL,
			"org", cfg.History.Org,
			"bucket", cfg.History.Bucket,
		)
	} else {
		log.Info("history disabled")
	}

	// Open the PWM output
	driver, err := output.OpenSysfs(cfg.Output)
	if err != nil {
		return fmt.Errorf("opening PWM output: %w", err)
	}
	defer func() {
		log.Info("closing PWM output")
		if closeErr := driver.Close(); closeErr != nil {
			log.Error("error closing PWM output", "error", closeErr)
		}
	}()
	log.Info("PWM output ready",
		"pin", cfg.Output.Pin,
		"chip", cfg.Output.PWMChip,
		"channel", cfg.Output.PWMChannel,
		"resolution", driver.Max(),
	)

	ctrl, err := buildController(cfg, driver, store, historyClient, log)
	if err != nil {
		return fmt.Errorf("creating controller: %w", err)
	}

	log.Info("initialisation complete, entering control loop",
		"device_id", cfg.Device.ID,
		"keyword", cfg.Output.Keyword,
	)

	if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("control loop: %w", err)
	}

	log.Info("actuatord stopped")
	return nil
}

// buildController wires the control loop to the broker dialer and the
// local collaborators.
func buildController(cfg *config.Config, driver output.Driver, store controller.Store, historyClient *history.Client, log *logging.Logger) (*controller.Controller, error) {
	topics := controller.NewTopics(cfg.Device.ID, cfg.Output.Keyword)

	// Each dial attempt creates a fresh single-use broker session with
	// the LWT pointed at the status topic.
	dialer := controller.DialerFunc(func() (controller.Session, error) {
		client, err := mqtt.Connect(cfg.MQTT, cfg.Device.ID, topics.Status())
		if err != nil {
			return nil, err
		}
		client.SetLogger(log)
		return client, nil
	})

	// History is optional; a typed nil pointer must not reach the
	// controller as a non-nil interface.
	var historyWriter controller.HistoryWriter
	if historyClient != nil {
		historyWriter = historyClient
	}

	return controller.New(controller.Options{
		DeviceID: cfg.Device.ID,
		Pin:      cfg.Output.Pin,
		Keyword:  cfg.Output.Keyword,
		// #nosec G115 -- QoS validated to 0..2 by config
		QoS:        byte(cfg.MQTT.QoS),
		RetryDelay: cfg.GetRetryDelay(),
		Tick:       cfg.GetTickInterval(),
		Dialer:     dialer,
		Driver:     driver,
		Store:      store,
		History:    historyWriter,
		Logger:     log,
	})
}

// getConfigPath returns the configuration file path.
// Uses ACTUATORD_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ACTUATORD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
