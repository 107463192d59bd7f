package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the actuator node.
// All configuration is loaded from YAML and can be overridden by environment
// variables. Every field is immutable after Load returns.
type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Output  OutputConfig  `yaml:"output"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	State   StateConfig   `yaml:"state"`
	History HistoryConfig `yaml:"history"`
	Logging LoggingConfig `yaml:"logging"`
}

// DeviceConfig identifies this node towards the controlling app.
type DeviceConfig struct {
	// ID is the device identifier. It must match the device ID configured
	// in the app; all MQTT topics are derived from it.
	ID string `yaml:"id"`
}

// OutputConfig describes the single controlled PWM output.
type OutputConfig struct {
	// Pin is the GPIO pin number commands must address.
	Pin int `yaml:"pin"`

	// Keyword is the telemetry keyword for this output (e.g. "led").
	// It must match the widget configured in the app.
	Keyword string `yaml:"keyword"`

	// PWMChip and PWMChannel select the sysfs PWM device
	// (/sys/class/pwm/pwmchip{chip}/pwm{channel}).
	PWMChip    int `yaml:"pwm_chip"`
	PWMChannel int `yaml:"pwm_channel"`

	// PWMBasePath overrides the sysfs base path. Empty means the system
	// default (/sys/class/pwm). Used by tests.
	PWMBasePath string `yaml:"pwm_base_path,omitempty"`

	// PeriodNs is the PWM period in nanoseconds. Default 1000000 (1 kHz).
	PeriodNs int `yaml:"period_ns"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker MQTTBrokerConfig `yaml:"broker"`
	Auth   MQTTAuthConfig   `yaml:"auth"`
	QoS    int              `yaml:"qos"`

	// RetryDelay is the fixed delay between connection attempts (seconds).
	RetryDelay int `yaml:"retry_delay"`

	// TickInterval is the control loop tick interval in milliseconds.
	// Must stay sub-second so a pending shutdown is never starved.
	TickInterval int `yaml:"tick_interval"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains optional MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// StateConfig contains settings for the persisted output state.
type StateConfig struct {
	// Path is the filesystem path to the SQLite state file.
	Path string `yaml:"path"`

	// BusyTimeout is the maximum time to wait for a database lock (seconds).
	BusyTimeout int `yaml:"busy_timeout"`
}

// HistoryConfig contains optional InfluxDB telemetry history settings.
type HistoryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// ValueMax is the upper bound of the public command/telemetry value domain.
// The native PWM resolution may exceed this; it never leaks outward.
const ValueMax = 1024

// Load reads configuration from a YAML file and applies environment variable
// overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: ACTUATORD_SECTION_KEY
// For example: ACTUATORD_MQTT_HOST, ACTUATORD_DEVICE_ID
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Pin:      16,
			Keyword:  "led",
			PeriodNs: 1000000,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS:          1,
			RetryDelay:   5,
			TickInterval: 100,
		},
		State: StateConfig{
			Path:        "./data/actuatord.db",
			BusyTimeout: 5,
		},
		History: HistoryConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables follow the pattern: ACTUATORD_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Device
	if v := os.Getenv("ACTUATORD_DEVICE_ID"); v != "" {
		cfg.Device.ID = v
	}

	// Output
	if v := os.Getenv("ACTUATORD_OUTPUT_PIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Output.Pin = n
		}
	}
	if v := os.Getenv("ACTUATORD_OUTPUT_KEYWORD"); v != "" {
		cfg.Output.Keyword = v
	}

	// MQTT
	if v := os.Getenv("ACTUATORD_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("ACTUATORD_MQTT_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = n
		}
	}
	if v := os.Getenv("ACTUATORD_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("ACTUATORD_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// State
	if v := os.Getenv("ACTUATORD_STATE_PATH"); v != "" {
		cfg.State.Path = v
	}

	// History - token is a secret, always override from environment
	if v := os.Getenv("ACTUATORD_HISTORY_TOKEN"); v != "" {
		cfg.History.Token = v
	}
}

// Validate checks the configuration for errors.
//
// A validation failure is fatal: the process must not start with an
// unresolvable configuration.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Device.ID == "" {
		errs = append(errs, "device.id is required (set ACTUATORD_DEVICE_ID or device.id)")
	}

	if c.Output.Pin < 0 {
		errs = append(errs, "output.pin must not be negative")
	}
	if c.Output.Keyword == "" {
		errs = append(errs, "output.keyword is required")
	}
	if c.Output.PeriodNs <= 0 {
		errs = append(errs, "output.period_ns must be positive")
	}

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.RetryDelay < 1 {
		errs = append(errs, "mqtt.retry_delay must be at least 1 second")
	}
	if c.MQTT.TickInterval < 1 || c.MQTT.TickInterval >= 1000 {
		errs = append(errs, "mqtt.tick_interval must be between 1 and 999 milliseconds")
	}

	if c.State.Path == "" {
		errs = append(errs, "state.path is required")
	}

	if c.History.Enabled {
		if c.History.URL == "" {
			errs = append(errs, "history.url is required when history is enabled")
		}
		if c.History.Token == "" {
			errs = append(errs, "history.token is required when history is enabled (set ACTUATORD_HISTORY_TOKEN)")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetRetryDelay returns the connection retry delay as a Duration.
func (c *Config) GetRetryDelay() time.Duration {
	return time.Duration(c.MQTT.RetryDelay) * time.Second
}

// GetTickInterval returns the control loop tick interval as a Duration.
func (c *Config) GetTickInterval() time.Duration {
	return time.Duration(c.MQTT.TickInterval) * time.Millisecond
}
