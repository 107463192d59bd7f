package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
device:
  id: "pico-test"
output:
  pin: 16
  keyword: "led"
mqtt:
  broker:
    host: "192.168.1.100"
    port: 1883
    client_id: "actuatord-test"
  qos: 1
state:
  path: "/tmp/actuatord-test.db"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.ID != "pico-test" {
		t.Errorf("Device.ID = %q, want %q", cfg.Device.ID, "pico-test")
	}
	if cfg.Output.Pin != 16 {
		t.Errorf("Output.Pin = %d, want 16", cfg.Output.Pin)
	}
	if cfg.MQTT.Broker.Host != "192.168.1.100" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "192.168.1.100")
	}
}

func TestLoad_Defaults(t *testing.T) {
	content := `
device:
  id: "pico-test"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output.Keyword != "led" {
		t.Errorf("Output.Keyword = %q, want default %q", cfg.Output.Keyword, "led")
	}
	if cfg.MQTT.RetryDelay != 5 {
		t.Errorf("MQTT.RetryDelay = %d, want default 5", cfg.MQTT.RetryDelay)
	}
	if got := cfg.GetRetryDelay(); got != 5*time.Second {
		t.Errorf("GetRetryDelay() = %v, want 5s", got)
	}
	if got := cfg.GetTickInterval(); got != 100*time.Millisecond {
		t.Errorf("GetTickInterval() = %v, want 100ms", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_MissingDeviceID(t *testing.T) {
	content := `
output:
  pin: 16
  keyword: "led"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error for missing device.id, got nil")
	}
	if !strings.Contains(err.Error(), "device.id") {
		t.Errorf("Load() error = %v, want mention of device.id", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
device:
  id: "file-id"
mqtt:
  broker:
    host: "file-host"
`
	t.Setenv("ACTUATORD_DEVICE_ID", "env-id")
	t.Setenv("ACTUATORD_MQTT_HOST", "env-host")
	t.Setenv("ACTUATORD_OUTPUT_PIN", "23")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.ID != "env-id" {
		t.Errorf("Device.ID = %q, want env override %q", cfg.Device.ID, "env-id")
	}
	if cfg.MQTT.Broker.Host != "env-host" {
		t.Errorf("MQTT.Broker.Host = %q, want env override %q", cfg.MQTT.Broker.Host, "env-host")
	}
	if cfg.Output.Pin != 23 {
		t.Errorf("Output.Pin = %d, want env override 23", cfg.Output.Pin)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Device.ID = "dev-1"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "negative pin",
			mutate:  func(c *Config) { c.Output.Pin = -1 },
			wantErr: "output.pin",
		},
		{
			name:    "empty keyword",
			mutate:  func(c *Config) { c.Output.Keyword = "" },
			wantErr: "output.keyword",
		},
		{
			name:    "bad qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.MQTT.Broker.Port = 0 },
			wantErr: "mqtt.broker.port",
		},
		{
			name:    "tick interval above a second",
			mutate:  func(c *Config) { c.MQTT.TickInterval = 1000 },
			wantErr: "tick_interval",
		},
		{
			name:    "zero retry delay",
			mutate:  func(c *Config) { c.MQTT.RetryDelay = 0 },
			wantErr: "retry_delay",
		},
		{
			name:    "empty state path",
			mutate:  func(c *Config) { c.State.Path = "" },
			wantErr: "state.path",
		},
		{
			name:    "history enabled without url",
			mutate:  func(c *Config) { c.History.Enabled = true; c.History.Token = "tok" },
			wantErr: "history.url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error mentioning %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
