package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/mcconnect/actuator-node/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for a connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish
	// acknowledgment. Bounds every outbound message so a broken session
	// can never stall command processing or shutdown.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations
	// on disconnect (milliseconds).
	defaultDisconnectQuiesce = 1000

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12

	// clientIDSuffixLen is the number of random characters appended to
	// derived client IDs so stale broker sessions never collide.
	clientIDSuffixLen = 8
)

// Raw status payloads published on the status topic. The app treats the
// status channel as a plain string, not JSON.
const (
	statusOffline = "offline"
)

// buildClientOptions creates paho MQTT options from node config.
//
// This configures:
//   - Broker URL (tcp:// or ssl:// based on TLS setting)
//   - Client ID (configured, or derived from the device ID)
//   - Authentication credentials (if provided)
//   - Clean session mode
//   - TLS configuration (if enabled)
//
// Auto-reconnect and connect-retry are deliberately disabled: session
// lifecycle is owned by the connection manager, which dials a fresh
// session after every transport failure.
func buildClientOptions(cfg config.MQTTConfig, deviceID string) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	brokerURL := fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port)
	opts.AddBroker(brokerURL)

	opts.SetClientID(clientID(cfg, deviceID))

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)

	// One session, one dial. Retry belongs to the caller.
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)

	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tlsMinVersion,
		})
	}

	return opts
}

// clientID returns the configured client ID, or derives a unique one from
// the device ID. The random suffix prevents the broker from kicking a
// half-dead predecessor session with the same ID.
func clientID(cfg config.MQTTConfig, deviceID string) string {
	if cfg.Broker.ClientID != "" {
		return cfg.Broker.ClientID
	}
	suffix := uuid.NewString()[:clientIDSuffixLen]
	return fmt.Sprintf("actuatord-%s-%s", deviceID, suffix)
}

// configureLWT sets up Last Will and Testament for offline detection.
//
// The broker publishes the retained raw "offline" marker on the status
// topic if this session dies without a graceful Close, so the app can tell
// a crashed node from a silent one.
func configureLWT(opts *pahomqtt.ClientOptions, statusTopic string) {
	if statusTopic == "" {
		return
	}
	opts.SetWill(statusTopic, statusOffline, 1, true)
}
