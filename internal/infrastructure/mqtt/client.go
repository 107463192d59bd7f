package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/mcconnect/actuator-node/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang as a single-use broker session.
//
// A Client represents exactly one live session: it is created by a
// successful Connect, destroyed on any transport failure, and never
// reconnects on its own. Reconnection policy belongs to the caller (the
// controller's session manager), which dials a fresh Client instead.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig

	// statusTopic is where the retained offline marker is published on
	// graceful close; the LWT covers the ungraceful case.
	statusTopic string

	// connected tracks current connection state.
	connected bool
	connMu    sync.RWMutex

	// onConnectionLost is invoked once when the transport fails.
	onConnectionLost func(err error)
	callbackMu       sync.RWMutex

	// logger for handler error/panic logging (optional, set via SetLogger).
	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// MessageHandler is the callback signature for received messages.
//
// Handlers are invoked in separate goroutines by the paho library.
// They must not block; enqueue and return.
type MessageHandler func(topic string, payload []byte) error

// Connect establishes one session with the MQTT broker.
//
// It performs the following setup:
//  1. Builds connection options from config (broker URL, auth, TLS)
//  2. Configures a Last Will publishing a retained "offline" marker on
//     statusTopic so the app detects an ungraceful death
//  3. Attempts a single connection with timeout
//
// Connect does not retry and does not enable paho auto-reconnect: a failed
// dial is the caller's signal to wait and dial again, and a lost session is
// reported once through the connection-lost callback.
//
// Parameters:
//   - cfg: MQTT configuration from config.yaml
//   - deviceID: Device identifier, used to derive a unique client ID
//   - statusTopic: Topic for the LWT offline marker
//
// Returns:
//   - *Client: Connected session ready for use
//   - error: If the connection attempt fails within the timeout
func Connect(cfg config.MQTTConfig, deviceID, statusTopic string) (*Client, error) {
	opts := buildClientOptions(cfg, deviceID)
	configureLWT(opts, statusTopic)

	c := &Client{
		cfg:         cfg,
		statusTopic: statusTopic,
	}

	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleConnectionLost(err)
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	return c, nil
}

// handleConnectionLost is called by paho when the transport fails.
func (c *Client) handleConnectionLost(err error) {
	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	c.callbackMu.RLock()
	callback := c.onConnectionLost
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(err)
	}
}

// Close gracefully tears down the session.
//
// It publishes a retained "offline" marker on the status topic (so the app
// distinguishes graceful shutdown from the LWT crash case), then disconnects
// with a short quiesce for in-flight messages. Close never fails; shutdown
// must proceed regardless.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	if c.IsConnected() && c.statusTopic != "" {
		token := c.client.Publish(c.statusTopic, byte(c.cfg.QoS), true, statusOffline)
		token.WaitTimeout(defaultPublishTimeout)
	}

	c.client.Disconnect(defaultDisconnectQuiesce)

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	return nil
}

// HealthCheck verifies the session is alive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	return nil
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client != nil && c.client.IsConnected()
}

// SetOnConnectionLost sets a callback invoked when the transport fails.
// After it fires, this Client is dead; dial a new one.
func (c *Client) SetOnConnectionLost(callback func(err error)) {
	c.callbackMu.Lock()
	c.onConnectionLost = callback
	c.callbackMu.Unlock()
}

// SetLogger sets a logger for handler error and panic logging.
// If not set, errors in handlers are silently ignored.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// wrapHandler wraps a MessageHandler with panic recovery and optional logging.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("MQTT handler panic recovered",
						"topic", msg.Topic(),
						"panic", r,
					)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("MQTT handler returned error",
					"topic", msg.Topic(),
					"error", err,
				)
			}
		}
	}
}
