package controller

import (
	"context"
	"time"

	"github.com/mcconnect/actuator-node/internal/infrastructure/logging"
	"github.com/mcconnect/actuator-node/internal/infrastructure/mqtt"
)

// Session is one live broker connection.
//
// Sessions are single-use: created by the dialer, driven by the control
// loop, destroyed on connection loss and replaced by a fresh dial.
// Satisfied by *mqtt.Client and by test doubles.
type Session interface {
	Broker

	// Subscribe registers a handler for an inbound topic.
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error

	// IsConnected reports whether the session is still live.
	IsConnected() bool

	// SetOnConnectionLost registers a callback fired once when the
	// connection drops unexpectedly.
	SetOnConnectionLost(callback func(err error))

	// Close disconnects best effort; it never fails.
	Close() error
}

// Dialer establishes one broker session per attempt.
// Each call is a fresh connect-or-fail; retry policy lives in the
// connection manager, not here.
type Dialer interface {
	Dial() (Session, error)
}

// DialerFunc adapts a plain function to the Dialer interface.
type DialerFunc func() (Session, error)

// Dial calls f.
func (f DialerFunc) Dial() (Session, error) { return f() }

// connectionManager owns session establishment. It retries a failed dial
// forever at a fixed interval; the only way it stops is context
// cancellation. The sleep function is injectable so tests run without
// real delays.
type connectionManager struct {
	dialer     Dialer
	retryDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *logging.Logger
}

func newConnectionManager(dialer Dialer, retryDelay time.Duration, logger *logging.Logger) *connectionManager {
	return &connectionManager{
		dialer:     dialer,
		retryDelay: retryDelay,
		sleep:      sleepCtx,
		logger:     logger,
	}
}

// connect dials until a session exists or the context is cancelled.
// It never returns a transport error to the caller; failures are logged
// and retried indefinitely.
func (m *connectionManager) connect(ctx context.Context) (Session, error) {
	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attempt++
		session, err := m.dialer.Dial()
		if err == nil {
			m.logger.Info("broker session established", "attempt", attempt)
			return session, nil
		}

		m.logger.Warn("broker connection failed, retrying",
			"attempt", attempt,
			"retry_in", m.retryDelay,
			"error", err)

		if err := m.sleep(ctx, m.retryDelay); err != nil {
			return nil, err
		}
	}
}

// sleepCtx waits for the duration unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
