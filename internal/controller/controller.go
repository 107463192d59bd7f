package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mcconnect/actuator-node/internal/infrastructure/logging"
	"github.com/mcconnect/actuator-node/internal/output"
)

// mailboxCapacity bounds the inbound command queue. Commands arrive one
// at a time from a single app in practice; a small buffer absorbs bursts
// and anything beyond it is dropped with a warning.
const mailboxCapacity = 16

// State identifies the control loop's lifecycle phase.
type State int

// Control loop states.
const (
	StateInitializing State = iota
	StateConnecting
	StateReady
	StateShuttingDown
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Store persists the last applied output value across restarts.
// Satisfied by *state.Store.
type Store interface {
	Load(ctx context.Context) (int, error)
	Save(ctx context.Context, value int) error
}

// HistoryWriter records applied output levels. Satisfied by
// *history.Client; nil when history is disabled.
type HistoryWriter interface {
	WriteOutputLevel(deviceID, keyword string, value int)
}

// Options configures a Controller.
type Options struct {
	// DeviceID is the device identity all topics derive from.
	DeviceID string

	// Pin is the one GPIO pin commands must address.
	Pin int

	// Keyword is the telemetry keyword for the output.
	Keyword string

	// QoS is the MQTT QoS level for all publishes and the subscription.
	QoS byte

	// RetryDelay is the fixed delay between connection attempts.
	RetryDelay time.Duration

	// Tick is the loop tick interval. Must stay sub-second so shutdown
	// and reconnect are never starved.
	Tick time.Duration

	// Dialer establishes broker sessions.
	Dialer Dialer

	// Driver is the PWM output hardware.
	Driver output.Driver

	// Store persists the applied value. Optional.
	Store Store

	// History records applied values. Optional.
	History HistoryWriter

	// Logger is the structured logger. Defaults to logging.Default().
	Logger *logging.Logger
}

// Controller runs the command/telemetry/ack state machine for one output.
//
// A single goroutine (Run) owns all mutable state: the applied value,
// the broker session, and the hardware driver. Inbound commands arrive
// through a mailbox channel, so command handling is naturally serial and
// the non-reentrant driver is only ever touched from one path.
type Controller struct {
	opts    Options
	topics  Topics
	pub     *Publisher
	conn    *connectionManager
	logger  *logging.Logger
	mailbox chan []byte

	// connLost carries at most one pending loss signal.
	connLost chan struct{}

	// value is the last level successfully written to hardware, in the
	// public 0..1024 domain. Telemetry must never advertise anything else.
	value int

	state   State
	stateMu sync.RWMutex
}

// New creates a Controller. Call Run to start it.
func New(opts Options) (*Controller, error) {
	if opts.DeviceID == "" {
		return nil, errors.New("device ID is required")
	}
	if opts.Keyword == "" {
		return nil, errors.New("output keyword is required")
	}
	if opts.Dialer == nil {
		return nil, errors.New("dialer is required")
	}
	if opts.Driver == nil {
		return nil, errors.New("output driver is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 5 * time.Second
	}
	if opts.Tick <= 0 || opts.Tick >= time.Second {
		opts.Tick = 100 * time.Millisecond
	}

	topics := NewTopics(opts.DeviceID, opts.Keyword)
	logger := opts.Logger.With("component", "controller")

	return &Controller{
		opts:     opts,
		topics:   topics,
		pub:      NewPublisher(topics, opts.QoS, logger),
		conn:     newConnectionManager(opts.Dialer, opts.RetryDelay, logger),
		logger:   logger,
		mailbox:  make(chan []byte, mailboxCapacity),
		connLost: make(chan struct{}, 1),
	}, nil
}

// CurrentState returns the loop's lifecycle phase.
func (c *Controller) CurrentState() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// Value returns the last applied output value (0..1024).
func (c *Controller) Value() int {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.value
}

func (c *Controller) setState(s State) {
	c.stateMu.Lock()
	prev := c.state
	c.state = s
	c.stateMu.Unlock()

	if prev != s {
		c.logger.Info("state transition", "from", prev.String(), "to", s.String())
	}
}

func (c *Controller) setValue(v int) {
	c.stateMu.Lock()
	c.value = v
	c.stateMu.Unlock()
}

// Run drives the control loop until ctx is cancelled.
//
// Lifecycle: Initializing (restore persisted value to hardware) →
// Connecting (dial forever with fixed retry) → Ready (serve commands) →
// back to Connecting on session loss → ShuttingDown on ctx cancellation.
//
// Run only returns after shutdown; transport failures never terminate it.
func (c *Controller) Run(ctx context.Context) error {
	c.setState(StateInitializing)
	c.restore(ctx)

	for {
		c.setState(StateConnecting)
		session, err := c.conn.connect(ctx)
		if err != nil {
			// Context cancelled while dialing.
			break
		}

		if err := c.attach(session); err != nil {
			c.logger.Warn("session setup failed, redialing", "error", err)
			_ = session.Close()
			continue
		}

		c.setState(StateReady)
		c.serve(ctx, session)

		_ = session.Close()

		if ctx.Err() != nil {
			break
		}
		c.logger.Warn("broker session lost, reconnecting")
	}

	c.setState(StateShuttingDown)
	c.shutdown()
	return nil
}

// restore loads the persisted output value and re-applies it to hardware
// so the node comes back at its last commanded level. Best effort: on
// any failure the output stays at zero.
func (c *Controller) restore(ctx context.Context) {
	if c.opts.Store == nil {
		return
	}

	value, err := c.opts.Store.Load(ctx)
	if err != nil {
		c.logger.Debug("no persisted output value", "reason", err)
		return
	}

	duty := scaleDuty(value, c.opts.Driver.Max())
	if err := c.opts.Driver.SetDuty(duty); err != nil {
		c.logger.Error("restoring output value failed", "value", value, "error", err)
		return
	}

	c.setValue(value)
	c.logger.Info("restored output value", "value", value)
}

// attach wires a fresh session: subscribes the command topic into the
// mailbox, registers loss notification, and re-announces presence with
// the current telemetry so a reconnecting app immediately sees true state.
func (c *Controller) attach(session Session) error {
	c.drainLossSignal()

	session.SetOnConnectionLost(func(err error) {
		c.logger.Warn("connection lost", "error", err)
		c.signalLoss()
	})

	err := session.Subscribe(c.topics.Command(), c.opts.QoS, func(_ string, payload []byte) error {
		msg := make([]byte, len(payload))
		copy(msg, payload)

		select {
		case c.mailbox <- msg:
		default:
			c.logger.Warn("command mailbox full, dropping message")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribing to command topic: %w", err)
	}

	c.pub.Status(session, statusOnline)
	c.pub.Telemetry(session, c.Value())

	c.logger.Info("announced presence",
		"status_topic", c.topics.Status(),
		"telemetry", c.Value())

	return nil
}

// serve processes commands until shutdown or session loss.
func (c *Controller) serve(ctx context.Context, session Session) {
	ticker := time.NewTicker(c.opts.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-c.connLost:
			return

		case payload := <-c.mailbox:
			c.handleCommand(ctx, session, payload)

		case <-ticker.C:
			// The loss callback normally fires first; the tick check
			// catches sessions that died without notifying.
			if !session.IsConnected() {
				return
			}
		}
	}
}

// handleCommand runs one command through parse → validate → apply.
// Every rejection produces an error ack; errors here are local to this
// command and never terminate the loop.
func (c *Controller) handleCommand(ctx context.Context, session Session, payload []byte) {
	cmd, err := ParseCommand(payload)
	if err != nil {
		c.logger.Warn("command rejected", "error", err)
		c.pub.AckError(session, err.Error())
		return
	}

	if err := cmd.Validate(c.opts.Pin); err != nil {
		c.logger.Warn("command rejected",
			"pin", cmd.Pin,
			"value", cmd.Value,
			"error", err)
		c.pub.AckError(session, err.Error())
		return
	}

	// Mode is advisory; accepted but never branched on.
	c.logger.Debug("applying command",
		"pin", cmd.Pin,
		"value", cmd.Value,
		"mode", cmd.Mode)

	duty := scaleDuty(cmd.Value, c.opts.Driver.Max())
	if err := c.opts.Driver.SetDuty(duty); err != nil {
		c.logger.Error("hardware write failed", "duty", duty, "error", err)
		c.pub.AckError(session, fmt.Sprintf("applying value %d failed", cmd.Value))
		return
	}

	// Hardware accepted the value; from here the command has succeeded.
	c.setValue(cmd.Value)
	c.persist(ctx, cmd.Value)

	if c.opts.History != nil {
		c.opts.History.WriteOutputLevel(c.opts.DeviceID, c.opts.Keyword, cmd.Value)
	}

	c.pub.Telemetry(session, cmd.Value)
	c.pub.AckSuccess(session, cmd.Pin, cmd.Value)

	c.logger.Info("command applied", "pin", cmd.Pin, "value", cmd.Value)
}

// persist saves the applied value, best effort.
func (c *Controller) persist(ctx context.Context, value int) {
	if c.opts.Store == nil {
		return
	}
	if err := c.opts.Store.Save(ctx, value); err != nil {
		c.logger.Warn("persisting output value failed", "value", value, "error", err)
	}
}

// shutdown zeroes the output, best effort. Session teardown already
// happened in Run; the driver itself is closed by the caller that
// opened it.
func (c *Controller) shutdown() {
	if err := c.opts.Driver.SetDuty(0); err != nil {
		c.logger.Warn("zeroing output on shutdown failed", "error", err)
	}
	c.logger.Info("controller stopped")
}

func (c *Controller) signalLoss() {
	select {
	case c.connLost <- struct{}{}:
	default:
	}
}

func (c *Controller) drainLossSignal() {
	select {
	case <-c.connLost:
	default:
	}
}
