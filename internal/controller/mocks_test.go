package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/mcconnect/actuator-node/internal/infrastructure/mqtt"
)

// MockSession implements Session for testing.
type MockSession struct {
	mu            sync.Mutex
	published     []mockPublish
	subscriptions []mockSubscription
	handlers      map[string]mqtt.MessageHandler
	connected     bool
	closed        bool
	onLost        func(err error)
	publishErr    error
	subscribeErr  error
}

type mockPublish struct {
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}

type mockSubscription struct {
	Topic string
	QoS   byte
}

func NewMockSession() *MockSession {
	return &MockSession{
		connected: true,
		handlers:  make(map[string]mqtt.MessageHandler),
	}
}

func (m *MockSession) Publish(topic string, payload []byte, qos byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, mockPublish{
		Topic:    topic,
		Payload:  payload,
		QoS:      qos,
		Retained: retained,
	})
	return nil
}

func (m *MockSession) PublishString(topic string, payload string, qos byte, retained bool) error {
	return m.Publish(topic, []byte(payload), qos, retained)
}

func (m *MockSession) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subscribeErr != nil {
		return m.subscribeErr
	}
	m.subscriptions = append(m.subscriptions, mockSubscription{Topic: topic, QoS: qos})
	m.handlers[topic] = handler
	return nil
}

func (m *MockSession) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockSession) SetOnConnectionLost(callback func(err error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLost = callback
}

func (m *MockSession) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	m.closed = true
	return nil
}

func (m *MockSession) GetPublished() []mockPublish {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mockPublish, len(m.published))
	copy(out, m.published)
	return out
}

func (m *MockSession) PublishedTo(topic string) []mockPublish {
	var out []mockPublish
	for _, p := range m.GetPublished() {
		if p.Topic == topic {
			out = append(out, p)
		}
	}
	return out
}

func (m *MockSession) GetSubscriptions() []mockSubscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mockSubscription, len(m.subscriptions))
	copy(out, m.subscriptions)
	return out
}

func (m *MockSession) SetPublishError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishErr = err
}

// SimulateMessage delivers an inbound MQTT message to the subscribed handler.
func (m *MockSession) SimulateMessage(topic string, payload []byte) {
	m.mu.Lock()
	handler, ok := m.handlers[topic]
	m.mu.Unlock()
	if ok {
		_ = handler(topic, payload)
	}
}

// SimulateConnectionLost drops the session and fires the loss callback.
func (m *MockSession) SimulateConnectionLost(err error) {
	m.mu.Lock()
	m.connected = false
	callback := m.onLost
	m.mu.Unlock()
	if callback != nil {
		callback(err)
	}
}

// MockDriver implements output.Driver for testing.
type MockDriver struct {
	mu     sync.Mutex
	max    uint32
	duties []uint32
	setErr error
	closed bool
}

func NewMockDriver(max uint32) *MockDriver {
	return &MockDriver{max: max}
}

func (d *MockDriver) Max() uint32 {
	return d.max
}

func (d *MockDriver) SetDuty(duty uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.setErr != nil {
		return d.setErr
	}
	d.duties = append(d.duties, duty)
	return nil
}

func (d *MockDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *MockDriver) GetDuties() []uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]uint32, len(d.duties))
	copy(out, d.duties)
	return out
}

func (d *MockDriver) SetError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setErr = err
}

// MockStore implements Store for testing.
type MockStore struct {
	mu      sync.Mutex
	value   int
	hasValue bool
	saves   []int
}

func NewMockStore() *MockStore {
	return &MockStore{}
}

func (s *MockStore) Seed(value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	s.hasValue = true
}

func (s *MockStore) Load(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasValue {
		return 0, errors.New("no stored value")
	}
	return s.value, nil
}

func (s *MockStore) Save(_ context.Context, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	s.hasValue = true
	s.saves = append(s.saves, value)
	return nil
}

func (s *MockStore) GetSaves() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.saves))
	copy(out, s.saves)
	return out
}

// MockDialer hands out a scripted sequence of sessions. Once the script
// is exhausted it fails every dial, which keeps the connection manager
// retrying until the test's context ends.
type MockDialer struct {
	mu       sync.Mutex
	sessions []*MockSession
	errs     []error
	calls    int
}

func NewMockDialer(sessions ...*MockSession) *MockDialer {
	return &MockDialer{sessions: sessions}
}

// FailTimes prepends n failed dial attempts before the scripted sessions.
func (d *MockDialer) FailTimes(n int) *MockDialer {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := 0; i < n; i++ {
		d.errs = append(d.errs, errors.New("dial refused"))
	}
	return d
}

func (d *MockDialer) Dial() (Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++

	if len(d.errs) > 0 {
		err := d.errs[0]
		d.errs = d.errs[1:]
		return nil, err
	}
	if len(d.sessions) > 0 {
		s := d.sessions[0]
		d.sessions = d.sessions[1:]
		return s, nil
	}
	return nil, errors.New("no more sessions scripted")
}

func (d *MockDialer) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}
