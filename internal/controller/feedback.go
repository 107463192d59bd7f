package controller

import (
	"encoding/json"

	"github.com/mcconnect/actuator-node/internal/infrastructure/logging"
)

// Status messages published on the status topic. Raw strings, not JSON;
// the app expects them verbatim.
const (
	statusOnline = "online"
)

// Broker is the publish surface the feedback publisher needs.
// Satisfied by *mqtt.Client and by test doubles.
type Broker interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// PublishString sends a raw string payload to a topic.
	PublishString(topic string, payload string, qos byte, retained bool) error
}

// telemetryPayload is the telemetry message body: {value, unit}.
// Unit is always empty for this output type.
type telemetryPayload struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

// ackPayload is the acknowledgment message body.
// Success: {status:"success", data:{pin,value}}
// Error:   {status:"error", error:"..."}
type ackPayload struct {
	Status string   `json:"status"`
	Data   *ackData `json:"data,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// ackData carries the applied pin and value on success.
type ackData struct {
	Pin   int `json:"pin"`
	Value int `json:"value"`
}

// Publisher formats and emits outbound feedback messages.
//
// All methods are fire-and-forget: a publish failure is logged and
// swallowed, never escalated. Losing one feedback message must not halt
// command processing. The broker session is passed per call because the
// connection manager replaces it across reconnects.
type Publisher struct {
	topics Topics
	qos    byte
	logger *logging.Logger
}

// NewPublisher creates a feedback publisher for the given topic set.
func NewPublisher(topics Topics, qos byte, logger *logging.Logger) *Publisher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		topics: topics,
		qos:    qos,
		logger: logger,
	}
}

// Telemetry emits {value, unit:""} on the telemetry topic.
// The value is always in the public 0..1024 domain.
func (p *Publisher) Telemetry(b Broker, value int) {
	p.publishJSON(b, p.topics.Telemetry(), telemetryPayload{Value: value, Unit: ""})
}

// AckSuccess emits a success acknowledgment with the applied pin and value.
func (p *Publisher) AckSuccess(b Broker, pin, value int) {
	p.publishJSON(b, p.topics.Ack(), ackPayload{
		Status: "success",
		Data:   &ackData{Pin: pin, Value: value},
	})
}

// AckError emits an error acknowledgment carrying the rejection message.
func (p *Publisher) AckError(b Broker, message string) {
	p.publishJSON(b, p.topics.Ack(), ackPayload{
		Status: "error",
		Error:  message,
	})
}

// Status emits a raw status string on the status topic, retained so a
// late-joining app sees the current state.
func (p *Publisher) Status(b Broker, text string) {
	if err := b.PublishString(p.topics.Status(), text, p.qos, true); err != nil {
		p.logger.Warn("status publish failed", "status", text, "error", err)
	}
}

// publishJSON marshals and publishes a payload, swallowing failures.
func (p *Publisher) publishJSON(b Broker, topic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		p.logger.Error("marshalling feedback message failed", "topic", topic, "error", err)
		return
	}
	if err := b.Publish(topic, payload, p.qos, false); err != nil {
		p.logger.Warn("feedback publish failed", "topic", topic, "error", err)
	}
}
