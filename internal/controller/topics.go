package controller

import "fmt"

// Topics derives the four MQTT channel names from the device identity.
// The device ID and output keyword are fixed at configuration time; the
// derived names never change for the life of the process.
type Topics struct {
	deviceID string
	keyword  string
}

// NewTopics creates the topic set for a device and its output keyword.
func NewTopics(deviceID, keyword string) Topics {
	return Topics{deviceID: deviceID, keyword: keyword}
}

// Command returns the inbound command topic.
// Example: device/pico-w-articulated/command
func (t Topics) Command() string {
	return fmt.Sprintf("device/%s/command", t.deviceID)
}

// Telemetry returns the outbound telemetry topic for the output keyword.
// Example: device/pico-w-articulated/telemetry/led
func (t Topics) Telemetry() string {
	return fmt.Sprintf("device/%s/telemetry/%s", t.deviceID, t.keyword)
}

// Ack returns the outbound acknowledgment topic.
// Example: device/pico-w-articulated/ack
func (t Topics) Ack() string {
	return fmt.Sprintf("device/%s/ack", t.deviceID)
}

// Status returns the outbound status topic.
// Example: device/pico-w-articulated/status
func (t Topics) Status() string {
	return fmt.Sprintf("device/%s/status", t.deviceID)
}
