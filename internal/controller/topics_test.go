package controller

import "testing"

func TestTopics(t *testing.T) {
	topics := NewTopics("pico-w-articulated", "led")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"command", topics.Command(), "device/pico-w-articulated/command"},
		{"telemetry", topics.Telemetry(), "device/pico-w-articulated/telemetry/led"},
		{"ack", topics.Ack(), "device/pico-w-articulated/ack"},
		{"status", topics.Status(), "device/pico-w-articulated/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
