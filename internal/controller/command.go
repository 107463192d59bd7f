package controller

import (
	"encoding/json"
	"fmt"

	"github.com/mcconnect/actuator-node/internal/infrastructure/config"
)

// kindGPIO is the only recognized command type.
const kindGPIO = "gpio"

// Command is a parsed inbound command message.
// Topic: device/{deviceID}/command
type Command struct {
	// Type is the command kind; only "gpio" is recognized.
	Type string `json:"type"`

	// Pin is the target GPIO pin. It must match the configured output.
	Pin int `json:"pin"`

	// Value is the requested level in the public 0..1024 domain.
	Value int `json:"value"`

	// Mode is advisory ("output"); accepted but never branched on.
	Mode string `json:"mode"`
}

// ParseCommand decodes a raw command payload.
//
// A command is either fully valid or rejected before any side effect;
// parse failures and unknown kinds are recoverable rejections, never
// crashes.
//
// Returns:
//   - Command: The decoded command
//   - error: ErrMalformedPayload or ErrUnknownKind (wrapped with detail)
func ParseCommand(payload []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if cmd.Type != kindGPIO {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownKind, cmd.Type)
	}
	return cmd, nil
}

// Validate checks the command against the configured output.
//
// Parameters:
//   - pin: The one pin this node controls
//
// Returns:
//   - error: ErrUnknownTarget or ErrValueOutOfRange (wrapped with the
//     offending value), nil if the command may be applied
func (c Command) Validate(pin int) error {
	if c.Pin != pin {
		return fmt.Errorf("%w: %d", ErrUnknownTarget, c.Pin)
	}
	if c.Value < 0 || c.Value > config.ValueMax {
		return fmt.Errorf("%w: %d (must be 0-%d)", ErrValueOutOfRange, c.Value, config.ValueMax)
	}
	return nil
}

// scaleDuty maps the public 0..1024 domain linearly onto the driver's
// native duty domain: duty = round(value / 1024 * max).
//
// Integer arithmetic with half-up rounding; value 1024 yields exactly max.
func scaleDuty(value int, max uint32) uint32 {
	// #nosec G115 -- value validated to 0..1024 before scaling
	return uint32((uint64(value)*uint64(max) + config.ValueMax/2) / config.ValueMax)
}
