package controller

import "errors"

// Sentinel errors for command rejection.
//
// Every rejection reason is enumerable so tests and callers can branch
// with errors.Is(). The wrapped detail always names the offending input,
// and the full error text becomes the error ack payload.
var (
	// ErrMalformedPayload indicates the inbound payload was not valid JSON.
	ErrMalformedPayload = errors.New("malformed command payload")

	// ErrUnknownKind indicates an unrecognized command type.
	ErrUnknownKind = errors.New("unknown command type")

	// ErrUnknownTarget indicates the command addressed a pin this node
	// does not control.
	ErrUnknownTarget = errors.New("pin not configured")

	// ErrValueOutOfRange indicates a value outside the 0..1024 domain.
	ErrValueOutOfRange = errors.New("value out of range")
)
