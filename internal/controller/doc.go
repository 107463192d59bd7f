// Package controller implements the command/telemetry/ack state machine
// for a single PWM output.
//
// The control loop is the sole owner of the output value, the hardware
// driver, and the broker session. Inbound commands flow through a
// mailbox channel and are handled strictly one at a time:
//
//	broker → parse → validate → driver → state → telemetry → ack
//
// Connection management is deliberately pessimistic: sessions are
// single-use, a failed dial is retried forever at a fixed interval, and
// every (re)connect re-announces "online" plus the current telemetry so
// the app always converges on true state. Feedback publishes are fire
// and forget; only configuration errors are fatal.
package controller
