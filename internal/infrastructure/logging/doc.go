// Package logging provides structured logging for the actuator node.
//
// It wraps log/slog with configuration-driven setup: output format
// (JSON or text), level filtering, destination, and default fields
// (service name, version) attached to every record.
//
// # Usage
//
//	log := logging.New(cfg.Logging, version)
//	log.Info("connected", "broker", "192.168.1.100:1883")
//
//	// Component-scoped logger
//	loopLog := log.With("component", "controller")
//
// Before configuration is loaded, use logging.Default() which writes JSON
// to stdout at info level.
package logging
