// Package mqtt provides the broker session for the actuator node.
//
// This package manages:
//   - A single connection attempt to the broker (no internal retry)
//   - Message publishing with a bounded timeout
//   - Command topic subscription
//   - Last Will and Testament (LWT) publishing "offline" on the status topic
//
// # Session Model
//
// A Client is one session. It is created by Connect, destroyed on any
// transport failure, and replaced by a fresh Connect. Paho's auto-reconnect
// is disabled on purpose: the controller's session manager is the sole
// owner of the connect/retry/teardown lifecycle, which keeps the state
// machine explicit and testable.
//
//	app ↔ MQTT broker ↔ actuator node (this package)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, "pico-1", topics.Status())
//	if err != nil {
//	    // wait, then dial again
//	}
//	defer client.Close()
//
//	err = client.Subscribe(topics.Command(), 1,
//	    func(topic string, payload []byte) error {
//	        // enqueue, never block
//	        return nil
//	    })
package mqtt
