// Package config provides configuration loading for the actuator node.
//
// Configuration is loaded from a YAML file with environment variable
// overrides, in the order: defaults, file, environment. The loaded Config
// is immutable; every component receives the values it needs at startup.
//
// # Environment Variables
//
// Overrides follow the pattern ACTUATORD_SECTION_KEY:
//
//	ACTUATORD_DEVICE_ID       device.id
//	ACTUATORD_OUTPUT_PIN      output.pin
//	ACTUATORD_OUTPUT_KEYWORD  output.keyword
//	ACTUATORD_MQTT_HOST       mqtt.broker.host
//	ACTUATORD_MQTT_PORT       mqtt.broker.port
//	ACTUATORD_MQTT_USERNAME   mqtt.auth.username
//	ACTUATORD_MQTT_PASSWORD   mqtt.auth.password
//	ACTUATORD_STATE_PATH      state.path
//	ACTUATORD_HISTORY_TOKEN   history.token
//
// Secrets (broker password, history token) should be supplied via the
// environment rather than the file.
//
// # Validation
//
// Load validates the result and refuses to return a configuration the node
// cannot start with. Validation failures are fatal by design: a node with an
// unresolvable configuration must not touch the network or the output.
package config
