// Package history records applied output levels to InfluxDB.
//
// History is optional: when disabled in configuration, Connect returns
// ErrDisabled and the node runs without it. When enabled, every applied
// command produces one point in the output_level measurement, tagged by
// device and output keyword. Writes are batched and asynchronous so a
// slow or absent InfluxDB server never stalls the control loop.
package history
