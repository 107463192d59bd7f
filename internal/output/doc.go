// Package output abstracts the PWM hardware behind a small Driver
// interface.
//
// The only production implementation drives the Linux sysfs PWM
// interface. Tests substitute an in-memory driver; the base path of the
// sysfs implementation is also configurable so it can run against a
// temp directory.
package output
