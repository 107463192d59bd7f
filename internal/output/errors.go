package output

import "errors"

// Sentinel errors for output driver operations.
var (
	// ErrDutyOutOfRange indicates a duty value above the driver's maximum.
	ErrDutyOutOfRange = errors.New("output: duty out of range")

	// ErrNotExported indicates the PWM channel is not available in sysfs.
	ErrNotExported = errors.New("output: pwm channel not exported")
)
