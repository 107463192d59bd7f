package output

// Driver is the hardware interface the control loop writes to.
//
// Implementations expose their native resolution through Max; callers
// scale the public 0..1024 value domain onto 0..Max before calling
// SetDuty. The native resolution never appears in any network payload.
type Driver interface {
	// Max returns the largest duty value the hardware accepts.
	Max() uint32

	// SetDuty sets the output level. duty must be in 0..Max.
	SetDuty(duty uint32) error

	// Close drives the output to zero and releases the hardware.
	// Best effort: it must leave the system in a safe state even when
	// individual steps fail.
	Close() error
}
