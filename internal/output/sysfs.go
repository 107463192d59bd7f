package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mcconnect/actuator-node/internal/infrastructure/config"
)

// defaultBasePath is the standard Linux sysfs PWM location.
const defaultBasePath = "/sys/class/pwm"

// attrPermissions is the mode used when creating attribute files.
// Real sysfs attributes already exist; this only matters for test trees.
const attrPermissions = 0600

// SysfsPWM drives a PWM channel through the Linux sysfs interface
// (/sys/class/pwm/pwmchip{N}/pwm{M}).
//
// The duty unit in sysfs is nanoseconds of the period, so the native
// resolution equals the configured period: Max() == period_ns.
//
// Not safe for concurrent use; the control loop is the only caller.
type SysfsPWM struct {
	chipDir  string
	pwmDir   string
	channel  int
	periodNs uint32
	exported bool
}

// OpenSysfs exports and enables a PWM channel.
//
// It performs the following setup:
//  1. Exports the channel if the kernel hasn't already
//  2. Writes the configured period
//  3. Forces the duty cycle to zero
//  4. Enables the output
//
// Parameters:
//   - cfg: Output configuration (chip, channel, period, optional base path)
//
// Returns:
//   - *SysfsPWM: Ready driver with the output at zero
//   - error: If the channel cannot be exported or configured
func OpenSysfs(cfg config.OutputConfig) (*SysfsPWM, error) {
	base := cfg.PWMBasePath
	if base == "" {
		base = defaultBasePath
	}

	chipDir := filepath.Join(base, fmt.Sprintf("pwmchip%d", cfg.PWMChip))
	pwmDir := filepath.Join(chipDir, fmt.Sprintf("pwm%d", cfg.PWMChannel))

	p := &SysfsPWM{
		chipDir:  chipDir,
		pwmDir:   pwmDir,
		channel:  cfg.PWMChannel,
		periodNs: uint32(cfg.PeriodNs), // #nosec G115 -- validated positive by config
	}

	if _, err := os.Stat(pwmDir); err != nil {
		// Channel not exported yet; ask the kernel for it.
		if err := writeAttr(chipDir, "export", cfg.PWMChannel); err != nil {
			return nil, fmt.Errorf("%w: exporting channel %d: %w", ErrNotExported, cfg.PWMChannel, err)
		}
		if _, err := os.Stat(pwmDir); err != nil {
			return nil, fmt.Errorf("%w: %s missing after export", ErrNotExported, pwmDir)
		}
		p.exported = true
	}

	if err := writeAttr(pwmDir, "period", cfg.PeriodNs); err != nil {
		return nil, fmt.Errorf("setting period: %w", err)
	}
	if err := writeAttr(pwmDir, "duty_cycle", 0); err != nil {
		return nil, fmt.Errorf("zeroing duty cycle: %w", err)
	}
	if err := writeAttr(pwmDir, "enable", 1); err != nil {
		return nil, fmt.Errorf("enabling output: %w", err)
	}

	return p, nil
}

// Max returns the native duty resolution (the period in nanoseconds).
func (p *SysfsPWM) Max() uint32 {
	return p.periodNs
}

// SetDuty writes the duty cycle in nanoseconds.
//
// Parameters:
//   - duty: Output level, 0 (off) to Max() (fully on)
//
// Returns:
//   - error: ErrDutyOutOfRange for duty > Max(), or the sysfs write error
func (p *SysfsPWM) SetDuty(duty uint32) error {
	if duty > p.periodNs {
		return fmt.Errorf("%w: %d > %d", ErrDutyOutOfRange, duty, p.periodNs)
	}
	if err := writeAttr(p.pwmDir, "duty_cycle", int(duty)); err != nil {
		return fmt.Errorf("setting duty cycle: %w", err)
	}
	return nil
}

// Close drives the output to zero, disables it, and unexports the
// channel if this process exported it. Each step is best effort; Close
// reports the first failure but always attempts every step.
func (p *SysfsPWM) Close() error {
	var firstErr error

	if err := writeAttr(p.pwmDir, "duty_cycle", 0); err != nil {
		firstErr = fmt.Errorf("zeroing duty cycle: %w", err)
	}
	if err := writeAttr(p.pwmDir, "enable", 0); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("disabling output: %w", err)
	}
	if p.exported {
		if err := writeAttr(p.chipDir, "unexport", p.channel); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("unexporting channel: %w", err)
		}
	}

	return firstErr
}

// writeAttr writes a decimal value to a sysfs attribute file.
func writeAttr(dir, name string, value int) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strconv.Itoa(value)), attrPermissions); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// readAttr reads a decimal value from a sysfs attribute file.
// Used by tests to verify hardware state.
func readAttr(dir, name string) (int, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return 0, err
	}
	s := string(data)
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == ' ') {
		s = s[:len(s)-1]
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", name, err)
	}
	return v, nil
}

var _ Driver = (*SysfsPWM)(nil)
