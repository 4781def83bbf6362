// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/tamzrod/nodelink/internal/schema"
	"github.com/tamzrod/nodelink/internal/status"
)

// MaxMirrorBaseSlot is the last base slot whose status block still ends
// inside the 16-bit register address space.
const MaxMirrorBaseSlot = 1<<16/status.SlotsPerDevice - 1

// ValidationError reports the first failing field.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: validation failed at /%s: %s", e.Path, e.Reason)
}

func invalid(path, format string, args ...any) error {
	return &ValidationError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// machineValidator checks one machine entry for a given file version.
type machineValidator func(m MachineConfig, path string) error

// validators is the fixed per-version table. Versions 1 and 2 share a shape.
var validators = map[int]machineValidator{
	1: validateV1,
	2: validateV1,
	3: validateV3,
	4: validateV4,
	5: validateV5,
}

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return invalid("", "empty configuration")
	}

	version := effectiveVersion(cfg)
	validate, ok := validators[version]
	if !ok {
		return invalid("version", "unsupported version %d", cfg.Version)
	}

	// ------------------------------------------------------------
	// TOP LEVEL
	// ------------------------------------------------------------

	if err := ValidatePollPeriod(cfg.PollPeriodMs); err != nil {
		return invalid("poll_period_ms", "%s", err.Error())
	}

	// v1 files predate the unit selector.
	if version >= 2 || cfg.UnitType != "" {
		if cfg.UnitType != UnitImperial && cfg.UnitType != UnitMetric {
			return invalid("unit_type", "must be one of %s, %s", UnitImperial, UnitMetric)
		}
	}

	// ------------------------------------------------------------
	// MACHINES
	// ------------------------------------------------------------

	seen := make(map[string]bool, len(cfg.Machines))
	for i, m := range cfg.Machines {
		path := fmt.Sprintf("machines/%d", i)
		if err := validate(m, path); err != nil {
			return err
		}
		if seen[m.Name] {
			return invalid(path+"/name", "Duplicate machine '%s'", m.Name)
		}
		seen[m.Name] = true
	}

	if cfg.CurrentMachine != "" && !seen[cfg.CurrentMachine] {
		return invalid("current_machine", "Machine %q not found", cfg.CurrentMachine)
	}

	// ------------------------------------------------------------
	// AMBIENT
	// ------------------------------------------------------------

	for _, f := range []struct {
		path string
		v    int
	}{
		{"link/retry_ms", cfg.Link.RetryMs},
		{"link/connect_timeout_ms", cfg.Link.ConnectTimeoutMs},
		{"link/response_timeout_ms", cfg.Link.ResponseTimeoutMs},
		{"journal/buffer", cfg.Journal.Buffer},
	} {
		if f.v < 0 {
			return invalid(f.path, "must not be negative")
		}
	}

	switch cfg.Log.Format {
	case "", "json", "console":
	default:
		return invalid("log/format", "must be json or console")
	}

	if mc := cfg.Mirror; mc != nil {
		if mc.Endpoint == "" {
			return invalid("mirror/endpoint", "must be set")
		}
		if mc.TimeoutMs < 0 {
			return invalid("mirror/timeout_ms", "must not be negative")
		}
		if mc.BaseSlot > MaxMirrorBaseSlot {
			return invalid("mirror/base_slot", fmt.Sprintf("must be at most %d", MaxMirrorBaseSlot))
		}
		for i := 0; i < len(mc.DeviceName); i++ {
			if mc.DeviceName[i] > 0x7F {
				return invalid("mirror/device_name", "must contain ASCII characters only")
			}
		}
	}

	return nil
}

// effectiveVersion treats a missing version as v1.
func effectiveVersion(cfg *Config) int {
	if cfg.Version == 0 {
		return 1
	}
	return cfg.Version
}

// ---- per-version machine checks ----

func validateV1(m MachineConfig, path string) error {
	if err := validateBase(m, path); err != nil {
		return err
	}
	if m.HoseLength != "" {
		return invalid(path+"/hose_length", "not allowed before version 3")
	}
	if m.TorchStyle != "" {
		return invalid(path+"/torch_style", "not allowed before version 4")
	}
	return nil
}

func validateV3(m MachineConfig, path string) error {
	if err := validateBase(m, path); err != nil {
		return err
	}
	if m.HoseLength == "" {
		return invalid(path+"/hose_length", "is required")
	}
	if m.TorchStyle != "" {
		return invalid(path+"/torch_style", "not allowed before version 4")
	}
	return nil
}

func validateV4(m MachineConfig, path string) error {
	if err := validateBase(m, path); err != nil {
		return err
	}
	if err := ValidateHoseLength(m.HoseLength); err != nil {
		return invalid(path+"/hose_length", "%s", err.Error())
	}
	if m.TorchStyle != "" {
		if err := ValidateTorchStyle(m.TorchStyle); err != nil {
			return invalid(path+"/torch_style", "%s", err.Error())
		}
	}
	return nil
}

func validateV5(m MachineConfig, path string) error {
	if err := validateV4(m, path); err != nil {
		return err
	}
	if err := ValidateTorchStyle(m.TorchStyle); err != nil {
		return invalid(path+"/torch_style", "%s", err.Error())
	}
	return nil
}

func validateBase(m MachineConfig, path string) error {
	if err := ValidateMachineName(m.Name); err != nil {
		return invalid(path+"/name", "%s", err.Error())
	}
	if err := schema.ValidateIP(m.IP, "Machine IP"); err != nil {
		return invalid(path+"/ip", "%s", err.Error())
	}
	if err := ValidatePort(m.Port); err != nil {
		return invalid(path+"/port", "%s", err.Error())
	}
	return nil
}

// ---- field checks, also used for interactive edits ----

func ValidateMachineName(name string) error {
	if len(name) < 4 {
		return errors.New("Machine name should have a minimum of 4 characters.")
	}
	if len(name) > 20 {
		return errors.New("Machine name should have a maximum of 20 characters.")
	}
	return nil
}

func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return errors.New("Port should be between 1 and 65535.")
	}
	return nil
}

func ValidateHoseLength(label string) error {
	if _, ok := HoseFeet(label); !ok {
		return errors.New("Hose length is none of these values 3.0, 4.6, 7.6, 10.6, 15.2, 23, 30.5, 38.0, 45.6, 53.3.")
	}
	return nil
}

func ValidateTorchStyle(style string) error {
	if !slices.Contains(TorchStyles, style) {
		return errors.New("Torch Style is none of these values 21, 22.")
	}
	return nil
}

func ValidatePollPeriod(ms int) error {
	if ms < MinPollPeriodMs || ms > MaxPollPeriodMs {
		return errors.New("Poll period should be greater than 500ms and less than 5000ms.")
	}
	return nil
}
