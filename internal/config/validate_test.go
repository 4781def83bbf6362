// internal/config/validate_test.go
package config

import (
	"errors"
	"testing"
)

// helper to build a config quickly
func cfgV(version int, machines ...MachineConfig) *Config {
	return &Config{
		Version:      version,
		PollPeriodMs: 1000,
		UnitType:     UnitMetric,
		Machines:     machines,
	}
}

func machine(name string) MachineConfig {
	return MachineConfig{
		Name:       name,
		IP:         "192.168.4.1",
		Port:       8080,
		HoseLength: "7.6 m",
		TorchStyle: "22",
	}
}

func expectPath(t *testing.T, err error, path string) {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError at %s, got %v", path, err)
	}
	if ve.Path != path {
		t.Fatalf("expected path %s, got %s (%s)", path, ve.Path, ve.Reason)
	}
}

// ---- tests ----

func TestValidate_V5Valid(t *testing.T) {
	cfg := cfgV(5, machine("cutter-1"), machine("cutter-2"))
	cfg.CurrentMachine = "cutter-2"

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_V1WithoutVersionOrUnit(t *testing.T) {
	cfg := &Config{
		PollPeriodMs: 500,
		Machines:     []MachineConfig{{Name: "plasma", IP: "::1", Port: 1}},
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_V2RequiresUnitType(t *testing.T) {
	cfg := cfgV(2, MachineConfig{Name: "plasma", IP: "10.0.0.1", Port: 80})
	cfg.UnitType = ""

	expectPath(t, Validate(cfg), "unit_type")
}

func TestValidate_V1RejectsHoseLength(t *testing.T) {
	m := machine("plasma")
	m.TorchStyle = ""
	expectPath(t, Validate(cfgV(1, m)), "machines/0/hose_length")
}

func TestValidate_V3AnyHoseString(t *testing.T) {
	m := MachineConfig{Name: "plasma", IP: "10.0.0.1", Port: 80, HoseLength: "long"}

	if err := Validate(cfgV(3, m)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.HoseLength = ""
	expectPath(t, Validate(cfgV(3, m)), "machines/0/hose_length")
}

func TestValidate_V4HoseEnumTorchOptional(t *testing.T) {
	m := machine("plasma")
	m.TorchStyle = ""
	if err := Validate(cfgV(4, m)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.HoseLength = "8 m"
	expectPath(t, Validate(cfgV(4, m)), "machines/0/hose_length")
}

func TestValidate_V5RequiresTorch(t *testing.T) {
	m := machine("plasma")
	m.TorchStyle = ""
	expectPath(t, Validate(cfgV(5, m)), "machines/0/torch_style")

	m.TorchStyle = "23"
	expectPath(t, Validate(cfgV(5, m)), "machines/0/torch_style")
}

func TestValidate_MachineFields(t *testing.T) {
	cases := []struct {
		name string
		edit func(*MachineConfig)
		path string
	}{
		{"short name", func(m *MachineConfig) { m.Name = "abc" }, "machines/0/name"},
		{"long name", func(m *MachineConfig) { m.Name = "abcdefghijklmnopqrstu" }, "machines/0/name"},
		{"bad ip", func(m *MachineConfig) { m.IP = "host.local" }, "machines/0/ip"},
		{"empty ip", func(m *MachineConfig) { m.IP = "" }, "machines/0/ip"},
		{"port zero", func(m *MachineConfig) { m.Port = 0 }, "machines/0/port"},
		{"port high", func(m *MachineConfig) { m.Port = 65536 }, "machines/0/port"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := machine("plasma")
			tc.edit(&m)
			expectPath(t, Validate(cfgV(5, m)), tc.path)
		})
	}
}

func TestValidate_PollPeriodBounds(t *testing.T) {
	for _, ms := range []int{500, 5000} {
		cfg := cfgV(5)
		cfg.PollPeriodMs = ms
		if err := Validate(cfg); err != nil {
			t.Fatalf("poll %d: unexpected error: %v", ms, err)
		}
	}
	for _, ms := range []int{0, 499, 5001} {
		cfg := cfgV(5)
		cfg.PollPeriodMs = ms
		expectPath(t, Validate(cfg), "poll_period_ms")
	}
}

func TestValidate_DuplicateMachine(t *testing.T) {
	expectPath(t, Validate(cfgV(5, machine("plasma"), machine("plasma"))), "machines/1/name")
}

func TestValidate_UnknownCurrentMachine(t *testing.T) {
	cfg := cfgV(5, machine("plasma"))
	cfg.CurrentMachine = "cutter"
	expectPath(t, Validate(cfg), "current_machine")
}

func TestValidate_UnsupportedVersion(t *testing.T) {
	expectPath(t, Validate(cfgV(6)), "version")
}

func TestValidate_MirrorDeviceNameASCII(t *testing.T) {
	cfg := cfgV(5)
	cfg.Mirror = &MirrorConfig{Endpoint: "127.0.0.1:502", DeviceName: "plasma-é"}
	expectPath(t, Validate(cfg), "mirror/device_name")
}

func TestValidate_MirrorBaseSlotBound(t *testing.T) {
	cfg := cfgV(5)
	cfg.Mirror = &MirrorConfig{Endpoint: "127.0.0.1:502", BaseSlot: MaxMirrorBaseSlot}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected last in-range base slot accepted, got %v", err)
	}

	cfg.Mirror.BaseSlot = MaxMirrorBaseSlot + 1
	expectPath(t, Validate(cfg), "mirror/base_slot")

	end := int(MaxMirrorBaseSlot)*20 + 19
	if end > 0xFFFF {
		t.Fatalf("expected block end inside the register space, got %d", end)
	}
}

func TestNormalize_UpgradesV4(t *testing.T) {
	m := machine("plasma")
	m.TorchStyle = ""
	cfg := cfgV(4, m)

	Normalize(cfg)

	if cfg.Version != LatestVersion {
		t.Fatalf("expected version %d, got %d", LatestVersion, cfg.Version)
	}
	if cfg.Machines[0].TorchStyle != DefaultTorchStyle {
		t.Fatalf("expected torch style %s, got %q", DefaultTorchStyle, cfg.Machines[0].TorchStyle)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("upgraded config must validate: %v", err)
	}
}

func TestNormalize_Defaults(t *testing.T) {
	cfg := cfgV(3)
	cfg.Mirror = &MirrorConfig{Endpoint: "127.0.0.1:502", DeviceName: "a-very-long-device-name"}

	Normalize(cfg)

	if cfg.Version != 3 {
		t.Fatalf("v3 must not be upgraded, got %d", cfg.Version)
	}
	if cfg.Link.RetryMs != DefaultRetryMs || cfg.Link.ConnectTimeoutMs != DefaultConnectTimeoutMs ||
		cfg.Link.ResponseTimeoutMs != DefaultResponseTimeoutMs {
		t.Fatalf("link defaults not applied: %+v", cfg.Link)
	}
	if len(cfg.Mirror.DeviceName) != 16 {
		t.Fatalf("expected device name truncated to 16, got %q", cfg.Mirror.DeviceName)
	}
	if cfg.Mirror.TimeoutMs != DefaultMirrorTimeoutMs {
		t.Fatalf("expected mirror timeout default, got %d", cfg.Mirror.TimeoutMs)
	}
}
