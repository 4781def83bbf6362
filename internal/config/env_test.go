// internal/config/env_test.go
package config

import "testing"

func TestApplyEnv(t *testing.T) {
	cfg := cfgV(5, machine("cutter-1"), machine("cutter-2"))
	cfg.CurrentMachine = "cutter-1"
	cfg.Log.Level = "info"

	env := map[string]string{
		EnvLogLevel:      "debug",
		EnvMetricsListen: ":9108",
		EnvMachine:       "cutter-2",
	}
	ApplyEnv(cfg, func(k string) string { return env[k] })

	if cfg.Log.Level != "debug" || cfg.Metrics.Listen != ":9108" || cfg.CurrentMachine != "cutter-2" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Log.Format != "" || cfg.Journal.Path != "" {
		t.Fatalf("unset variables must not clear fields: %+v", cfg)
	}
}
