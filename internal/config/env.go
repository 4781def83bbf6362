// internal/config/env.go
package config

// Environment overrides for the ambient settings. Machines are never
// taken from the environment.
const (
	EnvLogLevel      = "NODELINK_LOG_LEVEL"
	EnvLogFormat     = "NODELINK_LOG_FORMAT"
	EnvMetricsListen = "NODELINK_METRICS_LISTEN"
	EnvJournalPath   = "NODELINK_JOURNAL_PATH"
	EnvMachine       = "NODELINK_MACHINE"
)

// ApplyEnv overrides cfg from non-empty variables. Call before Validate.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	for _, o := range []struct {
		key string
		dst *string
	}{
		{EnvLogLevel, &cfg.Log.Level},
		{EnvLogFormat, &cfg.Log.Format},
		{EnvMetricsListen, &cfg.Metrics.Listen},
		{EnvJournalPath, &cfg.Journal.Path},
		{EnvMachine, &cfg.CurrentMachine},
	} {
		if v := getenv(o.key); v != "" {
			*o.dst = v
		}
	}
}
