// internal/config/normalize.go
package config

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	upgradeMachines(cfg)

	if cfg.UnitType == "" {
		cfg.UnitType = UnitMetric
	}

	// ------------------------------------------------------------
	// LINK / AMBIENT DEFAULTS
	// ------------------------------------------------------------

	defaultInt(&cfg.Link.RetryMs, DefaultRetryMs)
	defaultInt(&cfg.Link.ConnectTimeoutMs, DefaultConnectTimeoutMs)
	defaultInt(&cfg.Link.ResponseTimeoutMs, DefaultResponseTimeoutMs)
	defaultInt(&cfg.Journal.Buffer, DefaultJournalBuffer)

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	// ------------------------------------------------------------
	// MIRROR (OPT-IN)
	// ------------------------------------------------------------

	if mc := cfg.Mirror; mc != nil {
		defaultInt(&mc.TimeoutMs, DefaultMirrorTimeoutMs)

		// ASCII already validated
		if len(mc.DeviceName) > 16 {
			mc.DeviceName = mc.DeviceName[:16]
		}
	}
}

// upgradeMachines lifts a v4 file to v5 by filling the torch style.
// Older files lack the hose length and stay at their version.
func upgradeMachines(cfg *Config) {
	if effectiveVersion(cfg) != 4 {
		return
	}
	for i := range cfg.Machines {
		if cfg.Machines[i].TorchStyle == "" {
			cfg.Machines[i].TorchStyle = DefaultTorchStyle
		}
	}
	cfg.Version = LatestVersion
}

func defaultInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}
