// internal/config/config.go
package config

// LatestVersion is the file version written by Save.
const LatestVersion = 5

type Config struct {
	Version        int             `yaml:"version,omitempty"`
	PollPeriodMs   int             `yaml:"poll_period_ms"`
	UnitType       string          `yaml:"unit_type,omitempty"`
	CurrentMachine string          `yaml:"current_machine,omitempty"`
	Machines       []MachineConfig `yaml:"machines"`

	Link    LinkConfig    `yaml:"link,omitempty"`
	Log     LogConfig     `yaml:"log,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
	Journal JournalConfig `yaml:"journal,omitempty"`

	// Status mirror (optional, opt-in)
	Mirror *MirrorConfig `yaml:"mirror,omitempty"`
}

// ---- MACHINE ----

type MachineConfig struct {
	Name       string `yaml:"name"`
	IP         string `yaml:"ip"`
	Port       int    `yaml:"port"`
	HoseLength string `yaml:"hose_length,omitempty"` // metric label, v3+
	TorchStyle string `yaml:"torch_style,omitempty"` // v4+
}

// ---- LINK ----

type LinkConfig struct {
	RetryMs           int `yaml:"retry_ms,omitempty"`
	ConnectTimeoutMs  int `yaml:"connect_timeout_ms,omitempty"`
	ResponseTimeoutMs int `yaml:"response_timeout_ms,omitempty"`
}

// ---- AMBIENT ----

type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"` // json | console
}

type MetricsConfig struct {
	Listen string `yaml:"listen,omitempty"`
}

type JournalConfig struct {
	Path   string `yaml:"path,omitempty"`
	Buffer int    `yaml:"buffer,omitempty"`
}

// ---- MIRROR ----

type MirrorConfig struct {
	Endpoint   string `yaml:"endpoint"`
	UnitID     uint8  `yaml:"unit_id"`
	BaseSlot   uint16 `yaml:"base_slot"`
	TimeoutMs  int    `yaml:"timeout_ms,omitempty"`
	DeviceName string `yaml:"device_name,omitempty"`
}

// ---- UNITS ----

const (
	UnitImperial = "IMPERIAL"
	UnitMetric   = "METRIC"
)

// Torch styles accepted from v4 on.
var TorchStyles = []string{"21", "22"}

const DefaultTorchStyle = "21"

// HoseLengths maps the metric hose label to imperial feet, in menu order.
var HoseLengths = []struct {
	Metric string
	Feet   int64
}{
	{"3.0 m", 10},
	{"4.6 m", 15},
	{"7.6 m", 25},
	{"10.6 m", 35},
	{"15.2 m", 50},
	{"23 m", 75},
	{"30.5 m", 100},
	{"38.0 m", 125},
	{"45.6 m", 150},
	{"53.3 m", 175},
}

// HoseFeet returns the imperial length for a metric label.
func HoseFeet(label string) (int64, bool) {
	for _, h := range HoseLengths {
		if h.Metric == label {
			return h.Feet, true
		}
	}
	return 0, false
}

// Poll period bounds in milliseconds.
const (
	MinPollPeriodMs     = 500
	MaxPollPeriodMs     = 5000
	DefaultPollPeriodMs = 500
)

// Link defaults in milliseconds.
const (
	DefaultRetryMs           = 2000
	DefaultConnectTimeoutMs  = 10000
	DefaultResponseTimeoutMs = 3000
	DefaultMirrorTimeoutMs   = 1000
	DefaultJournalBuffer     = 256
)
