// internal/config/load.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file. Unknown keys are rejected.
// It does not validate; call Validate then Normalize.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: accessing file failed: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: parsing failed: %w", err)
	}
	return &cfg, nil
}

// Save writes cfg. A v4 machine list is upgraded to LatestVersion first.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}

	out := *cfg
	out.Machines = append([]MachineConfig(nil), cfg.Machines...)
	upgradeMachines(&out)

	b, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// LoadLastSelected returns the machine name stored in path.
// A missing file yields "" and no error.
func LoadLastSelected(path string) (string, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("config: last selected: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// SaveLastSelected stores name in path.
func SaveLastSelected(path, name string) error {
	if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
		return fmt.Errorf("config: last selected: %w", err)
	}
	return nil
}
