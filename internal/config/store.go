// internal/config/store.go
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/tamzrod/nodelink/internal/domain"
)

// Store is the live, mutable view of a validated config.
// It implements node.Settings; every read reflects the latest edit.
type Store struct {
	mu  sync.RWMutex
	cfg Config
}

// NewStore copies cfg. cfg must have passed Validate and Normalize.
func NewStore(cfg *Config) *Store {
	s := &Store{cfg: *cfg}
	s.cfg.Machines = append([]MachineConfig(nil), cfg.Machines...)
	return s
}

func (s *Store) current() (MachineConfig, bool) {
	if s.cfg.CurrentMachine == "" {
		return MachineConfig{}, false
	}
	for _, m := range s.cfg.Machines {
		if m.Name == s.cfg.CurrentMachine {
			return m, true
		}
	}
	return MachineConfig{}, false
}

// Current returns the selected machine.
func (s *Store) Current() (MachineConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current()
}

// Target returns the selected machine's endpoint, ok=false when none is selected.
func (s *Store) Target() (domain.Target, bool) {
	m, ok := s.Current()
	if !ok {
		return domain.Target{}, false
	}
	return domain.Target{Host: m.IP, Port: uint16(m.Port)}, true
}

func (s *Store) PollPeriod() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Duration(s.cfg.PollPeriodMs) * time.Millisecond
}

// HoseLength returns the selected machine's hose in feet, or 0 when
// nothing is selected or the label is not a known length.
func (s *Store) HoseLength() int64 {
	m, ok := s.Current()
	if !ok {
		return 0
	}
	ft, _ := HoseFeet(m.HoseLength)
	return ft
}

func (s *Store) TorchStyle() (string, bool) {
	m, ok := s.Current()
	if !ok || m.TorchStyle == "" {
		return "", false
	}
	return m.TorchStyle, true
}

func (s *Store) UnitType() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.UnitType
}

// Select makes name the current machine. An empty name clears the selection.
func (s *Store) Select(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name != "" && s.index(name) < 0 {
		return fmt.Errorf("config: invalid machine '%s'", name)
	}
	s.cfg.CurrentMachine = name
	return nil
}

func (s *Store) SetPollPeriod(ms int) error {
	if err := ValidatePollPeriod(ms); err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg.PollPeriodMs = ms
	s.mu.Unlock()
	return nil
}

func (s *Store) SetUnitType(u string) error {
	if u != UnitImperial && u != UnitMetric {
		return fmt.Errorf("config: unknown unit type %q", u)
	}
	s.mu.Lock()
	s.cfg.UnitType = u
	s.mu.Unlock()
	return nil
}

// ---- machine list ----

func (s *Store) index(name string) int {
	for i, m := range s.cfg.Machines {
		if m.Name == name {
			return i
		}
	}
	return -1
}

func (s *Store) Machines() []MachineConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]MachineConfig(nil), s.cfg.Machines...)
}

// AddMachine appends m, checked against the latest machine shape.
func (s *Store) AddMachine(m MachineConfig) error {
	if err := validateV5(m, "machine"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index(m.Name) >= 0 {
		return fmt.Errorf("config: duplicate machine '%s'", m.Name)
	}
	s.cfg.Machines = append(s.cfg.Machines, m)
	return nil
}

// UpdateMachine replaces the machine with the same name.
func (s *Store) UpdateMachine(m MachineConfig) error {
	if err := validateV5(m, "machine"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(m.Name)
	if i < 0 {
		return fmt.Errorf("config: invalid machine '%s'", m.Name)
	}
	s.cfg.Machines[i] = m
	return nil
}

// RemoveMachine deletes name and clears the selection if it pointed there.
func (s *Store) RemoveMachine(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(name)
	if i < 0 {
		return fmt.Errorf("config: invalid machine '%s'", name)
	}
	s.cfg.Machines = append(s.cfg.Machines[:i], s.cfg.Machines[i+1:]...)
	if s.cfg.CurrentMachine == name {
		s.cfg.CurrentMachine = ""
	}
	return nil
}

// Config returns a copy suitable for Save.
func (s *Store) Config() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.cfg
	out.Machines = append([]MachineConfig(nil), s.cfg.Machines...)
	return &out
}
