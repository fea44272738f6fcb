// Package settings persists the user's mode and per-mode timer configuration as YAML.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/benjamonnguyen/tempo"
	"github.com/benjamonnguyen/tempo/modes"
)

// Persisted is everything that survives a restart. Runtime session fields
// are never written.
type Persisted struct {
	Mode     tempo.Mode     `yaml:"mode"`
	Settings modes.Settings `yaml:"settings"`
}

func Defaults() Persisted {
	return Persisted{
		Mode:     tempo.ModeMeditation,
		Settings: modes.DefaultSettings(),
	}
}

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads persisted settings. A missing file yields defaults.
func (s *Store) Load() (Persisted, error) {
	p := Defaults()
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return p, fmt.Errorf("read settings file: %w", err)
	}

	var fileData Persisted
	if err := yaml.Unmarshal(raw, &fileData); err != nil {
		return p, fmt.Errorf("parse settings yaml: %w", err)
	}
	if fileData.Mode != 0 {
		p.Mode = fileData.Mode
	}
	if !isEmpty(fileData.Settings) {
		p.Settings = fileData.Settings
	}
	p.Settings.Normalize()
	return p, nil
}

// Save refuses settings that would not load back as written.
func (s *Store) Save(p Persisted) error {
	if err := p.Settings.Validate(); err != nil {
		return fmt.Errorf("validate settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}

func isEmpty(s modes.Settings) bool {
	return s.Meditation.DurationSeconds == 0 && len(s.Pomodoro.Sequences) == 0 &&
		s.Meditation.EndSound == "" && s.Flow.UltradianSound == ""
}
