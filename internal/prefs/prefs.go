// Package prefs persists the practice timer's local preferences as YAML
// under the user config directory.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/citrusvanilla/speed-jong/internal/engine"
)

const (
	appDir   = "speed-jong"
	fileName = "practice.yaml"
)

// Practice holds the offline timer's settings.
type Practice struct {
	DurationSeconds int
	Sounds          engine.SoundPrefs
}

func Default() Practice {
	return Practice{
		DurationSeconds: engine.DefaultDurationSeconds,
		Sounds:          engine.DefaultSounds(),
	}
}

// Pointer flags distinguish "absent" from "off" so a hand-edited partial
// file keeps the defaults for whatever it leaves out.
type yamlPractice struct {
	DurationSeconds int   `yaml:"duration_seconds"`
	TickSound       *bool `yaml:"tick_sound"`
	ResetSound      *bool `yaml:"reset_sound"`
	TimeoutSound    *bool `yaml:"timeout_sound"`
}

// Load reads the preferences file. A missing file yields the defaults.
func Load() (Practice, error) {
	path, err := resolvePath()
	if err != nil {
		return Default(), err
	}
	return load(path)
}

// Save writes the preferences file, creating the config directory on first
// use.
func Save(p Practice) error {
	path, err := resolvePath()
	if err != nil {
		return err
	}
	return save(path, p)
}

func load(path string) (Practice, error) {
	p := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return p, fmt.Errorf("read preferences file: %w", err)
	}

	var fileData yamlPractice
	if err := yaml.Unmarshal(raw, &fileData); err != nil {
		return p, fmt.Errorf("parse preferences yaml: %w", err)
	}

	if fileData.DurationSeconds > 0 {
		p.DurationSeconds = engine.ClampDuration(fileData.DurationSeconds)
	}
	if fileData.TickSound != nil {
		p.Sounds.Tick = *fileData.TickSound
	}
	if fileData.ResetSound != nil {
		p.Sounds.Reset = *fileData.ResetSound
	}
	if fileData.TimeoutSound != nil {
		p.Sounds.Timeout = *fileData.TimeoutSound
	}
	return p, nil
}

func save(path string, p Practice) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlPractice{
		DurationSeconds: engine.ClampDuration(p.DurationSeconds),
		TickSound:       &p.Sounds.Tick,
		ResetSound:      &p.Sounds.Reset,
		TimeoutSound:    &p.Sounds.Timeout,
	}
	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal preferences yaml: %w", err)
	}

	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write preferences file: %w", err)
	}
	return nil
}

func resolvePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appDir, fileName), nil
}
