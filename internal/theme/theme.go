// Package theme persists the dark/light preference shared by every
// dashboard instance on the machine.
package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Mode is the stored preference.
type Mode string

const (
	Dark  Mode = "dark"
	Light Mode = "light"
)

func (m Mode) Valid() bool { return m == Dark || m == Light }

func (m Mode) IsDark() bool { return m == Dark }

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// FromDark maps a boolean to a Mode.
func FromDark(dark bool) Mode {
	if dark {
		return Dark
	}
	return Light
}

type state struct {
	Theme Mode `yaml:"theme"`
}

// Load reads the stored preference. ok is false when nothing valid is stored.
func Load(path string) (mode Mode, ok bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	var st state
	if err = yaml.Unmarshal(data, &st); err != nil {
		return "", false, fmt.Errorf("parse %s: %w", path, err)
	}
	if !st.Theme.Valid() {
		return "", false, nil
	}
	return st.Theme, true, nil
}

// Save stores mode, replacing the file atomically.
func Save(path string, mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("invalid theme %q", mode)
	}
	data, err := yaml.Marshal(state{Theme: mode})
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".theme-*")
	if err != nil {
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Resolve returns the stored preference, falling back to osDark when
// nothing is stored or the file cannot be read.
func Resolve(path string, osDark func() bool) Mode {
	if mode, ok, err := Load(path); err == nil && ok {
		return mode
	}
	return FromDark(osDark())
}
