// Package prefs handles gradewatch user preferences persistence.
// Preferences are stored in ~/.config/gradewatch/prefs.toml.
package prefs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/gradehoraria/gradewatch/internal/config"
)

// Prefs holds dashboard preferences.
type Prefs struct {
	Theme        string `toml:"theme"`
	ToastSeconds int    `toml:"toast_seconds"`
}

const (
	defaultPrefsPath    = "~/.config/gradewatch/prefs.toml"
	defaultTheme        = "Dracula"
	defaultToastSeconds = 6
)

// Default returns the preferences used when nothing is stored.
func Default() Prefs {
	return Prefs{Theme: defaultTheme, ToastSeconds: defaultToastSeconds}
}

// ToastDuration returns how long a toast stays on screen.
func (p Prefs) ToastDuration() time.Duration {
	if p.ToastSeconds <= 0 {
		return defaultToastSeconds * time.Second
	}
	return time.Duration(p.ToastSeconds) * time.Second
}

// Load reads preferences from path, falling back to defaults when the file is
// missing or unreadable.
func Load(path string) Prefs {
	prefs := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs
	}
	file, err := os.Open(resolved)
	if err != nil {
		return prefs
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs
	}
	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Default()
	}

	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	if prefs.ToastSeconds <= 0 {
		prefs.ToastSeconds = defaultToastSeconds
	}
	return prefs
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return config.ExpandPath(defaultPrefsPath)
	}
	return config.ExpandPath(path)
}
