// Package prefs provides YAML-based application preferences.
package prefs

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	prefsDir  = "image-compare"
	prefsFile = "preferences.yaml"

	maxRecentFiles = 10
)

// Prefs stores the persisted interface settings.
type Prefs struct {
	SyncEnabled    bool     `yaml:"sync_enabled"`
	SmoothSampling bool     `yaml:"smooth_sampling"`
	Fullscreen     bool     `yaml:"fullscreen"`
	WindowWidth    int      `yaml:"window_width"`
	WindowHeight   int      `yaml:"window_height"`
	RecentFiles    []string `yaml:"recent_files,omitempty"`

	path string
}

// Defaults returns the settings used when no preferences file exists.
func Defaults() *Prefs {
	return &Prefs{
		SyncEnabled:  true,
		WindowWidth:  1200,
		WindowHeight: 800,
	}
}

// Load reads preferences from the user config directory, falling back to
// defaults when the file is missing or unreadable.
func Load() *Prefs {
	p := Defaults()

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	p.path = filepath.Join(configDir, prefsDir, prefsFile)

	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		// A partial unmarshal may have written some fields already;
		// start over from defaults, keeping the resolved file path so a
		// later Save still targets the config directory.
		d := Defaults()
		d.path = p.path
		return d
	}
	return p
}

// Save writes preferences to disk, creating the config directory if needed.
func (p *Prefs) Save() error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// AddRecent records a file path at the head of the recent list, removing
// duplicates and keeping at most maxRecentFiles entries.
func (p *Prefs) AddRecent(path string) {
	out := make([]string, 0, maxRecentFiles)
	out = append(out, path)
	for _, f := range p.RecentFiles {
		if f != path && len(out) < maxRecentFiles {
			out = append(out, f)
		}
	}
	p.RecentFiles = out
}
