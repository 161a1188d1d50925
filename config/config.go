// Package config loads editor settings from an optional YAML file,
// falling back to defaults that match the engine's built-in tuning.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"proofcanvas/layout"
)

// Config holds user-tunable settings.
type Config struct {
	// UserName and CursorColor identify this user's broadcast cursor.
	UserName    string `yaml:"userName"`
	CursorColor string `yaml:"cursorColor"`

	// CursorHub is the websocket URL of the cursor broadcast hub; empty
	// disables collaboration.
	CursorHub string `yaml:"cursorHub"`

	// HistoryDepth caps the undo stack.
	HistoryDepth int `yaml:"historyDepth"`

	Layout LayoutConfig `yaml:"layout"`
}

// LayoutConfig tunes the auto-layout spacing.
type LayoutConfig struct {
	BaseX    float64 `yaml:"baseX"`
	BaseY    float64 `yaml:"baseY"`
	XSpacing float64 `yaml:"xSpacing"`
	YSpacing float64 `yaml:"ySpacing"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		UserName:     "anonymous",
		CursorColor:  "#4a7cff",
		HistoryDepth: 50,
		Layout: LayoutConfig{
			BaseX:    layout.DefaultBaseX,
			BaseY:    layout.DefaultBaseY,
			XSpacing: layout.DefaultXSpacing,
			YSpacing: layout.DefaultYSpacing,
		},
	}
}

// DefaultPath returns the per-user config location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".proofcanvasrc.yaml")
}

// Load reads settings from path. A missing file yields the defaults; a
// malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.HistoryDepth <= 0 {
		cfg.HistoryDepth = 50
	}
	return cfg, nil
}

// NewLayout builds a layout engine from the configured spacing.
func (c *Config) NewLayout() *layout.Layered {
	l := layout.NewLayered()
	if c.Layout.BaseX != 0 {
		l.BaseX = c.Layout.BaseX
	}
	if c.Layout.BaseY != 0 {
		l.BaseY = c.Layout.BaseY
	}
	if c.Layout.XSpacing != 0 {
		l.XSpacing = c.Layout.XSpacing
	}
	if c.Layout.YSpacing != 0 {
		l.YSpacing = c.Layout.YSpacing
	}
	return l
}
