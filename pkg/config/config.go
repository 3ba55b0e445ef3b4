// Package config handles loading and saving cmap configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/cmap/config.yaml
//   - State:  ~/.local/state/cmap/ (saved node positions and viewports)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LayoutConfig holds the tiered tree layout constants.
type LayoutConfig struct {
	LeftMargin    float64 `yaml:"left_margin"`
	ColumnSpacing float64 `yaml:"column_spacing"`
	RowSpacing    float64 `yaml:"row_spacing"`
	CenterY       float64 `yaml:"center_y"`
	FallbackTier  int     `yaml:"fallback_tier"` // Column for nodes unreachable from the root
}

// CanvasConfig holds viewport, drag and connection constants.
type CanvasConfig struct {
	MinZoom        float64 `yaml:"min_zoom"`
	MaxZoom        float64 `yaml:"max_zoom"`
	ZoomStep       float64 `yaml:"zoom_step"`       // Scale change per wheel notch
	ClickThreshold float64 `yaml:"click_threshold"` // Canvas units a drag may move and still count as a click
	NodeWidth      float64 `yaml:"node_width"`      // Fallback size for unmeasured nodes
	NodeHeight     float64 `yaml:"node_height"`
	MinTension     float64 `yaml:"min_tension"`
}

// UIConfig holds terminal canvas preferences.
type UIConfig struct {
	FPS       int     `yaml:"fps,omitempty"`
	Parallax  bool    `yaml:"parallax"`
	CellScale float64 `yaml:"cell_scale,omitempty"` // Canvas units per terminal column at zoom 1
	Markdown  bool    `yaml:"markdown"`           // Render the detail panel with glamour
}

// Config is the top-level configuration for cmap.
type Config struct {
	Dataset string       `yaml:"dataset,omitempty"` // Default dataset path; empty uses the embedded sample
	Restore bool         `yaml:"restore"`           // Restore saved positions on view
	Layout  LayoutConfig `yaml:"layout"`
	Canvas  CanvasConfig `yaml:"canvas"`
	UI      UIConfig     `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with the stock canvas constants.
func DefaultConfig() Config {
	return Config{
		Restore: true,
		Layout: LayoutConfig{
			LeftMargin:    80,
			ColumnSpacing: 320,
			RowSpacing:    110,
			CenterY:       400,
			FallbackTier:  6,
		},
		Canvas: CanvasConfig{
			MinZoom:        0.2,
			MaxZoom:        2.0,
			ZoomStep:       0.1,
			ClickThreshold: 5,
			NodeWidth:      180,
			NodeHeight:     56,
			MinTension:     40,
		},
		UI: UIConfig{
			FPS:       30,
			Parallax:  true,
			CellScale: 10,
			Markdown:  true,
		},
	}
}

// ConfigDir returns the XDG config directory for cmap.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "cmap")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "cmap")
}

// StateDir returns the XDG state directory for cmap.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "cmap")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "cmap")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// StorePath returns the path of the positions database.
func StorePath() string {
	dir := StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "canvas.sqlite3")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return withEnv(DefaultConfig()), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return withEnv(cfg), nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Dataset = expandHome(cfg.Dataset)
	cfg.normalize()
	return withEnv(cfg), nil
}

// withEnv applies environment overrides.
func withEnv(cfg Config) Config {
	if v := strings.TrimSpace(os.Getenv("CMAP_DATASET")); v != "" {
		cfg.Dataset = expandHome(v)
	}
	return cfg
}

// normalize repairs values a hand-edited file may have broken so the
// controllers never see an empty or inverted zoom range.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Canvas.MinZoom <= 0 {
		c.Canvas.MinZoom = def.Canvas.MinZoom
	}
	if c.Canvas.MaxZoom <= 0 {
		c.Canvas.MaxZoom = def.Canvas.MaxZoom
	}
	if c.Canvas.MinZoom > c.Canvas.MaxZoom {
		c.Canvas.MinZoom, c.Canvas.MaxZoom = c.Canvas.MaxZoom, c.Canvas.MinZoom
	}
	if c.Canvas.ZoomStep <= 0 {
		c.Canvas.ZoomStep = def.Canvas.ZoomStep
	}
	if c.Canvas.ClickThreshold < 0 {
		c.Canvas.ClickThreshold = def.Canvas.ClickThreshold
	}
	if c.Canvas.NodeWidth <= 0 {
		c.Canvas.NodeWidth = def.Canvas.NodeWidth
	}
	if c.Canvas.NodeHeight <= 0 {
		c.Canvas.NodeHeight = def.Canvas.NodeHeight
	}
	if c.Layout.ColumnSpacing <= 0 {
		c.Layout.ColumnSpacing = def.Layout.ColumnSpacing
	}
	if c.Layout.RowSpacing <= 0 {
		c.Layout.RowSpacing = def.Layout.RowSpacing
	}
	if c.Layout.FallbackTier < 0 {
		c.Layout.FallbackTier = def.Layout.FallbackTier
	}
	if c.UI.FPS <= 0 {
		c.UI.FPS = def.UI.FPS
	}
	if c.UI.CellScale <= 0 {
		c.UI.CellScale = def.UI.CellScale
	}
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
