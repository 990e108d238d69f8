// Package config provides configuration management for topoview.
//
// Config file locations (priority order):
//  1. $TOPOVIEW_CONFIG
//  2. ./topoview.yaml
//  3. $XDG_CONFIG_HOME/topoview/config.yaml
//  4. ~/.config/topoview/config.yaml
//  5. /etc/topoview/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Engine   EngineConfig   `yaml:"engine"`
	Database DatabaseConfig `yaml:"database"`
	Canvas   CanvasConfig   `yaml:"canvas"`
	Layout   LayoutConfig   `yaml:"layout"`
	Panel    PanelConfig    `yaml:"panel"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// EngineConfig points at the external analysis engine API.
type EngineConfig struct {
	BaseURL        string   `yaml:"base_url"`
	Timeout        Duration `yaml:"timeout"`
	DefaultNetwork string   `yaml:"default_network"`
}

// DatabaseConfig holds the position store settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// CanvasConfig sets the drawing surface and zoom clamp.
type CanvasConfig struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	MinScale float64 `yaml:"min_scale"`
	MaxScale float64 `yaml:"max_scale"`
}

// LayoutConfig exposes the force tuning knobs.
type LayoutConfig struct {
	LinkDistance    float64 `yaml:"link_distance"`
	ChargeStrength  float64 `yaml:"charge_strength"`
	CollisionRadius float64 `yaml:"collision_radius"`
	AlphaDecay      float64 `yaml:"alpha_decay"`
}

// PanelConfig tunes the detail panel.
type PanelConfig struct {
	Debounce Duration `yaml:"debounce"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load finds and loads the config file, or returns defaults if none found.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// DefaultConfig returns the defaults for a new installation.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Engine.BaseURL == "" {
		c.Engine.BaseURL = "http://localhost:9996/api/v1"
	}
	if c.Engine.Timeout == 0 {
		c.Engine.Timeout = Duration(30 * time.Second)
	}
	if c.Engine.DefaultNetwork == "" {
		c.Engine.DefaultNetwork = "default"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./topoview.db"
	}
	if c.Canvas.Width <= 0 {
		c.Canvas.Width = 1200
	}
	if c.Canvas.Height <= 0 {
		c.Canvas.Height = 800
	}
	if c.Canvas.MinScale <= 0 {
		c.Canvas.MinScale = 0.1
	}
	if c.Canvas.MaxScale <= 0 {
		c.Canvas.MaxScale = 4.0
	}
	if c.Layout.LinkDistance <= 0 {
		c.Layout.LinkDistance = 150
	}
	if c.Layout.ChargeStrength == 0 {
		c.Layout.ChargeStrength = -350
	}
	if c.Layout.CollisionRadius <= 0 {
		c.Layout.CollisionRadius = 45
	}
	if c.Panel.Debounce <= 0 {
		c.Panel.Debounce = Duration(100 * time.Millisecond)
	}
}
