// Package config handles configuration loading and shared data structures.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	Attribution string  `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	TileURL     string  `yaml:"tiles,omitempty" json:"tiles,omitempty"`
	Fields      []Field `yaml:"fields" json:"fields"`
	Width       int     `yaml:"width,omitempty" json:"width,omitempty"`
	MaxSessions int     `yaml:"max_sessions,omitempty" json:"-"`
}

const (
	DefaultTileURL     = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution = "© OpenStreetMap contributors"
	DefaultWidth       = 640
	DefaultMaxSessions = 1024
)

// Load reads and parses the YAML configuration file from the specified path.
// Every field preset is validated before it is returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()

	seen := make(map[string]bool, len(cfg.Fields))
	for i := range cfg.Fields {
		f := &cfg.Fields[i]
		if f.Name == "" {
			return nil, fmt.Errorf("field #%d: name is required", i)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("field %q: duplicate name", f.Name)
		}
		seen[f.Name] = true

		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.normalize()
	return cfg
}

// Field looks up a preset by name.
func (c *Config) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (c *Config) normalize() {
	if c.TileURL == "" {
		c.TileURL = DefaultTileURL
	}
	if c.Attribution == "" {
		c.Attribution = DefaultAttribution
	}
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = DefaultMaxSessions
	}
}
