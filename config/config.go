// Package config defines the TimeFlow application configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level TimeFlow configuration.
type Config struct {
	Server   ServerConfig `json:"server" yaml:"server"`
	Sync     SyncConfig   `json:"sync" yaml:"sync"`
	Notify   NotifyConfig `json:"notify" yaml:"notify"`
	DataDir  string       `json:"data_dir" yaml:"data_dir"`
	LogLevel string       `json:"log_level" yaml:"log_level"`
	Locale   string       `json:"locale" yaml:"locale"` // BCP 47 tag for date labels
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"` // listen address, e.g., ":8735"

	// StaticDir is a directory of shell assets served at /. Empty
	// means the server exposes the API only.
	StaticDir string `json:"static_dir,omitempty" yaml:"static_dir"`
}

// SyncConfig controls cross-instance synchronization.
type SyncConfig struct {
	// Journal is the shared JSON-lines file instances sync through.
	// Empty means in-process sync only.
	Journal string `json:"journal,omitempty" yaml:"journal"`

	// PollInterval is how often the journal is tailed.
	PollInterval Duration `json:"poll_interval" yaml:"poll_interval"`
}

// NotifyConfig controls reminder delivery.
type NotifyConfig struct {
	// CheckInterval is how often due reminders are polled.
	CheckInterval Duration `json:"check_interval" yaml:"check_interval"`

	// Desktop enables notify-send desktop notifications alongside
	// the event stream.
	Desktop bool `json:"desktop" yaml:"desktop"`
}

// Duration parses YAML values like "250ms" or "10s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8735",
		},
		Sync: SyncConfig{
			PollInterval: Duration(500 * time.Millisecond),
		},
		Notify: NotifyConfig{
			CheckInterval: Duration(10 * time.Second),
			Desktop:       true,
		},
		DataDir:  "./data",
		LogLevel: "info",
		Locale:   "en-US",
	}
}

// Load reads a YAML config file and returns the parsed configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
