// Package config loads syncd's small daemon-wide configuration: the
// poll interval, the temp-dir package name used to derive socket/pid/log
// paths, extra ignore patterns applied on top of .gitignore, and whether
// the optional fsnotify accelerator is enabled.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is syncd's top-level configuration.
type Config struct {
	// PollInterval is the sleep between poll cycles for every watched
	// root. Default: 1s.
	PollInterval time.Duration `yaml:"poll_interval"`

	// Package names the conventional directory under os.TempDir() that
	// holds the socket, pid, and log files. Default: "syncd".
	Package string `yaml:"package"`

	// ExtraIgnore lists additional gitignore-syntax patterns applied to
	// every watched root, beyond its own .gitignore and the unconditional
	// .git rule.
	ExtraIgnore []string `yaml:"extra_ignore"`

	// UseAccelerator enables the optional fsnotify-backed accelerator.
	// Default: false (poll-only).
	UseAccelerator bool `yaml:"use_accelerator"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		PollInterval:   time.Second,
		Package:        "syncd",
		ExtraIgnore:    nil,
		UseAccelerator: false,
	}
}

// UnmarshalYAML parses poll_interval as a duration string ("2s", "500ms")
// with time.ParseDuration, keeping the current value when it is absent,
// and copies the other fields as written.
func (c *Config) UnmarshalYAML(unmarshal func(any) error) error {
	type rawConfig struct {
		PollInterval   string   `yaml:"poll_interval"`
		Package        string   `yaml:"package"`
		ExtraIgnore    []string `yaml:"extra_ignore"`
		UseAccelerator bool     `yaml:"use_accelerator"`
	}
	var raw rawConfig
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if raw.PollInterval != "" {
		d, err := time.ParseDuration(raw.PollInterval)
		if err != nil {
			return fmt.Errorf("parse poll_interval %q: %w", raw.PollInterval, err)
		}
		c.PollInterval = d
	}
	c.Package = raw.Package
	c.ExtraIgnore = raw.ExtraIgnore
	c.UseAccelerator = raw.UseAccelerator
	return nil
}

// Validate checks that c is usable, filling in defaults for zero-valued
// fields that have one rather than rejecting them outright.
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.Package == "" {
		c.Package = "syncd"
	}
	return nil
}

// Load reads and parses a YAML config file at path. A missing file is not
// an error; it returns Default().
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
