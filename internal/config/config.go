// Package config loads the featdeck configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the tool configuration. Zero values fall back to defaults
// in setDefaults, so a missing or partial file is fine.
type Config struct {
	// WorktreesDir is the container directory for project worktrees.
	WorktreesDir string `yaml:"worktrees_dir"`

	PRCacheTTL  time.Duration `yaml:"-"`
	RawCacheTTL string        `yaml:"pr_cache_ttl"`

	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultPath returns ~/.featdeck/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".featdeck", "config.yaml"), nil
}

// Load reads and validates the config at path. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() error {
	if c.RawCacheTTL == "" {
		c.RawCacheTTL = "5m"
	}
	ttl, err := time.ParseDuration(c.RawCacheTTL)
	if err != nil {
		return fmt.Errorf("parse pr_cache_ttl %q: %w", c.RawCacheTTL, err)
	}
	if ttl <= 0 {
		return fmt.Errorf("pr_cache_ttl must be positive, got %s", ttl)
	}
	c.PRCacheTTL = ttl

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	return nil
}
