// Package config loads the hxwidget server configuration from YAML with
// environment overrides.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding the file.
const (
	EnvKey      = "HXWIDGET_KEY"
	EnvListen   = "HXWIDGET_LISTEN"
	EnvLogLevel = "HXWIDGET_LOG_LEVEL"
)

// FeedConfig describes one ICS subscription shown on the calendar.
type FeedConfig struct {
	URL   string `yaml:"url"`
	Name  string `yaml:"name,omitempty"`
	Color string `yaml:"color,omitempty"`
}

// Config is the server configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// Key signs callback tokens. Hex strings of at least 16 bytes are
	// decoded; anything else is used as is. Empty generates a random key
	// per process.
	Key string `yaml:"key,omitempty"`

	// CallbackPath is where the widget registry is mounted.
	CallbackPath string `yaml:"callback_path"`

	// Timezone is the IANA zone zone-less widget dates are read in.
	Timezone string `yaml:"timezone"`

	LogLevel  string `yaml:"log_level"`
	LogPretty bool   `yaml:"log_pretty"`

	// CORSOrigins lists origins allowed to call the server. Empty
	// disables CORS handling.
	CORSOrigins []string `yaml:"cors_origins,omitempty"`

	// Refresh is the cron schedule for ICS feeds.
	Refresh  string       `yaml:"refresh"`
	CacheDir string       `yaml:"cache_dir,omitempty"`
	Feeds    []FeedConfig `yaml:"feeds"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.CallbackPath == "" {
		c.CallbackPath = "/_w"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Refresh == "" {
		c.Refresh = "*/15 * * * *"
	}
	if c.Feeds == nil {
		c.Feeds = []FeedConfig{}
	}
}

// Validate checks values Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	for i, f := range c.Feeds {
		if strings.TrimSpace(f.URL) == "" {
			return fmt.Errorf("config: feeds[%d]: url is empty", i)
		}
	}
	return nil
}

// Location loads the configured zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// KeyBytes returns the token key, or nil when none is configured.
func (c *Config) KeyBytes() []byte {
	if c.Key == "" {
		return nil
	}
	if b, err := hex.DecodeString(c.Key); err == nil && len(b) >= 16 {
		return b
	}
	return []byte(c.Key)
}

// Load reads the YAML file at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// ApplyEnv loads the given .env files, when present, and applies the
// HXWIDGET_* variables on top of c. Variables already set in the process
// environment win over the files.
func (c *Config) ApplyEnv(envFiles ...string) error {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: %s: %w", f, err)
		}
	}
	if v := os.Getenv(EnvKey); v != "" {
		c.Key = v
	}
	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config: path is empty")
	}
	if cfg == nil {
		return errors.New("config: nil config")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".hxwidget-config-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
