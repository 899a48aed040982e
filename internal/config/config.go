// Package config loads storefront client configuration from the environment
// and an optional yaml file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultBaseURL points at the staging API the storefront ships against.
const DefaultBaseURL = "https://api-stage.ivitasa.com"

// Config holds everything the storefront client needs at startup.
type Config struct {
	// BaseURL is the root of the remote storefront API.
	BaseURL string `env:"IVITA_BASE_URL,default=https://api-stage.ivitasa.com" yaml:"base_url"`
	// Timeout applies per request; the transport default is deliberately
	// replaced so a stalled backend cannot hang the caller forever.
	Timeout time.Duration `env:"IVITA_TIMEOUT,default=30s" yaml:"timeout"`
	// StateDir is where the cart blob and credentials are persisted.
	StateDir string `env:"IVITA_STATE_DIR" yaml:"state_dir"`
	// LogLevel is a logrus level string.
	LogLevel string `env:"IVITA_LOG_LEVEL,default=info" yaml:"log_level"`
	// Locale selects the preferred localized variant when normalizing
	// catalog records.
	Locale string `env:"IVITA_LOCALE,default=en" yaml:"locale"`
}

// Load reads `.env` if present, then decodes the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromPath reads a yaml config file. Fields absent from the file keep
// their environment-derived values.
func LoadFromPath(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads from the environment and falls back to defaults on
// error.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		BaseURL:  DefaultBaseURL,
		Timeout:  30 * time.Second,
		LogLevel: "info",
		Locale:   "en",
	}
	_ = cfg.normalize()
	return cfg
}

func (c *Config) normalize() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(c.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: base URL %q is not a valid URL", c.BaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("config: base URL scheme must be http or https")
	}

	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
	if c.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		c.StateDir = filepath.Join(home, ".ivita")
	}
	return nil
}
