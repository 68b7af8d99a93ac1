// Package config loads the sync run configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingFeedURL      = errors.New("registry.feed_url is required")
	ErrMissingSiteURL      = errors.New("platform.site_url is required")
	ErrMissingMaintainer   = errors.New("platform.maintainer_id is required")
	ErrMissingMandatoryTag = errors.New("tags.mandatory is required")
	ErrInvalidTimeout      = errors.New("http.timeout_sec must be at least 1")
	ErrInvalidMaxRetries   = errors.New("http.max_retries must be non-negative")
	ErrInvalidBackoff      = errors.New("http.backoff_ms must be positive")
	ErrInvalidBackoffMax   = errors.New("http.backoff_max_ms must be >= http.backoff_ms")
)

// Config is the complete run configuration.
type Config struct {
	Registry RegistryConfig `yaml:"registry"`
	Platform PlatformConfig `yaml:"platform"`
	Tags     TagsConfig     `yaml:"tags"`
	HTTP     HTTPConfig     `yaml:"http"`
}

// RegistryConfig points at the upstream catalog.
type RegistryConfig struct {
	FeedURL   string `yaml:"feed_url"`
	TitlesURL string `yaml:"titles_url"`
}

// PlatformConfig identifies the hosting platform and the fixed fields
// stamped onto every submission.
type PlatformConfig struct {
	SiteURL      string `yaml:"site_url"`
	MaintainerID string `yaml:"maintainer_id"`
}

// TagsConfig drives tag normalization.
type TagsConfig struct {
	Mandatory string   `yaml:"mandatory"`
	Excluded  []string `yaml:"excluded"`
}

// HTTPConfig holds the shared HTTP client knobs.
type HTTPConfig struct {
	TimeoutSec   int `yaml:"timeout_sec"`
	MaxRetries   int `yaml:"max_retries"`
	BackoffMs    int `yaml:"backoff_ms"`
	BackoffMaxMs int `yaml:"backoff_max_ms"`
}

// Load reads and validates a YAML configuration file, applying defaults
// for the HTTP knobs.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.TimeoutSec == 0 {
		c.HTTP.TimeoutSec = 60
	}
	if c.HTTP.BackoffMs == 0 {
		c.HTTP.BackoffMs = 500
	}
	if c.HTTP.BackoffMaxMs == 0 {
		c.HTTP.BackoffMaxMs = 30000
	}
}

// Validate checks the configuration for completeness.
func (c *Config) Validate() error {
	if c.Registry.FeedURL == "" {
		return ErrMissingFeedURL
	}
	if c.Platform.SiteURL == "" {
		return ErrMissingSiteURL
	}
	if c.Platform.MaintainerID == "" {
		return ErrMissingMaintainer
	}
	if c.Tags.Mandatory == "" {
		return ErrMissingMandatoryTag
	}
	if c.HTTP.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}
	if c.HTTP.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}
	if c.HTTP.BackoffMs <= 0 {
		return ErrInvalidBackoff
	}
	if c.HTTP.BackoffMaxMs < c.HTTP.BackoffMs {
		return ErrInvalidBackoffMax
	}
	return nil
}
