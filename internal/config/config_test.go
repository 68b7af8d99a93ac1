package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
registry:
  feed_url: https://registry.example.org/api/datasets
  titles_url: https://registry.example.org/titles.csv
platform:
  site_url: https://data.example.org
  maintainer_id: 196196be-6037-4488-8b71-d786adf4c081
tags:
  mandatory: common operational dataset - cod
  excluded:
    - common operational dataset
http:
  timeout_sec: 30
  max_retries: 3
  backoff_ms: 250
  backoff_max_ms: 5000
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Registry.FeedURL != "https://registry.example.org/api/datasets" {
		t.Errorf("FeedURL = %q", cfg.Registry.FeedURL)
	}
	if cfg.Platform.MaintainerID != "196196be-6037-4488-8b71-d786adf4c081" {
		t.Errorf("MaintainerID = %q", cfg.Platform.MaintainerID)
	}
	if len(cfg.Tags.Excluded) != 1 {
		t.Errorf("Excluded = %v", cfg.Tags.Excluded)
	}
	if cfg.HTTP.TimeoutSec != 30 || cfg.HTTP.MaxRetries != 3 {
		t.Errorf("HTTP = %+v", cfg.HTTP)
	}
}

func TestLoadDefaults(t *testing.T) {
	minimal := `
registry:
  feed_url: https://registry.example.org/api/datasets
platform:
  site_url: https://data.example.org
  maintainer_id: abc
tags:
  mandatory: common operational dataset - cod
`
	cfg, err := Load(writeConfig(t, minimal))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.TimeoutSec != 60 {
		t.Errorf("TimeoutSec default = %d, want 60", cfg.HTTP.TimeoutSec)
	}
	if cfg.HTTP.BackoffMs != 500 || cfg.HTTP.BackoffMaxMs != 30000 {
		t.Errorf("backoff defaults = %+v", cfg.HTTP)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadBadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "registry: [")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Registry: RegistryConfig{FeedURL: "https://x"},
			Platform: PlatformConfig{SiteURL: "https://y", MaintainerID: "m"},
			Tags:     TagsConfig{Mandatory: "tag"},
			HTTP:     HTTPConfig{TimeoutSec: 10, BackoffMs: 100, BackoffMaxMs: 1000},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing feed url",
			mutate:  func(c *Config) { c.Registry.FeedURL = "" },
			wantErr: ErrMissingFeedURL,
		},
		{
			name:    "missing site url",
			mutate:  func(c *Config) { c.Platform.SiteURL = "" },
			wantErr: ErrMissingSiteURL,
		},
		{
			name:    "missing maintainer",
			mutate:  func(c *Config) { c.Platform.MaintainerID = "" },
			wantErr: ErrMissingMaintainer,
		},
		{
			name:    "missing mandatory tag",
			mutate:  func(c *Config) { c.Tags.Mandatory = "" },
			wantErr: ErrMissingMandatoryTag,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.HTTP.TimeoutSec = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.HTTP.MaxRetries = -1 },
			wantErr: ErrInvalidMaxRetries,
		},
		{
			name:    "backoff max below backoff",
			mutate:  func(c *Config) { c.HTTP.BackoffMaxMs = 50 },
			wantErr: ErrInvalidBackoffMax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
