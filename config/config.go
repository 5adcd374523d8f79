package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	// HTTP server settings
	HTTP struct {
		Address string `yaml:"address"`
		Port    string `yaml:"port"`
	} `yaml:"http"`

	// Upstream user directory settings
	Upstream struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"upstream"`

	// Audit store settings
	Storage struct {
		Backend string `yaml:"backend"` // "bolt" or "sqlite"
		Path    string `yaml:"path"`
	} `yaml:"storage"`

	// Logging settings
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	// Resilience settings (embedded)
	Resilience ResilienceConfig `yaml:"resilience"`
}

// Default returns a Config populated with sensible defaults
func Default() *Config {
	cfg := &Config{}
	cfg.HTTP.Address = "0.0.0.0"
	cfg.HTTP.Port = "8080"
	cfg.Upstream.BaseURL = "https://jsonplaceholder.typicode.com"
	cfg.Upstream.Timeout = 30 * time.Second
	cfg.Storage.Backend = "bolt"
	cfg.Storage.Path = "profile-cache.db"
	cfg.Log.Level = "INFO"
	cfg.Resilience = *DefaultResilienceConfig()
	return cfg
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variable overrides, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies PROFILE_CACHE_* environment variables on top of
// whatever the file (or the defaults) provided.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PROFILE_CACHE_HTTP_ADDRESS"); v != "" {
		c.HTTP.Address = v
	}
	if v := os.Getenv("PROFILE_CACHE_HTTP_PORT"); v != "" {
		c.HTTP.Port = v
	}
	if v := os.Getenv("PROFILE_CACHE_UPSTREAM_URL"); v != "" {
		c.Upstream.BaseURL = v
	}
	if v := os.Getenv("PROFILE_CACHE_UPSTREAM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Upstream.Timeout = d
		}
	}
	if v := os.Getenv("PROFILE_CACHE_DB_BACKEND"); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("PROFILE_CACHE_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("PROFILE_CACHE_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToUpper(v)
	}

	c.Resilience.applyEnvOverrides()
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTP.Address == "" {
		errors = append(errors, "HTTP address is required")
	}
	if c.HTTP.Port == "" {
		errors = append(errors, "HTTP port is required")
	}

	if c.Upstream.BaseURL == "" {
		errors = append(errors, "Upstream base URL is required")
	}
	if c.Upstream.Timeout <= 0 {
		errors = append(errors, "Upstream timeout must be positive")
	}

	switch c.Storage.Backend {
	case "bolt", "sqlite":
	default:
		errors = append(errors, fmt.Sprintf("Storage backend must be 'bolt' or 'sqlite', got %q", c.Storage.Backend))
	}
	if c.Storage.Path == "" {
		errors = append(errors, "Storage path is required")
	}

	switch strings.ToUpper(c.Log.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errors = append(errors, fmt.Sprintf("Log level must be DEBUG, INFO, WARN or ERROR, got %q", c.Log.Level))
	}

	if err := c.Resilience.validate(); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errors, "; "))
	}

	return nil
}
