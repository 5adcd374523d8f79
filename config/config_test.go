package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.HTTP.Address != "0.0.0.0" {
		t.Errorf("expected address 0.0.0.0, got %q", cfg.HTTP.Address)
	}
	if cfg.HTTP.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.HTTP.Port)
	}
	if cfg.Upstream.BaseURL != "https://jsonplaceholder.typicode.com" {
		t.Errorf("unexpected upstream base url %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.Timeout != 30*time.Second {
		t.Errorf("expected upstream timeout 30s, got %v", cfg.Upstream.Timeout)
	}
	if cfg.Storage.Backend != "bolt" {
		t.Errorf("expected bolt backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Path != "profile-cache.db" {
		t.Errorf("unexpected storage path %q", cfg.Storage.Path)
	}
	if cfg.Log.Level != "INFO" {
		t.Errorf("expected log level INFO, got %q", cfg.Log.Level)
	}
	if cfg.Resilience.CircuitBreakerEnabled {
		t.Error("expected circuit breaker to be disabled by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("no file uses defaults", func(t *testing.T) {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.HTTP.Port != "8080" {
			t.Errorf("expected default port, got %q", cfg.HTTP.Port)
		}
	})

	t.Run("missing file fails", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected an error for a missing file")
		}
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := writeConfigFile(t, `
http:
  port: "9090"
upstream:
  base_url: http://directory.internal
  timeout: 5s
storage:
  backend: sqlite
  path: /var/lib/profile-cache/audit.db
log:
  level: DEBUG
resilience:
  circuit_breaker_enabled: true
  cb_failure_threshold: 3
`)

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if cfg.HTTP.Port != "9090" {
			t.Errorf("expected port 9090, got %q", cfg.HTTP.Port)
		}
		// Values the file does not mention keep their defaults.
		if cfg.HTTP.Address != "0.0.0.0" {
			t.Errorf("expected default address, got %q", cfg.HTTP.Address)
		}
		if cfg.Upstream.BaseURL != "http://directory.internal" {
			t.Errorf("unexpected upstream base url %q", cfg.Upstream.BaseURL)
		}
		if cfg.Upstream.Timeout != 5*time.Second {
			t.Errorf("expected timeout 5s, got %v", cfg.Upstream.Timeout)
		}
		if cfg.Storage.Backend != "sqlite" {
			t.Errorf("expected sqlite backend, got %q", cfg.Storage.Backend)
		}
		if !cfg.Resilience.CircuitBreakerEnabled {
			t.Error("expected circuit breaker to be enabled")
		}
		if cfg.Resilience.CBFailureThreshold != 3 {
			t.Errorf("expected failure threshold 3, got %d", cfg.Resilience.CBFailureThreshold)
		}
		if cfg.Resilience.CBTimeout != 30*time.Second {
			t.Errorf("expected default breaker timeout, got %v", cfg.Resilience.CBTimeout)
		}
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		path := writeConfigFile(t, "http: [not a mapping")
		if _, err := Load(path); err == nil {
			t.Error("expected an error for malformed yaml")
		}
	})

	t.Run("environment overrides file and defaults", func(t *testing.T) {
		path := writeConfigFile(t, `
http:
  port: "9090"
`)

		t.Setenv("PROFILE_CACHE_HTTP_PORT", "7070")
		t.Setenv("PROFILE_CACHE_UPSTREAM_URL", "http://override.internal")
		t.Setenv("PROFILE_CACHE_UPSTREAM_TIMEOUT", "10s")
		t.Setenv("PROFILE_CACHE_DB_BACKEND", "SQLITE")
		t.Setenv("PROFILE_CACHE_DB_PATH", "/tmp/audit.db")
		t.Setenv("PROFILE_CACHE_LOG_LEVEL", "debug")
		t.Setenv("PROFILE_CACHE_CB_ENABLED", "true")
		t.Setenv("PROFILE_CACHE_CB_FAILURE_THRESHOLD", "7")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if cfg.HTTP.Port != "7070" {
			t.Errorf("expected env to win over the file, got %q", cfg.HTTP.Port)
		}
		if cfg.Upstream.BaseURL != "http://override.internal" {
			t.Errorf("unexpected upstream base url %q", cfg.Upstream.BaseURL)
		}
		if cfg.Upstream.Timeout != 10*time.Second {
			t.Errorf("expected timeout 10s, got %v", cfg.Upstream.Timeout)
		}
		if cfg.Storage.Backend != "sqlite" {
			t.Errorf("expected backend to be lowercased, got %q", cfg.Storage.Backend)
		}
		if cfg.Log.Level != "DEBUG" {
			t.Errorf("expected log level to be uppercased, got %q", cfg.Log.Level)
		}
		if !cfg.Resilience.CircuitBreakerEnabled {
			t.Error("expected circuit breaker to be enabled via env")
		}
		if cfg.Resilience.CBFailureThreshold != 7 {
			t.Errorf("expected failure threshold 7, got %d", cfg.Resilience.CBFailureThreshold)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(cfg *Config)
		expected string
	}{
		{
			name:     "missing port",
			mutate:   func(cfg *Config) { cfg.HTTP.Port = "" },
			expected: "HTTP port is required",
		},
		{
			name:     "missing upstream url",
			mutate:   func(cfg *Config) { cfg.Upstream.BaseURL = "" },
			expected: "Upstream base URL is required",
		},
		{
			name:     "non-positive upstream timeout",
			mutate:   func(cfg *Config) { cfg.Upstream.Timeout = 0 },
			expected: "Upstream timeout must be positive",
		},
		{
			name:     "unknown storage backend",
			mutate:   func(cfg *Config) { cfg.Storage.Backend = "postgres" },
			expected: "Storage backend must be 'bolt' or 'sqlite'",
		},
		{
			name:     "missing storage path",
			mutate:   func(cfg *Config) { cfg.Storage.Path = "" },
			expected: "Storage path is required",
		},
		{
			name:     "unknown log level",
			mutate:   func(cfg *Config) { cfg.Log.Level = "VERBOSE" },
			expected: "Log level must be DEBUG, INFO, WARN or ERROR",
		},
		{
			name:     "non-positive breaker threshold",
			mutate:   func(cfg *Config) { cfg.Resilience.CBFailureThreshold = 0 },
			expected: "circuit breaker failure threshold must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.expected) {
				t.Errorf("expected error to contain %q, got %q", tt.expected, err.Error())
			}
		})
	}

	t.Run("collects every failure", func(t *testing.T) {
		cfg := Default()
		cfg.HTTP.Port = ""
		cfg.Storage.Path = ""
		cfg.Log.Level = "VERBOSE"

		err := cfg.Validate()
		if err == nil {
			t.Fatal("expected a validation error")
		}
		for _, fragment := range []string{"HTTP port", "Storage path", "Log level"} {
			if !strings.Contains(err.Error(), fragment) {
				t.Errorf("expected error to mention %q, got %q", fragment, err.Error())
			}
		}
	})

	t.Run("reports deferred env parse errors", func(t *testing.T) {
		t.Setenv("PROFILE_CACHE_CB_TIMEOUT", "soon")

		_, err := Load("")
		if err == nil {
			t.Fatal("expected a validation error")
		}
		if !strings.Contains(err.Error(), "PROFILE_CACHE_CB_TIMEOUT") {
			t.Errorf("expected the env name in the error, got %q", err.Error())
		}
	})
}
