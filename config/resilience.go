package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ResilienceConfig centralizes resilience-related configuration for the
// upstream fetcher.
type ResilienceConfig struct {
	// Circuit breaker settings
	CircuitBreakerEnabled bool          `yaml:"circuit_breaker_enabled"` // Whether to wrap the fetcher in a breaker
	CBFailureThreshold    int           `yaml:"cb_failure_threshold"`    // Number of failures before opening circuit
	CBTimeout             time.Duration `yaml:"cb_timeout"`              // Timeout before attempting to close circuit
	CBHalfOpenRequests    int           `yaml:"cb_half_open_requests"`   // Number of requests allowed in half-open state

	// envErrors holds deferred environment parse errors, reported by validate
	envErrors []string `yaml:"-"`
}

// DefaultResilienceConfig returns a ResilienceConfig with sensible defaults
func DefaultResilienceConfig() *ResilienceConfig {
	return &ResilienceConfig{
		CircuitBreakerEnabled: false,
		CBFailureThreshold:    5,
		CBTimeout:             30 * time.Second,
		CBHalfOpenRequests:    1,
	}
}

// envParser is a helper for parsing environment variables with validation
type envParser struct {
	errors []string
}

// parseDuration parses a duration environment variable, ensuring it's positive
func (p *envParser) parseDuration(envName string, target *time.Duration) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: invalid duration format (use '30s', '1m', etc.)", envName))
		return
	}

	if duration <= 0 {
		p.errors = append(p.errors, fmt.Sprintf("%s must be positive", envName))
		return
	}

	*target = duration
}

// parseInt parses an integer environment variable, ensuring it's positive
func (p *envParser) parseInt(envName string, target *int) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: invalid integer", envName))
		return
	}

	if n <= 0 {
		p.errors = append(p.errors, fmt.Sprintf("%s must be positive", envName))
		return
	}

	*target = n
}

// parseBool parses a boolean environment variable
func (p *envParser) parseBool(envName string, target *bool) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: invalid boolean (use 'true' or 'false')", envName))
		return
	}

	*target = b
}

// applyEnvOverrides applies PROFILE_CACHE_CB_* environment variables.
// Parse errors are deferred to validate so they surface alongside the rest.
func (c *ResilienceConfig) applyEnvOverrides() {
	p := &envParser{}
	p.parseBool("PROFILE_CACHE_CB_ENABLED", &c.CircuitBreakerEnabled)
	p.parseInt("PROFILE_CACHE_CB_FAILURE_THRESHOLD", &c.CBFailureThreshold)
	p.parseDuration("PROFILE_CACHE_CB_TIMEOUT", &c.CBTimeout)
	p.parseInt("PROFILE_CACHE_CB_HALF_OPEN_REQUESTS", &c.CBHalfOpenRequests)
	c.envErrors = p.errors
}

func (c *ResilienceConfig) validate() error {
	var errors []string
	errors = append(errors, c.envErrors...)

	if c.CBFailureThreshold <= 0 {
		errors = append(errors, "circuit breaker failure threshold must be positive")
	}
	if c.CBTimeout <= 0 {
		errors = append(errors, "circuit breaker timeout must be positive")
	}
	if c.CBHalfOpenRequests <= 0 {
		errors = append(errors, "circuit breaker half-open requests must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("resilience: %s", strings.Join(errors, "; "))
	}

	return nil
}
