// Package config loads pipeline configuration from the environment.
// Every external dependency is optional: missing credentials disable
// the feature they power and surface as startup warnings, never as
// hard failures.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Defaults applied when the environment leaves a knob unset.
const (
	DefaultConcurrency = 10
	DefaultRateRPM     = 60
	DefaultMaxAttempts = 3
)

// Config holds all pipeline settings.
type Config struct {
	// GeminiAPIKey powers LLM analysis. Without it, checks can only
	// succeed through platform APIs.
	GeminiAPIKey string

	// GoogleSearchKey and GoogleSearchCX power career page discovery
	// via the Custom Search API.
	GoogleSearchKey string
	GoogleSearchCX  string

	// DatabaseURL enables result persistence when set.
	DatabaseURL string

	// Concurrency bounds simultaneous company checks.
	Concurrency int `validate:"gte=1,lte=100"`

	// RateRPM is the LLM requests-per-minute quota.
	RateRPM int `validate:"gte=0"`

	// MaxAttempts is the per-company retry budget.
	MaxAttempts int `validate:"gte=1,lte=10"`

	// UseBrowser enables headless Chrome rendering.
	UseBrowser bool

	// Verbose switches logging to development output.
	Verbose bool
}

// Load reads configuration from the environment. Call godotenv.Load
// first if a .env file should participate.
func Load() (*Config, error) {
	cfg := &Config{
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GoogleSearchKey: os.Getenv("GOOGLE_SEARCH_API_KEY"),
		GoogleSearchCX:  os.Getenv("GOOGLE_SEARCH_ENGINE_ID"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Concurrency:     envInt("MAX_CONCURRENT_CHECKS", DefaultConcurrency),
		RateRPM:         envInt("GEMINI_RATE_LIMIT_RPM", DefaultRateRPM),
		MaxAttempts:     envInt("RETRY_MAX_ATTEMPTS", DefaultMaxAttempts),
		UseBrowser:      envBool("USE_BROWSER", true),
		Verbose:         envBool("VERBOSE", false),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks numeric ranges.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Warnings describes which pipeline layers are degraded by missing
// credentials. The caller logs them at startup.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.GeminiAPIKey == "" {
		warnings = append(warnings, "GEMINI_API_KEY not set: LLM analysis disabled, only platform API checks will produce verdicts")
	}
	if c.GoogleSearchKey == "" || c.GoogleSearchCX == "" {
		warnings = append(warnings, "GOOGLE_SEARCH_API_KEY/GOOGLE_SEARCH_ENGINE_ID not set: search-based career page discovery disabled")
	}
	if c.DatabaseURL == "" {
		warnings = append(warnings, "DATABASE_URL not set: results will not be persisted")
	}
	return warnings
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return b
}
