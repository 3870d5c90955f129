// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides startup configuration loading for parley.
//
// Supports a TOML configuration file with sensible defaults and
// environment variable overrides.
//
// Configuration locations (in order of precedence):
//   - Environment variables (PARLEY_*, OPENAI_API_KEY, GEMINI_API_KEY)
//   - ~/.parley/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Provider names accepted in the "provider" field.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete parley configuration.
type Config struct {
	// Provider selects the active chat backend: "openai" or "gemini".
	// The binding is fixed at construction time; switching providers
	// means restarting with a different value.
	Provider string `toml:"provider"`

	// OpenAI configuration
	OpenAI OpenAIConfig `toml:"openai"`

	// Gemini configuration
	Gemini GeminiConfig `toml:"gemini"`

	// RequestTimeoutSecs bounds each provider call. A hung call must not
	// leave the input disabled forever.
	RequestTimeoutSecs int `toml:"request_timeout_secs"`

	// MaxRetries is the number of additional attempts after a transient
	// provider failure (rate limit, 5xx).
	MaxRetries int `toml:"max_retries"`
}

// OpenAIConfig contains OpenAI backend configuration.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key (sk-...).
	APIKey string `toml:"api_key"`
	// Model is the chat model to request.
	Model string `toml:"model"`
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string `toml:"base_url"`
}

// GeminiConfig contains Google Gemini backend configuration.
type GeminiConfig struct {
	// APIKey is the Google AI API key.
	APIKey string `toml:"api_key"`
	// Model is the generateContent model to request.
	Model string `toml:"model"`
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string `toml:"base_url"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Provider: ProviderOpenAI,

		OpenAI: OpenAIConfig{
			APIKey:  "",
			Model:   "gpt-4o-mini",
			BaseURL: "https://api.openai.com/v1",
		},

		Gemini: GeminiConfig{
			APIKey:  "",
			Model:   "gemini-2.0-flash",
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		},

		RequestTimeoutSecs: 60,
		MaxRetries:         1,
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the parley configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".parley"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD
// =============================================================================

// Load loads configuration from the config file, falling back to defaults
// when no file exists. Environment overrides are applied last, then the
// result is validated. A missing API key for the selected provider is a
// validation error here, at startup, not a runtime failure later.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with full
// validation. A nonexistent file is not an error; defaults are used.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.Provider == "" {
		c.Provider = defaults.Provider
	}
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))

	if c.OpenAI.Model == "" {
		c.OpenAI.Model = defaults.OpenAI.Model
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = defaults.OpenAI.BaseURL
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaults.Gemini.Model
	}
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = defaults.Gemini.BaseURL
	}
	if c.RequestTimeoutSecs == 0 {
		c.RequestTimeoutSecs = defaults.RequestTimeoutSecs
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = defaults.MaxRetries
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - PARLEY_PROVIDER: overrides provider
//   - OPENAI_API_KEY: overrides openai.api_key
//   - GEMINI_API_KEY: overrides gemini.api_key
//   - PARLEY_OPENAI_MODEL: overrides openai.model
//   - PARLEY_GEMINI_MODEL: overrides gemini.model
//   - PARLEY_TIMEOUT: overrides request_timeout_secs
func (c *Config) ApplyEnvOverrides() {
	if p := os.Getenv("PARLEY_PROVIDER"); p != "" {
		c.Provider = p
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.OpenAI.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if m := os.Getenv("PARLEY_OPENAI_MODEL"); m != "" {
		c.OpenAI.Model = m
	}
	if m := os.Getenv("PARLEY_GEMINI_MODEL"); m != "" {
		c.Gemini.Model = m
	}
	if t := os.Getenv("PARLEY_TIMEOUT"); t != "" {
		if secs, err := strconv.Atoi(t); err == nil && secs > 0 {
			c.RequestTimeoutSecs = secs
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			errs = append(errs, ValidationError{
				Field:   "openai.api_key",
				Message: "required when provider is \"openai\" (set OPENAI_API_KEY)",
			})
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			errs = append(errs, ValidationError{
				Field:   "gemini.api_key",
				Message: "required when provider is \"gemini\" (set GEMINI_API_KEY)",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "provider",
			Message: fmt.Sprintf("invalid provider %q, must be one of: openai, gemini", c.Provider),
		})
	}

	if c.RequestTimeoutSecs < 1 || c.RequestTimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "request_timeout_secs",
			Message: fmt.Sprintf("must be 1-600, got %d", c.RequestTimeoutSecs),
		})
	}
	if c.MaxRetries < 0 || c.MaxRetries > 5 {
		errs = append(errs, ValidationError{
			Field:   "max_retries",
			Message: fmt.Sprintf("must be 0-5, got %d", c.MaxRetries),
		})
	}

	for field, raw := range map[string]string{
		"openai.base_url": c.OpenAI.BaseURL,
		"gemini.base_url": c.Gemini.BaseURL,
	} {
		if raw == "" {
			continue
		}
		if _, err := url.Parse(raw); err != nil {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RequestTimeout returns the per-call timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes the configuration to the default TOML file with restrictive
// permissions; the file holds API keys.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to a specific TOML file.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# parley configuration file")
	fmt.Fprintln(file, "# Generated by parley - edit with care")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// String returns a string representation for debugging with API keys
// redacted. Keys must never reach logs or error output in plaintext.
func (c *Config) String() string {
	safe := *c
	if safe.OpenAI.APIKey != "" {
		safe.OpenAI.APIKey = "[REDACTED]"
	}
	if safe.Gemini.APIKey != "" {
		safe.Gemini.APIKey = "[REDACTED]"
	}
	return fmt.Sprintf("provider=%s openai.model=%s gemini.model=%s timeout=%ds retries=%d",
		safe.Provider, safe.OpenAI.Model, safe.Gemini.Model,
		safe.RequestTimeoutSecs, safe.MaxRetries)
}
