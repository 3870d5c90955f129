// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv removes every override this package reads, so tests see only
// what they set themselves.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PARLEY_PROVIDER", "OPENAI_API_KEY", "GEMINI_API_KEY",
		"PARLEY_OPENAI_MODEL", "PARLEY_GEMINI_MODEL", "PARLEY_TIMEOUT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, 60, cfg.RequestTimeoutSecs)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout())
}

func TestValidateRequiresSelectedProviderKey(t *testing.T) {
	cfg := Default()
	cfg.Provider = ProviderOpenAI
	cfg.OpenAI.APIKey = ""
	cfg.Gemini.APIKey = "irrelevant"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai.api_key")

	// The other provider's key is not required.
	cfg.OpenAI.APIKey = "sk-test"
	cfg.Gemini.APIKey = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := Default()
	cfg.Provider = "anthropic"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider")
}

func TestValidateTimeoutBounds(t *testing.T) {
	cfg := Default()
	cfg.OpenAI.APIKey = "sk-test"

	cfg.RequestTimeoutSecs = 0
	assert.Error(t, cfg.Validate())

	cfg.RequestTimeoutSecs = 601
	assert.Error(t, cfg.Validate())

	cfg.RequestTimeoutSecs = 30
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromPathMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
}

func TestLoadFromPathReadsTOML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider = "gemini"
request_timeout_secs = 30

[gemini]
api_key = "g-key"
model = "gemini-2.0-pro"
`), 0o600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "g-key", cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-2.0-pro", cfg.Gemini.Model)
	assert.Equal(t, 30, cfg.RequestTimeoutSecs)
	// Unset fields still get defaults.
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PARLEY_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-env")
	t.Setenv("PARLEY_TIMEOUT", "15")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider = "openai"

[openai]
api_key = "sk-file"
`), 0o600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "g-env", cfg.Gemini.APIKey)
	assert.Equal(t, 15, cfg.RequestTimeoutSecs)
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := Default()
	cfg.Provider = ProviderGemini
	cfg.Gemini.APIKey = "g-key"
	require.NoError(t, SaveToPath(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, loaded.Provider)
	assert.Equal(t, "g-key", loaded.Gemini.APIKey)
}

func TestStringRedactsKeys(t *testing.T) {
	cfg := Default()
	cfg.OpenAI.APIKey = "sk-secret-value"
	cfg.Gemini.APIKey = "g-secret-value"

	s := cfg.String()
	assert.NotContains(t, s, "sk-secret-value")
	assert.NotContains(t, s, "g-secret-value")
}
