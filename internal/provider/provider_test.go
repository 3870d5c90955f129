// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/parley/internal/config"
)

func TestNewSelectsOpenAI(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = config.ProviderOpenAI
	cfg.OpenAI.APIKey = "sk-test"

	p, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
}

func TestNewSelectsGemini(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = config.ProviderGemini
	cfg.Gemini.APIKey = "g-test"

	p, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = "mystery"

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery")
}

func TestErrorFormatting(t *testing.T) {
	withStatus := &Error{Provider: "openai", Status: 500, Message: "boom"}
	assert.Equal(t, "openai error (HTTP 500): boom", withStatus.Error())

	noStatus := &Error{Provider: "gemini", Message: "connection refused"}
	assert.Equal(t, "gemini error: connection refused", noStatus.Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(&Error{Provider: "openai", Status: 500}))
	assert.True(t, isRetryable(&Error{Provider: "openai", Status: 503}))
	assert.False(t, isRetryable(&Error{Provider: "openai", Status: 400}))
	assert.False(t, isRetryable(&Error{Provider: "openai", Status: 0}))
	assert.True(t, isRetryable(ErrRateLimited))
	assert.False(t, isRetryable(ErrAuthFailed))
	assert.False(t, isRetryable(context.Canceled))
	assert.False(t, isRetryable(context.DeadlineExceeded))
}

func TestBackoffDelay(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, backoffDelay(1))
	assert.Equal(t, time.Second, backoffDelay(2))
	assert.Equal(t, 2*time.Second, backoffDelay(3))
	// Capped.
	assert.Equal(t, retryMaxDelay, backoffDelay(10))
}
