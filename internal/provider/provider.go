// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jeranaias/parley/internal/config"
)

// =============================================================================
// PROVIDER INTERFACE
// =============================================================================

// Options carries per-call capabilities for a send.
type Options struct {
	// WebSearch attaches the vendor's live web-search tool to the
	// request. The value comes from the session-level settings toggle;
	// there is no per-message directive.
	WebSearch bool
}

// Provider is a chat-completion backend. One outgoing user message in,
// one plain-text reply out. Implementations are stateless between calls:
// no conversation memory is sent or retained.
type Provider interface {
	// Name returns the provider identifier ("openai" or "gemini").
	Name() string

	// Send forwards one user message and returns the reply text.
	// Failures are reported as a *Error, possibly wrapping one of the
	// sentinel errors in this package.
	Send(ctx context.Context, content string, opts Options) (string, error)
}

// New constructs the provider selected by cfg.Provider. The binding is
// fixed for the life of the returned value.
func New(cfg *config.Config) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAI.APIKey).
			WithBaseURL(cfg.OpenAI.BaseURL).
			WithModel(cfg.OpenAI.Model).
			WithTimeout(cfg.RequestTimeout()).
			WithMaxRetries(cfg.MaxRetries), nil
	case config.ProviderGemini:
		return NewGeminiClient(cfg.Gemini.APIKey).
			WithBaseURL(cfg.Gemini.BaseURL).
			WithModel(cfg.Gemini.Model).
			WithTimeout(cfg.RequestTimeout()).
			WithMaxRetries(cfg.MaxRetries), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// Error variables for common provider failures.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("provider API key not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrEmptyReply indicates the vendor returned no usable text.
	ErrEmptyReply = errors.New("empty reply from provider")
)

// Error represents a failure from a provider backend. The controller
// converts these into a user-visible fallback; raw detail is logged only.
type Error struct {
	Provider string
	Status   int
	Message  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (HTTP %d): %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
}

// =============================================================================
// SHARED HTTP HELPERS
// =============================================================================

// Request robustness defaults, overridable through config.
const (
	// DefaultTimeout bounds each provider call.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the number of additional attempts after a
	// transient failure.
	DefaultMaxRetries = 1

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay caps the backoff delay.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize limits the response body read; oversized vendor
	// responses must not exhaust memory.
	MaxResponseSize = 10 * 1024 * 1024
)

// sharedHTTPClient pools connections across all provider requests.
// Per-call deadlines come from the request context, not the client.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// isRetryable determines if an error should trigger another attempt.
// Rate limits and server-side errors are transient; everything else,
// including context cancellation, is not.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Status >= 500 && pErr.Status < 600
	}
	return false
}

// backoffDelay returns the delay before retry attempt n (1-based).
func backoffDelay(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// sleepOrDone waits for d or for ctx cancellation, whichever comes first.
func sleepOrDone(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
