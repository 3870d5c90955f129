// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// OPENAI WIRE TYPES
// =============================================================================

// chatMessage is one entry in a chat completions request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// webSearchOptions enables the hosted web-search tool. The empty object
// requests default search behavior.
type webSearchOptions struct{}

// chatRequest is the request body for the chat completions endpoint.
type chatRequest struct {
	Model            string            `json:"model"`
	Messages         []chatMessage     `json:"messages"`
	WebSearchOptions *webSearchOptions `json:"web_search_options,omitempty"`
}

// chatResponse is the response body from the chat completions endpoint.
type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// openaiErrorResponse is the vendor's error envelope.
type openaiErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// =============================================================================
// OPENAI CLIENT
// =============================================================================

// OpenAIClient talks to the OpenAI chat completions API.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	timeout    time.Duration
	maxRetries int
	limiter    *rate.Limiter
}

// NewOpenAIClient creates a client with the given API key. An empty key is
// allowed at construction; Send then fails with ErrNotConfigured.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    "https://api.openai.com/v1",
		model:      "gpt-4o-mini",
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *OpenAIClient) WithBaseURL(url string) *OpenAIClient {
	if url != "" {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
	return c
}

// WithModel sets the model to request.
func (c *OpenAIClient) WithModel(model string) *OpenAIClient {
	if model != "" {
		c.model = model
	}
	return c
}

// WithTimeout sets the per-call timeout.
func (c *OpenAIClient) WithTimeout(timeout time.Duration) *OpenAIClient {
	if timeout > 0 {
		c.timeout = timeout
	}
	return c
}

// WithMaxRetries sets the number of retries after a transient failure.
func (c *OpenAIClient) WithMaxRetries(n int) *OpenAIClient {
	if n >= 0 {
		c.maxRetries = n
	}
	return c
}

// Name returns the provider identifier.
func (c *OpenAIClient) Name() string {
	return "openai"
}

// IsConfigured returns true if the client has an API key.
func (c *OpenAIClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Send forwards one user message and returns the reply text. When
// opts.WebSearch is set, the request carries web_search_options so the
// backend may consult live web data before replying.
func (c *OpenAIClient) Send(ctx context.Context, content string, opts Options) (string, error) {
	if !c.IsConfigured() {
		return "", fmt.Errorf("%w: openai", ErrNotConfigured)
	}

	reqBody := chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: content}},
	}
	if opts.WebSearch {
		reqBody.WebSearchOptions = &webSearchOptions{}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepOrDone(ctx, backoffDelay(attempt)); err != nil {
				return "", err
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		reply, err := c.doRequest(ctx, reqBody)
		if err != nil {
			if isRetryable(err) {
				lastErr = err
				continue
			}
			return "", err
		}
		return reply, nil
	}
	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

// doRequest performs a single HTTP request to the chat completions endpoint.
func (c *OpenAIClient) doRequest(ctx context.Context, reqBody chatRequest) (string, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "parley/0.1.0")

	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		return "", &Error{Provider: "openai", Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return "", &Error{Provider: "openai", Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.handleErrorResponse(resp.StatusCode, body)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", &Error{Provider: "openai", Message: fmt.Sprintf("failed to parse response: %v", err)}
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: openai", ErrEmptyReply)
	}
	return chatResp.Choices[0].Message.Content, nil
}

// handleErrorResponse converts HTTP error responses to provider errors.
func (c *OpenAIClient) handleErrorResponse(statusCode int, body []byte) error {
	message := string(body)
	var apiErr openaiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrAuthFailed, message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, message)
	default:
		return &Error{Provider: "openai", Status: statusCode, Message: message}
	}
}
