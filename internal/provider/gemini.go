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
// GEMINI WIRE TYPES
// =============================================================================

// geminiPart is one piece of content in a Gemini message.
type geminiPart struct {
	Text string `json:"text,omitempty"`
}

// geminiContent is a role-tagged message in a generateContent request.
type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

// geminiTool declares a tool the model may use. googleSearch grounds the
// reply in live web results.
type geminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

// generateRequest is the request body for models/{model}:generateContent.
type generateRequest struct {
	Contents []geminiContent `json:"contents"`
	Tools    []geminiTool    `json:"tools,omitempty"`
}

// generateResponse is the response body from generateContent.
type generateResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

// geminiErrorResponse is the vendor's error envelope.
type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// =============================================================================
// GEMINI CLIENT
// =============================================================================

// GeminiClient talks to the Google Generative Language API.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	timeout    time.Duration
	maxRetries int
	limiter    *rate.Limiter
}

// NewGeminiClient creates a client with the given API key. An empty key is
// allowed at construction; Send then fails with ErrNotConfigured.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    "https://generativelanguage.googleapis.com/v1beta",
		model:      "gemini-2.0-flash",
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *GeminiClient) WithBaseURL(url string) *GeminiClient {
	if url != "" {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
	return c
}

// WithModel sets the model to request.
func (c *GeminiClient) WithModel(model string) *GeminiClient {
	if model != "" {
		c.model = model
	}
	return c
}

// WithTimeout sets the per-call timeout.
func (c *GeminiClient) WithTimeout(timeout time.Duration) *GeminiClient {
	if timeout > 0 {
		c.timeout = timeout
	}
	return c
}

// WithMaxRetries sets the number of retries after a transient failure.
func (c *GeminiClient) WithMaxRetries(n int) *GeminiClient {
	if n >= 0 {
		c.maxRetries = n
	}
	return c
}

// Name returns the provider identifier.
func (c *GeminiClient) Name() string {
	return "gemini"
}

// IsConfigured returns true if the client has an API key.
func (c *GeminiClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Send forwards one user message and returns the reply text. When
// opts.WebSearch is set, the request declares the google_search tool so
// the backend may ground the reply in live web results.
func (c *GeminiClient) Send(ctx context.Context, content string, opts Options) (string, error) {
	if !c.IsConfigured() {
		return "", fmt.Errorf("%w: gemini", ErrNotConfigured)
	}

	reqBody := generateRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: content}},
		}},
	}
	if opts.WebSearch {
		reqBody.Tools = []geminiTool{{GoogleSearch: &struct{}{}}}
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

// doRequest performs a single HTTP request to the generateContent endpoint.
func (c *GeminiClient) doRequest(ctx context.Context, reqBody generateRequest) (string, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "parley/0.1.0")
	// Gemini authenticates with a header key, not a bearer token.
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		return "", &Error{Provider: "gemini", Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return "", &Error{Provider: "gemini", Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.handleErrorResponse(resp.StatusCode, body)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", &Error{Provider: "gemini", Message: fmt.Sprintf("failed to parse response: %v", err)}
	}

	reply := extractText(&genResp)
	if reply == "" {
		return "", fmt.Errorf("%w: gemini", ErrEmptyReply)
	}
	return reply, nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// handleErrorResponse converts HTTP error responses to provider errors.
func (c *GeminiClient) handleErrorResponse(statusCode int, body []byte) error {
	message := string(body)
	var apiErr geminiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrAuthFailed, message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, message)
	default:
		return &Error{Provider: "gemini", Status: statusCode, Message: message}
	}
}
