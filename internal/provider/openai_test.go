// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openaiReply builds a minimal chat completions success body.
func openaiReply(text string) string {
	return `{"choices":[{"message":{"role":"assistant","content":` +
		mustJSON(text) + `},"finish_reason":"stop"}]}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestOpenAISend(t *testing.T) {
	var gotBody chatRequest
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(openaiReply("hi there")))
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-test").WithBaseURL(srv.URL).WithModel("gpt-4o-mini")
	reply, err := client.Send(context.Background(), "hello", Options{})
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody.Model)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "user", gotBody.Messages[0].Role)
	assert.Equal(t, "hello", gotBody.Messages[0].Content)
	assert.Nil(t, gotBody.WebSearchOptions, "web search must be off by default")
}

func TestOpenAISendWebSearch(t *testing.T) {
	var rawBody map[string]json.RawMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rawBody))
		w.Write([]byte(openaiReply("searched")))
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-test").WithBaseURL(srv.URL)
	_, err := client.Send(context.Background(), "what's new", Options{WebSearch: true})
	require.NoError(t, err)

	_, present := rawBody["web_search_options"]
	assert.True(t, present, "web_search_options must be sent when the toggle is on")
}

func TestOpenAISendNotConfigured(t *testing.T) {
	client := NewOpenAIClient("")
	_, err := client.Send(context.Background(), "hello", Options{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOpenAISendAuthFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"invalid_api_key","message":"bad key"}}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-bad").WithBaseURL(srv.URL)
	_, err := client.Send(context.Background(), "hello", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthFailed)
	assert.Contains(t, err.Error(), "bad key")
}

func TestOpenAISendRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"slow down"}}`))
			return
		}
		w.Write([]byte(openaiReply("second try")))
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-test").WithBaseURL(srv.URL).WithMaxRetries(1)
	reply, err := client.Send(context.Background(), "hello", Options{})
	require.NoError(t, err)
	assert.Equal(t, "second try", reply)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenAISendServerErrorExhaustsRetries(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-test").WithBaseURL(srv.URL).WithMaxRetries(1)
	_, err := client.Send(context.Background(), "hello", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(2), calls.Load(), "one attempt plus one retry")
}

func TestOpenAISendBadRequestNotRetried(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"unknown model"}}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-test").WithBaseURL(srv.URL).WithMaxRetries(3)
	_, err := client.Send(context.Background(), "hello", Options{})
	require.Error(t, err)

	var pErr *Error
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, http.StatusBadRequest, pErr.Status)
	assert.Equal(t, int32(1), calls.Load(), "client errors must not be retried")
}

func TestOpenAISendEmptyReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-test").WithBaseURL(srv.URL)
	_, err := client.Send(context.Background(), "hello", Options{})
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestOpenAISendContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(openaiReply("never seen")))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewOpenAIClient("sk-test").WithBaseURL(srv.URL)
	_, err := client.Send(ctx, "hello", Options{})
	assert.Error(t, err)
}
