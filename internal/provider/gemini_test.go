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

func geminiReply(texts ...string) string {
	parts := make([]geminiPart, len(texts))
	for i, t := range texts {
		parts[i] = geminiPart{Text: t}
	}
	body, _ := json.Marshal(generateResponse{
		Candidates: []struct {
			Content      geminiContent `json:"content"`
			FinishReason string        `json:"finishReason"`
		}{
			{Content: geminiContent{Role: "model", Parts: parts}, FinishReason: "STOP"},
		},
	})
	return string(body)
}

func TestGeminiSend(t *testing.T) {
	var gotBody generateRequest
	var gotKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(geminiReply("hello ", "from gemini")))
	}))
	defer srv.Close()

	client := NewGeminiClient("g-test").WithBaseURL(srv.URL)
	reply, err := client.Send(context.Background(), "hi", Options{})
	require.NoError(t, err)
	assert.Equal(t, "hello from gemini", reply, "multi-part candidates are concatenated")

	assert.Equal(t, "g-test", gotKey)
	require.Len(t, gotBody.Contents, 1)
	assert.Equal(t, "user", gotBody.Contents[0].Role)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "hi", gotBody.Contents[0].Parts[0].Text)
	assert.Empty(t, gotBody.Tools, "no tools unless web search is on")
}

func TestGeminiSendWebSearch(t *testing.T) {
	var rawBody map[string]json.RawMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rawBody))
		w.Write([]byte(geminiReply("grounded answer")))
	}))
	defer srv.Close()

	client := NewGeminiClient("g-test").WithBaseURL(srv.URL)
	_, err := client.Send(context.Background(), "latest news", Options{WebSearch: true})
	require.NoError(t, err)

	tools, present := rawBody["tools"]
	require.True(t, present, "tools must be declared when the toggle is on")
	assert.Contains(t, string(tools), "google_search")
}

func TestGeminiSendNotConfigured(t *testing.T) {
	client := NewGeminiClient("  ")
	_, err := client.Send(context.Background(), "hello", Options{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGeminiSendAuthFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"key revoked","status":"PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()

	client := NewGeminiClient("g-bad").WithBaseURL(srv.URL)
	_, err := client.Send(context.Background(), "hello", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthFailed)
	assert.Contains(t, err.Error(), "key revoked")
}

func TestGeminiSendRetriesServerError(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
			return
		}
		w.Write([]byte(geminiReply("recovered")))
	}))
	defer srv.Close()

	client := NewGeminiClient("g-test").WithBaseURL(srv.URL).WithMaxRetries(1)
	reply, err := client.Send(context.Background(), "hello", Options{})
	require.NoError(t, err)
	assert.Equal(t, "recovered", reply)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGeminiSendEmptyReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient("g-test").WithBaseURL(srv.URL)
	_, err := client.Send(context.Background(), "hello", Options{})
	assert.ErrorIs(t, err, ErrEmptyReply)
}
