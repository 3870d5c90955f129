// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider abstracts the hosted chat-completion backends.
//
// A Provider takes one user message and returns one plain-text reply.
// Two implementations exist: OpenAIClient (chat completions) and
// GeminiClient (generateContent). Both share the same robustness
// behavior: a per-call timeout, client-side request pacing, and a
// bounded retry with exponential backoff on rate limits and 5xx
// responses.
//
// The optional web-search capability is expressed through Options; a
// client maps it to its vendor's tool declaration. Callers never see
// vendor wire formats, only the reply text or an error.
//
// # Usage
//
//	p, err := provider.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reply, err := p.Send(ctx, "hello", provider.Options{WebSearch: true})
package provider
