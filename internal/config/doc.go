// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides startup configuration loading for parley.
//
// This covers construction-time concerns only: which provider backend is
// active, its API credentials and model, and request robustness knobs.
// Runtime user preferences (web search toggle, theme) live in the
// settings package instead and are mutable while the app runs.
//
// # Configuration Precedence
//
//   - Environment variables (PARLEY_*, OPENAI_API_KEY, GEMINI_API_KEY)
//   - ~/.parley/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Load validates the result; in particular, a missing API key for the
// selected provider fails here at startup rather than on the first send.
package config
