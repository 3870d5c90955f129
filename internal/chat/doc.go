// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat coordinates the conversation lifecycle.
//
// The Controller sits between the UI and the provider backend. It owns
// the transcript, enforces single-flight sending (one provider call at
// a time), rejects empty input, and converts backend failures into
// system messages that preserve the user's original text.
//
// The web-search toggle is read from the settings store at send time,
// so flipping it mid-session affects the next send without restart.
package chat
