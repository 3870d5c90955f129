// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI command
// handlers: ask, config, stats, version, and help. The default command
// (no arguments) starts the chat TUI from main.
package cli
