// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the TUI.
//
// A Theme is built from the user's theme preference: light and dark
// force a palette, auto detects the terminal background via termenv.
// Rebuilding the theme on a preference change restyles the whole UI
// without restart.
package styles
