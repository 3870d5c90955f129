// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive chat view for the TUI.
//
// The view is a standard Bubble Tea model: a viewport holds the
// transcript, a textinput takes the next message, and a spinner shows
// while a send is in flight. Assistant replies render through glamour.
// A settings overlay (ctrl+s) edits the web-search toggle and theme;
// changes apply to the running session immediately.
package chat
