// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Role: message sender (user, assistant, system)
//   - Message: one immutable conversation entry
//   - Conversation: an append-only, in-memory message sequence
//
// Messages carry opaque text content; assistant replies may contain
// markdown, which the UI layer renders. Conversations are never persisted:
// history lives for the process lifetime only.
package model
