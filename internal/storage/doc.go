// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence.
//
// Each conversation is one JSON file under ~/.parley/conversations,
// written atomically so a crash never leaves a torn transcript. The
// store keeps at most MaxConversations files, pruning the oldest.
package storage
