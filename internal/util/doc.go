// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across the parley application.
//
// # Key Functions
//
// String utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - PadWidth: display-width aware padding
//
// File operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
package util
