// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversation transcripts to disk.
//
// Two formats are supported: Markdown for reading and JSON for
// machine consumption. Files land in ~/.parley/exports by default,
// named after the transcript title and export time.
package export
