// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry keeps a local request log of provider calls.
//
// Every completed send is recorded in a SQLite database under
// ~/.parley/ with its provider, duration, and outcome. Nothing leaves
// the machine; the log exists to answer "how slow and how flaky has my
// provider been" via the stats command. Message content is never
// stored.
package telemetry
