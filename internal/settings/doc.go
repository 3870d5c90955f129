// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings provides the validated, persisted user-preference store.
//
// The store holds a closed set of recognized keys, each with a declared
// type, domain, and default:
//
//   - use_web_search (bool, default false)
//   - theme (one of "auto", "light", "dark"; default "auto")
//
// Access with any other key fails with ErrInvalidKey, and out-of-domain
// values fail with ErrInvalidValue; both indicate a caller bug and are
// never swallowed. I/O problems with the snapshot file, by contrast, are
// logged and degrade the store to in-memory operation.
//
// # Usage
//
// Construct a store explicitly and hand it to the components that need it:
//
//	path, _ := settings.DefaultPath()
//	store := settings.New(path)
//
//	webSearch, _ := store.GetBool(settings.KeyUseWebSearch)
//
//	tok, _ := store.Subscribe(settings.KeyTheme, func(v any) {
//	    applyTheme(v.(string))
//	})
//	defer store.Unsubscribe(tok)
//
// Every successful Set and Reset writes the full snapshot atomically to
// the backing file, so a restart reproduces the identical settings.
package settings
