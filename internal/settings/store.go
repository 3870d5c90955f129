// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings provides the validated, persisted user-preference store.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jeranaias/parley/internal/util"
)

// =============================================================================
// KEYS AND DEFAULTS
// =============================================================================

// Recognized settings keys. Any other key is rejected at the boundary.
const (
	// KeyUseWebSearch enables the provider's live web-search capability.
	KeyUseWebSearch = "use_web_search"

	// KeyTheme selects the UI theme: "auto", "light", or "dark".
	KeyTheme = "theme"
)

// Theme values for KeyTheme.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Error variables for settings validation failures. Both indicate a
// programming error in the caller and are never swallowed.
var (
	// ErrInvalidKey is returned for access with an unrecognized key.
	ErrInvalidKey = errors.New("unrecognized settings key")

	// ErrInvalidValue is returned when a value is outside a key's
	// declared domain. Out-of-domain values are rejected, never
	// silently coerced to a default.
	ErrInvalidValue = errors.New("invalid settings value")
)

// keySpec declares the type, default, and domain of one recognized key.
type keySpec struct {
	defaultValue any
	validate     func(any) (any, error)
}

// keySpecs is the closed set of recognized keys.
var keySpecs = map[string]keySpec{
	KeyUseWebSearch: {
		defaultValue: false,
		validate: func(v any) (any, error) {
			b, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: %s wants bool, got %T", ErrInvalidValue, KeyUseWebSearch, v)
			}
			return b, nil
		},
	},
	KeyTheme: {
		defaultValue: ThemeAuto,
		validate: func(v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s wants string, got %T", ErrInvalidValue, KeyTheme, v)
			}
			s = strings.ToLower(strings.TrimSpace(s))
			switch s {
			case ThemeAuto, ThemeLight, ThemeDark:
				return s, nil
			}
			return nil, fmt.Errorf("%w: theme %q, must be one of: auto, light, dark", ErrInvalidValue, s)
		},
	},
}

// Keys returns all recognized settings keys in stable order.
func Keys() []string {
	return []string{KeyUseWebSearch, KeyTheme}
}

// defaults returns a fresh map of all keys at their default values.
func defaults() map[string]any {
	vals := make(map[string]any, len(keySpecs))
	for key, spec := range keySpecs {
		vals[key] = spec.defaultValue
	}
	return vals
}

// =============================================================================
// STORE
// =============================================================================

// Token identifies a subscription for later removal.
type Token struct {
	key string
	id  int
}

// Store is the single source of truth for user-configurable options. It is
// explicitly constructed and passed to whichever components need it; there
// is no package-level instance. All methods are safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	values map[string]any

	// path is the snapshot file; empty means in-memory only.
	path string

	subs   map[string]map[int]func(any)
	nextID int
}

// DefaultPath returns the default settings snapshot location,
// ~/.parley/settings.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".parley", "settings.json"), nil
}

// New creates a store backed by the snapshot file at path. If a snapshot
// exists its values override the compiled-in defaults. A missing or
// unreadable snapshot is not an error: the store starts from defaults and
// continues in-memory, logging the problem.
func New(path string) *Store {
	s := &Store{
		values: defaults(),
		path:   path,
		subs:   make(map[string]map[int]func(any)),
	}
	if path != "" {
		s.loadSnapshot()
	}
	return s
}

// NewInMemory creates a store with no durable persistence. Used by tests
// and by one-shot CLI invocations that must not touch the user's snapshot.
func NewInMemory() *Store {
	return New("")
}

// =============================================================================
// GET / SET
// =============================================================================

// Get returns the current value for a recognized key.
func (s *Store) Get(key string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return v, nil
}

// GetBool returns the value of a boolean key.
func (s *Store) GetBool(key string) (bool, error) {
	v, err := s.Get(key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s is not a bool key", ErrInvalidValue, key)
	}
	return b, nil
}

// GetString returns the value of a string key.
func (s *Store) GetString(key string) (string, error) {
	v, err := s.Get(key)
	if err != nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a string key", ErrInvalidValue, key)
	}
	return str, nil
}

// Set validates and updates the value for a recognized key. Setting a key
// to its current value is a no-op: no notification fires and nothing is
// written to disk. On an actual change, subscribers of that key (and only
// that key) are notified and the full snapshot is persisted.
func (s *Store) Set(key string, value any) error {
	spec, ok := keySpecs[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	normalized, err := spec.validate(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.values[key] == normalized {
		s.mu.Unlock()
		return nil
	}
	s.values[key] = normalized
	callbacks := s.subscribersLocked(key)
	s.persistLocked()
	s.mu.Unlock()

	// Callbacks run outside the lock so a subscriber may call back into
	// the store.
	for _, fn := range callbacks {
		fn(normalized)
	}
	return nil
}

// SetFromString parses raw according to the key's declared type and sets
// it. Used by the CLI config command, where all input arrives as text.
func (s *Store) SetFromString(key, raw string) error {
	spec, ok := keySpecs[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	switch spec.defaultValue.(type) {
	case bool:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "1", "yes", "on":
			return s.Set(key, true)
		case "false", "0", "no", "off":
			return s.Set(key, false)
		default:
			return fmt.Errorf("%w: %s wants a boolean, got %q", ErrInvalidValue, key, raw)
		}
	case string:
		return s.Set(key, raw)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe registers fn to be invoked whenever the given key's value
// actually changes. Listeners on other keys are never invoked. The
// returned token removes the subscription via Unsubscribe.
func (s *Store) Subscribe(key string, fn func(newValue any)) (Token, error) {
	if _, ok := keySpecs[key]; !ok {
		return Token{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	if s.subs[key] == nil {
		s.subs[key] = make(map[int]func(any))
	}
	s.subs[key][id] = fn

	return Token{key: key, id: id}, nil
}

// Unsubscribe removes a previously registered subscription. Unknown or
// already-removed tokens are ignored.
func (s *Store) Unsubscribe(tok Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.subs[tok.key]; ok {
		delete(m, tok.id)
	}
}

// subscribersLocked snapshots the callbacks for key. Caller holds s.mu.
func (s *Store) subscribersLocked(key string) []func(any) {
	m := s.subs[key]
	if len(m) == 0 {
		return nil
	}
	out := make([]func(any), 0, len(m))
	for _, fn := range m {
		out = append(out, fn)
	}
	return out
}

// =============================================================================
// RESET
// =============================================================================

// Reset restores every key to its default value and deletes the persisted
// snapshot. It always succeeds; subscribers are notified only for keys
// whose value actually changed.
func (s *Store) Reset() {
	type pending struct {
		fn    func(any)
		value any
	}
	var notify []pending

	s.mu.Lock()
	for key, spec := range keySpecs {
		if s.values[key] == spec.defaultValue {
			continue
		}
		s.values[key] = spec.defaultValue
		for _, fn := range s.subscribersLocked(key) {
			notify = append(notify, pending{fn: fn, value: spec.defaultValue})
		}
	}
	if s.path != "" {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			log.Printf("settings: failed to remove snapshot: %v", err)
		}
	}
	s.mu.Unlock()

	for _, p := range notify {
		p.fn(p.value)
	}
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// snapshot is the serialized settings object. All recognized keys are
// always present so the snapshot round-trips exactly.
type snapshot struct {
	UseWebSearch bool   `json:"use_web_search"`
	Theme        string `json:"theme"`
}

// persistLocked serializes the full settings object to the snapshot file.
// Storage failures are logged and the store continues in-memory; they are
// never surfaced to the caller. Caller holds s.mu.
func (s *Store) persistLocked() {
	if s.path == "" {
		return
	}

	snap := snapshot{
		UseWebSearch: s.values[KeyUseWebSearch].(bool),
		Theme:        s.values[KeyTheme].(string),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		log.Printf("settings: failed to encode snapshot: %v", err)
		return
	}
	if err := util.AtomicWriteFile(s.path, data, 0o600); err != nil {
		log.Printf("settings: failed to write snapshot: %v", err)
	}
}

// loadSnapshot restores persisted values over the defaults. Invalid
// persisted values are dropped in favor of the default rather than
// poisoning the store.
func (s *Store) loadSnapshot() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("settings: failed to read snapshot: %v", err)
		}
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("settings: corrupt snapshot, using defaults: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applySnapshotLocked(snap)
}

// applySnapshotLocked validates and applies snapshot values, returning the
// set of keys whose in-memory value changed. Caller holds s.mu.
func (s *Store) applySnapshotLocked(snap snapshot) map[string]any {
	changed := make(map[string]any)

	apply := func(key string, raw any) {
		normalized, err := keySpecs[key].validate(raw)
		if err != nil {
			log.Printf("settings: dropping persisted %s: %v", key, err)
			return
		}
		if s.values[key] != normalized {
			s.values[key] = normalized
			changed[key] = normalized
		}
	}

	apply(KeyUseWebSearch, snap.UseWebSearch)
	apply(KeyTheme, snap.Theme)
	return changed
}

// Path returns the snapshot file path, or empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// All returns a copy of the current key/value map, for display.
func (s *Store) All() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
