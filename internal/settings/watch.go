// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the snapshot when it changes on disk, so settings edited
// from another process (or by hand) take effect without a restart.
// Subscribers are notified for keys whose value actually changed, with the
// same no-op suppression as Set. Watch blocks until ctx is canceled.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return fmt.Errorf("settings: in-memory store has nothing to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("settings: failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: atomic writes replace the file
	// by rename, which would drop a watch on the file itself.
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("settings: failed to create snapshot directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("settings: failed to watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != s.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			s.reloadFromDisk()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("settings: watch error: %v", err)
		}
	}
}

// reloadFromDisk re-reads the snapshot and applies any changed values,
// firing per-key notifications outside the lock.
func (s *Store) reloadFromDisk() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		// The snapshot may be mid-replace; the next event will catch up.
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("settings: ignoring corrupt snapshot update: %v", err)
		return
	}

	type pending struct {
		fn    func(any)
		value any
	}
	var notify []pending

	s.mu.Lock()
	changed := s.applySnapshotLocked(snap)
	for key, value := range changed {
		for _, fn := range s.subscribersLocked(key) {
			notify = append(notify, pending{fn: fn, value: value})
		}
	}
	s.mu.Unlock()

	for _, p := range notify {
		p.fn(p.value)
	}
}
