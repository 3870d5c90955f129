// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/util"
)

// ErrNotFound indicates no conversation exists for the given ID.
var ErrNotFound = errors.New("conversation not found")

// =============================================================================
// WIRE TYPES
// =============================================================================

// storedConversation is the on-disk shape of a conversation.
type storedConversation struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Messages  []storedMessage `json:"messages"`
}

type storedMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Meta describes a stored conversation for listings.
type Meta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// Store persists conversations as JSON files, one per conversation.
type Store struct {
	// BaseDir is the storage directory. Default: ~/.parley/conversations.
	BaseDir string

	// MaxConversations caps stored conversations; oldest are pruned
	// first. Zero means unlimited.
	MaxConversations int
}

// NewStore creates a store in the default directory.
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewStoreWithDir(filepath.Join(home, ".parley", "conversations"))
}

// NewStoreWithDir creates a store in a custom directory.
func NewStoreWithDir(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &Store{
		BaseDir:          baseDir,
		MaxConversations: 100,
	}, nil
}

func (s *Store) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}

// =============================================================================
// SAVE / LOAD
// =============================================================================

// Save persists a conversation. Empty conversations are skipped.
func (s *Store) Save(conv *model.Conversation) error {
	if conv == nil || conv.IsEmpty() {
		return nil
	}

	messages := conv.Messages()
	stored := storedConversation{
		ID:        conv.ID,
		Title:     conv.GetTitle(),
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
		Messages:  make([]storedMessage, 0, len(messages)),
	}
	for _, msg := range messages {
		stored.Messages = append(stored.Messages, storedMessage{
			ID:        msg.ID,
			Role:      msg.Role.String(),
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}

	// Atomic write with fsync prevents a torn file on crash.
	if err := util.AtomicWriteFile(s.filePath(conv.ID), data, 0o644); err != nil {
		return err
	}

	if s.MaxConversations > 0 {
		s.enforceLimit()
	}
	return nil
}

// Load reads one conversation by ID.
func (s *Store) Load(id string) (*model.Conversation, error) {
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	var stored storedConversation
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("corrupt conversation %s: %w", id, err)
	}

	messages := make([]*model.Message, 0, len(stored.Messages))
	for _, m := range stored.Messages {
		messages = append(messages, &model.Message{
			ID:        m.ID,
			Role:      model.Role(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}
	return model.RestoreConversation(stored.ID, stored.Title, stored.CreatedAt, stored.UpdatedAt, messages), nil
}

// Latest returns the most recently updated conversation.
func (s *Store) Latest() (*model.Conversation, error) {
	metas, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(metas) == 0 {
		return nil, ErrNotFound
	}
	return s.Load(metas[0].ID)
}

// List returns metadata for all stored conversations, newest first.
func (s *Store) List() ([]Meta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		return nil, err
	}

	var metas []Meta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.BaseDir, entry.Name()))
		if err != nil {
			continue
		}
		var stored storedConversation
		if err := json.Unmarshal(data, &stored); err != nil {
			// Unreadable files are skipped, not fatal.
			continue
		}
		metas = append(metas, Meta{
			ID:           stored.ID,
			Title:        stored.Title,
			UpdatedAt:    stored.UpdatedAt,
			MessageCount: len(stored.Messages),
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Delete removes one conversation by ID.
func (s *Store) Delete(id string) error {
	err := os.Remove(s.filePath(id))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

// enforceLimit prunes the oldest conversations past the cap.
func (s *Store) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxConversations {
		return
	}
	for _, meta := range metas[s.MaxConversations:] {
		os.Remove(s.filePath(meta.ID))
	}
}
