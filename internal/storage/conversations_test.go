// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/parley/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStoreWithDir(t.TempDir())
	require.NoError(t, err)
	return s
}

func buildConversation(first string) *model.Conversation {
	conv := model.NewConversation()
	conv.AppendUser(first)
	conv.AppendAssistant("reply to: " + first)
	return conv
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	conv := buildConversation("hello world")
	require.NoError(t, s.Save(conv))

	loaded, err := s.Load(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, loaded.ID)
	assert.Equal(t, conv.GetTitle(), loaded.GetTitle())

	messages := loaded.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, model.RoleUser, messages[0].Role)
	assert.Equal(t, "hello world", messages[0].Content)
	assert.Equal(t, model.RoleAssistant, messages[1].Role)
}

func TestSaveSkipsEmptyConversation(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(model.NewConversation()))
	require.NoError(t, s.Save(nil))

	metas, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, metas)
}

func TestLoadMissingConversation(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load("conv_nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	s := newTestStore(t)

	older := buildConversation("first")
	older.UpdatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, s.Save(older))

	newer := buildConversation("second")
	require.NoError(t, s.Save(newer))

	metas, err := s.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, newer.ID, metas[0].ID)
	assert.Equal(t, older.ID, metas[1].ID)
	assert.Equal(t, 2, metas[0].MessageCount)
}

func TestLatest(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Latest()
	assert.ErrorIs(t, err, ErrNotFound)

	older := buildConversation("old")
	older.UpdatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, s.Save(older))
	newest := buildConversation("new")
	require.NoError(t, s.Save(newest))

	loaded, err := s.Latest()
	require.NoError(t, err)
	assert.Equal(t, newest.ID, loaded.ID)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	conv := buildConversation("bye")
	require.NoError(t, s.Save(conv))

	require.NoError(t, s.Delete(conv.ID))
	_, err := s.Load(conv.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(conv.ID), ErrNotFound)
}

func TestEnforceLimitPrunesOldest(t *testing.T) {
	s := newTestStore(t)
	s.MaxConversations = 2

	for i, when := range []time.Duration{-3 * time.Hour, -2 * time.Hour, -time.Hour} {
		conv := buildConversation(string(rune('a' + i)))
		conv.UpdatedAt = time.Now().Add(when)
		require.NoError(t, s.Save(conv))
	}

	metas, err := s.List()
	require.NoError(t, err)
	assert.Len(t, metas, 2)
}

func TestListSkipsCorruptFiles(t *testing.T) {
	s := newTestStore(t)
	conv := buildConversation("valid")
	require.NoError(t, s.Save(conv))
	require.NoError(t, os.WriteFile(filepath.Join(s.BaseDir, "junk.json"), []byte("{not json"), 0o644))

	metas, err := s.List()
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, conv.ID, metas[0].ID)
}
