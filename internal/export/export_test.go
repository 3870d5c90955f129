// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/parley/internal/model"
)

func sampleConversation() *model.Conversation {
	conv := model.NewConversation()
	conv.AppendUser("What is a goroutine?")
	conv.AppendAssistant("A lightweight thread managed by the Go runtime.")
	conv.AppendSystem("Message could not be delivered (rate limited). Original message: and a channel?")
	return conv
}

func TestMarkdownExport(t *testing.T) {
	exporter := NewMarkdownExporter(DefaultOptions())
	content, err := exporter.Export(sampleConversation())
	require.NoError(t, err)

	out := string(content)
	assert.Contains(t, out, "# What is a goroutine?")
	assert.Contains(t, out, "## You")
	assert.Contains(t, out, "## Assistant")
	assert.Contains(t, out, "## System")
	assert.Contains(t, out, "lightweight thread")
	assert.Contains(t, out, "**Messages**: 3")
}

func TestMarkdownExportWithoutMetadata(t *testing.T) {
	opts := &Options{IncludeMetadata: false, IncludeTimestamps: false}
	content, err := NewMarkdownExporter(opts).Export(sampleConversation())
	require.NoError(t, err)

	out := string(content)
	assert.NotContains(t, out, "**Messages**")
	assert.Contains(t, out, "## You\n\n", "no timestamp suffix on headings")
}

func TestMarkdownExportEmptyConversation(t *testing.T) {
	_, err := NewMarkdownExporter(nil).Export(model.NewConversation())
	assert.Error(t, err)

	_, err = NewMarkdownExporter(nil).Export(nil)
	assert.Error(t, err)
}

func TestJSONExportRoundTrip(t *testing.T) {
	conv := sampleConversation()
	content, err := NewJSONExporter().Export(conv)
	require.NoError(t, err)

	var decoded jsonTranscript
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, conv.ID, decoded.ID)
	assert.Equal(t, conv.GetTitle(), decoded.Title)
	require.Len(t, decoded.Messages, 3)
	assert.Equal(t, "user", decoded.Messages[0].Role)
	assert.Equal(t, "assistant", decoded.Messages[1].Role)
	assert.Equal(t, "system", decoded.Messages[2].Role)
}

func TestToFileWritesTimestampedFile(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.OutputDir = dir

	path, err := Markdown(sampleConversation(), opts)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "conversation_"))
	assert.True(t, strings.HasSuffix(path, ".md"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "goroutine")
}

func TestToFileCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	opts := DefaultOptions()
	opts.OutputDir = dir

	path, err := JSON(sampleConversation(), opts)
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a-b_c", sanitizeFilename(`a/b c`))
	assert.Equal(t, "what_", sanitizeFilename("what?"))
	assert.Equal(t, "conversation", sanitizeFilename(""))

	long := strings.Repeat("x", 80)
	assert.Len(t, sanitizeFilename(long), 50)
}

func TestExporterMetadata(t *testing.T) {
	assert.Equal(t, ".md", NewMarkdownExporter(nil).FileExtension())
	assert.Equal(t, "text/markdown", NewMarkdownExporter(nil).MimeType())
	assert.Equal(t, ".json", NewJSONExporter().FileExtension())
	assert.Equal(t, "application/json", NewJSONExporter().MimeType())
}
