// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "telemetry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordAndRecent(t *testing.T) {
	l := openTestLog(t)

	l.Record("openai", 120*time.Millisecond, nil)
	l.Record("openai", 80*time.Millisecond, errors.New("boom"))
	l.Record("gemini", 200*time.Millisecond, nil)

	entries, err := l.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	assert.Equal(t, "gemini", entries[0].Provider)
	assert.True(t, entries[0].OK)
	assert.Equal(t, 200*time.Millisecond, entries[0].Duration)

	assert.Equal(t, "openai", entries[1].Provider)
	assert.False(t, entries[1].OK)
	assert.Equal(t, "error", entries[1].ErrorKind)
}

func TestSummarize(t *testing.T) {
	l := openTestLog(t)

	l.Record("openai", 100*time.Millisecond, nil)
	l.Record("openai", 300*time.Millisecond, nil)
	l.Record("openai", 50*time.Millisecond, errors.New("down"))
	l.Record("gemini", 400*time.Millisecond, nil)

	summaries, err := l.Summarize(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Ordered by provider name.
	gemini, openai := summaries[0], summaries[1]
	assert.Equal(t, "gemini", gemini.Provider)
	assert.Equal(t, 1, gemini.Requests)
	assert.Equal(t, 0, gemini.Failures)

	assert.Equal(t, "openai", openai.Provider)
	assert.Equal(t, 3, openai.Requests)
	assert.Equal(t, 1, openai.Failures)
	assert.Equal(t, 450*time.Millisecond, openai.TotalDuration)
	assert.Equal(t, 150*time.Millisecond, openai.AvgDuration())
}

func TestSummarizeRespectsSince(t *testing.T) {
	l := openTestLog(t)
	l.Record("openai", 10*time.Millisecond, nil)

	summaries, err := l.Summarize(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, summaries, "entries before the cutoff are excluded")
}

func TestPrune(t *testing.T) {
	l := openTestLog(t)
	l.Record("openai", 10*time.Millisecond, nil)
	l.Record("gemini", 10*time.Millisecond, nil)

	n, err := l.Prune(time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	entries, err := l.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", errorKind(nil))
	assert.Equal(t, "timeout", errorKind(context.DeadlineExceeded))
	assert.Equal(t, "canceled", errorKind(context.Canceled))
	assert.Equal(t, "error", errorKind(errors.New("misc")))
}

func TestClosedLog(t *testing.T) {
	l := openTestLog(t)
	require.NoError(t, l.Close())

	_, err := l.Recent(1)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = l.Summarize(time.Time{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRecordDuringClose(t *testing.T) {
	// A send goroutine may still be recording when the main goroutine
	// closes on exit. The handle is mutex-guarded, so late records land
	// on ErrClosed instead of racing on the freed handle.
	l := openTestLog(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			l.Record("openai", time.Millisecond, nil)
		}
	}()

	require.NoError(t, l.Close())
	<-done

	assert.ErrorIs(t, l.record(Entry{Provider: "openai"}), ErrClosed)
	assert.NoError(t, l.Close(), "closing twice is harmless")
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "telemetry.db")
	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	l.Record("openai", time.Millisecond, nil)
	entries, err := l.Recent(1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAvgDurationZeroRequests(t *testing.T) {
	assert.Equal(t, time.Duration(0), Summary{}.AvgDuration())
}
