// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := OpenPath(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordAndRecent(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, action := range []string{ActionAccept, ActionCancel, ActionDecline} {
		require.NoError(t, l.Record(ctx, Entry{
			RequestID:  "req-" + action,
			Action:     action,
			BloodGroup: "O+",
			Hospital:   "Santa Maria",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := l.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	assert.Equal(t, ActionDecline, entries[0].Action)
	assert.Equal(t, ActionAccept, entries[2].Action)
	assert.Equal(t, "Santa Maria", entries[0].Hospital)
}

func TestRecent_Limit(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Record(ctx, Entry{RequestID: "r", Action: ActionAccept}))
	}
	entries, err := l.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRecent_Empty(t *testing.T) {
	l := openTestLog(t)
	entries, err := l.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecord_DefaultsTimestamp(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, Entry{RequestID: "r1", Action: ActionCancel}))
	entries, err := l.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.WithinDuration(t, time.Now().UTC(), entries[0].CreatedAt, time.Minute)
}
