package history_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moxy-lang/moxy/internal/history"
)

func openLog(t *testing.T) *history.Log {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	log, err := history.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	return log
}

func TestHistoryRecordAndRecentOrdering(t *testing.T) {
	log := openLog(t)

	require.NoError(t, log.Record("a.mxy", nil, 120))
	require.NoError(t, log.Record("b.mxy", errors.New("lex error at 1:5"), 0))
	require.NoError(t, log.Record("c.mxy", nil, 340))

	entries, err := log.Recent(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "c.mxy", entries[0].Path)
	assert.True(t, entries[0].Success)
	assert.Equal(t, 340, entries[0].Bytes)

	assert.Equal(t, "b.mxy", entries[1].Path)
	assert.False(t, entries[1].Success)
	assert.Equal(t, "lex error at 1:5", entries[1].Error)
}

func TestHistoryOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	first, err := history.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Record("x.mxy", nil, 1))
	require.NoError(t, first.Close())

	second, err := history.Open(path)
	require.NoError(t, err)
	defer second.Close()

	entries, err := second.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "x.mxy", entries[0].Path)
}

func TestHistoryRecentOnEmptyLog(t *testing.T) {
	log := openLog(t)
	entries, err := log.Recent(5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
