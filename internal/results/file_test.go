package results

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveAndGet(t *testing.T) {
	store := NewFileStore(t.TempDir())
	rec := createTestRecord()

	require.NoError(t, store.Save(context.Background(), rec))

	got, err := store.Get(context.Background(), rec.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, rec.ApplicationID, got.ApplicationID)
	assert.Equal(t, rec.Outcome, got.Outcome)
	assert.JSONEq(t, string(rec.Result), string(got.Result))
}

func TestFileStore_GetNotFound(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := store.Get(context.Background(), "LN-missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RESULT_NOT_FOUND")
}

func TestFileStore_ListNewestFirst(t *testing.T) {
	store := NewFileStore(t.TempDir())

	older := createTestRecord()
	older.ApplicationID = "LN-older"
	older.CompletedAt = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	newer := createTestRecord()
	newer.ApplicationID = "LN-newer"
	newer.CompletedAt = time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(context.Background(), older))
	require.NoError(t, store.Save(context.Background(), newer))

	summaries, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "LN-newer", summaries[0].ApplicationID)
	assert.Equal(t, "LN-older", summaries[1].ApplicationID)
}

func TestFileStore_ListRespectsLimit(t *testing.T) {
	store := NewFileStore(t.TempDir())
	for _, id := range []string{"LN-a", "LN-b", "LN-c"} {
		rec := createTestRecord()
		rec.ApplicationID = id
		require.NoError(t, store.Save(context.Background(), rec))
	}

	summaries, err := store.List(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
}

func TestFileStore_ListEmptyDirectory(t *testing.T) {
	store := NewFileStore(t.TempDir() + "/missing")

	summaries, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
