package spool

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "spool.db"), "audit")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEnqueueAndSize(t *testing.T) {
	store := openTestStore(t)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Zero(t, size)

	require.NoError(t, store.Enqueue(Entry{
		ID:     "e-1",
		UserID: "u-1",
		Action: "ACCOUNT_DELETION_COMPLETED",
		Data:   json.RawMessage(`{"user_id":"u-1"}`),
	}))

	size, err = store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestEnqueueAssignsDefaults(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Enqueue(Entry{Data: json.RawMessage(`{}`)}))

	entries, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)
	assert.Equal(t, 3, entries[0].Priority)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestGetBatchHonorsPriorityOrder(t *testing.T) {
	store := openTestStore(t)

	now := time.Now()
	require.NoError(t, store.Enqueue(Entry{ID: "low", Priority: 5, Timestamp: now, Data: json.RawMessage(`{}`)}))
	require.NoError(t, store.Enqueue(Entry{ID: "high", Priority: 1, Timestamp: now, Data: json.RawMessage(`{}`)}))
	require.NoError(t, store.Enqueue(Entry{ID: "mid", Priority: 3, Timestamp: now, Data: json.RawMessage(`{}`)}))

	entries, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "high", entries[0].ID)
	assert.Equal(t, "mid", entries[1].ID)
	assert.Equal(t, "low", entries[2].ID)
}

func TestGetBatchLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Enqueue(Entry{Data: json.RawMessage(`{}`)}))
	}

	entries, err := store.GetBatch(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// A read never consumes entries.
	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 5, size)
}

func TestRemove(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Enqueue(Entry{ID: "e-1", Data: json.RawMessage(`{}`)}))
	require.NoError(t, store.Enqueue(Entry{ID: "e-2", Data: json.RawMessage(`{}`)}))

	entries, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NoError(t, store.Remove(entries[0]))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestRemoveByIDWithoutBucketKey(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Enqueue(Entry{ID: "e-1", Data: json.RawMessage(`{}`)}))
	require.NoError(t, store.Remove(Entry{ID: "e-1"}))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestRequeueBumpsTimestamp(t *testing.T) {
	store := openTestStore(t)

	old := time.Now().Add(-time.Hour)
	require.NoError(t, store.Enqueue(Entry{ID: "e-1", Timestamp: old, Retries: 1, Data: json.RawMessage(`{}`)}))

	entries, err := store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, store.Remove(entries[0]))
	entries[0].Retries++
	require.NoError(t, store.Requeue(entries[0]))

	requeued, err := store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, requeued, 1)
	assert.Equal(t, "e-1", requeued[0].ID)
	assert.Equal(t, 2, requeued[0].Retries)
	assert.True(t, requeued[0].Timestamp.After(old))
}

func TestCleanupDropsStaleEntries(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Enqueue(Entry{ID: "stale", Timestamp: time.Now().Add(-48 * time.Hour), Data: json.RawMessage(`{}`)}))
	require.NoError(t, store.Enqueue(Entry{ID: "fresh", Data: json.RawMessage(`{}`)}))

	require.NoError(t, store.Cleanup(time.Now().Add(-24*time.Hour)))

	entries, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fresh", entries[0].ID)
}

func TestEntriesSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spool.db")

	store, err := Open(path, "audit")
	require.NoError(t, err)
	require.NoError(t, store.Enqueue(Entry{ID: "e-1", Data: json.RawMessage(`{"k":"v"}`)}))
	require.NoError(t, store.Close())

	reopened, err := Open(path, "audit")
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e-1", entries[0].ID)
	assert.JSONEq(t, `{"k":"v"}`, string(entries[0].Data))
}
