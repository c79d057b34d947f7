package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, Entry{
		GameID:    "g1",
		EventType: "move.executed",
		Move:      1,
		Side:      "white",
		Variant:   "attack",
		Actor:     0,
		CreatedAt: now,
	}))
	require.NoError(t, store.Record(ctx, Entry{
		GameID:    "g1",
		EventType: "move.rolled_back",
		Move:      2,
		Side:      "black",
		Code:      "STEP_VERIFICATION_FAILED",
		Step:      "hostages",
		CreatedAt: now.Add(time.Second),
	}))
	require.NoError(t, store.Record(ctx, Entry{GameID: "g2", EventType: "move.executed"}))

	entries, err := store.List(ctx, "g1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "move.executed", entries[0].EventType)
	assert.Equal(t, now, entries[0].CreatedAt)
	assert.Equal(t, "{}", entries[0].Payload)
	assert.Equal(t, "hostages", entries[1].Step)
	assert.Equal(t, 2, entries[1].Move)

	limited, err := store.List(ctx, "g1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := store.List(ctx, "missing", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecordValidation(t *testing.T) {
	store := openTempStore(t)

	assert.Error(t, store.Record(context.Background(), Entry{}))
	assert.Error(t, store.Record(context.Background(), Entry{GameID: "g1"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Record(ctx, Entry{GameID: "g1", EventType: "x"}), context.Canceled)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), Entry{GameID: "g1", EventType: "move.executed"}))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()
	entries, err := store.List(context.Background(), "g1", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNilStore(t *testing.T) {
	var s *Store
	assert.NoError(t, s.Close())
	assert.ErrorIs(t, s.Record(context.Background(), Entry{GameID: "g", EventType: "t"}), ErrNotConfigured)
}
