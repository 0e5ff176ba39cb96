package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStoreAt(filepath.Join(t.TempDir(), "portwatch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDecisionLifecycle(t *testing.T) {
	store := newTestStore(t)

	_, ok := store.Decision(5000)
	assert.False(t, ok, "fresh store has no decisions")

	require.NoError(t, store.SetDecision(5000, "ignore"))
	decision, ok := store.Decision(5000)
	require.True(t, ok)
	assert.Equal(t, "ignore", decision)

	// Replacing is an upsert, not an error.
	require.NoError(t, store.SetDecision(5000, "ignore"))

	require.NoError(t, store.ClearDecision(5000))
	_, ok = store.Decision(5000)
	assert.False(t, ok)

	// Clearing a missing decision is a no-op.
	require.NoError(t, store.ClearDecision(5000))
}

func TestDecisionsListsEverything(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetDecision(5000, "ignore"))
	require.NoError(t, store.SetDecision(6000, "ignore"))

	all, err := store.Decisions()
	require.NoError(t, err)
	assert.Equal(t, map[int]string{5000: "ignore", 6000: "ignore"}, all)
}

func TestRedirectHistoryNewestFirst(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.AddRedirect(4401, 5000, "https://ws.example.test/4401"))
	require.NoError(t, store.AddRedirect(4402, 6000, ""))

	records, err := store.RedirectHistory()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 4402, records[0].LocalPort)
	assert.Equal(t, 6000, records[0].TargetPort)
	assert.Equal(t, "", records[0].URL)

	assert.Equal(t, 4401, records[1].LocalPort)
	assert.Equal(t, "https://ws.example.test/4401", records[1].URL)
	assert.False(t, records[1].CreatedAt.IsZero())
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portwatch.db")

	store, err := NewSQLiteStoreAt(path)
	require.NoError(t, err)
	require.NoError(t, store.SetDecision(5000, "ignore"))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStoreAt(path)
	require.NoError(t, err)
	defer reopened.Close()

	decision, ok := reopened.Decision(5000)
	require.True(t, ok)
	assert.Equal(t, "ignore", decision)
}
