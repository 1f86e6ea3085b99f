package datastore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "nested", "slack.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveInstallation(ctx, Installation{
		TeamID:    "T1",
		TeamName:  "Acme",
		BotUserID: "U1",
		BotToken:  "xoxb-1",
		Scope:     "commands,chat:write",
	}))

	inst, err := store.GetInstallation(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", inst.TeamName)
	assert.Equal(t, "xoxb-1", inst.BotToken)
	assert.Equal(t, "commands,chat:write", inst.Scope)
	assert.False(t, inst.InstalledAt.IsZero())
}

func TestStore_ReinstallKeepsInstalledAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	installedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, store.SaveInstallation(ctx, Installation{TeamID: "T1", BotToken: "old", InstalledAt: installedAt}))
	require.NoError(t, store.SaveInstallation(ctx, Installation{TeamID: "T1", BotToken: "new"}))

	inst, err := store.GetInstallation(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, "new", inst.BotToken)
	assert.True(t, installedAt.Equal(inst.InstalledAt))

	n, err := store.CountInstallations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetInstallation(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteInstallation(ctx, "missing"), ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveInstallation(ctx, Installation{TeamID: "T1", BotToken: "x"}))
	require.NoError(t, store.DeleteInstallation(ctx, "T1"))

	_, err := store.GetInstallation(ctx, "T1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Validation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var verr *ValidationError
	assert.ErrorAs(t, store.SaveInstallation(ctx, Installation{BotToken: "x"}), &verr)
	assert.ErrorAs(t, store.SaveInstallation(ctx, Installation{TeamID: "T1"}), &verr)
}

func TestStore_InMemory(t *testing.T) {
	store, err := NewStore(":memory:", zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SaveInstallation(context.Background(), Installation{TeamID: "T", BotToken: "x"}))
	_, err = store.GetInstallation(context.Background(), "T")
	assert.NoError(t, err)
}
