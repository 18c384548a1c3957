package boltstore_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onionrsv/console-session/tokenstore"
	"github.com/onionrsv/console-session/tokenstore/boltstore"
)

func openStore(t *testing.T, path string) *boltstore.Store {
	t.Helper()
	store, err := boltstore.NewFromFile(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLoadOnFreshStoreIsEmpty(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "session.db"))

	pair, err := store.Load()
	require.NoError(t, err)
	require.True(t, pair.Empty())
}

func TestSaveLoadClear(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "session.db"))

	saved := tokenstore.TokenPair{AccessToken: "t1", RefreshToken: "r1"}
	require.NoError(t, store.Save(saved))

	pair, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, saved, pair)

	require.NoError(t, store.Clear())
	pair, err = store.Load()
	require.NoError(t, err)
	require.True(t, pair.Empty())
}

func TestSaveReplacesBothTokens(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "session.db"))

	require.NoError(t, store.Save(tokenstore.TokenPair{AccessToken: "t1", RefreshToken: "r1"}))
	require.NoError(t, store.Save(tokenstore.TokenPair{AccessToken: "t2", RefreshToken: "r2"}))

	pair, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, tokenstore.TokenPair{AccessToken: "t2", RefreshToken: "r2"}, pair)
}

func TestPairSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	store, err := boltstore.NewFromFile(path, nil)
	require.NoError(t, err)
	require.NoError(t, store.Save(tokenstore.TokenPair{AccessToken: "t1", RefreshToken: "r1"}))
	require.NoError(t, store.Close())

	reopened := openStore(t, path)
	pair, err := reopened.Load()
	require.NoError(t, err)
	require.Equal(t, tokenstore.TokenPair{AccessToken: "t1", RefreshToken: "r1"}, pair)
}

func TestClearOnFreshStoreSucceeds(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, store.Clear())
}
