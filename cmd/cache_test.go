package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherhall/address-engine/internal/cachestore"
	"github.com/gatherhall/address-engine/internal/config"
)

func TestPurgeStore_SQLite(t *testing.T) {
	ctx := context.Background()
	store, err := cachestore.NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck
	require.NoError(t, store.Migrate(ctx))

	require.NoError(t, store.Set(ctx, "details:stale", []byte("a"), -time.Hour))
	require.NoError(t, store.Set(ctx, "details:fresh", []byte("b"), time.Hour))

	purged, err := purgeStore(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	value, err := store.Get(ctx, "details:fresh")
	require.NoError(t, err)
	assert.Equal(t, "b", string(value))
}

func TestPurgeStore_EmptyStore(t *testing.T) {
	ctx := context.Background()
	store, err := cachestore.NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck

	// purgeStore migrates before purging, so a fresh file works too.
	purged, err := purgeStore(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 0, purged)
}

func TestOpenPurgeStore_RejectsEphemeralDrivers(t *testing.T) {
	orig := cfg
	defer func() { cfg = orig }()

	for _, driver := range []string{"memory", "off"} {
		cfg = &config.Config{Cache: config.CacheConfig{Driver: driver}}
		_, err := openPurgeStore(context.Background())
		require.Error(t, err, "driver %q has nothing to purge", driver)
		assert.Contains(t, err.Error(), "persistent driver")
	}
}

func TestOpenPurgeStore_SQLite(t *testing.T) {
	orig := cfg
	defer func() { cfg = orig }()

	cfg = &config.Config{Cache: config.CacheConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "cache.db"),
	}}

	store, err := openPurgeStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.NoError(t, store.Close())
}
