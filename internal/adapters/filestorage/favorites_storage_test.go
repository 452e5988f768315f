package filestorage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/favorites"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoritesStorage_SaveAndReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "favorites.json")

	storage, err := NewFavoritesStorage(path)
	require.NoError(t, err)

	_, err = storage.Load(ctx, "ns:favorites:a")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	require.NoError(t, storage.Save(ctx, "ns:favorites:a", []byte(`["1","2"]`)))
	require.NoError(t, storage.Save(ctx, "ns:favorites:b", []byte(`{"version":1,"favorites":["7"]}`)))

	reopened, err := NewFavoritesStorage(path)
	require.NoError(t, err)

	value, err := reopened.Load(ctx, "ns:favorites:a")
	require.NoError(t, err)
	assert.JSONEq(t, `["1","2"]`, string(value))

	value, err = reopened.Load(ctx, "ns:favorites:b")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"favorites":["7"]}`, string(value))

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFavoritesStorage_RejectsInvalidJSON(t *testing.T) {
	storage, err := NewFavoritesStorage(filepath.Join(t.TempDir(), "favorites.json"))
	require.NoError(t, err)

	err = storage.Save(context.Background(), "k", []byte("not json"))
	assert.Error(t, err)

	_, err = storage.Load(context.Background(), "k")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestNewFavoritesStorage_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	_, err := NewFavoritesStorage(path)
	assert.Error(t, err)

	_, err = NewFavoritesStorage("")
	assert.Error(t, err)
}

func TestFavoritesStorage_BacksStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "favorites.json")

	storage, err := NewFavoritesStorage(path)
	require.NoError(t, err)

	store, err := favorites.NewStore(ctx, favorites.StoreConfig{Key: favorites.Key("test", "owner")}, storage, nil, nil, nil)
	require.NoError(t, err)
	store.Add("5")
	store.Add("12")
	require.NoError(t, store.Close(ctx))

	reopened, err := NewFavoritesStorage(path)
	require.NoError(t, err)
	again, err := favorites.NewStore(ctx, favorites.StoreConfig{Key: favorites.Key("test", "owner")}, reopened, nil, nil, nil)
	require.NoError(t, err)
	defer again.Close(ctx)

	assert.Equal(t, []string{"12", "5"}, again.IDs())
}
