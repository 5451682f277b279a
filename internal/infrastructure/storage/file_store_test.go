package storage_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bivex/webpay-client/internal/infrastructure/storage"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file reads as empty", func(t *testing.T) {
		store := storage.NewFileStore(afero.NewMemMapFs(), "receipts.json")

		_, err := store.Get(ctx, "webpay_receipts")
		assert.ErrorIs(t, err, storage.ErrKeyNotFound)
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		store := storage.NewFileStore(afero.NewMemMapFs(), "receipts.json")

		require.NoError(t, store.Set(ctx, "k", []byte(`["r1"]`)))
		value, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.JSONEq(t, `["r1"]`, string(value))
	})

	t.Run("set preserves other keys", func(t *testing.T) {
		store := storage.NewFileStore(afero.NewMemMapFs(), "receipts.json")

		require.NoError(t, store.Set(ctx, "a", []byte(`1`)))
		require.NoError(t, store.Set(ctx, "b", []byte(`2`)))

		value, err := store.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "1", string(value))
	})

	t.Run("corrupt file surfaces a parse error", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "receipts.json", []byte("{nope"), 0o600))

		store := storage.NewFileStore(fs, "receipts.json")
		_, err := store.Get(ctx, "k")
		assert.Error(t, err)
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("get of unknown key", func(t *testing.T) {
		store := storage.NewMemoryStore()
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrKeyNotFound)
	})

	t.Run("stored value is copied", func(t *testing.T) {
		store := storage.NewMemoryStore()
		value := []byte("abc")
		require.NoError(t, store.Set(ctx, "k", value))
		value[0] = 'x'

		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(got))
	})
}
