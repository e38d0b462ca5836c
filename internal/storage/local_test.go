package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLocal(t *testing.T) *LocalStorage {
	t.Helper()
	store, err := NewLocalStorage(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestLocalStorage_SaveAndLoad(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()

	t.Run("round trips content", func(t *testing.T) {
		content := []byte("%PDF-1.4 receipt")
		require.NoError(t, store.Save(ctx, "2026/02/receipt.pdf", content, "application/pdf"))

		got, contentType, err := store.Load(ctx, "2026/02/receipt.pdf")
		require.NoError(t, err)
		assert.Equal(t, content, got)
		assert.Equal(t, "application/pdf", contentType)
	})

	t.Run("missing key is ErrNotFound", func(t *testing.T) {
		_, _, err := store.Load(ctx, "nope.png")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("overwrites existing key", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "r.txt", []byte("one"), "text/plain"))
		require.NoError(t, store.Save(ctx, "r.txt", []byte("two"), "text/plain"))

		got, _, err := store.Load(ctx, "r.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("two"), got)
	})
}

func TestLocalStorage_Delete(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "gone.txt", []byte("x"), "text/plain"))
	require.NoError(t, store.Delete(ctx, "gone.txt"))

	_, _, err := store.Load(ctx, "gone.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing key is not an error.
	assert.NoError(t, store.Delete(ctx, "gone.txt"))
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	store := newTestLocal(t)
	ctx := context.Background()

	err := store.Save(ctx, "../outside.txt", []byte("x"), "text/plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes base directory")
}
