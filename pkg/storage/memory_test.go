package storage

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heighterses/cenaris/pkg/apperrors"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.Upload(ctx, "a/b.csv", bytes.NewReader([]byte("hello")), "text/csv", map[string]string{"k": "v"})
	require.NoError(t, err)

	data, err := store.Download(ctx, "a/b.csv")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestMemoryStoreDownloadMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Download(context.Background(), "nope.csv")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Put("a/b.csv", []byte("x"))

	require.NoError(t, store.Delete(ctx, "a/b.csv"))

	_, err := store.Download(ctx, "a/b.csv")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "a/b.csv"), apperrors.ErrNotFound)
}

func TestMemoryStoreList(t *testing.T) {
	store := NewMemoryStore()
	store.Put("results/2026/b.csv", []byte("bb"))
	store.Put("results/2026/a.csv", []byte("a"))
	store.Put("uploads/c.pdf", []byte("c"))

	objects, err := store.List(context.Background(), "results/")
	require.NoError(t, err)

	require.Len(t, objects, 2)
	assert.Equal(t, "results/2026/a.csv", objects[0].Path)
	assert.Equal(t, int64(1), objects[0].Size)
	assert.Equal(t, "results/2026/b.csv", objects[1].Path)
}
