package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeTest runs the shared BlobStore contract against an implementation.
func storeTest(t *testing.T, store BlobStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Open(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "snapshots/a", []byte("alpha")))
	require.NoError(t, store.Put(ctx, "snapshots/b", []byte("beta")))
	require.NoError(t, store.Put(ctx, "other/c", []byte("gamma")))

	rc, err := store.Open(ctx, "snapshots/a")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, []byte("alpha"), data)

	// Put replaces.
	require.NoError(t, store.Put(ctx, "snapshots/a", []byte("alpha2")))
	rc, err = store.Open(ctx, "snapshots/a")
	require.NoError(t, err)
	data, err = io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, []byte("alpha2"), data)

	names, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	assert.Equal(t, []string{"snapshots/a", "snapshots/b"}, names)

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"other/c", "snapshots/a", "snapshots/b"}, names)

	require.NoError(t, store.Delete(ctx, "snapshots/a"))
	_, err = store.Open(ctx, "snapshots/a")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing blob is not an error.
	assert.NoError(t, store.Delete(ctx, "snapshots/a"))
}

func TestMemoryStore(t *testing.T) {
	storeTest(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	storeTest(t, store)
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	original := []byte("immutable")
	require.NoError(t, store.Put(ctx, "x", original))

	// Mutating the caller's slice must not affect the stored blob.
	original[0] = '!'

	rc, err := store.Open(ctx, "x")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("immutable"), data)
}

func TestLocalStoreHidesTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewLocalStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "a", []byte("x")))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names)
}

func TestMemoryStoreConcurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	done := make(chan error, 16)
	for g := 0; g < 16; g++ {
		go func(g int) {
			name := string(rune('a' + g%4))
			for i := 0; i < 100; i++ {
				if err := store.Put(ctx, name, []byte{byte(i)}); err != nil {
					done <- err
					return
				}
				if rc, err := store.Open(ctx, name); err == nil {
					_, _ = io.ReadAll(rc)
					rc.Close()
				}
			}
			done <- nil
		}(g)
	}

	for g := 0; g < 16; g++ {
		require.NoError(t, <-done)
	}
}
