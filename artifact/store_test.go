package artifact

import (
	"testing"

	"github.com/hupe1980/pharmamesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ core.ArtifactStore = (*InMemoryStore)(nil)
	_ core.ArtifactStore = (*FileStore)(nil)
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	return store
}

func stores(t *testing.T) map[string]core.ArtifactStore {
	t.Helper()

	return map[string]core.ArtifactStore{
		"in_memory": NewInMemoryStore(),
		"file":      newFileStore(t),
	}
}

func TestArtifactStoreRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save("s1", "final_summary.txt", []byte("summary body")))

			data, err := store.Get("s1", "final_summary.txt")
			require.NoError(t, err)
			assert.Equal(t, "summary body", string(data))

			require.NoError(t, store.Save("s1", "final_summary.txt", []byte("revised")))

			data, err = store.Get("s1", "final_summary.txt")
			require.NoError(t, err)
			assert.Equal(t, "revised", string(data))
		})
	}
}

func TestArtifactStoreListSorted(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save("s1", "report.html", []byte("h")))
			require.NoError(t, store.Save("s1", "final_summary.txt", []byte("s")))

			ids, err := store.List("s1")
			require.NoError(t, err)
			assert.Equal(t, []string{"final_summary.txt", "report.html"}, ids)

			ids, err = store.List("other")
			require.NoError(t, err)
			assert.Empty(t, ids)
		})
	}
}

func TestArtifactStoreNotFound(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get("s1", "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			assert.ErrorIs(t, store.Delete("s1", "missing"), ErrNotFound)
		})
	}
}

func TestArtifactStoreDelete(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save("s1", "a", []byte("1")))
			require.NoError(t, store.Delete("s1", "a"))

			_, err := store.Get("s1", "a")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestInMemoryStoreCopyIsolation(t *testing.T) {
	store := NewInMemoryStore()

	data := []byte("hello")
	require.NoError(t, store.Save("s1", "a", data))

	data[0] = 'H'

	out, err := store.Get("s1", "a")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))

	out[0] = 'x'

	again, err := store.Get("s1", "a")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(again))
}

func TestFileStoreRejectsPathElements(t *testing.T) {
	store := newFileStore(t)

	assert.Error(t, store.Save("../escape", "a", []byte("x")))
	assert.Error(t, store.Save("s1", "sub/dir", []byte("x")))
	assert.Error(t, store.Save("s1", "..", []byte("x")))
}
