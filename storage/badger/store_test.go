package badger

import (
	"context"
	"testing"

	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(text string, vector ...float32) *core.IndexEntry {
	return &core.IndexEntry{
		Chunk: core.Chunk{
			Id:     core.IDFromContent(text),
			Origin: "test.txt",
			Text:   text,
		},
		Vector: vector,
	}
}

func newMemoryStore(t *testing.T) storage.VectorStore {
	t.Helper()
	store, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_Empty(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	results, err := store.FindSimilar(ctx, []float32{1, 0, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_FindSimilarOrdering(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	err := store.Replace(ctx, []*core.IndexEntry{
		entry("not similar", 0, 0, 1),
		entry("very similar", 1, 0, 0),
		entry("somewhat similar", 0.8, 0.6, 0),
	})
	require.NoError(t, err)

	results, err := store.FindSimilar(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i := 0; i < len(results)-1; i++ {
		assert.GreaterOrEqual(t, results[i].Score, results[i+1].Score)
	}
	assert.Equal(t, "very similar", results[0].Chunk.Text)
	assert.Equal(t, "somewhat similar", results[1].Chunk.Text)
	assert.Equal(t, "not similar", results[2].Chunk.Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestStore_FindSimilarLimit(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	var entries []*core.IndexEntry
	for _, text := range []string{"a", "b", "c", "d", "e", "f"} {
		entries = append(entries, entry(text, 1, 0))
	}
	require.NoError(t, store.Replace(ctx, entries))

	results, err := store.FindSimilar(ctx, []float32{1, 0}, 4)
	require.NoError(t, err)
	require.Len(t, results, 4)

	// equal scores keep insertion order
	assert.Equal(t, []string{"a", "b", "c", "d"}, core.RetrievalResult(results).Texts())
}

func TestStore_FindSimilarInvalidLimit(t *testing.T) {
	store := newMemoryStore(t)

	_, err := store.FindSimilar(context.Background(), []float32{1}, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestStore_DimensionChecks(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	err := store.Replace(ctx, []*core.IndexEntry{entry("a", 1, 0), entry("b", 1, 0, 0)})
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)

	require.NoError(t, store.Replace(ctx, []*core.IndexEntry{entry("a", 1, 0)}))
	dims, err := store.Dimensions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, dims)

	_, err = store.FindSimilar(ctx, []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
}

func TestStore_ReplaceRejectsInvalidEntries(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.Replace(ctx, []*core.IndexEntry{entry("kept", 1, 0)}))

	err := store.Replace(ctx, []*core.IndexEntry{entry("fine", 1, 0), entry("no vector")})
	assert.ErrorIs(t, err, core.ErrInvalidEntry)

	// previous contents stay visible
	results, err := store.FindSimilar(ctx, []float32{1, 0}, 4)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "kept", results[0].Chunk.Text)
}

func TestStore_ReplaceSwapsContents(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.Replace(ctx, []*core.IndexEntry{
		entry("old one", 1, 0),
		entry("old two", 0, 1),
		entry("old three", 1, 1),
	}))
	require.NoError(t, store.Replace(ctx, []*core.IndexEntry{entry("new", 0, 1)}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := store.FindSimilar(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].Chunk.Text)
}

func TestStore_ChunksInInsertionOrder(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	chunks, err := store.Chunks(ctx)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	require.NoError(t, store.Replace(ctx, []*core.IndexEntry{
		entry("first", 0, 1),
		entry("second", 1, 0),
		entry("third", 1, 1),
	}))
	require.NoError(t, store.Replace(ctx, []*core.IndexEntry{
		entry("alpha", 1, 0),
		entry("beta", 0, 1),
	}))

	chunks, err = store.Chunks(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "alpha", chunks[0].Text)
	assert.Equal(t, "beta", chunks[1].Text)
	assert.Equal(t, "test.txt", chunks[1].Origin)
}

func TestStore_ReplaceCancelled(t *testing.T) {
	store := newMemoryStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Replace(ctx, []*core.IndexEntry{entry("a", 1)})
	assert.ErrorIs(t, err, context.Canceled)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStore_Persistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Replace(ctx, []*core.IndexEntry{entry("persisted", 0.6, 0.8)}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	results, err := reopened.FindSimilar(ctx, []float32{0.6, 0.8}, 4)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "persisted", results[0].Chunk.Text)
	assert.Equal(t, "test.txt", results[0].Chunk.Origin)
}

func TestStore_Closed(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, err = store.Count(context.Background())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	_, err = store.FindSimilar(context.Background(), []float32{1}, 1)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	_, err = store.Chunks(context.Background())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestStoreWithBackend(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	store, err := NewStoreWithBackend(backend)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	assert.False(t, backend.IsClosed())

	_, err = NewStoreWithBackend(nil)
	assert.Error(t, err)
}
