package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/docrag/ai/mock"
	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/index"
	"github.com/poiesic/docrag/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIndex struct {
	results core.RetrievalResult
	err     error
	gotK    int
	gotText string
}

func (s *stubIndex) Query(ctx context.Context, text string, k int) (core.RetrievalResult, error) {
	s.gotK = k
	s.gotText = text
	return s.results, s.err
}

func resultsOf(texts ...string) core.RetrievalResult {
	out := make(core.RetrievalResult, len(texts))
	for i, text := range texts {
		out[i] = &core.SearchResult{
			Chunk: &core.Chunk{Id: core.IDFromContent(text), Origin: "doc.txt", Index: i, Text: text},
			Score: 1 - float32(i)*0.1,
		}
	}
	return out
}

func TestNewRetriever(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		r, err := NewRetriever()
		require.NoError(t, err)
		assert.Equal(t, DefaultK, r.K())
	})

	t.Run("custom k", func(t *testing.T) {
		r, err := NewRetriever(WithK(7))
		require.NoError(t, err)
		assert.Equal(t, 7, r.K())
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		r, err := NewRetriever(WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("invalid k", func(t *testing.T) {
		_, err := NewRetriever(WithK(0))
		assert.ErrorIs(t, err, ErrInvalidK)
	})
}

func TestRetrieve_PassesKAndQuestion(t *testing.T) {
	r, err := NewRetriever()
	require.NoError(t, err)
	idx := &stubIndex{results: resultsOf("a", "b")}

	got, err := r.Retrieve(context.Background(), idx, "question?")
	require.NoError(t, err)
	assert.Equal(t, DefaultK, idx.gotK)
	assert.Equal(t, "question?", idx.gotText)
	assert.Equal(t, []string{"a", "b"}, got.Texts())
}

func TestRetrieve_CapsAtK(t *testing.T) {
	r, err := NewRetriever(WithK(2))
	require.NoError(t, err)
	idx := &stubIndex{results: resultsOf("a", "b", "c")}

	got, err := r.Retrieve(context.Background(), idx, "q")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Texts())
}

func TestRetrieve_Errors(t *testing.T) {
	r, err := NewRetriever()
	require.NoError(t, err)

	_, err = r.Retrieve(context.Background(), nil, "q")
	assert.ErrorIs(t, err, ErrIndexRequired)

	boom := errors.New("boom")
	_, err = r.Retrieve(context.Background(), &stubIndex{err: fmt.Errorf("%w: %w", core.ErrEmbedding, boom)}, "q")
	assert.ErrorIs(t, err, core.ErrEmbedding)
	assert.ErrorIs(t, err, boom)
}

func TestRetrieve_AgainstBuiltIndex(t *testing.T) {
	ctx := context.Background()
	factory, err := badger.NewFactory(t.TempDir())
	require.NoError(t, err)
	e, err := index.NewEmbeddingIndex(mock.NewMockEmbedder(), factory)
	require.NoError(t, err)
	defer e.Release()

	texts := []string{
		"The sky is blue.",
		"Grass is green.",
		"Roses are red.",
		"Violets are blue.",
		"Sugar is sweet.",
		"And so are you.",
	}
	chunks := make([]core.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = core.Chunk{Id: core.IDFromContent(text), Origin: "poem.txt", Index: i, Text: text}
	}

	idx, err := e.Build(ctx, core.NewSessionContext("retrieval"), chunks)
	require.NoError(t, err)
	defer idx.Close()

	r, err := NewRetriever()
	require.NoError(t, err)

	got, err := r.Retrieve(ctx, idx, "Roses are red.")
	require.NoError(t, err)
	require.Len(t, got, DefaultK)
	assert.Equal(t, "Roses are red.", got[0].Chunk.Text)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestRetrieve_EmptyIndex(t *testing.T) {
	ctx := context.Background()
	embedder := mock.NewMockEmbedder()
	e, err := index.NewEmbeddingIndex(embedder, badger.NewMemoryFactory())
	require.NoError(t, err)
	defer e.Release()

	idx, err := e.Build(ctx, core.NewSessionContext("empty"), nil)
	require.NoError(t, err)
	defer idx.Close()

	r, err := NewRetriever()
	require.NoError(t, err)

	got, err := r.Retrieve(ctx, idx, "anything")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, embedder.CallCount())
}
