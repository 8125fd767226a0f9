package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docrag/ai"
	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/sanitize"
	"github.com/poiesic/docrag/storage"
)

// DefaultBatchSize is the number of chunk texts sent per embedding request.
const DefaultBatchSize = 64

// EmbeddingIndex embeds chunks and stores them in session-scoped vector stores.
type EmbeddingIndex struct {
	embedder  ai.Embedder
	factory   storage.StoreFactory
	pool      *ants.Pool
	batchSize int
	progress  io.Writer
	interval  int
	logger    *slog.Logger
}

// Option configures an EmbeddingIndex.
type Option func(*EmbeddingIndex) error

// WithPoolSize sets the number of concurrent embedding requests during Build.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(e *EmbeddingIndex) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if e.pool != nil {
			e.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		e.pool = pool
		return nil
	}
}

// WithBatchSize sets how many chunk texts go into one embedding request.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(e *EmbeddingIndex) error {
		if size < 1 {
			size = 1
		}
		e.batchSize = size
		return nil
	}
}

// WithProgress reports the embedding progress of every build to w, once
// per reportInterval chunks. Each build gets its own ProgressTracker
// labelled with the session id.
func WithProgress(w io.Writer, reportInterval int) Option {
	return func(e *EmbeddingIndex) error {
		if w == nil {
			e.progress = nil
			return nil
		}
		e.progress = &syncWriter{w: w}
		e.interval = reportInterval
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *EmbeddingIndex) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEmbeddingIndex creates an embedding index backed by stores from factory.
// Call Release when done to free the worker pool.
func NewEmbeddingIndex(embedder ai.Embedder, factory storage.StoreFactory, opts ...Option) (*EmbeddingIndex, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if factory == nil {
		return nil, ErrStoreFactoryRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	e := &EmbeddingIndex{
		embedder:  embedder,
		factory:   factory,
		pool:      pool,
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(e); optErr != nil {
			e.Release()
			return nil, optErr
		}
	}

	e.logger = e.logger.With("component", "embedding-index")
	return e, nil
}

// Release frees the worker pool.
func (e *EmbeddingIndex) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// Build embeds every chunk and replaces the session's index with the result.
//
// The build is all-or-nothing: if any embedding request fails, or the
// service returns missing, empty or inconsistently sized vectors, Build
// returns an error wrapping core.ErrEmbedding and nothing is written.
// Building from zero chunks logs a warning and yields an empty index.
func (e *EmbeddingIndex) Build(ctx context.Context, session core.SessionContext, chunks []core.Chunk) (*Index, error) {
	if err := core.ValidateSession(session); err != nil {
		return nil, err
	}
	logger := e.logger.With("session", session.ID)
	start := time.Now()

	entries, err := e.embedEntries(ctx, session.ID, chunks, logger)
	if err != nil {
		return nil, err
	}

	store, err := e.factory.Open(session.Namespace)
	if err != nil {
		return nil, err
	}
	if err := store.Replace(ctx, entries); err != nil {
		store.Close()
		return nil, err
	}

	logger.Info("index built", "chunks", len(entries), "elapsed", time.Since(start))
	return newIndex(session, store, e.embedder, logger), nil
}

// Rebuild replaces the contents of an open index with chunks, under the same
// all-or-nothing rules as Build. On failure the previous contents stay visible.
func (e *EmbeddingIndex) Rebuild(ctx context.Context, idx *Index, chunks []core.Chunk) error {
	start := time.Now()

	entries, err := e.embedEntries(ctx, idx.session.ID, chunks, idx.logger)
	if err != nil {
		return err
	}
	if err := idx.store.Replace(ctx, entries); err != nil {
		return err
	}

	idx.logger.Info("index rebuilt", "chunks", len(entries), "elapsed", time.Since(start))
	return nil
}

// Reembed recomputes the vectors of every chunk already stored in idx with
// the current embedder and swaps them in. Used after the embedding model
// changes, since vectors from different models are not comparable.
// On failure the previous vectors stay visible.
func (e *EmbeddingIndex) Reembed(ctx context.Context, idx *Index) (int, error) {
	chunks, err := idx.store.Chunks(ctx)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		idx.logger.Info("nothing to re-embed")
		return 0, nil
	}

	start := time.Now()
	entries, err := e.embedEntries(ctx, idx.session.ID, chunks, idx.logger)
	if err != nil {
		return 0, err
	}
	if err := idx.store.Replace(ctx, entries); err != nil {
		return 0, err
	}

	idx.logger.Info("index re-embedded", "chunks", len(entries), "elapsed", time.Since(start))
	return len(entries), nil
}

func (e *EmbeddingIndex) embedEntries(ctx context.Context, label string, chunks []core.Chunk, logger *slog.Logger) ([]*core.IndexEntry, error) {
	if len(chunks) == 0 {
		logger.Warn("building index from zero chunks")
		return nil, nil
	}

	vectors, err := e.embedAll(ctx, label, chunks)
	if err != nil {
		logger.Error("index build failed", "chunks", len(chunks), "err", err)
		return nil, err
	}

	entries := make([]*core.IndexEntry, len(chunks))
	for i, chunk := range chunks {
		entries[i] = &core.IndexEntry{Chunk: chunk, Vector: vectors[i]}
	}
	return entries, nil
}

// Open attaches to the index previously built for session.
// A session that was never built yields an empty index.
func (e *EmbeddingIndex) Open(ctx context.Context, session core.SessionContext) (*Index, error) {
	if err := core.ValidateSession(session); err != nil {
		return nil, err
	}

	store, err := e.factory.Open(session.Namespace)
	if err != nil {
		return nil, err
	}

	return newIndex(session, store, e.embedder, e.logger.With("session", session.ID)), nil
}

// embedAll embeds chunk texts in batches on the worker pool and returns
// unit-length vectors in chunk order.
func (e *EmbeddingIndex) embedAll(ctx context.Context, label string, chunks []core.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i := range chunks {
		if err := core.ValidateChunk(&chunks[i]); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		texts[i] = sanitize.Normalize(chunks[i].Text)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	var progress *ProgressTracker
	if e.progress != nil {
		progress = NewProgressTracker(e.progress, e.interval)
		progress.label = label
		progress.Start(len(texts))
		defer progress.Finish()
	}

	vectors := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))

		wg.Add(1)
		submitErr := e.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}

			batch, err := e.embedder.EmbedTexts(ctx, texts[start:end])
			if err != nil {
				fail(err)
				return
			}
			if len(batch) != end-start {
				fail(fmt.Errorf("got %d vectors for %d texts", len(batch), end-start))
				return
			}
			copy(vectors[start:end], batch)

			if progress != nil {
				progress.Increment(end - start)
			}
		})
		if submitErr != nil {
			wg.Done()
			fail(submitErr)
			break
		}
	}
	wg.Wait()

	mu.Lock()
	err := firstErr
	mu.Unlock()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrEmbedding, err)
	}

	dims := 0
	for i, v := range vectors {
		normalized, ok := NormalizeVector(v)
		if !ok {
			return nil, fmt.Errorf("%w: chunk %d has an empty or zero vector", core.ErrEmbedding, i)
		}
		if i == 0 {
			dims = len(normalized)
		} else if len(normalized) != dims {
			return nil, fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				core.ErrEmbedding, i, len(normalized), dims)
		}
		vectors[i] = normalized
	}

	return vectors, nil
}

// Index is a built, read-only embedding index for one session.
// Safe for concurrent queries.
type Index struct {
	session  core.SessionContext
	store    storage.VectorStore
	embedder ai.Embedder
	logger   *slog.Logger
}

func newIndex(session core.SessionContext, store storage.VectorStore, embedder ai.Embedder, logger *slog.Logger) *Index {
	return &Index{
		session:  session,
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// Session returns the session that owns the index.
func (idx *Index) Session() core.SessionContext {
	return idx.session
}

// Count returns the number of indexed chunks.
func (idx *Index) Count(ctx context.Context) (int, error) {
	return idx.store.Count(ctx)
}

// Query embeds text and returns up to k chunks by descending cosine similarity.
// An empty index returns an empty result without calling the embedder.
// Embedding failures are wrapped in core.ErrEmbedding.
func (idx *Index) Query(ctx context.Context, text string, k int) (core.RetrievalResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}

	count, err := idx.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		idx.logger.Debug("query against empty index")
		return core.RetrievalResult{}, nil
	}

	text = sanitize.Normalize(text)
	if text == "" {
		return nil, fmt.Errorf("%w: query text is empty", core.ErrEmptyInput)
	}

	vector, err := idx.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrEmbedding, err)
	}
	normalized, ok := NormalizeVector(vector)
	if !ok {
		return nil, fmt.Errorf("%w: query produced an empty or zero vector", core.ErrEmbedding)
	}

	results, err := idx.store.FindSimilar(ctx, normalized, k)
	if err != nil {
		if errors.Is(err, storage.ErrDimensionMismatch) {
			return nil, fmt.Errorf("%w: %w", core.ErrEmbedding, err)
		}
		return nil, err
	}

	idx.logger.Debug("query complete", "k", k, "results", len(results))
	return core.RetrievalResult(results), nil
}

// Close releases the underlying store.
func (idx *Index) Close() error {
	return idx.store.Close()
}
