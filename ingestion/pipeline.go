package ingestion

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/docrag/chunking"
	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/index"
)

// Loader extracts one file into a tagged Document.
type Loader interface {
	Load(ctx context.Context, path string) *core.Document
}

// Indexer builds session indexes from chunks.
type Indexer interface {
	Build(ctx context.Context, session core.SessionContext, chunks []core.Chunk) (*index.Index, error)
	Rebuild(ctx context.Context, idx *index.Index, chunks []core.Chunk) error
}

// Pipeline orchestrates loading, chunking and indexing of uploaded files.
type Pipeline struct {
	loader  Loader
	chunker *chunking.Chunker
	indexer Indexer
	logger  *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(loader Loader, chunker *chunking.Chunker, indexer Indexer, opts ...Option) (*Pipeline, error) {
	if loader == nil {
		return nil, ErrLoaderRequired
	}
	if chunker == nil {
		return nil, ErrChunkerRequired
	}
	if indexer == nil {
		return nil, ErrIndexerRequired
	}

	p := &Pipeline{
		loader:  loader,
		chunker: chunker,
		indexer: indexer,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	p.logger = p.logger.With("component", "ingestion")
	return p, nil
}

// Result describes one ingestion run.
type Result struct {
	// Documents holds one entry per input, in input order, failed ones included.
	Documents []*core.Document

	// Chunks is the number of chunks indexed.
	Chunks int

	// Index is the session's index after the run. When no chunks were
	// produced it is the index passed in, which may be nil.
	Index *index.Index
}

// Failures returns the documents that could not be extracted.
func (r *Result) Failures() []*core.Document {
	var out []*core.Document
	for _, doc := range r.Documents {
		if !doc.OK() {
			out = append(out, doc)
		}
	}
	return out
}

// Empty reports whether the run produced nothing to index.
func (r *Result) Empty() bool {
	return r.Chunks == 0
}

// Ingest loads paths in order and indexes their chunks for session.
// See IngestDocuments for how current is treated.
func (p *Pipeline) Ingest(ctx context.Context, session core.SessionContext, current *index.Index, paths []string) (*Result, error) {
	docs := make([]*core.Document, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docs = append(docs, p.loader.Load(ctx, path))
	}
	return p.IngestDocuments(ctx, session, current, docs)
}

// IngestDocuments chunks docs and indexes the result for session.
//
// When current is nil a new index is built; otherwise current is rebuilt in
// place. Index failures are returned as errors and leave current unchanged.
// Zero chunks is not an error: a warning is logged and current is returned
// as is.
func (p *Pipeline) IngestDocuments(ctx context.Context, session core.SessionContext, current *index.Index, docs []*core.Document) (*Result, error) {
	start := time.Now()
	logger := p.logger.With("session", session.ID)

	result := &Result{Documents: docs, Index: current}
	for _, doc := range result.Failures() {
		logger.Warn("document skipped", "origin", doc.Origin, "reason", doc.Reason)
	}

	chunks := p.chunker.Chunk(docs)
	if len(chunks) == 0 {
		logger.Warn("no chunks produced, index left unchanged", "documents", len(docs))
		return result, nil
	}

	if current == nil {
		idx, err := p.indexer.Build(ctx, session, chunks)
		if err != nil {
			return nil, err
		}
		result.Index = idx
	} else if err := p.indexer.Rebuild(ctx, current, chunks); err != nil {
		return nil, err
	}
	result.Chunks = len(chunks)

	logger.Info("ingestion complete",
		"documents", len(docs),
		"failed", len(result.Failures()),
		"chunks", len(chunks),
		"elapsed", time.Since(start))
	return result, nil
}
