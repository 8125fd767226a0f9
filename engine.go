// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package docrag answers questions about, and summarizes, a user's documents.
//
// An Engine wires the loader, chunker, embedding index, retriever, answer
// orchestrator and summarizer together. Chat happens in Sessions: each
// session owns a private index namespace and expires after a period of
// inactivity, releasing its index.
package docrag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/poiesic/docrag/ai"
	"github.com/poiesic/docrag/ai/openai"
	"github.com/poiesic/docrag/answer"
	"github.com/poiesic/docrag/chunking"
	"github.com/poiesic/docrag/config"
	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/index"
	"github.com/poiesic/docrag/ingestion"
	"github.com/poiesic/docrag/loader"
	"github.com/poiesic/docrag/retrieval"
	"github.com/poiesic/docrag/sanitize"
	"github.com/poiesic/docrag/storage/badger"
	"github.com/poiesic/docrag/summarize"
)

var (
	// ErrEngineClosed is returned by operations on a closed Engine.
	ErrEngineClosed = errors.New("engine closed")

	// ErrSessionClosed is returned by operations on an ended or expired Session.
	ErrSessionClosed = errors.New("session closed")
)

// Engine answers questions about, and summarizes, local documents. It owns
// the AI provider, the embedding worker pool and the registry of live
// sessions. Safe for concurrent use; call Close when done.
type Engine struct {
	cfg        *config.Config
	provider   ai.AIProvider
	loader     *loader.Loader
	factory    *badger.Factory
	indexer    *index.EmbeddingIndex
	pipeline   *ingestion.Pipeline
	retriever  *retrieval.Retriever
	answerer   *answer.Orchestrator
	summarizer *summarize.Summarizer
	sessions   *cache.Cache
	mu         sync.Mutex
	closed     bool
	logger     *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	provider ai.AIProvider
	progress io.Writer
	interval int
	logger   *slog.Logger
}

// WithProvider supplies the AI services instead of connecting to the
// configured OpenAI-compatible hosts. The Engine takes ownership and closes it.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithProgress reports embedding progress of every index build to w,
// once per reportInterval chunks.
func WithProgress(w io.Writer, reportInterval int) EngineOption {
	return func(o *engineOptions) {
		o.progress = w
		o.interval = reportInterval
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// NewEngine validates cfg and assembles the pipeline. Configuration errors,
// including a missing API key for the hosted service, fail here.
func NewEngine(cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &engineOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	logger := options.logger

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(&cfg.AI, openai.WithLogger(logger))
		if err != nil {
			return nil, err
		}
	}

	e, err := assemble(cfg, provider, options)
	if err != nil {
		provider.Close()
		return nil, err
	}
	e.logger = logger.With("component", "engine")
	return e, nil
}

func assemble(cfg *config.Config, provider ai.AIProvider, options *engineOptions) (*Engine, error) {
	logger := options.logger

	var factory *badger.Factory
	if cfg.Index.InMemory {
		factory = badger.NewMemoryFactory()
	} else {
		var err error
		if factory, err = badger.NewFactory(cfg.Index.Root); err != nil {
			return nil, err
		}
	}

	l, err := loader.NewLoader(
		loader.WithOfficeLicenseKey(cfg.Office.LicenseKey),
		loader.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	chunker, err := chunking.NewChunker(
		chunking.WithMaxSize(cfg.Chunking.MaxSize),
		chunking.WithOverlap(cfg.Chunking.Overlap),
		chunking.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	indexOpts := []index.Option{
		index.WithBatchSize(cfg.AI.EmbeddingBatchSize),
		index.WithLogger(logger),
	}
	if cfg.Index.Workers > 0 {
		indexOpts = append(indexOpts, index.WithPoolSize(cfg.Index.Workers))
	}
	if options.progress != nil {
		indexOpts = append(indexOpts, index.WithProgress(options.progress, options.interval))
	}
	indexer, err := index.NewEmbeddingIndex(provider.Embedder(), factory, indexOpts...)
	if err != nil {
		return nil, err
	}

	pipeline, err := ingestion.NewPipeline(l, chunker, indexer, ingestion.WithLogger(logger))
	if err != nil {
		indexer.Release()
		return nil, err
	}

	retriever, err := retrieval.NewRetriever(retrieval.WithK(cfg.Retrieval.K), retrieval.WithLogger(logger))
	if err != nil {
		indexer.Release()
		return nil, err
	}

	answerer, err := answer.NewOrchestrator(provider.Generator(),
		answer.WithTemperature(cfg.Generation.AnswerTemperature),
		answer.WithLogger(logger),
	)
	if err != nil {
		indexer.Release()
		return nil, err
	}

	summarizer, err := summarize.NewSummarizer(provider.Generator(),
		summarize.WithTemperature(cfg.Generation.SummaryTemperature),
		summarize.WithLogger(logger),
	)
	if err != nil {
		indexer.Release()
		return nil, err
	}

	e := &Engine{
		cfg:        cfg,
		provider:   provider,
		loader:     l,
		factory:    factory,
		indexer:    indexer,
		pipeline:   pipeline,
		retriever:  retriever,
		answerer:   answerer,
		summarizer: summarizer,
	}

	e.sessions = cache.New(cfg.Sessions.TTL, cleanupInterval(cfg.Sessions.TTL))
	e.sessions.OnEvicted(func(id string, value interface{}) {
		if s, ok := value.(*Session); ok {
			if err := s.release(); err != nil {
				e.logger.Error("error closing session index", "session", id, "err", err)
			}
		}
	})
	return e, nil
}

func cleanupInterval(ttl time.Duration) time.Duration {
	return min(ttl, time.Minute)
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Loader returns the document loader.
func (e *Engine) Loader() *loader.Loader {
	return e.loader
}

// NewSession starts a session with a fresh random identifier and no documents.
func (e *Engine) NewSession() (*Session, error) {
	return e.OpenSession(context.Background(), uuid.NewString())
}

// OpenSession returns the live session with id, reopening its persisted
// index when one exists on disk, or starts an empty session under id.
func (e *Engine) OpenSession(ctx context.Context, id string) (*Session, error) {
	sc := core.NewSessionContext(id)
	if err := core.ValidateSession(sc); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrEngineClosed
	}

	if s, ok := e.lookup(id); ok {
		return s, nil
	}

	s := &Session{engine: e, context: sc}
	if e.factory.Exists(sc.Namespace) {
		idx, err := e.indexer.Open(ctx, sc)
		if err != nil {
			return nil, err
		}
		s.idx = idx
		e.logger.Info("session reopened", "session", id)
	} else {
		e.logger.Info("session started", "session", id)
	}

	e.sessions.Set(id, s, cache.DefaultExpiration)
	return s, nil
}

// Session returns the live session with id and extends its lifetime.
func (e *Engine) Session(id string) (*Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lookup(id)
}

func (e *Engine) lookup(id string) (*Session, bool) {
	value, ok := e.sessions.Get(id)
	if !ok {
		// Get hides expired entries the janitor has not evicted yet. Evict
		// them now so their indexes are released before id is reopened.
		e.sessions.DeleteExpired()
		return nil, false
	}
	s := value.(*Session)
	e.sessions.Set(id, s, cache.DefaultExpiration)
	return s, true
}

// touch extends the lifetime of s if it is still registered.
// Callers must not hold s.mu, since eviction releases sessions under e.mu.
func (e *Engine) touch(s *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if value, ok := e.sessions.Get(s.context.ID); ok && value == s {
		e.sessions.Set(s.context.ID, s, cache.DefaultExpiration)
	}
}

// CloseSession ends the session with id and releases its index.
// Persisted index data stays on disk.
func (e *Engine) CloseSession(id string) {
	e.sessions.Delete(id)
}

// SessionCount returns the number of live sessions.
func (e *Engine) SessionCount() int {
	return e.sessions.ItemCount()
}

// Summary is the outcome of summarizing one file or folder.
type Summary struct {
	// Source is the summarized file or folder.
	Source string

	// Text is the summary, or a message explaining why there is none.
	Text string

	// Documents holds one entry per loaded file, failed ones included.
	Documents []*core.Document
}

// Empty reports whether no text could be extracted from the source.
func (s *Summary) Empty() bool {
	return sanitize.Normalize(summarize.CombinedText(s.Documents)) == ""
}

// Failed reports whether the generation request failed.
func (s *Summary) Failed() bool {
	return summarize.Failed(s.Text)
}

// SummarizeFile summarizes a single document.
func (e *Engine) SummarizeFile(ctx context.Context, path string) (*Summary, error) {
	if e.isClosed() {
		return nil, ErrEngineClosed
	}
	doc := e.loader.Load(ctx, path)
	return e.summarize(ctx, path, []*core.Document{doc}), nil
}

// SummarizeFolder summarizes the combined text of every supported file
// directly inside folder. Unreadable files are skipped.
func (e *Engine) SummarizeFolder(ctx context.Context, folder string) (*Summary, error) {
	if e.isClosed() {
		return nil, ErrEngineClosed
	}
	batch, err := e.loader.LoadBatch(ctx, folder)
	if err != nil {
		return nil, err
	}
	return e.summarize(ctx, folder, batch.Documents), nil
}

func (e *Engine) summarize(ctx context.Context, source string, docs []*core.Document) *Summary {
	summary := &Summary{Source: source, Documents: docs}
	if summary.Empty() {
		e.logger.Warn("no content found", "source", source)
		summary.Text = summarize.NoContentMessage
		return summary
	}
	summary.Text = e.summarizer.SummarizeDocuments(ctx, docs)
	return summary
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Close ends every session and releases the worker pool and AI provider.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	for id := range e.sessions.Items() {
		e.sessions.Delete(id)
	}
	e.indexer.Release()

	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
		return err
	}
	return nil
}

// Session is one user's conversation over an uploaded document set.
// Calls on a Session are serialized.
type Session struct {
	engine  *Engine
	context core.SessionContext
	mu      sync.Mutex
	idx     *index.Index
	closed  bool
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.context.ID
}

// Context returns the session's identity and index namespace.
func (s *Session) Context() core.SessionContext {
	return s.context
}

// Ingest loads paths and replaces the session's index with their chunks.
// Per-file failures are reported on the result. An upload that yields no
// chunks keeps the previous index. Embedding failures are returned and also
// keep the previous index.
func (s *Session) Ingest(ctx context.Context, paths []string) (*ingestion.Result, error) {
	defer s.engine.touch(s)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}

	result, err := s.engine.pipeline.Ingest(ctx, s.context, s.idx, paths)
	if err != nil {
		return nil, err
	}
	s.idx = result.Index
	return result, nil
}

// Ask answers question from the session's documents. It never returns nil;
// failures are carried on the Answer.
func (s *Session) Ask(ctx context.Context, question string) *core.Answer {
	defer s.engine.touch(s)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &core.Answer{Text: answer.ErrorPrefix + ErrSessionClosed.Error(), Err: ErrSessionClosed}
	}

	if s.idx == nil {
		return s.engine.answerer.Answer(ctx, question, core.RetrievalResult{})
	}

	passages, err := s.engine.retriever.Retrieve(ctx, s.idx, question)
	if err != nil {
		if errors.Is(err, core.ErrEmptyInput) {
			return s.engine.answerer.Answer(ctx, question, nil)
		}
		return &core.Answer{
			Text: answer.ErrorPrefix + err.Error(),
			Err:  err,
		}
	}
	return s.engine.answerer.Answer(ctx, question, passages)
}

// Reembed recomputes every stored vector with the configured embedding
// model. Run it after switching models on a persisted session; the chunks
// themselves are kept. Returns the number of chunks re-embedded.
func (s *Session) Reembed(ctx context.Context) (int, error) {
	defer s.engine.touch(s)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrSessionClosed
	}

	if s.idx == nil {
		return 0, nil
	}
	return s.engine.indexer.Reembed(ctx, s.idx)
}

// Chunks returns the number of indexed chunks.
func (s *Session) Chunks(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx == nil {
		return 0, nil
	}
	return s.idx.Count(ctx)
}

// Close ends the session. Equivalent to Engine.CloseSession.
func (s *Session) Close() {
	s.engine.CloseSession(s.context.ID)
}

func (s *Session) release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.idx == nil {
		return nil
	}
	err := s.idx.Close()
	s.idx = nil
	if err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	return nil
}

// Preview returns at most n characters of text with whitespace collapsed,
// marking truncation with an ellipsis.
func Preview(text string, n int) string {
	text = sanitize.Normalize(text)
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[:n])) + "..."
}
