package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/docrag/core"
)

// DefaultK is the number of passages retrieved per question.
const DefaultK = 4

// Index is the query side of an embedding index.
type Index interface {
	Query(ctx context.Context, text string, k int) (core.RetrievalResult, error)
}

// Retriever fetches the top-k passages for a question.
type Retriever struct {
	k      int
	logger *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithK sets how many passages are retrieved.
// Default is DefaultK.
func WithK(k int) Option {
	return func(r *Retriever) error {
		if k < 1 {
			return fmt.Errorf("%w: got %d", ErrInvalidK, k)
		}
		r.k = k
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a Retriever.
func NewRetriever(opts ...Option) (*Retriever, error) {
	r := &Retriever{
		k:      DefaultK,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	r.logger = r.logger.With("component", "retriever")
	return r, nil
}

// K returns the configured retrieval depth.
func (r *Retriever) K() int {
	return r.k
}

// Retrieve returns at most K passages from idx ordered by descending
// similarity to question. An empty index yields an empty result.
func (r *Retriever) Retrieve(ctx context.Context, idx Index, question string) (core.RetrievalResult, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}

	start := time.Now()
	results, err := idx.Query(ctx, question, r.k)
	if err != nil {
		r.logger.Error("retrieval failed", "err", err)
		return nil, err
	}
	if len(results) > r.k {
		results = results[:r.k]
	}

	r.logger.Debug("retrieval complete",
		"k", r.k,
		"passages", len(results),
		"elapsed", time.Since(start))
	return results, nil
}
