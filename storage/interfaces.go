package storage

import (
	"context"

	"github.com/poiesic/docrag/core"
)

// VectorStore holds the index entries of one session namespace.
// Implementations must be safe for concurrent readers; writes are
// expected from a single builder at a time.
type VectorStore interface {
	// Replace atomically swaps the store's contents for entries.
	// Readers see either the previous contents or all of entries, never a mix.
	// On error the previous contents remain visible.
	Replace(ctx context.Context, entries []*core.IndexEntry) error

	// FindSimilar returns up to limit entries ordered by descending dot product
	// with vector. Entries with equal scores keep insertion order.
	// Returns ErrInvalidQuery if limit is less than 1.
	FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.SearchResult, error)

	// Chunks returns the visible chunks in insertion order.
	Chunks(ctx context.Context) ([]core.Chunk, error)

	// Count returns the number of visible entries.
	Count(ctx context.Context) (int, error)

	// Dimensions returns the vector length of the visible entries, or 0 if empty.
	Dimensions(ctx context.Context) (int, error)

	// Close closes the store and releases resources.
	Close() error
}

// StoreFactory opens the vector store for a session namespace.
type StoreFactory interface {
	// Open returns the store for namespace, creating it on first use.
	Open(namespace string) (VectorStore, error)
}
