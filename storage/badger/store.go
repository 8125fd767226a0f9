package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/storage"
)

// Store implements storage.VectorStore on a single Backend.
//
// Entries are written under a fresh generation prefix and become visible
// only when the metadata key is switched to that generation, so a failed
// Replace never exposes a partial index.
type Store struct {
	backend *Backend
	ownsDB  bool
	writeMu sync.Mutex
	logger  *slog.Logger
}

var _ storage.VectorStore = (*Store)(nil)

// newStore is an internal constructor that returns the concrete type.
func newStore(backend *Backend, ownsDB bool) *Store {
	return &Store{
		backend: backend,
		ownsDB:  ownsDB,
		logger:  backend.logger.With("component", "vector-store"),
	}
}

// NewStore opens (or creates) a persisted vector store in dir.
//
// Returns storage.VectorStore interface to enforce abstraction.
func NewStore(dir string) (storage.VectorStore, error) {
	backend, err := OpenBackend(dir, false)
	if err != nil {
		return nil, err
	}
	return newStore(backend, true), nil
}

// NewStoreWithBackend creates a store on an existing backend.
// The caller remains responsible for closing the backend.
func NewStoreWithBackend(backend *Backend) (storage.VectorStore, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return newStore(backend, false), nil
}

// readMeta loads the index metadata within tx.
func readMeta(tx *badger.Txn) (indexMeta, error) {
	item, err := tx.Get([]byte(indexMetaKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return indexMeta{}, nil
	}
	if err != nil {
		return indexMeta{}, err
	}

	var meta indexMeta
	err = item.Value(func(val []byte) error {
		var err error
		meta, err = unmarshalIndexMeta(val)
		return err
	})
	return meta, err
}

func (s *Store) currentMeta() (indexMeta, error) {
	var meta indexMeta
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		meta, err = readMeta(tx)
		return err
	}, false)
	return meta, err
}

func (s *Store) checkOpen() error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return nil
}

// Replace atomically swaps the store's contents for entries.
func (s *Store) Replace(ctx context.Context, entries []*core.IndexEntry) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	dims := 0
	for i, entry := range entries {
		if err := core.ValidateIndexEntry(entry); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if i == 0 {
			dims = len(entry.Vector)
		} else if len(entry.Vector) != dims {
			return fmt.Errorf("%w: entry %d has %d dimensions, expected %d",
				storage.ErrDimensionMismatch, i, len(entry.Vector), dims)
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	previous, err := s.currentMeta()
	if err != nil {
		return err
	}
	next := indexMeta{
		generation: previous.generation + 1,
		count:      uint64(len(entries)),
		dimensions: uint64(dims),
	}

	if err := s.stage(ctx, next.generation, entries); err != nil {
		s.dropGeneration(next.generation)
		return err
	}

	// Switch visibility in a single commit
	err = s.backend.WithTx(func(tx *badger.Txn) error {
		return tx.Set([]byte(indexMetaKey), next.marshal())
	}, true)
	if err != nil {
		s.dropGeneration(next.generation)
		return err
	}

	if previous.generation > 0 {
		s.dropGeneration(previous.generation)
	}

	s.logger.Debug("replaced index", "generation", next.generation, "entries", len(entries), "dimensions", dims)
	return nil
}

// stage writes entries under generation without making them visible.
func (s *Store) stage(ctx context.Context, generation uint64, entries []*core.IndexEntry) error {
	wb := s.backend.db.NewWriteBatch()
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			wb.Cancel()
			return err
		}
		if err := wb.Set(makeEntryKey(generation, i), storage.MarshalEntry(entry)); err != nil {
			wb.Cancel()
			return err
		}
	}
	return wb.Flush()
}

// dropGeneration removes every entry of generation. Failures are logged;
// orphaned entries are invisible and reclaimed by the next successful drop.
func (s *Store) dropGeneration(generation uint64) {
	if err := s.backend.db.DropPrefix(makeGenerationPrefix(generation)); err != nil {
		s.logger.Warn("failed to drop index generation", "generation", generation, "err", err)
	}
}

// scan calls fn for every visible entry in position order. check, when set,
// sees the metadata first and may reject the scan.
func (s *Store) scan(ctx context.Context, check func(meta indexMeta) error, fn func(entry *core.IndexEntry)) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		meta, err := readMeta(tx)
		if err != nil {
			return err
		}
		if meta.count == 0 {
			return nil
		}
		if check != nil {
			if err := check(meta); err != nil {
				return err
			}
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeGenerationPrefix(meta.generation)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Stop at count so leftovers from an abandoned staging pass stay hidden
		seen := uint64(0)
		for iter.Rewind(); iter.Valid() && seen < meta.count; iter.Next() {
			seen++
			if err := ctx.Err(); err != nil {
				return err
			}

			var entry *core.IndexEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			fn(entry)
		}

		return nil
	}, false)
}

// FindSimilar returns the limit entries with the highest dot product against vector.
func (s *Store) FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.SearchResult, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be at least 1, got %d", storage.ErrInvalidQuery, limit)
	}
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var results []*core.SearchResult

	checkDims := func(meta indexMeta) error {
		if uint64(len(vector)) != meta.dimensions {
			return fmt.Errorf("%w: query has %d dimensions, index has %d",
				storage.ErrDimensionMismatch, len(vector), meta.dimensions)
		}
		return nil
	}
	err := s.scan(ctx, checkDims, func(entry *core.IndexEntry) {
		chunk := entry.Chunk
		results = append(results, &core.SearchResult{
			Chunk: &chunk,
			Score: dotProduct(vector, entry.Vector),
		})
	})
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending, keeping insertion order for ties
	slices.SortStableFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Chunks returns the visible chunks in the order they were stored.
func (s *Store) Chunks(ctx context.Context) ([]core.Chunk, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var chunks []core.Chunk
	err := s.scan(ctx, nil, func(entry *core.IndexEntry) {
		chunks = append(chunks, entry.Chunk)
	})
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// Count returns the number of visible entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	meta, err := s.currentMeta()
	if err != nil {
		return 0, err
	}
	return int(meta.count), nil
}

// Dimensions returns the vector length of the visible entries.
func (s *Store) Dimensions(ctx context.Context) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	meta, err := s.currentMeta()
	if err != nil {
		return 0, err
	}
	return int(meta.dimensions), nil
}

// Close closes the underlying backend if the store opened it.
func (s *Store) Close() error {
	if !s.ownsDB || s.backend.IsClosed() {
		return nil
	}
	return s.backend.Close()
}
