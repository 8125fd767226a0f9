package index

import "errors"

var (
	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrStoreFactoryRequired is returned when a store factory is not provided.
	ErrStoreFactoryRequired = errors.New("store factory required")

	// ErrInvalidK is returned when a query asks for fewer than one result.
	ErrInvalidK = errors.New("k must be at least 1")
)
