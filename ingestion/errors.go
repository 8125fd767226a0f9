package ingestion

import "errors"

var (
	// ErrLoaderRequired is returned when a document loader is not provided.
	ErrLoaderRequired = errors.New("document loader required")

	// ErrChunkerRequired is returned when a chunker is not provided.
	ErrChunkerRequired = errors.New("chunker required")

	// ErrIndexerRequired is returned when an embedding indexer is not provided.
	ErrIndexerRequired = errors.New("indexer required")
)
