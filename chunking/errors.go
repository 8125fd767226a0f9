package chunking

import "errors"

var (
	// ErrInvalidMaxSize is returned when the maximum chunk size is less than 1.
	ErrInvalidMaxSize = errors.New("max chunk size must be at least 1")

	// ErrInvalidOverlap is returned when the overlap is negative.
	ErrInvalidOverlap = errors.New("chunk overlap cannot be negative")

	// ErrOverlapTooLarge is returned when the overlap is not smaller than the maximum size.
	ErrOverlapTooLarge = errors.New("chunk overlap must be smaller than max chunk size")

	// ErrNoSeparators is returned when an empty separator list is configured.
	ErrNoSeparators = errors.New("at least one separator required")
)
