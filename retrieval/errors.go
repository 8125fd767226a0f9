package retrieval

import "errors"

var (
	// ErrIndexRequired is returned when Retrieve is called without an index.
	ErrIndexRequired = errors.New("index required")

	// ErrInvalidK is returned when the retrieval depth is less than one.
	ErrInvalidK = errors.New("k must be at least 1")
)
