package loader

import "errors"

var (
	// ErrFolderNotFound is returned by LoadBatch when the folder does not exist.
	ErrFolderNotFound = errors.New("folder not found")

	// ErrNotAFolder is returned by LoadBatch when the path is not a directory.
	ErrNotAFolder = errors.New("not a folder")
)
