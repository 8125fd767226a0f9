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


package core

import "errors"

// Pipeline error kinds
var (
	// ErrUnsupportedFileType indicates no extractor handles the file's extension.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrExtractionFailure indicates a supported file could not be read or parsed.
	ErrExtractionFailure = errors.New("extraction failed")

	// ErrEmptyInput indicates there were no documents, chunks or text to work on.
	ErrEmptyInput = errors.New("empty input")

	// ErrEmbedding indicates the embedding service failed or returned unusable vectors.
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration indicates the generation service failed.
	ErrGeneration = errors.New("generation failed")
)

// Domain validation errors
var (
	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidEntry indicates an IndexEntry failed validation.
	ErrInvalidEntry = errors.New("invalid index entry")

	// ErrEmptyContent indicates the Text field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyVector indicates an entry has no embedding.
	ErrEmptyVector = errors.New("vector cannot be empty")

	// ErrInvalidSession indicates a SessionContext has no usable namespace.
	ErrInvalidSession = errors.New("invalid session")
)
