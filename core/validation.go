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

import (
	"fmt"
	"strings"
)

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Index must not be negative
//
// NOT validated:
//   - Origin (chunks built from raw strings have no source file)
//   - ID (0 is a valid hash value)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.Index < 0 {
		return fmt.Errorf("%w: negative index %d", ErrInvalidChunk, chunk.Index)
	}

	return nil
}

// ValidateIndexEntry validates an IndexEntry and its chunk.
func ValidateIndexEntry(entry *IndexEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if err := ValidateChunk(&entry.Chunk); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}

	if len(entry.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyVector)
	}

	return nil
}

// ValidateSession checks that a session has a namespace usable as a directory name.
func ValidateSession(session SessionContext) error {
	ns := session.Namespace
	if ns == "" {
		return fmt.Errorf("%w: empty namespace", ErrInvalidSession)
	}
	if ns == "." || ns == ".." || strings.ContainsAny(ns, `/\`) {
		return fmt.Errorf("%w: namespace %q is not a plain name", ErrInvalidSession, ns)
	}
	return nil
}
