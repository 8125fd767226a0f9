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

// Package storage provides the storage abstraction layer for docrag indexes.
//
// This package defines the VectorStore contract that decouples the embedding
// index from the engine that persists it, plus the binary encoding of index
// entries shared by implementations.
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return interfaces:
//
//	store, err := badger.NewStore(dir)  // returns storage.VectorStore
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Namespaces
//
// Each chat session owns one namespace. A StoreFactory maps namespaces to
// stores; the badger implementation gives every namespace its own directory
// so no session can read another session's entries.
//
// # Atomic Replacement
//
// An index is never partially updated. Replace stages the new entries and
// makes them visible in a single commit, so a failed build leaves the
// previous contents (or nothing) in place.
//
// # Context Support
//
// All store methods accept context.Context for cancellation.
package storage
