// Package index builds and queries session-scoped embedding indexes.
//
// An EmbeddingIndex pairs an ai.Embedder with a storage.StoreFactory. Build
// embeds a batch of chunks concurrently on an ants worker pool, normalizes
// every vector to unit length and swaps the result into the session's store
// in one step. Query embeds the question the same way, so the store's dot
// product ranking is cosine similarity.
//
// Builds are all-or-nothing. Any embedding failure surfaces as an error
// wrapping core.ErrEmbedding and leaves the store untouched.
package index
