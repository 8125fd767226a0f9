package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ExtractionStatus reports whether a document's text could be extracted.
type ExtractionStatus int

const (
	// StatusOK means the document's units were extracted successfully.
	StatusOK ExtractionStatus = iota + 1
	// StatusFailed means extraction failed; Reason explains why.
	StatusFailed
)

func (s ExtractionStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Document is one source file's extracted content.
// Units hold the raw text in source order (one per page, slide, sheet, etc).
type Document struct {
	Origin string
	Units  []string
	Status ExtractionStatus
	Reason error // set when Status is StatusFailed
}

// OK reports whether the document was extracted successfully.
func (d *Document) OK() bool {
	return d != nil && d.Status == StatusOK
}

// NewDocument returns a successfully extracted document.
func NewDocument(origin string, units []string) *Document {
	return &Document{Origin: origin, Units: units, Status: StatusOK}
}

// FailedDocument returns a document carrying an extraction failure.
func FailedDocument(origin string, reason error) *Document {
	return &Document{Origin: origin, Status: StatusFailed, Reason: reason}
}

// Chunk is a bounded span of normalized document text.
type Chunk struct {
	Id     ID
	Origin string // source document, for traceability
	Index  int    // position within the source document
	Text   string
}

// IndexEntry pairs a chunk with its embedding vector.
type IndexEntry struct {
	Chunk  Chunk
	Vector []float32
}

// SearchResult is a chunk match from vector similarity search.
type SearchResult struct {
	Chunk *Chunk
	Score float32
}

// RetrievalResult is the ordered result of a single query,
// sorted by non-increasing Score.
type RetrievalResult []*SearchResult

// Texts returns the chunk texts in result order.
func (r RetrievalResult) Texts() []string {
	texts := make([]string, 0, len(r))
	for _, res := range r {
		texts = append(texts, res.Chunk.Text)
	}
	return texts
}

// Answer is generated text plus the retrieval that grounded it.
// Err is non-nil when generation failed; Text then holds a displayable message.
type Answer struct {
	Text    string
	Sources RetrievalResult
	Err     error
}

// Failed reports whether the answer carries an error marker.
func (a *Answer) Failed() bool {
	return a.Err != nil
}

// SessionContext identifies a chat session and its private index namespace.
type SessionContext struct {
	ID        string
	Namespace string
}

// NewSessionContext creates a session context whose namespace is the session ID.
func NewSessionContext(id string) SessionContext {
	return SessionContext{ID: id, Namespace: id}
}
