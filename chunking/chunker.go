package chunking

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/sanitize"
)

const (
	// DefaultMaxSize is the default maximum chunk length in characters.
	DefaultMaxSize = 1000

	// DefaultOverlap is the default number of characters shared by adjacent chunks.
	DefaultOverlap = 200

	// unitSeparator joins a document's units before splitting.
	unitSeparator = "\n\n"
)

// DefaultSeparators lists split points from coarsest to finest.
// The trailing empty string splits between individual characters.
var DefaultSeparators = []string{"\n\n", "\n", ".", "!", "?", ",", " ", ""}

// Chunker splits documents into overlapping passages bounded by a maximum size.
// Lengths are counted in characters (Unicode code points).
// A Chunker holds no mutable state and is safe for concurrent use.
type Chunker struct {
	maxSize    int
	overlap    int
	separators []string
	logger     *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithMaxSize sets the maximum chunk size in characters.
// Default is DefaultMaxSize.
func WithMaxSize(size int) Option {
	return func(c *Chunker) error {
		if size < 1 {
			return ErrInvalidMaxSize
		}
		c.maxSize = size
		return nil
	}
}

// WithOverlap sets how many characters adjacent chunks share.
// Default is DefaultOverlap.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) error {
		if overlap < 0 {
			return ErrInvalidOverlap
		}
		c.overlap = overlap
		return nil
	}
}

// WithSeparators replaces the separator priority list.
// Without a trailing empty string, pieces that no separator can reduce
// are emitted whole even when they exceed the maximum size.
func WithSeparators(separators []string) Option {
	return func(c *Chunker) error {
		if len(separators) == 0 {
			return ErrNoSeparators
		}
		c.separators = append([]string(nil), separators...)
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewChunker creates a chunker with the default policy (1000 characters, 200 overlap)
// and applies the provided options.
func NewChunker(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		maxSize:    DefaultMaxSize,
		overlap:    DefaultOverlap,
		separators: DefaultSeparators,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.overlap >= c.maxSize {
		return nil, ErrOverlapTooLarge
	}

	c.logger = c.logger.With("component", "chunker")
	return c, nil
}

// MaxSize returns the configured maximum chunk size.
func (c *Chunker) MaxSize() int {
	return c.maxSize
}

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Chunk splits every successfully extracted document into normalized chunks.
// Chunks come back in document order and, within a document, in source order.
// Failed documents are skipped. An empty document list yields an empty result
// and a warning rather than an error.
func (c *Chunker) Chunk(documents []*core.Document) []core.Chunk {
	chunks := []core.Chunk{}
	if len(documents) == 0 {
		c.logger.Warn("no documents to chunk")
		return chunks
	}

	for _, doc := range documents {
		if !doc.OK() {
			if doc != nil {
				c.logger.Debug("skipping failed document", "origin", doc.Origin, "reason", doc.Reason)
			}
			continue
		}

		index := 0
		for _, text := range c.SplitText(strings.Join(doc.Units, unitSeparator)) {
			chunks = append(chunks, core.Chunk{
				Id:     core.IDFromContent(text),
				Origin: doc.Origin,
				Index:  index,
				Text:   text,
			})
			index++
		}
	}

	if len(chunks) == 0 {
		c.logger.Warn("documents produced no chunks", "documents", len(documents))
	}
	return chunks
}

// SplitText splits a single text into normalized passages, dropping any that
// are empty after normalization.
func (c *Chunker) SplitText(text string) []string {
	text = sanitize.Clean(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	pieces := c.split(text, c.separators)
	out := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		if n := sanitize.Normalize(piece); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// split recursively breaks text on the coarsest separator it contains,
// re-splitting any piece still longer than maxSize with the remaining separators.
func (c *Chunker) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var finer []string
	for i, sep := range separators {
		if sep == "" {
			separator = ""
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			finer = separators[i+1:]
			break
		}
	}

	var result, fitting []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if runeLen(piece) <= c.maxSize {
			fitting = append(fitting, piece)
			continue
		}

		if len(fitting) > 0 {
			result = append(result, c.merge(fitting)...)
			fitting = nil
		}
		if len(finer) == 0 {
			// indivisible with the configured separators
			result = append(result, piece)
		} else {
			result = append(result, c.split(piece, finer)...)
		}
	}

	if len(fitting) > 0 {
		result = append(result, c.merge(fitting)...)
	}
	return result
}

// merge packs consecutive pieces into chunks of at most maxSize characters.
// When a chunk is emitted, pieces are dropped from its front until at most
// overlap characters remain, and those carry over into the next chunk.
func (c *Chunker) merge(pieces []string) []string {
	var chunks []string
	var window []string
	total := 0

	for _, piece := range pieces {
		length := runeLen(piece)
		if total+length > c.maxSize && len(window) > 0 {
			if chunk := strings.TrimSpace(strings.Join(window, "")); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for len(window) > 0 && (total > c.overlap || total+length > c.maxSize) {
				total -= runeLen(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += length
	}

	if chunk := strings.TrimSpace(strings.Join(window, "")); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// splitKeepingSeparator splits text after each occurrence of sep, so every
// piece keeps its trailing separator. An empty sep splits into characters.
func splitKeepingSeparator(text, sep string) []string {
	var parts []string
	if sep == "" {
		parts = strings.Split(text, "")
	} else {
		parts = strings.SplitAfter(text, sep)
	}

	pieces := parts[:0]
	for _, p := range parts {
		if p != "" {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
