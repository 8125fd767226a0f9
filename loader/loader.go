package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/docrag/core"
	"github.com/unidoc/unioffice/common/license"
)

// Extractor reads one file and returns its text units in source order.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, path string) ([]string, error)

// Extract calls f.
func (f ExtractorFunc) Extract(ctx context.Context, path string) ([]string, error) {
	return f(ctx, path)
}

// Loader dispatches files to extractors by extension.
type Loader struct {
	extractors map[string]Extractor
	logger     *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader) error

// WithExtractor registers extractor for ext, replacing any built-in one.
// The extension is matched case-insensitively and may omit the leading dot.
func WithExtractor(ext string, extractor Extractor) Option {
	return func(l *Loader) error {
		if extractor == nil {
			return fmt.Errorf("nil extractor for %q", ext)
		}
		l.extractors[normalizeExt(ext)] = extractor
		return nil
	}
}

// WithOfficeLicenseKey registers a unidoc metered key and switches .docx
// files to the unioffice extractor. An empty key is ignored and .docx files
// keep the built-in extractor.
func WithOfficeLicenseKey(key string) Option {
	return func(l *Loader) error {
		if key == "" {
			return nil
		}
		if err := license.SetMeteredKey(key); err != nil {
			return fmt.Errorf("office license: %w", err)
		}
		l.extractors[".docx"] = ExtractorFunc(ExtractDOCXOffice)
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a Loader with the built-in extractors registered.
func NewLoader(opts ...Option) (*Loader, error) {
	l := &Loader{
		extractors: map[string]Extractor{
			".pdf":  ExtractorFunc(ExtractPDF),
			".txt":  ExtractorFunc(ExtractText),
			".md":   ExtractorFunc(ExtractText),
			".docx": ExtractorFunc(ExtractDOCX),
			".xlsx": ExtractorFunc(ExtractXLSX),
			".html": ExtractorFunc(ExtractHTML),
			".htm":  ExtractorFunc(ExtractHTML),
			".pptx": ExtractorFunc(ExtractPPTX),
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	l.logger = l.logger.With("component", "loader")
	return l, nil
}

// Supported returns the registered extensions in sorted order.
func (l *Loader) Supported() []string {
	exts := make([]string, 0, len(l.extractors))
	for ext := range l.extractors {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Supports reports whether path has a registered extension.
func (l *Loader) Supports(path string) bool {
	_, ok := l.extractors[normalizeExt(filepath.Ext(path))]
	return ok
}

// Load extracts path into a Document. Failures are reported on the returned
// Document, wrapping core.ErrUnsupportedFileType or core.ErrExtractionFailure.
func (l *Loader) Load(ctx context.Context, path string) *core.Document {
	ext := normalizeExt(filepath.Ext(path))
	extractor, ok := l.extractors[ext]
	if !ok {
		l.logger.Warn("unsupported file type", "path", path, "ext", ext)
		return core.FailedDocument(path, fmt.Errorf("%w: %q", core.ErrUnsupportedFileType, ext))
	}

	info, err := os.Stat(path)
	if err != nil {
		return l.failed(path, err)
	}
	if info.IsDir() {
		return l.failed(path, errors.New("is a directory"))
	}

	start := time.Now()
	units, err := extractor.Extract(ctx, path)
	if err != nil {
		return l.failed(path, err)
	}

	l.logger.Debug("extracted", "path", path, "units", len(units), "elapsed", time.Since(start))
	return core.NewDocument(path, units)
}

func (l *Loader) failed(path string, err error) *core.Document {
	l.logger.Error("extraction failed", "path", path, "err", err)
	return core.FailedDocument(path, fmt.Errorf("%w: %w", core.ErrExtractionFailure, err))
}

// BatchResult holds one Document per regular file of a folder, in name order.
type BatchResult struct {
	Documents []*core.Document
}

// Loaded returns the successfully extracted documents.
func (b *BatchResult) Loaded() []*core.Document {
	var out []*core.Document
	for _, doc := range b.Documents {
		if doc.OK() {
			out = append(out, doc)
		}
	}
	return out
}

// Failures returns the documents that could not be extracted.
func (b *BatchResult) Failures() []*core.Document {
	var out []*core.Document
	for _, doc := range b.Documents {
		if !doc.OK() {
			out = append(out, doc)
		}
	}
	return out
}

// LoadBatch loads every regular file directly inside folder. Subdirectories
// are skipped and per-file failures are collected without stopping the batch.
// Only a missing or unreadable folder, or a cancelled context, returns an error.
func (l *Loader) LoadBatch(ctx context.Context, folder string) (*BatchResult, error) {
	info, err := os.Stat(folder)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Error("folder not found", "path", folder)
			return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, folder)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotAFolder, folder)
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Stat follows symlinks, so linked files are loaded and linked folders skipped
		path := filepath.Join(folder, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		result.Documents = append(result.Documents, l.Load(ctx, path))
	}

	l.logger.Info("batch loaded",
		"folder", folder,
		"files", len(result.Documents),
		"failed", len(result.Failures()))
	return result, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
