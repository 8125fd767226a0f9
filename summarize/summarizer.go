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

// Package summarize produces brief summaries of extracted document text
// with a single generation request per call.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/docrag/ai"
	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/sanitize"
)

const (
	// DefaultInstruction is the system instruction sent with every request.
	DefaultInstruction = "Summarize the document briefly."

	// DefaultTemperature is the sampling temperature for summaries.
	DefaultTemperature = 0.7

	// ErrorPrefix starts every summary that reports a failure.
	ErrorPrefix = "Error during summarization: "

	// NoContentMessage is returned when there is no text to summarize.
	NoContentMessage = "No content to summarize."
)

// Summarizer condenses text through one Generator call. Safe for concurrent use.
type Summarizer struct {
	generator   ai.Generator
	instruction string
	temperature float64
	logger      *slog.Logger
}

// Option configures a Summarizer.
type Option func(*Summarizer) error

// WithInstruction replaces the system instruction.
func WithInstruction(instruction string) Option {
	return func(s *Summarizer) error {
		if strings.TrimSpace(instruction) == "" {
			return ErrEmptyInstruction
		}
		s.instruction = instruction
		return nil
	}
}

// WithTemperature sets the sampling temperature.
// Default is DefaultTemperature.
func WithTemperature(temperature float64) Option {
	return func(s *Summarizer) error {
		if temperature < 0 || temperature > 2 {
			return fmt.Errorf("%w: got %v", ErrInvalidTemperature, temperature)
		}
		s.temperature = temperature
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Summarizer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSummarizer creates a Summarizer around generator.
func NewSummarizer(generator ai.Generator, opts ...Option) (*Summarizer, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	s := &Summarizer{
		generator:   generator,
		instruction: DefaultInstruction,
		temperature: DefaultTemperature,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.logger = s.logger.With("component", "summarizer")
	return s, nil
}

// Summarize returns a brief summary of text.
//
// It never returns an error: a failed request yields a string starting with
// ErrorPrefix, and text that is empty after normalization yields
// NoContentMessage without contacting the generator.
func (s *Summarizer) Summarize(ctx context.Context, text string) string {
	text = sanitize.Normalize(text)
	if text == "" {
		s.logger.Warn("nothing to summarize")
		return NoContentMessage
	}

	start := time.Now()
	summary, err := s.generator.Complete(ctx, s.instruction, text, s.temperature)
	if err != nil {
		s.logger.Error("summarization failed", "chars", len(text), "err", err)
		return ErrorPrefix + err.Error()
	}

	s.logger.Debug("summary generated", "chars", len(text), "elapsed", time.Since(start))
	return strings.TrimSpace(summary)
}

// SummarizeDocuments summarizes the combined text of every successfully
// extracted document, joining units with single spaces.
func (s *Summarizer) SummarizeDocuments(ctx context.Context, docs []*core.Document) string {
	return s.Summarize(ctx, CombinedText(docs))
}

// CombinedText joins the units of every extracted document with single spaces.
// Failed documents are skipped.
func CombinedText(docs []*core.Document) string {
	var parts []string
	for _, doc := range docs {
		if doc == nil || !doc.OK() {
			continue
		}
		parts = append(parts, doc.Units...)
	}
	return strings.Join(parts, " ")
}

// Failed reports whether summary reports a failure rather than a summary.
func Failed(summary string) bool {
	return strings.HasPrefix(summary, ErrorPrefix)
}
