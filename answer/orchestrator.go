package answer

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
	// DefaultTemperature is the sampling temperature for answers.
	DefaultTemperature = 0.4

	// NoContextMessage is returned when retrieval found nothing to ground on.
	NoContextMessage = "I couldn't find anything in the loaded documents to answer that question."

	// EmptyQuestionMessage is returned for blank questions.
	EmptyQuestionMessage = "Please ask a question about your documents."

	// ErrorPrefix starts the text of an answer whose generation failed.
	ErrorPrefix = "Error during QA: "
)

// Orchestrator produces answers from a question and its retrieval.
// Safe for concurrent use.
type Orchestrator struct {
	generator   ai.Generator
	temperature float64
	logger      *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithTemperature sets the sampling temperature.
// Default is DefaultTemperature.
func WithTemperature(temperature float64) Option {
	return func(o *Orchestrator) error {
		if temperature < 0 || temperature > 2 {
			return fmt.Errorf("temperature %v out of range [0, 2]", temperature)
		}
		o.temperature = temperature
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates an Orchestrator around generator.
func NewOrchestrator(generator ai.Generator, opts ...Option) (*Orchestrator, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	o := &Orchestrator{
		generator:   generator,
		temperature: DefaultTemperature,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	o.logger = o.logger.With("component", "answer-orchestrator")
	return o, nil
}

// Temperature returns the configured sampling temperature.
func (o *Orchestrator) Temperature() float64 {
	return o.temperature
}

// Answer generates a response to question grounded in retrieval.
//
// A blank question or an empty retrieval short-circuits without calling the
// generator. A failed generator call yields an answer whose Err wraps
// core.ErrGeneration; the returned Answer is never nil.
func (o *Orchestrator) Answer(ctx context.Context, question string, retrieval core.RetrievalResult) *core.Answer {
	question = sanitize.Normalize(question)
	if question == "" {
		return &core.Answer{
			Text:    EmptyQuestionMessage,
			Sources: retrieval,
			Err:     fmt.Errorf("%w: question is empty", core.ErrEmptyInput),
		}
	}

	passages := sanitize.NormalizeAll(retrieval.Texts())
	if len(passages) == 0 {
		o.logger.Info("no grounding passages, skipping generation")
		return &core.Answer{Text: NoContextMessage, Sources: retrieval}
	}

	start := time.Now()
	text, err := o.generator.Complete(ctx, BuildSystemPrompt(passages), question, o.temperature)
	if err != nil {
		o.logger.Error("answer generation failed", "passages", len(passages), "err", err)
		return &core.Answer{
			Text:    ErrorPrefix + err.Error(),
			Sources: retrieval,
			Err:     fmt.Errorf("%w: %w", core.ErrGeneration, err),
		}
	}

	o.logger.Debug("answer generated", "passages", len(passages), "elapsed", time.Since(start))
	return &core.Answer{Text: strings.TrimSpace(text), Sources: retrieval}
}
