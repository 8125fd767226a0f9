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


package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/docrag/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client llms.Model
	policy requestPolicy
	logger *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.GeneratorHost),
		openai.WithToken(config.Token()),
		openai.WithModel(config.GeneratorModel),
	)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "openai-generator")
	return &Generator{
		client: client,
		policy: newRequestPolicy(config, logger),
		logger: logger,
	}, nil
}

func (g *Generator) setLogger(logger *slog.Logger) {
	g.logger = logger
	g.policy.logger = logger
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Complete sends the system instruction and user content as a two-message
// conversation and returns the first choice's text.
func (g *Generator) Complete(ctx context.Context, systemInstruction, userContent string, temperature float64) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemInstruction),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(userContent),
			},
		},
	}

	g.logger.Debug("generating completion",
		"system_length", len(systemInstruction),
		"user_length", len(userContent),
		"temperature", temperature)

	text, err := do(ctx, g.policy, "complete", func(ctx context.Context) (string, error) {
		response, err := g.client.GenerateContent(ctx, content, llms.WithTemperature(temperature))
		if err != nil {
			return "", err
		}
		if len(response.Choices) < 1 {
			return "", ai.ErrEmptyResponse
		}
		return response.Choices[0].Content, nil
	})
	if err != nil {
		g.logger.Error("failed to generate completion", "err", err)
		return "", err
	}

	return text, nil
}
