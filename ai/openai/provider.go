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
	"log/slog"

	"github.com/poiesic/docrag/ai"
)

// Provider bundles an Embedder and a Generator built from one ai.Config.
type Provider struct {
	config    *ai.Config
	embedder  *Embedder
	generator *Generator
	logger    *slog.Logger
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithLogger sets the logger shared by the provider and its services.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProvider validates config and connects both services. A missing API
// key for the hosted service is reported here rather than on first request.
//
// Returns ai.AIProvider so callers stay independent of this package.
func NewProvider(config *ai.Config, opts ...ProviderOption) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{config: config, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}
	embedder.setLogger(p.logger.With("component", "openai-embedder"))

	generator, err := newGenerator(config)
	if err != nil {
		return nil, err
	}
	generator.setLogger(p.logger.With("component", "openai-generator"))

	p.embedder = embedder
	p.generator = generator
	p.logger = p.logger.With("component", "openai-provider")
	p.logger.Debug("provider ready",
		"embedding_host", config.EmbeddingHost,
		"embedding_model", config.EmbeddingModel,
		"generator_host", config.GeneratorHost,
		"generator_model", config.GeneratorModel)
	return p, nil
}

// Embedder returns the embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Generator returns the chat completion service.
func (p *Provider) Generator() ai.Generator {
	return p.generator
}

// Close releases the provider. The HTTP clients need no cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("provider closed")
	return nil
}
