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


package ai

import (
	"fmt"
	"strings"
	"time"
)

const (
	// OpenAIHost is the public OpenAI API endpoint.
	OpenAIHost = "https://api.openai.com/v1"

	// localToken is sent to OpenAI-compatible servers that don't require authentication.
	localToken = "none"
)

// Config holds configuration for AI service providers.
// Field tags allow loading from YAML files and environment variables.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string `yaml:"embedding_host" env:"EMBEDDING_HOST"`

	// GeneratorHost is the base URL for the chat completion service API.
	GeneratorHost string `yaml:"generator_host" env:"GENERATOR_HOST"`

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "text-embedding-3-small", "embeddinggemma"
	EmbeddingModel string `yaml:"embedding_model" env:"EMBEDDING_MODEL"`

	// GeneratorModel is the model identifier to use for answers and summaries.
	// Example: "gpt-4o-mini", "qwen2.5:3b"
	GeneratorModel string `yaml:"generator_model" env:"GENERATOR_MODEL"`

	// APIKey authenticates against the hosted API. Required for OpenAIHost.
	APIKey string `yaml:"-" env:"API_KEY"`

	// RequestTimeout bounds each individual request to either service.
	// Default: 60s
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`

	// MaxRetries is the total number of attempts per request, including the first.
	// Default: 3
	MaxRetries uint `yaml:"max_retries" env:"MAX_RETRIES"`

	// RetryDelay is the initial backoff between attempts.
	// Default: 500ms
	RetryDelay time.Duration `yaml:"retry_delay" env:"RETRY_DELAY"`

	// EmbeddingBatchSize caps how many texts go into one embedding request.
	// Default: 64
	EmbeddingBatchSize int `yaml:"embedding_batch_size" env:"EMBEDDING_BATCH_SIZE"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithGeneratorHost sets the generation service host URL.
func WithGeneratorHost(host string) ConfigOption {
	return func(c *Config) {
		c.GeneratorHost = host
	}
}

// WithHost sets both embedding and generator hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.GeneratorHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithGeneratorModel sets the generation model identifier.
func WithGeneratorModel(model string) ConfigOption {
	return func(c *Config) {
		c.GeneratorModel = model
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithRequestTimeout sets the per-request timeout.
func WithRequestTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.RequestTimeout = timeout
	}
}

// WithRetries sets the number of attempts and the initial delay between them.
func WithRetries(attempts uint, delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = attempts
		c.RetryDelay = delay
	}
}

// WithEmbeddingBatchSize sets the maximum number of texts per embedding request.
func WithEmbeddingBatchSize(size int) ConfigOption {
	return func(c *Config) {
		c.EmbeddingBatchSize = size
	}
}

// DefaultConfig returns a Config targeting the hosted OpenAI API.
// The API key is left empty and must be supplied by the caller.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:      OpenAIHost,
		GeneratorHost:      OpenAIHost,
		EmbeddingModel:     "text-embedding-3-small",
		GeneratorModel:     "gpt-4o-mini",
		RequestTimeout:     60 * time.Second,
		MaxRetries:         3,
		RetryDelay:         500 * time.Millisecond,
		EmbeddingBatchSize: 64,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example with a local OpenAI-compatible server:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434"),
//	    WithEmbeddingModel("embeddinggemma"),
//	    WithGeneratorModel("qwen2.5:3b"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.EmbeddingHost = withVersionSuffix(c.EmbeddingHost)
	c.GeneratorHost = withVersionSuffix(c.GeneratorHost)
	c.APIKey = strings.TrimSpace(c.APIKey)
}

func withVersionSuffix(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// RequiresAPIKey reports whether either host is the hosted OpenAI API.
func (c *Config) RequiresAPIKey() bool {
	return isHosted(c.EmbeddingHost) || isHosted(c.GeneratorHost)
}

func isHosted(host string) bool {
	return strings.Contains(host, "api.openai.com")
}

// Token returns the bearer token to send, falling back to a placeholder
// for local servers.
func (c *Config) Token() string {
	if c.APIKey == "" {
		return localToken
	}
	return c.APIKey
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	// Normalize first to ensure hosts are in correct format
	c.Normalize()

	if c.EmbeddingHost == "" {
		return fmt.Errorf("%w: EmbeddingHost is required", ErrInvalidConfig)
	}
	if c.GeneratorHost == "" {
		return fmt.Errorf("%w: GeneratorHost is required", ErrInvalidConfig)
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("%w: EmbeddingModel is required", ErrInvalidConfig)
	}
	if c.GeneratorModel == "" {
		return fmt.Errorf("%w: GeneratorModel is required", ErrInvalidConfig)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: RequestTimeout must be positive", ErrInvalidConfig)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("%w: MaxRetries must be at least 1", ErrInvalidConfig)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: RetryDelay cannot be negative", ErrInvalidConfig)
	}
	if c.EmbeddingBatchSize < 1 {
		return fmt.Errorf("%w: EmbeddingBatchSize must be at least 1", ErrInvalidConfig)
	}
	if c.RequiresAPIKey() && c.APIKey == "" {
		return fmt.Errorf("%w: an API key is required for %s", ErrMissingCredential, OpenAIHost)
	}
	return nil
}
