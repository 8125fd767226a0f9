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


package mock

import (
	"sync/atomic"

	"github.com/poiesic/docrag/ai"
)

// MockProvider is a test double for ai.AIProvider holding a MockEmbedder
// and a MockGenerator. It records whether Close was called and can be made
// to fail on Close.
type MockProvider struct {
	embedder  *MockEmbedder
	generator *MockGenerator
	closed    atomic.Int32

	// CloseErr is returned by Close when set.
	CloseErr error
}

// NewMockProvider returns a provider whose generator always answers "mock response".
//
// Returns ai.AIProvider for consistency with production constructors; assert
// to *MockProvider to reach the concrete services.
func NewMockProvider() ai.AIProvider {
	return NewMockProviderWithServices(NewMockEmbedder(), NewMockGenerator("mock response"))
}

// NewMockProviderWithServices wraps the given services.
func NewMockProviderWithServices(embedder *MockEmbedder, generator *MockGenerator) ai.AIProvider {
	return &MockProvider{
		embedder:  embedder,
		generator: generator,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Generator returns the mock generator.
func (p *MockProvider) Generator() ai.Generator {
	return p.generator
}

// Close counts the call and returns CloseErr.
func (p *MockProvider) Close() error {
	p.closed.Add(1)
	return p.CloseErr
}

// CloseCount returns how many times Close was called.
func (p *MockProvider) CloseCount() int {
	return int(p.closed.Load())
}

// GetMockEmbedder returns the concrete embedder for assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockGenerator returns the concrete generator for assertions.
func (p *MockProvider) GetMockGenerator() *MockGenerator {
	return p.generator
}
