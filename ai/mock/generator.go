package mock

import (
	"context"
	"sync"
)

// GenerateCall records the arguments of one Complete call.
type GenerateCall struct {
	System      string
	User        string
	Temperature float64
}

// MockGenerator is a test double for ai.Generator.
// By default it echoes a fixed response. Safe for concurrent use.
type MockGenerator struct {
	// CompleteFunc is called by Complete if set.
	CompleteFunc func(ctx context.Context, system, user string, temperature float64) (string, error)

	// Response is returned when CompleteFunc is nil.
	Response string

	mu    sync.Mutex
	calls []GenerateCall
}

// NewMockGenerator creates a mock generator returning response.
func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{Response: response}
}

// NewFailingGenerator creates a mock generator whose every call returns err.
func NewFailingGenerator(err error) *MockGenerator {
	return &MockGenerator{
		CompleteFunc: func(ctx context.Context, system, user string, temperature float64) (string, error) {
			return "", err
		},
	}
}

// Complete records the call and returns the injected or fixed response.
func (m *MockGenerator) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, GenerateCall{System: system, User: user, Temperature: temperature})
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, system, user, temperature)
	}
	return m.Response, nil
}

// CallCount returns the number of Complete calls.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall returns the most recent call, or false if there was none.
func (m *MockGenerator) LastCall() (GenerateCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return GenerateCall{}, false
	}
	return m.calls[len(m.calls)-1], true
}

// Reset clears recorded calls and injected behavior.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.CompleteFunc = nil
}
