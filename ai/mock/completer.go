package mock

import (
	"context"
	"sync"
)

// MockCompleter is a test double for ai.Completer.
// It records prompts and returns a canned response.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, Response is returned.
	CompleteFunc func(ctx context.Context, prompt string) (string, error)

	// Response is the canned completion returned when CompleteFunc is nil.
	Response string

	mu        sync.Mutex
	prompts   []string
	callCount int
}

// NewMockCompleter creates a mock completer returning response.
// Returns the concrete type so tests can inspect recorded prompts.
func NewMockCompleter(response string) *MockCompleter {
	return &MockCompleter{Response: response}
}

// Complete records the prompt and returns the canned response.
func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.callCount++
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return m.Response, nil
}

// Prompts returns every prompt passed to Complete, in order.
func (m *MockCompleter) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// LastPrompt returns the most recent prompt, or "" when none were recorded.
func (m *MockCompleter) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// CallCount returns the number of Complete calls.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
