package llm

import (
	"context"
	"sync"
)

// MockResult is a canned completion for the MockProvider.
type MockResult struct {
	Text string
	Err  error
}

// MockProvider is a deterministic Provider for tests. It returns canned
// results in FIFO order and records every request.
type MockProvider struct {
	mu      sync.Mutex
	results []MockResult
	Calls   []Request
}

// NewMockProvider creates a MockProvider with the given canned results.
func NewMockProvider(results ...MockResult) *MockProvider {
	return &MockProvider{results: results}
}

func (m *MockProvider) Complete(_ context.Context, req Request) (*Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.results) == 0 {
		return nil, &ErrProviderUnavailable{}
	}
	r := m.results[0]
	m.results = m.results[1:]

	if r.Err != nil {
		return nil, r.Err
	}
	return &Completion{Text: r.Text, Model: "mock", StopReason: "end"}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// Add appends a canned result to the queue.
func (m *MockProvider) Add(r MockResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
}
