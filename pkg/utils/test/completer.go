package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/medrag/pkg/llm"
)

// MockCompleter replays scripted completions and records every request.
type MockCompleter struct {
	// Responses are returned in order. The last one repeats once exhausted.
	Responses []string

	// Err is returned from every call when set.
	Err error

	// FailOnCall returns Err only on the given 1-based call number.
	FailOnCall int

	mu       sync.Mutex
	requests []llm.CompletionRequest
}

func NewMockCompleter(responses ...string) *MockCompleter {
	return &MockCompleter{Responses: responses}
}

func (m *MockCompleter) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	call := len(m.requests)

	if m.Err != nil && (m.FailOnCall == 0 || m.FailOnCall == call) {
		return "", m.Err
	}

	if len(m.Responses) == 0 {
		return "", nil
	}
	if call > len(m.Responses) {
		return m.Responses[len(m.Responses)-1], nil
	}
	return m.Responses[call-1], nil
}

// Requests returns a copy of the recorded requests.
func (m *MockCompleter) Requests() []llm.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns the number of completion calls made.
func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *MockCompleter) Close() error {
	return nil
}
