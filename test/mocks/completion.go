package mocks

import (
	"context"
	"sync"

	"github.com/amazongreen/storefront/internal/completion"
)

// MockCompleter replays canned completions in order.
type MockCompleter struct {
	mu sync.Mutex

	// Responses are returned one per call. Once exhausted the last one repeats.
	Responses []string
	// Err, when set, is returned by every call.
	Err error

	Requests []completion.Request
}

// Complete records the request and returns the next canned response.
func (m *MockCompleter) Complete(_ context.Context, req completion.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	i := len(m.Requests) - 1
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	return m.Responses[i], nil
}
