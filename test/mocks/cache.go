package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amazongreen/storefront/internal/cache"
)

// MockCache is an in-memory mock implementation of the Cache interface
// Used for testing without requiring a real Redis instance
type MockCache struct {
	data map[string]string
	mu   sync.RWMutex

	// Err, when set, is returned by every operation.
	Err error

	Gets int
	Sets int
}

// NewMockCache creates a new mock cache instance
func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string]string),
	}
}

// Get retrieves a value from the mock cache
func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Gets++
	if m.Err != nil {
		return "", m.Err
	}
	val, exists := m.data[key]
	if !exists {
		return "", cache.ErrMiss
	}
	return val, nil
}

// Set stores a value in the mock cache
func (m *MockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Sets++
	if m.Err != nil {
		return m.Err
	}
	switch v := value.(type) {
	case string:
		m.data[key] = v
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	// Note: expiration is ignored in mock (no TTL implementation)
	return nil
}

// Del deletes keys from the mock cache
func (m *MockCache) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

// Has reports whether a key is stored.
func (m *MockCache) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.data[key]
	return ok
}

// Health returns Err
func (m *MockCache) Health(ctx context.Context) error {
	return m.Err
}

// Close is a no-op for mock
func (m *MockCache) Close() error {
	return nil
}

// Clear resets the mock cache (useful for tests)
func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string]string)
}
