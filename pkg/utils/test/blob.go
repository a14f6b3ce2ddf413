package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/medrag/pkg/blob"
)

// MockBlobStore is an in-memory blob.Store with injectable failures.
type MockBlobStore struct {
	ReadErr  error
	WriteErr error

	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{blobs: make(map[string][]byte)}
}

func (m *MockBlobStore) Read(_ context.Context, key string) ([]byte, error) {
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, blob.ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MockBlobStore) Write(_ context.Context, key string, data []byte) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	m.blobs[key] = stored
	return nil
}

func (m *MockBlobStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

// Keys returns the stored keys.
func (m *MockBlobStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.blobs))
	for k := range m.blobs {
		keys = append(keys, k)
	}
	return keys
}

func (m *MockBlobStore) Close() error {
	return nil
}
