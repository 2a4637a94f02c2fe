package persistence

import (
	"context"
	"sync"
)

// MemoryBlobStore keeps the snapshot in process memory. Used for tests
// and for running the demo without external dependencies.
type MemoryBlobStore struct {
	mu   sync.Mutex
	blob []byte
}

// NewMemoryBlobStore returns an empty in-memory blob store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{}
}

func (m *MemoryBlobStore) Load(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blob == nil {
		return nil, nil
	}
	out := make([]byte, len(m.blob))
	copy(out, m.blob)
	return out, nil
}

func (m *MemoryBlobStore) Save(_ context.Context, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob = make([]byte, len(blob))
	copy(m.blob, blob)
	return nil
}

func (m *MemoryBlobStore) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob = nil
	return nil
}

func (m *MemoryBlobStore) Ping(_ context.Context) error { return nil }

func (m *MemoryBlobStore) Close() {}
