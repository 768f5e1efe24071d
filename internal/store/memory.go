package store

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"github.com/MrSnakeDoc/bookmarker/internal/domain"
)

// MemoryBackend keeps values in process memory.
// Used for development (BOOKMARKER_STORE=memory) and tests.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryBackend creates an empty memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		values: make(map[string][]byte),
	}
}

// Get returns copies of the stored values
func (m *MemoryBackend) Get(_ context.Context, keys ...string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			out[k] = slices.Clone(v)
		}
	}
	return out, nil
}

// Set writes all values under one lock
func (m *MemoryBackend) Set(_ context.Context, values map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setLocked(values)
	return nil
}

// CompareAndSet writes values if guardKey holds expected
func (m *MemoryBackend) CompareAndSet(_ context.Context, guardKey string, expected []byte, values map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.values[guardKey]
	if ok != (expected != nil) || !bytes.Equal(current, expected) {
		return domain.ErrConflict
	}
	m.setLocked(values)
	return nil
}

func (m *MemoryBackend) setLocked(values map[string][]byte) {
	for k, v := range values {
		m.values[k] = slices.Clone(v)
	}
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }

// Len returns the number of stored keys
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.values)
}
