package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps collections in process memory. Records are copied on
// every Get and Put so callers never share state with the backend.
type MemoryBackend struct {
	mu          sync.RWMutex
	collections map[string][]Record

	// Unavailable makes every call fail with ErrStorageUnavailable.
	Unavailable bool
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{collections: make(map[string][]Record)}
}

func (m *MemoryBackend) Get(ctx context.Context, name string) ([]Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, NewStoreError("Get", name, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Unavailable {
		return nil, false, NewStoreError("Get", name, ErrStorageUnavailable)
	}

	records, ok := m.collections[name]
	if !ok {
		return nil, false, nil
	}
	clone, err := CloneRecords(records)
	if err != nil {
		return nil, false, NewStoreError("Get", name, err)
	}
	return clone, true, nil
}

func (m *MemoryBackend) Put(ctx context.Context, name string, records []Record) error {
	if err := ctx.Err(); err != nil {
		return NewStoreError("Put", name, err)
	}

	clone, err := CloneRecords(records)
	if err != nil {
		return NewStoreError("Put", name, err)
	}
	if clone == nil {
		clone = []Record{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Unavailable {
		return NewStoreError("Put", name, ErrStorageUnavailable)
	}
	m.collections[name] = clone
	return nil
}
