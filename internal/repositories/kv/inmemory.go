package kv

import (
	"context"
	"sync"
)

// InMemoryRepository keeps the namespace in a map. Used by tests and by the
// "memory" storage driver. Values are copied on the way in and out so callers
// cannot alias the stored slices.
type InMemoryRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{data: make(map[string][]byte)}
}

func (r *InMemoryRepository) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (r *InMemoryRepository) Set(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	r.data[key] = stored
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

func (r *InMemoryRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = make(map[string][]byte)
	return nil
}

func (r *InMemoryRepository) List(ctx context.Context) (map[string][]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string][]byte, len(r.data))
	for k, v := range r.data {
		out := make([]byte, len(v))
		copy(out, v)
		result[k] = out
	}
	return result, nil
}
