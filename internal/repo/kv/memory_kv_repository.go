package kv

import (
	"context"
	"maps"
	"sync"
)

// MemoryRepository implements Repository in process memory.
// Values do not survive a restart.
type MemoryRepository struct {
	values map[string]string
	m      sync.RWMutex
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{values: make(map[string]string)}
}

func (r *MemoryRepository) Get(_ context.Context, key string) (string, bool, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	value, ok := r.values[key]

	return value, ok, nil
}

func (r *MemoryRepository) GetMany(_ context.Context, keys ...string) (map[string]string, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	values := make(map[string]string, len(keys))

	for _, key := range keys {
		if value, ok := r.values[key]; ok {
			values[key] = value
		}
	}

	return values, nil
}

func (r *MemoryRepository) SetMany(_ context.Context, entries map[string]string) error {
	if err := validateEntries(entries); err != nil {
		return err
	}

	r.m.Lock()
	defer r.m.Unlock()

	maps.Copy(r.values, entries)

	return nil
}

func (r *MemoryRepository) DeleteMany(_ context.Context, keys ...string) error {
	r.m.Lock()
	defer r.m.Unlock()

	for _, key := range keys {
		delete(r.values, key)
	}

	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
