package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryMedium keeps everything in a map. Data is lost on restart; it backs
// tests and throwaway CLI runs.
type MemoryMedium struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{entries: make(map[string]string)}
}

func (m *MemoryMedium) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *MemoryMedium) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MemoryMedium) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryMedium) Keys(ctx context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryMedium) Close() error {
	return nil
}
