package storage

import (
	"fmt"
	"sync"
)

type MemorySink struct {
	results map[int][]int
	mu      sync.RWMutex
}

func NewMemorySink() *MemorySink {
	return &MemorySink{results: make(map[int][]int)}
}

func (m *MemorySink) Save(n int, primes []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]int, len(primes))
	copy(stored, primes)
	m.results[n] = stored
	return nil
}

func (m *MemorySink) Load(n int) ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored, ok := m.results[n]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, n)
	}
	result := make([]int, len(stored))
	copy(result, stored)
	return result, nil
}

func (m *MemorySink) Location(n int) string {
	return fmt.Sprintf("memory:%d", n)
}

// Close keeps stored results readable; use Reset to drop them.
func (m *MemorySink) Close() error { return nil }

func (m *MemorySink) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = make(map[int][]int)
}
