package store

import "sync"

// Memory is a process-local KV, used in tests and as the "memory" backend.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte

	// FailSets makes every Set return ErrWriteFailed; tests use it to check
	// that callers keep their in-memory state when a write is lost.
	FailSets bool
}

var _ KV = (*Memory)(nil)

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key, or ErrNotFound.
func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores a copy of value under key.
func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSets {
		return ErrWriteFailed
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
