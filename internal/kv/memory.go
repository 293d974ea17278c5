package kv

import "sync"

// MemoryMedium keeps everything in a map. Used by tests and for throwaway
// stores.
type MemoryMedium struct {
	mu     sync.Mutex
	values map[Key]string
}

func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{values: map[Key]string{}}
}

func (m *MemoryMedium) Put(key Key, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = text
	return nil
}

func (m *MemoryMedium) Get(key Key) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.values[key]
	return text, ok, nil
}

func (m *MemoryMedium) Remove(key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryMedium) Keys() ([]Key, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]Key, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return keys, nil
}

func (m *MemoryMedium) Close() error { return nil }
