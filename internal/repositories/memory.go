package repositories

import "sync"

// MemorySlots implements [Slots] in process memory.
type MemorySlots struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemorySlots returns empty slots, optionally seeded with initial values.
func NewMemorySlots(initial map[string]string) *MemorySlots {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &MemorySlots{values: values}
}

func (m *MemorySlots) Get(key string) (string, bool, error) {
	if err := validKey(key); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemorySlots) Set(key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemorySlots) Delete(key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
