package memory

import "sync"

// Memory is a capped history. Once full, the oldest entry is dropped on every Store.
type Memory[T any] struct {
	stream   []T
	capacity int
	mu       sync.RWMutex
}

func NewMemory[T any](capacity int) *Memory[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Memory[T]{
		stream:   make([]T, 0, capacity),
		capacity: capacity,
	}
}

// GetAll returns a copy of every entry, oldest first
func (m *Memory[T]) GetAll() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]T, len(m.stream))
	copy(entries, m.stream)
	return entries
}

// Last returns up to n of the newest entries, oldest first.
func (m *Memory[T]) Last(n int) []T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n <= 0 {
		return nil
	}
	if n > len(m.stream) {
		n = len(m.stream)
	}
	entries := make([]T, n)
	copy(entries, m.stream[len(m.stream)-n:])
	return entries
}

func (m *Memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stream)
}

func (m *Memory[T]) Capacity() int {
	return m.capacity
}

func (m *Memory[T]) Store(data T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stream = append(m.stream, data)
	if len(m.stream) > m.capacity {
		m.stream = m.stream[1:]
	}
	return nil
}
