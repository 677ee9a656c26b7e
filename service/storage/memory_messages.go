package storage

import (
	"context"
	"sync"
)

// MemoryStore is the in-process fallback backend: a bounded slice with the
// same trim-on-append behavior as the Redis list, no expiry (process lifetime
// bound).
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	msgs     []ChatMessage // oldest first
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryStore{capacity: capacity}
}

func (s *MemoryStore) Append(_ context.Context, msg ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.msgs = append(s.msgs, msg)
	if len(s.msgs) > s.capacity {
		over := len(s.msgs) - s.capacity
		s.msgs = append(s.msgs[:0], s.msgs[over:]...)
	}
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, n int) ([]ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > s.capacity {
		n = s.capacity
	}
	start := 0
	if len(s.msgs) > n {
		start = len(s.msgs) - n
	}
	out := make([]ChatMessage, len(s.msgs)-start)
	copy(out, s.msgs[start:])
	return out, nil
}
