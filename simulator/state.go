package simulator

import (
	"sort"
	"sync"
)

// StateStore holds simulated resources of one kind, keyed by name or ID.
// It is safe for concurrent use by handlers.
type StateStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

func NewStateStore[T any]() *StateStore[T] {
	return &StateStore[T]{items: make(map[string]T)}
}

func (s *StateStore[T]) Get(key string) (T, bool) {
	s.mu.RLock()
	v, ok := s.items[key]
	s.mu.RUnlock()
	return v, ok
}

func (s *StateStore[T]) Put(key string, v T) {
	s.mu.Lock()
	s.items[key] = v
	s.mu.Unlock()
}

// PutIfAbsent stores v unless key is taken, the create-if-missing semantics
// of a container PUT. It reports whether v was stored.
func (s *StateStore[T]) PutIfAbsent(key string, v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.items[key]; taken {
		return false
	}
	s.items[key] = v
	return true
}

// Update applies fn to the stored value under the write lock. It reports
// false when key is unknown.
func (s *StateStore[T]) Update(key string, fn func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if ok {
		fn(&v)
		s.items[key] = v
	}
	return ok
}

func (s *StateStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Keys returns the stored keys in sorted order.
func (s *StateStore[T]) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys
}
