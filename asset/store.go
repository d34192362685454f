package asset

import (
	"slices"
	"sync"
)

// Store holds loaded assets of type T. It is safe for concurrent use.
//
// A handle may exist before its asset is inserted; Get reports false
// until then. Consumers treat that as "not loaded yet".
type Store[T any] struct {
	mu     sync.RWMutex
	assets map[ID]*T
}

// NewStore creates an empty store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{assets: make(map[ID]*T)}
}

// Add stores a under a new random ID and returns its handle.
func (s *Store[T]) Add(a *T) Handle[T] {
	h := NewHandle[T](NewID())
	s.Insert(h, a)
	return h
}

// Insert stores a under the handle's ID, replacing any previous asset.
func (s *Store[T]) Insert(h Handle[T], a *T) {
	s.mu.Lock()
	s.assets[h.id] = a
	s.mu.Unlock()
}

// Get returns the asset for id.
func (s *Store[T]) Get(id ID) (*T, bool) {
	s.mu.RLock()
	a, ok := s.assets[id]
	s.mu.RUnlock()
	return a, ok
}

// Remove deletes the asset for id and reports whether it existed.
func (s *Store[T]) Remove(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[id]; !ok {
		return false
	}
	delete(s.assets, id)
	return true
}

// Len returns the number of stored assets.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assets)
}

// IDs returns the stored IDs in ascending byte order.
func (s *Store[T]) IDs() []ID {
	s.mu.RLock()
	ids := make([]ID, 0, len(s.assets))
	for id := range s.assets {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	slices.SortFunc(ids, ID.Compare)
	return ids
}
