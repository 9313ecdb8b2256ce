// Package dataregistry is the process-wide key-value store and typed
// object store described in spec.md §3.4/§4.6. It is how extensions
// loaded as separate Go plugins — each with its own package-level
// state — recover cross-reload state: the teacher's equivalent is each
// subsystem stashing its context pointer under a well-known string key
// (memory_bus.go's mapping table follows the same "mutex-guarded map,
// last writer wins" shape for its I/O region table).
package dataregistry

import (
	"sync"
	"unsafe"
)

// Store is the simple string -> pointer map. Insertion is idempotent
// on key; there is no explicit remove operation, only overwrite with
// nil, matching spec.md §4.6. Concurrent writers to the same key have
// no ordering guarantee beyond last-writer-wins (spec.md §5) — this is
// a documented limitation, not a bug.
type Store struct {
	mu   sync.RWMutex
	data map[string]unsafe.Pointer
}

// NewStore returns an empty simple map.
func NewStore() *Store {
	return &Store{data: make(map[string]unsafe.Pointer)}
}

// SetData stores pointer under name, overwriting any previous value.
func (s *Store) SetData(name string, pointer unsafe.Pointer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = pointer
}

// GetData returns the pointer stored under name, or nil if absent.
func (s *Store) GetData(name string) unsafe.Pointer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[name]
}
