package apiregistry

import (
	"sync"
	"unsafe"
)

// Record is a single published API entry. Pointer is opaque to the
// registry: it is whatever the publisher and its consumers agree the
// vtable layout is. Size is carried for diagnostics and for consumers
// that want to sanity-check a struct layout across a reload.
type Record struct {
	Name       string
	Version    Version
	Pointer    unsafe.Pointer
	Size       uintptr
	Generation uint64
}

type key struct {
	name  string
	major uint32
}

// Registry is the broker of (name, version) -> vtable pointer. At most
// one record is current per (name, major); publishing a new record for
// the same (name, major) supersedes the previous one and bumps
// generation. Reads vastly outnumber writes, so a single RWMutex
// serializes the table per spec.md §5.
type Registry struct {
	mu      sync.RWMutex
	current map[key]*Record
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{current: make(map[key]*Record)}
}

// SetAPI publishes a new current record for (name, version.Major). Any
// previously current record for the same (name, major) is superseded;
// its generation number is not reused.
func (r *Registry) SetAPI(name string, version Version, pointer unsafe.Pointer, size uintptr) *Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{name: name, major: version.Major}
	var generation uint64
	if prev, ok := r.current[k]; ok {
		generation = prev.Generation + 1
	}

	rec := &Record{
		Name:       name,
		Version:    version,
		Pointer:    pointer,
		Size:       size,
		Generation: generation,
	}
	r.current[k] = rec
	return rec
}

// GetAPI returns the pointer of the current record for (name,
// version.Major) iff the provider's minor is >= version.Minor.
// Otherwise it returns nil. Per spec.md §4.4, the returned pointer
// must not be cached by the caller across an extension reload; the
// idiomatic pattern is to call GetAPI again from Load(reload=true).
func (r *Registry) GetAPI(name string, version Version) unsafe.Pointer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.current[key{name: name, major: version.Major}]
	if !ok || !rec.Version.CompatibleFor(version) {
		return nil
	}
	return rec.Pointer
}

// RemoveAPI unpublishes the current record whose Pointer matches p.
// Subsequent GetAPI calls for that (name, major) return nil until a
// new SetAPI. It is a no-op (returns false) if p does not match any
// currently published pointer.
func (r *Registry) RemoveAPI(p unsafe.Pointer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, rec := range r.current {
		if rec.Pointer == p {
			delete(r.current, k)
			return true
		}
	}
	return false
}

// Current returns a snapshot copy of every currently published record,
// for diagnostics and the host's status overlay.
func (r *Registry) Current() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Record, 0, len(r.current))
	for _, rec := range r.current {
		out = append(out, *rec)
	}
	return out
}
