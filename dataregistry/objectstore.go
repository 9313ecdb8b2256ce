package dataregistry

import (
	"sync"
	"sync/atomic"
)

// DataID identifies an object in the typed object store.
type DataID uint64

// Property 0 holds the object's name by convention; property 1 holds
// its buffer, per spec.md §3.4. Properties beyond that are
// caller-defined.
const (
	PropName   = 0
	PropBuffer = 1
)

// property is the tagged union of what a property slot can hold.
type property struct {
	isString bool
	str      string
	buf      []byte
}

// snapshot is an immutable view of one object's properties. Readers
// hold a *snapshot for the lifetime of their read; it is never
// mutated in place — Write/Commit produce a new snapshot and swap it
// in atomically, so a reader's view can never be torn.
type snapshot struct {
	properties []property
}

// object is one entry in the store: a DataID plus the currently
// published immutable view.
type object struct {
	id       DataID
	current  atomic.Pointer[snapshot]
	readers  atomic.Int64 // active Read()s, for EndRead balance diagnostics
}

// ObjectStore is the typed object store of spec.md §3.4/§4.6: objects
// addressed by DataID, properties addressed by index, mediated by a
// reader/writer discipline where readers see an immutable snapshot
// until they EndRead, and writers are serialized by a single global
// exclusive lock (writes are rare relative to reads, same rationale
// as apiregistry.Registry).
type ObjectStore struct {
	mu      sync.Mutex // guards objects map structure and nextID
	objects map[DataID]*object
	nextID  DataID

	writerMu sync.Mutex // global exclusive writer lock (spec.md §4.6)
}

// NewObjectStore returns an empty object store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{objects: make(map[DataID]*object)}
}

// CreateObject allocates a new object with no properties and returns
// its DataID.
func (s *ObjectStore) CreateObject() DataID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	obj := &object{id: id}
	obj.current.Store(&snapshot{})
	s.objects[id] = obj
	return id
}

// GetObjectByName linearly scans for the object whose property 0
// equals name.
func (s *ObjectStore) GetObjectByName(name string) (DataID, bool) {
	s.mu.Lock()
	ids := make([]*object, 0, len(s.objects))
	for _, obj := range s.objects {
		ids = append(ids, obj)
	}
	s.mu.Unlock()

	for _, obj := range ids {
		snap := obj.current.Load()
		if len(snap.properties) > PropName && snap.properties[PropName].isString &&
			snap.properties[PropName].str == name {
			return obj.id, true
		}
	}
	return 0, false
}

// Snapshot is the handle returned by Read: a pointer into an
// immutable view of one object's properties, valid until EndRead.
type Snapshot struct {
	obj  *object
	view *snapshot
}

// Read acquires a shared reference to id's current immutable view.
// Multiple concurrent readers are permitted; readers never block
// writers and never observe a torn state.
func (s *ObjectStore) Read(id DataID) (*Snapshot, bool) {
	s.mu.Lock()
	obj, ok := s.objects[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	obj.readers.Add(1)
	return &Snapshot{obj: obj, view: obj.current.Load()}, true
}

// EndRead releases the shared reference taken by Read.
func (s *ObjectStore) EndRead(snap *Snapshot) {
	if snap == nil {
		return
	}
	snap.obj.readers.Add(-1)
}

// GetString returns the string at property index in snap's view.
func (s *ObjectStore) GetString(snap *Snapshot, idx int) (string, bool) {
	if snap == nil || idx < 0 || idx >= len(snap.view.properties) {
		return "", false
	}
	p := snap.view.properties[idx]
	if !p.isString {
		return "", false
	}
	return p.str, true
}

// GetBuffer returns the buffer at property index in snap's view.
func (s *ObjectStore) GetBuffer(snap *Snapshot, idx int) ([]byte, bool) {
	if snap == nil || idx < 0 || idx >= len(snap.view.properties) {
		return nil, false
	}
	p := snap.view.properties[idx]
	if p.isString {
		return nil, false
	}
	return p.buf, true
}

// WriteHandle is the exclusive handle returned by Write. Changes
// staged on it are invisible to readers until Commit.
type WriteHandle struct {
	store   *ObjectStore
	obj     *object
	staged  []property
	done    bool
}

// Write acquires exclusive write access to the store (a single global
// writer lock, per spec.md §4.6) and returns a handle seeded with id's
// current properties for staging changes.
func (s *ObjectStore) Write(id DataID) (*WriteHandle, bool) {
	s.mu.Lock()
	obj, ok := s.objects[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}

	s.writerMu.Lock()
	current := obj.current.Load()
	staged := append([]property(nil), current.properties...)
	return &WriteHandle{store: s, obj: obj, staged: staged}, true
}

func (h *WriteHandle) ensure(idx int) {
	for len(h.staged) <= idx {
		h.staged = append(h.staged, property{})
	}
}

// SetString stages value at property index idx.
func (h *WriteHandle) SetString(idx int, value string) {
	h.ensure(idx)
	h.staged[idx] = property{isString: true, str: value}
}

// SetBuffer stages value at property index idx.
func (h *WriteHandle) SetBuffer(idx int, value []byte) {
	h.ensure(idx)
	h.staged[idx] = property{buf: value}
}

// Commit publishes the staged properties as the new immutable view
// and releases the writer lock. Existing readers continue to observe
// the prior view until they EndRead; future readers see the new view.
// A second Commit on the same handle is a no-op; the writer lock was
// already released by the first.
func (s *ObjectStore) Commit(h *WriteHandle) {
	if h.done {
		return
	}
	h.done = true
	h.obj.current.Store(&snapshot{properties: h.staged})
	s.writerMu.Unlock()
}
