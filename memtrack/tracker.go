// Package memtrack is the tracked realloc-style allocator of spec.md
// §4.2. It records address, size, and call site of every live
// allocation made through it. No other package in this module
// allocates through it; the specialized allocators in package
// allocator use their own buffers.
package memtrack

import (
	"fmt"
	"sync"
	"unsafe"
)

// Entry is one tracked allocation.
type Entry struct {
	Address unsafe.Pointer
	Size    uintptr
	File    string
	Line    int
}

// Tracker records every live allocation keyed by address. The getters
// (GetMemoryUsage, GetAllocationCount, GetFreeCount, GetAllocations)
// are observation only and each takes the lock on its own: two getter
// calls made while other goroutines mutate the tracker may observe
// values that are momentarily inconsistent with each other, per
// spec.md §4.2.
type Tracker struct {
	mu         sync.Mutex
	entries    map[unsafe.Pointer]Entry
	allocCount uint64
	freeCount  uint64
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[unsafe.Pointer]Entry)}
}

// Realloc is realloc-shaped: ptr == nil && size > 0 allocates a fresh
// block; ptr != nil && size == 0 frees the block at ptr; any other
// combination reallocates, producing a new address and removing the
// old entry. file/line identify the call site for diagnostics.
func (t *Tracker) Realloc(ptr unsafe.Pointer, size uintptr, file string, line int) unsafe.Pointer {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case ptr == nil && size > 0:
		buf := make([]byte, size)
		addr := unsafe.Pointer(unsafe.SliceData(buf))
		t.entries[addr] = Entry{Address: addr, Size: size, File: file, Line: line}
		t.allocCount++
		return addr

	case ptr != nil && size == 0:
		if _, ok := t.entries[ptr]; ok {
			delete(t.entries, ptr)
			t.freeCount++
		}
		return nil

	case ptr == nil && size == 0:
		return nil

	default:
		if _, ok := t.entries[ptr]; ok {
			delete(t.entries, ptr)
			t.freeCount++
		}
		buf := make([]byte, size)
		addr := unsafe.Pointer(unsafe.SliceData(buf))
		t.entries[addr] = Entry{Address: addr, Size: size, File: file, Line: line}
		t.allocCount++
		return addr
	}
}

// Free is shorthand for Realloc(ptr, 0, file, line).
func (t *Tracker) Free(ptr unsafe.Pointer, file string, line int) {
	t.Realloc(ptr, 0, file, line)
}

// Stats is the set of observation-only counters spec.md §4.2 asks for.
type Stats struct {
	TotalBytes  uintptr
	AllocCount  uint64
	FreeCount   uint64
	LiveEntries int
}

func (t *Tracker) GetMemoryUsage() uintptr {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total uintptr
	for _, e := range t.entries {
		total += e.Size
	}
	return total
}

func (t *Tracker) GetAllocationCount() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allocCount
}

func (t *Tracker) GetFreeCount() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.freeCount
}

// GetAllocations returns a snapshot of every currently live entry.
func (t *Tracker) GetAllocations() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	return out
}

func (e Entry) String() string {
	return fmt.Sprintf("%p (%d bytes) at %s:%d", e.Address, e.Size, e.File, e.Line)
}
