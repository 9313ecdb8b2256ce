package allocator

import "unsafe"

// Pool is a fixed item-size allocator backed by a caller-supplied
// buffer, threading a singly-linked free list through the unused
// slots. Alloc and Free are both O(1) and never fragment.
type Pool struct {
	buf       []byte
	itemSize  int
	itemCount int
	free      int // index of head of free list, or -1
}

// headerSize is the size of the intrusive free-list pointer stored in
// each unused slot.
const headerSize = int(unsafe.Sizeof(int32(0)))

// NewPool sets up a pool. Exactly one of (buffer) or (itemCount) is
// the free variable in the three call shapes spec.md §4.3.3 describes:
//   - buffer == nil: computes and allocates the buffer for itemCount items.
//   - itemCount == 0 && len(buffer) > 0: computes the supported item count.
//   - both given: uses buffer as-is, sized for itemCount items.
//
// alignment must be a power of two; item slots are aligned up to it.
func NewPool(itemCount, itemSize, alignment int, buffer []byte) *Pool {
	slot := alignUp(itemSize, alignment)
	if slot < headerSize {
		slot = headerSize
	}

	switch {
	case buffer == nil:
		buffer = make([]byte, slot*itemCount)
	case itemCount == 0 && len(buffer) > 0:
		itemCount = len(buffer) / slot
	}

	p := &Pool{buf: buffer, itemSize: slot, itemCount: itemCount, free: -1}
	p.rebuildFreeList()
	return p
}

func (p *Pool) rebuildFreeList() {
	for i := p.itemCount - 1; i >= 0; i-- {
		p.setNext(i, p.free)
		p.free = i
	}
}

func (p *Pool) slot(i int) []byte {
	return p.buf[i*p.itemSize : (i+1)*p.itemSize]
}

func (p *Pool) setNext(i, next int) {
	s := p.slot(i)
	// Encode next+1 so that 0 means "no next" and index 0 is still
	// representable; decode mirrors this in nextOf.
	n := int32(next + 1)
	s[0] = byte(n)
	s[1] = byte(n >> 8)
	s[2] = byte(n >> 16)
	s[3] = byte(n >> 24)
}

func (p *Pool) nextOf(i int) int {
	s := p.slot(i)
	n := int32(s[0]) | int32(s[1])<<8 | int32(s[2])<<16 | int32(s[3])<<24
	return int(n) - 1
}

// Alloc returns the head of the free list, or nil if the pool is
// exhausted. Exhaustion never mutates the free list.
func (p *Pool) Alloc() []byte {
	if p.free == -1 {
		return nil
	}
	idx := p.free
	p.free = p.nextOf(idx)
	return p.slot(idx)
}

// Free prepends item (a slice previously returned by Alloc) back onto
// the free list. item must come from this pool.
func (p *Pool) Free(item []byte) {
	idx := p.indexOf(item)
	p.setNext(idx, p.free)
	p.free = idx
}

func (p *Pool) indexOf(item []byte) int {
	base := unsafe.Pointer(unsafe.SliceData(p.buf))
	target := unsafe.Pointer(unsafe.SliceData(item))
	offset := uintptr(target) - uintptr(base)
	return int(offset) / p.itemSize
}

// ItemCount reports how many items the pool supports.
func (p *Pool) ItemCount() int { return p.itemCount }
