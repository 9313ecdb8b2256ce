package logging

// linearBuffer is the growing-entry-list discipline: no capacity
// limit, geometric growth via Go's append, matching spec.md §4.8's
// "linear" channel kind. It never discards; callers wanting a bound
// should use a cyclic channel instead.
type linearBuffer struct {
	list []BufferEntry
}

func newLinearBuffer() *linearBuffer {
	return &linearBuffer{}
}

func (b *linearBuffer) append(level Level, message string) {
	b.list = append(b.list, BufferEntry{Level: level, Message: message})
}

func (b *linearBuffer) entries() []BufferEntry {
	out := make([]BufferEntry, len(b.list))
	copy(out, b.list)
	return out
}
