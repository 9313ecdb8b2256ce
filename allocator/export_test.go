package allocator

import "unsafe"

// uintptrOf exposes a slice's backing address for alignment assertions
// in tests; production code never needs raw addresses directly.
func uintptrOf(p []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(p)))
}
