//go:build linux || darwin

package platform

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// UnixVirtualMemory implements VirtualMemory via mmap/mprotect/munmap,
// the same primitives the teacher's indirect golang.org/x/sys
// dependency was pulled in for; promoted here to a direct use serving
// spec.md §6.2's virtual memory capability.
type UnixVirtualMemory struct {
	pageSize int
}

func NewUnixVirtualMemory() *UnixVirtualMemory {
	return &UnixVirtualMemory{pageSize: os.Getpagesize()}
}

func (v *UnixVirtualMemory) PageSize() int { return v.pageSize }

// Reserve maps size bytes with PROT_NONE: address space is claimed
// but not yet backed by physical pages.
func (v *UnixVirtualMemory) Reserve(size int) (uintptr, VMemResult) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return 0, VMemFail
	}
	return uintptr(unsafe.Pointer(&b[0])), VMemOK
}

// Commit changes a previously reserved region's protection to
// read/write, backing it with physical pages on first touch.
func (v *UnixVirtualMemory) Commit(addr uintptr, size int) VMemResult {
	b := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	if err := unix.Mprotect(b, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return VMemFail
	}
	return VMemOK
}

// Uncommit reverts a committed region to PROT_NONE without releasing
// the address range.
func (v *UnixVirtualMemory) Uncommit(addr uintptr, size int) VMemResult {
	b := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	if err := unix.Mprotect(b, unix.PROT_NONE); err != nil {
		return VMemFail
	}
	return VMemOK
}

// Free releases a reserved region entirely.
func (v *UnixVirtualMemory) Free(addr uintptr, size int) VMemResult {
	b := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	if err := unix.Munmap(b); err != nil {
		return VMemFail
	}
	return VMemOK
}

// Alloc is the combined reserve+commit convenience of spec.md §6.2.
func (v *UnixVirtualMemory) Alloc(size int) (uintptr, VMemResult) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return 0, VMemFail
	}
	return uintptr(unsafe.Pointer(&b[0])), VMemOK
}
