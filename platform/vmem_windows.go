//go:build windows

package platform

import (
	"golang.org/x/sys/windows"
)

// WindowsVirtualMemory implements VirtualMemory via VirtualAlloc /
// VirtualFree / VirtualProtect, the Windows counterpart to
// vmem_unix.go's mmap-based implementation.
type WindowsVirtualMemory struct {
	pageSize int
}

func NewWindowsVirtualMemory() *WindowsVirtualMemory {
	var info windows.SystemInfo
	windows.GetSystemInfo(&info)
	return &WindowsVirtualMemory{pageSize: int(info.PageSize)}
}

func (v *WindowsVirtualMemory) PageSize() int { return v.pageSize }

func (v *WindowsVirtualMemory) Reserve(size int) (uintptr, VMemResult) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_RESERVE, windows.PAGE_NOACCESS)
	if err != nil {
		return 0, VMemFail
	}
	return addr, VMemOK
}

func (v *WindowsVirtualMemory) Commit(addr uintptr, size int) VMemResult {
	_, err := windows.VirtualAlloc(addr, uintptr(size), windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return VMemFail
	}
	return VMemOK
}

func (v *WindowsVirtualMemory) Uncommit(addr uintptr, size int) VMemResult {
	if err := windows.VirtualFree(addr, uintptr(size), windows.MEM_DECOMMIT); err != nil {
		return VMemFail
	}
	return VMemOK
}

func (v *WindowsVirtualMemory) Free(addr uintptr, size int) VMemResult {
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		return VMemFail
	}
	return VMemOK
}

func (v *WindowsVirtualMemory) Alloc(size int) (uintptr, VMemResult) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return 0, VMemFail
	}
	return addr, VMemOK
}
