//go:build windows

package extregistry

import (
	"fmt"
	"os"
	"syscall"
)

const nativeExt = ".dll"

// libraryHandle wraps a Windows DLL handle opened via syscall's
// LoadLibrary/GetProcAddress, the counterpart to shlib_unix.go's
// plugin.Plugin. Unlike plugin.Open, LoadLibrary supports FreeLibrary,
// so reload on Windows actually unloads the previous module rather
// than merely abandoning its handle.
type libraryHandle struct {
	dll *syscall.DLL
}

func openLibrary(name string, searchPaths []string, reloadable bool, scratchDir string) (*SharedLibrary, LibraryResult) {
	path, ok := resolveExisting(candidatePaths(name, searchPaths))
	if !ok {
		return nil, LibraryFail
	}

	openPath := path
	if reloadable {
		shadow, err := shadowCopy(path, scratchDir)
		if err != nil {
			return nil, LibraryFail
		}
		openPath = shadow
	}

	dll, err := syscall.LoadDLL(openPath)
	if err != nil {
		return nil, LibraryFail
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, LibraryFail
	}

	lib := &SharedLibrary{
		path:       path,
		shadowPath: openPath,
		modTime:    info.ModTime().UnixNano(),
		handle:     libraryHandle{dll: dll},
	}
	return lib, LibraryOK
}

// close releases the DLL handle and removes the shadow copy, if any.
func (l *SharedLibrary) close() {
	if l.handle.dll != nil {
		l.handle.dll.Release()
	}
	if l.shadowPath != "" && l.shadowPath != l.path {
		os.Remove(l.shadowPath)
	}
}

func (l *SharedLibrary) symbol(name string) (any, error) {
	proc, err := l.handle.dll.FindProc(name)
	if err != nil {
		return nil, fmt.Errorf("resolve symbol %q: %w", name, err)
	}
	return proc, nil
}
