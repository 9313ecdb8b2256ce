//go:build linux || darwin

package extregistry

import (
	"fmt"
	"os"
	"plugin"
)

const nativeExt = ".so"

// libraryHandle wraps Go's plugin.Plugin, the stdlib analog of
// dlopen/dlsym on Unix. Go plugins cannot be unloaded from a process;
// reload is simulated by opening a fresh shadow copy of the rebuilt
// .so under a new temp name, which the Go runtime sees as a distinct
// plugin and loads independently (see registry.go's reload path).
type libraryHandle struct {
	p *plugin.Plugin
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

	p, err := plugin.Open(openPath)
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
		handle:     libraryHandle{p: p},
	}
	return lib, LibraryOK
}

// close removes the shadow copy, if any. Go plugins have no unload
// syscall; the handle is simply dropped and its symbols become
// unreachable once the extension registry stops resolving through it.
func (l *SharedLibrary) close() {
	if l.shadowPath != "" && l.shadowPath != l.path {
		os.Remove(l.shadowPath)
	}
}

// symbol resolves a named symbol to a generic function pointer. The
// caller is responsible for asserting it to the expected signature.
func (l *SharedLibrary) symbol(name string) (any, error) {
	sym, err := l.handle.p.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("resolve symbol %q: %w", name, err)
	}
	return sym, nil
}
