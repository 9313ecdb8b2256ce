// Package extregistry implements the shared-library loader and the
// extension registry that orchestrates load/unload/reload of extension
// modules over it.
package extregistry

import (
	"os"
	"path/filepath"
)

// LibraryResult is the two-valued success/fail result of spec.md §6.4
// for shared-library operations.
type LibraryResult int

const (
	LibraryOK LibraryResult = iota
	LibraryFail
)

// SharedLibrary is an opened OS shared-library handle plus the
// bookkeeping needed to detect on-disk changes for hot reload, per
// spec.md §4.1. The concrete open/symbol-resolution mechanics are
// platform-specific (shlib_unix.go / shlib_windows.go); this file
// holds the platform-independent change-detection and shadow-copy
// logic shared by both.
type SharedLibrary struct {
	path       string // original on-disk path, used for has_changed
	shadowPath string // scratch copy actually opened, if reloadable
	modTime    int64  // mtime snapshot taken at last (re)open
	handle     libraryHandle
}

// Path returns the original on-disk module path.
func (l *SharedLibrary) Path() string { return l.path }

// HasChanged reports whether the on-disk file's mtime has advanced
// past the snapshot taken at the last (re)open, per spec.md §4.1.
func (l *SharedLibrary) HasChanged() bool {
	info, err := os.Stat(l.path)
	if err != nil {
		return false
	}
	return info.ModTime().UnixNano() > l.modTime
}

// shadowCopy copies src into a fresh scratch file under dir and
// returns its path. Reloadable modules are opened from this copy so
// the original path remains writable by a build toolchain while the
// copy is loaded into the process, per spec.md §4.1.
func shadowCopy(src, dir string) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, "pl-ext-*"+filepath.Ext(src))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// candidatePaths resolves name against searchPaths, trying the bare
// name first and then each directory joined with name, optionally
// appending the platform's native extension when name has none.
func candidatePaths(name string, searchPaths []string) []string {
	var out []string
	tryExt := filepath.Ext(name) == ""
	add := func(p string) {
		out = append(out, p)
		if tryExt {
			out = append(out, p+nativeExt)
		}
	}
	add(name)
	for _, dir := range searchPaths {
		add(filepath.Join(dir, name))
	}
	return out
}

func resolveExisting(candidates []string) (string, bool) {
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}
