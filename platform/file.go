// Package platform implements the capabilities spec.md §6.2 says the
// core consumes from a platform collaborator: file, threads, atomics,
// virtual memory, network. FileSystem and VirtualMemory are Go
// interfaces; Threads, AtomicCounter and Network are concrete types.
// Each stands in for a C vtable, but nothing in this package publishes
// them into an apiregistry.Registry.
package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// FileResult is the two-valued success/fail result of spec.md §6.4;
// richer errors are logged, not returned, matching the boundary's
// error-handling design.
type FileResult int

const (
	FileOK FileResult = iota
	FileFail
)

// DirectoryInfo is the result of FileSystem.GetDirectoryInfo.
type DirectoryInfo struct {
	Exists  bool
	IsDir   bool
	SizeHint int64
}

// FileSystem is the file capability vtable of spec.md §6.2, grounded
// on the teacher's file_io.go: every path is resolved and sanitized
// against a fixed base directory before touching the OS, the same
// discipline file_io.go's sanitizePath enforces for its restricted
// sandbox directory.
type FileSystem interface {
	Exists(path string) bool
	Remove(path string) FileResult
	Copy(src, dst string) FileResult
	BinaryRead(path string) ([]byte, FileResult)
	BinaryWrite(path string, data []byte) FileResult
	DirectoryExists(path string) bool
	CreateDirectory(path string) FileResult
	RemoveDirectory(path string) FileResult
	GetDirectoryInfo(path string) (DirectoryInfo, FileResult)
}

// OSFileSystem is the concrete FileSystem backed by the OS, rooted at
// baseDir. Every method call sanitizes its path argument against
// baseDir first, rejecting absolute paths and ".." traversal exactly
// as file_io.go's sanitizePath does.
type OSFileSystem struct {
	baseDir string
}

// NewOSFileSystem returns a FileSystem rooted at baseDir.
func NewOSFileSystem(baseDir string) *OSFileSystem {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		abs = baseDir
	}
	return &OSFileSystem{baseDir: abs}
}

// sanitize rejects absolute paths and "..' traversal, then joins path
// under baseDir, matching file_io.go's sanitizePath.
func (f *OSFileSystem) sanitize(path string) (string, bool) {
	if filepath.IsAbs(path) || strings.Contains(path, "..") {
		return "", false
	}
	return filepath.Join(f.baseDir, path), true
}

func (f *OSFileSystem) Exists(path string) bool {
	full, ok := f.sanitize(path)
	if !ok {
		return false
	}
	_, err := os.Stat(full)
	return err == nil
}

func (f *OSFileSystem) Remove(path string) FileResult {
	full, ok := f.sanitize(path)
	if !ok {
		return FileFail
	}
	if err := os.Remove(full); err != nil {
		return FileFail
	}
	return FileOK
}

func (f *OSFileSystem) Copy(src, dst string) FileResult {
	fullSrc, ok := f.sanitize(src)
	if !ok {
		return FileFail
	}
	fullDst, ok := f.sanitize(dst)
	if !ok {
		return FileFail
	}
	data, err := os.ReadFile(fullSrc)
	if err != nil {
		return FileFail
	}
	if err := os.WriteFile(fullDst, data, 0o644); err != nil {
		return FileFail
	}
	return FileOK
}

func (f *OSFileSystem) BinaryRead(path string) ([]byte, FileResult) {
	full, ok := f.sanitize(path)
	if !ok {
		return nil, FileFail
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, FileFail
	}
	return data, FileOK
}

func (f *OSFileSystem) BinaryWrite(path string, data []byte) FileResult {
	full, ok := f.sanitize(path)
	if !ok {
		return FileFail
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return FileFail
	}
	return FileOK
}

func (f *OSFileSystem) DirectoryExists(path string) bool {
	full, ok := f.sanitize(path)
	if !ok {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.IsDir()
}

func (f *OSFileSystem) CreateDirectory(path string) FileResult {
	full, ok := f.sanitize(path)
	if !ok {
		return FileFail
	}
	if err := os.MkdirAll(full, 0o755); err != nil {
		return FileFail
	}
	return FileOK
}

func (f *OSFileSystem) RemoveDirectory(path string) FileResult {
	full, ok := f.sanitize(path)
	if !ok {
		return FileFail
	}
	if err := os.RemoveAll(full); err != nil {
		return FileFail
	}
	return FileOK
}

func (f *OSFileSystem) GetDirectoryInfo(path string) (DirectoryInfo, FileResult) {
	full, ok := f.sanitize(path)
	if !ok {
		return DirectoryInfo{}, FileFail
	}
	info, err := os.Stat(full)
	if err != nil {
		return DirectoryInfo{}, FileFail
	}
	return DirectoryInfo{Exists: true, IsDir: info.IsDir(), SizeHint: info.Size()}, FileOK
}
