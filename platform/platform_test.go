package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystemRejectsTraversalAndAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	fs := NewOSFileSystem(dir)

	if fs.Exists("../etc/passwd") {
		t.Error("traversal path must never resolve as existing")
	}
	if fs.BinaryWrite("../escape.txt", []byte("x")) == FileOK {
		t.Error("traversal write must fail")
	}
	if fs.BinaryWrite("/etc/escape.txt", []byte("x")) == FileOK {
		t.Error("absolute path write must fail")
	}
}

func TestOSFileSystemReadWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs := NewOSFileSystem(dir)

	if res := fs.BinaryWrite("data.bin", []byte("hello")); res != FileOK {
		t.Fatalf("BinaryWrite = %v, want FileOK", res)
	}
	if !fs.Exists("data.bin") {
		t.Error("Exists should report true after a successful write")
	}
	data, res := fs.BinaryRead("data.bin")
	if res != FileOK || string(data) != "hello" {
		t.Fatalf("BinaryRead = (%q, %v), want (hello, FileOK)", data, res)
	}

	if res := fs.Remove("data.bin"); res != FileOK {
		t.Fatalf("Remove = %v, want FileOK", res)
	}
	if fs.Exists("data.bin") {
		t.Error("Exists should report false after Remove")
	}
}

func TestOSFileSystemDirectoryLifecycle(t *testing.T) {
	dir := t.TempDir()
	fs := NewOSFileSystem(dir)

	if res := fs.CreateDirectory("sub/nested"); res != FileOK {
		t.Fatalf("CreateDirectory = %v, want FileOK", res)
	}
	if !fs.DirectoryExists("sub/nested") {
		t.Error("DirectoryExists should report true after CreateDirectory")
	}
	if _, err := os.Stat(filepath.Join(dir, "sub", "nested")); err != nil {
		t.Errorf("directory not actually created on disk: %v", err)
	}
	if res := fs.RemoveDirectory("sub"); res != FileOK {
		t.Fatalf("RemoveDirectory = %v, want FileOK", res)
	}
	if fs.DirectoryExists("sub") {
		t.Error("DirectoryExists should report false after RemoveDirectory")
	}
}

func TestAtomicCounterIncrementDecrement(t *testing.T) {
	c := NewAtomicCounter(0)
	c.Increment()
	c.Increment()
	c.Decrement()
	if v := c.Load(); v != 1 {
		t.Errorf("Load() = %d, want 1", v)
	}
}

func TestAtomicCounterCompareExchange(t *testing.T) {
	c := NewAtomicCounter(5)
	swapped, result := c.CompareExchange(5, 10)
	if !swapped || result != AtomicsOK {
		t.Fatalf("CompareExchange(5,10) = (%v,%v), want (true, AtomicsOK)", swapped, result)
	}
	if c.Load() != 10 {
		t.Errorf("Load() = %d, want 10", c.Load())
	}

	swapped, result = c.CompareExchange(5, 99)
	if swapped || result != AtomicsFail {
		t.Fatalf("stale CompareExchange = (%v,%v), want (false, AtomicsFail)", swapped, result)
	}
}

func TestSemaphoreWaitRelease(t *testing.T) {
	s := NewSemaphore(1)
	if !s.TryWait() {
		t.Fatal("TryWait should succeed with an available slot")
	}
	if s.TryWait() {
		t.Error("TryWait should fail once the single slot is taken")
	}
	s.Release()
	if !s.TryWait() {
		t.Error("TryWait should succeed again after Release")
	}
}

func TestThreadLocalKeyIsolation(t *testing.T) {
	threads := NewThreads()
	k1 := threads.AllocateTLSKey()
	k2 := threads.AllocateTLSKey()

	threads.SetTLS(k1, "a")
	threads.SetTLS(k2, "b")

	if threads.GetTLS(k1) != "a" || threads.GetTLS(k2) != "b" {
		t.Errorf("TLS values crossed keys: k1=%v k2=%v", threads.GetTLS(k1), threads.GetTLS(k2))
	}

	threads.FreeTLSKey(k1)
	if threads.GetTLS(k1) != nil {
		t.Error("GetTLS after FreeTLSKey should return nil")
	}
}

func TestCreateThreadJoinWaitsForCompletion(t *testing.T) {
	threads := NewThreads()
	done := false
	join, result := threads.CreateThread(func() { done = true })
	if result != ThreadOK {
		t.Fatal("CreateThread should report ThreadOK")
	}
	join()
	if !done {
		t.Error("join() should not return before the thread function completes")
	}
}
