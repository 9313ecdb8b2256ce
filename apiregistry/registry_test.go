package apiregistry

import (
	"sync"
	"testing"
	"unsafe"
)

func ptr(x *int) unsafe.Pointer { return unsafe.Pointer(x) }

// TestAPIVersioning reproduces spec.md §8 scenario 1: publish (foo,
// 1.0.0, p1) then (foo, 1.2.0, p2); verify compatibility resolution
// and major/minor mismatch rejection.
func TestAPIVersioning(t *testing.T) {
	r := NewRegistry()
	p1, p2 := new(int), new(int)

	r.SetAPI("foo", Version{1, 0, 0}, ptr(p1), 8)
	r.SetAPI("foo", Version{1, 2, 0}, ptr(p2), 8)

	if got := r.GetAPI("foo", Version{1, 0, 0}); got != ptr(p2) {
		t.Errorf("GetAPI(foo, 1.0.0) = %p, want %p (p2, the current record)", got, ptr(p2))
	}
	if got := r.GetAPI("foo", Version{1, 3, 0}); got != nil {
		t.Errorf("GetAPI(foo, 1.3.0) = %p, want nil (minor too low)", got)
	}
	if got := r.GetAPI("foo", Version{2, 0, 0}); got != nil {
		t.Errorf("GetAPI(foo, 2.0.0) = %p, want nil (major mismatch)", got)
	}
}

func TestSetAPISupersedesAndBumpsGeneration(t *testing.T) {
	r := NewRegistry()
	p1, p2 := new(int), new(int)

	rec1 := r.SetAPI("bar", Version{1, 0, 0}, ptr(p1), 8)
	rec2 := r.SetAPI("bar", Version{1, 1, 0}, ptr(p2), 8)

	if rec2.Generation != rec1.Generation+1 {
		t.Errorf("generation = %d, want %d", rec2.Generation, rec1.Generation+1)
	}
	if len(r.Current()) != 1 {
		t.Errorf("expected exactly one current record per (name, major), got %d", len(r.Current()))
	}
}

func TestRemoveAPIByPointer(t *testing.T) {
	r := NewRegistry()
	p1 := new(int)
	r.SetAPI("baz", Version{1, 0, 0}, ptr(p1), 8)

	if !r.RemoveAPI(ptr(p1)) {
		t.Fatal("RemoveAPI(current pointer) = false, want true")
	}
	if got := r.GetAPI("baz", Version{1, 0, 0}); got != nil {
		t.Errorf("GetAPI after RemoveAPI = %p, want nil", got)
	}
	if r.RemoveAPI(ptr(p1)) {
		t.Error("RemoveAPI of an already-removed pointer should return false")
	}
}

func TestRemoveAPIStalePointerIsNoop(t *testing.T) {
	r := NewRegistry()
	p1, p2 := new(int), new(int)
	r.SetAPI("qux", Version{1, 0, 0}, ptr(p1), 8)
	r.SetAPI("qux", Version{1, 1, 0}, ptr(p2), 8)

	if r.RemoveAPI(ptr(p1)) {
		t.Error("RemoveAPI(stale pointer) should not match the current record")
	}
	if got := r.GetAPI("qux", Version{1, 0, 0}); got != ptr(p2) {
		t.Error("current record should be unaffected by a stale RemoveAPI")
	}
}

// TestConcurrentPublishAndLookup stresses the reader/writer discipline
// with the race detector as the oracle, matching the teacher's
// audio_chip_race_test.go style.
func TestConcurrentPublishAndLookup(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	stop := make(chan struct{})
	defer close(stop)

	wg.Add(1)
	go func() {
		defer wg.Done()
		n := 0
		for {
			select {
			case <-stop:
				return
			default:
			}
			p := new(int)
			r.SetAPI("race", Version{1, uint32(n % 5), 0}, ptr(p), 8)
			n++
			if n > 2000 {
				return
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			r.GetAPI("race", Version{1, 0, 0})
		}
	}()

	wg.Wait()
}
