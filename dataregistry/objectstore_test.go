package dataregistry

import (
	"sync"
	"testing"
	"unsafe"
)

func TestSimpleMapSetGet(t *testing.T) {
	s := NewStore()
	var x int
	p := unsafe.Pointer(&x)
	s.SetData("ctx", p)
	if s.GetData("ctx") != p {
		t.Error("GetData must return the last SetData value for the key")
	}
	if s.GetData("missing") != nil {
		t.Error("GetData for an absent key must return nil")
	}
}

func TestObjectStoreCreateAndNameLookup(t *testing.T) {
	os := NewObjectStore()
	id := os.CreateObject()

	h, ok := os.Write(id)
	if !ok {
		t.Fatal("Write on a freshly created object should succeed")
	}
	h.SetString(PropName, "physics-context")
	os.Commit(h)

	found, ok := os.GetObjectByName("physics-context")
	if !ok || found != id {
		t.Fatalf("GetObjectByName = (%d, %v), want (%d, true)", found, ok, id)
	}
}

func TestObjectStoreReadersSeePriorViewUntilEndRead(t *testing.T) {
	os := NewObjectStore()
	id := os.CreateObject()

	h, _ := os.Write(id)
	h.SetString(PropName, "v1")
	os.Commit(h)

	snap, _ := os.Read(id)
	v1, _ := os.GetString(snap, PropName)
	if v1 != "v1" {
		t.Fatalf("GetString = %q, want v1", v1)
	}

	h2, _ := os.Write(id)
	h2.SetString(PropName, "v2")
	os.Commit(h2)

	// The snapshot taken before the second commit must still read v1.
	stillV1, _ := os.GetString(snap, PropName)
	if stillV1 != "v1" {
		t.Errorf("existing reader observed torn/updated state: got %q, want v1", stillV1)
	}
	os.EndRead(snap)

	snap2, _ := os.Read(id)
	v2, _ := os.GetString(snap2, PropName)
	if v2 != "v2" {
		t.Errorf("new reader after commit got %q, want v2", v2)
	}
	os.EndRead(snap2)
}

func TestObjectStoreBufferProperty(t *testing.T) {
	os := NewObjectStore()
	id := os.CreateObject()

	h, _ := os.Write(id)
	h.SetBuffer(PropBuffer, []byte("payload"))
	os.Commit(h)

	snap, _ := os.Read(id)
	defer os.EndRead(snap)
	buf, ok := os.GetBuffer(snap, PropBuffer)
	if !ok || string(buf) != "payload" {
		t.Errorf("GetBuffer = (%q, %v), want (payload, true)", buf, ok)
	}
}

func TestObjectStoreConcurrentReadersAndWriter(t *testing.T) {
	os := NewObjectStore()
	id := os.CreateObject()
	h, _ := os.Write(id)
	h.SetString(PropName, "start")
	os.Commit(h)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	defer close(stop)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 500; n++ {
				select {
				case <-stop:
					return
				default:
				}
				snap, ok := os.Read(id)
				if !ok {
					continue
				}
				os.GetString(snap, PropName)
				os.EndRead(snap)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for n := 0; n < 200; n++ {
			h, ok := os.Write(id)
			if !ok {
				continue
			}
			h.SetString(PropName, "updated")
			os.Commit(h)
		}
	}()

	wg.Wait()
}
