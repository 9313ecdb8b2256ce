package allocator

import "testing"

func TestDoubleEndedStackNeverCrosses(t *testing.T) {
	s := NewDoubleEndedStack(make([]byte, 128))

	if a := s.AllocBottom(64); a == nil {
		t.Fatal("AllocBottom(64) should succeed in a 128-byte buffer")
	}
	if b := s.AllocTop(32); b == nil {
		t.Fatal("AllocTop(32) should succeed with 64 bytes remaining")
	}
	if c := s.AllocBottom(64); c != nil {
		t.Error("AllocBottom should fail once it would cross the top cursor")
	}
	if d := s.AllocTop(64); d != nil {
		t.Error("AllocTop should fail once it would cross the bottom cursor")
	}
}

func TestDoubleEndedStackFreeToMarkerRestoresExactly(t *testing.T) {
	s := NewDoubleEndedStack(make([]byte, 256))

	mBottom := s.MarkBottom()
	s.AllocBottom(40)
	s.AllocBottom(20)

	mTop := s.MarkTop()
	s.AllocTop(16)

	s.FreeToMarker(mTop)
	if s.TopOffset() != mTop.offset {
		t.Errorf("top offset after FreeToMarker = %d, want %d", s.TopOffset(), mTop.offset)
	}

	s.FreeToMarker(mBottom)
	if s.BottomOffset() != mBottom.offset {
		t.Errorf("bottom offset after FreeToMarker = %d, want %d", s.BottomOffset(), mBottom.offset)
	}
}

func TestDoubleEndedStackAllocationsDoNotOverlap(t *testing.T) {
	s := NewDoubleEndedStack(make([]byte, 64))
	a := s.AllocBottom(16)
	b := s.AllocTop(16)
	for i := range a {
		a[i] = 1
	}
	for i := range b {
		b[i] = 2
	}
	for i := range a {
		if a[i] != 1 {
			t.Fatal("bottom and top allocations overlap")
		}
	}
}
