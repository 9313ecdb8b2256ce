package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelGatingSuppressesBelowThreshold(t *testing.T) {
	l := NewLogger()
	id := l.AddChannel("test", Init{Kind: KindLinear})
	l.SetLevel(id, LevelWarn)

	l.Log(id, LevelInfo, "should be suppressed")
	l.Log(id, LevelWarn, "should appear")
	l.Log(id, LevelError, "should also appear")

	entries := l.Channel(id).LinearEntries()
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Message != "should appear" || entries[1].Message != "should also appear" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestLinearBufferGrowsWithoutBound(t *testing.T) {
	l := NewLogger()
	id := l.AddChannel("linear", Init{Kind: KindLinear})

	for i := 0; i < 1000; i++ {
		l.Logf(id, LevelInfo, "line %d", i)
	}

	entries := l.Channel(id).LinearEntries()
	if len(entries) != 1000 {
		t.Fatalf("len(entries) = %d, want 1000", len(entries))
	}
	if entries[0].Message != "line 0" || entries[999].Message != "line 999" {
		t.Errorf("unexpected boundary entries: first=%q last=%q", entries[0].Message, entries[999].Message)
	}
}

// Scenario 4: a cyclic channel with capacity 4, ten messages emitted,
// must retain exactly the most recent 4 in chronological order with
// intact contents.
func TestCyclicBufferRetainsMostRecentInOrder(t *testing.T) {
	l := NewLogger()
	id := l.AddChannel("cyclic", Init{Kind: KindCyclic, CyclicCapacity: 4})

	for i := 0; i < 10; i++ {
		l.Logf(id, LevelInfo, "msg %d", i)
	}

	entries := l.Channel(id).CyclicEntries()
	if len(entries) != 4 {
		t.Fatalf("len(entries) = %d, want 4", len(entries))
	}
	want := []string{"msg 6", "msg 7", "msg 8", "msg 9"}
	for i, e := range entries {
		if e.Message != want[i] {
			t.Errorf("entries[%d] = %q, want %q", i, e.Message, want[i])
		}
	}
}

func TestCyclicBufferBeforeWrapReturnsPartialFill(t *testing.T) {
	l := NewLogger()
	id := l.AddChannel("cyclic", Init{Kind: KindCyclic, CyclicCapacity: 4})

	l.Log(id, LevelInfo, "a")
	l.Log(id, LevelInfo, "b")

	entries := l.Channel(id).CyclicEntries()
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Message != "a" || entries[1].Message != "b" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestCyclicBufferTruncatesOverlongEntries(t *testing.T) {
	l := NewLogger()
	id := l.AddChannel("cyclic", Init{Kind: KindCyclic, CyclicCapacity: 2, CyclicMaxEntryLen: 4})

	l.Log(id, LevelInfo, "abcdefgh")

	entries := l.Channel(id).CyclicEntries()
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Message != "abcd" {
		t.Errorf("Message = %q, want truncated to 4 bytes", entries[0].Message)
	}
}

func TestChannelCombinesConsoleAndLinear(t *testing.T) {
	l := NewLogger()
	id := l.AddChannel("combo", Init{Kind: KindConsole | KindLinear})

	var buf bytes.Buffer
	ch := l.Channel(id)
	ch.console.out = &buf
	ch.console.color = false

	l.Log(id, LevelError, "boom")

	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("console output = %q, want it to contain \"boom\"", buf.String())
	}
	if !strings.Contains(buf.String(), "ERROR") {
		t.Errorf("console output = %q, want level tag ERROR", buf.String())
	}

	entries := ch.LinearEntries()
	if len(entries) != 1 || entries[0].Message != "boom" {
		t.Errorf("linear entries = %+v, want one entry \"boom\"", entries)
	}
}

func TestChannelByNameLookup(t *testing.T) {
	l := NewLogger()
	l.AddChannel("named", Init{Kind: KindLinear})

	ch, ok := l.ChannelByName("named")
	if !ok || ch == nil {
		t.Fatal("ChannelByName should find the channel just added")
	}

	_, ok = l.ChannelByName("missing")
	if ok {
		t.Error("ChannelByName should report false for an unregistered name")
	}
}

func TestBroadcastReachesAllChannels(t *testing.T) {
	l := NewLogger()
	a := l.AddChannel("a", Init{Kind: KindLinear})
	b := l.AddChannel("b", Init{Kind: KindLinear})

	l.Broadcast(LevelInfo, "hello")

	if entries := l.Channel(a).LinearEntries(); len(entries) != 1 || entries[0].Message != "hello" {
		t.Errorf("channel a entries = %+v", entries)
	}
	if entries := l.Channel(b).LinearEntries(); len(entries) != 1 || entries[0].Message != "hello" {
		t.Errorf("channel b entries = %+v", entries)
	}
}
