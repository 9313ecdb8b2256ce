// Package ioframe implements the per-frame input aggregation of
// spec.md §3.6/§4.7: a lazily-drained event queue feeding per-key,
// per-mouse-button, and text state, advanced once per NewFrameTick call in
// a fixed six-step order. Grounded on the teacher's debug_monitor.go
// input line/cursor/history handling for keystroke aggregation, and
// on its frame-paced Start() loops in the audio/video chips for
// timing cadence.
package ioframe

import (
	"time"
	"unicode/utf16"
)

// Key is a platform-independent key code. The concrete set is left
// open (callers define their own constants) since spec.md does not
// enumerate one; Frame only needs Key to be a comparable type.
type Key int

// MouseButton indexes one of a small fixed set of mouse buttons.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
	mouseButtonCount
)

// Modifier is a bitmask of chorded modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModShift
	ModAlt
	ModSuper
)

// EventKind distinguishes the queued input event types drained at
// NewFrameTick.
type EventKind int

const (
	EventKeyDown EventKind = iota
	EventKeyUp
	EventMouseDown
	EventMouseUp
	EventMouseMove
	EventChar
)

// Event is one queued input event, appended by a platform/window
// layer and drained FIFO by NewFrameTick.
type Event struct {
	Kind EventKind

	Key Key

	Button MouseButton
	X, Y   float64

	Char rune
}

type keyState struct {
	down             bool
	downSince        time.Time
	downDuration     time.Duration
	downDurationPrev time.Duration
	lastRepeat       time.Time
	pressedThisFrame bool
}

type mouseButtonState struct {
	down             bool
	downSince        time.Time
	downDuration     time.Duration
	downDurationPrev time.Duration
	maxDragDistSq    float64
	dragging         bool

	clickPos      [2]float64
	lastClickTime time.Time
	clickCount    int

	released bool

	pendingClick           bool // a MouseDown arrived this frame, awaiting advanceClickState
	pendingClickPos        [2]float64
	clickedThisFrame       bool
	releasedThisFrame      bool
	doubleClickedThisFrame bool
}

// Frame is the aggregated per-frame input and timing state of
// spec.md §3.6.
type Frame struct {
	DeltaTime  time.Duration
	Time       time.Duration
	FrameCount uint64

	FramebufferWidth, FramebufferHeight int
	FramebufferScale                    float64
	Running                             bool
	ViewportResized                     bool

	Modifiers Modifier

	DoubleClickTime    time.Duration
	DoubleClickMaxDist float64
	DragThreshold      float64
	KeyRepeatDelay     time.Duration
	KeyRepeatRate      time.Duration

	keys  map[Key]*keyState
	mouse [mouseButtonCount]mouseButtonState

	mouseX, mouseY float64

	nextCursor     int
	currentCursor  int
	cursorChanged  bool

	queue []Event

	textQueue []uint16 // UCS-2 surrogate-pair-aware, per spec.md §4.7

	frameStart   time.Time
	rateHistory  [120]time.Duration
	rateHistoryN int
	rateIndex    int
}

// NewFrame returns an io frame with the teacher-adjacent defaults
// (500ms double-click window, 4px max double-click displacement, 6px
// drag threshold) until a caller overrides them.
func NewFrame() *Frame {
	return &Frame{
		Running:            true,
		FramebufferScale:   1,
		DoubleClickTime:    500 * time.Millisecond,
		DoubleClickMaxDist: 4,
		DragThreshold:      6,
		KeyRepeatDelay:     300 * time.Millisecond,
		KeyRepeatRate:      50 * time.Millisecond,
		keys:               make(map[Key]*keyState),
	}
}

// PushEvent appends an event to the pending queue, drained at the next
// NewFrameTick call. Safe to call from a window/platform callback any
// time before that drain.
func (f *Frame) PushEvent(e Event) {
	f.queue = append(f.queue, e)
}

// SetNextCursor requests a cursor change to be committed at the next
// NewFrameTick call (step 6 of the algorithm below).
func (f *Frame) SetNextCursor(cursor int) {
	f.nextCursor = cursor
}

func (f *Frame) key(k Key) *keyState {
	st, ok := f.keys[k]
	if !ok {
		st = &keyState{}
		f.keys[k] = st
	}
	return st
}

// NewFrameTick runs the new_frame algorithm of spec.md §4.7, in
// order: timing, modifier chord, drain event queue, click/drag
// detection, cursor reconciliation.
func (f *Frame) NewFrameTick(now time.Time) {
	f.advanceTiming(now)
	f.updateModifierChord()
	f.drainEventQueue(now)
	f.advanceClickState(now)
	f.advanceDragState()
	f.reconcileCursor()
}

func (f *Frame) advanceTiming(now time.Time) {
	if f.frameStart.IsZero() {
		f.DeltaTime = 0
	} else {
		f.DeltaTime = now.Sub(f.frameStart)
	}
	f.frameStart = now
	f.Time += f.DeltaTime
	f.FrameCount++

	f.rateHistory[f.rateIndex] = f.DeltaTime
	f.rateIndex = (f.rateIndex + 1) % len(f.rateHistory)
	if f.rateHistoryN < len(f.rateHistory) {
		f.rateHistoryN++
	}

	for _, st := range f.keys {
		st.downDurationPrev = st.downDuration
		st.pressedThisFrame = false
		if st.down {
			st.downDuration = now.Sub(st.downSince)
		} else {
			st.downDuration = -1
		}
	}
	for i := range f.mouse {
		m := &f.mouse[i]
		m.downDurationPrev = m.downDuration
		if m.down {
			m.downDuration = now.Sub(m.downSince)
		} else {
			m.downDuration = -1
		}
		m.clickedThisFrame = false
		m.releasedThisFrame = false
		m.doubleClickedThisFrame = false
	}
}

func (f *Frame) updateModifierChord() {
	var m Modifier
	if f.key(keyCtrl).down {
		m |= ModCtrl
	}
	if f.key(keyShift).down {
		m |= ModShift
	}
	if f.key(keyAlt).down {
		m |= ModAlt
	}
	if f.key(keySuper).down {
		m |= ModSuper
	}
	f.Modifiers = m
}

// Reserved key codes for modifier tracking; callers map their
// platform's actual ctrl/shift/alt/super codes onto these via
// BindModifierKeys.
var (
	keyCtrl  Key = -1
	keyShift Key = -2
	keyAlt   Key = -3
	keySuper Key = -4
)

// BindModifierKeys tells Frame which Key values correspond to the
// ctrl/shift/alt/super modifiers, so updateModifierChord can read
// their down state from ordinary key events.
func BindModifierKeys(ctrl, shift, alt, super Key) {
	keyCtrl, keyShift, keyAlt, keySuper = ctrl, shift, alt, super
}

func (f *Frame) drainEventQueue(now time.Time) {
	pending := f.queue
	f.queue = nil

	for _, e := range pending {
		switch e.Kind {
		case EventKeyDown:
			st := f.key(e.Key)
			if !st.down {
				st.down = true
				st.downSince = now
				st.pressedThisFrame = true
			}
		case EventKeyUp:
			st := f.key(e.Key)
			st.down = false
		case EventMouseDown:
			m := &f.mouse[e.Button]
			m.down = true
			m.downSince = now
			m.released = false
			m.maxDragDistSq = 0
			m.pendingClick = true
			m.pendingClickPos = [2]float64{e.X, e.Y}
		case EventMouseUp:
			m := &f.mouse[e.Button]
			m.down = false
			m.released = true
			m.releasedThisFrame = true
			m.dragging = false
		case EventMouseMove:
			f.mouseX, f.mouseY = e.X, e.Y
			for i := range f.mouse {
				m := &f.mouse[i]
				if m.down {
					dx := e.X - m.pendingClickPos[0]
					dy := e.Y - m.pendingClickPos[1]
					if d2 := dx*dx + dy*dy; d2 > m.maxDragDistSq {
						m.maxDragDistSq = d2
					}
				}
			}
		case EventChar:
			f.pushText(e.Char)
		}
	}
}

// advanceClickState resolves each button's pending MouseDown (if any)
// against its click history: a double-click requires the new click to
// land within DoubleClickTime of the last one and within
// DoubleClickMaxDist of it, per spec.md §4.7 step 4.
func (f *Frame) advanceClickState(now time.Time) {
	for i := range f.mouse {
		m := &f.mouse[i]
		if !m.pendingClick {
			continue
		}
		m.pendingClick = false
		m.clickedThisFrame = true

		if !m.lastClickTime.IsZero() && now.Sub(m.lastClickTime) < f.DoubleClickTime {
			dx := m.pendingClickPos[0] - m.clickPos[0]
			dy := m.pendingClickPos[1] - m.clickPos[1]
			if dx*dx+dy*dy <= f.DoubleClickMaxDist*f.DoubleClickMaxDist {
				m.clickCount++
			} else {
				m.clickCount = 1
			}
		} else {
			m.clickCount = 1
		}
		m.doubleClickedThisFrame = m.clickCount >= 2
		m.clickPos = m.pendingClickPos
		m.lastClickTime = now
	}
}

func (f *Frame) advanceDragState() {
	for i := range f.mouse {
		m := &f.mouse[i]
		if m.down && m.maxDragDistSq > f.DragThreshold*f.DragThreshold {
			m.dragging = true
		}
	}
}

func (f *Frame) reconcileCursor() {
	if f.nextCursor != f.currentCursor {
		f.currentCursor = f.nextCursor
		f.cursorChanged = true
	} else {
		f.cursorChanged = false
	}
}

// pushText appends r to the UCS-2 text queue, encoding characters
// outside the BMP as a UTF-16 surrogate pair per spec.md §4.7's text
// input contract.
func (f *Frame) pushText(r rune) {
	if r1, r2 := utf16.EncodeRune(r); r1 != '�' {
		f.textQueue = append(f.textQueue, uint16(r1), uint16(r2))
		return
	}
	f.textQueue = append(f.textQueue, uint16(r))
}

// DrainText returns and clears the pending UCS-2 code unit queue.
func (f *Frame) DrainText() []uint16 {
	out := f.textQueue
	f.textQueue = nil
	return out
}

// SmoothedFrameRate returns frames-per-second averaged over the
// retained delta-time ring (up to the last 120 frames).
func (f *Frame) SmoothedFrameRate() float64 {
	if f.rateHistoryN == 0 {
		return 0
	}
	var total time.Duration
	for i := 0; i < f.rateHistoryN; i++ {
		total += f.rateHistory[i]
	}
	avg := total / time.Duration(f.rateHistoryN)
	if avg <= 0 {
		return 0
	}
	return float64(time.Second) / float64(avg)
}

// CurrentCursor and CursorChanged expose the reconciled cursor state.
func (f *Frame) CurrentCursor() int   { return f.currentCursor }
func (f *Frame) CursorChanged() bool  { return f.cursorChanged }
