package ioframe

import "time"

// IsKeyDown reports whether key is currently held down.
func (f *Frame) IsKeyDown(k Key) bool {
	return f.key(k).down
}

// IsKeyPressed reports whether key became down this frame, or — if
// repeat is true — whether it additionally satisfies the
// KeyRepeatDelay/KeyRepeatRate sequencing for a synthetic repeat
// pulse this frame. Per spec.md §8, between two NewFrameTick calls
// this is true at most once per actual press.
func (f *Frame) IsKeyPressed(k Key, repeat bool) bool {
	st := f.key(k)
	if st.pressedThisFrame {
		st.lastRepeat = f.frameStart
		return true
	}
	if !repeat || !st.down {
		return false
	}
	sinceDown := f.frameStart.Sub(st.downSince)
	if sinceDown < f.KeyRepeatDelay {
		return false
	}
	sinceRepeat := f.frameStart.Sub(st.lastRepeat)
	if sinceRepeat >= f.KeyRepeatRate {
		st.lastRepeat = f.frameStart
		return true
	}
	return false
}

// GetKeyPressedAmount returns how many repeat pulses key would have
// fired this frame for the given delay/rate, independent of the
// frame's own KeyRepeatDelay/KeyRepeatRate. It compares the key's held
// duration at the start and end of this frame against the typematic
// schedule so the count is correct even if a caller only polls every
// few frames.
func (f *Frame) GetKeyPressedAmount(k Key, delay, rate time.Duration) int {
	st := f.key(k)
	if !st.down {
		return 0
	}
	if st.pressedThisFrame {
		return 1
	}
	t0, t1 := st.downDurationPrev, st.downDuration
	if t0 >= t1 {
		return 0
	}
	if rate <= 0 {
		if t0 < delay && t1 >= delay {
			return 1
		}
		return 0
	}
	countAt := func(t time.Duration) int {
		if t < delay {
			return -1
		}
		return int((t - delay) / rate)
	}
	return countAt(t1) - countAt(t0)
}

// IsMouseDown reports whether button is currently held down.
func (f *Frame) IsMouseDown(b MouseButton) bool {
	return f.mouse[b].down
}

// IsMouseClicked reports whether button transitioned to down this
// frame.
func (f *Frame) IsMouseClicked(b MouseButton) bool {
	return f.mouse[b].clickedThisFrame
}

// IsMouseReleased reports whether button transitioned to up this
// frame.
func (f *Frame) IsMouseReleased(b MouseButton) bool {
	return f.mouse[b].releasedThisFrame
}

// IsMouseDoubleClicked reports whether button's click this frame
// completed a double-click, per spec.md §8's double-click property.
func (f *Frame) IsMouseDoubleClicked(b MouseButton) bool {
	return f.mouse[b].doubleClickedThisFrame
}

// IsMouseDragging reports whether button is down and has moved beyond
// DragThreshold since it went down.
func (f *Frame) IsMouseDragging(b MouseButton) bool {
	return f.mouse[b].dragging
}

// IsHoveringRect reports whether the current mouse position lies
// within the axis-aligned rectangle [x0,y0]-[x1,y1].
func (f *Frame) IsHoveringRect(x0, y0, x1, y1 float64) bool {
	return f.mouseX >= x0 && f.mouseX <= x1 && f.mouseY >= y0 && f.mouseY <= y1
}

// MousePosition returns the current cursor position.
func (f *Frame) MousePosition() (x, y float64) {
	return f.mouseX, f.mouseY
}

// GetMouseDragDelta returns the displacement from button's click
// position to the current mouse position, clamped to zero until the
// cumulative displacement has exceeded threshold.
func (f *Frame) GetMouseDragDelta(b MouseButton, threshold float64) (dx, dy float64) {
	m := &f.mouse[b]
	if !m.down {
		return 0, 0
	}
	if m.maxDragDistSq < threshold*threshold {
		return 0, 0
	}
	return f.mouseX - m.clickPos[0], f.mouseY - m.clickPos[1]
}

// KeyDownDuration returns how long key has been held, or a negative
// duration if it is currently up.
func (f *Frame) KeyDownDuration(k Key) time.Duration {
	return f.key(k).downDuration
}
