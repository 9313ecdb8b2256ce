// Package window is the experimental, optional window/input backend
// of spec.md §6.3: it owns nothing the core depends on, only feeds an
// ioframe.Frame's event queue from OS input and exposes clipboard
// text in/out. Grounded on the teacher's video_backend_ebiten.go for
// the Ebiten wiring shape (run loop, callback registration, clipboard
// paste handling).
package window

import (
	"bytes"
	"image"
	stddraw "image/draw"
	_ "image/png"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"
	"golang.org/x/image/draw"

	"github.com/PilotLightTech/pilotlight/ioframe"
)

// WindowResult is the two-valued success/fail result of spec.md §6.4
// for window operations.
type WindowResult int

const (
	WindowOK WindowResult = iota
	WindowFail
)

// Config describes the window a host wants created, per spec.md §6.3.
type Config struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
}

func init() {
	// Map the four modifier keys Frame needs into Key space, using
	// Ebiten's own key codes so pumpKeyboard below can feed the same
	// values straight through PushEvent.
	ioframe.BindModifierKeys(
		ioframe.Key(ebiten.KeyControlLeft),
		ioframe.Key(ebiten.KeyShiftLeft),
		ioframe.Key(ebiten.KeyAltLeft),
		ioframe.Key(ebiten.KeyMetaLeft),
	)
}

// Window is an Ebiten-backed ebiten.Game that feeds a *ioframe.Frame
// from OS mouse/keyboard/text events and runs a host-supplied update
// callback once per tick, per spec.md §2's "small host binary ...
// drives the main loop".
type Window struct {
	config Config
	frame  *ioframe.Frame

	mu     sync.Mutex
	update func() bool
	closed bool

	clipboardOnce sync.Once
	clipboardOK   bool

	pressedKeys  []ebiten.Key
	trackedMouse [3]bool
}

// Create constructs a window bound to frame; OS input observed during
// Update feeds frame.PushEvent. The window is not shown until Show is
// called.
func Create(config Config, frame *ioframe.Frame) (*Window, WindowResult) {
	if frame == nil {
		return nil, WindowFail
	}
	if config.Width <= 0 {
		config.Width = 1280
	}
	if config.Height <= 0 {
		config.Height = 720
	}
	return &Window{config: config, frame: frame}, WindowOK
}

// SetUpdateCallback registers the per-tick function the host's main
// loop runs inside Ebiten's own Update. A false return stops the run
// loop, mirroring io.running driving shutdown per spec.md §10.
func (w *Window) SetUpdateCallback(fn func() bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.update = fn
}

// Show creates the OS window and blocks running the event loop until
// the update callback returns false or the window is closed.
func (w *Window) Show() WindowResult {
	ebiten.SetWindowSize(w.config.Width, w.config.Height)
	ebiten.SetWindowTitle(w.config.Title)
	ebiten.SetWindowResizable(w.config.Resizable)
	ebiten.SetRunnableOnUnfocused(true)

	if err := ebiten.RunGame(w); err != nil && err != ebiten.Termination {
		return WindowFail
	}
	return WindowOK
}

// Destroy marks the window closed; the next Update tick returns
// ebiten.Termination to unwind Show's RunGame call.
func (w *Window) Destroy() WindowResult {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return WindowOK
}

// Update implements ebiten.Game: it pumps OS input into the bound
// Frame's event queue, then runs the host's update callback.
func (w *Window) Update() error {
	w.mu.Lock()
	closed := w.closed
	cb := w.update
	w.mu.Unlock()
	if closed || ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}

	w.pumpKeyboard()
	w.pumpMouse()
	w.pumpText()

	if cb != nil && !cb() {
		return ebiten.Termination
	}
	return nil
}

func (w *Window) pumpKeyboard() {
	w.pressedKeys = inpututil.AppendJustPressedKeys(w.pressedKeys[:0])
	for _, k := range w.pressedKeys {
		w.frame.PushEvent(ioframe.Event{Kind: ioframe.EventKeyDown, Key: ioframe.Key(k)})
	}
	for _, k := range inpututil.AppendJustReleasedKeys(nil) {
		w.frame.PushEvent(ioframe.Event{Kind: ioframe.EventKeyUp, Key: ioframe.Key(k)})
	}
}

var ebitenMouseButtons = [3]ebiten.MouseButton{
	ebiten.MouseButtonLeft, ebiten.MouseButtonRight, ebiten.MouseButtonMiddle,
}

func (w *Window) pumpMouse() {
	x, y := ebiten.CursorPosition()
	w.frame.PushEvent(ioframe.Event{Kind: ioframe.EventMouseMove, X: float64(x), Y: float64(y)})

	for i, eb := range ebitenMouseButtons {
		down := ebiten.IsMouseButtonPressed(eb)
		if down && !w.trackedMouse[i] {
			w.frame.PushEvent(ioframe.Event{Kind: ioframe.EventMouseDown, Button: ioframe.MouseButton(i), X: float64(x), Y: float64(y)})
		} else if !down && w.trackedMouse[i] {
			w.frame.PushEvent(ioframe.Event{Kind: ioframe.EventMouseUp, Button: ioframe.MouseButton(i), X: float64(x), Y: float64(y)})
		}
		w.trackedMouse[i] = down
	}
}

func (w *Window) pumpText() {
	for _, r := range ebiten.AppendInputChars(nil) {
		w.frame.PushEvent(ioframe.Event{Kind: ioframe.EventChar, Char: r})
	}
}

// Draw satisfies ebiten.Game; Pilot Light's core has no rendering
// responsibility (spec.md §1 non-goals), so this is intentionally a
// no-op — any pixels on screen come from an extension drawing
// directly via its own means, outside this package's scope.
func (w *Window) Draw(screen *ebiten.Image) {}

// Layout satisfies ebiten.Game, reporting the outside size unchanged
// as the logical screen size; spec.md's ViewportResized flag is updated by the host
// comparing FramebufferWidth/Height across frames, not by this method.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// ReadClipboard returns the current clipboard text, or ("", false) if
// the clipboard is unavailable or empty.
func (w *Window) ReadClipboard() (string, bool) {
	w.clipboardOnce.Do(func() { w.clipboardOK = clipboard.Init() == nil })
	if !w.clipboardOK {
		return "", false
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return "", false
	}
	return string(data), true
}

// WriteClipboard sets the clipboard text.
func (w *Window) WriteClipboard(text string) WindowResult {
	w.clipboardOnce.Do(func() { w.clipboardOK = clipboard.Init() == nil })
	if !w.clipboardOK {
		return WindowFail
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return WindowOK
}

// SetIcon decodes a PNG-encoded icon, downsamples it to size×size with
// a high-quality scaler, and installs it as the OS window icon.
func SetIcon(pngData []byte, size int) WindowResult {
	src, _, err := image.Decode(bytes.NewReader(pngData))
	if err != nil {
		return WindowFail
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), stddraw.Over, nil)
	ebiten.SetWindowIcon([]image.Image{dst})
	return WindowOK
}
