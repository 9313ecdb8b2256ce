// Package profiling implements the per-thread sample tree collector of
// spec.md §4.9: a profiler keeps one open-sample stack per thread
// index, and double-buffers each thread's frame sample lists so a
// caller reading "the last complete frame" never races a frame still
// being recorded. Grounded on the teacher's debug_monitor.go, which
// indexes per-CPU state through a map[int]*CPUEntry — the same shape
// applied here per thread index instead of per CPU.
package profiling

import (
	"sync"
	"time"
)

// Sample is a single (name, start, duration, depth) record, per
// spec.md's glossary entry.
type Sample struct {
	Name     string
	Start    time.Time
	Duration time.Duration
	Depth    int
}

type openSample struct {
	name  string
	start time.Time
	depth int
}

// threadState is one thread's sample stack plus its double-buffered
// frame sample lists.
type threadState struct {
	mu sync.Mutex

	stack []openSample

	// frames[current] accumulates samples for the frame in progress;
	// frames[1-current] holds the last completed frame, stable for
	// GetLastFrameSamples until the next BeginFrame flips current.
	frames  [2][]Sample
	current int

	frameStart    time.Time
	overheadStart time.Time
	overhead      time.Duration
	lastOverhead  time.Duration
}

// Profiler is the process-wide profiling collector: a set of
// independent per-thread states, created lazily on first use.
type Profiler struct {
	mu      sync.Mutex
	threads map[int]*threadState
}

// NewProfiler returns an empty profiler.
func NewProfiler() *Profiler {
	return &Profiler{threads: make(map[int]*threadState)}
}

func (p *Profiler) thread(index int) *threadState {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.threads[index]
	if !ok {
		t = &threadState{}
		p.threads[index] = t
	}
	return t
}

// BeginFrame starts a new frame for threadIndex, swapping the frame
// buffers so the previously-current frame becomes the stable
// "last frame" and a fresh buffer starts accumulating.
func (p *Profiler) BeginFrame(threadIndex int) {
	t := p.thread(threadIndex)
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current = 1 - t.current
	t.frames[t.current] = t.frames[t.current][:0]
	t.frameStart = time.Now()
	t.overhead = 0
}

// EndFrame closes the current frame, recording the time spent inside
// the profiler itself (BeginSample/EndSample bookkeeping) as the
// frame's overhead figure.
func (p *Profiler) EndFrame(threadIndex int) {
	t := p.thread(threadIndex)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastOverhead = t.overhead
}

// BeginSample pushes an open sample onto threadIndex's stack.
func (p *Profiler) BeginSample(threadIndex int, name string) {
	overheadStart := time.Now()
	t := p.thread(threadIndex)
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stack = append(t.stack, openSample{
		name:  name,
		start: time.Now(),
		depth: len(t.stack),
	})
	t.overhead += time.Since(overheadStart)
}

// EndSample pops the most recently opened sample on threadIndex's
// stack, computes its duration, and appends it to the current frame's
// sample list. EndSample on an empty stack is a no-op.
func (p *Profiler) EndSample(threadIndex int) {
	now := time.Now()
	t := p.thread(threadIndex)
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.stack) == 0 {
		return
	}
	top := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]

	t.frames[t.current] = append(t.frames[t.current], Sample{
		Name:     top.name,
		Start:    top.start,
		Duration: now.Sub(top.start),
		Depth:    top.depth,
	})
	t.overhead += time.Since(now)
}

// GetLastFrameSamples returns the samples recorded during
// threadIndex's last complete frame, in the order EndSample closed
// them.
func (p *Profiler) GetLastFrameSamples(threadIndex int) []Sample {
	t := p.thread(threadIndex)
	t.mu.Lock()
	defer t.mu.Unlock()

	prior := t.frames[1-t.current]
	out := make([]Sample, len(prior))
	copy(out, prior)
	return out
}

// GetLastFrameOverhead returns the time spent inside the profiler
// itself during threadIndex's last completed frame.
func (p *Profiler) GetLastFrameOverhead(threadIndex int) time.Duration {
	t := p.thread(threadIndex)
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastOverhead
}

// OpenDepth reports how many samples are currently open on
// threadIndex's stack, for callers asserting balanced
// Begin/EndSample pairs.
func (p *Profiler) OpenDepth(threadIndex int) int {
	t := p.thread(threadIndex)
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.stack)
}
