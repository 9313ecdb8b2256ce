package extregistry

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/PilotLightTech/pilotlight/apiregistry"
	"golang.org/x/sync/singleflight"
)

const (
	reopenRetries = 8
	reopenBackoff = 25 * time.Millisecond
)

// Registry orchestrates load/unload/reload of extension modules over
// the shared library loader and the API registry, per spec.md §4.5.
// The scheduling model (spec.md §7) is single-threaded cooperative, so
// Load/Unload/WatchReloads are not internally synchronized against
// each other; singleflight only guards against a reload watch being
// invoked re-entrantly or from more than one goroutine (e.g. a manual
// reload request racing the per-frame watch tick) for the same
// extension name.
type Registry struct {
	apis       *apiregistry.Registry
	scratchDir string
	opener     moduleOpener

	mu   sync.Mutex
	exts map[string]*Extension

	reloadGroup singleflight.Group
}

// moduleOpener opens and resolves a module's load/unload entry
// points. The real implementation shells out to openLibrary plus
// resolveEntryPoints; tests substitute a fake that never touches
// plugin.Open, since Go plugins require an actually-built .so and
// cannot be exercised portably in a unit test.
type moduleOpener func(name, loadSym, unloadSym string, reloadable bool, searchPaths []string, scratchDir string) (*Extension, LibraryResult)

func defaultOpener(name, loadSym, unloadSym string, reloadable bool, searchPaths []string, scratchDir string) (*Extension, LibraryResult) {
	lib, res := openLibrary(name, searchPaths, reloadable, scratchDir)
	if res != LibraryOK {
		return nil, LibraryFail
	}
	loadFn, unloadFn, res := resolveEntryPoints(lib, loadSym, unloadSym)
	if res != LibraryOK {
		lib.close()
		return nil, LibraryFail
	}
	return &Extension{
		Name:             name,
		LoadSymbolName:   loadSym,
		UnloadSymbolName: unloadSym,
		Reloadable:       reloadable,
		SearchPaths:      searchPaths,
		library:          lib,
		load:             loadFn,
		unload:           unloadFn,
	}, LibraryOK
}

// NewRegistry returns an extension registry that publishes resolved
// APIs into apis, shadow-copying reloadable modules under scratchDir.
func NewRegistry(apis *apiregistry.Registry, scratchDir string) *Registry {
	return &Registry{
		apis:       apis,
		scratchDir: scratchDir,
		opener:     defaultOpener,
		exts:       make(map[string]*Extension),
	}
}

// Load resolves name against searchPaths, opens it via the shared
// library loader, resolves loadSym (required) and unloadSym
// (optional, may be empty), then calls load(reload=false). Per
// spec.md §4.5.
func (r *Registry) Load(name, loadSym, unloadSym string, reloadable bool, searchPaths []string) (*Extension, LibraryResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.exts[name]; ok && existing.state != Unloaded {
		return existing, LibraryFail
	}

	ext, res := r.opener(name, loadSym, unloadSym, reloadable, searchPaths, r.scratchDir)
	if res != LibraryOK {
		return nil, LibraryFail
	}

	ext.load(r.apis, false)
	ext.state = Loaded
	r.exts[name] = ext
	return ext, LibraryOK
}

// Unload calls unload(reload=false) and releases the extension's
// shared library. Per spec.md §4.5.
func (r *Registry) Unload(name string) LibraryResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unloadLocked(name, false)
}

func (r *Registry) unloadLocked(name string, reload bool) LibraryResult {
	ext, ok := r.exts[name]
	if !ok || ext.state == Unloaded {
		return LibraryFail
	}

	if ext.unload != nil {
		ext.unload(r.apis, reload)
	}
	ext.library.close()
	if reload {
		// Transient: the caller is mid-reload and already marked the
		// extension Reloading. It only becomes Unloaded for good if
		// the reload fails to reach a new load() call.
	} else {
		ext.state = Unloaded
		delete(r.exts, name)
	}
	return LibraryOK
}

// resolveEntryPoints resolves loadSym (required) and unloadSym
// (optional, skipped when empty) against an opened library.
func resolveEntryPoints(lib *SharedLibrary, loadSym, unloadSym string) (LoadFunc, UnloadFunc, LibraryResult) {
	loadSymbol, err := lib.symbol(loadSym)
	if err != nil {
		return nil, nil, LibraryFail
	}
	loadFn, ok := loadSymbol.(func(*apiregistry.Registry, bool))
	if !ok {
		return nil, nil, LibraryFail
	}

	var unloadFn UnloadFunc
	if unloadSym != "" {
		unloadSymbol, err := lib.symbol(unloadSym)
		if err != nil {
			return nil, nil, LibraryFail
		}
		fn, ok := unloadSymbol.(func(*apiregistry.Registry, bool))
		if !ok {
			return nil, nil, LibraryFail
		}
		unloadFn = fn
	}

	return loadFn, unloadFn, LibraryOK
}

// WatchReloads checks every reloadable extension's on-disk mtime and
// reloads any that changed. Invoked each frame or on demand, per
// spec.md §4.5. A reload failure leaves the extension unloaded and
// returns its error rather than leaving a half-initialized API
// published, satisfying the reload-atomicity invariant of spec.md §8.
func (r *Registry) WatchReloads() []error {
	r.mu.Lock()
	names := make([]string, 0, len(r.exts))
	for name, ext := range r.exts {
		if ext.Reloadable && ext.state == Loaded && ext.library.HasChanged() {
			names = append(names, name)
		}
	}
	r.mu.Unlock()

	var errs []error
	for _, name := range names {
		_, err, _ := r.reloadGroup.Do(name, func() (any, error) {
			return nil, r.reload(name)
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// reload implements the close -> wait for writable -> reopen ->
// resolve -> load(reload=true) sequence of spec.md §3.3/§4.5. The
// registry itself neither removes nor publishes API records here:
// whether the prior record stays published between unload(reload=true)
// and load(reload=true) is decided by the extension's own entry points
// (physicsext keeps its record published and re-points it on load).
func (r *Registry) reload(name string) error {
	r.mu.Lock()
	ext, ok := r.exts[name]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("reload %q: not loaded", name)
	}
	ext.state = Reloading
	path := ext.library.path
	loadSym, unloadSym := ext.LoadSymbolName, ext.UnloadSymbolName
	searchPaths := ext.SearchPaths
	r.unloadLocked(name, true)
	r.mu.Unlock()

	if err := waitWritable(path); err != nil {
		r.mu.Lock()
		ext.state = Unloaded
		delete(r.exts, name)
		r.mu.Unlock()
		return fmt.Errorf("reload %q: %w", name, err)
	}

	fresh, res := r.opener(name, loadSym, unloadSym, true, searchPaths, r.scratchDir)
	if res != LibraryOK {
		r.mu.Lock()
		ext.state = Unloaded
		delete(r.exts, name)
		r.mu.Unlock()
		return fmt.Errorf("reload %q: reopen failed", name)
	}

	r.mu.Lock()
	ext.library = fresh.library
	ext.load = fresh.load
	ext.unload = fresh.unload
	r.mu.Unlock()

	ext.load(r.apis, true)

	r.mu.Lock()
	ext.state = Loaded
	r.exts[name] = ext
	r.mu.Unlock()
	return nil
}

// waitWritable retries a brief, backed-off open-for-read against path
// to avoid racing a build toolchain that is still writing the file,
// per spec.md §4.5/§10 (hot-reload race).
func waitWritable(path string) error {
	var lastErr error
	for i := 0; i < reopenRetries; i++ {
		f, err := os.Open(path)
		if err == nil {
			f.Close()
			return nil
		}
		lastErr = err
		time.Sleep(reopenBackoff)
	}
	return fmt.Errorf("file not openable after retries: %w", lastErr)
}

// Extensions returns a snapshot of the currently tracked extensions,
// for diagnostics.
func (r *Registry) Extensions() []*Extension {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Extension, 0, len(r.exts))
	for _, e := range r.exts {
		out = append(out, e)
	}
	return out
}
