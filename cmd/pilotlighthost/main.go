// Command pilotlighthost is the small host binary of spec.md §2: it
// owns nothing domain-specific itself, only wires up the core
// registries and extension loader and drives the main loop of
// spec.md §7 (pump OS events, begin frame, run the app, end frame,
// watch for module reloads). Grounded on the teacher's main.go for
// the overall shape (sequential component construction, CLI arg
// validation with os.Exit(1) on failure, a peripheral-start phase
// before the blocking GUI call).
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PilotLightTech/pilotlight/apiregistry"
	"github.com/PilotLightTech/pilotlight/dataregistry"
	"github.com/PilotLightTech/pilotlight/extregistry"
	"github.com/PilotLightTech/pilotlight/ioframe"
	"github.com/PilotLightTech/pilotlight/logging"
	"github.com/PilotLightTech/pilotlight/profiling"
	"github.com/PilotLightTech/pilotlight/window"
)

func main() {
	var (
		extDir    = flag.String("extensions", "", "directory to search for extension shared libraries")
		scratch   = flag.String("scratch", "", "scratch directory for reloadable shadow copies (defaults to a temp dir)")
		headless  = flag.Bool("headless", false, "run without creating an OS window")
		tickEvery = flag.Duration("tick", 16*time.Millisecond, "frame interval in headless mode")
	)
	flag.Parse()

	log := logging.NewLogger()
	console := log.AddChannel("host", logging.Init{Kind: logging.KindConsole})
	log.SetLevel(console, logging.LevelInfo)

	scratchDir := *scratch
	if scratchDir == "" {
		dir, err := os.MkdirTemp("", "pilotlight-ext-*")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create scratch directory: %v\n", err)
			os.Exit(1)
		}
		defer os.RemoveAll(dir)
		scratchDir = dir
	}

	apis := apiregistry.NewRegistry()

	store := dataregistry.NewStore()
	objects := dataregistry.NewObjectStore()
	dataregistry.Publish(apis, dataregistry.NewAPI(store, objects))

	profiler := profiling.NewProfiler()
	frame := ioframe.NewFrame()

	exts := extregistry.NewRegistry(apis, scratchDir)
	if *extDir != "" {
		if err := loadExtensions(exts, *extDir); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load extensions: %v\n", err)
			os.Exit(1)
		}
	}
	log.Logf(console, logging.LevelInfo, "loaded %d extension(s) from %s", len(exts.Extensions()), *extDir)

	run := func() bool {
		const mainThread = 0
		profiler.BeginFrame(mainThread)
		defer profiler.EndFrame(mainThread)

		frame.NewFrameTick(time.Now())

		if errs := exts.WatchReloads(); len(errs) > 0 {
			for _, err := range errs {
				log.Logf(console, logging.LevelError, "extension reload failed: %v", err)
			}
		}

		return true
	}

	if *headless {
		runHeadless(run, *tickEvery)
		return
	}

	win, res := window.Create(window.Config{
		Title:     "Pilot Light",
		Width:     1280,
		Height:    720,
		Resizable: true,
	}, frame)
	if res != window.WindowOK {
		fmt.Fprintln(os.Stderr, "failed to create window")
		os.Exit(1)
	}
	win.SetUpdateCallback(run)

	if res := win.Show(); res != window.WindowOK {
		fmt.Fprintln(os.Stderr, "window event loop exited with an error")
		os.Exit(1)
	}
}

// runHeadless drives the same per-tick callback Show would, for hosts
// with no window package available (CI, servers, the non-goal-per-
// spec.md §1 case of a display-less embedding).
func runHeadless(tick func() bool, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		if !tick() {
			return
		}
	}
}

// loadExtensions walks dir for native shared libraries and loads each
// one as a reloadable extension named after its file stem, resolving
// "Load"/"Unload" by name per spec.md §6.1.
func loadExtensions(registry *extregistry.Registry, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !isSharedLibrary(entry.Name()) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if _, res := registry.Load(name, "Load", "Unload", true, []string{dir}); res != extregistry.LibraryOK {
			return fmt.Errorf("loading %s", entry.Name())
		}
	}
	return nil
}

func isSharedLibrary(name string) bool {
	switch filepath.Ext(name) {
	case ".so", ".dll", ".dylib":
		return true
	default:
		return false
	}
}
