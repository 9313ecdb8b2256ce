package extregistry

import "github.com/PilotLightTech/pilotlight/apiregistry"

// LoadFunc is the signature every extension must export under its
// load symbol name, per spec.md §6.1. reload is false on first load
// and true on hot reload; extensions must treat reload=true as "state
// lives in the data registry, re-bind pointers and re-publish your
// API".
type LoadFunc func(registry *apiregistry.Registry, reload bool)

// UnloadFunc is the signature every extension must export under its
// unload symbol name, per spec.md §6.1.
type UnloadFunc func(registry *apiregistry.Registry, reload bool)

// State is an extension's position in the load/reload lifecycle of
// spec.md §4.5.
type State int

const (
	Unloaded State = iota
	Loaded
	Reloading
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	case Reloading:
		return "reloading"
	default:
		return "unknown"
	}
}

// Extension is the record of spec.md §3.3: an owned shared library
// plus the resolved load/unload entry points and search configuration
// needed to reload it.
type Extension struct {
	Name             string
	LoadSymbolName   string
	UnloadSymbolName string
	Reloadable       bool
	SearchPaths      []string

	library *SharedLibrary
	load    LoadFunc
	unload  UnloadFunc
	state   State
}

func (e *Extension) State() State { return e.state }
