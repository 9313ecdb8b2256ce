// Command physicsext is a reference extension built as a Go plugin
// (`go build -buildmode=plugin`). It wraps the physics package's World
// behind a vtable published in the API registry, mirroring the load/
// unload entry points pl_physics_ext.c exports for the host to resolve
// by name, per spec.md §4.5/§6.1.
//
// Go's plugin package requires the host and every loaded plugin to
// have been built from byte-identical versions of every shared
// package (runtime, stdlib, and anything imported by both); mismatched
// builds fail to load with an opaque error. Extensions therefore live
// in this module's own tree rather than a separate module, so "go
// build -buildmode=plugin ./extensions/physicsext" and the host build
// always see the same dependency graph.
package main

import (
	"unsafe"

	"github.com/PilotLightTech/pilotlight/apiregistry"
	"github.com/PilotLightTech/pilotlight/dataregistry"
	"github.com/PilotLightTech/pilotlight/physics"
)

// APIName/APIVersion are the identifiers this extension publishes
// itself under, resolved by consumers via apiregistry.Registry.GetAPI.
const APIName = "Physics"

var APIVersion = apiregistry.Version{Major: 1, Minor: 0, Patch: 0}

// API is the vtable this extension publishes, mirroring the shape of
// pl_physics_ext.c's plPhysicsI: every operation closes over a single
// package-level World so other extensions never need this package's
// types, only the function pointers.
type API struct {
	AddBody    func(body *physics.RigidBody) physics.BodyHandle
	Body       func(handle physics.BodyHandle) *physics.RigidBody
	AddField   func(field *physics.Field)
	Frame      func(dtRender float64)
	WakeUpBody func(handle physics.BodyHandle)
	WakeUpAll  func()
	SleepBody  func(handle physics.BodyHandle)
	SleepAll   func()
}

// context is this extension's cross-reload state, stashed in the data
// registry under contextKey the same way pl_physics_ext.c stashes
// gptPhysicsCtx under "plPhysicsContext".
type context struct {
	world *physics.World
	api   API
}

const contextKey = "PhysicsContext"

// Load is resolved by name from the extension registry and called
// with reload=false on first load, reload=true on every hot reload.
func Load(registry *apiregistry.Registry, reload bool) {
	data := dataregistry.Resolve(registry)

	var ctx *context
	if reload && data != nil {
		if ptr := data.GetData(contextKey); ptr != nil {
			ctx = (*context)(ptr)
		}
	}
	if ctx == nil {
		ctx = &context{world: physics.NewWorld(physics.DefaultSettings())}
		if data != nil {
			data.SetData(contextKey, unsafe.Pointer(ctx))
		}
	}

	w := ctx.world
	ctx.api = API{
		AddBody:    w.AddBody,
		Body:       w.Body,
		AddField:   w.AddField,
		Frame:      w.Frame,
		WakeUpBody: func(h physics.BodyHandle) { w.Body(h).WakeUp() },
		WakeUpAll:  w.WakeAll,
		SleepBody:  func(h physics.BodyHandle) { w.Body(h).Sleep() },
		SleepAll:   w.SleepAll,
	}

	registry.SetAPI(APIName, APIVersion, unsafe.Pointer(&ctx.api), unsafe.Sizeof(ctx.api))
}

// Unload is resolved by name and called with reload=true just before
// the library is closed for a hot reload (state already lives in the
// data registry by then, so there is nothing to do) or reload=false
// when the extension is being unloaded for good, in which case its
// API record is removed from the registry.
func Unload(registry *apiregistry.Registry, reload bool) {
	if reload {
		return
	}
	if ptr := registry.GetAPI(APIName, APIVersion); ptr != nil {
		registry.RemoveAPI(ptr)
	}
}

// main is required for a buildmode=plugin package but is never
// invoked; the host calls Load/Unload through plugin.Lookup instead.
func main() {}
