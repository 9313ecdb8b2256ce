package dataregistry

import (
	"unsafe"

	"github.com/PilotLightTech/pilotlight/apiregistry"
)

// APIName is the name under which the host publishes the data
// registry's own vtable, mirroring the original's plDataRegistryI.
// Extensions never import this package directly for cross-reload
// globals; they resolve this API through the API registry the same
// way they resolve any other interface, per spec.md §9's "keep a
// single store of ptr behind the registry" redesign note.
const APIName = "DataRegistry"

// APIVersion is the version the host publishes API under.
var APIVersion = apiregistry.Version{Major: 1, Minor: 0, Patch: 0}

// API is the vtable extensions resolve to reach the simple map and
// object store, matching pl_physics_ext.c's pattern of resolving
// plDataRegistryI and calling get_data/set_data to recover a context
// pointer across a reload.
type API struct {
	GetData func(name string) unsafe.Pointer
	SetData func(name string, pointer unsafe.Pointer)

	CreateObject    func() DataID
	GetObjectByName func(name string) (DataID, bool)
	Read            func(id DataID) (*Snapshot, bool)
	EndRead         func(snap *Snapshot)
	Write           func(id DataID) (*WriteHandle, bool)
	Commit          func(h *WriteHandle)
}

// NewAPI builds the vtable closing over store and objects.
func NewAPI(store *Store, objects *ObjectStore) *API {
	return &API{
		GetData:         store.GetData,
		SetData:         store.SetData,
		CreateObject:    objects.CreateObject,
		GetObjectByName: objects.GetObjectByName,
		Read:            objects.Read,
		EndRead:         objects.EndRead,
		Write:           objects.Write,
		Commit:          objects.Commit,
	}
}

// Publish registers API under APIName/APIVersion in registry, for the
// host to call once at startup before loading any extension.
func Publish(registry *apiregistry.Registry, api *API) {
	registry.SetAPI(APIName, APIVersion, unsafe.Pointer(api), unsafe.Sizeof(*api))
}

// Resolve fetches the published data registry API, or nil if the host
// has not published one yet.
func Resolve(registry *apiregistry.Registry) *API {
	p := registry.GetAPI(APIName, APIVersion)
	if p == nil {
		return nil
	}
	return (*API)(p)
}
