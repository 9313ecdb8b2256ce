// Package apiregistry brokers versioned interface vtables between the
// host and its extensions. It is the contract point described in
// spec.md §3.2/§4.4: a publisher calls SetAPI with a name, a semantic
// version and an opaque pointer; a consumer calls GetAPI with the name
// and the version it was built against and gets back the current
// pointer if the publisher's minor is compatible.
package apiregistry

import "fmt"

// Version is a semantic version triple. Patch never affects
// compatibility; it exists purely for diagnostics.
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// CompatibleFor reports whether a record published at version v can be
// consumed by code requesting version want: majors must match exactly
// and the provider's minor must be at least the requested minor.
func (v Version) CompatibleFor(want Version) bool {
	return v.Major == want.Major && v.Minor >= want.Minor
}
