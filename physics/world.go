package physics

import "math"

// Settings configures a World's frame loop and solver, defaulting to
// the same values pl_physics_ext.c falls back to when a caller leaves
// a setting at its zero value.
type Settings struct {
	SimulationFrameRate  float64
	SimulationMultiplier float64

	SleepEpsilon    float64
	PositionEpsilon float64
	VelocityEpsilon float64

	MaxPositionIterations int
	MaxVelocityIterations int
}

// DefaultSettings returns the settings pl_physics_ext.c falls back to.
func DefaultSettings() Settings {
	return Settings{
		SimulationFrameRate:   60,
		SimulationMultiplier:  1,
		SleepEpsilon:          DefaultSleepEpsilon,
		PositionEpsilon:       DefaultPositionEpsilon,
		VelocityEpsilon:       DefaultVelocityEpsilon,
		MaxPositionIterations: DefaultMaxPositionIterations,
		MaxVelocityIterations: DefaultMaxVelocityIterations,
	}
}

// World owns the rigid bodies, force fields and per-frame contact list
// of spec.md §4.10. Bodies are addressed by BodyHandle rather than
// pointer, per the §9 redesign note.
type World struct {
	settings Settings

	bodies []*RigidBody
	fields []*Field

	contacts []Contact

	// lastPositionIterations/lastVelocityIterations surface the
	// solver's iteration counts for profiling, per spec.md §7's
	// "Physics over-iteration" handling.
	lastPositionIterations int
	lastVelocityIterations int
}

// NewWorld returns a World configured with settings. A zero Settings
// is replaced field-by-field with DefaultSettings' values.
func NewWorld(settings Settings) *World {
	d := DefaultSettings()
	if settings.SimulationFrameRate == 0 {
		settings.SimulationFrameRate = d.SimulationFrameRate
	}
	if settings.SimulationMultiplier == 0 {
		settings.SimulationMultiplier = d.SimulationMultiplier
	}
	if settings.SleepEpsilon == 0 {
		settings.SleepEpsilon = d.SleepEpsilon
	}
	if settings.PositionEpsilon == 0 {
		settings.PositionEpsilon = d.PositionEpsilon
	}
	if settings.VelocityEpsilon == 0 {
		settings.VelocityEpsilon = d.VelocityEpsilon
	}
	if settings.MaxPositionIterations == 0 {
		settings.MaxPositionIterations = d.MaxPositionIterations
	}
	if settings.MaxVelocityIterations == 0 {
		settings.MaxVelocityIterations = d.MaxVelocityIterations
	}
	return &World{settings: settings}
}

// AddBody registers body and returns a stable handle to it.
func (w *World) AddBody(body *RigidBody) BodyHandle {
	w.bodies = append(w.bodies, body)
	return BodyHandle(len(w.bodies) - 1)
}

// Body returns the body at handle. Panics on an out-of-range handle,
// the same contract Go slices give any other indexed collection.
func (w *World) Body(handle BodyHandle) *RigidBody {
	return w.bodies[handle]
}

// AddField registers a force field.
func (w *World) AddField(field *Field) {
	w.fields = append(w.fields, field)
}

// WakeAll forces every dynamic body awake, mirroring
// pl_physics_ext.c's pl_physics_wake_up_all.
func (w *World) WakeAll() {
	for _, b := range w.bodies {
		b.WakeUp()
	}
}

// SleepAll forces every dynamic body to sleep, mirroring
// pl_physics_ext.c's pl_physics_sleep_all.
func (w *World) SleepAll() {
	for _, b := range w.bodies {
		b.Sleep()
	}
}

// LastIterationCounts reports the position/velocity iteration counts
// used resolving the most recent substep, for profiling counters per
// spec.md §7.
func (w *World) LastIterationCounts() (position, velocity int) {
	return w.lastPositionIterations, w.lastVelocityIterations
}

// Frame advances the world by render-time delta dtRender, per the
// frame loop of spec.md §4.10.1: a fixed number of substeps at
// 1/SimulationFrameRate each, plus a final interpolation fraction
// blending the last two substep states for smooth rendering between
// simulation ticks.
func (w *World) Frame(dtRender float64) {
	h := 1 / w.settings.SimulationFrameRate
	if dtRender <= 0 {
		return
	}

	n := int(math.Ceil(dtRender / h))
	steps := int(math.Floor(dtRender / h))
	r := (dtRender - float64(steps)*h) / h

	step := h * w.settings.SimulationMultiplier
	for i := 0; i < n; i++ {
		w.substep(step)
	}

	if r > 0 {
		w.interpolate(r)
	} else {
		for _, b := range w.bodies {
			b.renderPosition, b.renderOrientation = Vec3{}, Quat{}
		}
	}
}

// substep runs one fixed-duration physics tick: apply force fields,
// detect collisions, resolve contacts, integrate.
func (w *World) substep(dt float64) {
	for _, f := range w.fields {
		f.apply(w.bodies)
	}

	w.detectCollisions()
	w.resolveContacts(dt)

	for _, b := range w.bodies {
		integrate(b, dt, w.settings.SleepEpsilon)
	}
}

// detectCollisions runs the all-pairs broad phase (documented
// placeholder for a future BVH, per spec.md §4.10.3) and narrow-phase
// dispatch by shape kind.
func (w *World) detectCollisions() {
	w.contacts = w.contacts[:0]
	for i := 0; i < len(w.bodies); i++ {
		a := w.bodies[i]
		for j := i + 1; j < len(w.bodies); j++ {
			b := w.bodies[j]
			if a.Motion == Static && b.Motion == Static {
				continue
			}
			if !a.IsAwake && !b.IsAwake && a.Motion != Static && b.Motion != Static {
				continue
			}
			if c, ok := w.narrowPhase(i, j, a, b); ok {
				w.contacts = append(w.contacts, c)
			}
		}
	}
}

func (w *World) narrowPhase(i, j int, a, b *RigidBody) (Contact, bool) {
	switch {
	case a.Shape.Kind == ShapeSphere && b.Shape.Kind == ShapeSphere:
		return detectSphereSphere(i, j, a, b)
	case a.Shape.Kind == ShapeBox && b.Shape.Kind == ShapeSphere:
		return detectBoxSphere(i, j, a, b)
	case a.Shape.Kind == ShapeSphere && b.Shape.Kind == ShapeBox:
		c, ok := detectBoxSphere(j, i, b, a)
		return c, ok
	case a.Shape.Kind == ShapeBox && b.Shape.Kind == ShapeBox:
		return detectBoxBox(i, j, a, b)
	default:
		return Contact{}, false
	}
}

// resolveContacts prepares every contact's basis/velocity state, then
// runs nonlinear-projection position resolution followed by
// sequential-impulse velocity resolution.
func (w *World) resolveContacts(dt float64) {
	if len(w.contacts) == 0 {
		w.lastPositionIterations = 0
		w.lastVelocityIterations = 0
		return
	}

	for i := range w.contacts {
		w.contacts[i].prepare(w.bodies, dt)
	}

	w.lastPositionIterations = resolvePositions(w.contacts, w.bodies, w.settings.PositionEpsilon, w.settings.MaxPositionIterations)

	for i := range w.contacts {
		recomputeDesiredDelta(&w.contacts[i], w.bodies)
	}
	w.lastVelocityIterations = resolveVelocities(w.contacts, w.bodies, w.settings.VelocityEpsilon, w.settings.MaxVelocityIterations)
}

// interpolate blends each dynamic body's previous and current
// transform by fraction r for this frame's render output only; it
// does not mutate the authoritative simulation state.
func (w *World) interpolate(r float64) {
	for _, b := range w.bodies {
		if b.Motion != Dynamic {
			continue
		}
		b.renderPosition = lerp(b.PrevPosition, b.Position, r)
		b.renderOrientation = slerpApprox(b.PrevOrientation, b.Orientation, r)
	}
}

func lerp(a, b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}

// slerpApprox linearly blends quaternion components and renormalizes.
// Adequate for the small per-frame angular deltas involved here;
// a true spherical interpolation is unnecessary at this tolerance.
func slerpApprox(a, b Quat, t float64) Quat {
	dot := a.W*b.W + a.X*b.X + a.Y*b.Y + a.Z*b.Z
	if dot < 0 {
		b = Quat{-b.W, -b.X, -b.Y, -b.Z}
	}
	return Quat{
		W: a.W + (b.W-a.W)*t,
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}.Normalized()
}

// RenderTransform returns the transform downstream renderers should
// use for handle this frame: the interpolated state if the last Frame
// call had a nonzero remainder, otherwise the authoritative state.
func (w *World) RenderTransform(handle BodyHandle) (position Vec3, orientation Quat) {
	b := w.bodies[handle]
	if b.Motion == Dynamic && (b.renderPosition != Vec3{} || b.renderOrientation != (Quat{})) {
		return b.renderPosition, b.renderOrientation
	}
	return b.Position, b.Orientation
}
