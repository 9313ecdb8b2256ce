package physics

// MotionType is a rigid body's integration category, per spec.md §3.9.
type MotionType int

const (
	Static MotionType = iota
	Kinematic
	Dynamic
)

// ShapeKind distinguishes the narrow-phase dispatch primitives of
// spec.md §4.10.3.
type ShapeKind int

const (
	ShapeSphere ShapeKind = iota
	ShapeBox
)

// Shape is a body's collision primitive. Radius is used for
// ShapeSphere; HalfExtents for ShapeBox.
type Shape struct {
	Kind        ShapeKind
	Radius      float64
	HalfExtents Vec3
}

// BodyHandle indexes a body owned by a World. Stable across a body's
// lifetime; spec.md §9's suggested replacement for raw pointers.
type BodyHandle int

// RigidBody holds the essential fields of spec.md §3.9. World owns
// the slice of bodies; callers interact through BodyHandle plus
// World's accessor methods rather than holding *RigidBody across
// frames.
type RigidBody struct {
	Motion MotionType
	Shape  Shape

	Position    Vec3
	Orientation Quat

	PrevPosition    Vec3
	PrevOrientation Quat

	renderPosition    Vec3 // last computed interpolated render state, see World.interpolate
	renderOrientation Quat

	WorldTransform Mat3 // rotation part; translation is Position

	bodyInverseInertia  Mat3
	worldInverseInertia Mat3

	LinearVelocity  Vec3
	AngularVelocity Vec3

	LastAcceleration Vec3
	Gravity          Vec3

	DampingLinear  float64 // raw per-second factor; pow(damping, h) applied per substep
	DampingAngular float64

	InverseMass float64

	Force  Vec3
	Torque Vec3

	IsAwake  bool
	CanSleep bool
	Motion_  float64 // rolling kinetic-energy proxy ("motion" in spec.md)

	Friction    float64
	Restitution float64
}

// NewDynamicBody constructs an awake dynamic body with inverse mass
// and body-space inertia tensor for the given shape and mass, matching
// the register-or-update step of spec.md §4.10.1 for a first-time
// registration.
func NewDynamicBody(shape Shape, mass float64, position Vec3) *RigidBody {
	invMass := 0.0
	if mass > 0 {
		invMass = 1 / mass
	}
	return &RigidBody{
		Motion:             Dynamic,
		Shape:              shape,
		Position:           position,
		Orientation:        IdentityQuat,
		PrevPosition:       position,
		PrevOrientation:    IdentityQuat,
		bodyInverseInertia: bodyInverseInertiaFor(shape, mass),
		InverseMass:        invMass,
		DampingLinear:      0.999,
		DampingAngular:     0.999,
		IsAwake:            true,
		CanSleep:           true,
		Motion_:            10 * DefaultSleepEpsilon,
		Friction:           0.6,
		Restitution:        0.1,
	}
}

// NewStaticBody constructs an immovable body (infinite mass, zero
// motion metric) for e.g. ground planes represented as large boxes.
func NewStaticBody(shape Shape, position Vec3) *RigidBody {
	return &RigidBody{
		Motion:          Static,
		Shape:           shape,
		Position:        position,
		Orientation:     IdentityQuat,
		PrevPosition:    position,
		PrevOrientation: IdentityQuat,
		Friction:        0.6,
		Restitution:     0.1,
	}
}

// bodyInverseInertiaFor derives the body-space inverse inertia tensor
// from shape and mass (spec.md §4.10.1's "derive inverse inertia
// tensor from shape and mass"). Static/kinematic bodies never call
// this; their tensor stays the zero matrix (infinite inertia).
func bodyInverseInertiaFor(shape Shape, mass float64) Mat3 {
	if mass <= 0 {
		return Mat3{}
	}
	switch shape.Kind {
	case ShapeSphere:
		i := 0.4 * mass * shape.Radius * shape.Radius
		if i <= 0 {
			return Mat3{}
		}
		return Diag3(1/i, 1/i, 1/i)
	case ShapeBox:
		w, h, d := 2*shape.HalfExtents.X, 2*shape.HalfExtents.Y, 2*shape.HalfExtents.Z
		ix := mass * (h*h + d*d) / 12
		iy := mass * (w*w + d*d) / 12
		iz := mass * (w*w + h*h) / 12
		inv := func(v float64) float64 {
			if v <= 0 {
				return 0
			}
			return 1 / v
		}
		return Diag3(inv(ix), inv(iy), inv(iz))
	default:
		return Mat3{}
	}
}

// ApplyForce accumulates a world-space force at the body's center of
// mass and wakes it.
func (b *RigidBody) ApplyForce(f Vec3) {
	b.Force = b.Force.Add(f)
	b.wake()
}

// ApplyForceAtPoint accumulates a world-space force applied at
// worldPoint, contributing both force and torque.
func (b *RigidBody) ApplyForceAtPoint(f Vec3, worldPoint Vec3) {
	r := worldPoint.Sub(b.Position)
	b.Force = b.Force.Add(f)
	b.Torque = b.Torque.Add(r.Cross(f))
	b.wake()
}

// SetVelocity overwrites linear velocity and wakes the body, per
// spec.md §4.10.2's "any ... velocity set ... re-awakens".
func (b *RigidBody) SetVelocity(v Vec3) {
	b.LinearVelocity = v
	b.wake()
}

func (b *RigidBody) wake() {
	if b.Motion == Dynamic {
		if !b.IsAwake {
			b.Motion_ = 10 * DefaultSleepEpsilon
		}
		b.IsAwake = true
	}
}

// WakeUp forces a dynamic body awake with a fresh motion metric,
// mirroring pl_physics_ext.c's pl_physics_wake_up_body.
func (b *RigidBody) WakeUp() {
	b.wake()
	b.Motion_ = 10 * DefaultSleepEpsilon
}

// Sleep forces a dynamic body to sleep immediately, zeroing its
// velocities, mirroring pl_physics_ext.c's pl_physics_sleep_body.
func (b *RigidBody) Sleep() {
	if b.Motion != Dynamic {
		return
	}
	b.IsAwake = false
	b.Motion_ = 0
	b.LinearVelocity = Vec3{}
	b.AngularVelocity = Vec3{}
}

func (b *RigidBody) clearAccumulators() {
	b.Force = Vec3{}
	b.Torque = Vec3{}
}
