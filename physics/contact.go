package physics

import "math"

// Contact is a per-pair collision datum, per spec.md §3.10. BodyB is
// -1 for a contact against an immovable half-space that is not itself
// a registered body (World never produces one, since every contact
// its narrow phase generates is between two registered bodies; kept
// for callers constructing contacts directly).
type Contact struct {
	BodyA, BodyB int

	Point       Vec3
	Normal      Vec3 // points from B into A
	Penetration float64

	Friction    float64
	Restitution float64

	basis Mat3 // column 0 = normal, columns 1/2 = tangents

	relativeA, relativeB Vec3 // contact point minus each body's position

	contactVelocity     Vec3 // contact-space relative velocity
	desiredDeltaVelocity float64
}

// velocityRestitutionThreshold is the |v_c.x| below which restitution
// is treated as zero for a resting contact (pl_physics_ext.c's
// fVelocityLimit).
const velocityRestitutionThreshold = 0.25

// contactBasis builds an orthonormal basis with column 0 equal to
// normal, choosing the tangent pair by branching on whichever world
// axis the normal is least aligned with, to avoid a near-singular
// cross product.
func contactBasis(normal Vec3) Mat3 {
	var tangent1, tangent2 Vec3
	ax, ay, _ := normal.absComponents()

	if ax > ay {
		// Normal closer to the X axis: cross with Y.
		s := 1 / math.Hypot(normal.Z, normal.X)
		tangent1 = Vec3{normal.Z * s, 0, -normal.X * s}
		tangent2 = normal.Cross(tangent1)
	} else {
		// Normal closer to the Y axis: cross with X.
		s := 1 / math.Hypot(normal.Z, normal.Y)
		tangent1 = Vec3{0, -normal.Z * s, normal.Y * s}
		tangent2 = normal.Cross(tangent1)
	}

	return Mat3{M: [3][3]float64{
		{normal.X, tangent1.X, tangent2.X},
		{normal.Y, tangent1.Y, tangent2.Y},
		{normal.Z, tangent1.Z, tangent2.Z},
	}}
}

// worldToContact transforms a world-space vector into the contact's
// local coordinate frame (normal, tangent1, tangent2).
func (c *Contact) worldToContact(v Vec3) Vec3 {
	return c.basis.Transpose().MulVec3(v)
}

func (c *Contact) contactToWorld(v Vec3) Vec3 {
	return c.basis.MulVec3(v)
}

// prepare computes everything contact resolution needs once per
// frame per contact: basis, relative positions, contact-space
// velocity and the acceleration-corrected desired delta velocity, per
// spec.md §4.10.4.
func (c *Contact) prepare(bodies []*RigidBody, dt float64) {
	c.basis = contactBasis(c.Normal)

	a := bodies[c.BodyA]
	c.relativeA = c.Point.Sub(a.Position)

	var b *RigidBody
	if c.BodyB >= 0 {
		b = bodies[c.BodyB]
		c.relativeB = c.Point.Sub(b.Position)
	}

	c.contactVelocity = c.calculateLocalVelocity(a, b, 0)
	if c.BodyB >= 0 {
		c.contactVelocity = c.contactVelocity.Sub(c.calculateLocalVelocity(b, nil, 1))
	}

	accVelocity := c.accelerationVelocity(a, b, dt)

	restitution := c.Restitution
	if math.Abs(c.contactVelocity.X) < velocityRestitutionThreshold {
		restitution = 0
	}

	c.desiredDeltaVelocity = -c.contactVelocity.X - restitution*(c.contactVelocity.X-accVelocity)
}

// calculateLocalVelocity computes body's velocity at the contact
// point, in contact-space coordinates, with sign convention 0 for the
// "A" role and 1 for the "B" role (sign never flips here; callers
// subtract body B's contribution).
func (c *Contact) calculateLocalVelocity(body *RigidBody, _ *RigidBody, role int) Vec3 {
	var rel Vec3
	if role == 0 {
		rel = c.relativeA
	} else {
		rel = c.relativeB
	}
	velocity := body.AngularVelocity.Cross(rel).Add(body.LinearVelocity)
	return c.worldToContact(velocity)
}

// accelerationVelocity computes the normal-direction velocity induced
// purely by last frame's acceleration over dt, subtracted out so
// resting contacts under gravity do not accumulate spurious
// restitution (spec.md §4.10.4).
func (c *Contact) accelerationVelocity(a, b *RigidBody, dt float64) float64 {
	accVelocity := a.LastAcceleration.Scale(dt)
	if b != nil {
		accVelocity = accVelocity.Sub(b.LastAcceleration.Scale(dt))
	}
	contactAcc := c.worldToContact(accVelocity)
	return contactAcc.X
}

// detectSphereSphere returns a contact between two sphere bodies if
// they overlap.
func detectSphereSphere(ai, bi int, a, b *RigidBody) (Contact, bool) {
	delta := a.Position.Sub(b.Position)
	dist := delta.Length()
	radiusSum := a.Shape.Radius + b.Shape.Radius
	if dist >= radiusSum || dist < 1e-9 {
		return Contact{}, false
	}
	normal := delta.Scale(1 / dist)
	penetration := radiusSum - dist
	point := b.Position.Add(normal.Scale(b.Shape.Radius))
	return Contact{
		BodyA: ai, BodyB: bi,
		Point: point, Normal: normal, Penetration: penetration,
		Friction:    math.Sqrt(a.Friction * b.Friction),
		Restitution: math.Max(a.Restitution, b.Restitution),
	}, true
}

// detectBoxSphere returns a contact between an axis-aligned box and a
// sphere if they overlap. The box is treated as axis-aligned in its
// own local frame ignoring orientation, matching the level of fidelity
// the all-pairs placeholder broad phase is documented to have.
func detectBoxSphere(boxIdx, sphereIdx int, box, sphere *RigidBody) (Contact, bool) {
	rel := sphere.Position.Sub(box.Position)
	closest := Vec3{
		clamp(rel.X, -box.Shape.HalfExtents.X, box.Shape.HalfExtents.X),
		clamp(rel.Y, -box.Shape.HalfExtents.Y, box.Shape.HalfExtents.Y),
		clamp(rel.Z, -box.Shape.HalfExtents.Z, box.Shape.HalfExtents.Z),
	}
	closestWorld := box.Position.Add(closest)
	delta := sphere.Position.Sub(closestWorld)
	dist := delta.Length()
	if dist >= sphere.Shape.Radius {
		return Contact{}, false
	}

	var normal Vec3
	if dist < 1e-9 {
		normal = Vec3{0, 1, 0}
	} else {
		normal = delta.Scale(1 / dist)
	}
	penetration := sphere.Shape.Radius - dist
	return Contact{
		BodyA: sphereIdx, BodyB: boxIdx,
		Point: closestWorld, Normal: normal, Penetration: penetration,
		Friction:    math.Sqrt(box.Friction * sphere.Friction),
		Restitution: math.Max(box.Restitution, sphere.Restitution),
	}, true
}

// detectBoxBox returns a contact between two axis-aligned boxes using
// the separating-axis test restricted to the three world axes
// (sufficient fidelity for the placeholder all-pairs broad phase;
// a full SAT with edge-edge cases is future work, same as the
// teacher-inherited BVH placeholder note in spec.md §4.10.3).
func detectBoxBox(ai, bi int, a, b *RigidBody) (Contact, bool) {
	delta := a.Position.Sub(b.Position)
	overlapX := a.Shape.HalfExtents.X + b.Shape.HalfExtents.X - math.Abs(delta.X)
	overlapY := a.Shape.HalfExtents.Y + b.Shape.HalfExtents.Y - math.Abs(delta.Y)
	overlapZ := a.Shape.HalfExtents.Z + b.Shape.HalfExtents.Z - math.Abs(delta.Z)
	if overlapX <= 0 || overlapY <= 0 || overlapZ <= 0 {
		return Contact{}, false
	}

	var normal Vec3
	var penetration float64
	switch {
	case overlapX <= overlapY && overlapX <= overlapZ:
		penetration = overlapX
		normal = Vec3{sign(delta.X), 0, 0}
	case overlapY <= overlapX && overlapY <= overlapZ:
		penetration = overlapY
		normal = Vec3{0, sign(delta.Y), 0}
	default:
		penetration = overlapZ
		normal = Vec3{0, 0, sign(delta.Z)}
	}

	point := a.Position.Sub(normal.Scale(a.Shape.HalfExtents.Dot(absVec(normal))))
	return Contact{
		BodyA: ai, BodyB: bi,
		Point: point, Normal: normal, Penetration: penetration,
		Friction:    math.Sqrt(a.Friction * b.Friction),
		Restitution: math.Max(a.Restitution, b.Restitution),
	}, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func absVec(v Vec3) Vec3 {
	return Vec3{math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)}
}
