package physics

import "math"

// DefaultPositionEpsilon and DefaultVelocityEpsilon mirror
// pl_physics_ext.c's settings defaults (0.01 for both).
const (
	DefaultPositionEpsilon = 0.01
	DefaultVelocityEpsilon = 0.01

	DefaultMaxPositionIterations = 256
	DefaultMaxVelocityIterations = 256

	// angularLimitFactor bounds a body's rotational share of a
	// position correction to 0.2 * ||r|| (pl_physics_ext.c's
	// fAngularLimit), preventing over-rotation when a body's inertia
	// is small relative to its mass.
	angularLimitFactor = 0.2
)

// inverseMassAlongNormal returns how much linear+angular compliance
// body contributes along normal at contact-relative position r, used
// both to pick the position-correction split and the frictionless
// impulse denominator.
func inverseMassAlongNormal(body *RigidBody, r Vec3, normal Vec3) float64 {
	if body.Motion != Dynamic {
		return 0
	}
	angularComponent := body.worldInverseInertia.MulVec3(r.Cross(normal)).Cross(r)
	return body.InverseMass + angularComponent.Dot(normal)
}

// resolvePositions runs the nonlinear-projection position solver of
// spec.md §4.10.4 over contacts in place, for up to maxIterations
// passes, each time correcting the single worst-penetrating contact
// and propagating the change to every contact sharing a body, the
// corrected one included.
func resolvePositions(contacts []Contact, bodies []*RigidBody, positionEpsilon float64, maxIterations int) int {
	iterations := 0
	for iterations < maxIterations {
		worst := -1
		worstPen := positionEpsilon
		for i := range contacts {
			if contacts[i].Penetration > worstPen {
				worstPen = contacts[i].Penetration
				worst = i
			}
		}
		if worst < 0 {
			break
		}

		applyPositionChange(&contacts[worst], bodies, contacts, worst)
		iterations++
	}
	return iterations
}

func applyPositionChange(c *Contact, bodies []*RigidBody, contacts []Contact, idx int) {
	a := bodies[c.BodyA]
	var b *RigidBody
	if c.BodyB >= 0 {
		b = bodies[c.BodyB]
	}

	linearInertiaA, angularInertiaA := splitInertia(a, c.relativeA, c.Normal)
	var linearInertiaB, angularInertiaB float64
	if b != nil {
		linearInertiaB, angularInertiaB = splitInertia(b, c.relativeB, c.Normal)
	}

	totalInertia := linearInertiaA + angularInertiaA + linearInertiaB + angularInertiaB
	if totalInertia <= 0 {
		return
	}

	linearMoveA := c.Penetration * linearInertiaA / totalInertia
	angularMoveA := c.Penetration * angularInertiaA / totalInertia
	linearMoveB := -c.Penetration * linearInertiaB / totalInertia
	angularMoveB := -c.Penetration * angularInertiaB / totalInertia

	angularMoveA = clampAngularMove(angularMoveA, c.relativeA)
	if b != nil {
		angularMoveB = clampAngularMove(angularMoveB, c.relativeB)
	}

	deltaPosA := c.Normal.Scale(linearMoveA)
	deltaOrientA := angularProjection(a, c.relativeA, c.Normal, angularMoveA)
	a.Position = a.Position.Add(deltaPosA)
	a.Orientation = a.Orientation.Mul(deltaOrientA).Normalized()
	a.worldInverseInertia = worldInverseInertia(a.bodyInverseInertia, a.Orientation)

	if b != nil {
		deltaPosB := c.Normal.Scale(linearMoveB)
		deltaOrientB := angularProjection(b, c.relativeB, c.Normal, angularMoveB)
		b.Position = b.Position.Add(deltaPosB)
		b.Orientation = b.Orientation.Mul(deltaOrientB).Normalized()
		b.worldInverseInertia = worldInverseInertia(b.bodyInverseInertia, b.Orientation)
	}

	// Propagate to every contact referencing either body, including c
	// itself so its own penetration drops by the correction just made.
	for j := range contacts {
		other := &contacts[j]
		if other.BodyA == c.BodyA {
			other.Penetration -= deltaPosA.Add(rotationDelta(deltaOrientA, other.relativeA)).Dot(other.Normal)
		} else if other.BodyB == c.BodyA {
			other.Penetration += deltaPosA.Add(rotationDelta(deltaOrientA, other.relativeB)).Dot(other.Normal)
		}
		if b != nil {
			deltaPosB := c.Normal.Scale(linearMoveB)
			deltaOrientB := angularProjection(b, c.relativeB, c.Normal, angularMoveB)
			if other.BodyA == c.BodyB {
				other.Penetration -= deltaPosB.Add(rotationDelta(deltaOrientB, other.relativeA)).Dot(other.Normal)
			} else if other.BodyB == c.BodyB {
				other.Penetration += deltaPosB.Add(rotationDelta(deltaOrientB, other.relativeB)).Dot(other.Normal)
			}
		}
	}
}

func splitInertia(body *RigidBody, r Vec3, normal Vec3) (linear, angular float64) {
	if body.Motion != Dynamic {
		return 0, 0
	}
	angularInertiaWorld := body.worldInverseInertia.MulVec3(r.Cross(normal)).Cross(r).Dot(normal)
	return body.InverseMass, angularInertiaWorld
}

func clampAngularMove(move float64, r Vec3) float64 {
	limit := angularLimitFactor * r.Length()
	if limit <= 0 {
		return 0
	}
	if move > limit {
		return limit
	}
	if move < -limit {
		return -limit
	}
	return move
}

// angularProjection builds the small-rotation quaternion for an
// angular position correction of magnitude angularMove around axis
// I^-1 * (r x normal).
func angularProjection(body *RigidBody, r, normal Vec3, angularMove float64) Quat {
	if angularMove == 0 || body.Motion != Dynamic {
		return IdentityQuat
	}
	axis := body.worldInverseInertia.MulVec3(r.Cross(normal))
	axisLen := axis.Length()
	if axisLen < 1e-12 {
		return IdentityQuat
	}
	axis = axis.Scale(angularMove / axisLen)
	return Quat{W: 0, X: axis.X, Y: axis.Y, Z: axis.Z}.asSmallRotation()
}

// asSmallRotation treats (0,x,y,z) as a small-angle rotation vector
// and returns the corresponding quaternion q = (1, 0.5v) normalized.
func (q Quat) asSmallRotation() Quat {
	r := Quat{W: 1, X: 0.5 * q.X, Y: 0.5 * q.Y, Z: 0.5 * q.Z}
	return r.Normalized()
}

func rotationDelta(rotation Quat, r Vec3) Vec3 {
	axis := Vec3{rotation.X, rotation.Y, rotation.Z}.Scale(2)
	return axis.Cross(r)
}

// resolveVelocities runs the sequential-impulse velocity solver of
// spec.md §4.10.4 for up to maxIterations passes, each time resolving
// the contact with the largest desiredDeltaVelocity and then
// re-deriving every contact's desiredDeltaVelocity, the resolved one
// included.
func resolveVelocities(contacts []Contact, bodies []*RigidBody, velocityEpsilon float64, maxIterations int) int {
	iterations := 0
	for iterations < maxIterations {
		worst := -1
		worstDelta := velocityEpsilon
		for i := range contacts {
			if contacts[i].desiredDeltaVelocity > worstDelta {
				worstDelta = contacts[i].desiredDeltaVelocity
				worst = i
			}
		}
		if worst < 0 {
			break
		}

		applyVelocityChange(&contacts[worst], bodies)
		wakePropagation(&contacts[worst], bodies)

		for j := range contacts {
			recomputeDesiredDelta(&contacts[j], bodies)
		}
		iterations++
	}
	return iterations
}

func applyVelocityChange(c *Contact, bodies []*RigidBody) {
	a := bodies[c.BodyA]
	var b *RigidBody
	if c.BodyB >= 0 {
		b = bodies[c.BodyB]
	}

	denom := inverseMassAlongNormal(a, c.relativeA, c.Normal)
	if b != nil {
		denom += inverseMassAlongNormal(b, c.relativeB, c.Normal)
	}
	if denom <= 0 {
		return
	}

	impulseContact := Vec3{X: c.desiredDeltaVelocity / denom}

	if c.Friction > 0 {
		impulseContact = frictionImpulse(c, a, b, denom)
	}

	impulse := c.contactToWorld(impulseContact)

	if a.Motion == Dynamic {
		a.LinearVelocity = a.LinearVelocity.Add(impulse.Scale(a.InverseMass))
		angularImpulse := c.relativeA.Cross(impulse)
		a.AngularVelocity = a.AngularVelocity.Add(a.worldInverseInertia.MulVec3(angularImpulse))
	}
	if b != nil && b.Motion == Dynamic {
		negImpulse := impulse.Neg()
		b.LinearVelocity = b.LinearVelocity.Add(negImpulse.Scale(b.InverseMass))
		angularImpulse := c.relativeB.Cross(negImpulse)
		b.AngularVelocity = b.AngularVelocity.Add(b.worldInverseInertia.MulVec3(angularImpulse))
	}
}

// frictionImpulse computes the full contact-space impulse including
// tangential friction, clamped to the Coulomb friction cone: if the
// planar magnitude would exceed mu*j_n, the tangential components are
// rescaled to lie exactly on the cone (spec.md §4.10.4's "dynamic
// friction clamping").
func frictionImpulse(c *Contact, a, b *RigidBody, normalDenom float64) Vec3 {
	jn := c.desiredDeltaVelocity / normalDenom
	tangentVelocity := Vec3{0, c.contactVelocity.Y, c.contactVelocity.Z}
	planar := tangentVelocity.Length()
	if planar < 1e-9 {
		return Vec3{X: jn}
	}

	tangentDenomY := inverseMassAlongTangent(a, c.relativeA, Vec3{0, 1, 0})
	tangentDenomZ := inverseMassAlongTangent(a, c.relativeA, Vec3{0, 0, 1})
	if b != nil {
		tangentDenomY += inverseMassAlongTangent(b, c.relativeB, Vec3{0, 1, 0})
		tangentDenomZ += inverseMassAlongTangent(b, c.relativeB, Vec3{0, 0, 1})
	}

	jy := 0.0
	if tangentDenomY > 0 {
		jy = -tangentVelocity.Y / tangentDenomY
	}
	jz := 0.0
	if tangentDenomZ > 0 {
		jz = -tangentVelocity.Z / tangentDenomZ
	}

	maxFriction := c.Friction * math.Abs(jn)
	planarImpulse := math.Hypot(jy, jz)
	if planarImpulse > maxFriction && planarImpulse > 0 {
		scale := maxFriction / planarImpulse
		jy *= scale
		jz *= scale
	}

	return Vec3{X: jn, Y: jy, Z: jz}
}

func inverseMassAlongTangent(body *RigidBody, r Vec3, tangent Vec3) float64 {
	if body.Motion != Dynamic {
		return 0
	}
	angularComponent := body.worldInverseInertia.MulVec3(r.Cross(tangent)).Cross(r)
	return body.InverseMass + angularComponent.Dot(tangent)
}

func wakePropagation(c *Contact, bodies []*RigidBody) {
	a := bodies[c.BodyA]
	var b *RigidBody
	if c.BodyB >= 0 {
		b = bodies[c.BodyB]
	}
	if b == nil {
		return
	}
	if a.IsAwake != b.IsAwake {
		if a.IsAwake {
			b.wake()
		} else {
			a.wake()
		}
	}
}

func recomputeDesiredDelta(c *Contact, bodies []*RigidBody) {
	a := bodies[c.BodyA]
	c.contactVelocity = c.calculateLocalVelocity(a, nil, 0)
	if c.BodyB >= 0 {
		b := bodies[c.BodyB]
		c.contactVelocity = c.contactVelocity.Sub(c.calculateLocalVelocity(b, nil, 1))
	}

	restitution := c.Restitution
	if math.Abs(c.contactVelocity.X) < velocityRestitutionThreshold {
		restitution = 0
	}
	c.desiredDeltaVelocity = -c.contactVelocity.X - restitution*c.contactVelocity.X
}
