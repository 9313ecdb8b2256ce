package physics

import "math"

// FieldKind distinguishes the two force field shapes of spec.md
// §4.10.5.
type FieldKind int

const (
	FieldPoint FieldKind = iota
	FieldPlane
)

// Field is a region that applies a constant-magnitude force to dynamic
// bodies within range, before collision detection each substep.
type Field struct {
	Kind     FieldKind
	Position Vec3    // point field center, or a point on the plane
	Normal   Vec3    // plane field's local +Z rotated to world; unused for point
	Gravity  float64 // field strength, scaled per body by 1/inv_mass
	Range    float64
}

// apply adds this field's force to every in-range dynamic body and
// wakes it, per spec.md §4.10.5.
func (f *Field) apply(bodies []*RigidBody) {
	switch f.Kind {
	case FieldPoint:
		for _, body := range bodies {
			if body.Motion != Dynamic || body.InverseMass <= 0 {
				continue
			}
			r := body.Position.Sub(f.Position)
			dist := r.Length()
			if dist >= f.Range || dist < 1e-9 {
				continue
			}
			mass := 1 / body.InverseMass
			force := r.Scale(1 / dist).Scale(-f.Gravity * mass)
			body.ApplyForce(force)
		}

	case FieldPlane:
		n := f.Normal.Normalized()
		for _, body := range bodies {
			if body.Motion != Dynamic || body.InverseMass <= 0 {
				continue
			}
			signedDist := body.Position.Sub(f.Position).Dot(n)
			if math.Abs(signedDist) >= f.Range {
				continue
			}
			mass := 1 / body.InverseMass
			sign := 1.0
			if signedDist < 0 {
				sign = -1.0
			}
			force := n.Scale(sign * f.Gravity * mass)
			body.ApplyForce(force)
		}
	}
}
