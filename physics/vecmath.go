// Package physics implements the rigid-body core of spec.md §4.10:
// fixed-substep semi-implicit integration, all-pairs broad phase with
// sphere/box narrow phase, nonlinear-projection position resolution,
// sequential-impulse velocity resolution, and point/plane force
// fields. Grounded directly on
// original_source/extensions/pl_physics_ext.c, which the spec's
// physics section closely paraphrases; Go idiom (value-type vectors
// and quaternions, no hidden allocation on the per-substep hot path)
// follows the teacher's plain-struct, allocation-free per-frame math
// in its video chip emulation files.
package physics

import "math"

// Vec3 is a value-type 3D vector. All operations return a new Vec3;
// none mutate the receiver, matching the allocation-free, copy-cheap
// style the hot loop (Frame) depends on.
type Vec3 struct {
	X, Y, Z float64
}

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Neg() Vec3 { return Vec3{-a.X, -a.Y, -a.Z} }

func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) LengthSquared() float64 { return a.Dot(a) }
func (a Vec3) Length() float64        { return math.Sqrt(a.LengthSquared()) }

// Normalized returns a unit vector in a's direction, or the zero
// vector if a is (numerically) zero-length.
func (a Vec3) Normalized() Vec3 {
	l := a.Length()
	if l < 1e-12 {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

// absComponents returns the absolute value of each component, used to
// pick a non-singular tangent axis for the contact basis.
func (a Vec3) absComponents() (x, y, z float64) {
	return math.Abs(a.X), math.Abs(a.Y), math.Abs(a.Z)
}

// Quat is a unit quaternion orientation, (W, X, Y, Z) scalar-first.
type Quat struct {
	W, X, Y, Z float64
}

// IdentityQuat is the no-rotation orientation.
var IdentityQuat = Quat{W: 1}

// Mul composes rotations: a.Mul(b) applies b then a.
func (a Quat) Mul(b Quat) Quat {
	return Quat{
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
	}
}

func (q Quat) Normalized() Quat {
	n := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if n < 1e-12 {
		return IdentityQuat
	}
	inv := 1 / n
	return Quat{q.W * inv, q.X * inv, q.Y * inv, q.Z * inv}
}

// integrateHalf advances orientation q by angular velocity omega over
// dt using the half-quaternion construction of spec.md §4.10.2:
// q' = normalize(q + 0.5*dt*(0,omega)*q).
func integrateHalf(q Quat, omega Vec3, dt float64) Quat {
	w := Quat{W: 0, X: omega.X, Y: omega.Y, Z: omega.Z}
	delta := w.Mul(q)
	sum := Quat{
		W: q.W + 0.5*dt*delta.W,
		X: q.X + 0.5*dt*delta.X,
		Y: q.Y + 0.5*dt*delta.Y,
		Z: q.Z + 0.5*dt*delta.Z,
	}
	return sum.Normalized()
}

// RotateVec3 rotates v by unit quaternion q.
func (q Quat) RotateVec3(v Vec3) Vec3 {
	qv := Vec3{q.X, q.Y, q.Z}
	t := qv.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(qv.Cross(t))
}

// Mat3 is a row-major 3x3 matrix, used for inertia tensors and the
// per-contact world-space basis.
type Mat3 struct {
	M [3][3]float64
}

func Diag3(x, y, z float64) Mat3 {
	var m Mat3
	m.M[0][0], m.M[1][1], m.M[2][2] = x, y, z
	return m
}

func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m.M[0][0]*v.X + m.M[0][1]*v.Y + m.M[0][2]*v.Z,
		m.M[1][0]*v.X + m.M[1][1]*v.Y + m.M[1][2]*v.Z,
		m.M[2][0]*v.X + m.M[2][1]*v.Y + m.M[2][2]*v.Z,
	}
}

func (a Mat3) Mul(b Mat3) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum := 0.0
			for k := 0; k < 3; k++ {
				sum += a.M[i][k] * b.M[k][j]
			}
			out.M[i][j] = sum
		}
	}
	return out
}

func (a Mat3) Transpose() Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.M[i][j] = a.M[j][i]
		}
	}
	return out
}

// ToRotationMat3 builds the rotation matrix for unit quaternion q.
func (q Quat) ToRotationMat3() Mat3 {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	var m Mat3
	m.M[0][0] = 1 - 2*(y*y+z*z)
	m.M[0][1] = 2 * (x*y - z*w)
	m.M[0][2] = 2 * (x*z + y*w)
	m.M[1][0] = 2 * (x*y + z*w)
	m.M[1][1] = 1 - 2*(x*x+z*z)
	m.M[1][2] = 2 * (y*z - x*w)
	m.M[2][0] = 2 * (x*z - y*w)
	m.M[2][1] = 2 * (y*z + x*w)
	m.M[2][2] = 1 - 2*(x*x+y*y)
	return m
}

// worldInverseInertia rebuilds the world-space inverse inertia tensor
// from the body-space tensor and current orientation: R * I^-1 * R^T.
func worldInverseInertia(bodyInv Mat3, orientation Quat) Mat3 {
	r := orientation.ToRotationMat3()
	return r.Mul(bodyInv).Mul(r.Transpose())
}
