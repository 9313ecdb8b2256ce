package physics

import (
	"math"
	"testing"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// Two equal-mass dynamic spheres in head-on collision with
// restitution 1 should exchange velocities, within tolerance.
func TestHeadOnCollisionRestitutionOneExchangesVelocities(t *testing.T) {
	w := NewWorld(Settings{})

	sphere := Shape{Kind: ShapeSphere, Radius: 0.5}
	a := NewDynamicBody(sphere, 1, Vec3{X: -1})
	a.LinearVelocity = Vec3{X: 5}
	a.Restitution = 1
	a.DampingLinear, a.DampingAngular = 1, 1

	b := NewDynamicBody(sphere, 1, Vec3{X: 0.9})
	b.Restitution = 1
	b.DampingLinear, b.DampingAngular = 1, 1

	w.AddBody(a)
	w.AddBody(b)

	// The 0.9 gap between the spheres closes after about 11 frames at
	// 5 units/s; 30 frames cover the approach and the collision.
	for i := 0; i < 30; i++ {
		w.Frame(1.0 / 60)
	}

	if !approxEqual(a.LinearVelocity.X, 0, 0.5) {
		t.Errorf("body A velocity.X = %v, want near 0 after exchange", a.LinearVelocity.X)
	}
	if !approxEqual(b.LinearVelocity.X, 5, 0.5) {
		t.Errorf("body B velocity.X = %v, want near 5 after exchange", b.LinearVelocity.X)
	}
}

// With restitution 0 the two bodies should move together at the
// mass-weighted average velocity (equal masses here: the average of
// 5 and 0).
func TestHeadOnCollisionRestitutionZeroMovesTogether(t *testing.T) {
	w := NewWorld(Settings{})

	sphere := Shape{Kind: ShapeSphere, Radius: 0.5}
	a := NewDynamicBody(sphere, 1, Vec3{X: -1})
	a.LinearVelocity = Vec3{X: 5}
	a.Restitution = 0
	a.DampingLinear, a.DampingAngular = 1, 1

	b := NewDynamicBody(sphere, 1, Vec3{X: 0.9})
	b.Restitution = 0
	b.DampingLinear, b.DampingAngular = 1, 1

	w.AddBody(a)
	w.AddBody(b)

	// As above, the spheres first meet after about 11 frames.
	for i := 0; i < 30; i++ {
		w.Frame(1.0 / 60)
	}

	if !approxEqual(a.LinearVelocity.X, b.LinearVelocity.X, 0.5) {
		t.Errorf("velocities diverge after inelastic collision: a=%v b=%v", a.LinearVelocity.X, b.LinearVelocity.X)
	}
}

// A sleeping body must not be woken by the mere passage of frames
// absent any external excitation.
func TestSleepingBodyStaysAsleep(t *testing.T) {
	w := NewWorld(Settings{})
	sphere := Shape{Kind: ShapeSphere, Radius: 0.5}
	body := NewDynamicBody(sphere, 1, Vec3{X: 10, Y: 10, Z: 10})
	body.IsAwake = false
	body.Motion_ = 0
	w.AddBody(body)

	for i := 0; i < 120; i++ {
		w.Frame(1.0 / 60)
	}

	if body.IsAwake {
		t.Error("body woke up with no external excitation applied")
	}
}

func TestExternalForceWakesBody(t *testing.T) {
	w := NewWorld(Settings{})
	sphere := Shape{Kind: ShapeSphere, Radius: 0.5}
	body := NewDynamicBody(sphere, 1, Vec3{})
	body.IsAwake = false
	w.AddBody(body)

	body.ApplyForce(Vec3{Y: 100})
	if !body.IsAwake {
		t.Error("ApplyForce should wake a sleeping dynamic body")
	}
}

func TestStaticBodyNeverIntegratesMotion(t *testing.T) {
	w := NewWorld(Settings{})
	ground := NewStaticBody(Shape{Kind: ShapeBox, HalfExtents: Vec3{X: 50, Y: 1, Z: 50}}, Vec3{Y: -1})
	w.AddBody(ground)

	for i := 0; i < 60; i++ {
		w.Frame(1.0 / 60)
	}

	if ground.Position != (Vec3{Y: -1}) {
		t.Errorf("static body moved: %+v", ground.Position)
	}
}

func TestSphereRestingOnPlaneConvergesToLowPenetration(t *testing.T) {
	w := NewWorld(Settings{})

	ground := NewStaticBody(Shape{Kind: ShapeBox, HalfExtents: Vec3{X: 50, Y: 1, Z: 50}}, Vec3{Y: -1})
	sphere := NewDynamicBody(Shape{Kind: ShapeSphere, Radius: 0.5}, 1, Vec3{Y: 0.52})
	sphere.Gravity = Vec3{Y: -9.81}

	w.AddBody(ground)
	w.AddBody(sphere)

	for i := 0; i < 180; i++ {
		w.Frame(1.0 / 60)
	}

	pos, _ := w.RenderTransform(BodyHandle(1))
	restHeight := 0.5 // radius + ground half-extent(1) - ground top at y=0
	if pos.Y < restHeight-0.2 || pos.Y > restHeight+0.5 {
		t.Errorf("sphere settled at y=%v, want near %v", pos.Y, restHeight)
	}
}

func TestPointFieldPullsBodyAndWakesIt(t *testing.T) {
	w := NewWorld(Settings{})
	body := NewDynamicBody(Shape{Kind: ShapeSphere, Radius: 0.5}, 1, Vec3{X: 5})
	body.IsAwake = false
	w.AddBody(body)
	w.AddField(&Field{Kind: FieldPoint, Position: Vec3{}, Gravity: 9.81, Range: 100})

	w.Frame(1.0 / 60)

	if !body.IsAwake {
		t.Error("point field should wake an in-range dynamic body")
	}
	if body.LinearVelocity.X >= 0 {
		t.Errorf("point field should pull body toward origin, got velocity.X = %v", body.LinearVelocity.X)
	}
}

func TestPlaneFieldPushesAwayFromPlane(t *testing.T) {
	w := NewWorld(Settings{})
	body := NewDynamicBody(Shape{Kind: ShapeSphere, Radius: 0.5}, 1, Vec3{Y: 2})
	w.AddBody(body)
	w.AddField(&Field{Kind: FieldPlane, Position: Vec3{}, Normal: Vec3{Y: 1}, Gravity: 9.81, Range: 100})

	w.Frame(1.0 / 60)

	if body.LinearVelocity.Y <= 0 {
		t.Errorf("plane field should push body away from the plane, got velocity.Y = %v", body.LinearVelocity.Y)
	}
}

func TestSleepForcesDynamicBodyAsleepAndZeroesVelocity(t *testing.T) {
	body := NewDynamicBody(Shape{Kind: ShapeSphere, Radius: 0.5}, 1, Vec3{})
	body.LinearVelocity = Vec3{X: 5}
	body.AngularVelocity = Vec3{Y: 3}

	body.Sleep()

	if body.IsAwake {
		t.Error("Sleep should clear IsAwake")
	}
	if body.LinearVelocity != (Vec3{}) || body.AngularVelocity != (Vec3{}) {
		t.Error("Sleep should zero both velocities")
	}
}

func TestSleepIsNoopOnStaticBody(t *testing.T) {
	body := NewStaticBody(Shape{Kind: ShapeSphere, Radius: 0.5}, Vec3{})
	body.Sleep()
	if body.IsAwake {
		t.Error("static bodies never report IsAwake true in the first place")
	}
}

func TestWakeAllAndSleepAllActOnEveryBody(t *testing.T) {
	w := NewWorld(Settings{})
	a := NewDynamicBody(Shape{Kind: ShapeSphere, Radius: 0.5}, 1, Vec3{})
	b := NewDynamicBody(Shape{Kind: ShapeSphere, Radius: 0.5}, 1, Vec3{X: 5})
	a.IsAwake, b.IsAwake = false, false
	w.AddBody(a)
	w.AddBody(b)

	w.WakeAll()
	if !a.IsAwake || !b.IsAwake {
		t.Error("WakeAll should wake every dynamic body")
	}

	w.SleepAll()
	if a.IsAwake || b.IsAwake {
		t.Error("SleepAll should put every dynamic body back to sleep")
	}
}
