package physics

import "math"

// DefaultSleepEpsilon is the default rolling motion-metric threshold below
// which an awake, sleep-eligible body goes to sleep (pl_physics_ext.c
// defaults fSleepEpsilon to 0.5 when unset).
const DefaultSleepEpsilon = 0.5

// integrate advances body by dt, branching on motion type per
// spec.md §4.10.2. sleepEpsilon configures the sleep policy.
func integrate(b *RigidBody, dt float64, sleepEpsilon float64) {
	switch b.Motion {
	case Static:
		b.Motion_ = 0
		return

	case Kinematic:
		b.Position = b.Position.Add(b.LinearVelocity.Scale(dt))
		b.Orientation = integrateHalf(b.Orientation, b.AngularVelocity, dt)
		b.worldInverseInertia = Mat3{}
		return

	case Dynamic:
		if !b.IsAwake {
			return
		}

		accel := b.Gravity
		if b.InverseMass > 0 {
			accel = accel.Add(b.Force.Scale(b.InverseMass))
		}
		b.LastAcceleration = accel
		b.LinearVelocity = b.LinearVelocity.Add(accel.Scale(dt))

		angularAccel := b.worldInverseInertia.MulVec3(b.Torque)
		b.AngularVelocity = b.AngularVelocity.Add(angularAccel.Scale(dt))

		b.LinearVelocity = b.LinearVelocity.Scale(math.Pow(b.DampingLinear, dt))
		b.AngularVelocity = b.AngularVelocity.Scale(math.Pow(b.DampingAngular, dt))

		b.PrevPosition = b.Position
		b.PrevOrientation = b.Orientation

		b.Position = b.Position.Add(b.LinearVelocity.Scale(dt))
		b.Orientation = integrateHalf(b.Orientation, b.AngularVelocity, dt)

		b.worldInverseInertia = worldInverseInertia(b.bodyInverseInertia, b.Orientation)

		b.clearAccumulators()

		updateSleepState(b, dt, sleepEpsilon)
	}
}

// updateSleepState applies the rolling kinetic-energy proxy of
// spec.md §4.10.2: motion = bias*motion + (1-bias)*(v.v + w.w), bias =
// 0.5^dt. Below sleepEpsilon the body sleeps; the metric is clamped at
// 10*sleepEpsilon to bound recovery time once re-awoken.
func updateSleepState(b *RigidBody, dt, sleepEpsilon float64) {
	if !b.CanSleep {
		return
	}
	bias := math.Pow(0.5, dt)
	currentMotion := b.LinearVelocity.Dot(b.LinearVelocity) + b.AngularVelocity.Dot(b.AngularVelocity)
	b.Motion_ = bias*b.Motion_ + (1-bias)*currentMotion

	if b.Motion_ < sleepEpsilon {
		b.IsAwake = false
		b.LinearVelocity = Vec3{}
		b.AngularVelocity = Vec3{}
	} else if b.Motion_ > 10*sleepEpsilon {
		b.Motion_ = 10 * sleepEpsilon
	}
}
