// Package spatial holds the small amount of vector and quaternion math the
// room needs on top of mgl64.
package spatial

import "github.com/go-gl/mathgl/mgl64"

// minDistance keeps ratios finite when two points coincide.
const minDistance = 1e-4

// Distance returns the euclidean distance between a and b.
func Distance(a, b mgl64.Vec3) float64 {
	return b.Sub(a).Len()
}

// Offset returns the vector that moves from onto to.
func Offset(from, to mgl64.Vec3) mgl64.Vec3 {
	return to.Sub(from)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b mgl64.Vec3) mgl64.Vec3 {
	return a.Add(b).Mul(0.5)
}

// Ratio returns current/initial, guarding against a zero initial distance.
func Ratio(current, initial float64) float64 {
	if initial < minDistance {
		initial = minDistance
	}
	return current / initial
}

// ClampFloor raises the vertical component of p to floor when it is below it.
func ClampFloor(p mgl64.Vec3, floor float64) mgl64.Vec3 {
	if p.Y() < floor {
		p[1] = floor
	}
	return p
}

// AverageRotation blends a and b half way along the shortest arc.
func AverageRotation(a, b mgl64.Quat) mgl64.Quat {
	a, b = a.Normalize(), b.Normalize()
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, 0.5).Normalize()
}
