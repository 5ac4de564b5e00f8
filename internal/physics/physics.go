// Package physics provides collision detection, distance and sampling utilities.
package physics

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Distance calculates the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// CirclesOverlap checks if two circles overlap. Touching circles do not.
func CirclesOverlap(x1, y1, r1, x2, y2, r2 float64) bool {
	minDist := r1 + r2
	return DistanceSquared(x1, y1, x2, y2) < minDist*minDist
}

// Clamp limits v to [lo, hi]. When lo > hi the result is lo.
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// NormalizeAngle wraps an angle into [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	// math.Mod of a tiny negative value can round up to exactly 2π
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// RandRange returns a uniform sample in [lo, hi).
func RandRange(rng *rand.Rand, lo, hi float64) float64 {
	return rng.Float64()*(hi-lo) + lo
}

// RandAngle returns a uniform angle in [0, 2π).
func RandAngle(rng *rand.Rand) float64 {
	return rng.Float64() * 2 * math.Pi
}

// ClampSpeed scales (vx, vy) down to maxSpeed, preserving direction.
func ClampSpeed(vx, vy, maxSpeed float64) (float64, float64) {
	speed := math.Sqrt(vx*vx + vy*vy)
	if speed > maxSpeed && speed > 0 {
		scale := maxSpeed / speed
		return vx * scale, vy * scale
	}
	return vx, vy
}

// Polar returns the vector of the given length pointing along angle.
func Polar(angle, length float64) r2.Vec {
	return r2.Vec{X: math.Cos(angle) * length, Y: math.Sin(angle) * length}
}

// Normalize returns the unit vector of v, or the zero vector for zero input.
func Normalize(v r2.Vec) r2.Vec {
	if r2.Norm(v) == 0 {
		return r2.Vec{}
	}
	return r2.Unit(v)
}

// LimitLength returns v scaled down so its length does not exceed max.
func LimitLength(v r2.Vec, max float64) r2.Vec {
	if n := r2.Norm(v); n > max && n > 0 {
		return r2.Scale(max/n, v)
	}
	return v
}
