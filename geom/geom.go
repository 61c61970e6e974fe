// Package geom provides the 2D vector and angle helpers shared by the
// physics model and the interception core. Angles are in degrees.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec is a 2D vector in pitch coordinates (metres).
type Vec = r2.Vec

// Epsilon is the tolerance used for near-zero comparisons.
const Epsilon = 1e-6

// Polar returns the vector with length r pointing at dir degrees.
func Polar(r, dir float64) Vec {
	rad := dir * math.Pi / 180
	return Vec{X: r * math.Cos(rad), Y: r * math.Sin(rad)}
}

// AngleOf returns the direction of v in degrees, 0 for the zero vector.
func AngleOf(v Vec) float64 {
	if v.X == 0 && v.Y == 0 {
		return 0
	}
	return math.Atan2(v.Y, v.X) * 180 / math.Pi
}

// Rotate rotates v by dir degrees around the origin.
func Rotate(v Vec, dir float64) Vec {
	return r2.Rotate(v, dir*math.Pi/180, Vec{})
}

// Dist returns the distance between a and b.
func Dist(a, b Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// NormalizeAngle wraps an angle to (-180, 180].
func NormalizeAngle(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// AngleDiff returns the absolute smallest difference between two angles.
func AngleDiff(a, b float64) float64 {
	return math.Abs(NormalizeAngle(a - b))
}

// InertiaSum returns 1 + d + d^2 + ... + d^(n-1), the distance multiplier
// of a velocity decaying by d each cycle for n cycles.
func InertiaSum(decay float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	if math.Abs(1-decay) < Epsilon {
		return float64(n)
	}
	return (1 - math.Pow(decay, float64(n))) / (1 - decay)
}

// InertiaPoint returns the position reached after n cycles without
// acceleration.
func InertiaPoint(pos, vel Vec, decay float64, n int) Vec {
	return r2.Add(pos, r2.Scale(InertiaSum(decay, n), vel))
}

// InertiaFinal returns the asymptotic stop position of a decaying body.
func InertiaFinal(pos, vel Vec, decay float64) Vec {
	if decay >= 1 {
		return pos
	}
	return r2.Add(pos, r2.Scale(1/(1-decay), vel))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LimitLength scales v down so that its length does not exceed max.
func LimitLength(v Vec, max float64) Vec {
	n := r2.Norm(v)
	if n > max && n > 0 {
		return r2.Scale(max/n, v)
	}
	return v
}
