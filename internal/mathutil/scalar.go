package mathutil

import "math"

const (
	InvPi = 1 / math.Pi

	// Epsilon guards divisions in the per-fragment solvers.
	Epsilon = 1e-7
)

// Saturate clamps x to [0, 1].
func Saturate(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Lerp returns a + (b-a)*t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Linstep maps [lo, hi] onto [0, 1] linearly and clamps.
func Linstep(lo, hi, x float64) float64 {
	return Saturate((x - lo) / Guard(hi-lo))
}

// Guard pushes x away from zero by at least Epsilon, keeping its sign.
func Guard(x float64) float64 {
	if x >= Epsilon || x <= -Epsilon {
		return x
	}
	if x < 0 {
		return -Epsilon
	}
	return Epsilon
}

// Pow5 returns x^5 without math.Pow.
func Pow5(x float64) float64 {
	x2 := x * x
	return x2 * x2 * x
}
