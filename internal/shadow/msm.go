package shadow

import (
	"math"

	"surface-shading/internal/mathutil"
)

// biasMoments is the moment vector of a uniform depth distribution on
// [-1,1]; blending towards it keeps the Hankel matrix positive definite.
var biasMoments = mathutil.Vec4{0, 0.375, 0, 0.375}

// singularTolerance decides when the 4-delta system degenerates.
const singularTolerance = 1e-4

// Intensity returns the shadow intensity in [0,1] at moment-domain depth z0
// for power moments b, after blending by momentBias. 0 is fully lit.
func Intensity(b mathutil.Vec4, z0, momentBias float64) float64 {
	b = b.Lerp(biasMoments, momentBias)

	// Cholesky factorization of the Hankel matrix.
	l21d11 := -b[0]*b[1] + b[2]
	d11 := mathutil.Guard(b[1] - b[0]*b[0])
	squaredDepthVariance := b[3] - b[1]*b[1]
	d22d11 := squaredDepthVariance*d11 - l21d11*l21d11
	l21 := l21d11 / d11
	d22 := mathutil.Guard(d22d11 / d11)

	// Solve for the polynomial whose roots are the candidate occluders.
	c := mathutil.Vec3{1, z0, z0 * z0}
	c[1] -= b[0]
	c[2] -= b[1] + l21*c[1]
	c[1] /= d11
	c[2] /= d22
	c[1] -= l21 * c[2]
	c[0] -= c[1]*b[0] + c[2]*b[1]

	p := c[1] / mathutil.Guard(c[2])
	q := c[0] / mathutil.Guard(c[2])
	r := math.Sqrt(math.Max(p*p/4-q, 0))
	z1 := -p/2 - r
	z2 := -p/2 + r

	var intensity float64
	if z1 < -1 || z2 > 1 {
		var ok bool
		intensity, ok = fourDelta(b, z0)
		if !ok {
			intensity = threeDelta(b, z0, z1, z2)
		}
	} else {
		intensity = threeDelta(b, z0, z1, z2)
	}
	if math.IsNaN(intensity) {
		return 0
	}
	return mathutil.Saturate(intensity)
}

// threeDelta is the closed form when both roots lie inside [-1,1].
func threeDelta(b mathutil.Vec4, z0, z1, z2 float64) float64 {
	var s mathutil.Vec4
	switch {
	case z2 < z0:
		s = mathutil.Vec4{z1, z0, 1, 1}
	case z1 < z0:
		s = mathutil.Vec4{z0, z1, 0, 1}
	}
	quotient := (s[0]*z2 - b[0]*(s[0]+z2) + b[1]) / mathutil.Guard((z2-s[1])*(z0-z1))
	return s[2] + s[3]*quotient
}

// fourDelta handles roots outside the depth range by fixing one support
// point at ±1 and solving for the free one. ok is false when the system is
// singular.
func fourDelta(b mathutil.Vec4, z0 float64) (float64, bool) {
	zFree := ((b[2]-b[1])*z0 + b[2] - b[3]) / mathutil.Guard((b[1]-b[0])*z0+b[1]-b[2])
	if math.Abs(zFree+1) < singularTolerance || math.Abs(zFree-1) < singularTolerance || math.Abs(zFree-z0) < singularTolerance {
		return 0, false
	}

	w1 := 0.0
	if z0 > zFree {
		w1 = 1
	}
	nx := w1 / ((zFree - z0) * (zFree*zFree - 1))
	ny := 0.5 / ((zFree + 1) * (z0 + 1))

	var poly mathutil.Vec4
	poly[0] = zFree*ny + nx
	poly[1] = nx - ny
	poly[2] = poly[1]
	poly[1] = poly[1]*(-z0) + poly[0]
	poly[0] *= -z0
	poly[3] = poly[2]
	poly[1], poly[2] = poly[0]-poly[1], poly[1]-poly[2]
	poly[0] *= -1

	intensity := poly[0] + poly[1]*b[0] + poly[2]*b[1] + poly[3]*b[2]
	if math.IsNaN(intensity) || math.IsInf(intensity, 0) {
		return 0, false
	}
	return intensity, true
}
