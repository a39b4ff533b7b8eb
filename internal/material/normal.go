package material

import (
	"math"

	"surface-shading/internal/mathutil"
)

// derivativeFloor keeps the reconstructed z away from zero for normals that
// lie (numerically) in the tangent plane.
const derivativeFloor = 1.0 / (128 * 128)

// TangentNormalToDerivative converts the xy channels of a tangent-space
// normal in [-1,1] to a height derivative, avoiding a full tangent basis.
func TangentNormalToDerivative(m mathutil.Vec2) mathutil.Vec2 {
	x2 := m[0] * m[0]
	y2 := m[1] * m[1]
	mz2 := 1 - x2 - y2
	maxXY2 := derivativeFloor * math.Max(x2, y2)
	zInv := 1 / math.Sqrt(math.Max(mz2, math.Max(maxXY2, mathutil.Epsilon)))
	return mathutil.Vec2{-zInv * m[0], zInv * m[1]}
}

// ResolveNormal perturbs the unit base normal by a surface gradient. A
// gradient that cancels the base normal leaves the base normal in place.
func ResolveNormal(base, surfaceGradient mathutil.Vec3) mathutil.Vec3 {
	n := base.Sub(surfaceGradient).Normalize()
	if n.IsZero() {
		return base
	}
	return n
}
