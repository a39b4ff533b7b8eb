// Package shadow evaluates shadow visibility from cascaded shadow maps,
// either by direct depth comparison or with 4-moment shadow maps.
package shadow

import "surface-shading/internal/mathutil"

// Moments is an optimized (quantization-friendly) moment quadruple as
// stored in a moment shadow map.
type Moments = mathutil.Vec4

// momentOffset is added to the first optimized moment so that the
// encoding of the far plane is well conditioned.
const momentOffset = 0.035955884801

// encodeMatrix rotates (z, z², z³, z⁴) into the optimized basis. Rows
// multiply the power moments.
var encodeMatrix = [4][4]float64{
	{-2.07224649, 13.7948857237, 0.105877704, 9.7924062118},
	{32.23703778, -59.4683975703, -1.9077466311, -33.7652110555},
	{-68.571074599, 82.0359750338, 9.3496555107, 47.9456096605},
	{39.3703274134, -35.364903257, -6.6543490743, -23.9728048165},
}

// decodeMatrix is the inverse of encodeMatrix.
var decodeMatrix = [4][4]float64{
	{0.2227744146, 0.1549679261, 0.1451988946, 0.163127443},
	{0.0771972861, 0.1394629426, 0.2120202157, 0.2591432266},
	{0.7926986636, 0.7963415838, 0.7258694464, 0.6539092497},
	{0.0319417555, -0.1722823173, -0.2758014811, -0.3376131734},
}

func rowTimes(v mathutil.Vec4, m *[4][4]float64) mathutil.Vec4 {
	var out mathutil.Vec4
	for j := 0; j < 4; j++ {
		out[j] = v[0]*m[0][j] + v[1]*m[1][j] + v[2]*m[2][j] + v[3]*m[3][j]
	}
	return out
}

// MomentDepth maps a [0,1] depth onto the [-1,1] moment domain.
func MomentDepth(depth float64) float64 {
	return 2*depth - 1
}

// PowerMoments returns (z, z², z³, z⁴) for a moment-domain depth.
func PowerMoments(z float64) mathutil.Vec4 {
	z2 := z * z
	return mathutil.Vec4{z, z2, z2 * z, z2 * z2}
}

// EncodeMoments turns a [0,1] depth into optimized moments. Filtering
// (blurring, bilinear sampling) may be applied to the encoded values.
func EncodeMoments(depth float64) Moments {
	return EncodePowerMoments(PowerMoments(MomentDepth(depth)))
}

// EncodePowerMoments converts averaged power moments to the stored form.
func EncodePowerMoments(b mathutil.Vec4) Moments {
	q := rowTimes(b, &encodeMatrix)
	q[0] += momentOffset
	return q
}

// DecodeMoments recovers power moments from a stored quadruple.
func DecodeMoments(q Moments) mathutil.Vec4 {
	q[0] -= momentOffset
	return rowTimes(q, &decodeMatrix)
}

// FarMoments are the moments of the far plane, returned outside the map.
var FarMoments = EncodeMoments(1)
