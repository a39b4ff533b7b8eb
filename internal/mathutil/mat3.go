package mathutil

import "github.com/go-gl/mathgl/mgl64"

// Mat3 is a row-major 3×3 matrix. mgl64 keeps its matrices column-major, so
// anything built there goes through fromMGL.
type Mat3 [9]float64

// Mat3FromColumns builds the matrix whose columns are a, b, c (a TBN basis).
func Mat3FromColumns(a, b, c Vec3) Mat3 {
	return Mat3{
		a[0], b[0], c[0],
		a[1], b[1], c[1],
		a[2], b[2], c[2],
	}
}

// Mat3Scale is a uniform scale.
func Mat3Scale(s float64) Mat3 {
	return Mat3{s, 0, 0, 0, s, 0, 0, 0, s}
}

func fromMGL(g mgl64.Mat3) Mat3 {
	var m Mat3
	for r := range 3 {
		for c := range 3 {
			m[r*3+c] = g.At(r, c)
		}
	}
	return m
}

// EulerDeg returns Rz·Ry·Rx for angles given in degrees, so X is applied
// first.
func EulerDeg(deg Vec3) Mat3 {
	rz := mgl64.Rotate3DZ(mgl64.DegToRad(deg[2]))
	ry := mgl64.Rotate3DY(mgl64.DegToRad(deg[1]))
	rx := mgl64.Rotate3DX(mgl64.DegToRad(deg[0]))
	return fromMGL(rz.Mul3(ry).Mul3(rx))
}

// Mat3Mul returns a × b.
func Mat3Mul(a, b Mat3) Mat3 {
	var m Mat3
	for r := range 3 {
		row := Vec3{a[r*3], a[r*3+1], a[r*3+2]}
		m[r*3], m[r*3+1], m[r*3+2] = row.Dot(b.col(0)), row.Dot(b.col(1)), row.Dot(b.col(2))
	}
	return m
}

func (m Mat3) col(c int) Vec3 { return Vec3{m[c], m[3+c], m[6+c]} }

// MulVec3 returns M × v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		v.Dot(Vec3{m[0], m[1], m[2]}),
		v.Dot(Vec3{m[3], m[4], m[5]}),
		v.Dot(Vec3{m[6], m[7], m[8]}),
	}
}

func (m Mat3) Transpose() Mat3 {
	return Mat3FromColumns(
		Vec3{m[0], m[1], m[2]},
		Vec3{m[3], m[4], m[5]},
		Vec3{m[6], m[7], m[8]},
	)
}
