package scene

import (
	"math"

	"surface-shading/internal/mathutil"
)

// PlaneMesh is a size×size quad in the XZ plane facing +Y. Texture
// coordinates repeat uvRepeat times across it.
func PlaneMesh(size, uvRepeat float64) Mesh {
	h := size / 2
	up := mathutil.Vec3{0, 1, 0}
	return Mesh{
		Name: "plane",
		Vertices: []Vertex{
			{Position: mathutil.Vec3{-h, 0, -h}, Normal: up, UV: mathutil.Vec2{0, 0}},
			{Position: mathutil.Vec3{h, 0, -h}, Normal: up, UV: mathutil.Vec2{uvRepeat, 0}},
			{Position: mathutil.Vec3{h, 0, h}, Normal: up, UV: mathutil.Vec2{uvRepeat, uvRepeat}},
			{Position: mathutil.Vec3{-h, 0, h}, Normal: up, UV: mathutil.Vec2{0, uvRepeat}},
		},
		Indices: []uint32{0, 2, 1, 0, 3, 2},
	}
}

// BoxMesh is an axis-aligned box centred on the origin with one UV square
// per face.
func BoxMesh(size mathutil.Vec3) Mesh {
	h := size.Scale(0.5)
	faces := []struct {
		n, u, v mathutil.Vec3
	}{
		{mathutil.Vec3{1, 0, 0}, mathutil.Vec3{0, 0, -1}, mathutil.Vec3{0, -1, 0}},
		{mathutil.Vec3{-1, 0, 0}, mathutil.Vec3{0, 0, 1}, mathutil.Vec3{0, -1, 0}},
		{mathutil.Vec3{0, 1, 0}, mathutil.Vec3{1, 0, 0}, mathutil.Vec3{0, 0, 1}},
		{mathutil.Vec3{0, -1, 0}, mathutil.Vec3{1, 0, 0}, mathutil.Vec3{0, 0, -1}},
		{mathutil.Vec3{0, 0, 1}, mathutil.Vec3{1, 0, 0}, mathutil.Vec3{0, -1, 0}},
		{mathutil.Vec3{0, 0, -1}, mathutil.Vec3{-1, 0, 0}, mathutil.Vec3{0, -1, 0}},
	}

	m := Mesh{Name: "box"}
	for _, f := range faces {
		base := uint32(len(m.Vertices))
		for _, c := range [4][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
			offset := f.n.Add(f.u.Scale(c[0]*2 - 1)).Add(f.v.Scale(c[1]*2 - 1))
			m.Vertices = append(m.Vertices, Vertex{
				Position: offset.Mul(h),
				Normal:   f.n,
				UV:       mathutil.Vec2{c[0], c[1]},
			})
		}
		m.Indices = append(m.Indices, windingFor(m.Vertices[base:base+4], f.n, base)...)
	}
	return m
}

// windingFor emits the two triangles of a quad counter-clockwise about n.
func windingFor(q []Vertex, n mathutil.Vec3, base uint32) []uint32 {
	e1 := q[1].Position.Sub(q[0].Position)
	e2 := q[2].Position.Sub(q[0].Position)
	if e1.Cross(e2).Dot(n) >= 0 {
		return []uint32{base, base + 1, base + 2, base, base + 2, base + 3}
	}
	return []uint32{base, base + 2, base + 1, base, base + 3, base + 2}
}

// SphereMesh is a UV sphere. segments runs around Y, rings from pole to pole.
func SphereMesh(radius float64, segments, rings int) Mesh {
	segments = max(segments, 3)
	rings = max(rings, 2)

	m := Mesh{Name: "sphere"}
	for r := 0; r <= rings; r++ {
		v := float64(r) / float64(rings)
		theta := v * math.Pi
		for s := 0; s <= segments; s++ {
			u := float64(s) / float64(segments)
			phi := u * 2 * math.Pi
			n := mathutil.Vec3{
				math.Sin(theta) * math.Cos(phi),
				math.Cos(theta),
				-math.Sin(theta) * math.Sin(phi),
			}
			m.Vertices = append(m.Vertices, Vertex{
				Position: n.Scale(radius),
				Normal:   n,
				UV:       mathutil.Vec2{u, v},
			})
		}
	}

	stride := uint32(segments + 1)
	for r := uint32(0); r < uint32(rings); r++ {
		for s := uint32(0); s < uint32(segments); s++ {
			a := r*stride + s
			b := a + stride
			// Counter-clockwise seen from outside.
			m.Indices = append(m.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return m
}
