package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"surface-shading/internal/mathutil"
	"surface-shading/internal/scene"
)

// worldTri is a mesh triangle transformed to world space.
type worldTri struct {
	p        [3]mathutil.Vec3
	n        [3]mathutil.Vec3
	uv       [3]mathutil.Vec2
	instance int
}

// at interpolates position, normal and texture coordinates at barycentric b.
func (t *worldTri) at(b mathutil.Vec3) (p, n mathutil.Vec3, uv mathutil.Vec2) {
	for i := 0; i < 3; i++ {
		p = p.Add(t.p[i].Scale(b[i]))
		n = n.Add(t.n[i].Scale(b[i]))
		uv = uv.Add(t.uv[i].Scale(b[i]))
	}
	return p, n, uv
}

// collectTriangles transforms the instances accepted by keep to world space.
func collectTriangles(frame *scene.Frame, keep func(inst *scene.Instance, center mathutil.Vec3, radius float64) bool) []worldTri {
	var tris []worldTri
	for ii := range frame.Instances {
		inst := &frame.Instances[ii]
		if inst.Mesh < 0 || inst.Mesh >= len(frame.Meshes) {
			continue
		}
		mesh := &frame.Meshes[inst.Mesh]
		linear, rotation := inst.Transform()

		center, radius := mesh.Bounds()
		scale := inst.Scale
		if scale == 0 {
			scale = 1
		}
		if keep != nil && !keep(inst, linear.MulVec3(center).Add(inst.Position), radius*math.Abs(scale)) {
			continue
		}

		for i := 0; i+2 < len(mesh.Indices); i += 3 {
			var t worldTri
			t.instance = ii
			ok := true
			for k := 0; k < 3; k++ {
				vi := int(mesh.Indices[i+k])
				if vi >= len(mesh.Vertices) {
					ok = false
					break
				}
				v := mesh.Vertices[vi]
				t.p[k] = linear.MulVec3(v.Position).Add(inst.Position)
				t.n[k] = rotation.MulVec3(v.Normal)
				t.uv[k] = v.UV
			}
			if ok {
				tris = append(tris, t)
			}
		}
	}
	return tris
}

// clipVertex is a triangle corner in clip space tagged with its barycentric
// position on the source triangle.
type clipVertex struct {
	pos  mgl64.Vec4
	bary mathutil.Vec3
}

// nearDistance is the signed distance to the near clip plane.
func nearDistance(p mgl64.Vec4, depth scene.DepthRange) float64 {
	if depth == scene.MinusOneToOne {
		return p[2] + p[3]
	}
	return p[2]
}

// clipNear cuts the triangle against the near plane. The result is a convex
// polygon of up to four vertices; n == 0 means fully clipped.
func clipNear(in [3]clipVertex, depth scene.DepthRange) (out [4]clipVertex, n int) {
	for i := 0; i < 3; i++ {
		a, b := in[i], in[(i+1)%3]
		da, db := nearDistance(a.pos, depth), nearDistance(b.pos, depth)
		if da >= 0 {
			out[n] = a
			n++
		}
		if (da >= 0) != (db >= 0) {
			t := da / (da - db)
			out[n] = clipVertex{
				pos:  a.pos.Add(b.pos.Sub(a.pos).Mul(t)),
				bary: a.bary.Lerp(b.bary, t),
			}
			n++
		}
	}
	return out, n
}

// screenTri is a clipped triangle in pixel coordinates, ready for edge
// evaluation. Attributes are recovered through bary, perspective corrected
// with invW.
type screenTri struct {
	x, y, z [3]float64
	invW    [3]float64
	bary    [3]mathutil.Vec3
	src     int

	dy12, dx21, dy20, dx02 float64
	invDet                 float64
}

func newScreenTri(v [3]clipVertex, src, width, height int) (screenTri, bool) {
	var t screenTri
	t.src = src
	for i := 0; i < 3; i++ {
		w := v[i].pos[3]
		if w <= mathutil.Epsilon {
			return t, false
		}
		t.invW[i] = 1 / w
		t.x[i] = (v[i].pos[0]*t.invW[i]*0.5 + 0.5) * float64(width)
		t.y[i] = (v[i].pos[1]*t.invW[i]*-0.5 + 0.5) * float64(height)
		t.z[i] = v[i].pos[2] * t.invW[i]
		t.bary[i] = v[i].bary
	}

	det := (t.y[1]-t.y[2])*(t.x[0]-t.x[2]) + (t.x[2]-t.x[1])*(t.y[0]-t.y[2])
	if det > -1e-12 && det < 1e-12 {
		return t, false
	}
	t.invDet = 1 / det
	t.dy12 = t.y[1] - t.y[2]
	t.dx21 = t.x[2] - t.x[1]
	t.dy20 = t.y[2] - t.y[0]
	t.dx02 = t.x[0] - t.x[2]
	return t, true
}

// lambda returns the screen-space barycentrics at (px, py). They extend
// linearly outside the triangle, which the derivative evaluation relies on.
func (t *screenTri) lambda(px, py float64) (l0, l1, l2 float64) {
	dsx := px - t.x[2]
	dsy := py - t.y[2]
	l0 = (t.dy12*dsx + t.dx21*dsy) * t.invDet
	l1 = (t.dy20*dsx + t.dx02*dsy) * t.invDet
	return l0, l1, 1 - l0 - l1
}

// sourceBary returns the perspective-correct barycentrics on the source
// triangle at (px, py).
func (t *screenTri) sourceBary(px, py float64) mathutil.Vec3 {
	l0, l1, l2 := t.lambda(px, py)
	w0, w1, w2 := l0*t.invW[0], l1*t.invW[1], l2*t.invW[2]
	sum := mathutil.Guard(w0 + w1 + w2)
	return t.bary[0].Scale(w0 / sum).Add(t.bary[1].Scale(w1 / sum)).Add(t.bary[2].Scale(w2 / sum))
}

// rasterize calls fn for every pixel whose centre is covered, with the
// interpolated NDC depth.
func (t *screenTri) rasterize(width, height int, fn func(x, y int, z float64)) {
	minX := max(int(math.Floor(min(t.x[0], t.x[1], t.x[2]))), 0)
	maxX := min(int(math.Ceil(max(t.x[0], t.x[1], t.x[2]))), width-1)
	minY := max(int(math.Floor(min(t.y[0], t.y[1], t.y[2]))), 0)
	maxY := min(int(math.Ceil(max(t.y[0], t.y[1], t.y[2]))), height-1)

	const edge = -1e-9
	for sy := minY; sy <= maxY; sy++ {
		py := float64(sy) + 0.5
		for sx := minX; sx <= maxX; sx++ {
			l0, l1, l2 := t.lambda(float64(sx)+0.5, py)
			if l0 < edge || l1 < edge || l2 < edge {
				continue
			}
			fn(sx, sy, l0*t.z[0]+l1*t.z[1]+l2*t.z[2])
		}
	}
}

// project clips a world triangle against cam and appends the resulting
// screen triangles to dst.
func project(dst []screenTri, cam *scene.Camera, wt *worldTri, src, width, height int) []screenTri {
	var in [3]clipVertex
	for i := 0; i < 3; i++ {
		in[i].pos = cam.Clip(wt.p[i])
		in[i].bary[i] = 1
	}
	poly, n := clipNear(in, cam.DepthRange)
	for i := 1; i+1 < n; i++ {
		if st, ok := newScreenTri([3]clipVertex{poly[0], poly[i], poly[i+1]}, src, width, height); ok {
			dst = append(dst, st)
		}
	}
	return dst
}
