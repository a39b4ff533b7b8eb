// Package scene holds the per-frame records the shading pipeline reads:
// cameras, lights, materials, instances and the texture table.
package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"surface-shading/internal/mathutil"
)

// DepthRange is the NDC depth convention of a projection.
type DepthRange int

const (
	// ZeroToOne is the D3D/Metal/Vulkan convention; all projections built by
	// this package use it.
	ZeroToOne DepthRange = iota
	// MinusOneToOne is the OpenGL convention, for externally built matrices.
	MinusOneToOne
)

// Camera is a view + projection pair. Shadow cascades are cameras too; their
// ShadowMap names the map rendered from them.
type Camera struct {
	WorldPosition        mathutil.Vec3
	ViewMatrix           mgl64.Mat4
	ProjectionMatrix     mgl64.Mat4
	ViewProjectionMatrix mgl64.Mat4
	Frustum              Frustum
	DepthRange           DepthRange

	// ShadowMap is a 1-based index into the frame texture table; 0 = none.
	ShadowMap int
}

// glToZeroOne remaps OpenGL clip z from [-w, w] to [0, w].
var glToZeroOne = mgl64.Translate3D(0, 0, 0.5).Mul4(mgl64.Scale3D(1, 1, 0.5))

// Perspective is a right-handed perspective projection with depth in [0,1].
func Perspective(fovYDeg, aspect, near, far float64) mgl64.Mat4 {
	return glToZeroOne.Mul4(mgl64.Perspective(mgl64.DegToRad(fovYDeg), aspect, near, far))
}

// Orthographic is a right-handed orthographic projection with depth in [0,1].
func Orthographic(left, right, bottom, top, near, far float64) mgl64.Mat4 {
	return glToZeroOne.Mul4(mgl64.Ortho(left, right, bottom, top, near, far))
}

// NewCamera looks from eye at target. up may be any vector not parallel to
// the view direction; a parallel one is replaced.
func NewCamera(eye, target, up mathutil.Vec3, projection mgl64.Mat4, depth DepthRange) Camera {
	forward := target.Sub(eye).Normalize()
	if math.Abs(forward.Dot(up.Normalize())) > 0.999 {
		up = mathutil.Vec3{0, 0, 1}
		if math.Abs(forward[2]) > 0.999 {
			up = mathutil.Vec3{1, 0, 0}
		}
	}
	view := mgl64.LookAtV(mgl64.Vec3(eye), mgl64.Vec3(target), mgl64.Vec3(up))
	return NewCameraFromMatrices(eye, view, projection, depth)
}

// NewCameraFromMatrices wraps precomputed matrices.
func NewCameraFromMatrices(eye mathutil.Vec3, view, projection mgl64.Mat4, depth DepthRange) Camera {
	vp := projection.Mul4(view)
	return Camera{
		WorldPosition:        eye,
		ViewMatrix:           view,
		ProjectionMatrix:     projection,
		ViewProjectionMatrix: vp,
		Frustum:              ExtractFrustum(vp, depth),
		DepthRange:           depth,
	}
}

// Clip transforms a world position to homogeneous clip space.
func (c *Camera) Clip(world mathutil.Vec3) mgl64.Vec4 {
	return c.ViewProjectionMatrix.Mul4x1(mgl64.Vec4{world[0], world[1], world[2], 1})
}

// Project returns normalized device coordinates. Points behind a
// perspective camera (w <= 0) return ok=false.
func (c *Camera) Project(world mathutil.Vec3) (ndc mathutil.Vec3, ok bool) {
	p := c.Clip(world)
	if p[3] <= mathutil.Epsilon {
		return mathutil.Vec3{}, false
	}
	return mathutil.Vec3{p[0] / p[3], p[1] / p[3], p[2] / p[3]}, true
}

// ContainsNDC reports whether ndc lies inside the view volume, bounds
// inclusive.
func (c *Camera) ContainsNDC(ndc mathutil.Vec3) bool {
	if ndc[0] < -1 || ndc[0] > 1 || ndc[1] < -1 || ndc[1] > 1 {
		return false
	}
	zMin := 0.0
	if c.DepthRange == MinusOneToOne {
		zMin = -1
	}
	return ndc[2] >= zMin && ndc[2] <= 1
}

// NormalizedDepth maps NDC z onto [0,1] whatever the depth convention.
func (c *Camera) NormalizedDepth(ndcZ float64) float64 {
	if c.DepthRange == MinusOneToOne {
		return ndcZ*0.5 + 0.5
	}
	return ndcZ
}

// ScreenUV maps NDC xy to texture coordinates with v pointing down.
func ScreenUV(ndc mathutil.Vec3) mathutil.Vec2 {
	return mathutil.Vec2{ndc[0]*0.5 + 0.5, ndc[1]*-0.5 + 0.5}
}

// Plane is n·p + D = 0 with unit n pointing into the frustum.
type Plane struct {
	Normal mathutil.Vec3
	D      float64
}

func (p Plane) Distance(point mathutil.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum planes in left, right, bottom, top, near, far order.
type Frustum [6]Plane

// ExtractFrustum derives the view volume planes from a view-projection
// matrix.
func ExtractFrustum(vp mgl64.Mat4, depth DepthRange) Frustum {
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)
	near := r2
	if depth == MinusOneToOne {
		near = r3.Add(r2)
	}
	raw := [6]mgl64.Vec4{
		r3.Add(r0),
		r3.Sub(r0),
		r3.Add(r1),
		r3.Sub(r1),
		near,
		r3.Sub(r2),
	}
	var f Frustum
	for i, p := range raw {
		n := mathutil.Vec3{p[0], p[1], p[2]}
		l := n.Len()
		if l == 0 {
			continue
		}
		f[i] = Plane{Normal: n.Scale(1 / l), D: p[3] / l}
	}
	return f
}

// IntersectsSphere is a conservative sphere test.
func (f Frustum) IntersectsSphere(center mathutil.Vec3, radius float64) bool {
	for _, p := range f {
		if p.Distance(center) < -radius {
			return false
		}
	}
	return true
}
