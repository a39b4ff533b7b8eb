// Package raster is the host rasterizer that feeds the shading pipeline:
// it generates fragments with screen-space derivatives, renders shadow
// cascades into moment maps and tone maps the result.
package raster

import (
	"image"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"surface-shading/internal/material"
	"surface-shading/internal/mathutil"
	"surface-shading/internal/scene"
	"surface-shading/internal/shading"
)

// Options controls one frame render.
type Options struct {
	Width, Height int
	Workers       int

	ToneMap  ToneMap
	Exposure float64

	// AlphaCutoff discards opaque fragments whose material alpha is below it.
	AlphaCutoff float64

	// TransparentBackground leaves uncovered pixels transparent instead of
	// showing the sky.
	TransparentBackground bool
}

// Renderer draws frames with a shading pipeline. Safe for concurrent use.
type Renderer struct {
	pipeline *shading.Pipeline
	opts     Options
}

func New(pipeline *shading.Pipeline, opts Options) *Renderer {
	if opts.Exposure == 0 {
		opts.Exposure = 1
	}
	return &Renderer{pipeline: pipeline, opts: opts}
}

// RenderImage renders the frame and tone maps it.
func (r *Renderer) RenderImage(frame *scene.Frame) *image.NRGBA {
	return r.Render(frame).Image(r.opts.ToneMap, r.opts.Exposure)
}

// Render draws the frame from its view camera into a linear frame buffer.
// Opaque geometry is resolved into a visibility buffer first and each
// covered pixel is shaded once; transparent instances are then blended
// back to front.
func (r *Renderer) Render(frame *scene.Frame) *FrameBuffer {
	w, h := r.opts.Width, r.opts.Height
	fb := NewFrameBuffer(w, h)
	cam := frame.ViewCamera()
	if cam == nil || w <= 0 || h <= 0 {
		return fb
	}

	cull := frame.CullingCamera()
	tris := collectTriangles(frame, func(inst *scene.Instance, center mathutil.Vec3, radius float64) bool {
		return cull == nil || cull.Frustum.IntersectsSphere(center, radius)
	})

	var opaque, transparent []screenTri
	for i := range tris {
		if frame.Instances[tris[i].instance].IsTransparent {
			transparent = project(transparent, cam, &tris[i], i, w, h)
		} else {
			opaque = project(opaque, cam, &tris[i], i, w, h)
		}
	}

	// Visibility pass.
	ids := make([]int32, w*h)
	for i := range ids {
		ids[i] = -1
	}
	for si := range opaque {
		st := &opaque[si]
		wt := &tris[st.src]
		st.rasterize(w, h, func(x, y int, z float64) {
			idx := y*w + x
			if z >= fb.Depth[idx] {
				return
			}
			if r.alphaTested(frame, cam, st, wt, x, y) {
				return
			}
			fb.Depth[idx] = z
			ids[idx] = int32(si)
		})
	}

	// Shading pass, one row per task.
	var invVP mgl64.Mat4
	if !r.opts.TransparentBackground {
		invVP = cam.ViewProjectionMatrix.Inv()
	}
	sky := frame.SpecularCube()
	forEachRow(h, r.opts.Workers, func(y int) {
		for x := 0; x < w; x++ {
			idx := y*w + x
			id := ids[idx]
			if id < 0 {
				if !r.opts.TransparentBackground && sky != nil {
					fb.Color[idx] = sky.Sample(viewRay(cam, invVP, x, y, w, h), 0)
					fb.Alpha[idx] = 1
				}
				continue
			}
			st := &opaque[id]
			res := r.pipeline.Shade(r.fragment(frame, cam, st, &tris[st.src], x, y, false), frame)
			fb.Color[idx] = res.Color
			fb.Alpha[idx] = 1
		}
	})

	r.blendTransparent(frame, cam, fb, tris, transparent)
	return fb
}

// alphaTested reports whether a fragment is cut out by its material alpha.
// Only materials that can produce alpha below one are resolved.
func (r *Renderer) alphaTested(frame *scene.Frame, cam *scene.Camera, st *screenTri, wt *worldTri, x, y int) bool {
	inst := &frame.Instances[wt.instance]
	rec := frame.Material(inst.Material)
	if rec.DiffuseTexture == 0 && (rec.DiffuseColor[3] <= 0 || rec.DiffuseColor[3] >= 1) {
		return false
	}
	res := r.pipeline.Shade(r.fragment(frame, cam, st, wt, x, y, true), frame)
	return res.Alpha < r.opts.AlphaCutoff
}

// blendTransparent draws transparent instances back to front over fb
// without writing depth.
func (r *Renderer) blendTransparent(frame *scene.Frame, cam *scene.Camera, fb *FrameBuffer, tris []worldTri, sts []screenTri) {
	if len(sts) == 0 {
		return
	}
	distance := func(st *screenTri) float64 {
		c := tris[st.src].p[0].Add(tris[st.src].p[1]).Add(tris[st.src].p[2]).Scale(1.0 / 3)
		return c.Sub(cam.WorldPosition).Len()
	}
	sort.SliceStable(sts, func(i, j int) bool {
		return distance(&sts[i]) > distance(&sts[j])
	})

	w, h := fb.Width, fb.Height
	for si := range sts {
		st := &sts[si]
		st.rasterize(w, h, func(x, y int, z float64) {
			idx := y*w + x
			if z >= fb.Depth[idx] {
				return
			}
			res := r.pipeline.Shade(r.fragment(frame, cam, st, &tris[st.src], x, y, false), frame)
			a := mathutil.Saturate(res.Alpha)
			fb.Color[idx] = res.Color.Scale(a).Add(fb.Color[idx].Scale(1 - a))
			fb.Alpha[idx] = a + fb.Alpha[idx]*(1-a)
		})
	}
}

// fragment reconstructs the surface at pixel (x, y). Derivatives come from
// evaluating the same triangle at the right and lower neighbours.
func (r *Renderer) fragment(frame *scene.Frame, cam *scene.Camera, st *screenTri, wt *worldTri, x, y int, depthOnly bool) shading.Fragment {
	px, py := float64(x)+0.5, float64(y)+0.5
	p, n, uv := wt.at(st.sourceBary(px, py))
	pdx, _, uvdx := wt.at(st.sourceBary(px+1, py))
	pdy, _, uvdy := wt.at(st.sourceBary(px, py+1))

	inst := &frame.Instances[wt.instance]
	return shading.Fragment{
		Surface: material.Surface{
			WorldPosition:   p,
			GeometricNormal: n,
			ViewDirection:   viewDirection(cam, p),
			DepthOnly:       depthOnly,
			UV:              uv,
			DPdx:            pdx.Sub(p),
			DPdy:            pdy.Sub(p),
			UVdx:            uvdx.Sub(uv),
			UVdy:            uvdy.Sub(uv),
		},
		Material:      inst.Material,
		TextureOffset: inst.TextureOffset,
	}
}

// viewDirection points from p towards the eye. Orthographic cameras use
// their constant forward axis.
func viewDirection(cam *scene.Camera, p mathutil.Vec3) mathutil.Vec3 {
	if cam.ProjectionMatrix[15] == 1 && cam.ProjectionMatrix[11] == 0 {
		row := cam.ViewMatrix.Row(2)
		return mathutil.Vec3{row[0], row[1], row[2]}.Normalize()
	}
	return cam.WorldPosition.Sub(p).Normalize()
}

// viewRay is the world direction through the centre of pixel (x, y).
func viewRay(cam *scene.Camera, invVP mgl64.Mat4, x, y, w, h int) mathutil.Vec3 {
	ndcX := (float64(x)+0.5)/float64(w)*2 - 1
	ndcY := 1 - (float64(y)+0.5)/float64(h)*2
	far := invVP.Mul4x1(mgl64.Vec4{ndcX, ndcY, 1, 1})
	if math.Abs(far[3]) < mathutil.Epsilon {
		return viewDirection(cam, mathutil.Vec3{}).Neg()
	}
	p := mathutil.Vec3{far[0] / far[3], far[1] / far[3], far[2] / far[3]}
	return p.Sub(cam.WorldPosition).Normalize()
}
