package raster

import (
	"surface-shading/internal/mathutil"
	"surface-shading/internal/scene"
	"surface-shading/internal/shadow"
	"surface-shading/internal/texture"
)

// ShadowOptions controls shadow map generation.
type ShadowOptions struct {
	Size    int
	Workers int

	// BlurRadius is the half width in texels of the separable box filter
	// applied to moment maps. Depth maps are never blurred.
	BlurRadius int
}

// RenderShadowMaps renders a map for every cascade camera referenced by a
// light, stores it in textures and records the handle on the camera. It
// returns the number of maps rendered.
func (r *Renderer) RenderShadowMaps(frame *scene.Frame, textures *texture.Slices, opts ShadowOptions) int {
	if opts.Size <= 0 {
		return 0
	}
	algorithm := r.pipeline.Config().Shadow.Algorithm

	done := make(map[int]bool)
	for _, light := range frame.Lights {
		for _, idx := range light.CameraIndexes {
			cam := frame.Camera(idx)
			if cam == nil || done[idx] {
				continue
			}
			done[idx] = true

			depth := r.renderDepth(frame, cam, opts.Size)
			var img *texture.Image
			if algorithm == shadow.SimpleDepthCompare {
				img = depthMap(depth, opts.Size)
			} else {
				img = momentMap(depth, opts.Size, opts.BlurRadius, opts.Workers)
			}
			cam.ShadowMap = textures.AddTexture(img)
		}
	}
	return len(done)
}

// renderDepth rasterizes every instance from cam into a size×size depth
// buffer. Empty texels hold the far plane (1).
func (r *Renderer) renderDepth(frame *scene.Frame, cam *scene.Camera, size int) []float64 {
	depth := make([]float64, size*size)
	for i := range depth {
		depth[i] = 1
	}

	tris := collectTriangles(frame, func(inst *scene.Instance, center mathutil.Vec3, radius float64) bool {
		return cam.Frustum.IntersectsSphere(center, radius)
	})
	var sts []screenTri
	for i := range tris {
		sts = project(sts[:0], cam, &tris[i], i, size, size)
		for si := range sts {
			st := &sts[si]
			st.rasterize(size, size, func(x, y int, z float64) {
				idx := y*size + x
				z = cam.NormalizedDepth(z)
				if z >= depth[idx] || z < 0 {
					return
				}
				if r.alphaTested(frame, cam, st, &tris[st.src], x, y) {
					return
				}
				depth[idx] = z
			})
		}
	}
	return depth
}

func depthMap(depth []float64, size int) *texture.Image {
	texels := make([]mathutil.Vec4, len(depth))
	for i, d := range depth {
		texels[i] = mathutil.Vec4{d, d, d, 1}
	}
	return texture.NewFloatImage(size, size, texels)
}

// momentMap encodes depth into optimized moments and box filters them.
// Filtering moments is what makes the reconstruction soft.
func momentMap(depth []float64, size, radius, workers int) *texture.Image {
	texels := make([]mathutil.Vec4, len(depth))
	forEachRow(size, workers, func(y int) {
		for x := 0; x < size; x++ {
			i := y*size + x
			texels[i] = shadow.EncodeMoments(depth[i])
		}
	})
	if radius > 0 {
		texels = BoxBlur(texels, size, size, radius, workers)
	}
	return texture.NewFloatImage(size, size, texels)
}

// BoxBlur applies a separable (2r+1)² box filter with clamp-to-edge
// addressing.
func BoxBlur(src []mathutil.Vec4, w, h, r, workers int) []mathutil.Vec4 {
	tmp := make([]mathutil.Vec4, len(src))
	dst := make([]mathutil.Vec4, len(src))
	norm := 1 / float64(2*r+1)

	forEachRow(h, workers, func(y int) {
		row := src[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			var sum mathutil.Vec4
			for k := -r; k <= r; k++ {
				sum = sum.Add(row[clampIndex(x+k, w)])
			}
			tmp[y*w+x] = sum.Scale(norm)
		}
	})
	forEachRow(h, workers, func(y int) {
		for x := 0; x < w; x++ {
			var sum mathutil.Vec4
			for k := -r; k <= r; k++ {
				sum = sum.Add(tmp[clampIndex(y+k, h)*w+x])
			}
			dst[y*w+x] = sum.Scale(norm)
		}
	})
	return dst
}

func clampIndex(i, n int) int {
	return min(max(i, 0), n-1)
}
