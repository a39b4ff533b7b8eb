package material

import (
	"math"

	"surface-shading/internal/mathutil"
	"surface-shading/internal/texture"
)

// ParallaxResult is the offset coordinate and the number of height samples
// the search took along the ray.
type ParallaxResult struct {
	UV    mathutil.Vec2
	Steps int
}

// tangentFrame derives a per-fragment tangent basis from screen-space
// derivatives. ok is false when the derivatives are degenerate.
func tangentFrame(s Surface, n mathutil.Vec3) (t, b mathutil.Vec3, ok bool) {
	t = s.DPdx.Scale(s.UVdy[1]).Sub(s.DPdy.Scale(s.UVdx[1]))
	t = t.Sub(n.Scale(n.Dot(t))).Normalize()
	if t.IsZero() {
		return mathutil.Vec3{}, mathutil.Vec3{}, false
	}
	b = n.Cross(t).Normalize().Neg()
	return t, b, true
}

func (r *Resolver) parallaxCoordinates(s Surface, n mathutil.Vec3, bump texture.Texture2D) ParallaxResult {
	t, b, ok := tangentFrame(s, n)
	if !ok {
		return ParallaxResult{UV: s.UV}
	}
	tbn := mathutil.Mat3FromColumns(t, b, n)
	dir := tbn.Transpose().MulVec3(s.ViewDirection).Normalize()
	lod := texture.ClampedLOD(bump, s.UVdx, s.UVdy)
	return r.Parallax(bump, dir, s.UV, lod)
}

// Parallax runs the linear height search along the tangent-space view
// direction dir (pointing away from the surface). The ray starts at the
// height sampled under uv and always takes a first step; it keeps descending
// while it stays above the height field, and the crossing is interpolated
// between the last two samples. A flat height field stops after one step
// with the crossing at uv itself.
func (r *Resolver) Parallax(bump texture.Texture2D, dir mathutil.Vec3, uv mathutil.Vec2, lod float64) ParallaxResult {
	if dir[2] <= mathutil.Epsilon {
		return ParallaxResult{UV: uv}
	}

	numSteps := mathutil.Lerp(r.opts.MaxParallaxSteps, r.opts.MinParallaxSteps, dir[2])
	if lod > r.opts.ParallaxLODCutoff {
		numSteps = 1
	}
	numSteps = math.Max(numSteps, 1)
	maxIterations := max(int(math.Ceil(r.opts.MaxParallaxSteps)), 1)

	step := 1 / numSteps
	delta := mathutil.Vec2{-dir[0], dir[1]}.Scale(r.opts.BumpScale / (dir[2] * numSteps))

	sampleHeight := func(p mathutil.Vec2) float64 {
		return bump.Sample(texture.MaterialSampler, p, lod)[0]
	}

	prevOffset := uv
	prevHeight := sampleHeight(uv)
	previous := prevHeight

	offset := uv.Add(delta)
	height := prevHeight - step
	current := sampleHeight(offset)
	steps := 1

	for current < height && steps < maxIterations {
		prevOffset, prevHeight, previous = offset, height, current
		height -= step
		offset = offset.Add(delta)
		current = sampleHeight(offset)
		steps++
	}

	oldDist := previous - prevHeight
	curDist := current - height

	weight := curDist / mathutil.Guard(curDist-oldDist)
	return ParallaxResult{
		UV:    prevOffset.Scale(weight).Add(offset.Scale(1 - weight)),
		Steps: steps,
	}
}
