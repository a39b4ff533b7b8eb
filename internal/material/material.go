// Package material turns a packed material record and its bound textures into
// the canonical shading parameters consumed by the lighting stages.
package material

import (
	"surface-shading/internal/mathutil"
	"surface-shading/internal/texture"
)

// Record is the packed material as stored in the frame's material table.
// Texture fields are 1-based indices local to the instance's texture offset;
// 0 means the slot is empty.
type Record struct {
	DiffuseColor    mathutil.Vec4
	DiffuseTexture  int
	NormalTexture   int
	BumpTexture     int
	SpecularTexture int // R = occlusion, G = roughness, B = metallic
}

// Data is the resolved per-fragment material.
type Data struct {
	Albedo    mathutil.Vec3
	Normal    mathutil.Vec3 // unit, world space
	Occlusion float64
	Roughness float64
	Metallic  float64
	Alpha     float64
}

// Surface is everything the resolver needs to know about the fragment.
type Surface struct {
	WorldPosition   mathutil.Vec3
	GeometricNormal mathutil.Vec3 // interpolated vertex normal; zero when unavailable
	ViewDirection   mathutil.Vec3 // unit, from the surface towards the eye
	DepthOnly       bool

	UV mathutil.Vec2

	// Screen-space derivatives. DPdx/DPdy are the derivatives of -view, which
	// for an unnormalized view vector equal the world position derivatives.
	DPdx, DPdy mathutil.Vec3
	UVdx, UVdy mathutil.Vec2
}

// Options tunes the resolver. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	// BumpScale is the parallax depth in texture units.
	BumpScale float64
	// MinParallaxSteps / MaxParallaxSteps bound the linear search; the count is
	// interpolated by the tangent-space view elevation.
	MinParallaxSteps float64
	MaxParallaxSteps float64
	// ParallaxLODCutoff collapses the search to one step above this mip level.
	ParallaxLODCutoff float64

	// SharpenAlphaAtLowDetail snaps diffuse alpha to 0 or 1 once the diffuse
	// texture is minified past AlphaSharpenLOD, hiding mip transparency fade.
	SharpenAlphaAtLowDetail bool
	AlphaSharpenLOD         float64
	AlphaCutoff             float64

	// Defaults when no specular (ORM) texture is bound.
	DefaultOcclusion float64
	DefaultRoughness float64
	DefaultMetallic  float64
}

// DefaultOptions returns the production tuning.
func DefaultOptions() Options {
	return Options{
		BumpScale:         0.005,
		MinParallaxSteps:  5,
		MaxParallaxSteps:  10,
		ParallaxLODCutoff: 1,
		AlphaSharpenLOD:   0,
		AlphaCutoff:       0.5,
		DefaultOcclusion:  1,
		DefaultRoughness:  1,
		DefaultMetallic:   0,
	}
}

// Resolver decodes material records. It holds no per-fragment state and is
// safe for concurrent use.
type Resolver struct {
	opts Options
}

func NewResolver(opts Options) *Resolver {
	return &Resolver{opts: opts}
}

// Resolve produces the shading parameters for one fragment. Depth-only
// fragments and fragments without a usable geometric normal never sample the
// normal or bump textures.
func (r *Resolver) Resolve(s Surface, rec Record, textureOffset int, table texture.Table) Data {
	d := Data{
		Normal:    s.GeometricNormal.Normalize(),
		Albedo:    mathutil.Vec3{1, 1, 1},
		Alpha:     1,
		Occlusion: r.opts.DefaultOcclusion,
		Roughness: r.opts.DefaultRoughness,
		Metallic:  r.opts.DefaultMetallic,
	}
	if rec.DiffuseColor[3] > 0 {
		d.Albedo = rec.DiffuseColor.RGB()
		d.Alpha = rec.DiffuseColor[3]
	}

	uv := s.UV

	if !s.DepthOnly && rec.NormalTexture > 0 && !s.GeometricNormal.IsZero() {
		base := d.Normal

		if rec.BumpTexture > 0 {
			if bump := texture.Lookup(table, textureOffset, rec.BumpTexture); bump != nil {
				uv = r.parallaxCoordinates(s, base, bump).UV
			}
		}

		if normalMap := texture.Lookup(table, textureOffset, rec.NormalTexture); normalMap != nil {
			lod := texture.ClampedLOD(normalMap, s.UVdx, s.UVdy)
			texel := normalMap.Sample(texture.MaterialSampler, uv, lod)
			m := mathutil.Vec2{texel[0]*2 - 1, texel[1]*2 - 1}
			grad := TangentNormalToDerivative(m)
			d.Normal = ResolveNormal(base, mathutil.Vec3{grad[0], grad[1], 0})
		}
	}

	if rec.DiffuseTexture > 0 {
		if diffuse := texture.Lookup(table, textureOffset, rec.DiffuseTexture); diffuse != nil {
			lod := texture.ClampedLOD(diffuse, s.UVdx, s.UVdy)
			texel := diffuse.Sample(texture.MaterialSampler, uv, lod)
			alpha := texel[3]
			if r.opts.SharpenAlphaAtLowDetail && lod > r.opts.AlphaSharpenLOD {
				if alpha < r.opts.AlphaCutoff {
					alpha = 0
				} else {
					alpha = 1
				}
			}
			d.Albedo = texel.RGB()
			if alpha != 1 {
				d.Alpha = alpha
			}
		}
	}

	if !s.DepthOnly && rec.SpecularTexture > 0 {
		if orm := texture.Lookup(table, textureOffset, rec.SpecularTexture); orm != nil {
			lod := texture.ClampedLOD(orm, s.UVdx, s.UVdy)
			texel := orm.Sample(texture.MaterialSampler, uv, lod)
			d.Occlusion = texel[0]
			d.Roughness = texel[1]
			d.Metallic = texel[2]
		}
	}

	return d
}
