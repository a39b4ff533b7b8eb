// Package shading combines material resolution, direct lighting, shadows
// and image-based lighting into the per-fragment shading entry point.
package shading

import (
	"surface-shading/internal/lighting"
	"surface-shading/internal/material"
	"surface-shading/internal/mathutil"
	"surface-shading/internal/scene"
	"surface-shading/internal/shadow"
)

// Config holds every tuning constant of the pipeline. It is captured by New.
type Config struct {
	Material material.Options

	Reflectance  float64
	DiffuseModel lighting.DiffuseModel

	IBLDiffuseGain  float64
	IBLSpecularGain float64

	Shadows bool
	Shadow  shadow.Config

	// DebugCascades tints each fragment with the colour of the cascade it
	// selected for the first shadowed light.
	DebugCascades bool
	DebugAlpha    float64
}

func DefaultConfig() Config {
	return Config{
		Material:        material.DefaultOptions(),
		Reflectance:     lighting.DefaultReflectance,
		DiffuseModel:    lighting.Lambert,
		IBLDiffuseGain:  lighting.DefaultDiffuseGain,
		IBLSpecularGain: lighting.DefaultSpecularGain,
		Shadows:         true,
		Shadow:          shadow.DefaultConfig(),
		DebugAlpha:      shadow.DefaultDebugAlpha,
	}
}

// Fragment is one visible surface sample.
type Fragment struct {
	Surface       material.Surface
	Material      int
	TextureOffset int
}

// Result is the shaded fragment. Cascade is the slot selected for the first
// shadowed light, or -1.
type Result struct {
	Color   mathutil.Vec3
	Alpha   float64
	Cascade int
}

// Pipeline is stateless after construction and safe for concurrent Shade
// calls.
type Pipeline struct {
	cfg      Config
	resolver *material.Resolver
	brdf     *lighting.BRDF
	ibl      *lighting.IBL
	shadows  *shadow.Evaluator
}

func New(cfg Config) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		resolver: material.NewResolver(cfg.Material),
		brdf:     lighting.NewBRDF(cfg.Reflectance, cfg.DiffuseModel),
		ibl:      lighting.NewIBL(cfg.IBLDiffuseGain, cfg.IBLSpecularGain, cfg.Reflectance),
		shadows:  shadow.NewEvaluator(cfg.Shadow),
	}
}

func (p *Pipeline) Config() Config {
	return p.cfg
}

// Shade resolves the fragment's material and lights it. Depth-only
// fragments only report alpha.
func (p *Pipeline) Shade(frag Fragment, frame *scene.Frame) Result {
	s := frag.Surface
	d := p.resolver.Resolve(s, frame.Material(frag.Material), frag.TextureOffset, frame.Textures)
	if s.DepthOnly {
		return Result{Alpha: d.Alpha, Cascade: -1}
	}

	offsetNormal := s.GeometricNormal.Normalize()
	if offsetNormal.IsZero() {
		offsetNormal = d.Normal
	}

	var color mathutil.Vec3
	cascade := -1
	for _, light := range frame.Lights {
		visibility := 1.0
		if p.cfg.Shadows || p.cfg.DebugCascades {
			slot := shadow.SelectCascade(light, frame.Cameras, s.WorldPosition)
			if slot >= 0 {
				if cascade < 0 {
					cascade = slot
				}
				if p.cfg.Shadows {
					cam := frame.Camera(light.CameraIndexes[slot])
					visibility = p.shadows.Visibility(light, cam, offsetNormal, frame.ShadowMap(cam), s.WorldPosition)
				}
			}
		}

		l := light.Direction()
		NdotL := mathutil.Saturate(d.Normal.Dot(l))
		if NdotL == 0 || visibility == 0 {
			continue
		}
		f := p.brdf.Evaluate(d, s.ViewDirection, l, NdotL)
		color = color.Add(f.Mul(light.Color).Scale(NdotL * visibility))
	}

	env := p.ibl.Evaluate(s.ViewDirection, d, frame.SpecularCube(), frame.IrradianceCube())
	color = color.Add(env.Scale(d.Occlusion))

	if p.cfg.DebugCascades && cascade >= 0 {
		color = shadow.BlendDebug(color, cascade, p.cfg.DebugAlpha)
	}
	return Result{Color: color, Alpha: d.Alpha, Cascade: cascade}
}
