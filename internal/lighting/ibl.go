package lighting

import (
	"math"

	"surface-shading/internal/material"
	"surface-shading/internal/mathutil"
	"surface-shading/internal/texture"
)

const (
	DefaultDiffuseGain  = 2.5
	DefaultSpecularGain = 3
)

// IBL adds environment lighting from a pre-filtered specular cube and an
// irradiance cube.
type IBL struct {
	DiffuseGain  float64
	SpecularGain float64
	Reflectance  float64
}

func NewIBL(diffuseGain, specularGain, reflectance float64) *IBL {
	return &IBL{DiffuseGain: diffuseGain, SpecularGain: specularGain, Reflectance: reflectance}
}

// Evaluate returns the environment contribution. view points from the
// surface to the eye. Either cube may be nil; its term is then skipped.
func (ibl *IBL) Evaluate(view mathutil.Vec3, d material.Data, specular, irradiance texture.Cube) mathutil.Vec3 {
	var out mathutil.Vec3
	metallic := mathutil.Saturate(d.Metallic)

	diffuseColor := d.Albedo.Scale(1 - metallic)
	if irradiance != nil && !diffuseColor.IsZero() {
		out = out.Add(irradiance.Sample(d.Normal, 0).Mul(diffuseColor).Scale(ibl.DiffuseGain))
	}

	if specular != nil {
		roughness := mathutil.Clamp(d.Roughness, 0, 1)
		lod := roughness * float64(max(specular.Levels()-1, 0))
		r := mathutil.Reflect(view.Neg(), d.Normal)
		f0 := F0(d.Albedo, metallic, ibl.Reflectance)
		out = out.Add(specular.Sample(r, lod).Mul(f0).Scale(ibl.SpecularGain))
	}

	if !out.IsFinite() {
		return mathutil.Vec3{}
	}
	return mathutil.Vec3{math.Max(out[0], 0), math.Max(out[1], 0), math.Max(out[2], 0)}
}
