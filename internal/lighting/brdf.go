// Package lighting evaluates direct (analytic light) and image-based
// lighting for a resolved material.
package lighting

import (
	"math"

	"surface-shading/internal/material"
	"surface-shading/internal/mathutil"
)

// DiffuseModel selects the diffuse lobe.
type DiffuseModel int

const (
	Lambert DiffuseModel = iota
	Burley
)

func (m DiffuseModel) String() string {
	switch m {
	case Burley:
		return "burley"
	default:
		return "lambert"
	}
}

// ParseDiffuseModel maps a config name to a model. Unknown names return
// Lambert and false.
func ParseDiffuseModel(name string) (DiffuseModel, bool) {
	switch name {
	case "", "lambert":
		return Lambert, true
	case "burley":
		return Burley, true
	}
	return Lambert, false
}

const (
	// DefaultReflectance is the perceptual dielectric reflectance; it maps to
	// f0 = 0.04.
	DefaultReflectance = 0.5

	// MinRoughness keeps the GGX lobe finite for mirror-like materials.
	MinRoughness = 0.045

	// NdotVBias avoids division artefacts at grazing view angles.
	NdotVBias = 1e-5
)

// BRDF is a metal/roughness Cook-Torrance model: GGX distribution,
// height-correlated Smith visibility, Schlick Fresnel.
type BRDF struct {
	Reflectance float64
	Diffuse     DiffuseModel
}

func NewBRDF(reflectance float64, diffuse DiffuseModel) *BRDF {
	return &BRDF{Reflectance: reflectance, Diffuse: diffuse}
}

// Evaluate returns the BRDF value (not yet multiplied by light colour or
// NdotL) for unit view and light directions, both pointing away from the
// surface.
func (b *BRDF) Evaluate(d material.Data, view, light mathutil.Vec3, NdotL float64) mathutil.Vec3 {
	n := d.Normal
	h := view.Add(light).Normalize()
	if h.IsZero() {
		h = n
	}

	NdotV := math.Max(n.Dot(view), 0) + NdotVBias
	NdotH := mathutil.Saturate(n.Dot(h))
	LdotH := mathutil.Saturate(light.Dot(h))
	NdotL = mathutil.Saturate(NdotL)

	roughness := mathutil.Clamp(d.Roughness, MinRoughness, 1)
	metallic := mathutil.Saturate(d.Metallic)

	f0 := F0(d.Albedo, metallic, b.Reflectance)
	specular := FresnelSchlick(f0, LdotH).Scale(DistributionGGX(NdotH, roughness) * VisibilitySmithGGX(NdotV, NdotL, roughness))

	diffuseColor := d.Albedo.Scale(1 - metallic)
	var diffuse mathutil.Vec3
	switch b.Diffuse {
	case Burley:
		diffuse = diffuseColor.Scale(DiffuseBurley(NdotV, NdotL, LdotH, roughness))
	default:
		diffuse = diffuseColor.Scale(mathutil.InvPi)
	}
	return diffuse.Add(specular)
}

// F0 is the specular colour at normal incidence.
func F0(albedo mathutil.Vec3, metallic, reflectance float64) mathutil.Vec3 {
	dielectric := 0.16 * reflectance * reflectance * (1 - metallic)
	return mathutil.Splat3(dielectric).Add(albedo.Scale(metallic))
}

// DistributionGGX is the Trowbridge-Reitz normal distribution.
func DistributionGGX(NdotH, roughness float64) float64 {
	a := NdotH * roughness
	k := roughness / mathutil.Guard(1-NdotH*NdotH+a*a)
	return k * k * mathutil.InvPi
}

// VisibilitySmithGGX is the height-correlated Smith term divided by the
// 4·NdotL·NdotV denominator.
func VisibilitySmithGGX(NdotV, NdotL, roughness float64) float64 {
	a2 := roughness * roughness
	ggxV := NdotL * math.Sqrt(NdotV*NdotV*(1-a2)+a2)
	ggxL := NdotV * math.Sqrt(NdotL*NdotL*(1-a2)+a2)
	return 0.5 / mathutil.Guard(ggxV+ggxL)
}

// FresnelSchlick interpolates from f0 towards white at grazing angles.
func FresnelSchlick(f0 mathutil.Vec3, VdotH float64) mathutil.Vec3 {
	f := mathutil.Pow5(1 - VdotH)
	return f0.Scale(1 - f).Add(mathutil.Splat3(f))
}

// DiffuseBurley is the Disney diffuse lobe, already divided by π.
func DiffuseBurley(NdotV, NdotL, LdotH, roughness float64) float64 {
	f90 := 0.5 + 2*roughness*LdotH*LdotH
	light := 1 + (f90-1)*mathutil.Pow5(1-NdotL)
	view := 1 + (f90-1)*mathutil.Pow5(1-NdotV)
	return light * view * mathutil.InvPi
}
