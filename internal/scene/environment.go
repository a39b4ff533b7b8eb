package scene

import (
	"math"

	"surface-shading/internal/mathutil"
	"surface-shading/internal/texture"
)

// Sky is a three-colour gradient sky used to bake the image-based lighting
// cubes.
type Sky struct {
	Zenith  mathutil.Vec3
	Horizon mathutil.Vec3
	Ground  mathutil.Vec3

	// Size is the specular cube face size; Levels its pre-filtered chain
	// length. IrradianceSize is the irradiance cube face size.
	Size           int
	Levels         int
	IrradianceSize int
}

// DefaultSky is a pale blue daylight sky over a dark ground.
func DefaultSky() Sky {
	return Sky{
		Zenith:         mathutil.Vec3{0.25, 0.45, 0.85},
		Horizon:        mathutil.Vec3{0.75, 0.8, 0.9},
		Ground:         mathutil.Vec3{0.18, 0.16, 0.14},
		Size:           32,
		Levels:         6,
		IrradianceSize: 8,
	}
}

// Radiance returns the sky colour along the unit direction dir.
func (s Sky) Radiance(dir mathutil.Vec3) mathutil.Vec3 {
	if dir[1] >= 0 {
		return s.Horizon.Lerp(s.Zenith, math.Sqrt(dir[1]))
	}
	return s.Horizon.Lerp(s.Ground, math.Min(1, -dir[1]*4))
}

// irradianceSamples is the polar × azimuth resolution of the cosine
// integration.
const irradianceSamples = 16

// Irradiance integrates cosine-weighted radiance over the hemisphere around
// n and divides by π, so a uniform sky of radiance L returns L.
func (s Sky) Irradiance(n mathutil.Vec3) mathutil.Vec3 {
	t, b := orthonormalBasis(n)
	var sum mathutil.Vec3
	var weight float64
	for i := 0; i < irradianceSamples; i++ {
		theta := (float64(i) + 0.5) / irradianceSamples * math.Pi / 2
		cosT, sinT := math.Cos(theta), math.Sin(theta)
		for j := 0; j < 2*irradianceSamples; j++ {
			phi := (float64(j) + 0.5) / (2 * irradianceSamples) * 2 * math.Pi
			local := t.Scale(sinT * math.Cos(phi)).Add(b.Scale(sinT * math.Sin(phi))).Add(n.Scale(cosT))
			w := cosT * sinT
			sum = sum.Add(s.Radiance(local).Scale(w))
			weight += w
		}
	}
	return sum.Scale(1 / weight)
}

// Cubes bakes the specular and irradiance cubes. Level l of the specular
// chain blends the sharp sky towards irradiance by l/(Levels-1), matching
// the roughness·(levels-1) lookup of the shading side.
func (s Sky) Cubes() (specular, irradiance *texture.CubeMap) {
	irradiance = texture.NewCubeFromFunc(max(s.IrradianceSize, 1), 1, func(dir mathutil.Vec3, _ int) mathutil.Vec3 {
		return s.Irradiance(dir)
	})

	levels := max(s.Levels, 1)
	specular = texture.NewCubeFromFunc(max(s.Size, 1), levels, func(dir mathutil.Vec3, level int) mathutil.Vec3 {
		if levels == 1 {
			return s.Radiance(dir)
		}
		r := float64(level) / float64(levels-1)
		return s.Radiance(dir).Lerp(irradiance.Sample(dir, 0), r)
	})
	return specular, irradiance
}

func orthonormalBasis(n mathutil.Vec3) (t, b mathutil.Vec3) {
	up := mathutil.Vec3{0, 1, 0}
	if math.Abs(n[1]) > 0.999 {
		up = mathutil.Vec3{1, 0, 0}
	}
	t = up.Cross(n).Normalize()
	b = n.Cross(t)
	return t, b
}
