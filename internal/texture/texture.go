package texture

import (
	"math"

	"surface-shading/internal/mathutil"
)

// Filter selects texel and mip interpolation.
type Filter int

const (
	Nearest Filter = iota
	Linear
)

// Address selects how coordinates outside [0,1) are resolved.
type Address int

const (
	Wrap Address = iota
	ClampToEdge
	ClampToBorder
)

// Sampler is an immutable sampler description, the CPU analogue of a
// fixed sampler descriptor.
type Sampler struct {
	Filter  Filter
	Mipmaps bool
	Address Address
	Border  mathutil.Vec4
}

var (
	// MaterialSampler is the trilinear wrap sampler used for colour and
	// material textures.
	MaterialSampler = Sampler{Filter: Linear, Mipmaps: true, Address: Wrap}

	// DepthSampler is the nearest clamp-to-border sampler used for direct
	// depth comparisons. The opaque white border reads as "far", so fragments
	// outside the shadow map are lit.
	DepthSampler = Sampler{Filter: Nearest, Address: ClampToBorder, Border: mathutil.Vec4{1, 1, 1, 1}}
)

// Texture2D is a read-only, mip-mapped 2D texture.
type Texture2D interface {
	Size() (width, height int)
	Levels() int
	Sample(s Sampler, uv mathutil.Vec2, lod float64) mathutil.Vec4
}

// Cube is a read-only cube texture addressed by direction.
type Cube interface {
	Levels() int
	Sample(dir mathutil.Vec3, lod float64) mathutil.Vec3
}

// Table is the frame's bindless texture table. Indices are 0-based and
// out-of-range lookups return nil.
type Table interface {
	Texture2D(index int) Texture2D
	Cube(index int) Cube
}

// Lookup resolves a 1-based local texture index relative to a material's
// texture offset. Local index 0 means "no texture" and returns nil without
// touching the table.
func Lookup(t Table, offset, local int) Texture2D {
	if local <= 0 || t == nil {
		return nil
	}
	return t.Texture2D(offset + local - 1)
}

// LookupCube resolves a 1-based cube handle; 0 returns nil without touching
// the table.
func LookupCube(t Table, handle int) Cube {
	if handle <= 0 || t == nil {
		return nil
	}
	return t.Cube(handle - 1)
}

// ClampedLOD returns the mip level selected by the screen-space texture
// coordinate derivatives, clamped to the texture's mip range.
func ClampedLOD(t Texture2D, ddx, ddy mathutil.Vec2) float64 {
	w, h := t.Size()
	lx := math.Hypot(ddx[0]*float64(w), ddx[1]*float64(h))
	ly := math.Hypot(ddy[0]*float64(w), ddy[1]*float64(h))
	rho := math.Max(lx, ly)
	if rho <= 1 {
		return 0
	}
	return mathutil.Clamp(math.Log2(rho), 0, float64(t.Levels()-1))
}

// Slices is an in-memory Table. Handles returned by Add* are 1-based so that
// 0 keeps meaning "absent".
type Slices struct {
	Textures []Texture2D
	Cubes    []Cube
}

func (s *Slices) Texture2D(index int) Texture2D {
	if index < 0 || index >= len(s.Textures) {
		return nil
	}
	return s.Textures[index]
}

func (s *Slices) Cube(index int) Cube {
	if index < 0 || index >= len(s.Cubes) {
		return nil
	}
	return s.Cubes[index]
}

// AddTexture appends t and returns its 1-based handle.
func (s *Slices) AddTexture(t Texture2D) int {
	s.Textures = append(s.Textures, t)
	return len(s.Textures)
}

// AddCube appends c and returns its 1-based handle.
func (s *Slices) AddCube(c Cube) int {
	s.Cubes = append(s.Cubes, c)
	return len(s.Cubes)
}
