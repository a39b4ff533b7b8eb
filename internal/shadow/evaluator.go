package shadow

import (
	"github.com/go-gl/mathgl/mgl64"

	"surface-shading/internal/mathutil"
	"surface-shading/internal/scene"
	"surface-shading/internal/texture"
)

// Algorithm selects how a shadow map is interpreted.
type Algorithm int

const (
	// MomentShadowMap reads four optimized moments per texel.
	MomentShadowMap Algorithm = iota
	// SimpleDepthCompare reads depth from the red channel.
	SimpleDepthCompare
)

func (a Algorithm) String() string {
	if a == SimpleDepthCompare {
		return "depth"
	}
	return "moments"
}

// ParseAlgorithm maps a config name to an algorithm.
func ParseAlgorithm(name string) (Algorithm, bool) {
	switch name {
	case "", "moments", "msm":
		return MomentShadowMap, true
	case "depth", "simple":
		return SimpleDepthCompare, true
	}
	return MomentShadowMap, false
}

// Default tuning values.
const (
	DefaultMomentBias             = 3e-5
	DefaultLightBleedingReduction = 0.85

	// DefaultNormalOffsetScale multiplies the shadow texel size to get the
	// normal-offset distance at grazing light angles.
	DefaultNormalOffsetScale = 3.0

	DefaultMinDepthBias = 0.0005
	DefaultMaxDepthBias = 0.005
)

// Config tunes the evaluator.
type Config struct {
	Algorithm Algorithm

	MomentBias             float64
	DepthBias              float64 // subtracted from the moment-domain fragment depth
	LightBleedingReduction float64
	NormalOffsetScale      float64

	// Depth-compare bias range, interpolated by the sampled depth.
	MinDepthBias float64
	MaxDepthBias float64
}

func DefaultConfig() Config {
	return Config{
		Algorithm:              MomentShadowMap,
		MomentBias:             DefaultMomentBias,
		LightBleedingReduction: DefaultLightBleedingReduction,
		NormalOffsetScale:      DefaultNormalOffsetScale,
		MinDepthBias:           DefaultMinDepthBias,
		MaxDepthBias:           DefaultMaxDepthBias,
	}
}

// momentSampler filters moments bilinearly; outside the map it returns the
// far plane so nothing there is shadowed.
var momentSampler = texture.Sampler{Filter: texture.Linear, Address: texture.ClampToBorder, Border: FarMoments}

// Evaluator computes shadow visibility. Safe for concurrent use.
type Evaluator struct {
	cfg Config
}

func NewEvaluator(cfg Config) *Evaluator {
	return &Evaluator{cfg: cfg}
}

func (e *Evaluator) Config() Config {
	return e.cfg
}

// Visibility returns 1 for fully lit and 0 for fully shadowed. camera is
// the cascade camera the shadow map was rendered from and position the
// world-space fragment position. A nil camera or map is fully lit.
func (e *Evaluator) Visibility(light scene.Light, camera *scene.Camera, normal mathutil.Vec3, shadowMap texture.Texture2D, position mathutil.Vec3) float64 {
	if camera == nil || shadowMap == nil {
		return 1
	}
	ndc, ok := camera.Project(position)
	if !ok {
		return 1
	}

	w, _ := shadowMap.Size()
	texelSize := 2 / float64(max(w, 1))
	offset := (1 - mathutil.Saturate(light.Direction().Dot(normal))) * texelSize * e.cfg.NormalOffsetScale
	if offset > 0 && !normal.IsZero() {
		clipNormal := camera.ViewProjectionMatrix.Mul4x1(mgl64.Vec4{normal[0], normal[1], normal[2], 0})
		ndc = ndc.Add(mathutil.Vec3{clipNormal[0], clipNormal[1], clipNormal[2]}.Normalize().Scale(offset))
	}

	uv := scene.ScreenUV(ndc)
	depth := camera.NormalizedDepth(ndc[2])

	if e.cfg.Algorithm == SimpleDepthCompare {
		return e.compareDepth(shadowMap, uv, depth)
	}
	return e.MomentVisibility(shadowMap.Sample(momentSampler, uv, 0), depth)
}

func (e *Evaluator) compareDepth(shadowMap texture.Texture2D, uv mathutil.Vec2, depth float64) float64 {
	sampled := shadowMap.Sample(texture.DepthSampler, uv, 0)[0]
	bias := mathutil.Lerp(e.cfg.MinDepthBias, e.cfg.MaxDepthBias, sampled)
	if depth-bias > sampled {
		return 0
	}
	return 1
}

// MomentVisibility applies the moment reconstruction and light-bleeding
// reduction to one filtered moment sample.
func (e *Evaluator) MomentVisibility(q Moments, depth float64) float64 {
	z0 := MomentDepth(depth) - e.cfg.DepthBias
	visibility := 1 - Intensity(DecodeMoments(q), z0, e.cfg.MomentBias)
	return mathutil.Linstep(e.cfg.LightBleedingReduction, 1, visibility)
}
