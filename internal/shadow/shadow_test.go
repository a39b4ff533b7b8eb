package shadow

import (
	"math"
	"testing"

	"surface-shading/internal/mathutil"
	"surface-shading/internal/scene"
	"surface-shading/internal/texture"
)

func TestMomentRoundTrip(t *testing.T) {
	for d := 0.0; d <= 1; d += 0.125 {
		want := PowerMoments(MomentDepth(d))
		got := DecodeMoments(EncodeMoments(d))
		for i := range got {
			if math.Abs(got[i]-want[i]) > 1e-6 {
				t.Errorf("depth %v moment %d: expected %v, got %v", d, i, want[i], got[i])
			}
		}
	}
}

func TestMomentVisibilitySingleOccluder(t *testing.T) {
	e := NewEvaluator(DefaultConfig())
	for _, occluder := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
		q := EncodeMoments(occluder)
		if v := e.MomentVisibility(q, occluder-0.05); v < 0.999 {
			t.Errorf("occluder %v, fragment in front: expected lit, got %v", occluder, v)
		}
		if v := e.MomentVisibility(q, occluder); v < 0.999 {
			t.Errorf("occluder %v, fragment on it: expected lit, got %v", occluder, v)
		}
		if v := e.MomentVisibility(q, occluder+0.05); v >= 0.5 {
			t.Errorf("occluder %v, fragment behind: expected shadowed, got %v", occluder, v)
		}
	}
}

func TestMomentVisibilityFarPlaneIsLit(t *testing.T) {
	e := NewEvaluator(DefaultConfig())
	for _, d := range []float64{0, 0.25, 0.5, 0.99} {
		if v := e.MomentVisibility(FarMoments, d); v < 0.99 {
			t.Errorf("depth %v against an empty map: expected lit, got %v", d, v)
		}
	}
}

func TestIntensityStaysInRange(t *testing.T) {
	mixtures := []Moments{
		EncodeMoments(0.5),
		EncodeMoments(0),
		EncodeMoments(1),
		EncodeMoments(0.2).Lerp(EncodeMoments(0.8), 0.5),
		EncodeMoments(0.1).Lerp(EncodeMoments(0.4), 0.25),
		{},
	}
	for _, q := range mixtures {
		b := DecodeMoments(q)
		for z := -1.0; z <= 1; z += 0.05 {
			i := Intensity(b, z, DefaultMomentBias)
			if math.IsNaN(i) || i < 0 || i > 1 {
				t.Errorf("moments %v z=%v: intensity %v out of range", q, z, i)
			}
		}
	}
}

func uniformMap(n int, texel mathutil.Vec4) *texture.Image {
	texels := make([]mathutil.Vec4, n*n)
	for i := range texels {
		texels[i] = texel
	}
	return texture.NewFloatImage(n, n, texels)
}

// topDown is an orthographic light camera 10 units above the origin with a
// 20 unit depth range, so world y maps to depth (10-y)/20.
func topDown(extent float64) scene.Camera {
	return scene.NewCamera(
		mathutil.Vec3{0, 10, 0}, mathutil.Vec3{}, mathutil.Vec3{0, 1, 0},
		scene.Orthographic(-extent, extent, -extent, extent, 0, 20), scene.ZeroToOne)
}

func TestVisibility(t *testing.T) {
	light := scene.NewLight(mathutil.Vec3{0, 1, 0}, mathutil.Vec3{1, 1, 1})
	cam := topDown(5)
	up := mathutil.Vec3{0, 1, 0}

	tests := []struct {
		name      string
		algorithm Algorithm
		shadowMap texture.Texture2D
	}{
		{"moments", MomentShadowMap, uniformMap(8, EncodeMoments(0.5))},
		{"depth", SimpleDepthCompare, uniformMap(8, mathutil.Vec4{0.5, 0.5, 0.5, 1})},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Algorithm = tt.algorithm
		e := NewEvaluator(cfg)

		if v := e.Visibility(light, &cam, up, tt.shadowMap, mathutil.Vec3{1, 2, 1}); v < 0.999 {
			t.Errorf("%s: above the occluder: expected lit, got %v", tt.name, v)
		}
		if v := e.Visibility(light, &cam, up, tt.shadowMap, mathutil.Vec3{1, -2, 1}); v >= 0.5 {
			t.Errorf("%s: below the occluder: expected shadowed, got %v", tt.name, v)
		}
		if v := e.Visibility(light, &cam, up, tt.shadowMap, mathutil.Vec3{100, -2, 0}); v < 0.99 {
			t.Errorf("%s: outside the map: expected lit, got %v", tt.name, v)
		}
		if v := e.Visibility(light, &cam, up, nil, mathutil.Vec3{1, -2, 1}); v != 1 {
			t.Errorf("%s: no shadow map: expected 1, got %v", tt.name, v)
		}
		if v := e.Visibility(light, nil, up, tt.shadowMap, mathutil.Vec3{1, -2, 1}); v != 1 {
			t.Errorf("%s: no camera: expected 1, got %v", tt.name, v)
		}
	}
}

func TestSelectCascadeBoundary(t *testing.T) {
	cams := []scene.Camera{topDown(1), topDown(2)}
	light := scene.NewLight(mathutil.Vec3{0, 1, 0}, mathutil.Vec3{1, 1, 1})
	light.CameraIndexes = [scene.MaxCascades]int{0, 1, scene.NoCamera, scene.NoCamera}

	tests := []struct {
		name  string
		world mathutil.Vec3
		want  int
	}{
		{"centre", mathutil.Vec3{0, 0, 0}, 0},
		{"shared edge", mathutil.Vec3{1, 0, 0}, 0},
		{"corner", mathutil.Vec3{-1, 0, 1}, 0},
		{"second cascade", mathutil.Vec3{1.5, 0, 0}, 1},
		{"outside all", mathutil.Vec3{10, 0, 0}, 1},
	}
	for _, tt := range tests {
		first := SelectCascade(light, cams, tt.world)
		for i := 0; i < 10; i++ {
			if got := SelectCascade(light, cams, tt.world); got != first {
				t.Fatalf("%s: non-deterministic selection %d vs %d", tt.name, first, got)
			}
		}
		if first != tt.want {
			t.Errorf("%s: expected cascade %d, got %d", tt.name, tt.want, first)
		}
	}

	if got := SelectCascade(scene.NewLight(mathutil.Vec3{0, 1, 0}, mathutil.Vec3{}), cams, mathutil.Vec3{}); got != -1 {
		t.Errorf("no cascades: expected -1, got %d", got)
	}
}

func TestBlendDebug(t *testing.T) {
	c := mathutil.Vec3{0, 0, 0}
	if got := BlendDebug(c, 0, 0.25); got != (mathutil.Vec3{0.25, 0, 0}) {
		t.Errorf("cascade 0: got %v", got)
	}
	if got := BlendDebug(c, 2, 0); got != c {
		t.Errorf("alpha 0: expected unchanged colour, got %v", got)
	}
	if DebugColor(7) != (mathutil.Vec3{1, 0, 1}) {
		t.Error("out-of-range cascade: expected magenta")
	}
}

func TestParseAlgorithm(t *testing.T) {
	if a, ok := ParseAlgorithm("depth"); !ok || a != SimpleDepthCompare {
		t.Errorf("depth: got %v %v", a, ok)
	}
	if a, ok := ParseAlgorithm("msm"); !ok || a != MomentShadowMap {
		t.Errorf("msm: got %v %v", a, ok)
	}
	if _, ok := ParseAlgorithm("pcf"); ok {
		t.Error("pcf: expected unknown")
	}
}
