package shading

import (
	"math"
	"sync"
	"testing"

	"surface-shading/internal/material"
	"surface-shading/internal/mathutil"
	"surface-shading/internal/scene"
	"surface-shading/internal/shadow"
	"surface-shading/internal/texture"
)

func facingFragment(position mathutil.Vec3) Fragment {
	n := mathutil.Vec3{0, 1, 0}
	return Fragment{Surface: material.Surface{
		WorldPosition:   position,
		GeometricNormal: n,
		ViewDirection:   n,
		UV:              mathutil.Vec2{0.5, 0.5},
	}}
}

func TestLambertEndToEnd(t *testing.T) {
	lightColor := mathutil.Vec3{1, 0.5, 2}
	frame := &scene.Frame{
		Lights:    []scene.Light{scene.NewLight(mathutil.Vec3{0, 10, 0}, lightColor)},
		Materials: []material.Record{{}},
		Textures:  &texture.Slices{},
	}
	p := New(DefaultConfig())

	res := p.Shade(facingFragment(mathutil.Vec3{}), frame)
	for i := 0; i < 3; i++ {
		want := lightColor[i] / math.Pi
		if rel := math.Abs(res.Color[i]-want) / want; rel > 0.01 {
			t.Errorf("channel %d: expected %v within 1%%, got %v", i, want, res.Color[i])
		}
	}
	if res.Alpha != 1 || res.Cascade != -1 {
		t.Errorf("expected opaque without cascade, got alpha %v cascade %d", res.Alpha, res.Cascade)
	}
}

func TestBackFacingLightContributesNothing(t *testing.T) {
	frame := &scene.Frame{
		Lights:    []scene.Light{scene.NewLight(mathutil.Vec3{0, -1, 0}, mathutil.Vec3{1, 1, 1})},
		Materials: []material.Record{{}},
	}
	res := New(DefaultConfig()).Shade(facingFragment(mathutil.Vec3{}), frame)
	if !res.Color.IsZero() {
		t.Errorf("expected black, got %v", res.Color)
	}
}

func TestDepthOnlyReturnsAlpha(t *testing.T) {
	frame := &scene.Frame{
		Lights:    []scene.Light{scene.NewLight(mathutil.Vec3{0, 1, 0}, mathutil.Vec3{1, 1, 1})},
		Materials: []material.Record{{DiffuseColor: mathutil.Vec4{1, 1, 1, 0.4}}},
	}
	frag := facingFragment(mathutil.Vec3{})
	frag.Surface.DepthOnly = true
	res := New(DefaultConfig()).Shade(frag, frame)
	if !res.Color.IsZero() || res.Alpha != 0.4 {
		t.Errorf("expected alpha-only result, got %+v", res)
	}
}

// shadowedFrame has one light straight above with two cascades whose
// moment maps hold an occluder at y=0.
func shadowedFrame() *scene.Frame {
	textures := &texture.Slices{}
	occluder := shadow.EncodeMoments(0.5)
	texels := make([]mathutil.Vec4, 16)
	for i := range texels {
		texels[i] = occluder
	}
	moments := textures.AddTexture(texture.NewFloatImage(4, 4, texels))

	light := scene.NewLight(mathutil.Vec3{0, 1, 0}, mathutil.Vec3{1, 1, 1})
	frame := &scene.Frame{
		Cameras:   []scene.Camera{{}},
		Lights:    []scene.Light{light},
		Materials: []material.Record{{}},
		Textures:  textures,
	}
	for _, extent := range []float64{1, 4} {
		cam := scene.NewCamera(mathutil.Vec3{0, 10, 0}, mathutil.Vec3{}, mathutil.Vec3{0, 0, 1},
			scene.Orthographic(-extent, extent, -extent, extent, 0, 20), scene.ZeroToOne)
		cam.ShadowMap = moments
		frame.Cameras = append(frame.Cameras, cam)
	}
	frame.Lights[0].CameraIndexes = [scene.MaxCascades]int{1, 2, scene.NoCamera, scene.NoCamera}
	return frame
}

func TestShadowedLight(t *testing.T) {
	frame := shadowedFrame()
	p := New(DefaultConfig())

	lit := p.Shade(facingFragment(mathutil.Vec3{0.5, 2, 0}), frame)
	shadowed := p.Shade(facingFragment(mathutil.Vec3{0.5, -2, 0}), frame)
	if lit.Color[0] < 0.3 {
		t.Errorf("above the occluder: expected ~1/π, got %v", lit.Color)
	}
	if shadowed.Color[0] > 0.01 {
		t.Errorf("below the occluder: expected black, got %v", shadowed.Color)
	}
	if lit.Cascade != 0 {
		t.Errorf("expected tight cascade, got %d", lit.Cascade)
	}
	if far := p.Shade(facingFragment(mathutil.Vec3{3, -2, 0}), frame); far.Cascade != 1 {
		t.Errorf("expected wide cascade, got %d", far.Cascade)
	}

	cfg := DefaultConfig()
	cfg.Shadows = false
	if res := New(cfg).Shade(facingFragment(mathutil.Vec3{0.5, -2, 0}), frame); res.Color[0] < 0.3 {
		t.Errorf("shadows disabled: expected lit, got %v", res.Color)
	}
}

func TestDebugCascadeOverlay(t *testing.T) {
	frame := shadowedFrame()
	cfg := DefaultConfig()
	cfg.DebugCascades = true
	cfg.DebugAlpha = 1

	res := New(cfg).Shade(facingFragment(mathutil.Vec3{3, 2, 0}), frame)
	if res.Color.Sub(shadow.DebugColor(1)).Len() > 1e-12 {
		t.Errorf("expected cascade 1 colour, got %v", res.Color)
	}
}

func TestImageBasedLightingUsesOcclusion(t *testing.T) {
	sky := scene.DefaultSky()
	sky.Size, sky.IrradianceSize = 4, 2
	spec, irr := sky.Cubes()
	textures := &texture.Slices{}
	frame := &scene.Frame{
		Materials: []material.Record{{}},
		Textures:  textures,
		Environment: scene.Environment{
			Specular:   textures.AddCube(spec),
			Irradiance: textures.AddCube(irr),
		},
	}
	p := New(DefaultConfig())
	open := p.Shade(facingFragment(mathutil.Vec3{}), frame)
	if open.Color.MinComponent() <= 0 {
		t.Fatalf("expected environment light, got %v", open.Color)
	}

	occluded := material.DefaultOptions()
	occluded.DefaultOcclusion = 0.5
	cfg := DefaultConfig()
	cfg.Material = occluded
	half := New(cfg).Shade(facingFragment(mathutil.Vec3{}), frame)
	for i := 0; i < 3; i++ {
		if math.Abs(half.Color[i]-open.Color[i]/2) > 1e-9 {
			t.Errorf("channel %d: expected half of %v, got %v", i, open.Color[i], half.Color[i])
		}
	}
}

func TestConcurrentShade(t *testing.T) {
	frame := shadowedFrame()
	p := New(DefaultConfig())
	want := p.Shade(facingFragment(mathutil.Vec3{0.5, 2, 0}), frame)

	var wg sync.WaitGroup
	errs := make(chan Result, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := p.Shade(facingFragment(mathutil.Vec3{0.5, 2, 0}), frame); got != want {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
