package texture

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"

	"surface-shading/internal/mathutil"
)

func checker(w, h int) []mathutil.Vec4 {
	texels := make([]mathutil.Vec4, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float64((x + y) % 2)
			texels[y*w+x] = mathutil.Vec4{v, v, v, 1}
		}
	}
	return texels
}

func TestSampleTexelCentres(t *testing.T) {
	img := NewFloatImage(2, 2, checker(2, 2))
	nearest := Sampler{Filter: Nearest, Address: Wrap}

	tests := []struct {
		uv   mathutil.Vec2
		want float64
	}{
		{mathutil.Vec2{0.25, 0.25}, 0},
		{mathutil.Vec2{0.75, 0.25}, 1},
		{mathutil.Vec2{0.25, 0.75}, 1},
		{mathutil.Vec2{1.25, 0.25}, 0}, // wraps
	}
	for _, tt := range tests {
		if got := img.Sample(nearest, tt.uv, 0)[0]; got != tt.want {
			t.Errorf("nearest %v: expected %v, got %v", tt.uv, tt.want, got)
		}
		if got := img.Sample(MaterialSampler, tt.uv, 0)[0]; math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("linear at centre %v: expected %v, got %v", tt.uv, tt.want, got)
		}
	}

	// Halfway between two texel centres blends them evenly.
	if got := img.Sample(MaterialSampler, mathutil.Vec2{0.5, 0.25}, 0)[0]; math.Abs(got-0.5) > 1e-6 {
		t.Errorf("linear midpoint: expected 0.5, got %v", got)
	}
}

func TestClampToBorder(t *testing.T) {
	img := NewFloatImage(2, 2, make([]mathutil.Vec4, 4))
	got := img.Sample(DepthSampler, mathutil.Vec2{1.5, 0.5}, 0)
	if got != (mathutil.Vec4{1, 1, 1, 1}) {
		t.Errorf("border: expected opaque white, got %v", got)
	}
	got = img.Sample(DepthSampler, mathutil.Vec2{0.5, 0.5}, 0)
	if got != (mathutil.Vec4{}) {
		t.Errorf("inside: expected zero texel, got %v", got)
	}
}

func TestMipChainAndLOD(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	img := NewImageFromNRGBA(src, true)
	if got := img.Levels(); got != 5 {
		t.Fatalf("levels: expected 5 (16x8 → 1x1), got %d", got)
	}

	tests := []struct {
		name     string
		ddx, ddy mathutil.Vec2
		want     float64
	}{
		{"magnified", mathutil.Vec2{0.01, 0}, mathutil.Vec2{0, 0.01}, 0},
		{"one texel", mathutil.Vec2{1.0 / 16, 0}, mathutil.Vec2{0, 1.0 / 8}, 0},
		{"four texels", mathutil.Vec2{4.0 / 16, 0}, mathutil.Vec2{0, 1.0 / 8}, 2},
		{"clamped", mathutil.Vec2{100, 0}, mathutil.Vec2{0, 100}, 4},
	}
	for _, tt := range tests {
		if got := ClampedLOD(img, tt.ddx, tt.ddy); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: expected LOD %v, got %v", tt.name, tt.want, got)
		}
	}

	// White stays (nearly) white through sRGB decode and every level; the
	// 8-bit resampler may round a level down by one step.
	for l := 0.0; l <= 4; l += 0.5 {
		if got := img.Sample(MaterialSampler, mathutil.Vec2{0.3, 0.6}, l); math.Abs(got[0]-1) > 0.02 {
			t.Errorf("lod %v: expected 1, got %v", l, got[0])
		}
	}
}

type countingTable struct {
	calls int
	Slices
}

func (c *countingTable) Texture2D(i int) Texture2D {
	c.calls++
	return c.Slices.Texture2D(i)
}

func TestLookupAbsentSkipsTable(t *testing.T) {
	table := &countingTable{}
	table.AddTexture(NewFloatImage(1, 1, make([]mathutil.Vec4, 1)))

	if got := Lookup(table, 0, 0); got != nil {
		t.Errorf("local 0: expected nil texture, got %v", got)
	}
	if table.calls != 0 {
		t.Errorf("local 0: expected no table access, got %d", table.calls)
	}
	if got := Lookup(table, 0, 1); got == nil {
		t.Error("local 1 at offset 0: expected first texture")
	}
	if got := Lookup(table, 3, 1); got != nil {
		t.Errorf("out of range: expected nil, got %v", got)
	}
	if table.calls != 2 {
		t.Errorf("expected 2 table accesses, got %d", table.calls)
	}
}

func TestCubeFaceRoundTrip(t *testing.T) {
	dirs := []mathutil.Vec3{
		{1, 0.2, -0.3}, {-1, 0.4, 0.1}, {0.1, 1, 0.2},
		{0.3, -1, -0.2}, {-0.2, 0.1, 1}, {0.25, -0.3, -1},
	}
	for want, d := range dirs {
		face, uv := faceCoords(d)
		if face != want {
			t.Errorf("%v: expected face %d, got %d", d, want, face)
		}
		back := faceDirection(face, uv[0]*2-1, uv[1]*2-1).Normalize()
		n := d.Normalize()
		if back.Sub(n).Len() > 1e-9 {
			t.Errorf("%v: round trip gave %v", n, back)
		}
	}
}

func TestCubeFromFunc(t *testing.T) {
	up := mathutil.Vec3{0, 1, 0}
	cube := NewCubeFromFunc(8, 4, func(dir mathutil.Vec3, level int) mathutil.Vec3 {
		return mathutil.Splat3(mathutil.Saturate(dir.Dot(up)))
	})
	if got := cube.Levels(); got != 4 {
		t.Fatalf("levels: expected 4, got %d", got)
	}
	if got := cube.Sample(up, 0)[0]; got < 0.9 {
		t.Errorf("zenith: expected ~1, got %v", got)
	}
	if got := cube.Sample(up.Neg(), 0)[0]; got != 0 {
		t.Errorf("nadir: expected 0, got %v", got)
	}
}

func TestIndexAndCache(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "walls")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(sub, "Bricks.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()
	if err := os.WriteFile(filepath.Join(dir, "bricks.jpg"), []byte("not a jpeg"), 0644); err != nil {
		t.Fatal(err)
	}

	idx := BuildIndex(dir)
	if idx.Len() != 1 {
		t.Fatalf("index: expected 1 stem, got %d", idx.Len())
	}
	path, ok := idx.ResolvePath("Materials\\BRICKS.tga")
	if !ok || filepath.Ext(path) != ".png" {
		t.Fatalf("resolve: expected png to win, got %q (%v)", path, ok)
	}

	cache := NewCache(idx)
	tex := cache.Resolve("bricks", false)
	if tex == nil {
		t.Fatalf("cache: expected texture, err=%v", cache.Err("bricks", false))
	}
	if again := cache.Resolve("bricks", false); again != tex {
		t.Error("cache: expected the same *Image on second resolve")
	}
	if got := tex.Sample(MaterialSampler, mathutil.Vec2{0.5, 0.5}, 0); math.Abs(got[0]-1) > 1e-6 || got[1] != 0 {
		t.Errorf("cache: expected red texel, got %v", got)
	}
	if cache.Resolve("missing", false) != nil {
		t.Error("cache: expected nil for unknown name")
	}
}

func TestLoadTextureByExtension(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}

	tests := []struct {
		name   string
		encode func(io.Writer, image.Image) error
	}{
		{"red.png", png.Encode},
		{"red.PNG", png.Encode},
		{"red.jpg", func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, &jpeg.Options{Quality: 100}) }},
		{"red.jpeg", func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, nil) }},
		{"red.tga", tga.Encode},
	}

	dir := t.TempDir()
	for _, tt := range tests {
		path := filepath.Join(dir, tt.name)
		f, err := os.Create(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := tt.encode(f, img); err != nil {
			t.Fatalf("%s: encode: %v", tt.name, err)
		}
		f.Close()

		tex, err := LoadTexture(path, false)
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		got := tex.Sample(MaterialSampler, mathutil.Vec2{0.5, 0.5}, 0)
		if math.Abs(got[0]-1) > 0.05 || got[1] > 0.05 || got[2] > 0.05 {
			t.Errorf("%s: expected red, got %v", tt.name, got)
		}
	}

	bogus := filepath.Join(dir, "red.bmp")
	if err := os.WriteFile(bogus, []byte("BM"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTexture(bogus, false); err == nil {
		t.Error("bmp: expected an unknown extension error")
	}
}
