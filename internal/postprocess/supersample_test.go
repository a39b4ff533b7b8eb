package postprocess

import (
	"image"
	"image/color"
	"testing"
)

func fill(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDownsampleSize(t *testing.T) {
	src := fill(64, 32, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	out := Downsample(src, 32, 16)
	if b := out.Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Fatalf("expected 32x16, got %v", b)
	}
	got := out.NRGBAAt(16, 8)
	if got.A != 255 || absDiff(got.R, 200) > 1 || absDiff(got.G, 100) > 1 || absDiff(got.B, 50) > 1 {
		t.Errorf("flat colour changed: %v", got)
	}

	if same := Downsample(src, 64, 64); same != src {
		t.Error("expected the image back unchanged when already small enough")
	}
}

// A red half next to a transparent half must stay red at the seam, not
// pick up the transparent texels' black.
func TestDownsampleNoDarkHalo(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 16; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	out := Downsample(src, 16, 16)
	for x := 6; x < 9; x++ {
		c := out.NRGBAAt(x, 8)
		if c.A > 16 && c.R < 240 {
			t.Errorf("x=%d: expected unpremultiplied red, got %v", x, c)
		}
	}
	if c := out.NRGBAAt(15, 8); c.A != 0 {
		t.Errorf("far side: expected transparent, got %v", c)
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
