package raster

import (
	"image"
	"math"

	"surface-shading/internal/mathutil"
	"surface-shading/internal/texture"
)

// FrameBuffer holds linear radiance, coverage alpha and depth as flat slices
// for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []mathutil.Vec3 // linear radiance, len = W*H
	Alpha  []float64
	Depth  []float64 // NDC depth in [0,1], initialized to +inf; smaller is closer
}

// NewFrameBuffer allocates a black, transparent buffer with an empty depth
// buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	n := w * h
	depth := make([]float64, n)
	for i := range depth {
		depth[i] = math.Inf(1)
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]mathutil.Vec3, n),
		Alpha:  make([]float64, n),
		Depth:  depth,
	}
}

// Image tone maps the buffer and encodes it to 8-bit sRGB.
func (fb *FrameBuffer) Image(tm ToneMap, exposure float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, c := range fb.Color {
		di := i * 4
		img.Pix[di] = texture.EncodeSRGB(tm.Apply(c[0] * exposure))
		img.Pix[di+1] = texture.EncodeSRGB(tm.Apply(c[1] * exposure))
		img.Pix[di+2] = texture.EncodeSRGB(tm.Apply(c[2] * exposure))
		img.Pix[di+3] = clamp255(fb.Alpha[i] * 255)
	}
	return img
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
