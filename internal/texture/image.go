package texture

import (
	"image"
	"math"

	"surface-shading/internal/mathutil"

	"golang.org/x/image/draw"
)

// Image is a mip-mapped float RGBA texture. Level 0 is full resolution.
type Image struct {
	levels []level
}

type level struct {
	w, h int
	pix  []float32 // RGBA interleaved, len = w*h*4
}

// NewFloatImage wraps linear float texels (row-major, top row first) as a
// single-level texture. Used for moment and depth maps.
func NewFloatImage(w, h int, texels []mathutil.Vec4) *Image {
	lv := level{w: w, h: h, pix: make([]float32, w*h*4)}
	for i, t := range texels {
		lv.pix[i*4] = float32(t[0])
		lv.pix[i*4+1] = float32(t[1])
		lv.pix[i*4+2] = float32(t[2])
		lv.pix[i*4+3] = float32(t[3])
	}
	return &Image{levels: []level{lv}}
}

// NewImageFromNRGBA builds a full mip chain from an 8-bit image. Colour
// textures pass srgb=true and are decoded to linear; data textures (normal,
// height, ORM) are kept as-is.
func NewImageFromNRGBA(src *image.NRGBA, srgb bool) *Image {
	img := &Image{}
	cur := src
	for {
		img.levels = append(img.levels, levelFromNRGBA(cur, srgb))
		b := cur.Bounds()
		if b.Dx() <= 1 && b.Dy() <= 1 {
			break
		}
		nw, nh := max(b.Dx()/2, 1), max(b.Dy()/2, 1)
		next := image.NewNRGBA(image.Rect(0, 0, nw, nh))
		draw.CatmullRom.Scale(next, next.Bounds(), cur, b, draw.Src, nil)
		cur = next
	}
	return img
}

func levelFromNRGBA(src *image.NRGBA, srgb bool) level {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	lv := level{w: w, h: h, pix: make([]float32, w*h*4)}
	for y := 0; y < h; y++ {
		off := y * src.Stride
		for x := 0; x < w; x++ {
			si := off + x*4
			di := (y*w + x) * 4
			if srgb {
				lv.pix[di] = float32(srgbToLinear[src.Pix[si]])
				lv.pix[di+1] = float32(srgbToLinear[src.Pix[si+1]])
				lv.pix[di+2] = float32(srgbToLinear[src.Pix[si+2]])
			} else {
				lv.pix[di] = float32(src.Pix[si]) / 255
				lv.pix[di+1] = float32(src.Pix[si+1]) / 255
				lv.pix[di+2] = float32(src.Pix[si+2]) / 255
			}
			lv.pix[di+3] = float32(src.Pix[si+3]) / 255
		}
	}
	return lv
}

func (img *Image) Size() (int, int) {
	return img.levels[0].w, img.levels[0].h
}

func (img *Image) Levels() int {
	return len(img.levels)
}

// Sample filters the texture at uv. Without mipmaps only level 0 is read.
func (img *Image) Sample(s Sampler, uv mathutil.Vec2, lod float64) mathutil.Vec4 {
	if !s.Mipmaps || len(img.levels) == 1 {
		return img.sampleLevel(s, 0, uv)
	}
	lod = mathutil.Clamp(lod, 0, float64(len(img.levels)-1))
	if s.Filter == Nearest {
		return img.sampleLevel(s, int(lod+0.5), uv)
	}
	l0 := int(lod)
	frac := lod - float64(l0)
	a := img.sampleLevel(s, l0, uv)
	if frac == 0 || l0+1 >= len(img.levels) {
		return a
	}
	return a.Lerp(img.sampleLevel(s, l0+1, uv), frac)
}

func (img *Image) sampleLevel(s Sampler, li int, uv mathutil.Vec2) mathutil.Vec4 {
	lv := &img.levels[li]
	if s.Filter == Nearest {
		x := int(math.Floor(uv[0] * float64(lv.w)))
		y := int(math.Floor(uv[1] * float64(lv.h)))
		return lv.fetch(s, x, y)
	}

	// Texel centres sit at half-integer coordinates.
	fx := uv[0]*float64(lv.w) - 0.5
	fy := uv[1]*float64(lv.h) - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	dx := fx - float64(x0)
	dy := fy - float64(y0)

	t00 := lv.fetch(s, x0, y0)
	t10 := lv.fetch(s, x0+1, y0)
	t01 := lv.fetch(s, x0, y0+1)
	t11 := lv.fetch(s, x0+1, y0+1)

	top := t00.Lerp(t10, dx)
	bottom := t01.Lerp(t11, dx)
	return top.Lerp(bottom, dy)
}

func (lv *level) fetch(s Sampler, x, y int) mathutil.Vec4 {
	switch s.Address {
	case Wrap:
		x = wrap(x, lv.w)
		y = wrap(y, lv.h)
	case ClampToEdge:
		x = min(max(x, 0), lv.w-1)
		y = min(max(y, 0), lv.h-1)
	case ClampToBorder:
		if x < 0 || y < 0 || x >= lv.w || y >= lv.h {
			return s.Border
		}
	}
	i := (y*lv.w + x) * 4
	return mathutil.Vec4{float64(lv.pix[i]), float64(lv.pix[i+1]), float64(lv.pix[i+2]), float64(lv.pix[i+3])}
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
