package texture

import (
	"math"

	"surface-shading/internal/mathutil"
)

// Cube faces in +X, -X, +Y, -Y, +Z, -Z order.
const (
	FacePosX = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

var cubeSampler = Sampler{Filter: Linear, Mipmaps: true, Address: ClampToEdge}

// CubeMap is six square faces sharing one mip chain length.
type CubeMap struct {
	faces [6]*Image
}

// NewCubeFromFunc evaluates fn at every texel centre of every face and level.
// Level l has size max(size>>l, 1); fn receives the unit direction and the
// level so callers can bake a pre-filtered chain.
func NewCubeFromFunc(size, levels int, fn func(dir mathutil.Vec3, level int) mathutil.Vec3) *CubeMap {
	c := &CubeMap{}
	for f := 0; f < 6; f++ {
		img := &Image{}
		for l := 0; l < levels; l++ {
			n := max(size>>l, 1)
			lv := level{w: n, h: n, pix: make([]float32, n*n*4)}
			for y := 0; y < n; y++ {
				for x := 0; x < n; x++ {
					sc := (float64(x)+0.5)/float64(n)*2 - 1
					tc := (float64(y)+0.5)/float64(n)*2 - 1
					rgb := fn(faceDirection(f, sc, tc).Normalize(), l)
					i := (y*n + x) * 4
					lv.pix[i] = float32(rgb[0])
					lv.pix[i+1] = float32(rgb[1])
					lv.pix[i+2] = float32(rgb[2])
					lv.pix[i+3] = 1
				}
			}
			img.levels = append(img.levels, lv)
			if n == 1 {
				break
			}
		}
		c.faces[f] = img
	}
	return c
}

func (c *CubeMap) Levels() int {
	return c.faces[0].Levels()
}

// Sample returns the filtered radiance along dir.
func (c *CubeMap) Sample(dir mathutil.Vec3, lod float64) mathutil.Vec3 {
	face, uv := faceCoords(dir)
	return c.faces[face].Sample(cubeSampler, uv, lod).RGB()
}

// faceCoords maps a direction to a face and its [0,1] coordinates using the
// usual major-axis convention.
func faceCoords(d mathutil.Vec3) (int, mathutil.Vec2) {
	ax, ay, az := math.Abs(d[0]), math.Abs(d[1]), math.Abs(d[2])
	var face int
	var sc, tc, ma float64
	switch {
	case ax >= ay && ax >= az:
		ma = ax
		if d[0] >= 0 {
			face, sc, tc = FacePosX, -d[2], -d[1]
		} else {
			face, sc, tc = FaceNegX, d[2], -d[1]
		}
	case ay >= az:
		ma = ay
		if d[1] >= 0 {
			face, sc, tc = FacePosY, d[0], d[2]
		} else {
			face, sc, tc = FaceNegY, d[0], -d[2]
		}
	default:
		ma = az
		if d[2] >= 0 {
			face, sc, tc = FacePosZ, d[0], -d[1]
		} else {
			face, sc, tc = FaceNegZ, -d[0], -d[1]
		}
	}
	if ma == 0 {
		return FacePosZ, mathutil.Vec2{0.5, 0.5}
	}
	return face, mathutil.Vec2{0.5 * (sc/ma + 1), 0.5 * (tc/ma + 1)}
}

// faceDirection is the inverse of faceCoords for sc, tc in [-1,1].
func faceDirection(face int, sc, tc float64) mathutil.Vec3 {
	switch face {
	case FacePosX:
		return mathutil.Vec3{1, -tc, -sc}
	case FaceNegX:
		return mathutil.Vec3{-1, -tc, sc}
	case FacePosY:
		return mathutil.Vec3{sc, 1, tc}
	case FaceNegY:
		return mathutil.Vec3{sc, -1, -tc}
	case FacePosZ:
		return mathutil.Vec3{sc, -tc, 1}
	default:
		return mathutil.Vec3{-sc, -tc, -1}
	}
}
