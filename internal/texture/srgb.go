package texture

import "math"

// Gamma is the display transfer exponent used for colour textures and output.
const Gamma = 2.2

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, Gamma)
	}
}

// EncodeSRGB converts a linear [0,1] value to an 8-bit display value.
func EncodeSRGB(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Pow(v, 1/Gamma)*255 + 0.5)
}
