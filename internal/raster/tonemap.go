package raster

import "surface-shading/internal/mathutil"

// ToneMap maps linear radiance to a displayable [0,1] value.
type ToneMap int

const (
	ToneMapNone ToneMap = iota
	ToneMapACES
	ToneMapReinhard
)

func (t ToneMap) String() string {
	switch t {
	case ToneMapACES:
		return "aces"
	case ToneMapReinhard:
		return "reinhard"
	default:
		return "none"
	}
}

// ParseToneMap maps a config name to a tone map.
func ParseToneMap(name string) (ToneMap, bool) {
	switch name {
	case "", "none":
		return ToneMapNone, true
	case "aces":
		return ToneMapACES, true
	case "reinhard":
		return ToneMapReinhard, true
	}
	return ToneMapNone, false
}

// Apply maps one linear channel value.
func (t ToneMap) Apply(x float64) float64 {
	if x <= 0 {
		return 0
	}
	switch t {
	case ToneMapACES:
		return ACESTonemap(x)
	case ToneMapReinhard:
		return x / (1 + x)
	default:
		return mathutil.Saturate(x)
	}
}

// ACESTonemap applies the ACES filmic curve fit to a linear value.
func ACESTonemap(x float64) float64 {
	return mathutil.Saturate((x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14))
}
