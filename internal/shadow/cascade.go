package shadow

import (
	"surface-shading/internal/mathutil"
	"surface-shading/internal/scene"
)

// SelectCascade returns the first cascade slot of light whose camera
// contains world. Bounds are inclusive, so a point on the shared edge of two
// cascades goes to the tighter one. A point outside every cascade falls back
// to the last valid slot; -1 means the light has no cascade cameras.
func SelectCascade(light scene.Light, cameras []scene.Camera, world mathutil.Vec3) int {
	last := -1
	for slot, idx := range light.CameraIndexes {
		if idx < 0 || idx >= len(cameras) {
			continue
		}
		last = slot
		cam := &cameras[idx]
		ndc, ok := cam.Project(world)
		if ok && cam.ContainsNDC(ndc) {
			return slot
		}
	}
	return last
}

// debugPalette colours cascades 0-3.
var debugPalette = [scene.MaxCascades]mathutil.Vec3{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
	{1, 1, 0},
}

// DefaultDebugAlpha is the overlay strength of the cascade debug view.
const DefaultDebugAlpha = 0.25

// DebugColor returns the overlay colour of a cascade slot; out-of-range
// slots are magenta.
func DebugColor(cascade int) mathutil.Vec3 {
	if cascade < 0 || cascade >= len(debugPalette) {
		return mathutil.Vec3{1, 0, 1}
	}
	return debugPalette[cascade]
}

// BlendDebug tints color towards the cascade's debug colour.
func BlendDebug(color mathutil.Vec3, cascade int, alpha float64) mathutil.Vec3 {
	return color.Lerp(DebugColor(cascade), mathutil.Saturate(alpha))
}
