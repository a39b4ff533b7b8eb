package scene

import (
	"surface-shading/internal/mathutil"
)

// DefaultCascadeExtents are the half widths of the cascade volumes, tightest
// first.
var DefaultCascadeExtents = []float64{2, 6, 16, 48}

// BuildCascades fits one orthographic camera per extent around target,
// looking along the light. The depth range covers a sphere of the widest
// extent so casters outside the tight cascades still land in the map.
func BuildCascades(light Light, target mathutil.Vec3, extents []float64) []Camera {
	dir := light.Direction()
	if dir.IsZero() {
		return nil
	}
	if len(extents) > MaxCascades {
		extents = extents[:MaxCascades]
	}

	reach := 0.0
	for _, e := range extents {
		reach = max(reach, e)
	}
	distance := reach * 2

	cams := make([]Camera, 0, len(extents))
	for _, e := range extents {
		eye := target.Add(dir.Scale(distance))
		proj := Orthographic(-e, e, -e, e, 0, distance*2)
		cams = append(cams, NewCamera(eye, target, mathutil.Vec3{0, 1, 0}, proj, ZeroToOne))
	}
	return cams
}

// AttachCascades appends cams to the frame and points the light's cascade
// slots at them, tightest first. Remaining slots are reset to NoCamera.
func (f *Frame) AttachCascades(lightIndex int, cams []Camera) {
	if lightIndex < 0 || lightIndex >= len(f.Lights) {
		return
	}
	l := &f.Lights[lightIndex]
	for i := range l.CameraIndexes {
		l.CameraIndexes[i] = NoCamera
	}
	for i, c := range cams {
		if i >= MaxCascades {
			break
		}
		l.CameraIndexes[i] = len(f.Cameras)
		f.Cameras = append(f.Cameras, c)
	}
}
