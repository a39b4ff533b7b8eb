package scene

import "surface-shading/internal/mathutil"

const (
	// NoCamera marks an unused cascade slot.
	NoCamera = -1

	// MaxCascades is the number of cascade slots per light.
	MaxCascades = 4
)

// Light is a directional light. WorldSpacePosition is a direction proxy: the
// light shines from that point towards the origin.
type Light struct {
	WorldSpacePosition mathutil.Vec3
	Color              mathutil.Vec3

	// CameraIndexes lists the shadow cascade cameras, tightest first.
	CameraIndexes [MaxCascades]int
}

// NewLight returns a light without shadow cascades.
func NewLight(position, color mathutil.Vec3) Light {
	return Light{
		WorldSpacePosition: position,
		Color:              color,
		CameraIndexes:      [MaxCascades]int{NoCamera, NoCamera, NoCamera, NoCamera},
	}
}

// Direction is the unit vector from the surface towards the light.
func (l Light) Direction() mathutil.Vec3 {
	return l.WorldSpacePosition.Normalize()
}

// CascadeCount returns how many leading slots hold a camera.
func (l Light) CascadeCount() int {
	n := 0
	for _, idx := range l.CameraIndexes {
		if idx == NoCamera {
			break
		}
		n++
	}
	return n
}
