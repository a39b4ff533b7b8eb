package scene

import (
	"surface-shading/internal/material"
	"surface-shading/internal/mathutil"
	"surface-shading/internal/texture"
)

// Vertex is one mesh vertex in object space.
type Vertex struct {
	Position mathutil.Vec3
	Normal   mathutil.Vec3
	UV       mathutil.Vec2
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// Bounds returns the object-space bounding sphere.
func (m *Mesh) Bounds() (center mathutil.Vec3, radius float64) {
	if len(m.Vertices) == 0 {
		return mathutil.Vec3{}, 0
	}
	lo, hi := m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], v.Position[i])
			hi[i] = max(hi[i], v.Position[i])
		}
	}
	center = lo.Add(hi).Scale(0.5)
	return center, hi.Sub(center).Len()
}

// Instance places a mesh in the world with a material. Rotation is Euler
// degrees applied Z·Y·X; Scale is uniform.
type Instance struct {
	Mesh          int
	Material      int
	TextureOffset int
	Position      mathutil.Vec3
	Rotation      mathutil.Vec3
	Scale         float64
	IsTransparent bool
}

// Transform returns the linear part (rotation × scale) and the rotation
// alone, which also transforms normals under uniform scale.
func (inst *Instance) Transform() (linear, rotation mathutil.Mat3) {
	rotation = mathutil.EulerDeg(inst.Rotation)
	s := inst.Scale
	if s == 0 {
		s = 1
	}
	linear = mathutil.Mat3Mul(rotation, mathutil.Mat3Scale(s))
	return linear, rotation
}

// Environment references the image-based lighting cubes by 1-based cube
// handle; 0 disables the term.
type Environment struct {
	Specular   int
	Irradiance int
}

// SceneProperties selects the camera the frame is viewed from.
type SceneProperties struct {
	ActiveCamera      int
	DebugCamera       int
	DebugCameraActive bool
}

// Frame is the immutable per-frame record read by the shading pipeline.
type Frame struct {
	Cameras     []Camera
	Lights      []Light
	Materials   []material.Record
	Instances   []Instance
	Meshes      []Mesh
	Textures    texture.Table
	Environment Environment
	Properties  SceneProperties
}

// Camera returns camera i, or nil for NoCamera and out-of-range indices.
func (f *Frame) Camera(i int) *Camera {
	if i < 0 || i >= len(f.Cameras) {
		return nil
	}
	return &f.Cameras[i]
}

// ViewCamera is the camera the frame is rendered from, honouring the debug
// camera switch.
func (f *Frame) ViewCamera() *Camera {
	if f.Properties.DebugCameraActive {
		if c := f.Camera(f.Properties.DebugCamera); c != nil {
			return c
		}
	}
	return f.Camera(f.Properties.ActiveCamera)
}

// CullingCamera is always the active camera: the debug camera looks at what
// the active one sees.
func (f *Frame) CullingCamera() *Camera {
	return f.Camera(f.Properties.ActiveCamera)
}

// Material returns material i, or the zero record when out of range.
func (f *Frame) Material(i int) material.Record {
	if i < 0 || i >= len(f.Materials) {
		return material.Record{}
	}
	return f.Materials[i]
}

// SpecularCube and IrradianceCube resolve the environment handles.
func (f *Frame) SpecularCube() texture.Cube {
	return texture.LookupCube(f.Textures, f.Environment.Specular)
}

func (f *Frame) IrradianceCube() texture.Cube {
	return texture.LookupCube(f.Textures, f.Environment.Irradiance)
}

// ShadowMap resolves a camera's shadow map, or nil.
func (f *Frame) ShadowMap(c *Camera) texture.Texture2D {
	if c == nil || c.ShadowMap <= 0 || f.Textures == nil {
		return nil
	}
	return f.Textures.Texture2D(c.ShadowMap - 1)
}
