package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"surface-shading/internal/material"
	"surface-shading/internal/mathutil"
	"surface-shading/internal/texture"
)

// Description is a JSON frame description: a camera, lights, materials and
// procedural objects.
type Description struct {
	Name        string              `json:"name"`
	Camera      CameraDescription   `json:"camera"`
	DebugCamera *CameraDescription  `json:"debug_camera,omitempty"`
	Lights      []LightDescription  `json:"lights"`
	Materials   []MaterialDesc      `json:"materials"`
	Objects     []ObjectDescription `json:"objects"`
	Sky         *SkyDescription     `json:"sky,omitempty"`
}

type CameraDescription struct {
	Position mathutil.Vec3 `json:"position"`
	Target   mathutil.Vec3 `json:"target"`
	Up       mathutil.Vec3 `json:"up"`
	FovY     float64       `json:"fov"`
	Near     float64       `json:"near"`
	Far      float64       `json:"far"`
}

type LightDescription struct {
	Direction mathutil.Vec3 `json:"direction"` // towards the light
	Color     mathutil.Vec3 `json:"color"`
	Intensity float64       `json:"intensity"`
	Shadows   bool          `json:"shadows"`
	Cascades  []float64     `json:"cascades"` // half extents, tightest first
}

type MaterialDesc struct {
	Name         string        `json:"name"`
	DiffuseColor mathutil.Vec4 `json:"diffuse_color"`
	Diffuse      string        `json:"diffuse"`
	Normal       string        `json:"normal"`
	Bump         string        `json:"bump"`
	Specular     string        `json:"specular"` // occlusion/roughness/metallic
}

type ObjectDescription struct {
	Primitive   string        `json:"primitive"` // plane, box, sphere
	Size        mathutil.Vec3 `json:"size"`
	UVRepeat    float64       `json:"uv_repeat"`
	Segments    int           `json:"segments"`
	Material    string        `json:"material"`
	Position    mathutil.Vec3 `json:"position"`
	Rotation    mathutil.Vec3 `json:"rotation"` // degrees
	Scale       float64       `json:"scale"`
	Transparent bool          `json:"transparent"`
}

type SkyDescription struct {
	Zenith  mathutil.Vec3 `json:"zenith"`
	Horizon mathutil.Vec3 `json:"horizon"`
	Ground  mathutil.Vec3 `json:"ground"`
	Size    int           `json:"size"`
	Levels  int           `json:"levels"`
}

// decoderFor maps a config encoding name to a text decoder; nil means the
// bytes are already UTF-8.
func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "_", "-")) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "iso-8859-15", "latin9":
		return charmap.ISO8859_15.NewDecoder(), nil
	}
	return nil, fmt.Errorf("scene: unknown encoding %q", name)
}

// ParseDescription decodes raw bytes in the given text encoding.
func ParseDescription(raw []byte, enc string) (*Description, error) {
	dec, err := decoderFor(enc)
	if err != nil {
		return nil, err
	}
	if dec != nil {
		raw, err = dec.Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("scene: decode %s: %w", enc, err)
		}
	}
	var d Description
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("scene: parse: %w", err)
	}
	return &d, nil
}

// LoadDescription reads a frame description file.
func LoadDescription(path, enc string) (*Description, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}
	d, err := ParseDescription(raw, enc)
	if err != nil {
		return nil, fmt.Errorf("scene: load %s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(baseName(path), ".json")
	}
	return d, nil
}

func baseName(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Built is a frame assembled from a description, with its mutable texture
// table so the host can add shadow maps before shading.
type Built struct {
	Frame    *Frame
	Textures *texture.Slices
	// Missing lists texture names the resolver could not provide.
	Missing []string
}

// Build assembles a frame. textures may be nil, in which case every texture
// name is reported missing.
func (d *Description) Build(textures texture.Resolver, aspect float64) (*Built, error) {
	slices := &texture.Slices{}
	f := &Frame{Textures: slices}
	b := &Built{Frame: f, Textures: slices}

	f.Cameras = append(f.Cameras, d.Camera.camera(aspect))
	f.Properties.ActiveCamera = 0
	if d.DebugCamera != nil {
		f.Properties.DebugCamera = len(f.Cameras)
		f.Properties.DebugCameraActive = true
		f.Cameras = append(f.Cameras, d.DebugCamera.camera(aspect))
	}

	materialIndex := make(map[string]int, len(d.Materials))
	offsets := make([]int, len(d.Materials))
	for i, md := range d.Materials {
		materialIndex[md.Name] = i
		offsets[i] = len(slices.Textures)
		f.Materials = append(f.Materials, b.bindMaterial(md, textures))
	}
	if len(f.Materials) == 0 {
		f.Materials = append(f.Materials, material.Record{DiffuseColor: mathutil.Vec4{0.8, 0.8, 0.8, 1}})
		offsets = append(offsets, 0)
	}

	for i, od := range d.Objects {
		mesh, err := od.mesh()
		if err != nil {
			return nil, fmt.Errorf("scene: object %d: %w", i, err)
		}
		mi := 0
		if od.Material != "" {
			idx, ok := materialIndex[od.Material]
			if !ok {
				return nil, fmt.Errorf("scene: object %d: unknown material %q", i, od.Material)
			}
			mi = idx
		}
		f.Meshes = append(f.Meshes, mesh)
		f.Instances = append(f.Instances, Instance{
			Mesh:          len(f.Meshes) - 1,
			Material:      mi,
			TextureOffset: offsets[mi],
			Position:      od.Position,
			Rotation:      od.Rotation,
			Scale:         od.Scale,
			IsTransparent: od.Transparent,
		})
	}

	target := d.Camera.Target
	for i, ld := range d.Lights {
		intensity := ld.Intensity
		if intensity == 0 {
			intensity = 1
		}
		color := ld.Color
		if color.IsZero() {
			color = mathutil.Vec3{1, 1, 1}
		}
		f.Lights = append(f.Lights, NewLight(ld.Direction, color.Scale(intensity)))
		if ld.Shadows {
			extents := ld.Cascades
			if len(extents) == 0 {
				extents = DefaultCascadeExtents
			}
			f.AttachCascades(i, BuildCascades(f.Lights[i], target, extents))
		}
	}

	sky := DefaultSky()
	if sd := d.Sky; sd != nil {
		if !sd.Zenith.IsZero() {
			sky.Zenith = sd.Zenith
		}
		if !sd.Horizon.IsZero() {
			sky.Horizon = sd.Horizon
		}
		if !sd.Ground.IsZero() {
			sky.Ground = sd.Ground
		}
		if sd.Size > 0 {
			sky.Size = sd.Size
		}
		if sd.Levels > 0 {
			sky.Levels = sd.Levels
		}
	}
	spec, irr := sky.Cubes()
	f.Environment.Specular = slices.AddCube(spec)
	f.Environment.Irradiance = slices.AddCube(irr)

	return b, nil
}

// bindMaterial appends the material's textures to the table and returns a
// record whose handles are local to the material's offset.
func (b *Built) bindMaterial(md MaterialDesc, textures texture.Resolver) material.Record {
	rec := material.Record{DiffuseColor: md.DiffuseColor}
	local := 0
	bind := func(name string, srgb bool) int {
		if name == "" {
			return 0
		}
		var img *texture.Image
		if textures != nil {
			img = textures.Resolve(name, srgb)
		}
		if img == nil {
			b.Missing = append(b.Missing, name)
			return 0
		}
		b.Textures.AddTexture(img)
		local++
		return local
	}
	rec.DiffuseTexture = bind(md.Diffuse, true)
	rec.NormalTexture = bind(md.Normal, false)
	rec.BumpTexture = bind(md.Bump, false)
	rec.SpecularTexture = bind(md.Specular, false)
	return rec
}

func (cd CameraDescription) camera(aspect float64) Camera {
	fov := cd.FovY
	if fov <= 0 {
		fov = 60
	}
	near, far := cd.Near, cd.Far
	if near <= 0 {
		near = 0.1
	}
	if far <= near {
		far = near + 100
	}
	up := cd.Up
	if up.IsZero() {
		up = mathutil.Vec3{0, 1, 0}
	}
	return NewCamera(cd.Position, cd.Target, up, Perspective(fov, aspect, near, far), ZeroToOne)
}

func (od ObjectDescription) mesh() (Mesh, error) {
	size := od.Size
	if size.IsZero() {
		size = mathutil.Vec3{1, 1, 1}
	}
	switch od.Primitive {
	case "plane":
		repeat := od.UVRepeat
		if repeat == 0 {
			repeat = 1
		}
		return PlaneMesh(size[0], repeat), nil
	case "box":
		return BoxMesh(size), nil
	case "sphere":
		segments := od.Segments
		if segments == 0 {
			segments = 32
		}
		return SphereMesh(size[0]/2, segments, segments/2), nil
	}
	return Mesh{}, fmt.Errorf("unknown primitive %q", od.Primitive)
}
