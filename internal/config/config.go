// Package config loads the renderer's JSON configuration and applies CLI
// overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"surface-shading/internal/lighting"
	"surface-shading/internal/raster"
	"surface-shading/internal/shading"
	"surface-shading/internal/shadow"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	BaseDir    string `json:"base_dir"`
	ScenesDir  string `json:"scenes_dir"`
	TextureDir string `json:"texture_dir"`
	OutputDir  string `json:"output_dir"`

	// SceneEncoding names the legacy charset of frame description files
	// ("windows-1252", "iso-8859-1", "iso-8859-15"); empty means UTF-8.
	SceneEncoding string `json:"scene_encoding"`

	// Render settings
	RenderWidth  int `json:"render_width"`
	RenderHeight int `json:"render_height"`
	Supersample  int `json:"supersample"`
	Workers      int `json:"workers"`

	ShadowMapSize    int `json:"shadow_map_size"`
	ShadowBlurRadius int `json:"shadow_blur_radius"`

	Shading Shading `json:"shading"`
}

// Shading is the user-facing subset of shading.Config plus output tone
// mapping. Zero values keep the pipeline defaults.
type Shading struct {
	ShadowAlgorithm string `json:"shadow_algorithm"`
	DiffuseModel    string `json:"diffuse_model"`
	DisableShadows  bool   `json:"disable_shadows"`

	Reflectance     float64 `json:"reflectance"`
	IBLDiffuseGain  float64 `json:"ibl_diffuse_gain"`
	IBLSpecularGain float64 `json:"ibl_specular_gain"`

	MomentBias float64 `json:"moment_bias"`
	// LightBleedingReduction is a pointer because 0 (no reduction) is a
	// meaningful setting.
	LightBleedingReduction *float64 `json:"light_bleeding_reduction"`
	NormalOffsetScale      float64  `json:"normal_offset_scale"`

	BumpScale    float64 `json:"bump_scale"`
	SharpenAlpha bool    `json:"sharpen_alpha"`

	DebugCascades bool    `json:"debug_cascades"`
	DebugAlpha    float64 `json:"debug_alpha"`

	ToneMap  string  `json:"tone_map"`
	Exposure float64 `json:"exposure"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	BaseDir       string
	ScenesDir     string
	OutputDir     string
	Workers       int
	Size          int
	DebugCascades bool
}

// Resolve fills in any empty fields with auto-detected defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.BaseDir != "" {
		c.BaseDir = flags.BaseDir
	}
	if flags.ScenesDir != "" {
		c.ScenesDir = flags.ScenesDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Size > 0 {
		c.RenderWidth, c.RenderHeight = flags.Size, flags.Size
	}
	if flags.DebugCascades {
		c.Shading.DebugCascades = true
	}

	if c.BaseDir == "" {
		c.BaseDir = detectBaseDir()
	}

	if c.BaseDir != "" {
		c.ScenesDir = resolvePath(c.BaseDir, c.ScenesDir, "scenes")
		c.TextureDir = resolvePath(c.BaseDir, c.TextureDir, "textures")
		c.OutputDir = resolvePath(c.BaseDir, c.OutputDir, "renders")
	}

	// Defaults for render settings
	if c.RenderWidth <= 0 {
		c.RenderWidth = 512
	}
	if c.RenderHeight <= 0 {
		c.RenderHeight = c.RenderWidth
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ShadowMapSize <= 0 {
		c.ShadowMapSize = 1024
	}
	if c.ShadowBlurRadius < 0 {
		c.ShadowBlurRadius = 0
	}
}

// resolvePath returns p joined to base when relative, or base/fallback when
// p is empty.
func resolvePath(base, p, fallback string) string {
	switch {
	case p == "":
		return filepath.Join(base, fallback)
	case filepath.IsAbs(p):
		return p
	default:
		return filepath.Join(base, p)
	}
}

// Pipeline maps the shading block onto a pipeline configuration.
func (s Shading) Pipeline() (shading.Config, error) {
	cfg := shading.DefaultConfig()

	algorithm, ok := shadow.ParseAlgorithm(s.ShadowAlgorithm)
	if !ok {
		return cfg, fmt.Errorf("config: unknown shadow algorithm %q", s.ShadowAlgorithm)
	}
	cfg.Shadow.Algorithm = algorithm

	if s.DiffuseModel != "" {
		model, ok := lighting.ParseDiffuseModel(s.DiffuseModel)
		if !ok {
			return cfg, fmt.Errorf("config: unknown diffuse model %q", s.DiffuseModel)
		}
		cfg.DiffuseModel = model
	}

	cfg.Shadows = !s.DisableShadows
	setPositive(&cfg.Reflectance, s.Reflectance)
	setPositive(&cfg.IBLDiffuseGain, s.IBLDiffuseGain)
	setPositive(&cfg.IBLSpecularGain, s.IBLSpecularGain)
	setPositive(&cfg.Shadow.MomentBias, s.MomentBias)
	setPositive(&cfg.Shadow.NormalOffsetScale, s.NormalOffsetScale)
	setPositive(&cfg.Material.BumpScale, s.BumpScale)
	setPositive(&cfg.DebugAlpha, s.DebugAlpha)
	if s.LightBleedingReduction != nil {
		lbr := *s.LightBleedingReduction
		if lbr < 0 || lbr >= 1 {
			return cfg, fmt.Errorf("config: light_bleeding_reduction %v outside [0,1)", lbr)
		}
		cfg.Shadow.LightBleedingReduction = lbr
	}
	cfg.Material.SharpenAlphaAtLowDetail = s.SharpenAlpha
	cfg.DebugCascades = s.DebugCascades

	return cfg, nil
}

// Output returns the tone map and exposure for the final image.
func (s Shading) Output() (raster.ToneMap, float64, error) {
	tm, ok := raster.ParseToneMap(s.ToneMap)
	if !ok {
		return tm, 0, fmt.Errorf("config: unknown tone map %q", s.ToneMap)
	}
	exposure := s.Exposure
	if exposure <= 0 {
		exposure = 1
	}
	return tm, exposure, nil
}

func setPositive(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

func detectBaseDir() string {
	// Try relative to executable
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir), filepath.Join(dir, "..", "..")} {
			if isDir(filepath.Join(base, "scenes")) {
				return base
			}
		}
	}

	cwd, _ := os.Getwd()
	if isDir(filepath.Join(cwd, "scenes")) {
		return cwd
	}
	return ""
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
