package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"surface-shading/internal/lighting"
	"surface-shading/internal/raster"
	"surface-shading/internal/shadow"
)

func TestLoadAndResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	raw := `{
		"base_dir": "` + filepath.ToSlash(dir) + `",
		"scenes_dir": "frames",
		"render_width": 320,
		"shading": {
			"shadow_algorithm": "depth",
			"diffuse_model": "burley",
			"light_bleeding_reduction": 0,
			"tone_map": "aces",
			"exposure": 1.5
		}
	}`
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Resolve(Flags{Workers: 0, DebugCascades: true})

	if cfg.ScenesDir != filepath.Join(dir, "frames") {
		t.Errorf("scenes dir: got %q", cfg.ScenesDir)
	}
	if cfg.OutputDir != filepath.Join(dir, "renders") {
		t.Errorf("output dir: got %q", cfg.OutputDir)
	}
	if cfg.RenderWidth != 320 || cfg.RenderHeight != 320 {
		t.Errorf("size: got %dx%d", cfg.RenderWidth, cfg.RenderHeight)
	}
	if cfg.Supersample != 2 || cfg.ShadowMapSize != 1024 || !cfg.Shading.DebugCascades {
		t.Errorf("defaults: supersample %d shadow %d debug %v", cfg.Supersample, cfg.ShadowMapSize, cfg.Shading.DebugCascades)
	}
	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("workers: got %d", cfg.Workers)
	}

	pc, err := cfg.Shading.Pipeline()
	if err != nil {
		t.Fatal(err)
	}
	if pc.Shadow.Algorithm != shadow.SimpleDepthCompare || pc.DiffuseModel != lighting.Burley {
		t.Errorf("strategies: got %v %v", pc.Shadow.Algorithm, pc.DiffuseModel)
	}
	if pc.Shadow.LightBleedingReduction != 0 {
		t.Errorf("explicit zero light bleeding: got %v", pc.Shadow.LightBleedingReduction)
	}
	if pc.IBLDiffuseGain != lighting.DefaultDiffuseGain || !pc.Shadows {
		t.Errorf("unset fields should keep defaults: %+v", pc)
	}

	tm, exposure, err := cfg.Shading.Output()
	if err != nil || tm != raster.ToneMapACES || exposure != 1.5 {
		t.Errorf("output: got %v %v %v", tm, exposure, err)
	}
}

func TestShadingErrors(t *testing.T) {
	tests := []struct {
		name string
		s    Shading
	}{
		{"algorithm", Shading{ShadowAlgorithm: "pcf"}},
		{"diffuse", Shading{DiffuseModel: "oren-nayar"}},
		{"bleeding", Shading{LightBleedingReduction: new(float64)}},
	}
	*tests[2].s.LightBleedingReduction = 1
	for _, tt := range tests {
		if _, err := tt.s.Pipeline(); err == nil {
			t.Errorf("%s: expected an error", tt.name)
		}
	}
	if _, _, err := (Shading{ToneMap: "filmic"}).Output(); err == nil {
		t.Error("tone map: expected an error")
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
