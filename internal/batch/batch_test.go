package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/webp"

	"surface-shading/internal/raster"
	"surface-shading/internal/shading"
)

const courtyard = `{
	"name": "courtyard",
	"camera": {"position": [0, 3, 6], "target": [0, 0, 0]},
	"lights": [{"direction": [0.3, 1, 0.2], "intensity": 3, "shadows": true, "cascades": [3, 9]}],
	"materials": [{"name": "stone", "diffuse_color": [0.6, 0.6, 0.55, 1], "diffuse": "cobbles"}],
	"objects": [
		{"primitive": "plane", "size": [12, 0, 0], "material": "stone"},
		{"primitive": "box", "position": [0, 0.5, 0]}
	],
	"sky": {"size": 8, "levels": 3}
}`

func writeScenes(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"courtyard.json": courtyard,
		"broken.json":    `{"objects": [{"primitive": "teapot"}]}`,
		"notes.txt":      "not a scene",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestFindJobs(t *testing.T) {
	jobs, err := FindJobs(writeScenes(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 2 || jobs[0].Name != "broken" || jobs[1].Name != "courtyard" {
		t.Fatalf("expected [broken courtyard], got %+v", jobs)
	}
	if _, err := FindJobs(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestRunWritesWebPAndManifest(t *testing.T) {
	jobs, err := FindJobs(writeScenes(t))
	if err != nil {
		t.Fatal(err)
	}
	out := t.TempDir()
	cfg := Config{
		OutputDir:        out,
		Shading:          shading.DefaultConfig(),
		ToneMap:          raster.ToneMapACES,
		Exposure:         1,
		Width:            16,
		Height:           12,
		Supersample:      2,
		Workers:          2,
		ShadowMapSize:    32,
		ShadowBlurRadius: 1,
	}

	results := Run(cfg, jobs)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if broken := results[0]; broken.Success || broken.Error == "" {
		t.Errorf("broken scene: expected a failure, got %+v", broken)
	}
	ok := results[1]
	if !ok.Success {
		t.Fatalf("courtyard: %s", ok.Error)
	}
	if ok.Lights != 1 || ok.Cascades != 2 || len(ok.Missing) != 1 {
		t.Errorf("courtyard stats: %+v", ok)
	}

	f, err := os.Open(filepath.Join(out, ok.Image))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := webp.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 12 {
		t.Errorf("output size: expected 16x12, got %v", b)
	}

	manifest := filepath.Join(out, "manifest.json")
	if err := WriteManifest(manifest, cfg, results); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatal(err)
	}
	var entries []ManifestEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Image != "" || entries[1].Image != "courtyard.webp" {
		t.Errorf("manifest: %+v", entries)
	}
}
