package batch

import (
	"encoding/json"
	"fmt"
	"os"
)

// ManifestEntry represents one rendered frame in the output manifest.
type ManifestEntry struct {
	Name            string   `json:"name"`
	Image           string   `json:"image,omitempty"`
	Width           int      `json:"width"`
	Height          int      `json:"height"`
	Lights          int      `json:"lights"`
	Cascades        int      `json:"cascades"`
	MissingTextures []string `json:"missing_textures,omitempty"`
	RenderMillis    int64    `json:"render_ms"`
	Error           string   `json:"error,omitempty"`
}

// WriteManifest writes manifest.json to path.
func WriteManifest(path string, cfg Config, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		e := ManifestEntry{
			Name:            r.Name,
			Width:           cfg.Width,
			Height:          cfg.Height,
			Lights:          r.Lights,
			Cascades:        r.Cascades,
			MissingTextures: r.Missing,
			RenderMillis:    r.Elapsed.Milliseconds(),
			Error:           r.Error,
		}
		if r.Success {
			e.Image = r.Image
		}
		entries[i] = e
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("batch: write %s: %w", path, err)
	}
	return nil
}
