package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"surface-shading/internal/batch"
	"surface-shading/internal/config"
	"surface-shading/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	scene := flag.String("scene", "", "Render only the frame description with this name")
	testN := flag.Int("test", 0, "Render only first N frames for testing")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	baseDir := flag.String("base", "", "Base directory holding scenes/ and textures/ (default: auto-detect)")
	scenesDir := flag.String("scenes", "", "Frame description directory (default: <base>/scenes)")
	outputDir := flag.String("output", "", "Output directory (default: <base>/renders)")
	size := flag.Int("size", 0, "Square output size in pixels (default: 512)")
	debugCascades := flag.Bool("debug-cascades", false, "Tint fragments by selected shadow cascade")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		BaseDir:       *baseDir,
		ScenesDir:     *scenesDir,
		OutputDir:     *outputDir,
		Workers:       *workers,
		Size:          *size,
		DebugCascades: *debugCascades,
	})

	if cfg.ScenesDir == "" {
		fmt.Fprintln(os.Stderr, "Error: cannot find a scenes directory. Use -base, -scenes or config.json.")
		os.Exit(1)
	}

	pipelineCfg, err := cfg.Shading.Pipeline()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	toneMap, exposure, err := cfg.Shading.Output()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	jobs, err := batch.FindJobs(cfg.ScenesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing scenes: %v\n", err)
		os.Exit(1)
	}

	if *scene != "" {
		var filtered []batch.Job
		for _, j := range jobs {
			if j.Name == *scene {
				filtered = append(filtered, j)
			}
		}
		jobs = filtered
	}

	// Limit for testing
	if *testN > 0 && *testN < len(jobs) {
		jobs = jobs[:*testN]
	}

	if len(jobs) == 0 {
		fmt.Println("No frames to render.")
		os.Exit(0)
	}

	// Build texture index
	texIndex := texture.BuildIndex(cfg.TextureDir)
	texCache := texture.NewCache(texIndex)
	fmt.Printf("Textures: %d indexed\n", texIndex.Len())

	// Print summary
	mode := ""
	if *scene != "" {
		mode = fmt.Sprintf(" (Scene %s)", *scene)
	} else if *testN > 0 {
		mode = fmt.Sprintf(" (TEST: first %d)", *testN)
	}

	fmt.Printf("Surface shading → WebP%s\n", mode)
	fmt.Printf("Frames: %d, Size: %dx%d (x%d), Workers: %d\n",
		len(jobs), cfg.RenderWidth, cfg.RenderHeight, cfg.Supersample, cfg.Workers)
	fmt.Printf("Shadows: %v (%s), Diffuse: %s, Tone map: %s\n",
		pipelineCfg.Shadows, pipelineCfg.Shadow.Algorithm, pipelineCfg.DiffuseModel, toneMap)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	// Run batch
	batchCfg := batch.Config{
		OutputDir:        cfg.OutputDir,
		SceneEncoding:    cfg.SceneEncoding,
		TexResolver:      texCache,
		Shading:          pipelineCfg,
		ToneMap:          toneMap,
		Exposure:         exposure,
		Width:            cfg.RenderWidth,
		Height:           cfg.RenderHeight,
		Supersample:      cfg.Supersample,
		Workers:          cfg.Workers,
		ShadowMapSize:    cfg.ShadowMapSize,
		ShadowBlurRadius: cfg.ShadowBlurRadius,
	}

	results := batch.Run(batchCfg, jobs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
			if len(r.Missing) > 0 {
				fmt.Printf("  %s: missing textures %v\n", r.Name, r.Missing)
			}
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, len(jobs))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := min(len(errors), 20)
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := batch.WriteManifest(manifestPath, batchCfg, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
