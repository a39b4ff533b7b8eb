// Package batch renders a directory of frame descriptions to WebP on a
// worker pool.
package batch

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"surface-shading/internal/postprocess"
	"surface-shading/internal/raster"
	"surface-shading/internal/scene"
	"surface-shading/internal/shading"
	"surface-shading/internal/texture"

	"github.com/HugoSmits86/nativewebp"
)

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir     string
	SceneEncoding string
	TexResolver   texture.Resolver

	Shading  shading.Config
	ToneMap  raster.ToneMap
	Exposure float64

	Width, Height int
	Supersample   int
	Workers       int

	ShadowMapSize    int
	ShadowBlurRadius int
}

// Job is one frame description file.
type Job struct {
	Name string
	Path string
}

// Result holds the outcome of processing one job.
type Result struct {
	Name    string
	Image   string // path relative to the output directory
	Success bool
	Error   string

	Lights   int
	Cascades int
	Missing  []string
	Elapsed  time.Duration
}

// FindJobs lists the *.json frame descriptions in dir, sorted by name.
func FindJobs(dir string) ([]Job, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("batch: read %s: %w", dir, err)
	}
	var jobs []Job
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		jobs = append(jobs, Job{
			Name: strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			Path: filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs, nil
}

// Run processes all jobs using a worker pool.
func Run(cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	if total == 0 {
		return results
	}
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.2f frames/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Frames share the CPU budget: few frames get more row workers each.
	workers := max(cfg.Workers, 1)
	frameWorkers := min(workers, total)
	rowCfg := cfg
	rowCfg.Workers = max(workers/frameWorkers, 1)

	jobChan := make(chan int, frameWorkers*2)
	var wg sync.WaitGroup

	for w := 0; w < frameWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(rowCfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

// Render loads, builds and renders one frame description at the final
// output size.
func Render(cfg Config, job Job) (*image.NRGBA, *scene.Built, error) {
	desc, err := scene.LoadDescription(job.Path, cfg.SceneEncoding)
	if err != nil {
		return nil, nil, err
	}

	ss := max(cfg.Supersample, 1)
	w, h := cfg.Width*ss, cfg.Height*ss
	if w <= 0 || h <= 0 {
		return nil, nil, fmt.Errorf("batch: %s: invalid size %dx%d", job.Name, w, h)
	}

	built, err := desc.Build(cfg.TexResolver, float64(w)/float64(h))
	if err != nil {
		return nil, nil, err
	}

	r := raster.New(shading.New(cfg.Shading), raster.Options{
		Width:       w,
		Height:      h,
		Workers:     cfg.Workers,
		ToneMap:     cfg.ToneMap,
		Exposure:    cfg.Exposure,
		AlphaCutoff: cfg.Shading.Material.AlphaCutoff,
	})
	if cfg.Shading.Shadows {
		r.RenderShadowMaps(built.Frame, built.Textures, raster.ShadowOptions{
			Size:       cfg.ShadowMapSize,
			Workers:    cfg.Workers,
			BlurRadius: cfg.ShadowBlurRadius,
		})
	}

	img := r.RenderImage(built.Frame)

	// Post-processing: supersample downsample
	if ss > 1 {
		img = postprocess.Downsample(img, cfg.Width, cfg.Height)
	}
	return img, built, nil
}

func processJob(cfg Config, job Job) Result {
	start := time.Now()
	res := Result{Name: job.Name, Image: job.Name + ".webp"}

	img, built, err := Render(cfg, job)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Lights = len(built.Frame.Lights)
	for _, l := range built.Frame.Lights {
		res.Cascades += l.CascadeCount()
	}
	res.Missing = built.Missing

	// Save as WebP
	outPath := filepath.Join(cfg.OutputDir, res.Image)
	if err := writeWebP(outPath, img); err != nil {
		res.Error = err.Error()
		return res
	}

	res.Success = true
	res.Elapsed = time.Since(start)
	return res
}

func writeWebP(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("batch: create dir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("batch: create %s: %w", path, err)
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("batch: webp encode %s: %w", path, err)
	}
	return f.Close()
}
