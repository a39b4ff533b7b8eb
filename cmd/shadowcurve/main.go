// Command shadowcurve prints moment shadow visibility against receiver depth
// for a synthetic filtered texel, to tune moment bias and light bleeding.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"surface-shading/internal/mathutil"
	"surface-shading/internal/shadow"
)

// occluder is one depth present in the filter footprint with its coverage.
type occluder struct {
	depth  float64
	weight float64
}

func main() {
	spec := flag.String("occluders", "0.3:0.5", "Comma-separated depth:coverage pairs; leftover coverage is the far plane")
	from := flag.Float64("from", 0, "First receiver depth")
	to := flag.Float64("to", 1, "Last receiver depth")
	steps := flag.Int("steps", 20, "Number of intervals between -from and -to")
	bias := flag.Float64("bias", shadow.DefaultMomentBias, "Moment bias")
	bleeding := flag.Float64("bleeding", shadow.DefaultLightBleedingReduction, "Light-bleeding reduction in [0,1)")
	depthBias := flag.Float64("depth-bias", 0, "Depth bias in the moment domain")
	flag.Parse()

	occluders, err := parseOccluders(*spec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *steps < 1 {
		fmt.Fprintln(os.Stderr, "Error: -steps must be at least 1")
		os.Exit(1)
	}

	cfg := shadow.DefaultConfig()
	cfg.MomentBias = *bias
	cfg.LightBleedingReduction = *bleeding
	cfg.DepthBias = *depthBias
	ev := shadow.NewEvaluator(cfg)

	q := filteredMoments(occluders)
	raw := shadow.NewEvaluator(shadow.Config{MomentBias: *bias, DepthBias: *depthBias})

	fmt.Printf("Occluders: %s  bias=%g  bleeding=%g\n", *spec, *bias, *bleeding)
	fmt.Printf("%8s  %8s  %8s  %s\n", "depth", "raw", "reduced", "")
	for i := 0; i <= *steps; i++ {
		d := mathutil.Lerp(*from, *to, float64(i)/float64(*steps))
		v := ev.MomentVisibility(q, d)
		fmt.Printf("%8.4f  %8.4f  %8.4f  %s\n", d, raw.MomentVisibility(q, d), v, strings.Repeat("#", int(v*40+0.5)))
	}
}

// parseOccluders reads "depth:coverage,..." pairs. A bare depth means full
// coverage.
func parseOccluders(spec string) ([]occluder, error) {
	var out []occluder
	total := 0.0
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		depthStr, weightStr, hasWeight := strings.Cut(part, ":")
		depth, err := strconv.ParseFloat(depthStr, 64)
		if err != nil {
			return nil, fmt.Errorf("occluder %q: %w", part, err)
		}
		weight := 1.0
		if hasWeight {
			if weight, err = strconv.ParseFloat(weightStr, 64); err != nil {
				return nil, fmt.Errorf("occluder %q: %w", part, err)
			}
		}
		if depth < 0 || depth > 1 || weight <= 0 {
			return nil, fmt.Errorf("occluder %q: depth must be in [0,1] and coverage positive", part)
		}
		total += weight
		out = append(out, occluder{depth, weight})
	}
	if total > 1+1e-9 {
		return nil, fmt.Errorf("total coverage %g exceeds 1", total)
	}
	if total < 1 {
		out = append(out, occluder{1, 1 - total})
	}
	return out, nil
}

// filteredMoments mixes the encoded moments of each occluder by coverage,
// as a box-filtered moment map texel would.
func filteredMoments(occluders []occluder) shadow.Moments {
	var q shadow.Moments
	for _, o := range occluders {
		q = q.Add(shadow.EncodeMoments(o.depth).Scale(o.weight))
	}
	return q
}
