// Command compose renders a sliding overlay composite to a PNG without
// opening any windows. Useful for scripting comparisons and for checking
// overlay registration from the command line.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"strconv"
	"strings"

	"image-compare/internal/analyze"
	"image-compare/internal/overlay"
	"image-compare/internal/raster"
	"image-compare/internal/transform"
	"image-compare/pkg/geometry"
)

func main() {
	out := flag.String("o", "composite.png", "Output PNG path")
	splitArg := flag.String("split", "0.5,0.5", "Split point as x,y in [0,1]")
	opacityArg := flag.String("opacity", "", "Comma-separated overlay opacities (slots 1-3)")
	width := flag.Int("width", 0, "Output width (default: image width)")
	height := flag.Int("height", 0, "Output height (default: image height)")
	smooth := flag.Bool("smooth", false, "Use interpolated sampling")
	diff := flag.Bool("diff", false, "Print per-channel difference stats between base and first overlay")
	flag.Parse()

	paths := flag.Args()
	if len(paths) < 2 || len(paths) > overlay.NumSlots {
		fmt.Fprintf(os.Stderr, "Usage: compose [flags] <base> <overlay1> [overlay2] [overlay3]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	stack := overlay.NewStack()
	for i, path := range paths {
		r, err := raster.Load(path)
		if err != nil {
			fatalf("loading %s: %v", path, err)
		}
		if err := stack.SetSlot(i, r); err != nil {
			fatalf("slot %d: %v", i, err)
		}
	}

	for i, s := range splitList(*opacityArg) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			fatalf("bad opacity %q: %v", s, err)
		}
		stack.SetOpacity(overlay.SlotTopRight+i, v)
	}

	split, err := parseSplit(*splitArg)
	if err != nil {
		fatalf("bad split: %v", err)
	}

	if *diff {
		stats, err := analyze.Difference(stack.Raster(overlay.SlotBase), stack.Raster(overlay.SlotTopRight))
		if err != nil {
			fatalf("diff: %v", err)
		}
		fmt.Printf("pixels=%d identical=%v meanAbs=%.3f/%.3f/%.3f/%.3f maxAbs=%.0f/%.0f/%.0f/%.0f\n",
			stats.Count, stats.Identical,
			stats.MeanAbs[0], stats.MeanAbs[1], stats.MeanAbs[2], stats.MeanAbs[3],
			stats.MaxAbs[0], stats.MaxAbs[1], stats.MaxAbs[2], stats.MaxAbs[3])
	}

	iw, ih, _ := stack.Dimensions()
	w, h := iw, ih
	if *width > 0 {
		w = *width
	}
	if *height > 0 {
		h = *height
	}

	st := transform.New(w, h)
	st.FitAndCenter(geometry.NewSize(float64(iw), float64(ih)))

	sampling := overlay.SamplingNearest
	if *smooth {
		sampling = overlay.SamplingBilinear
	}
	frame, err := overlay.NewCompositor(sampling).Render(stack, st, split, w, h)
	if err != nil {
		fatalf("render: %v", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		fatalf("creating %s: %v", *out, err)
	}
	defer f.Close()
	if err := png.Encode(f, frame); err != nil {
		fatalf("encoding: %v", err)
	}
	fmt.Printf("wrote %s (%dx%d)\n", *out, w, h)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func parseSplit(s string) (geometry.Point2D, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geometry.Point2D{}, fmt.Errorf("expected x,y got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geometry.Point2D{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geometry.Point2D{}, err
	}
	return geometry.NewPoint2D(x, y).ClampUnit(), nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
