package analyze

import (
	"image"
	"image/color"
	"math"
	"testing"

	"image-compare/internal/raster"
)

func buildRaster(t *testing.T, w, h int, fill func(x, y int) color.NRGBA) *raster.Raster {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, fill(x, y))
		}
	}
	r, err := raster.New(img)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestPixel(t *testing.T) {
	r := buildRaster(t, 3, 3, func(x, y int) color.NRGBA {
		return color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), A: 255}
	})

	p := Pixel(r, 2, 1)
	if !p.Inside || p.R != 20 || p.G != 10 || p.A != 255 {
		t.Errorf("Pixel(2,1) = %+v", p)
	}
	if got := p.String(); got != "(2, 1) R=20 G=10 B=0 A=255" {
		t.Errorf("String() = %q", got)
	}

	out := Pixel(r, -1, 5)
	if out.Inside {
		t.Error("out-of-bounds readout reports inside")
	}
	if got := out.String(); got != "(-1, 5) outside image" {
		t.Errorf("String() = %q", got)
	}
}

func TestRegion(t *testing.T) {
	// Left column 100, right column 200.
	r := buildRaster(t, 2, 2, func(x, y int) color.NRGBA {
		return color.NRGBA{R: uint8(100 + x*100), A: 255}
	})

	stats, err := Region(r, image.Rect(0, 0, 2, 2))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Count != 4 {
		t.Errorf("Count = %d, want 4", stats.Count)
	}
	if stats.Mean[0] != 150 {
		t.Errorf("mean R = %v, want 150", stats.Mean[0])
	}
	// Sample standard deviation of {100, 200, 100, 200}.
	want := math.Sqrt(10000.0 / 3.0)
	if math.Abs(stats.StdDev[0]-want) > 1e-9 {
		t.Errorf("stddev R = %v, want %v", stats.StdDev[0], want)
	}
	if stats.Mean[3] != 255 || stats.StdDev[3] != 0 {
		t.Errorf("alpha stats = %v / %v, want 255 / 0", stats.Mean[3], stats.StdDev[3])
	}
}

func TestRegionClipsToRaster(t *testing.T) {
	r := buildRaster(t, 4, 4, func(x, y int) color.NRGBA {
		return color.NRGBA{R: 10, A: 255}
	})

	stats, err := Region(r, image.Rect(2, 2, 100, 100))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Count != 4 {
		t.Errorf("clipped Count = %d, want 4", stats.Count)
	}

	if _, err := Region(r, image.Rect(50, 50, 60, 60)); err == nil {
		t.Error("disjoint region accepted")
	}
}

func TestDifference(t *testing.T) {
	a := buildRaster(t, 2, 2, func(x, y int) color.NRGBA {
		return color.NRGBA{R: 100, A: 255}
	})
	b := buildRaster(t, 2, 2, func(x, y int) color.NRGBA {
		if x == 0 && y == 0 {
			return color.NRGBA{R: 140, A: 255}
		}
		return color.NRGBA{R: 100, A: 255}
	})

	stats, err := Difference(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Identical {
		t.Error("differing rasters reported identical")
	}
	if stats.MaxAbs[0] != 40 {
		t.Errorf("max abs R = %v, want 40", stats.MaxAbs[0])
	}
	if stats.MeanAbs[0] != 10 {
		t.Errorf("mean abs R = %v, want 10", stats.MeanAbs[0])
	}
	if stats.MaxAbs[1] != 0 || stats.MaxAbs[3] != 0 {
		t.Error("untouched channels report differences")
	}
}

func TestDifferenceIdentical(t *testing.T) {
	fill := func(x, y int) color.NRGBA {
		return color.NRGBA{R: uint8(x), G: uint8(y), A: 255}
	}
	a := buildRaster(t, 3, 3, fill)
	b := buildRaster(t, 3, 3, fill)

	stats, err := Difference(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !stats.Identical {
		t.Error("identical rasters not reported identical")
	}
	if stats.MeanAbs != ([4]float64{}) || stats.MaxAbs != ([4]float64{}) {
		t.Errorf("nonzero stats for identical rasters: %+v", stats)
	}
}

func TestDifferenceSizeMismatch(t *testing.T) {
	a := buildRaster(t, 2, 2, func(x, y int) color.NRGBA { return color.NRGBA{A: 255} })
	b := buildRaster(t, 2, 3, func(x, y int) color.NRGBA { return color.NRGBA{A: 255} })
	if _, err := Difference(a, b); err == nil {
		t.Error("size mismatch accepted")
	}
}
