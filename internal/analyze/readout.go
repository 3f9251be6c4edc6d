// Package analyze computes pixel and region readouts shown while comparing
// registered rasters.
package analyze

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/stat"

	"image-compare/internal/raster"
)

// PixelReadout is the value of one raster pixel, as shown in the status
// readout while the cursor hovers a view.
type PixelReadout struct {
	X, Y       int
	R, G, B, A uint8
	Inside     bool
}

// Pixel samples a raster at integer image coordinates.
func Pixel(r *raster.Raster, x, y int) PixelReadout {
	inside := x >= 0 && x < r.Width() && y >= 0 && y < r.Height()
	c := r.At(x, y)
	return PixelReadout{X: x, Y: y, R: c.R, G: c.G, B: c.B, A: c.A, Inside: inside}
}

// String formats the readout the way the status bar displays it.
func (p PixelReadout) String() string {
	if !p.Inside {
		return fmt.Sprintf("(%d, %d) outside image", p.X, p.Y)
	}
	return fmt.Sprintf("(%d, %d) R=%d G=%d B=%d A=%d", p.X, p.Y, p.R, p.G, p.B, p.A)
}

// RegionStats holds per-channel statistics over a rectangular region.
// Channel order is R, G, B, A.
type RegionStats struct {
	Count  int
	Mean   [4]float64
	StdDev [4]float64
}

// Region computes per-channel mean and standard deviation over the
// intersection of rect with the raster bounds.
func Region(r *raster.Raster, rect image.Rectangle) (RegionStats, error) {
	bounds := image.Rect(0, 0, r.Width(), r.Height())
	rect = rect.Intersect(bounds)
	if rect.Empty() {
		return RegionStats{}, fmt.Errorf("analyze: region does not intersect the raster")
	}

	n := rect.Dx() * rect.Dy()
	samples := [4][]float64{}
	for ch := range samples {
		samples[ch] = make([]float64, 0, n)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			c := r.At(x, y)
			samples[0] = append(samples[0], float64(c.R))
			samples[1] = append(samples[1], float64(c.G))
			samples[2] = append(samples[2], float64(c.B))
			samples[3] = append(samples[3], float64(c.A))
		}
	}

	out := RegionStats{Count: n}
	for ch := range samples {
		out.Mean[ch] = stat.Mean(samples[ch], nil)
		out.StdDev[ch] = stat.StdDev(samples[ch], nil)
	}
	return out, nil
}

// DiffStats summarizes the per-pixel difference between two registered
// rasters.
type DiffStats struct {
	Count     int
	MeanAbs   [4]float64
	MaxAbs    [4]float64
	Identical bool
}

// Difference compares two rasters of identical dimensions channel by
// channel. Rasters of differing dimensions cannot be compared.
func Difference(a, b *raster.Raster) (DiffStats, error) {
	if !a.SameSize(b) {
		return DiffStats{}, fmt.Errorf("analyze: rasters differ in size (%dx%d vs %dx%d)",
			a.Width(), a.Height(), b.Width(), b.Height())
	}

	w, h := a.Size()
	out := DiffStats{Count: w * h, Identical: true}
	sums := [4]float64{}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ca := a.At(x, y)
			cb := b.At(x, y)
			d := [4]float64{
				absDiff(ca.R, cb.R),
				absDiff(ca.G, cb.G),
				absDiff(ca.B, cb.B),
				absDiff(ca.A, cb.A),
			}
			for ch, v := range d {
				sums[ch] += v
				if v > out.MaxAbs[ch] {
					out.MaxAbs[ch] = v
				}
				if v != 0 {
					out.Identical = false
				}
			}
		}
	}
	for ch := range sums {
		out.MeanAbs[ch] = sums[ch] / float64(out.Count)
	}
	return out, nil
}

func absDiff(a, b uint8) float64 {
	if a > b {
		return float64(a - b)
	}
	return float64(b - a)
}
