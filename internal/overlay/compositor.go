package overlay

import (
	"image"
	"image/color"
	"math"

	"image-compare/internal/raster"
	"image-compare/internal/transform"
	"image-compare/pkg/geometry"
)

// Sampling selects the pixel sampling policy used when rendering.
type Sampling int

const (
	// SamplingNearest keeps pixel edges crisp at high zoom.
	SamplingNearest Sampling = iota
	// SamplingBilinear interpolates between neighboring pixels.
	SamplingBilinear
)

func (s Sampling) String() string {
	switch s {
	case SamplingNearest:
		return "Nearest"
	case SamplingBilinear:
		return "Bilinear"
	default:
		return "Unknown"
	}
}

// Compositor produces the rendered raster for overlay and plain image views.
type Compositor struct {
	sampling Sampling
}

// NewCompositor creates a compositor with the given sampling policy.
func NewCompositor(sampling Sampling) *Compositor {
	return &Compositor{sampling: sampling}
}

// Sampling returns the current sampling policy.
func (c *Compositor) Sampling() Sampling {
	return c.sampling
}

// SetSampling changes the sampling policy for subsequent renders.
func (c *Compositor) SetSampling(s Sampling) {
	c.sampling = s
}

// Render composites one frame of a sliding overlay into a w x h raster.
// The viewport is partitioned into quadrants by the normalized split point:
// top-left always shows the base, the remaining quadrants show their overlay
// slot blended over the base by the slot opacity, falling back to the bare
// base when the slot is empty. Samples outside a raster contribute nothing.
func (c *Compositor) Render(stack *Stack, st *transform.State, split geometry.Point2D, w, h int) (*image.NRGBA, error) {
	if stack == nil || !stack.Ready() {
		return nil, ErrNotReady
	}
	if w <= 0 || h <= 0 {
		return nil, ErrNotReady
	}

	split = split.ClampUnit()
	splitX := split.X * float64(w)
	splitY := split.Y * float64(h)

	base := stack.Raster(SlotBase)
	out := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		fy := float64(y)
		for x := 0; x < w; x++ {
			fx := float64(x)

			slot := SlotBase
			switch {
			case fx < splitX && fy < splitY:
				slot = SlotBase
			case fx >= splitX && fy < splitY:
				slot = SlotTopRight
			case fx >= splitX && fy >= splitY:
				slot = SlotBottomRight
			default:
				slot = SlotBottomLeft
			}

			// Sample at the pixel center in image space.
			p := st.ScreenToImage(geometry.NewPoint2D(fx+0.5, fy+0.5))
			baseSample := c.sample(base, p)

			over := stack.Raster(slot)
			if slot == SlotBase || over == nil {
				out.SetNRGBA(x, y, baseSample)
				continue
			}

			overSample := c.sample(over, p)
			out.SetNRGBA(x, y, blendSample(baseSample, overSample, stack.Opacity(slot)))
		}
	}
	return out, nil
}

// RenderImage renders a single raster through a view transform into a
// w x h frame. Pixels outside the raster are fully transparent.
func (c *Compositor) RenderImage(r *raster.Raster, st *transform.State, w, h int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	if r == nil || w <= 0 || h <= 0 {
		return out
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := st.ScreenToImage(geometry.NewPoint2D(float64(x)+0.5, float64(y)+0.5))
			out.SetNRGBA(x, y, c.sample(r, p))
		}
	}
	return out
}

// blendSample mixes the overlay sample over the base sample. The blend
// factor is the slot opacity weighted by the overlay sample's own alpha, so
// transparent overlay pixels (including out-of-bounds samples) leave the
// base untouched. Channels mix independently in non-premultiplied space.
func blendSample(base, over color.NRGBA, opacity float64) color.NRGBA {
	factor := opacity * float64(over.A) / 255.0
	if factor <= 0 {
		return base
	}
	inv := 1 - factor
	return color.NRGBA{
		R: uint8(float64(over.R)*factor + float64(base.R)*inv + 0.5),
		G: uint8(float64(over.G)*factor + float64(base.G)*inv + 0.5),
		B: uint8(float64(over.B)*factor + float64(base.B)*inv + 0.5),
		A: uint8(float64(over.A)*factor + float64(base.A)*inv + 0.5),
	}
}

// sample reads one image-space position from a raster under the current
// sampling policy.
func (c *Compositor) sample(r *raster.Raster, p geometry.Point2D) color.NRGBA {
	if c.sampling == SamplingBilinear {
		return sampleBilinear(r, p)
	}
	return r.At(int(math.Floor(p.X)), int(math.Floor(p.Y)))
}

// sampleBilinear interpolates the four texels surrounding p. Neighbors
// outside the raster are treated as fully transparent.
func sampleBilinear(r *raster.Raster, p geometry.Point2D) color.NRGBA {
	px := p.X - 0.5
	py := p.Y - 0.5
	x0 := int(math.Floor(px))
	y0 := int(math.Floor(py))
	tx := px - float64(x0)
	ty := py - float64(y0)

	c00 := r.At(x0, y0)
	c10 := r.At(x0+1, y0)
	c01 := r.At(x0, y0+1)
	c11 := r.At(x0+1, y0+1)

	lerp := func(a, b uint8, t float64) float64 {
		return float64(a)*(1-t) + float64(b)*t
	}
	mix := func(f func(color.NRGBA) uint8) uint8 {
		top := lerp(f(c00), f(c10), tx)
		bottom := lerp(f(c01), f(c11), tx)
		return uint8(top*(1-ty) + bottom*ty + 0.5)
	}

	return color.NRGBA{
		R: mix(func(c color.NRGBA) uint8 { return c.R }),
		G: mix(func(c color.NRGBA) uint8 { return c.G }),
		B: mix(func(c color.NRGBA) uint8 { return c.B }),
		A: mix(func(c color.NRGBA) uint8 { return c.A }),
	}
}
