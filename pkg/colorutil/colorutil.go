// Package colorutil provides shared color utilities for the viewer.
package colorutil

import (
	"image/color"
)

// Common interface colors.
var (
	Black       = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	White       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Background  = color.NRGBA{R: 32, G: 32, B: 32, A: 255}
	Crosshair   = color.NRGBA{R: 255, G: 255, B: 255, A: 96}
	Transparent = color.NRGBA{}
)

// Blend composites src over dst with the given blend factor in [0, 1].
// Channels are mixed independently in non-premultiplied space, alpha included.
func Blend(dst, src color.NRGBA, factor float64) color.NRGBA {
	if factor <= 0 {
		return dst
	}
	if factor >= 1 {
		return src
	}
	inv := 1 - factor
	return color.NRGBA{
		R: uint8(float64(src.R)*factor + float64(dst.R)*inv + 0.5),
		G: uint8(float64(src.G)*factor + float64(dst.G)*inv + 0.5),
		B: uint8(float64(src.B)*factor + float64(dst.B)*inv + 0.5),
		A: uint8(float64(src.A)*factor + float64(dst.A)*inv + 0.5),
	}
}

// Lerp linearly interpolates between two colors by t in [0, 1].
func Lerp(a, b color.NRGBA, t float64) color.NRGBA {
	return Blend(a, b, t)
}

// Clamp limits x to the [lo, hi] range.
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
