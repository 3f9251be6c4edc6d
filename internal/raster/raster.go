// Package raster provides immutable raster handles and image loading.
package raster

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Channels describes the channel layout of a raster.
type Channels int

const (
	ChannelsRGB Channels = iota
	ChannelsRGBA
)

func (c Channels) String() string {
	switch c {
	case ChannelsRGB:
		return "RGB"
	case ChannelsRGBA:
		return "RGBA"
	default:
		return "Unknown"
	}
}

// Raster is an immutable handle to decoded pixel data. It is safe to share
// by reference across any number of views; no caller may mutate the pixels.
type Raster struct {
	img      *image.NRGBA
	width    int
	height   int
	channels Channels
	path     string
}

// New wraps a decoded image in a Raster. The pixels are normalized to NRGBA
// so all downstream sampling works on one representation.
func New(img image.Image) (*Raster, error) {
	if img == nil {
		return nil, fmt.Errorf("raster: nil image")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("raster: degenerate dimensions %dx%d", b.Dx(), b.Dy())
	}

	channels := ChannelsRGBA
	if isOpaqueModel(img) {
		channels = ChannelsRGB
	}

	return &Raster{
		img:      imaging.Clone(img),
		width:    b.Dx(),
		height:   b.Dy(),
		channels: channels,
	}, nil
}

// isOpaqueModel reports whether the source image cannot carry alpha.
func isOpaqueModel(img image.Image) bool {
	switch img.(type) {
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		return true
	}
	return false
}

// Width returns the raster width in pixels.
func (r *Raster) Width() int {
	return r.width
}

// Height returns the raster height in pixels.
func (r *Raster) Height() int {
	return r.height
}

// Size returns the dimensions as a pair.
func (r *Raster) Size() (int, int) {
	return r.width, r.height
}

// Channels returns the channel layout detected at load time.
func (r *Raster) Channels() Channels {
	return r.channels
}

// Path returns the file path the raster was loaded from, if any.
func (r *Raster) Path() string {
	return r.path
}

// At returns the pixel at (x, y). Coordinates outside the raster bounds
// yield a fully transparent pixel.
func (r *Raster) At(x, y int) color.NRGBA {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return color.NRGBA{}
	}
	return r.img.NRGBAAt(x, y)
}

// SameSize reports whether two rasters share identical pixel dimensions.
func (r *Raster) SameSize(other *Raster) bool {
	return other != nil && r.width == other.width && r.height == other.height
}

// Image exposes the backing image for whole-frame operations. Callers must
// treat the returned image as read-only.
func (r *Raster) Image() *image.NRGBA {
	return r.img
}
