package raster

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/tiff"
)

// Load decodes the image file at path into a Raster. This is the only place
// in the program that reads image files; everything else consumes Rasters.
func Load(path string) (*Raster, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	r, err := New(img)
	if err != nil {
		return nil, err
	}
	r.path = path
	return r, nil
}

// Thumbnail returns a small preview of the raster that fits within
// maxPx on the longer side, preserving aspect ratio.
func Thumbnail(r *Raster, maxPx int) *image.NRGBA {
	if maxPx <= 0 {
		maxPx = 128
	}
	return imaging.Fit(r.Image(), maxPx, maxPx, imaging.Box)
}

// SupportedFormats returns the list of supported image file extensions.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// FileFilter returns a file filter string for use in file dialogs.
func FileFilter() string {
	return "Image Files (*.tiff, *.tif, *.png, *.jpg, *.jpeg)"
}
