// Package session provides comparison session file handling and persistence.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"image-compare/internal/overlay"
	"image-compare/pkg/geometry"
)

// Layer records one overlay slot: the image it holds and its blend opacity.
type Layer struct {
	ImagePath string  `json:"image"`
	Opacity   float64 `json:"opacity"`
}

// File represents a saved comparison session (.cmpsession). Image paths are
// stored relative to the session file so a session directory can be moved as
// a unit.
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`

	// Plain image view paths, in open order.
	ImagePaths []string `json:"images,omitempty"`

	// Sliding overlay layers, slot order. Empty when the session has no
	// overlay view.
	Layers []Layer `json:"layers,omitempty"`

	// Split state of the overlay view.
	SplitPos    geometry.Point2D `json:"split_pos"`
	SplitLocked bool             `json:"split_locked"`

	// Global toggles.
	SyncEnabled    bool `json:"sync_enabled"`
	SmoothSampling bool `json:"smooth_sampling"`
}

// New creates an empty session with default settings.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:     1,
		Name:        name,
		Created:     now,
		Modified:    now,
		SplitPos:    geometry.NewPoint2D(0.5, 0.5),
		SyncEnabled: true,
	}
}

// Load loads a session from a .cmpsession file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Layers) > overlay.NumSlots {
		return nil, fmt.Errorf("session: %d layers exceeds the %d-slot overlay", len(f.Layers), overlay.NumSlots)
	}
	return &f, nil
}

// Save saves the session to a file.
func (f *File) Save(path string) error {
	f.Modified = time.Now()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// AddImage records a plain image view path, relative to the session file.
func (f *File) AddImage(sessionPath, imagePath string) {
	f.ImagePaths = append(f.ImagePaths, relativize(sessionPath, imagePath))
	f.Modified = time.Now()
}

// SetLayers records the overlay layers, relative to the session file.
func (f *File) SetLayers(sessionPath string, layers []Layer) {
	f.Layers = make([]Layer, len(layers))
	for i, l := range layers {
		f.Layers[i] = Layer{
			ImagePath: relativize(sessionPath, l.ImagePath),
			Opacity:   l.Opacity,
		}
	}
	f.Modified = time.Now()
}

// ImagePath returns the absolute path of the i-th plain image view.
func (f *File) ImagePath(sessionPath string, i int) string {
	if i < 0 || i >= len(f.ImagePaths) {
		return ""
	}
	return absolutize(sessionPath, f.ImagePaths[i])
}

// LayerPath returns the absolute path of the i-th overlay layer.
func (f *File) LayerPath(sessionPath string, i int) string {
	if i < 0 || i >= len(f.Layers) {
		return ""
	}
	return absolutize(sessionPath, f.Layers[i].ImagePath)
}

func relativize(sessionPath, imagePath string) string {
	rel, err := filepath.Rel(filepath.Dir(sessionPath), imagePath)
	if err != nil {
		return imagePath
	}
	return rel
}

func absolutize(sessionPath, imagePath string) string {
	if imagePath == "" || filepath.IsAbs(imagePath) {
		return imagePath
	}
	return filepath.Join(filepath.Dir(sessionPath), imagePath)
}
