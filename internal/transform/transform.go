// Package transform maintains the mapping between image pixel space and
// screen space for a single view.
package transform

import (
	"math"

	"image-compare/pkg/geometry"
)

// Scale bounds. Repeated incremental zooms are clamped here so the scale
// can never overflow or collapse to zero.
const (
	MinScale = 0.01
	MaxScale = 100.0

	// ZoomStep is the scale factor applied per wheel notch.
	ZoomStep = 1.25

	// wheelNotch converts a raw wheel delta into notches.
	wheelNotch = 240.0
)

// State maps image pixel coordinates to screen coordinates for one view.
// Offset is the image-space point currently at the viewport's top-left
// corner; a pixel (ix, iy) lands on screen at ((ix-offset.x)*scale,
// (iy-offset.y)*scale). Scale is always positive.
type State struct {
	scale     float64
	offset    geometry.Point2D
	viewportW int
	viewportH int
}

// New creates a transform for a viewport of the given size at scale 1.
func New(viewportW, viewportH int) *State {
	if viewportW <= 0 {
		viewportW = 1
	}
	if viewportH <= 0 {
		viewportH = 1
	}
	return &State{
		scale:     1.0,
		viewportW: viewportW,
		viewportH: viewportH,
	}
}

// Scale returns the current scale factor.
func (s *State) Scale() float64 {
	return s.scale
}

// Offset returns the image-space point at the viewport top-left corner.
func (s *State) Offset() geometry.Point2D {
	return s.offset
}

// Viewport returns the viewport size in screen pixels.
func (s *State) Viewport() (int, int) {
	return s.viewportW, s.viewportH
}

// SetViewport updates the viewport size. Non-positive dimensions are ignored.
func (s *State) SetViewport(w, h int) {
	if w > 0 {
		s.viewportW = w
	}
	if h > 0 {
		s.viewportH = h
	}
}

// Clone returns an independent copy of the state.
func (s *State) Clone() *State {
	c := *s
	return &c
}

// Pan shifts the view by a screen-space delta. Panning always succeeds and
// composes additively: Pan(a) then Pan(b) equals Pan(a+b).
func (s *State) Pan(deltaScreen geometry.Point2D) {
	s.offset = s.offset.Add(deltaScreen.Div(s.scale))
}

// Zoom rescales the view by factor so that the image point under
// anchorScreen stays under anchorScreen. Non-finite or non-positive factors
// are ignored; the resulting scale is silently clamped to [MinScale, MaxScale].
func (s *State) Zoom(factor float64, anchorScreen geometry.Point2D) {
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor <= 0 {
		return
	}
	anchorImage := s.ScreenToImage(anchorScreen)
	s.setScaleAnchored(clampScale(s.scale*factor), anchorImage, anchorScreen)
}

// SetScale sets an absolute scale, keeping the image point at the viewport
// center fixed. Used for the actual-size shortcut and sync snapping.
func (s *State) SetScale(scale float64) {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return
	}
	center := geometry.NewPoint2D(float64(s.viewportW)/2, float64(s.viewportH)/2)
	anchorImage := s.ScreenToImage(center)
	s.setScaleAnchored(clampScale(scale), anchorImage, center)
}

// WheelZoom applies a zoom from mouse wheel notches anchored at the cursor.
// One notch scales by ZoomStep; fractional notches scale proportionally.
func (s *State) WheelZoom(notches float64, anchorScreen geometry.Point2D) {
	if notches == 0 {
		return
	}
	s.Zoom(math.Pow(ZoomStep, notches), anchorScreen)
}

// WheelNotches converts a raw wheel delta to notches.
func WheelNotches(delta float64) float64 {
	return delta / wheelNotch
}

// ActualSize shows the image at a 1:1 pixel mapping, keeping the viewport
// center fixed.
func (s *State) ActualSize() {
	s.SetScale(1.0)
}

// FitAndCenter sets the scale so the content's constrained dimension exactly
// fills the viewport, and centers the content. Deterministic for a given
// viewport and content size.
func (s *State) FitAndCenter(content geometry.Size) {
	if content.Width <= 0 || content.Height <= 0 {
		return
	}
	vw := float64(s.viewportW)
	vh := float64(s.viewportH)

	// When the viewport is wider than the content, height constrains the
	// fit; when narrower, width does.
	var scale float64
	if vw/vh > content.AspectRatio() {
		scale = vh / content.Height
	} else {
		scale = vw / content.Width
	}
	s.scale = clampScale(scale)
	s.centerOn(content)
}

// FitWidth scales so the content width exactly fills the viewport width.
func (s *State) FitWidth(content geometry.Size) {
	if content.Width <= 0 || content.Height <= 0 {
		return
	}
	s.scale = clampScale(float64(s.viewportW) / content.Width)
	s.centerOn(content)
}

// FitHeight scales so the content height exactly fills the viewport height.
func (s *State) FitHeight(content geometry.Size) {
	if content.Width <= 0 || content.Height <= 0 {
		return
	}
	s.scale = clampScale(float64(s.viewportH) / content.Height)
	s.centerOn(content)
}

// centerOn positions the offset so the content is centered in the viewport
// at the current scale.
func (s *State) centerOn(content geometry.Size) {
	s.offset = geometry.Point2D{
		X: (content.Width - float64(s.viewportW)/s.scale) / 2,
		Y: (content.Height - float64(s.viewportH)/s.scale) / 2,
	}
}

// setScaleAnchored applies a new scale while keeping anchorImage under
// anchorScreen.
func (s *State) setScaleAnchored(newScale float64, anchorImage, anchorScreen geometry.Point2D) {
	s.scale = newScale
	s.offset = anchorImage.Sub(anchorScreen.Div(newScale))
}

// ImageToScreen maps an image pixel coordinate to a screen coordinate.
func (s *State) ImageToScreen(p geometry.Point2D) geometry.Point2D {
	return p.Sub(s.offset).Scale(s.scale)
}

// ScreenToImage maps a screen coordinate to an image pixel coordinate.
func (s *State) ScreenToImage(p geometry.Point2D) geometry.Point2D {
	return s.offset.Add(p.Div(s.scale))
}

// VisibleRect returns the image-space rectangle currently shown by the
// viewport.
func (s *State) VisibleRect() geometry.Rect {
	return geometry.NewRect(
		s.offset.X,
		s.offset.Y,
		float64(s.viewportW)/s.scale,
		float64(s.viewportH)/s.scale,
	)
}

func clampScale(scale float64) float64 {
	if scale < MinScale {
		return MinScale
	}
	if scale > MaxScale {
		return MaxScale
	}
	return scale
}
