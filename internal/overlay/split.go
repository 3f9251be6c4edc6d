package overlay

import (
	"image-compare/pkg/geometry"
)

// SplitMode is the state of the crosshair that divides the overlay view.
type SplitMode int

const (
	// Following recomputes the split from every pointer move.
	Following SplitMode = iota
	// Locked freezes the split at its position when the lock was taken.
	Locked
)

func (m SplitMode) String() string {
	switch m {
	case Following:
		return "Following"
	case Locked:
		return "Locked"
	default:
		return "Unknown"
	}
}

// Split is the crosshair position within the viewport, as a normalized
// coordinate in [0,1] x [0,1]. A transient preview (hovering a corner
// shortcut) overrides the rendered position without touching the stored
// mode or position.
type Split struct {
	mode    SplitMode
	pos     geometry.Point2D
	preview *geometry.Point2D
}

// NewSplit creates a following split at the viewport center.
func NewSplit() *Split {
	return &Split{pos: geometry.NewPoint2D(0.5, 0.5)}
}

// Mode returns the current state.
func (s *Split) Mode() SplitMode {
	return s.mode
}

// Position returns the stored split position, ignoring any preview.
func (s *Split) Position() geometry.Point2D {
	return s.pos
}

/// Effective returns the position to render: the preview override when one
// is active, otherwise the stored position.
func (s *Split) Effective() geometry.Point2D {
	if s.preview != nil {
		return *s.preview
	}
	return s.pos
}

// PointerMoved updates the split from a pointer position normalized to the
// viewport. Ignored while locked. Coordinates are clamped to the unit square.
func (s *Split) PointerMoved(norm geometry.Point2D) {
	if s.mode == Locked {
		return
	}
	s.pos = norm.ClampUnit()
}

// Set forces the split position regardless of lock state.
func (s *Split) Set(norm geometry.Point2D) {
	s.pos = norm.ClampUnit()
}

// Lock freezes the split at its current position.
func (s *Split) Lock() {
	s.mode = Locked
}

// LockAt moves the split to norm and locks it there.
func (s *Split) LockAt(norm geometry.Point2D) {
	s.pos = norm.ClampUnit()
	s.mode = Locked
}

// Unlock returns the split to following the pointer.
func (s *Split) Unlock() {
	s.mode = Following
}

// ToggleLock flips between Following and Locked.
func (s *Split) ToggleLock() {
	if s.mode == Locked {
		s.mode = Following
	} else {
		s.mode = Locked
	}
}

// Preview temporarily overrides the rendered split, typically with a corner
// value to show a single layer in full. The stored mode and position are
// untouched.
func (s *Split) Preview(norm geometry.Point2D) {
	p := norm.ClampUnit()
	s.preview = &p
}

// EndPreview reverts to the stored position.
func (s *Split) EndPreview() {
	s.preview = nil
}

// Previewing reports whether a preview override is active.
func (s *Split) Previewing() bool {
	return s.preview != nil
}
