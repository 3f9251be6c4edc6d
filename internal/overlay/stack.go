// Package overlay implements the sliding overlay: a stack of up to four
// co-registered rasters split into quadrants by a movable crosshair and
// blended with per-slot opacity.
package overlay

import (
	"errors"
	"fmt"

	"image-compare/internal/raster"
	"image-compare/pkg/colorutil"
)

// Slot indices. The base fills the top-left quadrant and backs every
// quadrant whose overlay slot is empty.
const (
	SlotBase = iota
	SlotTopRight
	SlotBottomRight
	SlotBottomLeft

	NumSlots = 4
)

var (
	// ErrRegistrationMismatch is returned when a raster's dimensions
	// disagree with the already-populated slots.
	ErrRegistrationMismatch = errors.New("overlay: raster dimensions do not match populated slots")

	// ErrBaseRequired is returned when an overlay slot is populated before
	// the base slot.
	ErrBaseRequired = errors.New("overlay: base slot must be populated first")

	// ErrNotReady is returned when compositing is requested with fewer than
	// two populated slots.
	ErrNotReady = errors.New("overlay: need a base and at least one overlay to composite")
)

type slot struct {
	raster  *raster.Raster
	opacity float64
}

// Stack holds the rasters and opacities of one sliding overlay. All
// populated slots share identical pixel dimensions; every mutating
// operation either fully succeeds or leaves the stack unchanged.
type Stack struct {
	slots [NumSlots]slot
}

// NewStack creates an empty stack. All opacities start fully opaque.
func NewStack() *Stack {
	s := &Stack{}
	for i := range s.slots {
		s.slots[i].opacity = 1.0
	}
	return s
}

// SetSlot stores a raster in the given slot. The base must be populated
// first, and the raster's dimensions must match every populated slot.
func (s *Stack) SetSlot(index int, r *raster.Raster) error {
	if index < 0 || index >= NumSlots {
		return fmt.Errorf("overlay: slot index %d out of range", index)
	}
	if r == nil {
		return fmt.Errorf("overlay: nil raster for slot %d", index)
	}
	if index != SlotBase && s.slots[SlotBase].raster == nil {
		return ErrBaseRequired
	}
	for i := range s.slots {
		if s.slots[i].raster != nil && !s.slots[i].raster.SameSize(r) {
			return fmt.Errorf("%w: slot %d is %dx%d, got %dx%d", ErrRegistrationMismatch,
				i, s.slots[i].raster.Width(), s.slots[i].raster.Height(), r.Width(), r.Height())
		}
	}
	s.slots[index].raster = r
	return nil
}

// ClearSlot removes the raster from a slot. Clearing the base also clears
// every overlay slot, since the registration reference is gone.
func (s *Stack) ClearSlot(index int) {
	if index < 0 || index >= NumSlots {
		return
	}
	s.slots[index].raster = nil
	if index == SlotBase {
		for i := SlotBase + 1; i < NumSlots; i++ {
			s.slots[i].raster = nil
		}
	}
}

// SetOpacity sets a slot's blend opacity, clamped to [0, 1]. Empty slots and
// the base slot (always fully opaque) are left untouched.
func (s *Stack) SetOpacity(index int, value float64) {
	if index <= SlotBase || index >= NumSlots {
		return
	}
	if s.slots[index].raster == nil {
		return
	}
	s.slots[index].opacity = colorutil.Clamp(value, 0, 1)
}

// Opacity returns a slot's opacity. The base always reports 1.
func (s *Stack) Opacity(index int) float64 {
	if index < 0 || index >= NumSlots {
		return 0
	}
	if index == SlotBase {
		return 1.0
	}
	return s.slots[index].opacity
}

// Raster returns the raster in a slot, or nil if the slot is empty.
func (s *Stack) Raster(index int) *raster.Raster {
	if index < 0 || index >= NumSlots {
		return nil
	}
	return s.slots[index].raster
}

// PopulatedCount returns the number of populated slots.
func (s *Stack) PopulatedCount() int {
	n := 0
	for i := range s.slots {
		if s.slots[i].raster != nil {
			n++
		}
	}
	return n
}

// Ready reports whether the stack can be composited: a base plus at least
// one overlay.
func (s *Stack) Ready() bool {
	return s.slots[SlotBase].raster != nil && s.PopulatedCount() >= 2
}

// Dimensions returns the shared pixel dimensions of the populated slots.
// ok is false when the stack is empty.
func (s *Stack) Dimensions() (w, h int, ok bool) {
	for i := range s.slots {
		if s.slots[i].raster != nil {
			return s.slots[i].raster.Width(), s.slots[i].raster.Height(), true
		}
	}
	return 0, 0, false
}
