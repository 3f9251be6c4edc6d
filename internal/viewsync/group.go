// Package viewsync keeps the transforms of a set of views consistent, so a
// zoom or pan gesture in one member is mirrored by every other member with
// the correct resolution-adjusted scale.
package viewsync

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"image-compare/internal/transform"
	"image-compare/internal/view"
	"image-compare/pkg/geometry"
)

// ErrStaleView is returned when an operation targets a view that has
// already closed. Callers may log it; it is never fatal to the group.
var ErrStaleView = errors.New("viewsync: operation targets a closed view")

// scaleTolerance is the relative deviation below which a member's scale is
// considered to already satisfy the footprint invariant.
const scaleTolerance = 1e-6

type member struct {
	state *transform.State
	// adjust is referenceDim / longerNativeDim, fixed when the member
	// joins. The footprint invariant holds when scale_i / adjust_i is
	// equal across members.
	adjust float64
}

// Group synchronizes pan and zoom across its member views. One physical
// image pixel occupies the same screen footprint in every member,
// regardless of each image's native resolution: scales are matched on the
// longer native dimension, the same rule FitAndCenter uses.
type Group struct {
	enabled bool
	// referenceDim is the longer native dimension of the first member.
	referenceDim float64
	members      map[view.ID]*member
	log          *zap.Logger
}

// NewGroup creates an empty, enabled sync group.
func NewGroup(log *zap.Logger) *Group {
	if log == nil {
		log = zap.NewNop()
	}
	return &Group{
		enabled: true,
		members: make(map[view.ID]*member),
		log:     log,
	}
}

// Enabled reports whether gestures propagate across members.
func (g *Group) Enabled() bool {
	return g.enabled
}

// Len returns the number of members.
func (g *Group) Len() int {
	return len(g.members)
}

// Contains reports whether a view is a member.
func (g *Group) Contains(id view.ID) bool {
	_, ok := g.members[id]
	return ok
}

// Adjust returns the member's join-time scale adjustment factor.
func (g *Group) Adjust(id view.ID) (float64, bool) {
	m, ok := g.members[id]
	if !ok {
		return 0, false
	}
	return m.adjust, true
}

// AddMember joins a view to the group. The first member's longer native
// dimension becomes the reference footprint; later members receive an
// adjustment factor relative to it and, while sync is enabled, have their
// scale snapped into the invariant.
func (g *Group) AddMember(id view.ID, st *transform.State, nativeW, nativeH int) error {
	if st == nil {
		return fmt.Errorf("viewsync: nil transform for view %d", id)
	}
	if nativeW <= 0 || nativeH <= 0 {
		return fmt.Errorf("viewsync: invalid native resolution %dx%d for view %d", nativeW, nativeH, id)
	}
	if _, ok := g.members[id]; ok {
		return fmt.Errorf("viewsync: view %d is already a member", id)
	}

	longer := geometry.NewSize(float64(nativeW), float64(nativeH)).LongerSide()
	if len(g.members) == 0 {
		g.referenceDim = longer
	}
	m := &member{state: st, adjust: g.referenceDim / longer}

	if g.enabled {
		if ref, ok := g.liveMember(id); ok {
			st.SetScale(ref.state.Scale() / ref.adjust * m.adjust)
		}
	}
	g.members[id] = m
	return nil
}

// Remove drops a view from the group. Unknown ids are ignored.
func (g *Group) Remove(id view.ID) {
	delete(g.members, id)
}

// Detach marks a member's view as closed without removing the membership
// entry. Subsequent propagation skips and prunes it.
func (g *Group) Detach(id view.ID) {
	if m, ok := g.members[id]; ok {
		m.state = nil
	}
}

// Pan applies a screen-space pan from one member to the whole group. Under
// the footprint invariant a screen delta is shared directly, with no
// per-member rescaling. Stale members are skipped, pruned, and reported in
// the aggregated error; the remaining members are always updated.
func (g *Group) Pan(fromID view.ID, deltaScreen geometry.Point2D) error {
	from, ok := g.members[fromID]
	if !ok || from.state == nil {
		return fmt.Errorf("%w: view %d", ErrStaleView, fromID)
	}
	from.state.Pan(deltaScreen)
	if !g.enabled {
		return nil
	}

	var errs error
	for id, m := range g.members {
		if id == fromID {
			continue
		}
		if m.state == nil {
			g.log.Debug("skipping closed view during pan fan-out", zap.Int("view", int(id)))
			errs = multierr.Append(errs, fmt.Errorf("%w: view %d", ErrStaleView, id))
			delete(g.members, id)
			continue
		}
		m.state.Pan(deltaScreen)
	}
	return errs
}

// Zoom applies a zoom gesture from one member to the whole group. Every
// member receives the same factor; the anchor is translated into each
// member's viewport so the same image feature stays fixed under each
// view's own content.
func (g *Group) Zoom(fromID view.ID, factor float64, anchorScreen geometry.Point2D) error {
	from, ok := g.members[fromID]
	if !ok || from.state == nil {
		return fmt.Errorf("%w: view %d", ErrStaleView, fromID)
	}
	if g.enabled {
		factor = g.boundedZoomFactor(factor)
	}
	anchorImage := from.state.ScreenToImage(anchorScreen)
	from.state.Zoom(factor, anchorScreen)
	if !g.enabled {
		return nil
	}

	var errs error
	for id, m := range g.members {
		if id == fromID {
			continue
		}
		if m.state == nil {
			g.log.Debug("skipping closed view during zoom fan-out", zap.Int("view", int(id)))
			errs = multierr.Append(errs, fmt.Errorf("%w: view %d", ErrStaleView, id))
			delete(g.members, id)
			continue
		}
		// The same content feature in this member's image space, then
		// back to its own viewport coordinates.
		featureImage := anchorImage.Scale(from.adjust / m.adjust)
		m.state.Zoom(factor, m.state.ImageToScreen(featureImage))
	}
	return errs
}

// Disable freezes all members; their transforms evolve independently until
// sync is re-enabled.
func (g *Group) Disable() {
	g.enabled = false
}

// Enable re-establishes the footprint invariant starting from the given
// member. Members whose scale already satisfies the invariant are left
// untouched; only deviating members are snapped.
func (g *Group) Enable(fromID view.ID) error {
	g.enabled = true
	from, ok := g.members[fromID]
	if !ok || from.state == nil {
		var live bool
		from, live = g.liveMember(0)
		if !live {
			return nil
		}
	}

	ref := from.state.Scale() / from.adjust
	var errs error
	for id, m := range g.members {
		if m == from {
			continue
		}
		if m.state == nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: view %d", ErrStaleView, id))
			delete(g.members, id)
			continue
		}
		target := ref * m.adjust
		if relDiff(m.state.Scale(), target) > scaleTolerance {
			m.state.SetScale(target)
		}
	}
	return errs
}

// boundedZoomFactor limits factor so that no live member's scale leaves
// [transform.MinScale, transform.MaxScale]. Members run at different
// scales under the footprint invariant, so letting each member clamp on
// its own would break the ratio between them for good: zooming back out
// applies the same factor everywhere and never undoes a one-sided clamp.
// Bounding the shared factor keeps the whole group inside the range.
func (g *Group) boundedZoomFactor(factor float64) float64 {
	lo, hi := 0.0, math.Inf(1)
	for _, m := range g.members {
		if m.state == nil {
			continue
		}
		s := m.state.Scale()
		if l := transform.MinScale / s; l > lo {
			lo = l
		}
		if h := transform.MaxScale / s; h < hi {
			hi = h
		}
	}
	if lo > hi {
		// Member scales already span more than the whole range; no
		// shared factor can satisfy everyone.
		return 1
	}
	if factor < lo {
		return lo
	}
	if factor > hi {
		return hi
	}
	return factor
}

// liveMember returns any member with a live transform, excluding the given
// id.
func (g *Group) liveMember(exclude view.ID) (*member, bool) {
	for id, m := range g.members {
		if id == exclude || m.state == nil {
			continue
		}
		return m, true
	}
	return nil, false
}

func relDiff(a, b float64) float64 {
	if b == 0 {
		return math.Abs(a - b)
	}
	return math.Abs((a - b) / b)
}
