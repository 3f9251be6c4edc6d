package viewsync

import (
	"errors"
	"math"
	"testing"

	"image-compare/internal/transform"
	"image-compare/internal/view"
	"image-compare/pkg/geometry"
)

const eps = 1e-9

func approxEq(a, b float64) bool {
	return math.Abs(a-b) < eps
}

// footprint returns scale/adjust, the quantity the group keeps equal
// across members.
func footprint(t *testing.T, g *Group, id view.ID, st *transform.State) float64 {
	t.Helper()
	adj, ok := g.Adjust(id)
	if !ok {
		t.Fatalf("view %d is not a member", id)
	}
	return st.Scale() / adj
}

func TestAddMemberSetsAdjustFromLongerSide(t *testing.T) {
	g := NewGroup(nil)

	a := transform.New(800, 600)
	if err := g.AddMember(1, a, 1000, 1000); err != nil {
		t.Fatal(err)
	}
	b := transform.New(800, 600)
	if err := g.AddMember(2, b, 500, 250); err != nil {
		t.Fatal(err)
	}
	c := transform.New(800, 600)
	if err := g.AddMember(3, c, 250, 2000); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		id   view.ID
		want float64
	}{
		{1, 1.0},
		{2, 2.0}, // 1000 / 500
		{3, 0.5}, // 1000 / 2000
	}
	for _, tc := range tests {
		got, ok := g.Adjust(tc.id)
		if !ok || !approxEq(got, tc.want) {
			t.Errorf("Adjust(%d) = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestAddMemberValidation(t *testing.T) {
	g := NewGroup(nil)
	st := transform.New(800, 600)

	if err := g.AddMember(1, nil, 100, 100); err == nil {
		t.Error("nil transform accepted")
	}
	if err := g.AddMember(1, st, 0, 100); err == nil {
		t.Error("zero width accepted")
	}
	if err := g.AddMember(1, st, 100, 100); err != nil {
		t.Fatal(err)
	}
	if err := g.AddMember(1, transform.New(800, 600), 100, 100); err == nil {
		t.Error("duplicate member accepted")
	}
	if g.Len() != 1 {
		t.Errorf("Len = %d, want 1", g.Len())
	}
}

func TestAddMemberSnapsScale(t *testing.T) {
	g := NewGroup(nil)

	a := transform.New(800, 600)
	a.SetScale(0.6)
	if err := g.AddMember(1, a, 1000, 1000); err != nil {
		t.Fatal(err)
	}

	// A half-resolution image joining must double its scale to keep the
	// physical footprint identical.
	b := transform.New(800, 600)
	if err := g.AddMember(2, b, 500, 500); err != nil {
		t.Fatal(err)
	}
	if !approxEq(b.Scale(), 1.2) {
		t.Errorf("joined scale = %v, want 1.2", b.Scale())
	}
	if !approxEq(footprint(t, g, 1, a), footprint(t, g, 2, b)) {
		t.Error("footprint invariant broken at join")
	}
}

func TestAddMemberDoesNotSnapWhenDisabled(t *testing.T) {
	g := NewGroup(nil)
	g.Disable()

	a := transform.New(800, 600)
	a.SetScale(0.6)
	if err := g.AddMember(1, a, 1000, 1000); err != nil {
		t.Fatal(err)
	}
	b := transform.New(800, 600)
	if err := g.AddMember(2, b, 500, 500); err != nil {
		t.Fatal(err)
	}
	if !approxEq(b.Scale(), 1.0) {
		t.Errorf("scale snapped to %v while sync disabled", b.Scale())
	}
}

func TestZoomPreservesFootprintAcrossResolutions(t *testing.T) {
	g := NewGroup(nil)

	a := transform.New(800, 600)
	a.FitAndCenter(geometry.NewSize(1000, 1000))
	if err := g.AddMember(1, a, 1000, 1000); err != nil {
		t.Fatal(err)
	}
	b := transform.New(800, 600)
	if err := g.AddMember(2, b, 500, 500); err != nil {
		t.Fatal(err)
	}

	if err := g.Zoom(1, 2.0, geometry.NewPoint2D(400, 300)); err != nil {
		t.Fatal(err)
	}

	// 1000px image fit into 600px viewport gives scale 0.6; after x2 the
	// full image is 1.2, and the half-resolution image must sit at 2.4.
	if !approxEq(a.Scale(), 1.2) {
		t.Errorf("sender scale = %v, want 1.2", a.Scale())
	}
	if !approxEq(b.Scale(), 2.4) {
		t.Errorf("receiver scale = %v, want 2.4", b.Scale())
	}
	if !approxEq(footprint(t, g, 1, a), footprint(t, g, 2, b)) {
		t.Error("footprint invariant broken after zoom")
	}
}

func TestZoomKeepsSameFeatureAnchored(t *testing.T) {
	g := NewGroup(nil)

	a := transform.New(800, 600)
	if err := g.AddMember(1, a, 1000, 1000); err != nil {
		t.Fatal(err)
	}
	b := transform.New(800, 600)
	if err := g.AddMember(2, b, 500, 500); err != nil {
		t.Fatal(err)
	}

	// Pixel (600, 400) in the full-resolution image corresponds to
	// (300, 200) in the half-resolution one.
	anchor := a.ImageToScreen(geometry.NewPoint2D(600, 400))
	before := b.ImageToScreen(geometry.NewPoint2D(300, 200))
	if err := g.Zoom(1, 1.25, anchor); err != nil {
		t.Fatal(err)
	}

	after := b.ImageToScreen(geometry.NewPoint2D(300, 200))
	if !approxEq(before.X, after.X) || !approxEq(before.Y, after.Y) {
		t.Errorf("feature drifted on receiver screen: %v -> %v", before, after)
	}
	if !approxEq(footprint(t, g, 1, a), footprint(t, g, 2, b)) {
		t.Error("footprint invariant broken")
	}
}

func TestPanFanOutSharesScreenDelta(t *testing.T) {
	g := NewGroup(nil)

	a := transform.New(800, 600)
	if err := g.AddMember(1, a, 1000, 1000); err != nil {
		t.Fatal(err)
	}
	b := transform.New(800, 600)
	if err := g.AddMember(2, b, 500, 500); err != nil {
		t.Fatal(err)
	}

	if err := g.Pan(1, geometry.NewPoint2D(100, 40)); err != nil {
		t.Fatal(err)
	}

	// a at scale 1: 100 image px; b was snapped to scale 2: 50 image px.
	if !approxEq(a.Offset().X, 100) || !approxEq(a.Offset().Y, 40) {
		t.Errorf("sender offset = %v", a.Offset())
	}
	if !approxEq(b.Offset().X, 50) || !approxEq(b.Offset().Y, 20) {
		t.Errorf("receiver offset = %v", b.Offset())
	}
}

func TestDisabledGroupAppliesOnlyToSender(t *testing.T) {
	g := NewGroup(nil)

	a := transform.New(800, 600)
	b := transform.New(800, 600)
	if err := g.AddMember(1, a, 1000, 1000); err != nil {
		t.Fatal(err)
	}
	if err := g.AddMember(2, b, 1000, 1000); err != nil {
		t.Fatal(err)
	}
	g.Disable()

	if err := g.Pan(1, geometry.NewPoint2D(30, 0)); err != nil {
		t.Fatal(err)
	}
	if err := g.Zoom(1, 2.0, geometry.NewPoint2D(0, 0)); err != nil {
		t.Fatal(err)
	}

	if approxEq(a.Offset().X, 0) || !approxEq(a.Scale(), 2.0) {
		t.Errorf("sender not updated: offset %v scale %v", a.Offset(), a.Scale())
	}
	if !approxEq(b.Offset().X, 0) || !approxEq(b.Scale(), 1.0) {
		t.Errorf("non-sender updated while disabled: offset %v scale %v", b.Offset(), b.Scale())
	}
}

func TestEnableSnapsOnlyDeviatingMembers(t *testing.T) {
	g := NewGroup(nil)

	a := transform.New(800, 600)
	b := transform.New(800, 600)
	c := transform.New(800, 600)
	if err := g.AddMember(1, a, 1000, 1000); err != nil {
		t.Fatal(err)
	}
	if err := g.AddMember(2, b, 1000, 1000); err != nil {
		t.Fatal(err)
	}
	if err := g.AddMember(3, c, 500, 500); err != nil {
		t.Fatal(err)
	}

	g.Disable()
	b.SetScale(5.0)

	if err := g.Enable(1); err != nil {
		t.Fatal(err)
	}
	if !g.Enabled() {
		t.Fatal("group not enabled")
	}

	if !approxEq(b.Scale(), 1.0) {
		t.Errorf("deviating member scale = %v, want snapped to 1", b.Scale())
	}
	// c already satisfied the invariant; its state must be untouched.
	if !approxEq(c.Scale(), 2.0) {
		t.Errorf("compliant member scale changed to %v", c.Scale())
	}
}

func TestStaleMembersSkippedAndPruned(t *testing.T) {
	g := NewGroup(nil)

	a := transform.New(800, 600)
	b := transform.New(800, 600)
	if err := g.AddMember(1, a, 1000, 1000); err != nil {
		t.Fatal(err)
	}
	if err := g.AddMember(2, b, 1000, 1000); err != nil {
		t.Fatal(err)
	}
	g.Detach(2)

	err := g.Pan(1, geometry.NewPoint2D(10, 0))
	if !errors.Is(err, ErrStaleView) {
		t.Errorf("Pan error = %v, want ErrStaleView", err)
	}
	// The sender was still updated, and the stale member was pruned.
	if !approxEq(a.Offset().X, 10) {
		t.Errorf("sender offset = %v", a.Offset())
	}
	if g.Contains(2) {
		t.Error("stale member not pruned")
	}

	// A gesture originating from a stale or unknown view fails outright.
	if err := g.Zoom(99, 2.0, geometry.NewPoint2D(0, 0)); !errors.Is(err, ErrStaleView) {
		t.Errorf("Zoom from unknown view error = %v, want ErrStaleView", err)
	}
}

func TestRemove(t *testing.T) {
	g := NewGroup(nil)
	a := transform.New(800, 600)
	if err := g.AddMember(1, a, 100, 100); err != nil {
		t.Fatal(err)
	}
	g.Remove(1)
	g.Remove(99) // unknown ids are ignored
	if g.Len() != 0 || g.Contains(1) {
		t.Error("member not removed")
	}
}

func TestInvariantSurvivesScaleLimits(t *testing.T) {
	g := NewGroup(nil)

	a := transform.New(800, 600)
	a.FitAndCenter(geometry.NewSize(1000, 1000))
	if err := g.AddMember(1, a, 1000, 1000); err != nil {
		t.Fatal(err)
	}
	b := transform.New(800, 600)
	if err := g.AddMember(2, b, 500, 500); err != nil {
		t.Fatal(err)
	}

	// The half-resolution member runs at twice the sender's scale, so it
	// reaches the upper bound first. The shared factor must stop there
	// for both members; a one-sided clamp would break the ratio and
	// zooming back out would never repair it.
	anchor := geometry.NewPoint2D(400, 300)
	for i := 0; i < 40; i++ {
		if err := g.Zoom(1, 1.5, anchor); err != nil {
			t.Fatal(err)
		}
	}
	if b.Scale() > transform.MaxScale+eps {
		t.Errorf("receiver scale %v exceeds MaxScale", b.Scale())
	}
	if !approxEq(footprint(t, g, 1, a), footprint(t, g, 2, b)) {
		t.Fatalf("invariant broken at upper bound: %v vs %v",
			footprint(t, g, 1, a), footprint(t, g, 2, b))
	}

	for i := 0; i < 10; i++ {
		if err := g.Zoom(2, 1/1.5, anchor); err != nil {
			t.Fatal(err)
		}
	}
	if !approxEq(footprint(t, g, 1, a), footprint(t, g, 2, b)) {
		t.Fatalf("invariant broken after zooming back out: %v vs %v",
			footprint(t, g, 1, a), footprint(t, g, 2, b))
	}

	// The lower bound is hit first by the full-resolution member.
	for i := 0; i < 60; i++ {
		if err := g.Zoom(1, 1/1.5, anchor); err != nil {
			t.Fatal(err)
		}
	}
	if a.Scale() < transform.MinScale-eps {
		t.Errorf("sender scale %v fell below MinScale", a.Scale())
	}
	if !approxEq(footprint(t, g, 1, a), footprint(t, g, 2, b)) {
		t.Fatalf("invariant broken at lower bound: %v vs %v",
			footprint(t, g, 1, a), footprint(t, g, 2, b))
	}
}

func TestInvariantSurvivesGestureSequence(t *testing.T) {
	g := NewGroup(nil)

	a := transform.New(800, 600)
	a.FitAndCenter(geometry.NewSize(1000, 750))
	if err := g.AddMember(1, a, 1000, 750); err != nil {
		t.Fatal(err)
	}
	b := transform.New(640, 480)
	if err := g.AddMember(2, b, 400, 300); err != nil {
		t.Fatal(err)
	}

	gestures := []func() error{
		func() error { return g.Zoom(1, 1.25, geometry.NewPoint2D(100, 100)) },
		func() error { return g.Pan(2, geometry.NewPoint2D(-30, 55)) },
		func() error { return g.Zoom(2, 0.8, geometry.NewPoint2D(320, 240)) },
		func() error { return g.Zoom(1, 1.25, geometry.NewPoint2D(700, 12)) },
		func() error { return g.Pan(1, geometry.NewPoint2D(4, -4)) },
	}
	for i, gesture := range gestures {
		if err := gesture(); err != nil {
			t.Fatalf("gesture %d: %v", i, err)
		}
		fa := footprint(t, g, 1, a)
		fb := footprint(t, g, 2, b)
		if math.Abs(fa-fb)/fb > scaleTolerance {
			t.Fatalf("gesture %d broke invariant: %v vs %v", i, fa, fb)
		}
	}
}
