package geometry

import (
	"math"
	"testing"
)

func TestPointArithmetic(t *testing.T) {
	a := NewPoint2D(3, 4)
	b := NewPoint2D(1, 2)

	if got := a.Add(b); got != NewPoint2D(4, 6) {
		t.Errorf("Add = %v", got)
	}
	if got := a.Sub(b); got != NewPoint2D(2, 2) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Scale(2); got != NewPoint2D(6, 8) {
		t.Errorf("Scale = %v", got)
	}
	if got := a.Div(2); got != NewPoint2D(1.5, 2) {
		t.Errorf("Div = %v", got)
	}
	if got := a.Distance(NewPoint2D(0, 0)); got != 5 {
		t.Errorf("Distance = %v, want 5", got)
	}
}

func TestClampUnit(t *testing.T) {
	tests := []struct {
		in, want Point2D
	}{
		{NewPoint2D(0.5, 0.5), NewPoint2D(0.5, 0.5)},
		{NewPoint2D(-1, 2), NewPoint2D(0, 1)},
		{NewPoint2D(1, 0), NewPoint2D(1, 0)},
	}
	for _, tc := range tests {
		if got := tc.in.ClampUnit(); got != tc.want {
			t.Errorf("ClampUnit(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSize(t *testing.T) {
	s := NewSize(400, 300)
	if got := s.LongerSide(); got != 400 {
		t.Errorf("LongerSide = %v", got)
	}
	if got := s.AspectRatio(); math.Abs(got-4.0/3.0) > 1e-12 {
		t.Errorf("AspectRatio = %v", got)
	}
	if got := NewSize(10, 0).AspectRatio(); got != 0 {
		t.Errorf("degenerate AspectRatio = %v, want 0", got)
	}
}

func TestRect(t *testing.T) {
	r := NewRect(10, 20, 30, 40)
	if !r.Contains(NewPoint2D(10, 20)) || !r.Contains(NewPoint2D(40, 60)) {
		t.Error("boundary points not contained")
	}
	if r.Contains(NewPoint2D(9, 20)) || r.Contains(NewPoint2D(10, 61)) {
		t.Error("outside points contained")
	}
	if got := r.Center(); got != NewPoint2D(25, 40) {
		t.Errorf("Center = %v", got)
	}
	if got := r.BottomRight(); got != NewPoint2D(40, 60) {
		t.Errorf("BottomRight = %v", got)
	}
}
