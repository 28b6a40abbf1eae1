package keystone

import (
	"math"
	"testing"
)

func TestZeroShapeIsIdentity(t *testing.T) {
	var s WarpShape
	if !s.IsIdentity() || s != IdentityShape() {
		t.Error("zero WarpShape should be the identity")
	}
}

func TestAdjustReturnsCopy(t *testing.T) {
	s := IdentityShape()
	adj := s.Adjust(BottomLeft, 0.05, -0.05)
	if !s.IsIdentity() {
		t.Error("Adjust modified its receiver")
	}
	if got := adj.Corner(BottomLeft); got != (Offset{X: 0.05, Y: -0.05}) {
		t.Errorf("BottomLeft = %v", got)
	}
	for _, c := range Corners {
		if c != BottomLeft && adj.Corner(c) != (Offset{}) {
			t.Errorf("corner %s changed to %v", c, adj.Corner(c))
		}
	}
}

func TestWithCornerRoundTrip(t *testing.T) {
	var s WarpShape
	for i, c := range Corners {
		s = s.WithCorner(c, Offset{X: float64(i), Y: -float64(i)})
	}
	for i, c := range Corners {
		if got := s.Corner(c); got != (Offset{X: float64(i), Y: -float64(i)}) {
			t.Errorf("corner %s = %v", c, got)
		}
	}
}

func TestApproxEqual(t *testing.T) {
	a := IdentityShape().Adjust(TopRight, 0.1+0.2, 0)
	b := IdentityShape().Adjust(TopRight, 0.3, 0)
	if !a.ApproxEqual(b, 1e-9) {
		t.Error("expected approximately equal")
	}
	if a.ApproxEqual(b.Adjust(TopRight, 0.01, 0), 1e-9) {
		t.Error("expected not equal")
	}
	n := IdentityShape().Adjust(TopLeft, math.NaN(), 0)
	if n.ApproxEqual(n, 1) {
		t.Error("NaN offsets never compare equal")
	}
}
