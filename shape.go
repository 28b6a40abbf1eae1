package keystone

import (
	"fmt"
	"math"
)

// Offset is the displacement of one corner in stored (unscaled) units.
type Offset struct {
	X, Y float64
}

// WarpShape holds one offset per corner. It is a plain value: assignment
// copies it and == compares all eight scalars. The zero value is the
// identity shape, which renders the unwarped full-screen quad.
//
// WarpShape is never mutated after it has been handed to another goroutine;
// the helpers below return modified copies.
type WarpShape struct {
	TopLeft     Offset
	TopRight    Offset
	BottomLeft  Offset
	BottomRight Offset
}

// IdentityShape returns the shape with all offsets zero.
func IdentityShape() WarpShape {
	return WarpShape{}
}

// IsIdentity reports whether all eight offsets are zero.
func (s WarpShape) IsIdentity() bool {
	return s == WarpShape{}
}

// Corner returns the offset stored for c.
func (s WarpShape) Corner(c Corner) Offset {
	switch c {
	case TopRight:
		return s.TopRight
	case BottomLeft:
		return s.BottomLeft
	case BottomRight:
		return s.BottomRight
	default:
		return s.TopLeft
	}
}

// WithCorner returns a copy of s with the offset for c replaced.
func (s WarpShape) WithCorner(c Corner, o Offset) WarpShape {
	switch c {
	case TopLeft:
		s.TopLeft = o
	case TopRight:
		s.TopRight = o
	case BottomLeft:
		s.BottomLeft = o
	case BottomRight:
		s.BottomRight = o
	}
	return s
}

// Adjust returns a copy of s with (dx, dy) added to the offset for c.
func (s WarpShape) Adjust(c Corner, dx, dy float64) WarpShape {
	o := s.Corner(c)
	return s.WithCorner(c, Offset{X: o.X + dx, Y: o.Y + dy})
}

// ApproxEqual reports whether every offset of s is within eps of o. NaN
// offsets are never equal.
func (s WarpShape) ApproxEqual(o WarpShape, eps float64) bool {
	for _, c := range Corners {
		a, b := s.Corner(c), o.Corner(c)
		if !(math.Abs(a.X-b.X) <= eps) || !(math.Abs(a.Y-b.Y) <= eps) {
			return false
		}
	}
	return true
}

// String formats the shape for logs.
func (s WarpShape) String() string {
	return fmt.Sprintf("WarpShape{TL(%.3f,%.3f) TR(%.3f,%.3f) BL(%.3f,%.3f) BR(%.3f,%.3f)}",
		s.TopLeft.X, s.TopLeft.Y,
		s.TopRight.X, s.TopRight.Y,
		s.BottomLeft.X, s.BottomLeft.Y,
		s.BottomRight.X, s.BottomRight.Y)
}
