package keystone

// Corner identifies one corner of the projected quad.
type Corner uint8

// Corners in menu order.
const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

// NumCorners is the number of quad corners.
const NumCorners = 4

// Corners lists every corner in menu order.
var Corners = [NumCorners]Corner{TopLeft, TopRight, BottomLeft, BottomRight}

// Next returns the clockwise successor: TL → TR → BR → BL → TL.
func (c Corner) Next() Corner {
	switch c {
	case TopLeft:
		return TopRight
	case TopRight:
		return BottomRight
	case BottomRight:
		return BottomLeft
	default:
		return TopLeft
	}
}

// Prev returns the counter-clockwise predecessor, the inverse of Next.
func (c Corner) Prev() Corner {
	switch c {
	case TopLeft:
		return BottomLeft
	case BottomLeft:
		return BottomRight
	case BottomRight:
		return TopRight
	default:
		return TopLeft
	}
}

// UV returns the corner's normalized position in the quad, with v measured
// top-to-bottom.
func (c Corner) UV() (u, v float64) {
	switch c {
	case TopRight:
		return 1, 0
	case BottomLeft:
		return 0, 1
	case BottomRight:
		return 1, 1
	default:
		return 0, 0
	}
}

// String returns the corner's display name.
func (c Corner) String() string {
	switch c {
	case TopLeft:
		return "Top Left"
	case TopRight:
		return "Top Right"
	case BottomLeft:
		return "Bottom Left"
	case BottomRight:
		return "Bottom Right"
	default:
		return "Unknown"
	}
}
