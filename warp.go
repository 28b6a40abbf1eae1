package keystone

// Displacer maps a normalized quad position (u, v), v measured top-to-bottom,
// to a displacement in normalized device coordinates.
type Displacer interface {
	Displacement(u, v float64) Vec2
}

// Warp is the bilinear corner warp: the four corner offsets are treated as
// the control points of a bilinear patch.
type Warp struct {
	Shape WarpShape
	Scale float64
}

// NewWarp returns a Warp over s using the standard WarpScale.
func NewWarp(s WarpShape) Warp {
	return Warp{Shape: s, Scale: WarpScale}
}

// Displacement interpolates the corner offsets along the top and bottom
// edges by u, then between the two edges by v, and applies the scale.
// At the four (u, v) extremes the result is exactly the scaled corner offset.
func (w Warp) Displacement(u, v float64) Vec2 {
	s := w.Shape
	topX := mix(s.TopLeft.X, s.TopRight.X, u)
	topY := mix(s.TopLeft.Y, s.TopRight.Y, u)
	bottomX := mix(s.BottomLeft.X, s.BottomRight.X, u)
	bottomY := mix(s.BottomLeft.Y, s.BottomRight.Y, u)
	return Vec2{
		X: mix(topX, bottomX, v) * w.Scale,
		Y: mix(topY, bottomY, v) * w.Scale,
	}
}

// Position returns the warped NDC position of quad point (u, v).
func (w Warp) Position(u, v float64) Vec2 {
	return WarpedPosition(w, u, v)
}

// CornerPosition returns the warped NDC position of corner c.
func (w Warp) CornerPosition(c Corner) Vec2 {
	u, v := c.UV()
	return w.Position(u, v)
}

// WarpedPosition adds d's displacement at (u, v) to the base quad position.
func WarpedPosition(d Displacer, u, v float64) Vec2 {
	return BaseNDC(u, v).Add(d.Displacement(u, v))
}

// BaseNDC returns the unwarped full-screen quad position of (u, v):
// (0,0) is (-1, 1) and (1,1) is (1, -1).
func BaseNDC(u, v float64) Vec2 {
	return Vec2{X: mix(-1, 1, u), Y: mix(1, -1, v)}
}

// Viewport maps normalized device coordinates to pixels. Pixel Y grows
// downward, NDC Y grows upward.
type Viewport struct {
	Width, Height float64
}

// ToScreen converts an NDC point to pixel coordinates, first passing it
// through the projection matrix.
func (vp Viewport) ToScreen(projection Mat4, p Vec2) (x, y float64) {
	cx, cy := projection.Apply(p.X, p.Y)
	return (cx + 1) * 0.5 * vp.Width, (1 - cy) * 0.5 * vp.Height
}
