package keystone

// EdgeShape is the older keystone model: one horizontal offset per corner
// name, scaled by WarpScale like WarpShape. It is kept only so records
// written in that format can still be read; the renderer always works with
// WarpShape.
//
// The edge model interpolated its offsets over NDC y from -1 (bottom) to 1
// (top) starting at TopLeft/TopRight, so the stored "top" values moved the
// bottom edge of the picture and the "bottom" values moved the top edge.
// EdgeWarp and ToWarpShape reproduce that placement.
type EdgeShape struct {
	TopLeft     float64
	TopRight    float64
	BottomLeft  float64
	BottomRight float64
}

// EdgeWarp displaces points horizontally the way the edge model did.
type EdgeWarp struct {
	Shape EdgeShape
}

// Displacement implements Displacer. v is measured top-to-bottom, so the
// top edge (v = 0) takes the Bottom* offsets.
func (w EdgeWarp) Displacement(u, v float64) Vec2 {
	left := mix(w.Shape.BottomLeft, w.Shape.TopLeft, v)
	right := mix(w.Shape.BottomRight, w.Shape.TopRight, v)
	return Vec2{X: mix(left, right, u) * WarpScale}
}

// ToWarpShape converts the edge model into the per-corner model. Both
// models are bilinear in (u, v) with the same scale, so the conversion is
// exact: the resulting Warp displaces every point by the same amount as
// the EdgeWarp.
func (e EdgeShape) ToWarpShape() WarpShape {
	return WarpShape{
		TopLeft:     Offset{X: e.BottomLeft},
		TopRight:    Offset{X: e.BottomRight},
		BottomLeft:  Offset{X: e.TopLeft},
		BottomRight: Offset{X: e.TopRight},
	}
}
