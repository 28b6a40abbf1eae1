package keystone

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Overlay geometry in normalized device coordinates.
const (
	MarkerSize         = 0.03
	SelectedMarkerGrow = 1.5
	HaloRadius         = 0.08
	HaloSegments       = 16
)

// Overlay line widths in pixels.
const (
	markerWidth         = 2
	selectedMarkerWidth = 4
	borderWidth         = 3
	haloWidth           = 2.5
)

// Segment is a line from A to B.
type Segment struct {
	A, B Vec2
}

// BorderSegments returns the outline of the warped quad, clockwise from the
// top-left corner.
func BorderSegments(w Warp) [4]Segment {
	tl := w.CornerPosition(TopLeft)
	tr := w.CornerPosition(TopRight)
	br := w.CornerPosition(BottomRight)
	bl := w.CornerPosition(BottomLeft)
	return [4]Segment{{tl, tr}, {tr, br}, {br, bl}, {bl, tl}}
}

// MarkerSegments returns the two strokes of a cross centred on c with arms
// of length size.
func MarkerSegments(c Vec2, size float64) [2]Segment {
	return [2]Segment{
		{Vec2{c.X - size, c.Y}, Vec2{c.X + size, c.Y}},
		{Vec2{c.X, c.Y - size}, Vec2{c.X, c.Y + size}},
	}
}

// HaloPoints returns a closed polygon approximating a circle: segments+1
// points with the last equal to the first.
func HaloPoints(c Vec2, radius float64, segments int) []Vec2 {
	pts := make([]Vec2, segments+1)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = Vec2{c.X + radius*math.Cos(a), c.Y + radius*math.Sin(a)}
	}
	pts[segments] = pts[0]
	return pts
}

// OverlayStyle holds overlay colors.
type OverlayStyle struct {
	Normal   Color
	Selected Color
	Border   Color
}

// DefaultOverlayStyle returns yellow markers, a cyan selection and a green
// border.
func DefaultOverlayStyle() OverlayStyle {
	return OverlayStyle{Normal: ColorYellow, Selected: ColorCyan, Border: ColorGreen}
}

// overlayPainter strokes overlay geometry given in NDC onto a screen image.
type overlayPainter struct {
	dst  *ebiten.Image
	vp   Viewport
	proj Mat4
}

func (p overlayPainter) line(s Segment, width float32, c Color) {
	x0, y0 := p.vp.ToScreen(p.proj, s.A)
	x1, y1 := p.vp.ToScreen(p.proj, s.B)
	vector.StrokeLine(p.dst, float32(x0), float32(y0), float32(x1), float32(y1), width, c.toRGBA(), true)
}

// drawOverlay draws border and markers for st. haloScale multiplies the halo
// radius; the HUD animates it.
func drawOverlay(dst *ebiten.Image, vp Viewport, proj Mat4, shape WarpShape, st OverlayState, style OverlayStyle, haloScale float64) {
	if !st.Markers {
		return
	}
	p := overlayPainter{dst: dst, vp: vp, proj: proj}
	w := NewWarp(shape)

	for _, s := range BorderSegments(w) {
		p.line(s, borderWidth, style.Border)
	}

	for _, c := range Corners {
		center := w.CornerPosition(c)
		if st.Emphasize && c == st.Selected {
			for _, s := range MarkerSegments(center, MarkerSize*SelectedMarkerGrow) {
				p.line(s, selectedMarkerWidth, style.Selected)
			}
			pts := HaloPoints(center, HaloRadius*haloScale, HaloSegments)
			for i := 1; i < len(pts); i++ {
				p.line(Segment{pts[i-1], pts[i]}, haloWidth, style.Selected)
			}
			continue
		}
		for _, s := range MarkerSegments(center, MarkerSize) {
			p.line(s, markerWidth, style.Normal)
		}
	}
}
