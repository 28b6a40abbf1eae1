package keystone

import (
	"fmt"
	"image"
	"image/color"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
)

// PatternSource is a single calibration card: a line grid with a centre
// cross, solid corner blocks and a QR code naming the card resolution.
// Straight grid lines make keystone error easy to judge on the wall.
type PatternSource struct {
	img *image.RGBA
}

// PatternOptions describe the calibration card.
type PatternOptions struct {
	Width, Height int
	// Cells is the number of grid cells across the shorter side. Zero
	// means 8.
	Cells int
	// Label is encoded in the QR code. Empty means the card size.
	Label string
}

var (
	patternBackground = color.RGBA{R: 16, G: 16, B: 16, A: 255}
	patternLine       = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	patternCorner     = color.RGBA{R: 0, G: 200, B: 80, A: 255}
)

// NewPatternSource renders the calibration card.
func NewPatternSource(opts PatternOptions) (*PatternSource, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("pattern size %dx%d: must be positive", opts.Width, opts.Height)
	}
	cells := opts.Cells
	if cells <= 0 {
		cells = 8
	}
	label := opts.Label
	if label == "" {
		label = fmt.Sprintf("keystone %dx%d", opts.Width, opts.Height)
	}

	w, h := opts.Width, opts.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(patternBackground), image.Point{}, draw.Src)

	cell := min(w, h) / cells
	if cell < 1 {
		cell = 1
	}
	for x := 0; x < w; x += cell {
		fillRect(img, image.Rect(x, 0, x+1, h), patternLine)
	}
	for y := 0; y < h; y += cell {
		fillRect(img, image.Rect(0, y, w, y+1), patternLine)
	}
	fillRect(img, image.Rect(w-1, 0, w, h), patternLine)
	fillRect(img, image.Rect(0, h-1, w, h), patternLine)

	// Centre cross, 3px thick.
	fillRect(img, image.Rect(w/2-1, 0, w/2+2, h), patternLine)
	fillRect(img, image.Rect(0, h/2-1, w, h/2+2), patternLine)

	block := max(cell/2, 1)
	fillRect(img, image.Rect(0, 0, block, block), patternCorner)
	fillRect(img, image.Rect(w-block, 0, w, block), patternCorner)
	fillRect(img, image.Rect(0, h-block, block, h), patternCorner)
	fillRect(img, image.Rect(w-block, h-block, w, h), patternCorner)

	q, err := qrcode.New(label, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("pattern qr code: %w", err)
	}
	size := min(w, h) / 4
	if size >= 21 {
		code := q.Image(size)
		at := image.Pt((w-size)/2, (h-size)/2)
		draw.Draw(img, image.Rectangle{Min: at, Max: at.Add(image.Pt(size, size))}, code, code.Bounds().Min, draw.Src)
	}

	return &PatternSource{img: img}, nil
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

// Len implements FrameSource.
func (s *PatternSource) Len() int { return 1 }

// Frame implements FrameSource.
func (s *PatternSource) Frame(i int) (*image.RGBA, error) {
	if i != 0 {
		return nil, fmt.Errorf("frame %d out of range [0,1)", i)
	}
	return s.img, nil
}

// Close implements FrameSource.
func (s *PatternSource) Close() error { return nil }
