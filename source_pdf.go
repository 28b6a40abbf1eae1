package keystone

import (
	"fmt"
	"image"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// PDFSource presents the pages of a PDF as frames, rendered on demand.
type PDFSource struct {
	mu   sync.Mutex
	doc  *fitz.Document
	path string
	dpi  float64
	maxW int
	maxH int

	cache map[int]*image.RGBA
}

// NewPDFSource opens path. Pages are rasterized at dpi (zero means 96) and
// scaled to fit maxW x maxH.
func NewPDFSource(path string, dpi float64, maxW, maxH int) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	if dpi <= 0 {
		dpi = 96
	}
	logFor("source").WithField("path", path).WithField("pages", doc.NumPage()).Info("pdf opened")
	return &PDFSource{
		doc:   doc,
		path:  path,
		dpi:   dpi,
		maxW:  maxW,
		maxH:  maxH,
		cache: make(map[int]*image.RGBA),
	}, nil
}

// Len implements FrameSource.
func (s *PDFSource) Len() int {
	return s.doc.NumPage()
}

// Frame implements FrameSource. Rendered pages are cached.
func (s *PDFSource) Frame(i int) (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache == nil {
		return nil, ErrSourceClosed
	}
	if img, ok := s.cache[i]; ok {
		return img, nil
	}
	page, err := s.doc.ImageDPI(i, s.dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", i, err)
	}
	img := fitRGBA(page, s.maxW, s.maxH)
	s.cache[i] = img
	return img, nil
}

// Close implements FrameSource. Frame fails with ErrSourceClosed afterwards.
func (s *PDFSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		return nil
	}
	s.cache = nil
	return s.doc.Close()
}
