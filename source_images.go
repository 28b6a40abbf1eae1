package keystone

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// ImageSequenceSource plays the still images of a directory in file name
// order. All frames are decoded up front.
type ImageSequenceSource struct {
	mu     sync.RWMutex
	frames []*image.RGBA
	paths  []string
}

// ImageSequenceOptions control decoding of an image directory.
type ImageSequenceOptions struct {
	// MaxWidth and MaxHeight bound the decoded size; larger images are scaled
	// down preserving aspect ratio. Zero disables the bound.
	MaxWidth, MaxHeight int
	// Workers bounds concurrent decodes. Zero means GOMAXPROCS.
	Workers int
}

// NewImageSequenceSource decodes every supported image in dir.
func NewImageSequenceSource(ctx context.Context, dir string, opts ImageSequenceOptions) (*ImageSequenceSource, error) {
	paths, err := listImages(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("image sequence %s: no images", dir)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	frames := make([]*image.RGBA, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := decodeImageFile(path)
			if err != nil {
				return err
			}
			frames[i] = fitRGBA(img, opts.MaxWidth, opts.MaxHeight)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("image sequence %s: %w", dir, err)
	}

	logFor("source").WithField("dir", dir).WithField("frames", len(frames)).Info("image sequence loaded")
	return &ImageSequenceSource{frames: frames, paths: paths}, nil
}

// Len implements FrameSource.
func (s *ImageSequenceSource) Len() int { return len(s.paths) }

// Frame implements FrameSource. It fails with ErrSourceClosed after Close.
func (s *ImageSequenceSource) Frame(i int) (*image.RGBA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.frames == nil {
		return nil, ErrSourceClosed
	}
	if i < 0 || i >= len(s.frames) {
		return nil, fmt.Errorf("frame %d out of range [0,%d)", i, len(s.frames))
	}
	return s.frames[i], nil
}

// Path returns the file frame i was decoded from.
func (s *ImageSequenceSource) Path(i int) string { return s.paths[i] }

// Close implements FrameSource.
func (s *ImageSequenceSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = nil
	return nil
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// fitRGBA converts img to RGBA, scaling it down to fit maxW x maxH.
func fitRGBA(img image.Image, maxW, maxH int) *image.RGBA {
	b := img.Bounds()
	w, h := fitSize(b.Dx(), b.Dy(), maxW, maxH)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// fitSize returns w x h scaled down uniformly to fit within maxW x maxH.
// A zero bound is ignored. The result is at least 1x1.
func fitSize(w, h, maxW, maxH int) (int, int) {
	scale := 1.0
	if maxW > 0 && w > maxW {
		scale = min(scale, float64(maxW)/float64(w))
	}
	if maxH > 0 && h > maxH {
		scale = min(scale, float64(maxH)/float64(h))
	}
	if scale == 1 {
		return w, h
	}
	return max(1, int(float64(w)*scale+0.5)), max(1, int(float64(h)*scale+0.5))
}
