package keystone

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource serves solid frames; frame bad fails to decode.
type stubSource struct {
	n   int
	bad int
}

func (s *stubSource) Len() int { return s.n }
func (s *stubSource) Frame(i int) (*image.RGBA, error) {
	if i == s.bad {
		return nil, errors.New("corrupt")
	}
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Pix[0] = uint8(i)
	return img, nil
}
func (s *stubSource) Close() error { return nil }

func TestPlayerPlaysOnceAndStops(t *testing.T) {
	surface := NewSurface()
	var submits atomic.Int32
	surface.SetOnFrameAvailable(func() { submits.Add(1) })

	p := NewPlayer(&stubSource{n: 3, bad: -1}, surface, PlayerConfig{FPS: 500})
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, int32(3), submits.Load())
	assert.Equal(t, 2, p.Index())
	f := surface.Latest()
	require.NotNil(t, f)
	assert.Equal(t, uint8(2), f.Image.Pix[0])
	assert.Equal(t, IdentityMat4(), f.Transform)
}

func TestPlayerSkipsBadFrames(t *testing.T) {
	surface := NewSurface()
	p := NewPlayer(&stubSource{n: 3, bad: 1}, surface, PlayerConfig{FPS: 500})
	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, uint64(2), surface.Latest().Seq)
}

func TestPlayerLoopStopsOnCancel(t *testing.T) {
	surface := NewSurface()
	p := NewPlayer(&stubSource{n: 2, bad: -1}, surface, PlayerConfig{FPS: 1000, Loop: true})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, surface.Latest().Seq, uint64(2), "looping source keeps submitting")
}

func TestPlayerPauseHoldsFrame(t *testing.T) {
	surface := NewSurface()
	p := NewPlayer(&stubSource{n: 5, bad: -1}, surface, PlayerConfig{FPS: 1000})
	p.Pause()
	assert.True(t, p.Paused())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Run(ctx), context.DeadlineExceeded)
	assert.Equal(t, uint64(1), surface.Latest().Seq, "only the first frame is shown while paused")

	assert.False(t, p.Toggle())
	assert.True(t, p.Toggle())
}

func TestPlayerEmptySource(t *testing.T) {
	p := NewPlayer(&stubSource{n: 0}, NewSurface(), PlayerConfig{})
	assert.ErrorIs(t, p.Run(context.Background()), ErrEmptySource)
}

func TestFitSize(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH, wantW, wantH int
	}{
		{100, 50, 0, 0, 100, 50},
		{100, 50, 200, 200, 100, 50},
		{400, 200, 200, 0, 200, 100},
		{400, 200, 1000, 50, 100, 50},
		{1000, 1, 10, 10, 10, 1},
	}
	for _, tt := range tests {
		w, h := fitSize(tt.w, tt.h, tt.maxW, tt.maxH)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fitSize(%d,%d,%d,%d) = %dx%d, want %dx%d", tt.w, tt.h, tt.maxW, tt.maxH, w, h, tt.wantW, tt.wantH)
		}
	}
}

func writeTestPNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestImageSequenceSource(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "b.png"), 8, 4, color.NRGBA{G: 255, A: 255})
	writeTestPNG(t, filepath.Join(dir, "a.png"), 40, 20, color.NRGBA{R: 255, A: 255})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o600))

	src, err := NewImageSequenceSource(context.Background(), dir, ImageSequenceOptions{MaxWidth: 20, Workers: 2})
	require.NoError(t, err)
	defer src.Close()

	require.Equal(t, 2, src.Len())
	assert.Equal(t, "a.png", filepath.Base(src.Path(0)))

	first, err := src.Frame(0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 10), first.Bounds())
	c := first.RGBAAt(10, 5)
	assert.GreaterOrEqual(t, c.R, uint8(250))
	assert.LessOrEqual(t, c.G, uint8(5))
	assert.GreaterOrEqual(t, c.A, uint8(250))

	second, err := src.Frame(1)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), second.Bounds())

	_, err = src.Frame(2)
	assert.Error(t, err)
}

func TestImageSequenceSourceClosed(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "a.png"), 4, 4, color.NRGBA{B: 255, A: 255})
	src, err := NewImageSequenceSource(context.Background(), dir, ImageSequenceOptions{})
	require.NoError(t, err)

	require.NoError(t, src.Close())
	_, err = src.Frame(0)
	assert.ErrorIs(t, err, ErrSourceClosed)
	assert.Equal(t, 1, src.Len())
}

func TestImageSequenceSourceErrors(t *testing.T) {
	_, err := NewImageSequenceSource(context.Background(), t.TempDir(), ImageSequenceOptions{})
	assert.Error(t, err, "empty directory")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not a png"), 0o600))
	_, err = NewImageSequenceSource(context.Background(), dir, ImageSequenceOptions{})
	assert.Error(t, err)
}

func TestPatternSource(t *testing.T) {
	src, err := NewPatternSource(PatternOptions{Width: 320, Height: 240})
	require.NoError(t, err)
	require.Equal(t, 1, src.Len())

	img, err := src.Frame(0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 320, 240), img.Bounds())
	assert.Equal(t, patternCorner, img.RGBAAt(0, 0))
	assert.Equal(t, patternCorner, img.RGBAAt(319, 239))
	assert.Equal(t, patternLine, img.RGBAAt(160, 10), "centre cross")

	_, err = src.Frame(1)
	assert.Error(t, err)

	_, err = NewPatternSource(PatternOptions{})
	assert.Error(t, err)
}
