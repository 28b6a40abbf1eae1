package keystone

import (
	"image"
	"testing"
)

func TestSurfaceKeepsLatest(t *testing.T) {
	s := NewSurface()
	if s.Latest() != nil {
		t.Fatal("new surface should be empty")
	}

	var notified int
	s.SetOnFrameAvailable(func() { notified++ })

	a := image.NewRGBA(image.Rect(0, 0, 1, 1))
	b := image.NewRGBA(image.Rect(0, 0, 2, 2))
	s.Submit(a, IdentityMat4())
	seq := s.Submit(b, Scale4(1, -1))

	f := s.Latest()
	if f.Image != b || f.Seq != seq || f.Transform != Scale4(1, -1) {
		t.Errorf("Latest = %+v", f)
	}
	if notified != 2 {
		t.Errorf("notified %d times, want 2", notified)
	}
}

func TestSurfaceRequestsRender(t *testing.T) {
	s := NewSurface()
	req := NewRenderRequests()
	s.SetOnFrameAvailable(req.Request)
	s.Submit(image.NewRGBA(image.Rect(0, 0, 1, 1)), IdentityMat4())
	if !req.Take() {
		t.Error("a new frame should request a render")
	}
}

func TestPackedPix(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	if got := packedPix(img); len(got) != 64 || &got[0] != &img.Pix[0] {
		t.Error("tightly packed image should be used as is")
	}

	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)
	got := packedPix(sub)
	if len(got) != 16 {
		t.Fatalf("len = %d, want 16", len(got))
	}
	if got[0] != img.Pix[img.PixOffset(1, 1)] || got[8] != img.Pix[img.PixOffset(1, 2)] {
		t.Errorf("sub-image rows not copied: %v", got)
	}
}
