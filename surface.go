package keystone

import (
	"image"
	"sync"
	"sync/atomic"
)

// Frame is one decoded picture together with the decoder's texture
// transform. Frames are immutable once submitted.
type Frame struct {
	Image     *image.RGBA
	Transform Mat4
	Seq       uint64
}

// Surface is the handoff point between a frame producer (the Player
// goroutine) and the render goroutine. Only the newest frame is kept;
// frames the renderer never saw are dropped.
type Surface struct {
	latest atomic.Pointer[Frame]
	seq    atomic.Uint64

	mu               sync.Mutex
	onFrameAvailable func()
}

// NewSurface returns an empty surface.
func NewSurface() *Surface {
	return &Surface{}
}

// SetOnFrameAvailable registers fn to be called after every Submit, on the
// submitting goroutine.
func (s *Surface) SetOnFrameAvailable(fn func()) {
	s.mu.Lock()
	s.onFrameAvailable = fn
	s.mu.Unlock()
}

// Submit publishes img with transform m. The caller must not modify img
// afterwards.
func (s *Surface) Submit(img *image.RGBA, m Mat4) uint64 {
	f := &Frame{Image: img, Transform: m, Seq: s.seq.Add(1)}
	s.latest.Store(f)

	s.mu.Lock()
	fn := s.onFrameAvailable
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
	return f.Seq
}

// Latest returns the most recent frame, or nil before the first Submit.
func (s *Surface) Latest() *Frame {
	return s.latest.Load()
}
