package keystone

import "sync/atomic"

// OverlayState is what the renderer needs to know about the edit session.
type OverlayState struct {
	// Markers enables the border and corner markers.
	Markers bool
	// Emphasize highlights Selected with the larger cyan marker and halo.
	Emphasize bool
	Selected  Corner
	// MenuVisible shows the menu list with MenuIndex highlighted.
	MenuVisible bool
	MenuIndex   int
}

// RenderState is an immutable snapshot published by the controller and read
// by the renderer. Version increases with every publish.
type RenderState struct {
	Shape   WarpShape
	Overlay OverlayState
	Version uint64
}

// StateSlot hands RenderState snapshots from the single writer (the
// controller) to any number of readers. Publishing swaps a pointer to a
// fresh copy, so a reader never sees a half-updated shape.
type StateSlot struct {
	cur     atomic.Pointer[RenderState]
	version atomic.Uint64
}

// NewStateSlot returns a slot holding the identity shape with no overlay.
func NewStateSlot() *StateSlot {
	s := &StateSlot{}
	s.cur.Store(&RenderState{})
	return s
}

// Publish stores a copy of st and returns the version assigned to it.
func (s *StateSlot) Publish(st RenderState) uint64 {
	st.Version = s.version.Add(1)
	s.cur.Store(&st)
	return st.Version
}

// Load returns the most recently published snapshot.
func (s *StateSlot) Load() RenderState {
	return *s.cur.Load()
}

// RenderRequests is the one-way "please render a frame" signal. Requests
// coalesce: any number of Request calls between two Take calls produce one
// pending render.
type RenderRequests struct {
	ch chan struct{}
}

// NewRenderRequests returns a signal with no pending request.
func NewRenderRequests() *RenderRequests {
	return &RenderRequests{ch: make(chan struct{}, 1)}
}

// Request marks a render as pending. It never blocks.
func (r *RenderRequests) Request() {
	select {
	case r.ch <- struct{}{}:
	default:
	}
}

// Take consumes the pending request, reporting whether there was one.
// It never blocks.
func (r *RenderRequests) Take() bool {
	select {
	case <-r.ch:
		return true
	default:
		return false
	}
}

// C exposes the signal for hosts that want to wait on it.
func (r *RenderRequests) C() <-chan struct{} {
	return r.ch
}
