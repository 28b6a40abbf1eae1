package keystone

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"
	"time"
)

// FrameSource is a finite sequence of decoded pictures. Frame may be called
// from any goroutine but not concurrently.
type FrameSource interface {
	Len() int
	Frame(i int) (*image.RGBA, error)
	Close() error
}

var (
	// ErrEmptySource is returned by Player.Run for a source without frames.
	ErrEmptySource = errors.New("keystone: frame source is empty")
	// ErrSourceClosed is returned by Frame after Close.
	ErrSourceClosed = errors.New("keystone: frame source is closed")
)

// PlayerConfig controls pacing of a Player.
type PlayerConfig struct {
	// FPS is the presentation rate. Zero means 30.
	FPS float64
	// Loop restarts at the first frame after the last.
	Loop bool
	// Transform is handed to the Surface with every frame.
	Transform Mat4
}

// Player pushes frames from a FrameSource into a Surface at a fixed rate.
type Player struct {
	src     FrameSource
	surface *Surface
	cfg     PlayerConfig

	paused atomic.Bool
	index  atomic.Int64
}

// NewPlayer returns a player that has not started yet.
func NewPlayer(src FrameSource, surface *Surface, cfg PlayerConfig) *Player {
	if cfg.FPS <= 0 {
		cfg.FPS = 30
	}
	if cfg.Transform == (Mat4{}) {
		cfg.Transform = IdentityMat4()
	}
	return &Player{src: src, surface: surface, cfg: cfg}
}

// Pause stops advancing frames. The last frame stays on the surface.
func (p *Player) Pause() { p.paused.Store(true) }

// Resume continues playback.
func (p *Player) Resume() { p.paused.Store(false) }

// Toggle flips between paused and playing and reports the new paused state.
func (p *Player) Toggle() bool {
	for {
		old := p.paused.Load()
		if p.paused.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Paused reports whether playback is paused.
func (p *Player) Paused() bool { return p.paused.Load() }

// Index returns the index of the frame most recently submitted.
func (p *Player) Index() int { return int(p.index.Load()) }

// Run submits the first frame immediately and then one frame per tick until
// ctx is done or a non-looping source is exhausted. Decode errors for a
// single frame are logged and the frame is skipped.
func (p *Player) Run(ctx context.Context) error {
	n := p.src.Len()
	if n == 0 {
		return ErrEmptySource
	}
	log := logFor("player")
	period := time.Duration(float64(time.Second) / p.cfg.FPS)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	i := 0
	for {
		if err := p.show(i); err != nil {
			log.WithError(err).WithField("frame", i).Warn("frame skipped")
		}

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
			if !p.paused.Load() {
				break
			}
		}

		i++
		if i >= n {
			if !p.cfg.Loop {
				log.WithField("frames", n).Info("playback finished")
				return nil
			}
			i = 0
		}
	}
}

func (p *Player) show(i int) error {
	img, err := p.src.Frame(i)
	if err != nil {
		return fmt.Errorf("decode frame %d: %w", i, err)
	}
	p.index.Store(int64(i))
	p.surface.Submit(img, p.cfg.Transform)
	return nil
}
