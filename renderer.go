package keystone

import (
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// RendererConfig configures a Renderer.
type RendererConfig struct {
	// GridSize is the number of warp mesh cells per side.
	GridSize int
	Style    OverlayStyle
	// Brightness and Contrast feed the picture shader.
	Brightness float64
	Contrast   float64
	// DisableShader draws with plain DrawTriangles.
	DisableShader bool
	// ScreenshotDir receives PNG captures.
	ScreenshotDir string
	// DebugStats logs per-frame timings.
	DebugStats bool
}

// Renderer draws the warped frame, the edit overlay and the HUD. It reads
// the controller's state only through the StateSlot and the video only
// through the Surface, and renders only when a render was requested or the
// screen size changed; otherwise the previous screen content is kept.
type Renderer struct {
	slot     *StateSlot
	surface  *Surface
	requests *RenderRequests
	hud      *HUD

	mesh       *WarpMesh
	shader     *PictureShader
	style      OverlayStyle
	projection Mat4

	tex       *ebiten.Image
	texSeq    uint64
	texMat    Mat4
	lastW     int
	lastH     int
	rendered  uint64
	lastState uint64

	ScreenshotDir   string
	screenshotQueue []string

	debug *debugMonitor
}

// NewRenderer returns a renderer over the given handoff points. hud may be
// nil.
func NewRenderer(slot *StateSlot, surface *Surface, requests *RenderRequests, hud *HUD, cfg RendererConfig) *Renderer {
	grid := cfg.GridSize
	if grid == 0 {
		grid = DefaultGridSize
	}
	shader := NewPictureShader()
	shader.Brightness = cfg.Brightness
	if cfg.Contrast != 0 {
		shader.Contrast = cfg.Contrast
	}
	shader.Disabled = cfg.DisableShader

	style := cfg.Style
	if style == (OverlayStyle{}) {
		style = DefaultOverlayStyle()
	}
	dir := cfg.ScreenshotDir
	if dir == "" {
		dir = "screenshots"
	}
	return &Renderer{
		slot:          slot,
		surface:       surface,
		requests:      requests,
		hud:           hud,
		mesh:          NewWarpMesh(grid),
		shader:        shader,
		style:         style,
		projection:    Ortho(-1, 1, -1, 1, -1, 1),
		texMat:        IdentityMat4(),
		ScreenshotDir: dir,
		debug:         newDebugMonitor(cfg.DebugStats, 0),
	}
}

// Shader returns the picture shader, for live brightness/contrast changes.
// Callers must request a render afterwards.
func (r *Renderer) Shader() *PictureShader { return r.shader }

// Mesh returns the warp mesh.
func (r *Renderer) Mesh() *WarpMesh { return r.mesh }

// Rendered returns the number of frames actually drawn.
func (r *Renderer) Rendered() uint64 { return r.rendered }

// LastStateVersion returns the version of the snapshot drawn last.
func (r *Renderer) LastStateVersion() uint64 { return r.lastState }

// Draw renders into screen if a render is pending and reports whether it
// did. screen must not be cleared by the host between frames.
func (r *Renderer) Draw(screen *ebiten.Image) bool {
	b := screen.Bounds()
	resized := b.Dx() != r.lastW || b.Dy() != r.lastH
	pending := r.requests.Take()
	if !pending && !resized && len(r.screenshotQueue) == 0 {
		return false
	}
	r.lastW, r.lastH = b.Dx(), b.Dy()

	var stats frameStats
	t0 := time.Now()
	r.upload()
	t1 := time.Now()
	stats.uploadTime = t1.Sub(t0)

	st := r.slot.Load()
	screen.Fill(ColorBlack.toRGBA())

	if r.tex != nil {
		tb := r.tex.Bounds()
		params := MeshParams{
			Viewport:   Viewport{Width: float64(b.Dx()), Height: float64(b.Dy())},
			Projection: r.projection,
			Texture:    r.texMat,
			TexWidth:   tb.Dx(),
			TexHeight:  tb.Dy(),
		}
		stats.meshRebuilt = r.mesh.Update(st.Shape, params)
		t2 := time.Now()
		stats.meshTime = t2.Sub(t1)

		r.shader.Draw(screen, r.tex, r.mesh.Vertices(), r.mesh.Indices())
		stats.drawTime = time.Since(t2)
		stats.shaderPath = r.shader.Active()
		stats.vertexCount = len(r.mesh.Vertices())
		stats.indexCount = len(r.mesh.Indices())
	}

	t3 := time.Now()
	vp := Viewport{Width: float64(b.Dx()), Height: float64(b.Dy())}
	haloScale := 1.0
	if r.hud != nil {
		haloScale = r.hud.HaloScale()
	}
	drawOverlay(screen, vp, r.projection, st.Shape, st.Overlay, r.style, haloScale)
	if r.hud != nil {
		r.hud.Draw(screen, st.Overlay)
	}
	stats.overlayTime = time.Since(t3)

	r.flushScreenshots(screen)

	r.rendered++
	r.lastState = st.Version
	r.debug.log(stats)
	return true
}

// upload copies the newest surface frame into the video texture.
func (r *Renderer) upload() {
	f := r.surface.Latest()
	if f == nil || f.Seq == r.texSeq || f.Image == nil {
		return
	}
	w, h := f.Image.Rect.Dx(), f.Image.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}
	if r.tex == nil || r.tex.Bounds().Dx() != w || r.tex.Bounds().Dy() != h {
		if r.tex != nil {
			r.tex.Deallocate()
		}
		r.tex = ebiten.NewImage(w, h)
		r.mesh.Invalidate()
	}
	r.tex.WritePixels(packedPix(f.Image))
	r.texSeq = f.Seq
	r.texMat = f.Transform
}

// packedPix returns img's pixels with no row padding.
func packedPix(img *image.RGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if img.Stride == 4*w && img.Rect.Min == (image.Point{}) {
		return img.Pix[:4*w*h]
	}
	out := make([]byte, 4*w*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		copy(out[4*w*y:4*w*(y+1)], img.Pix[off:off+4*w])
	}
	return out
}
