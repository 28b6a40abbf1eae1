package keystone

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Debug font cell size.
const (
	glyphW = 6
	glyphH = 16
)

// HUDConfig configures on-screen text and animation.
type HUDConfig struct {
	// ToastSeconds is how long a toast stays fully visible before fading.
	ToastSeconds float64
	// FadeSeconds is the toast fade-out time.
	FadeSeconds float64
	// HaloPulse animates the halo around the selected corner.
	HaloPulse bool
	// ShowFPS prints the actual frame rate in the top-left corner.
	ShowFPS bool
}

// DefaultHUDConfig returns the default HUD timings.
func DefaultHUDConfig() HUDConfig {
	return HUDConfig{ToastSeconds: 2, FadeSeconds: 0.5, HaloPulse: true}
}

// HUD draws the menu, toasts and the FPS line, and drives the overlay
// animations. It is used from the Ebitengine goroutine only.
type HUD struct {
	cfg HUDConfig

	toast      string
	toastAlpha float64
	toastSeq   *gween.Sequence

	pulse     *gween.Sequence
	haloScale float64
}

// NewHUD returns an idle HUD.
func NewHUD(cfg HUDConfig) *HUD {
	h := &HUD{cfg: cfg, haloScale: 1}
	if cfg.HaloPulse {
		h.pulse = newPulse()
	}
	return h
}

// newPulse grows the halo by a quarter and back, forever.
func newPulse() *gween.Sequence {
	seq := gween.NewSequence(gween.New(1, 1.25, 0.6, ease.InOutSine))
	seq.SetLoop(-1)
	seq.SetYoyo(true)
	return seq
}

// Notify shows msg as a toast, replacing any current one. It satisfies
// Notifier.
func (h *HUD) Notify(msg string) {
	h.toast = msg
	h.toastAlpha = 1
	h.toastSeq = gween.NewSequence(
		gween.New(1, 1, float32(h.cfg.ToastSeconds), ease.Linear),
		gween.New(1, 0, float32(h.cfg.FadeSeconds), ease.OutQuad),
	)
}

// Toast returns the visible toast text and its opacity.
func (h *HUD) Toast() (string, float64) {
	return h.toast, h.toastAlpha
}

// HaloScale returns the current halo radius multiplier.
func (h *HUD) HaloScale() float64 {
	return h.haloScale
}

// Update advances animations by dt seconds and reports whether anything
// visible changed, meaning a new frame should be rendered.
func (h *HUD) Update(dt float64, st OverlayState) bool {
	changed := false

	if h.toastSeq != nil {
		v, _, done := h.toastSeq.Update(float32(dt))
		h.toastAlpha = float64(v)
		if done {
			h.toast = ""
			h.toastAlpha = 0
			h.toastSeq = nil
		}
		changed = true
	}

	if h.pulse != nil {
		if st.Markers && st.Emphasize {
			v, _, _ := h.pulse.Update(float32(dt))
			h.haloScale = float64(v)
			changed = true
		} else if h.haloScale != 1 {
			h.pulse = newPulse()
			h.haloScale = 1
			changed = true
		}
	}

	if h.cfg.ShowFPS {
		changed = true
	}
	return changed
}

// Draw renders menu, toast and FPS text for st.
func (h *HUD) Draw(dst *ebiten.Image, st OverlayState) {
	b := dst.Bounds()
	if st.MenuVisible {
		drawTextBox(dst, menuLines(st.MenuIndex), b.Dx()/2, b.Dy()/2, color.RGBA{A: 200})
	}
	if h.toast != "" && h.toastAlpha > 0 {
		lines := strings.Split(h.toast, "\n")
		bg := color.RGBA{A: uint8(180 * clamp01(h.toastAlpha))}
		drawTextBox(dst, lines, b.Dx()/2, b.Dy()-(len(lines)+2)*glyphH, bg)
	}
	if h.cfg.ShowFPS {
		ebitenutil.DebugPrintAt(dst, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()), 4, 4)
	}
}

// menuLines renders the menu as text with the highlighted row marked.
func menuLines(selected int) []string {
	lines := make([]string, 0, NumMenuRows+2)
	lines = append(lines, MenuTitle, "")
	for i, row := range MenuRows {
		prefix := "  "
		if i == selected {
			prefix = "> "
		}
		lines = append(lines, prefix+row.Label())
	}
	return lines
}

// drawTextBox prints lines on a filled box centred horizontally on cx with
// its vertical centre at cy.
func drawTextBox(dst *ebiten.Image, lines []string, cx, cy int, bg color.RGBA) {
	width := 0
	for _, l := range lines {
		width = max(width, len(l))
	}
	const pad = 8
	w := width*glyphW + 2*pad
	h := len(lines)*glyphH + 2*pad
	x := cx - w/2
	y := cy - h/2
	vector.DrawFilledRect(dst, float32(x), float32(y), float32(w), float32(h), bg, false)
	for i, l := range lines {
		ebitenutil.DebugPrintAt(dst, l, x+pad, y+pad+i*glyphH)
	}
}
