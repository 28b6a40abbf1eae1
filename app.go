package keystone

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
)

// App wires one playback session: frame source, player, shape store,
// controller, renderer and input. It implements ebiten.Game.
type App struct {
	cfg Config

	prefs    Preferences
	store    *ShapeStore
	slot     *StateSlot
	requests *RenderRequests
	surface  *Surface

	controller *Controller
	hud        *HUD
	renderer   *Renderer
	input      *KeyInput

	source     FrameSource
	player     *Player
	playerErr  chan error
	playerDone chan struct{}
	cancel     context.CancelFunc

	runner *TestRunner
}

// NewApp builds the session described by cfg. The frame source is opened
// and the saved shape loaded, but playback does not start until Start.
func NewApp(ctx context.Context, cfg Config) (*App, error) {
	prefs, err := openPreferences(cfg.Warp)
	if err != nil {
		return nil, err
	}
	src, err := openSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, prefs, src), nil
}

// newApp wires an App over an already opened Preferences and FrameSource.
func newApp(cfg Config, prefs Preferences, src FrameSource) *App {
	a := &App{
		cfg:       cfg,
		prefs:     prefs,
		store:     NewShapeStore(prefs),
		slot:      NewStateSlot(),
		requests:  NewRenderRequests(),
		surface:   NewSurface(),
		source:    src,
		playerErr: make(chan error, 1),
	}

	a.hud = NewHUD(HUDConfig{
		ToastSeconds: cfg.Overlay.ToastSeconds,
		FadeSeconds:  0.5,
		HaloPulse:    cfg.Overlay.HaloPulse,
		ShowFPS:      cfg.Overlay.ShowFPS,
	})
	a.controller = NewController(a.store, a.slot, a.requests, ControllerConfig{
		AdjustmentStep: cfg.Warp.Step,
		InputLogging:   cfg.Input.LogKeys,
	})
	a.controller.SetNotifier(a.hud.Notify)

	a.renderer = NewRenderer(a.slot, a.surface, a.requests, a.hud, RendererConfig{
		GridSize:      cfg.Warp.Grid,
		Brightness:    cfg.Picture.Brightness,
		Contrast:      cfg.Picture.Contrast,
		DisableShader: !cfg.Picture.Shader,
		ScreenshotDir: cfg.Debug.ScreenshotDir,
		DebugStats:    cfg.Debug.Stats,
	})
	a.surface.SetOnFrameAvailable(a.requests.Request)

	bindings := DefaultBindings()
	bindings.RepeatDelay = cfg.Input.RepeatDelay
	bindings.RepeatInterval = cfg.Input.RepeatInterval
	a.input = NewKeyInput(bindings)

	a.player = NewPlayer(src, a.surface, PlayerConfig{
		FPS:       cfg.Source.FPS,
		Loop:      cfg.Source.Loop,
		Transform: TextureTransform(cfg.Source.Rotation, cfg.Source.FlipVertical, cfg.Source.Crop.Rect()),
	})
	return a
}

func openPreferences(cfg WarpConfig) (Preferences, error) {
	if cfg.Ephemeral {
		return NewMemoryPreferences(), nil
	}
	path := cfg.PrefsPath
	if path == "" {
		path = DefaultPreferencesPath(ShapeNamespace)
	}
	p, err := OpenFilePreferences(path)
	if err != nil {
		return nil, fmt.Errorf("open warp preferences: %w", err)
	}
	return p, nil
}

func openSource(ctx context.Context, cfg Config) (FrameSource, error) {
	sc := cfg.Source
	maxW, maxH := sc.MaxWidth, sc.MaxHeight
	if maxW == 0 && maxH == 0 {
		maxW, maxH = cfg.Window.Width, cfg.Window.Height
	}
	switch sc.Kind {
	case SourceImages:
		return NewImageSequenceSource(ctx, sc.Path, ImageSequenceOptions{
			MaxWidth:  maxW,
			MaxHeight: maxH,
			Workers:   sc.Workers,
		})
	case SourcePDF:
		return NewPDFSource(sc.Path, sc.DPI, maxW, maxH)
	case SourcePattern:
		return NewPatternSource(PatternOptions{Width: cfg.Window.Width, Height: cfg.Window.Height})
	default:
		return nil, fmt.Errorf("unknown source kind %q", sc.Kind)
	}
}

// Start begins playback on its own goroutine.
func (a *App) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	a.playerDone = make(chan struct{})
	go func() {
		defer close(a.playerDone)
		err := a.player.Run(ctx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		a.playerErr <- err
	}()
}

// SetTestRunner attaches a scripted input runner. The runner's step is
// called from Update before input is polled.
func (a *App) SetTestRunner(r *TestRunner) {
	a.runner = r
}

// Controller returns the session's controller.
func (a *App) Controller() *Controller { return a.controller }

// Renderer returns the session's renderer.
func (a *App) Renderer() *Renderer { return a.renderer }

// Player returns the session's player.
func (a *App) Player() *Player { return a.player }

// InjectKey queues a synthetic key, delivered on a later Update.
func (a *App) InjectKey(k Key) { a.input.Inject(k) }

// PendingKeys returns the number of injected keys not yet handled.
func (a *App) PendingKeys() int { return a.input.Pending() }

// Screenshot queues a labeled capture of the next frame.
func (a *App) Screenshot(label string) { a.renderer.Screenshot(label) }

// Update implements ebiten.Game.
func (a *App) Update() error {
	if a.runner != nil {
		a.runner.step(a)
	}

	for _, k := range a.input.Poll() {
		a.handleKey(k)
	}

	dt := 1 / float64(ebiten.TPS())
	if a.hud.Update(dt, a.slot.Load().Overlay) {
		a.requests.Request()
	}

	select {
	case err := <-a.playerErr:
		if err != nil {
			logFor("app").WithError(err).Error("playback stopped")
		}
	default:
	}
	return nil
}

// handleKey gives k to the controller first; keys it leaves unconsumed are
// playback controls.
func (a *App) handleKey(k Key) {
	if a.controller.HandleKey(k) {
		return
	}
	switch k {
	case KeyPlayPause:
		if a.player.Toggle() {
			a.hud.Notify("Paused")
		} else {
			a.hud.Notify("Playing")
		}
	}
}

// Draw implements ebiten.Game.
func (a *App) Draw(screen *ebiten.Image) {
	a.renderer.Draw(screen)
}

// Layout implements ebiten.Game. The logical screen is the window size.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Close stops playback, waits for the player goroutine to return and then
// releases the frame source.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	if a.playerDone != nil {
		<-a.playerDone
	}
	return a.source.Close()
}

// Run opens the session described by cfg, runs it until the window closes
// and releases it.
func Run(ctx context.Context, cfg Config) error {
	l, err := NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	SetLogger(l)

	a, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Debug.Script != "" {
		data, err := os.ReadFile(cfg.Debug.Script)
		if err != nil {
			return fmt.Errorf("read test script: %w", err)
		}
		r, err := LoadTestScript(data)
		if err != nil {
			return err
		}
		a.SetTestRunner(r)
	}

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.Window.Fullscreen)
	ebiten.SetTPS(cfg.Window.TPS)
	ebiten.SetScreenClearedEveryFrame(false)

	a.Start(ctx)
	logFor("app").WithField("source", cfg.Source.Kind).Info("keystone started")
	if err := ebiten.RunGame(a); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
