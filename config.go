package keystone

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source kinds.
const (
	SourcePattern = "pattern"
	SourceImages  = "images"
	SourcePDF     = "pdf"
)

// Config is the full application configuration, read from YAML.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Source  SourceConfig  `yaml:"source"`
	Warp    WarpConfig    `yaml:"warp"`
	Picture PictureConfig `yaml:"picture"`
	Overlay OverlayConfig `yaml:"overlay"`
	Input   InputConfig   `yaml:"input"`
	Log     LogConfig     `yaml:"log"`
	Debug   DebugConfig   `yaml:"debug"`
}

// WindowConfig sizes and titles the window.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	TPS        int    `yaml:"tps"`
}

// SourceConfig selects and configures the FrameSource.
type SourceConfig struct {
	// Kind is pattern, images or pdf.
	Kind string `yaml:"kind"`
	// Path is the image directory or PDF file.
	Path string  `yaml:"path"`
	FPS  float64 `yaml:"fps"`
	Loop bool    `yaml:"loop"`

	// Decoder texture transform.
	Rotation     int        `yaml:"rotation"`
	FlipVertical bool       `yaml:"flip_vertical"`
	Crop         CropConfig `yaml:"crop"`

	MaxWidth  int     `yaml:"max_width"`
	MaxHeight int     `yaml:"max_height"`
	DPI       float64 `yaml:"dpi"`
	Workers   int     `yaml:"workers"`
}

// CropConfig is a crop rectangle in normalized texture units, origin
// bottom-left. A zero size means no crop.
type CropConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Rect returns c as a Rect.
func (c CropConfig) Rect() Rect {
	return Rect{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height}
}

// WarpConfig controls the warp mesh and where the shape is stored.
type WarpConfig struct {
	// Grid is the number of mesh cells per side.
	Grid int `yaml:"grid"`
	// Step is the offset applied per arrow press.
	Step float64 `yaml:"step"`
	// PrefsPath is the TOML file holding the saved shape. Empty means the
	// user config directory.
	PrefsPath string `yaml:"prefs_path"`
	// Ephemeral keeps the shape in memory only.
	Ephemeral bool `yaml:"ephemeral"`
}

// PictureConfig sets the picture shader adjustments.
type PictureConfig struct {
	Brightness float64 `yaml:"brightness"`
	Contrast   float64 `yaml:"contrast"`
	Shader     bool    `yaml:"shader"`
}

// OverlayConfig controls the edit overlay and HUD.
type OverlayConfig struct {
	HaloPulse    bool    `yaml:"halo_pulse"`
	ShowFPS      bool    `yaml:"show_fps"`
	ToastSeconds float64 `yaml:"toast_seconds"`
}

// InputConfig sets key repeat in ticks and key event logging.
type InputConfig struct {
	RepeatDelay    int  `yaml:"repeat_delay"`
	RepeatInterval int  `yaml:"repeat_interval"`
	LogKeys        bool `yaml:"log_keys"`
}

// DebugConfig holds developer diagnostics.
type DebugConfig struct {
	Stats         bool   `yaml:"stats"`
	ScreenshotDir string `yaml:"screenshot_dir"`
	// Script is a JSON test script run against the live app.
	Script string `yaml:"script"`
}

// DefaultConfig returns the configuration used for keys a file omits.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title:  "Keystone",
			Width:  1280,
			Height: 720,
			TPS:    60,
		},
		Source: SourceConfig{
			Kind: SourcePattern,
			FPS:  30,
			Loop: true,
			DPI:  96,
		},
		Warp: WarpConfig{
			Grid: DefaultGridSize,
			Step: DefaultAdjustmentStep,
		},
		Picture: PictureConfig{
			Contrast: 1,
			Shader:   true,
		},
		Overlay: OverlayConfig{
			HaloPulse:    true,
			ToastSeconds: 2,
		},
		Input: InputConfig{
			RepeatDelay:    defaultRepeatDelay,
			RepeatInterval: defaultRepeatInterval,
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Debug: DebugConfig{
			ScreenshotDir: "screenshots",
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate clamps out-of-range numbers and rejects settings that cannot
// work.
func (c *Config) Validate() error {
	var errs []error

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.TPS <= 0 {
		c.Window.TPS = 60
	}

	switch c.Source.Kind {
	case SourcePattern:
	case SourceImages, SourcePDF:
		if c.Source.Path == "" {
			errs = append(errs, fmt.Errorf("source %s needs a path", c.Source.Kind))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source kind %q", c.Source.Kind))
	}
	if c.Source.FPS <= 0 {
		c.Source.FPS = 30
	}
	if c.Source.Rotation%90 != 0 {
		errs = append(errs, fmt.Errorf("source rotation %d is not a multiple of 90", c.Source.Rotation))
	}

	c.Warp.Grid = max(1, min(c.Warp.Grid, MaxGridSize))
	if c.Warp.Step <= 0 {
		c.Warp.Step = DefaultAdjustmentStep
	}

	if c.Picture.Contrast < 0 {
		errs = append(errs, fmt.Errorf("picture contrast %v must not be negative", c.Picture.Contrast))
	}
	if c.Overlay.ToastSeconds <= 0 {
		c.Overlay.ToastSeconds = 2
	}
	return errors.Join(errs...)
}
