package keystone

import (
	"cmp"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Key is a discrete input event understood by the controller.
type Key uint8

const (
	KeyNone           Key = iota
	KeyUp                 // move up / increase Y
	KeyDown               // move down / decrease Y
	KeyLeft               // decrease X
	KeyRight              // increase X
	KeyConfirm            // open menu, activate row, return to menu
	KeyCancel             // leave the overlay
	KeyNextCorner         // clockwise corner while editing
	KeyPrevCorner         // counter-clockwise corner while editing
	KeyReset              // in-memory reset while the overlay is closed
	KeyToggleInputLog     // toggle key event logging
	KeyOpenMenu           // open the menu from playback; ignored while it is open
	KeyPlayPause          // playback control, never used by the controller
)

// String returns the key name used in logs and test scripts.
func (k Key) String() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyConfirm:
		return "confirm"
	case KeyCancel:
		return "cancel"
	case KeyNextCorner:
		return "next"
	case KeyPrevCorner:
		return "prev"
	case KeyReset:
		return "reset"
	case KeyToggleInputLog:
		return "log"
	case KeyOpenMenu:
		return "menu"
	case KeyPlayPause:
		return "playpause"
	default:
		return "none"
	}
}

// ParseKey is the inverse of Key.String. Unknown names return KeyNone.
func ParseKey(name string) Key {
	for k := KeyUp; k <= KeyPlayPause; k++ {
		if k.String() == name {
			return k
		}
	}
	return KeyNone
}

// repeats reports whether holding k auto-repeats.
func (k Key) repeats() bool {
	return k == KeyUp || k == KeyDown || k == KeyLeft || k == KeyRight
}

// Key repeat timing in ticks.
const (
	defaultRepeatDelay    = 30
	defaultRepeatInterval = 4
)

// Bindings maps physical keyboard keys and standard-gamepad buttons to Keys.
// TV remotes usually present their d-pad as a standard gamepad.
type Bindings struct {
	Keyboard map[ebiten.Key]Key
	Gamepad  map[ebiten.StandardGamepadButton]Key

	// RepeatDelay and RepeatInterval control hold-to-repeat for the arrow
	// keys, in ticks. A zero delay disables repeat.
	RepeatDelay    int
	RepeatInterval int
}

// DefaultBindings returns the keyboard and remote layout.
func DefaultBindings() Bindings {
	return Bindings{
		Keyboard: map[ebiten.Key]Key{
			ebiten.KeyArrowUp:     KeyUp,
			ebiten.KeyArrowDown:   KeyDown,
			ebiten.KeyArrowLeft:   KeyLeft,
			ebiten.KeyArrowRight:  KeyRight,
			ebiten.KeyEnter:       KeyConfirm,
			ebiten.KeyNumpadEnter: KeyConfirm,
			ebiten.KeyEscape:      KeyCancel,
			ebiten.KeyTab:         KeyNextCorner,
			ebiten.KeyPageDown:    KeyNextCorner,
			ebiten.KeyPageUp:      KeyPrevCorner,
			ebiten.KeyBackspace:   KeyReset,
			ebiten.KeyDelete:      KeyReset,
			ebiten.KeyR:           KeyReset,
			ebiten.KeyDigit0:      KeyReset,
			ebiten.KeyF1:          KeyToggleInputLog,
			ebiten.KeyV:           KeyOpenMenu,
			ebiten.KeySpace:       KeyPlayPause,
		},
		Gamepad: map[ebiten.StandardGamepadButton]Key{
			ebiten.StandardGamepadButtonLeftTop:       KeyUp,
			ebiten.StandardGamepadButtonLeftBottom:    KeyDown,
			ebiten.StandardGamepadButtonLeftLeft:      KeyLeft,
			ebiten.StandardGamepadButtonLeftRight:     KeyRight,
			ebiten.StandardGamepadButtonRightBottom:   KeyConfirm,
			ebiten.StandardGamepadButtonRightRight:    KeyCancel,
			ebiten.StandardGamepadButtonFrontTopRight: KeyNextCorner,
			ebiten.StandardGamepadButtonFrontTopLeft:  KeyPrevCorner,
			ebiten.StandardGamepadButtonCenterRight:   KeyPlayPause,
		},
		RepeatDelay:    defaultRepeatDelay,
		RepeatInterval: defaultRepeatInterval,
	}
}

// fires reports whether a key held for d ticks produces an event this tick.
func (b *Bindings) fires(k Key, d int) bool {
	if d == 1 {
		return true
	}
	if !k.repeats() || b.RepeatDelay <= 0 || d < b.RepeatDelay {
		return false
	}
	interval := b.RepeatInterval
	if interval <= 0 {
		interval = 1
	}
	return (d-b.RepeatDelay)%interval == 0
}

// keyboardOrder returns the bound keyboard keys ordered by the Key they
// produce, then by physical key, so simultaneous presses are reported in a
// fixed order.
func (b *Bindings) keyboardOrder(dst []ebiten.Key) []ebiten.Key {
	dst = dst[:0]
	for phys := range b.Keyboard {
		dst = append(dst, phys)
	}
	slices.SortFunc(dst, func(x, y ebiten.Key) int {
		return cmp.Or(cmp.Compare(b.Keyboard[x], b.Keyboard[y]), cmp.Compare(x, y))
	})
	return dst
}

// gamepadOrder is keyboardOrder for gamepad buttons.
func (b *Bindings) gamepadOrder(dst []ebiten.StandardGamepadButton) []ebiten.StandardGamepadButton {
	dst = dst[:0]
	for btn := range b.Gamepad {
		dst = append(dst, btn)
	}
	slices.SortFunc(dst, func(x, y ebiten.StandardGamepadButton) int {
		return cmp.Or(cmp.Compare(b.Gamepad[x], b.Gamepad[y]), cmp.Compare(x, y))
	})
	return dst
}

// KeyInput polls Ebitengine each tick and merges in injected keys.
type KeyInput struct {
	Bindings Bindings

	injectQueue []Key
	buf         []Key
	gamepads    []ebiten.GamepadID
	physKeys    []ebiten.Key
	buttons     []ebiten.StandardGamepadButton
}

// NewKeyInput returns a poller using b.
func NewKeyInput(b Bindings) *KeyInput {
	return &KeyInput{Bindings: b}
}

// Inject queues a synthetic key. One injected key is delivered per Poll,
// ahead of physical input.
func (in *KeyInput) Inject(k Key) {
	in.injectQueue = append(in.injectQueue, k)
}

// Pending returns the number of injected keys not yet delivered.
func (in *KeyInput) Pending() int {
	return len(in.injectQueue)
}

// Poll returns the keys that fired this tick, injected key first, then
// keyboard and gamepad keys in Key order. The returned slice is reused by
// the next call.
func (in *KeyInput) Poll() []Key {
	in.buf = in.buf[:0]

	if len(in.injectQueue) > 0 {
		in.buf = append(in.buf, in.injectQueue[0])
		copy(in.injectQueue, in.injectQueue[1:])
		in.injectQueue = in.injectQueue[:len(in.injectQueue)-1]
	}

	in.physKeys = in.Bindings.keyboardOrder(in.physKeys)
	for _, phys := range in.physKeys {
		k := in.Bindings.Keyboard[phys]
		if d := inpututil.KeyPressDuration(phys); d > 0 && in.Bindings.fires(k, d) {
			in.buf = append(in.buf, k)
		}
	}

	in.gamepads = ebiten.AppendGamepadIDs(in.gamepads[:0])
	if len(in.gamepads) > 0 {
		in.buttons = in.Bindings.gamepadOrder(in.buttons)
	}
	for _, id := range in.gamepads {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		for _, btn := range in.buttons {
			k := in.Bindings.Gamepad[btn]
			if d := inpututil.StandardGamepadButtonPressDuration(id, btn); d > 0 && in.Bindings.fires(k, d) {
				in.buf = append(in.buf, k)
			}
		}
	}
	return in.buf
}
