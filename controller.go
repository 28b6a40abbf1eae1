package keystone

import "github.com/sirupsen/logrus"

// EditState is the controller's position in the adjustment flow.
type EditState uint8

const (
	StateClosed     EditState = iota // normal playback, no overlay
	StateMenu                        // menu list visible
	StateCornerEdit                  // live adjustment of one corner
)

// String returns the state name.
func (s EditState) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StateCornerEdit:
		return "corner_edit"
	default:
		return "closed"
	}
}

// EditSession is the transient state of one adjustment session. It is never
// persisted and is reset when the session closes.
type EditSession struct {
	MenuVisible       bool
	SelectedMenuIndex int
	CornerEditMode    bool
	SelectedCorner    Corner
	AdjustmentStep    float64
}

// Notifier receives short user-facing messages (shown as toasts).
type Notifier func(message string)

// ControllerConfig configures a Controller.
type ControllerConfig struct {
	// AdjustmentStep is the offset applied per arrow press. Zero means
	// DefaultAdjustmentStep.
	AdjustmentStep float64
	// InputLogging logs every key at debug level.
	InputLogging bool
}

// Controller interprets Keys into corner selection, live adjustment and
// save/reset. It owns the in-memory WarpShape of the playback session and
// publishes every change to the renderer through a StateSlot.
//
// A Controller is driven from a single goroutine. Readers on other
// goroutines use the StateSlot, never the Controller.
type Controller struct {
	store    *ShapeStore
	slot     *StateSlot
	requests *RenderRequests
	notify   Notifier

	shape        WarpShape
	session      EditSession
	step         float64
	inputLogging bool
}

// NewController loads the persisted shape from store and publishes it.
func NewController(store *ShapeStore, slot *StateSlot, requests *RenderRequests, cfg ControllerConfig) *Controller {
	step := cfg.AdjustmentStep
	if step == 0 {
		step = DefaultAdjustmentStep
	}
	c := &Controller{
		store:        store,
		slot:         slot,
		requests:     requests,
		step:         step,
		inputLogging: cfg.InputLogging,
	}
	c.session.AdjustmentStep = step
	c.shape = store.Load()
	c.publish()
	return c
}

// SetNotifier sets the receiver of user-facing messages.
func (c *Controller) SetNotifier(n Notifier) {
	c.notify = n
}

// State returns the current edit state.
func (c *Controller) State() EditState {
	switch {
	case c.session.CornerEditMode:
		return StateCornerEdit
	case c.session.MenuVisible:
		return StateMenu
	default:
		return StateClosed
	}
}

// Session returns a copy of the edit session.
func (c *Controller) Session() EditSession {
	return c.session
}

// Shape returns the in-memory shape, including unsaved edits.
func (c *Controller) Shape() WarpShape {
	return c.shape
}

// InputLogging reports whether key logging is on.
func (c *Controller) InputLogging() bool {
	return c.inputLogging
}

// HandleKey applies k and reports whether it was consumed. While the menu
// or a corner edit is open every key is consumed; when closed, keys the
// controller does not use are returned unconsumed for playback controls.
func (c *Controller) HandleKey(k Key) bool {
	if c.inputLogging {
		logFor("input").WithFields(logrus.Fields{
			"key":   k.String(),
			"state": c.State().String(),
		}).Debug("key")
	}

	switch c.State() {
	case StateMenu:
		c.handleMenu(k)
		return true
	case StateCornerEdit:
		c.handleCornerEdit(k)
		return true
	default:
		return c.handleClosed(k)
	}
}

func (c *Controller) handleClosed(k Key) bool {
	switch k {
	case KeyConfirm, KeyOpenMenu:
		c.openMenu(0)
		return true
	case KeyReset:
		c.setShape(IdentityShape())
		c.say("Keystone reset to default")
		logFor("controller").Info("warp shape reset")
		return true
	case KeyToggleInputLog:
		c.inputLogging = !c.inputLogging
		logFor("input").WithField("enabled", c.inputLogging).Info("input logging toggled")
		return true
	default:
		return false
	}
}

func (c *Controller) handleMenu(k Key) {
	switch k {
	case KeyUp:
		c.session.SelectedMenuIndex = wrapIndex(c.session.SelectedMenuIndex, -1, NumMenuRows)
		c.publish()
	case KeyDown:
		c.session.SelectedMenuIndex = wrapIndex(c.session.SelectedMenuIndex, 1, NumMenuRows)
		c.publish()
	case KeyConfirm:
		c.activate(MenuRows[c.session.SelectedMenuIndex])
	case KeyCancel:
		c.close()
	}
}

func (c *Controller) activate(row MenuRow) {
	switch r := row.(type) {
	case CornerRow:
		c.session.SelectedCorner = r.Corner
		c.session.CornerEditMode = true
		c.session.MenuVisible = false
		c.publish()
		c.say("Adjusting " + r.Label() + "\nUse arrows to move\nPress Enter to return to menu")
		logFor("controller").WithField("corner", r.Corner.String()).Info("corner selected")
	case ResetRow:
		c.setShape(IdentityShape())
		c.say("Keystone reset to default")
		logFor("controller").Info("warp shape reset")
	case SaveExitRow:
		if err := c.store.Save(c.shape); err != nil {
			logFor("controller").WithError(err).Error("keystone not saved")
			c.say("Keystone could not be saved")
		} else {
			c.say("Keystone saved")
		}
		c.close()
	}
}

func (c *Controller) handleCornerEdit(k Key) {
	switch k {
	case KeyUp:
		c.adjust(0, c.step)
	case KeyDown:
		c.adjust(0, -c.step)
	case KeyLeft:
		c.adjust(-c.step, 0)
	case KeyRight:
		c.adjust(c.step, 0)
	case KeyNextCorner:
		c.selectCorner(c.session.SelectedCorner.Next())
	case KeyPrevCorner:
		c.selectCorner(c.session.SelectedCorner.Prev())
	case KeyConfirm:
		c.openMenu(cornerRowIndex(c.session.SelectedCorner))
	case KeyCancel:
		c.close()
	}
}

func (c *Controller) adjust(dx, dy float64) {
	corner := c.session.SelectedCorner
	c.setShape(c.shape.Adjust(corner, dx, dy))
	logFor("controller").WithFields(logrus.Fields{
		"corner": corner.String(),
		"dx":     dx,
		"dy":     dy,
		"shape":  c.shape.String(),
	}).Debug("corner adjusted")
}

func (c *Controller) selectCorner(corner Corner) {
	c.session.SelectedCorner = corner
	c.session.SelectedMenuIndex = cornerRowIndex(corner)
	c.publish()
}

func (c *Controller) openMenu(index int) {
	c.session.MenuVisible = true
	c.session.CornerEditMode = false
	c.session.SelectedMenuIndex = index
	c.publish()
	logFor("controller").Debug("keystone menu opened")
}

// close ends the session. The in-memory shape keeps any unsaved edits; only
// Save & Exit writes to the store.
func (c *Controller) close() {
	c.session = EditSession{AdjustmentStep: c.step}
	c.publish()
	logFor("controller").Debug("keystone menu closed")
}

func (c *Controller) setShape(s WarpShape) {
	c.shape = s
	c.publish()
}

// publish hands the current shape and overlay to the renderer and requests
// a frame.
func (c *Controller) publish() {
	c.slot.Publish(RenderState{Shape: c.shape, Overlay: c.overlay()})
	c.requests.Request()
}

func (c *Controller) overlay() OverlayState {
	o := OverlayState{
		MenuVisible: c.session.MenuVisible,
		MenuIndex:   c.session.SelectedMenuIndex,
		Selected:    c.session.SelectedCorner,
	}
	switch c.State() {
	case StateCornerEdit:
		o.Markers = true
		o.Emphasize = true
	case StateMenu:
		o.Markers = true
		if row, ok := MenuRows[c.session.SelectedMenuIndex].(CornerRow); ok {
			o.Selected = row.Corner
			o.Emphasize = true
		}
	}
	return o
}

func (c *Controller) say(msg string) {
	if c.notify != nil {
		c.notify(msg)
	}
}
