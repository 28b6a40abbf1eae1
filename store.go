package keystone

import (
	"fmt"
	"sync"
)

// ShapeNamespace names the preferences record holding the warp shape.
const ShapeNamespace = "warp_shape_prefs"

// Persisted key names, one per scalar.
const (
	keyTopLeftX     = "topLeftX"
	keyTopLeftY     = "topLeftY"
	keyTopRightX    = "topRightX"
	keyTopRightY    = "topRightY"
	keyBottomLeftX  = "bottomLeftX"
	keyBottomLeftY  = "bottomLeftY"
	keyBottomRightX = "bottomRightX"
	keyBottomRightY = "bottomRightY"
)

// Keys of the older edge-offset record.
const (
	keyLegacyTopLeft     = "topLeft"
	keyLegacyTopRight    = "topRight"
	keyLegacyBottomLeft  = "bottomLeft"
	keyLegacyBottomRight = "bottomRight"
)

var shapeKeys = [8]string{
	keyTopLeftX, keyTopLeftY,
	keyTopRightX, keyTopRightY,
	keyBottomLeftX, keyBottomLeftY,
	keyBottomRightX, keyBottomRightY,
}

var legacyKeys = [4]string{
	keyLegacyTopLeft, keyLegacyTopRight,
	keyLegacyBottomLeft, keyLegacyBottomRight,
}

// ShapeStore loads and saves the WarpShape. It is constructed explicitly and
// owned by the playback session; there is no process-wide instance.
type ShapeStore struct {
	prefs Preferences
	mu    sync.RWMutex
}

// NewShapeStore returns a store persisting into prefs.
func NewShapeStore(prefs Preferences) *ShapeStore {
	return &ShapeStore{prefs: prefs}
}

// Load returns the persisted shape. Missing keys read as zero, so an empty
// record is the identity shape. Load never fails.
func (s *ShapeStore) Load() WarpShape {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var vals [8]float64
	found := false
	for i, k := range shapeKeys {
		if v, ok := s.prefs.Float(k); ok {
			vals[i] = v
			found = true
		}
	}
	if !found {
		if legacy, ok := s.loadLegacy(); ok {
			shape := legacy.ToWarpShape()
			logFor("store").WithField("shape", shape.String()).Info("migrated edge-offset warp record")
			return shape
		}
	}

	shape := WarpShape{
		TopLeft:     Offset{X: vals[0], Y: vals[1]},
		TopRight:    Offset{X: vals[2], Y: vals[3]},
		BottomLeft:  Offset{X: vals[4], Y: vals[5]},
		BottomRight: Offset{X: vals[6], Y: vals[7]},
	}
	logFor("store").WithField("shape", shape.String()).Debug("loaded warp shape")
	return shape
}

func (s *ShapeStore) loadLegacy() (EdgeShape, bool) {
	var vals [4]float64
	found := false
	for i, k := range legacyKeys {
		if v, ok := s.prefs.Float(k); ok {
			vals[i] = v
			found = true
		}
	}
	return EdgeShape{
		TopLeft:     vals[0],
		TopRight:    vals[1],
		BottomLeft:  vals[2],
		BottomRight: vals[3],
	}, found
}

// Save persists all eight offsets in a single batch. Values are stored as
// given; degenerate shapes are not rejected.
func (s *ShapeStore) Save(shape WarpShape) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.prefs.Edit(func(e Editor) {
		e.PutFloat(keyTopLeftX, shape.TopLeft.X)
		e.PutFloat(keyTopLeftY, shape.TopLeft.Y)
		e.PutFloat(keyTopRightX, shape.TopRight.X)
		e.PutFloat(keyTopRightY, shape.TopRight.Y)
		e.PutFloat(keyBottomLeftX, shape.BottomLeft.X)
		e.PutFloat(keyBottomLeftY, shape.BottomLeft.Y)
		e.PutFloat(keyBottomRightX, shape.BottomRight.X)
		e.PutFloat(keyBottomRightY, shape.BottomRight.Y)
	})
	if err != nil {
		return fmt.Errorf("save warp shape: %w", err)
	}
	logFor("store").WithField("shape", shape.String()).Info("saved warp shape")
	return nil
}

// Reset deletes the persisted record so the next Load returns identity.
func (s *ShapeStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prefs.Edit(func(e Editor) { e.Clear() }); err != nil {
		return fmt.Errorf("reset warp shape: %w", err)
	}
	logFor("store").Info("reset warp shape")
	return nil
}
