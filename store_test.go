package keystone

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingPrefs reads like an empty store and rejects every edit.
type failingPrefs struct{}

var errDiskFull = errors.New("disk full")

func (failingPrefs) Float(string) (float64, bool) { return 0, false }
func (failingPrefs) Edit(func(Editor)) error      { return errDiskFull }

func sampleShape() WarpShape {
	return WarpShape{
		TopLeft:     Offset{X: 0.15, Y: -0.35},
		TopRight:    Offset{X: -1.25, Y: 0},
		BottomLeft:  Offset{X: 0, Y: 2.5},
		BottomRight: Offset{X: -0.05, Y: -0.05},
	}
}

func TestStoreEmptyLoadsIdentity(t *testing.T) {
	s := NewShapeStore(NewMemoryPreferences())
	assert.True(t, s.Load().IsIdentity())
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	prefs := NewMemoryPreferences()
	s := NewShapeStore(prefs)
	shape := sampleShape()

	require.NoError(t, s.Save(shape))
	assert.Equal(t, shape, s.Load())
	assert.Equal(t, 8, prefs.Len())
	assert.Equal(t, 1, prefs.Edits(), "all eight keys belong to one batch")

	// A second store over the same preferences sees the same shape.
	assert.Equal(t, shape, NewShapeStore(prefs).Load())
}

func TestStoreSaveWritesNamedKeys(t *testing.T) {
	prefs := NewMemoryPreferences()
	require.NoError(t, NewShapeStore(prefs).Save(sampleShape()))

	v, ok := prefs.Float("topRightX")
	require.True(t, ok)
	assert.Equal(t, -1.25, v)
	v, ok = prefs.Float("bottomLeftY")
	require.True(t, ok)
	assert.Equal(t, 2.5, v)
}

func TestStoreNonFiniteValuesRoundTrip(t *testing.T) {
	s := NewShapeStore(NewMemoryPreferences())
	shape := IdentityShape().
		WithCorner(TopLeft, Offset{X: math.Inf(1), Y: math.Inf(-1)}).
		WithCorner(BottomRight, Offset{X: math.NaN()})
	require.NoError(t, s.Save(shape))

	got := s.Load()
	assert.True(t, math.IsInf(got.TopLeft.X, 1))
	assert.True(t, math.IsInf(got.TopLeft.Y, -1))
	assert.True(t, math.IsNaN(got.BottomRight.X))
}

func TestStoreResetIsIdempotent(t *testing.T) {
	s := NewShapeStore(NewMemoryPreferences())
	require.NoError(t, s.Save(sampleShape()))

	require.NoError(t, s.Reset())
	assert.True(t, s.Load().IsIdentity())
	require.NoError(t, s.Reset())
	assert.True(t, s.Load().IsIdentity())
}

func TestStorePartialRecordReadsZero(t *testing.T) {
	prefs := NewMemoryPreferences()
	require.NoError(t, prefs.Edit(func(e Editor) {
		e.PutFloat("bottomRightY", 0.4)
	}))
	got := NewShapeStore(prefs).Load()
	assert.Equal(t, IdentityShape().WithCorner(BottomRight, Offset{Y: 0.4}), got)
}

func TestStoreMigratesLegacyRecord(t *testing.T) {
	prefs := NewMemoryPreferences()
	require.NoError(t, prefs.Edit(func(e Editor) {
		e.PutFloat("topLeft", 0.05)
		e.PutFloat("bottomRight", -0.02)
	}))

	// The edge record's top values moved the bottom of the picture.
	got := NewShapeStore(prefs).Load()
	assert.Equal(t, 0.05, got.BottomLeft.X)
	assert.Equal(t, -0.02, got.TopRight.X)
	assert.Zero(t, got.BottomLeft.Y)
	assert.Zero(t, got.TopLeft.X)
	assert.Zero(t, got.BottomRight.X)
}

func TestStoreMigratedRecordKeepsDisplayedPosition(t *testing.T) {
	legacy := EdgeShape{TopLeft: 0.5, TopRight: -0.3, BottomLeft: 0.2, BottomRight: 0.1}
	prefs := NewMemoryPreferences()
	require.NoError(t, prefs.Edit(func(e Editor) {
		e.PutFloat("topLeft", legacy.TopLeft)
		e.PutFloat("topRight", legacy.TopRight)
		e.PutFloat("bottomLeft", legacy.BottomLeft)
		e.PutFloat("bottomRight", legacy.BottomRight)
	}))
	w := NewWarp(NewShapeStore(prefs).Load())

	for _, c := range []Corner{TopLeft, TopRight, BottomLeft, BottomRight} {
		u, v := c.UV()
		base := BaseNDC(u, v)
		want := edgeVertexX(legacy, base.X, base.Y)
		got := w.CornerPosition(c)
		assert.InDelta(t, want, got.X, 1e-12, c.String())
		assert.Equal(t, base.Y, got.Y, c.String())
	}
}

func TestStoreNewRecordWinsOverLegacy(t *testing.T) {
	prefs := NewMemoryPreferences()
	require.NoError(t, prefs.Edit(func(e Editor) {
		e.PutFloat("topLeft", 0.05)
		e.PutFloat("topLeftX", 3)
	}))
	got := NewShapeStore(prefs).Load()
	assert.Equal(t, 3.0, got.TopLeft.X)
}

func TestStoreSaveErrorIsWrapped(t *testing.T) {
	err := NewShapeStore(failingPrefs{}).Save(sampleShape())
	require.Error(t, err)
	assert.ErrorIs(t, err, errDiskFull)
}

func TestFilePreferencesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ShapeNamespace+".toml")
	prefs, err := OpenFilePreferences(path)
	require.NoError(t, err)

	s := NewShapeStore(prefs)
	require.NoError(t, s.Save(sampleShape()))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file left behind")

	reopened, err := OpenFilePreferences(path)
	require.NoError(t, err)
	assert.Equal(t, sampleShape(), NewShapeStore(reopened).Load())
}

func TestStoreSaveAtomicUnderConcurrentLoad(t *testing.T) {
	prefs, err := OpenFilePreferences(filepath.Join(t.TempDir(), "shape.toml"))
	require.NoError(t, err)
	s := NewShapeStore(prefs)

	shapes := []WarpShape{sampleShape(), IdentityShape().Adjust(BottomRight, -3, 7)}
	valid := func(got WarpShape) bool {
		return got.IsIdentity() || got == shapes[0] || got == shapes[1]
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if err := s.Save(shapes[i%2]); err != nil {
				t.Errorf("save %d: %v", i, err)
				return
			}
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				if got := s.Load(); !valid(got) {
					t.Errorf("partial shape observed: %v", got)
					return
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, shapes[1], s.Load())
}

func TestFilePreferencesFailedWriteKeepsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shape.toml")
	prefs, err := OpenFilePreferences(path)
	require.NoError(t, err)
	require.NoError(t, NewShapeStore(prefs).Save(sampleShape()))

	// Replacing the file with a non-empty directory makes the rename fail.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.MkdirAll(filepath.Join(path, "blocker"), 0o700))

	err = NewShapeStore(prefs).Save(IdentityShape())
	require.Error(t, err)
	_, statErr := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(statErr), "temporary file left behind")
	assert.Equal(t, sampleShape(), NewShapeStore(prefs).Load(), "failed edit is not applied")
}

func TestFilePreferencesResetPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shape.toml")
	prefs, err := OpenFilePreferences(path)
	require.NoError(t, err)
	s := NewShapeStore(prefs)
	require.NoError(t, s.Save(sampleShape()))
	require.NoError(t, s.Reset())

	reopened, err := OpenFilePreferences(path)
	require.NoError(t, err)
	assert.True(t, NewShapeStore(reopened).Load().IsIdentity())
}

func TestFilePreferencesCorruptFileLoadsIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shape.toml")
	require.NoError(t, os.WriteFile(path, []byte("topLeftX = = nope"), 0o600))

	prefs, err := OpenFilePreferences(path)
	require.NoError(t, err)
	assert.True(t, NewShapeStore(prefs).Load().IsIdentity())

	// The next save replaces the corrupt file.
	require.NoError(t, NewShapeStore(prefs).Save(sampleShape()))
	reopened, err := OpenFilePreferences(path)
	require.NoError(t, err)
	assert.Equal(t, sampleShape(), NewShapeStore(reopened).Load())
}

func TestDefaultPreferencesPathUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "keystone", "warp_shape_prefs.toml"), DefaultPreferencesPath(ShapeNamespace))
}

func TestBatchClearAppliesFirst(t *testing.T) {
	prefs := NewMemoryPreferences()
	require.NoError(t, prefs.Edit(func(e Editor) { e.PutFloat("a", 1) }))
	require.NoError(t, prefs.Edit(func(e Editor) {
		e.PutFloat("b", 2)
		e.Clear()
		e.PutFloat("c", 3)
	}))
	_, okA := prefs.Float("a")
	_, okB := prefs.Float("b")
	c, okC := prefs.Float("c")
	assert.False(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
	assert.Equal(t, 3.0, c)
}
