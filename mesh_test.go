package keystone

import (
	"math"
	"testing"
)

func testMeshParams() MeshParams {
	return MeshParams{
		Viewport:   Viewport{Width: 640, Height: 480},
		Projection: Ortho(-1, 1, -1, 1, -1, 1),
		Texture:    IdentityMat4(),
		TexWidth:   320,
		TexHeight:  240,
	}
}

func TestWarpMeshSizes(t *testing.T) {
	tests := []struct {
		n, wantN, verts, inds int
	}{
		{1, 1, 4, 6},
		{16, 16, 289, 1536},
		{0, 1, 4, 6},
		{1000, MaxGridSize, (MaxGridSize + 1) * (MaxGridSize + 1), MaxGridSize * MaxGridSize * 6},
	}
	for _, tt := range tests {
		m := NewWarpMesh(tt.n)
		if m.GridSize() != tt.wantN || len(m.Vertices()) != tt.verts || len(m.Indices()) != tt.inds {
			t.Errorf("NewWarpMesh(%d): n=%d verts=%d inds=%d", tt.n, m.GridSize(), len(m.Vertices()), len(m.Indices()))
		}
		for _, idx := range m.Indices() {
			if int(idx) >= len(m.Vertices()) {
				t.Fatalf("index %d out of range", idx)
			}
		}
	}
}

func TestWarpMeshIdentityCoversViewport(t *testing.T) {
	m := NewWarpMesh(1)
	m.Update(IdentityShape(), testMeshParams())
	v := m.Vertices()

	want := [4][4]float32{
		// DstX, DstY, SrcX, SrcY for TL, TR, BL, BR
		{0, 0, 0, 0},
		{640, 0, 320, 0},
		{0, 480, 0, 240},
		{640, 480, 320, 240},
	}
	for i, w := range want {
		got := [4]float32{v[i].DstX, v[i].DstY, v[i].SrcX, v[i].SrcY}
		if got != w {
			t.Errorf("vertex %d = %v, want %v", i, got, w)
		}
	}
}

func TestWarpMeshCornersFollowShape(t *testing.T) {
	shape := sampleShape()
	p := testMeshParams()
	m := NewWarpMesh(8)
	m.Update(shape, p)

	w := NewWarp(shape)
	side := m.GridSize() + 1
	idx := map[Corner]int{
		TopLeft:     0,
		TopRight:    side - 1,
		BottomLeft:  side * (side - 1),
		BottomRight: side*side - 1,
	}
	for c, i := range idx {
		x, y := p.Viewport.ToScreen(p.Projection, w.CornerPosition(c))
		v := m.Vertices()[i]
		if math.Abs(float64(v.DstX)-x) > 1e-3 || math.Abs(float64(v.DstY)-y) > 1e-3 {
			t.Errorf("%s vertex at (%v,%v), want (%v,%v)", c, v.DstX, v.DstY, x, y)
		}
	}
}

func TestWarpMeshTexCoordsIgnoreShape(t *testing.T) {
	p := testMeshParams()
	a := NewWarpMesh(4)
	a.Update(IdentityShape(), p)
	b := NewWarpMesh(4)
	b.Update(sampleShape(), p)

	for i := range a.Vertices() {
		va, vb := a.Vertices()[i], b.Vertices()[i]
		if va.SrcX != vb.SrcX || va.SrcY != vb.SrcY {
			t.Fatalf("vertex %d texcoords differ: (%v,%v) vs (%v,%v)", i, va.SrcX, va.SrcY, vb.SrcX, vb.SrcY)
		}
	}
}

func TestWarpMeshAppliesTextureTransform(t *testing.T) {
	p := testMeshParams()
	p.Texture = TextureTransform(0, true, Rect{})
	m := NewWarpMesh(1)
	m.Update(IdentityShape(), p)

	// Flipped vertically: the top-left vertex samples the bottom row.
	v := m.Vertices()[0]
	if v.SrcX != 0 || v.SrcY != 240 {
		t.Errorf("TL src = (%v,%v), want (0,240)", v.SrcX, v.SrcY)
	}
}

func TestWarpMeshUpdateCaches(t *testing.T) {
	p := testMeshParams()
	m := NewWarpMesh(4)
	if !m.Update(sampleShape(), p) {
		t.Fatal("first update should build")
	}
	if m.Update(sampleShape(), p) {
		t.Error("unchanged inputs should not rebuild")
	}
	if !m.Update(IdentityShape(), p) {
		t.Error("new shape should rebuild")
	}
	p.Viewport.Width = 1024
	if !m.Update(IdentityShape(), p) {
		t.Error("resize should rebuild")
	}
	m.Invalidate()
	if !m.Update(IdentityShape(), p) {
		t.Error("invalidated mesh should rebuild")
	}
}

func TestTexCoordFlipsV(t *testing.T) {
	s, tt := TexCoord(IdentityMat4(), 0.25, 0)
	if s != 0.25 || tt != 1 {
		t.Errorf("TexCoord top = (%v,%v), want (0.25,1)", s, tt)
	}
}
