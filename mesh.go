package keystone

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Grid size limits. uint16 indices cap a grid at 256x256 vertices.
const (
	DefaultGridSize = 16
	MaxGridSize     = 128
)

// MeshParams is everything besides the shape that the warp mesh depends on.
type MeshParams struct {
	Viewport   Viewport
	Projection Mat4
	// Texture is the decoder's texture transform for the current frame.
	Texture Mat4
	// TexWidth and TexHeight are the frame size in pixels.
	TexWidth, TexHeight int
}

// WarpMesh is the tessellated warp quad: a (n+1)x(n+1) vertex grid in
// screen pixels with texture coordinates in frame pixels. With n=1 it is the
// plain four-vertex quad.
type WarpMesh struct {
	n     int
	verts []ebiten.Vertex
	inds  []uint16

	valid  bool
	shape  WarpShape
	params MeshParams
}

// NewWarpMesh returns a mesh with n cells per side, clamped to
// [1, MaxGridSize].
func NewWarpMesh(n int) *WarpMesh {
	n = max(1, min(n, MaxGridSize))
	vside := n + 1
	m := &WarpMesh{
		n:     n,
		verts: make([]ebiten.Vertex, vside*vside),
		inds:  make([]uint16, n*n*6),
	}

	ii := 0
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			tl := uint16(r*vside + c)
			tr := tl + 1
			bl := uint16((r+1)*vside + c)
			br := bl + 1
			m.inds[ii+0] = tl
			m.inds[ii+1] = bl
			m.inds[ii+2] = tr
			m.inds[ii+3] = tr
			m.inds[ii+4] = bl
			m.inds[ii+5] = br
			ii += 6
		}
	}
	for i := range m.verts {
		m.verts[i].ColorR = 1
		m.verts[i].ColorG = 1
		m.verts[i].ColorB = 1
		m.verts[i].ColorA = 1
	}
	return m
}

// GridSize returns the number of cells per side.
func (m *WarpMesh) GridSize() int { return m.n }

// Vertices returns the vertex buffer. It is owned by the mesh.
func (m *WarpMesh) Vertices() []ebiten.Vertex { return m.verts }

// Indices returns the index buffer. It is owned by the mesh.
func (m *WarpMesh) Indices() []uint16 { return m.inds }

// Update rebuilds the vertices for shape when shape or p changed since the
// last call, and reports whether it did.
func (m *WarpMesh) Update(shape WarpShape, p MeshParams) bool {
	if m.valid && m.shape == shape && m.params == p {
		return false
	}
	m.UpdateDisplacer(NewWarp(shape), p)
	m.shape = shape
	return true
}

// UpdateDisplacer rebuilds the vertices for an arbitrary displacement field.
// It always rebuilds and clears the cached shape.
func (m *WarpMesh) UpdateDisplacer(d Displacer, p MeshParams) {
	vside := m.n + 1
	inv := 1 / float64(m.n)
	texW, texH := float64(p.TexWidth), float64(p.TexHeight)

	for r := 0; r < vside; r++ {
		v := float64(r) * inv
		for c := 0; c < vside; c++ {
			u := float64(c) * inv
			x, y := p.Viewport.ToScreen(p.Projection, WarpedPosition(d, u, v))
			s, t := TexCoord(p.Texture, u, v)

			vx := &m.verts[r*vside+c]
			vx.DstX = float32(x)
			vx.DstY = float32(y)
			vx.SrcX = float32(s * texW)
			vx.SrcY = float32((1 - t) * texH)
		}
	}
	m.valid = true
	m.shape = WarpShape{}
	m.params = p
}

// Invalidate forces the next Update to rebuild.
func (m *WarpMesh) Invalidate() { m.valid = false }

// TexCoord returns the texture coordinate of quad point (u, v), v measured
// top-to-bottom, after the decoder transform. Coordinates follow the GL
// convention with t growing upward. The warp never touches them.
func TexCoord(tex Mat4, u, v float64) (s, t float64) {
	return tex.Apply(u, 1-v)
}
