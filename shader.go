package keystone

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// pictureShaderSrc samples the video frame with bilinear filtering and
// applies brightness and contrast. imageSrc0At samples nearest, so the four
// neighbours are blended here. Ebitengine colors are premultiplied; the
// adjustment runs on straight alpha.
const pictureShaderSrc = `//kage:unit pixels
package main

var Brightness float
var Contrast float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	origin := imageSrc0Origin()
	p := src - origin - 0.5
	f := fract(p)
	base := floor(p) + origin + 0.5
	c00 := imageSrc0At(base)
	c10 := imageSrc0At(base + vec2(1, 0))
	c01 := imageSrc0At(base + vec2(0, 1))
	c11 := imageSrc0At(base + vec2(1, 1))
	c := mix(mix(c00, c10, f.x), mix(c01, c11, f.x), f.y)
	if c.a > 0 {
		c.rgb /= c.a
	}
	rgb := (c.rgb-0.5)*Contrast + 0.5 + Brightness
	rgb = clamp(rgb, 0, 1)
	return vec4(rgb*c.a, c.a) * color
}
`

// PictureShader draws the warp mesh with the frame as source. The Kage
// program is compiled on first use; if compilation fails the failure is
// logged once and frames are drawn with plain DrawTriangles instead.
type PictureShader struct {
	// Brightness is added to each channel, in [-1, 1].
	Brightness float64
	// Contrast scales each channel about mid-gray. 1 is neutral.
	Contrast float64
	// Disabled forces the DrawTriangles path.
	Disabled bool

	compile  func([]byte) (*ebiten.Shader, error)
	shader   *ebiten.Shader
	tried    bool
	uniforms map[string]any
	shaderOp ebiten.DrawTrianglesShaderOptions
	triOp    ebiten.DrawTrianglesOptions
}

// NewPictureShader returns a neutral picture shader.
func NewPictureShader() *PictureShader {
	return &PictureShader{
		Contrast: 1,
		compile:  ebiten.NewShader,
		uniforms: make(map[string]any, 2),
	}
}

// ensure compiles the shader once and returns nil on failure.
func (p *PictureShader) ensure() *ebiten.Shader {
	if p.tried {
		return p.shader
	}
	p.tried = true
	s, err := p.compile([]byte(pictureShaderSrc))
	if err != nil {
		logFor("renderer").WithError(err).Error("picture shader failed to compile, using plain textured draw")
		return nil
	}
	p.shader = s
	return s
}

// Active reports whether frames are drawn through the Kage program.
func (p *PictureShader) Active() bool {
	return !p.Disabled && p.ensure() != nil
}

// Draw renders the mesh into dst sampling src.
func (p *PictureShader) Draw(dst, src *ebiten.Image, verts []ebiten.Vertex, inds []uint16) {
	if !p.Active() {
		p.triOp.Filter = ebiten.FilterLinear
		p.triOp.Address = ebiten.AddressClampToZero
		dst.DrawTriangles(verts, inds, src, &p.triOp)
		return
	}
	p.uniforms["Brightness"] = float32(p.Brightness)
	p.uniforms["Contrast"] = float32(p.Contrast)
	p.shaderOp.Images[0] = src
	p.shaderOp.Uniforms = p.uniforms
	dst.DrawTrianglesShader(verts, inds, p.shader, &p.shaderOp)
}
