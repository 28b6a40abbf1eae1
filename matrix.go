package keystone

// Mat4 is a 4x4 matrix stored column-major, the layout video decoders and
// GL use for texture transforms:
//
//	| m[0] m[4] m[8]  m[12] |
//	| m[1] m[5] m[9]  m[13] |
//	| m[2] m[6] m[10] m[14] |
//	| m[3] m[7] m[11] m[15] |
type Mat4 [16]float64

// IdentityMat4 returns the identity matrix.
func IdentityMat4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Ortho returns an orthographic projection matching the classic
// glOrtho(left, right, bottom, top, near, far).
func Ortho(left, right, bottom, top, near, far float64) Mat4 {
	rw := 1 / (right - left)
	rh := 1 / (top - bottom)
	rd := 1 / (far - near)
	return Mat4{
		2 * rw, 0, 0, 0,
		0, 2 * rh, 0, 0,
		0, 0, -2 * rd, 0,
		-(right + left) * rw, -(top + bottom) * rh, -(far + near) * rd, 1,
	}
}

// Translate4 returns a translation in the XY plane.
func Translate4(tx, ty float64) Mat4 {
	m := IdentityMat4()
	m[12] = tx
	m[13] = ty
	return m
}

// Scale4 returns a scale in the XY plane.
func Scale4(sx, sy float64) Mat4 {
	m := IdentityMat4()
	m[0] = sx
	m[5] = sy
	return m
}

// Mul returns m * o, which applies o first and then m.
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * o[col*4+k]
			}
			r[col*4+row] = sum
		}
	}
	return r
}

// Apply transforms the point (x, y, 0, 1) and returns the resulting x and y.
// Projective matrices are divided through by w.
func (m Mat4) Apply(x, y float64) (float64, float64) {
	rx := m[0]*x + m[4]*y + m[12]
	ry := m[1]*x + m[5]*y + m[13]
	rw := m[3]*x + m[7]*y + m[15]
	if rw != 0 && rw != 1 {
		return rx / rw, ry / rw
	}
	return rx, ry
}

// quarterTurn rotates texture coordinates by 90° counter-clockwise about the
// texture center.
func quarterTurn() Mat4 {
	return Mat4{
		0, 1, 0, 0,
		-1, 0, 0, 0,
		0, 0, 1, 0,
		1, 0, 0, 1,
	}
}

// TextureTransform builds the source-to-display texture transform for a
// decoded frame. rotation is in degrees and snapped to quarter turns, flipV
// mirrors the frame vertically and crop selects a sub-rectangle in normalized
// texture units (origin bottom-left). An empty crop means the whole frame.
func TextureTransform(rotation int, flipV bool, crop Rect) Mat4 {
	m := IdentityMat4()
	if !crop.Empty() {
		m = Translate4(crop.X, crop.Y).Mul(Scale4(crop.Width, crop.Height))
	}
	turns := ((rotation/90)%4 + 4) % 4
	for i := 0; i < turns; i++ {
		m = m.Mul(quarterTurn())
	}
	if flipV {
		m = m.Mul(Translate4(0, 1).Mul(Scale4(1, -1)))
	}
	return m
}
