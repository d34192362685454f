package sprite

import "math"

// Mat4 is a 4x4 transformation matrix stored in column-major order,
// matching the memory layout of a WGSL mat4x4<f32>:
//
//	| M[0]  M[4]  M[8]   M[12] |
//	| M[1]  M[5]  M[9]   M[13] |
//	| M[2]  M[6]  M[10]  M[14] |
//	| M[3]  M[7]  M[11]  M[15] |
//
// Points are column vectors: p' = M * p.
type Mat4 struct {
	M [16]float32
}

// Mat4Identity returns the identity matrix.
func Mat4Identity() Mat4 {
	return Mat4{M: [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// Mat4Translation creates a translation matrix.
func Mat4Translation(t Vec3) Mat4 {
	m := Mat4Identity()
	m.M[12] = t.X
	m.M[13] = t.Y
	m.M[14] = t.Z
	return m
}

// Mat4Scale creates a scaling matrix.
func Mat4Scale(s Vec3) Mat4 {
	return Mat4{M: [16]float32{
		s.X, 0, 0, 0,
		0, s.Y, 0, 0,
		0, 0, s.Z, 0,
		0, 0, 0, 1,
	}}
}

// Mat4RotationZ creates a rotation about the Z axis (angle in radians,
// counter-clockwise when Y points up).
func Mat4RotationZ(angle float32) Mat4 {
	sin, cos := math.Sincos(float64(angle))
	s, c := float32(sin), float32(cos)
	return Mat4{M: [16]float32{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// Mat4Orthographic creates a right-handed orthographic projection mapping
// the given box to WebGPU clip space (x,y in [-1,1], z in [0,1]).
func Mat4Orthographic(left, right, bottom, top, near, far float32) Mat4 {
	rcpWidth := 1 / (right - left)
	rcpHeight := 1 / (top - bottom)
	r := 1 / (near - far)
	return Mat4{M: [16]float32{
		2 * rcpWidth, 0, 0, 0,
		0, 2 * rcpHeight, 0, 0,
		0, 0, r, 0,
		-(left + right) * rcpWidth, -(top + bottom) * rcpHeight, r * near, 1,
	}}
}

// Mul returns m * other (other is applied first).
func (m Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m.M[k*4+row] * other.M[col*4+k]
			}
			out.M[col*4+row] = sum
		}
	}
	return out
}

// TransformPoint3 transforms a point (w=1) and returns the resulting xyz.
// The homogeneous w is not divided out; sprite transforms are affine.
func (m Mat4) TransformPoint3(p Vec3) Vec3 {
	return Vec3{
		X: m.M[0]*p.X + m.M[4]*p.Y + m.M[8]*p.Z + m.M[12],
		Y: m.M[1]*p.X + m.M[5]*p.Y + m.M[9]*p.Z + m.M[13],
		Z: m.M[2]*p.X + m.M[6]*p.Y + m.M[10]*p.Z + m.M[14],
	}
}

// Translation returns the translation component of an affine matrix.
func (m Mat4) Translation() Vec3 {
	return Vec3{X: m.M[12], Y: m.M[13], Z: m.M[14]}
}

// Invert returns the inverse of m.
// If m is singular, the identity matrix is returned.
func (m Mat4) Invert() Mat4 {
	a := m.M
	var inv [16]float32

	inv[0] = a[5]*a[10]*a[15] - a[5]*a[11]*a[14] - a[9]*a[6]*a[15] + a[9]*a[7]*a[14] + a[13]*a[6]*a[11] - a[13]*a[7]*a[10]
	inv[4] = -a[4]*a[10]*a[15] + a[4]*a[11]*a[14] + a[8]*a[6]*a[15] - a[8]*a[7]*a[14] - a[12]*a[6]*a[11] + a[12]*a[7]*a[10]
	inv[8] = a[4]*a[9]*a[15] - a[4]*a[11]*a[13] - a[8]*a[5]*a[15] + a[8]*a[7]*a[13] + a[12]*a[5]*a[11] - a[12]*a[7]*a[9]
	inv[12] = -a[4]*a[9]*a[14] + a[4]*a[10]*a[13] + a[8]*a[5]*a[14] - a[8]*a[6]*a[13] - a[12]*a[5]*a[10] + a[12]*a[6]*a[9]
	inv[1] = -a[1]*a[10]*a[15] + a[1]*a[11]*a[14] + a[9]*a[2]*a[15] - a[9]*a[3]*a[14] - a[13]*a[2]*a[11] + a[13]*a[3]*a[10]
	inv[5] = a[0]*a[10]*a[15] - a[0]*a[11]*a[14] - a[8]*a[2]*a[15] + a[8]*a[3]*a[14] + a[12]*a[2]*a[11] - a[12]*a[3]*a[10]
	inv[9] = -a[0]*a[9]*a[15] + a[0]*a[11]*a[13] + a[8]*a[1]*a[15] - a[8]*a[3]*a[13] - a[12]*a[1]*a[11] + a[12]*a[3]*a[9]
	inv[13] = a[0]*a[9]*a[14] - a[0]*a[10]*a[13] - a[8]*a[1]*a[14] + a[8]*a[2]*a[13] + a[12]*a[1]*a[10] - a[12]*a[2]*a[9]
	inv[2] = a[1]*a[6]*a[15] - a[1]*a[7]*a[14] - a[5]*a[2]*a[15] + a[5]*a[3]*a[14] + a[13]*a[2]*a[7] - a[13]*a[3]*a[6]
	inv[6] = -a[0]*a[6]*a[15] + a[0]*a[7]*a[14] + a[4]*a[2]*a[15] - a[4]*a[3]*a[14] - a[12]*a[2]*a[7] + a[12]*a[3]*a[6]
	inv[10] = a[0]*a[5]*a[15] - a[0]*a[7]*a[13] - a[4]*a[1]*a[15] + a[4]*a[3]*a[13] + a[12]*a[1]*a[7] - a[12]*a[3]*a[5]
	inv[14] = -a[0]*a[5]*a[14] + a[0]*a[6]*a[13] + a[4]*a[1]*a[14] - a[4]*a[2]*a[13] - a[12]*a[1]*a[6] + a[12]*a[2]*a[5]
	inv[3] = -a[1]*a[6]*a[11] + a[1]*a[7]*a[10] + a[5]*a[2]*a[11] - a[5]*a[3]*a[10] - a[9]*a[2]*a[7] + a[9]*a[3]*a[6]
	inv[7] = a[0]*a[6]*a[11] - a[0]*a[7]*a[10] - a[4]*a[2]*a[11] + a[4]*a[3]*a[10] + a[8]*a[2]*a[7] - a[8]*a[3]*a[6]
	inv[11] = -a[0]*a[5]*a[11] + a[0]*a[7]*a[9] + a[4]*a[1]*a[11] - a[4]*a[3]*a[9] - a[8]*a[1]*a[7] + a[8]*a[3]*a[5]
	inv[15] = a[0]*a[5]*a[10] - a[0]*a[6]*a[9] - a[4]*a[1]*a[10] + a[4]*a[2]*a[9] + a[8]*a[1]*a[6] - a[8]*a[2]*a[5]

	det := a[0]*inv[0] + a[1]*inv[4] + a[2]*inv[8] + a[3]*inv[12]
	if det == 0 {
		return Mat4Identity()
	}
	invDet := 1 / det
	for i := range inv {
		inv[i] *= invDet
	}
	return Mat4{M: inv}
}

// IsIdentity returns true if m is exactly the identity matrix.
func (m Mat4) IsIdentity() bool {
	return m == Mat4Identity()
}

// Array returns the column-major elements for GPU upload.
func (m Mat4) Array() [16]float32 {
	return m.M
}
