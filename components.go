package sprite

// Sprite is a textured quad showing a whole image.
type Sprite struct {
	// CustomSize overrides the image's native pixel size when non-nil.
	// UVs are normalized by this size, so a custom size other than the
	// image size stretches or tiles the sampled region.
	CustomSize *Vec2
}

// WithSize returns a Sprite with the given custom size.
func WithSize(w, h float32) Sprite {
	size := V2(w, h)
	return Sprite{CustomSize: &size}
}

// AtlasSprite is a textured quad showing one sub-rectangle of a
// TextureAtlas.
type AtlasSprite struct {
	Index uint32
}

// GlobalTransform is the world transform of a sprite: scale, then
// rotation about Z, then translation.
type GlobalTransform struct {
	Translation Vec3
	Rotation    float32 // radians, counter-clockwise
	Scale       Vec3
}

// TransformFromXYZ returns a transform at the given position with unit
// scale and no rotation.
func TransformFromXYZ(x, y, z float32) GlobalTransform {
	return GlobalTransform{Translation: V3(x, y, z), Scale: V3(1, 1, 1)}
}

// IdentityTransform returns the transform that leaves points unchanged.
func IdentityTransform() GlobalTransform {
	return TransformFromXYZ(0, 0, 0)
}

// ComputeMatrix returns the transform as a Mat4.
func (t GlobalTransform) ComputeMatrix() Mat4 {
	m := Mat4Translation(t.Translation)
	if t.Rotation != 0 {
		m = m.Mul(Mat4RotationZ(t.Rotation))
	}
	return m.Mul(Mat4Scale(t.Scale))
}
