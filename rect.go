package sprite

// Rect is an axis-aligned rectangle in image pixel space.
// Min is the top-left corner and Max the bottom-right corner
// (image Y grows downward).
type Rect struct {
	Min, Max Vec2
}

// NewRect creates a rectangle from its corner coordinates.
func NewRect(x0, y0, x1, y1 float32) Rect {
	return Rect{Min: Vec2{X: x0, Y: y0}, Max: Vec2{X: x1, Y: y1}}
}

// Width returns the horizontal extent.
func (r Rect) Width() float32 {
	return r.Max.X - r.Min.X
}

// Height returns the vertical extent.
func (r Rect) Height() float32 {
	return r.Max.Y - r.Min.Y
}

// Size returns the (width, height) extent.
func (r Rect) Size() Vec2 {
	return Vec2{X: r.Width(), Y: r.Height()}
}

// IsEmpty returns true if the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y
}

// corners returns the UV anchor points in quad winding order:
// bottom-left, top-left, top-right, bottom-right.
func (r Rect) corners() [4]Vec2 {
	return [4]Vec2{
		{X: r.Min.X, Y: r.Max.Y},
		r.Min,
		{X: r.Max.X, Y: r.Min.Y},
		r.Max,
	}
}
