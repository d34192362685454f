package sprite

import "fmt"

const (
	quadVertexCount = 4
	quadIndexCount  = 6
)

// QuadTemplate is the local-space quad every sprite is expanded from.
// Positions are in winding order bottom-left, top-left, top-right,
// bottom-right, matching the UV anchors of Rect.
type QuadTemplate struct {
	Positions [][3]float32
	Indices   []uint32
}

// UnitQuad returns the unit quad centered on the origin.
func UnitQuad() QuadTemplate {
	return QuadTemplate{
		Positions: [][3]float32{
			{-0.5, -0.5, 0},
			{-0.5, 0.5, 0},
			{0.5, 0.5, 0},
			{0.5, -0.5, 0},
		},
		Indices: []uint32{0, 2, 1, 0, 3, 2},
	}
}

// Validate reports whether q has four positions and six indices that all
// address one of them.
func (q QuadTemplate) Validate() error {
	if len(q.Positions) != quadVertexCount {
		return fmt.Errorf("%w: %d positions, want %d", ErrMalformedQuad, len(q.Positions), quadVertexCount)
	}
	if len(q.Indices) != quadIndexCount {
		return fmt.Errorf("%w: %d indices, want %d", ErrMalformedQuad, len(q.Indices), quadIndexCount)
	}
	for i, idx := range q.Indices {
		if idx >= quadVertexCount {
			return fmt.Errorf("%w: index %d is %d", ErrMalformedQuad, i, idx)
		}
	}
	return nil
}
