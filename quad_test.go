package sprite

import (
	"errors"
	"testing"
)

func TestUnitQuadValid(t *testing.T) {
	q := UnitQuad()
	if err := q.Validate(); err != nil {
		t.Fatalf("UnitQuad().Validate() = %v", err)
	}
	wantIdx := []uint32{0, 2, 1, 0, 3, 2}
	for i, idx := range q.Indices {
		if idx != wantIdx[i] {
			t.Errorf("index %d = %d, want %d", i, idx, wantIdx[i])
		}
	}
	if q.Positions[0] != [3]float32{-0.5, -0.5, 0} || q.Positions[2] != [3]float32{0.5, 0.5, 0} {
		t.Errorf("unexpected corner order: %v", q.Positions)
	}
}

func TestQuadTemplateMalformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*QuadTemplate)
	}{
		{"three positions", func(q *QuadTemplate) { q.Positions = q.Positions[:3] }},
		{"five indices", func(q *QuadTemplate) { q.Indices = q.Indices[:5] }},
		{"index out of range", func(q *QuadTemplate) { q.Indices[4] = 4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := UnitQuad()
			tt.mutate(&q)

			err := q.Validate()
			if !errors.Is(err, ErrMalformedQuad) || !errors.Is(err, ErrInvariant) {
				t.Errorf("Validate() = %v, want ErrMalformedQuad wrapping ErrInvariant", err)
			}
			if _, err := NewSpriteMeta(q); !errors.Is(err, ErrMalformedQuad) {
				t.Errorf("NewSpriteMeta() = %v, want ErrMalformedQuad", err)
			}
		})
	}
}

func TestInvariantErrors(t *testing.T) {
	for _, err := range []error{ErrMissingExtractedSprite, ErrMissingViewUniform, ErrMissingMaterial, ErrMalformedQuad} {
		if !errors.Is(err, ErrInvariant) {
			t.Errorf("%v does not wrap ErrInvariant", err)
		}
	}
	if errors.Is(ErrImageNotUploaded, ErrInvariant) {
		t.Error("ErrImageNotUploaded must not be an invariant violation")
	}
}
