package sprite

import (
	"errors"
	"fmt"
)

// ErrInvariant is the umbrella error for stage-ordering bugs and malformed
// configuration that a frame cannot recover from. Every specific invariant
// error below satisfies errors.Is(err, ErrInvariant).
var ErrInvariant = errors.New("sprite: invariant violation")

var (
	// ErrMissingExtractedSprite is returned when a queued draw item names
	// an entity that has no extracted sprite this frame.
	ErrMissingExtractedSprite = fmt.Errorf("%w: entity has no extracted sprite", ErrInvariant)

	// ErrMissingViewUniform is returned when a view is drawn without a
	// view uniform offset or view bind group.
	ErrMissingViewUniform = fmt.Errorf("%w: view has no uniform binding", ErrInvariant)

	// ErrMissingMaterial is returned when a queued sprite's texture has no
	// material bind group at draw time.
	ErrMissingMaterial = fmt.Errorf("%w: texture has no material bind group", ErrInvariant)

	// ErrMalformedQuad is returned for a quad template that is not four
	// positions and six in-range indices.
	ErrMalformedQuad = fmt.Errorf("%w: malformed quad template", ErrInvariant)
)

// ErrImageNotUploaded is returned when a material bind group is requested
// for an image that has no GPU copy. Queueing skips such sprites.
var ErrImageNotUploaded = errors.New("sprite: image not uploaded to the GPU")
