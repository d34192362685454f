package sprite

import (
	"github.com/gogpu/sprite/asset"
	"github.com/gogpu/sprite/render"
)

// SceneSource enumerates the drawable sprites of a scene. Implementations
// call fn once per matching entity, in a stable order.
type SceneSource interface {
	EachSprite(fn func(e render.Entity, s Sprite, t GlobalTransform, image asset.Handle[Image]))
	EachAtlasSprite(fn func(e render.Entity, s AtlasSprite, t GlobalTransform, atlas asset.Handle[TextureAtlas]))
}

// ExtractedSprite is the render-side snapshot of one sprite for one frame.
type ExtractedSprite struct {
	Entity    render.Entity
	Transform Mat4
	// Rect is the sampled region in image pixels.
	Rect Rect
	// Image is the texture identity; it does not own the asset.
	Image asset.ID
	// AtlasSize is the full atlas size, valid when HasAtlasSize is set.
	// It replaces Rect.Max as the UV divisor.
	AtlasSize    Vec2
	HasAtlasSize bool
	// BatchIndex is the sprite's quad slot in the shared buffers. It is
	// zero after extraction and assigned by SpriteMeta.Prepare.
	BatchIndex int
}

// uvDivisor returns the size UVs are normalized by.
func (s *ExtractedSprite) uvDivisor() Vec2 {
	if s.HasAtlasSize {
		return s.AtlasSize
	}
	return s.Rect.Max
}

// ExtractedSprites is the set of sprites extracted for the current frame.
type ExtractedSprites struct {
	sprites  []ExtractedSprite
	byEntity map[render.Entity]int
	skipped  int
}

// NewExtractedSprites creates an empty set with room for n sprites.
func NewExtractedSprites(n int) *ExtractedSprites {
	return &ExtractedSprites{
		sprites:  make([]ExtractedSprite, 0, n),
		byEntity: make(map[render.Entity]int, n),
	}
}

// Len returns the number of extracted sprites.
func (s *ExtractedSprites) Len() int {
	return len(s.sprites)
}

// All returns the sprites in extraction order. The slice is owned by s
// and valid until the next Extract.
func (s *ExtractedSprites) All() []ExtractedSprite {
	return s.sprites
}

// Get returns the sprite extracted for entity.
func (s *ExtractedSprites) Get(e render.Entity) (*ExtractedSprite, bool) {
	i, ok := s.byEntity[e]
	if !ok {
		return nil, false
	}
	return &s.sprites[i], true
}

// Skipped returns how many scene sprites the last Extract dropped because
// their assets were not ready.
func (s *ExtractedSprites) Skipped() int {
	return s.skipped
}

// Clear empties the set.
func (s *ExtractedSprites) Clear() {
	s.sprites = s.sprites[:0]
	clear(s.byEntity)
	s.skipped = 0
}

func (s *ExtractedSprites) push(sp ExtractedSprite) {
	if i, ok := s.byEntity[sp.Entity]; ok {
		// An entity carrying both sprite kinds keeps the later record.
		s.sprites[i] = sp
		return
	}
	s.byEntity[sp.Entity] = len(s.sprites)
	s.sprites = append(s.sprites, sp)
}

// Extract replaces the contents of dst with the drawable sprites of scene.
//
// Plain sprites sample their whole image, sized by CustomSize or the
// image's native size. Atlas sprites sample one atlas rectangle and keep
// the atlas size as UV divisor. A sprite is skipped for this frame when its
// image, atlas or atlas texture is not loaded or has no pixels, when its
// atlas index is out of range, or when its rectangle is empty.
func Extract(scene SceneSource, assets AssetSource, dst *ExtractedSprites) {
	dst.Clear()

	scene.EachSprite(func(e render.Entity, s Sprite, t GlobalTransform, h asset.Handle[Image]) {
		img, ok := assets.Image(h.ID())
		if !ok || !img.Ready() {
			dst.skipped++
			return
		}
		size := img.Size()
		if s.CustomSize != nil {
			size = *s.CustomSize
		}
		rect := Rect{Max: size}
		if rect.IsEmpty() {
			dst.skipped++
			return
		}
		dst.push(ExtractedSprite{
			Entity:    e,
			Transform: t.ComputeMatrix(),
			Rect:      rect,
			Image:     h.Weak(),
		})
	})

	scene.EachAtlasSprite(func(e render.Entity, s AtlasSprite, t GlobalTransform, h asset.Handle[TextureAtlas]) {
		atlas, ok := assets.Atlas(h.ID())
		if !ok || atlas == nil {
			dst.skipped++
			return
		}
		if img, ok := assets.Image(atlas.Texture.ID()); !ok || !img.Ready() {
			dst.skipped++
			return
		}
		rect, ok := atlas.Rect(s.Index)
		if !ok || rect.IsEmpty() || atlas.Size.X <= 0 || atlas.Size.Y <= 0 {
			slogger().Debug("sprite: atlas sprite skipped",
				"entity", e, "index", s.Index, "atlas_len", atlas.Len())
			dst.skipped++
			return
		}
		dst.push(ExtractedSprite{
			Entity:       e,
			Transform:    t.ComputeMatrix(),
			Rect:         rect,
			Image:        atlas.Texture.Weak(),
			AtlasSize:    atlas.Size,
			HasAtlasSize: true,
		})
	})

	slogger().Debug("sprite: extracted", "sprites", dst.Len(), "skipped", dst.skipped)
}
