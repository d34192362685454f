package sprite

import (
	"fmt"

	"github.com/gogpu/sprite/asset"
)

// TextureAtlas is one texture holding many sub-images, each addressed by
// the index of its rectangle in Textures.
type TextureAtlas struct {
	Texture  asset.Handle[Image]
	Size     Vec2
	Textures []Rect
}

// NewTextureAtlas creates an empty atlas over a texture of the given size.
func NewTextureAtlas(texture asset.Handle[Image], size Vec2) *TextureAtlas {
	return &TextureAtlas{Texture: texture, Size: size}
}

// AddTexture appends a sub-rectangle and returns its index.
func (a *TextureAtlas) AddTexture(r Rect) uint32 {
	a.Textures = append(a.Textures, r)
	return uint32(len(a.Textures) - 1)
}

// Len returns the number of sub-rectangles.
func (a *TextureAtlas) Len() int {
	return len(a.Textures)
}

// Rect returns the sub-rectangle at index.
func (a *TextureAtlas) Rect(index uint32) (Rect, bool) {
	if int(index) >= len(a.Textures) {
		return Rect{}, false
	}
	return a.Textures[index], true
}

// NewTextureAtlasFromGrid slices a texture into columns x rows tiles of
// tileSize, row by row from the top-left. The atlas size is the grid
// extent.
func NewTextureAtlasFromGrid(texture asset.Handle[Image], tileSize Vec2, columns, rows int) (*TextureAtlas, error) {
	if columns <= 0 || rows <= 0 || tileSize.X <= 0 || tileSize.Y <= 0 {
		return nil, fmt.Errorf("sprite: invalid atlas grid %dx%d of %vx%v tiles",
			columns, rows, tileSize.X, tileSize.Y)
	}
	a := NewTextureAtlas(texture, V2(tileSize.X*float32(columns), tileSize.Y*float32(rows)))
	a.Textures = make([]Rect, 0, columns*rows)
	for y := range rows {
		for x := range columns {
			origin := V2(float32(x)*tileSize.X, float32(y)*tileSize.Y)
			a.AddTexture(Rect{Min: origin, Max: origin.Add(tileSize)})
		}
	}
	return a, nil
}
