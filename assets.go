package sprite

import (
	"fmt"

	"github.com/gogpu/sprite/asset"
)

// AssetSource resolves asset handles. A false result means the asset is
// not loaded yet; the sprite is skipped this frame and retried next frame.
type AssetSource interface {
	Image(id asset.ID) (*Image, bool)
	Atlas(id asset.ID) (*TextureAtlas, bool)
}

// Assets is an in-memory AssetSource backed by asset stores.
type Assets struct {
	Images  *asset.Store[Image]
	Atlases *asset.Store[TextureAtlas]
}

// NewAssets creates empty image and atlas stores.
func NewAssets() *Assets {
	return &Assets{
		Images:  asset.NewStore[Image](),
		Atlases: asset.NewStore[TextureAtlas](),
	}
}

// Image implements AssetSource.
func (a *Assets) Image(id asset.ID) (*Image, bool) {
	return a.Images.Get(id)
}

// Atlas implements AssetSource.
func (a *Assets) Atlas(id asset.ID) (*TextureAtlas, bool) {
	return a.Atlases.Get(id)
}

// AddImage stores img under a new ID.
func (a *Assets) AddImage(img *Image) asset.Handle[Image] {
	return a.Images.Add(img)
}

// AddAtlas stores atlas under a new ID.
func (a *Assets) AddAtlas(atlas *TextureAtlas) asset.Handle[TextureAtlas] {
	return a.Atlases.Add(atlas)
}

// ImageHandle returns the handle a file path loads under. The ID is
// derived from the path, so the handle can be handed out before the file
// is loaded and stays the same across reloads.
func ImageHandle(path string) asset.Handle[Image] {
	return asset.NewHandle[Image](asset.IDFromName(path))
}

// LoadImage decodes the image file at path and stores it under
// ImageHandle(path), replacing a previous load.
func (a *Assets) LoadImage(path string) (asset.Handle[Image], error) {
	h := ImageHandle(path)
	img, err := asset.LoadImageFile(path)
	if err != nil {
		return h, fmt.Errorf("sprite: load image: %w", err)
	}
	a.Images.Insert(h, &Image{Pixels: img})
	slogger().Debug("sprite: image loaded", "path", path, "id", h.ID(),
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return h, nil
}
