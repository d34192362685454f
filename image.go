package sprite

import (
	"image"

	"github.com/gogpu/sprite/asset"
)

// Image is a loaded image asset in CPU memory.
type Image struct {
	Pixels *image.RGBA
}

// NewImage wraps decoded pixels. Images that are not origin-based RGBA are
// converted.
func NewImage(img image.Image) *Image {
	return &Image{Pixels: asset.ToRGBA(img)}
}

// Size returns the native pixel size of the image, or zero when it has no
// pixels.
func (i *Image) Size() Vec2 {
	if i == nil || i.Pixels == nil {
		return Vec2{}
	}
	b := i.Pixels.Bounds()
	return V2(float32(b.Dx()), float32(b.Dy()))
}

// Ready reports whether the image has pixels that can be uploaded.
func (i *Image) Ready() bool {
	return i != nil && i.Pixels != nil && !i.Pixels.Bounds().Empty()
}
