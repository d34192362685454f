package asset

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	// Standard library decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	// Extended decoders.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyImage is returned when a decoded image has no pixels.
var ErrEmptyImage = errors.New("asset: image has zero size")

// DecodeImage decodes an image in any registered format (PNG, JPEG, GIF,
// BMP, TIFF, WebP) and converts it to non-premultiplied-origin RGBA with
// bounds starting at (0,0). The format name is returned alongside.
func DecodeImage(r io.Reader) (*image.RGBA, string, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("asset: decode image: %w", err)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, format, ErrEmptyImage
	}
	return ToRGBA(src), format, nil
}

// LoadImageFile decodes the image at path.
func LoadImageFile(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("asset: open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := DecodeImage(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// ToRGBA returns src as *image.RGBA with bounds at the origin.
// An *image.RGBA already at the origin is returned as is.
func ToRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	if rgba, ok := src.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(dst, image.Point{}, src, b, draw.Src, nil)
	return dst
}

// Scale resamples src to w x h using Catmull-Rom filtering.
func Scale(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
