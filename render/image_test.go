// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/sprite/asset"
	"github.com/gogpu/sprite/internal/gputest"
)

func TestRenderImagesUploadOnce(t *testing.T) {
	device, queue := gputest.NewDevice(t)
	images := NewRenderImages(device, queue)
	defer images.Destroy()

	id := asset.NewID()
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))

	gi, err := images.Upload(id, img)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if gi.Width != 64 || gi.Height != 32 {
		t.Errorf("size = %dx%d, want 64x32", gi.Width, gi.Height)
	}
	if gi.View == nil || gi.Sampler == nil || gi.Texture == nil {
		t.Error("GPUImage missing texture, view or sampler")
	}

	again, err := images.Upload(id, img)
	if err != nil || again != gi {
		t.Errorf("second Upload = (%p, %v), want cached %p", again, err, gi)
	}
	if device.TextureCount() != 1 || queue.TextureWriteCount() != 1 {
		t.Errorf("textures=%d writes=%d, want 1/1", device.TextureCount(), queue.TextureWriteCount())
	}
	if got, ok := images.Get(id); !ok || got != gi {
		t.Error("Get did not return the uploaded image")
	}
	if _, ok := images.Get(asset.NewID()); ok {
		t.Error("Get succeeded for unknown id")
	}
}

func TestRenderImagesRejectsEmpty(t *testing.T) {
	device, queue := gputest.NewDevice(t)
	images := NewRenderImages(device, queue)

	_, err := images.Upload(asset.NewID(), image.NewRGBA(image.Rectangle{}))
	if !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Upload(empty) = %v, want ErrEmptyImage", err)
	}
	if images.Len() != 0 {
		t.Errorf("Len = %d, want 0", images.Len())
	}
}

func TestTightPixelsSubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)

	px := tightPixels(sub)
	if len(px) != 2*2*4 {
		t.Fatalf("len = %d, want 16", len(px))
	}
	// Row 1, column 1 of a 16-byte stride image starts at 16+4.
	if px[0] != 20 || px[8] != 36 {
		t.Errorf("unexpected bytes: first=%d second-row=%d", px[0], px[8])
	}
}
