// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/sprite/asset"
)

// GPUImage is an image uploaded to the GPU with everything needed to
// sample it.
type GPUImage struct {
	Texture hal.Texture
	View    hal.TextureView
	Sampler hal.Sampler
	Width   uint32
	Height  uint32
}

// ImageOption configures RenderImages.
type ImageOption func(*RenderImages)

// WithImageFormat sets the texture format of uploaded images.
// Default: RGBA8UnormSrgb.
func WithImageFormat(f gputypes.TextureFormat) ImageOption {
	return func(r *RenderImages) {
		r.format = f
	}
}

// WithImageFilter sets the sampler min/mag filter. Default: linear.
func WithImageFilter(f gputypes.FilterMode) ImageOption {
	return func(r *RenderImages) {
		r.filter = f
	}
}

// RenderImages holds the GPU copies of image assets, keyed by asset ID.
//
// An uploaded image is never replaced: bind groups built from its view
// stay valid for the life of the RenderImages.
type RenderImages struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat
	filter gputypes.FilterMode

	mu     sync.RWMutex
	images map[asset.ID]*GPUImage
}

// NewRenderImages creates an empty image set.
func NewRenderImages(device hal.Device, queue hal.Queue, opts ...ImageOption) *RenderImages {
	r := &RenderImages{
		device: device,
		queue:  queue,
		format: gputypes.TextureFormatRGBA8UnormSrgb,
		filter: gputypes.FilterModeLinear,
		images: make(map[asset.ID]*GPUImage),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Upload creates the texture, view and sampler for img and uploads its
// pixels. If id is already uploaded the existing GPUImage is returned.
func (r *RenderImages) Upload(id asset.ID, img *image.RGBA) (*GPUImage, error) {
	if gi, ok := r.Get(id); ok {
		return gi, nil
	}
	if r.device == nil || r.queue == nil {
		return nil, ErrNilDevice
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrEmptyImage, id)
	}
	w, h := uint32(b.Dx()), uint32(b.Dy())

	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "sprite_image",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        r.format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("render: create image texture %s: %w", id, err)
	}

	if err := r.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		tightPixels(img),
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	); err != nil {
		r.device.DestroyTexture(tex)
		return nil, fmt.Errorf("render: upload image %s: %w", id, err)
	}

	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "sprite_image_view",
		Format:        r.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.device.DestroyTexture(tex)
		return nil, fmt.Errorf("render: create image view %s: %w", id, err)
	}

	sampler, err := r.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "sprite_image_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    r.filter,
		MinFilter:    r.filter,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		r.device.DestroyTextureView(view)
		r.device.DestroyTexture(tex)
		return nil, fmt.Errorf("render: create image sampler %s: %w", id, err)
	}

	gi := &GPUImage{Texture: tex, View: view, Sampler: sampler, Width: w, Height: h}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.images[id]; ok {
		// Lost a race with a concurrent Upload of the same id.
		r.destroyImage(gi)
		return existing, nil
	}
	r.images[id] = gi
	slogger().Debug("render: image uploaded", "id", id, "width", w, "height", h)
	return gi, nil
}

// tightPixels returns the pixel bytes of img without row padding.
func tightPixels(img *image.RGBA) []byte {
	b := img.Bounds()
	rowBytes := b.Dx() * 4
	if img.Stride == rowBytes {
		start := img.PixOffset(b.Min.X, b.Min.Y)
		return img.Pix[start : start+rowBytes*b.Dy()]
	}
	out := make([]byte, 0, rowBytes*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		out = append(out, img.Pix[off:off+rowBytes]...)
	}
	return out
}

// Get returns the GPU image for id.
func (r *RenderImages) Get(id asset.ID) (*GPUImage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gi, ok := r.images[id]
	return gi, ok
}

// Len returns the number of uploaded images.
func (r *RenderImages) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.images)
}

func (r *RenderImages) destroyImage(gi *GPUImage) {
	r.device.DestroySampler(gi.Sampler)
	r.device.DestroyTextureView(gi.View)
	r.device.DestroyTexture(gi.Texture)
}

// Destroy releases every uploaded image.
func (r *RenderImages) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.device != nil {
		for _, gi := range r.images {
			r.destroyImage(gi)
		}
	}
	clear(r.images)
}
