// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// TextureTarget is an offscreen color attachment: a GPU texture and the
// view render passes draw into.
//
// Use it for headless rendering and tests. Window surfaces come from the
// host application as a hal.TextureView and need no TextureTarget.
type TextureTarget struct {
	device  hal.Device
	texture hal.Texture
	view    hal.TextureView
	width   uint32
	height  uint32
	format  gputypes.TextureFormat
}

// NewTextureTarget creates a width x height render attachment of format.
// The texture can also be copied from, for readback.
func NewTextureTarget(device hal.Device, width, height uint32, format gputypes.TextureFormat) (*TextureTarget, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("render: texture target size %dx%d must be non-zero", width, height)
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "texture_target",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("render: create target texture: %w", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "texture_target_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("render: create target view: %w", err)
	}

	return &TextureTarget{
		device:  device,
		texture: tex,
		view:    view,
		width:   width,
		height:  height,
		format:  format,
	}, nil
}

// Width returns the target width in pixels.
func (t *TextureTarget) Width() uint32 { return t.width }

// Height returns the target height in pixels.
func (t *TextureTarget) Height() uint32 { return t.height }

// Format returns the pixel format.
func (t *TextureTarget) Format() gputypes.TextureFormat { return t.format }

// View returns the texture view to attach to a render pass, or nil after
// Destroy.
func (t *TextureTarget) View() hal.TextureView { return t.view }

// Texture returns the backing texture, or nil after Destroy.
func (t *TextureTarget) Texture() hal.Texture { return t.texture }

// Destroy releases the view and texture. It is safe to call twice.
func (t *TextureTarget) Destroy() {
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.texture != nil {
		t.device.DestroyTexture(t.texture)
		t.texture = nil
	}
}
