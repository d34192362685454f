// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/sprite/internal/gputest"
)

func TestNewTextureTarget(t *testing.T) {
	device, _ := gputest.NewDevice(t)

	target, err := NewTextureTarget(device, 320, 200, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatalf("NewTextureTarget failed: %v", err)
	}
	if target.Width() != 320 || target.Height() != 200 {
		t.Errorf("size = %dx%d, want 320x200", target.Width(), target.Height())
	}
	if target.Format() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format() = %v", target.Format())
	}
	if target.View() == nil || target.Texture() == nil {
		t.Fatal("target has no texture or view")
	}
	if device.TextureCount() != 1 {
		t.Errorf("TextureCount = %d, want 1", device.TextureCount())
	}

	target.Destroy()
	target.Destroy()
	if target.View() != nil || target.Texture() != nil {
		t.Error("Destroy left resources behind")
	}
}

func TestNewTextureTargetInvalid(t *testing.T) {
	device, _ := gputest.NewDevice(t)

	if _, err := NewTextureTarget(nil, 1, 1, gputypes.TextureFormatRGBA8Unorm); !errors.Is(err, ErrNilDevice) {
		t.Errorf("nil device: err = %v, want ErrNilDevice", err)
	}
	if _, err := NewTextureTarget(device, 0, 10, gputypes.TextureFormatRGBA8Unorm); err == nil {
		t.Error("zero width should fail")
	}
}
