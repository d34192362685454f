// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ViewUniformSize is the byte size of ViewUniform as laid out in WGSL:
// view_proj mat4x4<f32> (64) + projection mat4x4<f32> (64) +
// world_position vec3<f32> (12) + padding (4).
const ViewUniformSize = 144

// UniformAlignment is the dynamic offset alignment for uniform buffers
// (WebGPU minUniformBufferOffsetAlignment default).
const UniformAlignment = 256

// ViewUniform is the per-view camera data bound at group 0.
// Matrices are column-major.
type ViewUniform struct {
	ViewProj      [16]float32
	Projection    [16]float32
	WorldPosition [3]float32
}

// AppendBytes appends the std140 layout of u, padded to UniformAlignment.
func (u ViewUniform) AppendBytes(dst []byte) []byte {
	start := len(dst)
	for _, f := range u.ViewProj {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	for _, f := range u.Projection {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	for _, f := range u.WorldPosition {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	for len(dst)-start < UniformAlignment {
		dst = append(dst, 0)
	}
	return dst
}

// ViewBinding is the buffer range a view bind group binds. Two bindings
// are equal exactly when a bind group built for one is valid for the other.
type ViewBinding struct {
	Buffer hal.Buffer
	Size   uint64
}

// Entry returns the bind group entry for binding 0.
func (b ViewBinding) Entry() gputypes.BindGroupEntry {
	return gputypes.BindGroupEntry{
		Binding: 0,
		Resource: gputypes.BufferBinding{
			Buffer: b.Buffer.NativeHandle(),
			Offset: 0,
			Size:   b.Size,
		},
	}
}

// ViewUniforms stores the uniforms of every view of a frame in one buffer,
// one aligned slot per view, addressed by dynamic offset.
type ViewUniforms struct {
	uniforms *BufferVec[ViewUniform]
	offsets  map[Entity]uint32
}

// NewViewUniforms creates an empty set.
func NewViewUniforms() *ViewUniforms {
	return &ViewUniforms{
		uniforms: NewBufferVec("view_uniforms", gputypes.BufferUsageUniform,
			UniformAlignment, func(dst []byte, u ViewUniform) []byte { return u.AppendBytes(dst) }),
		offsets: make(map[Entity]uint32),
	}
}

// SetRetired hands a uniform buffer replaced by growth to r.
func (v *ViewUniforms) SetRetired(r *Retired) {
	v.uniforms.SetRetired(r)
}

// Clear forgets the previous frame's views.
func (v *ViewUniforms) Clear() {
	v.uniforms.Clear()
	clear(v.offsets)
}

// Push stores u for view and returns its dynamic offset.
func (v *ViewUniforms) Push(view Entity, u ViewUniform) uint32 {
	offset := uint32(v.uniforms.Push(u) * UniformAlignment)
	v.offsets[view] = offset
	return offset
}

// Write uploads the stored uniforms.
func (v *ViewUniforms) Write(device hal.Device, queue hal.Queue) error {
	return v.uniforms.Write(device, queue)
}

// Offset returns the dynamic offset of view.
func (v *ViewUniforms) Offset(view Entity) (uint32, bool) {
	o, ok := v.offsets[view]
	return o, ok
}

// Len returns the number of views stored this frame.
func (v *ViewUniforms) Len() int {
	return v.uniforms.Len()
}

// Binding returns the buffer binding, or false when no uniforms have been
// uploaded yet.
func (v *ViewUniforms) Binding() (ViewBinding, bool) {
	buf := v.uniforms.Buffer()
	if buf == nil || v.uniforms.IsEmpty() {
		return ViewBinding{}, false
	}
	return ViewBinding{Buffer: buf, Size: ViewUniformSize}, true
}

// Destroy releases the GPU buffer.
func (v *ViewUniforms) Destroy(device hal.Device) {
	v.uniforms.Destroy(device)
	clear(v.offsets)
}
