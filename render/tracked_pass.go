// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// maxBindGroups is the WebGPU default limit on bind group slots.
const maxBindGroups = 4

// maxVertexBuffers is the WebGPU default limit on vertex buffer slots.
const maxVertexBuffers = 8

type boundGroup struct {
	group   hal.BindGroup
	offsets []uint32
}

type boundBuffer struct {
	buffer hal.Buffer
	offset uint64
}

type boundIndexBuffer struct {
	buffer hal.Buffer
	format gputypes.IndexFormat
	offset uint64
}

// PassStats counts the commands a TrackedRenderPass forwarded and elided.
type PassStats struct {
	Commands  int
	Elided    int
	DrawCalls int
}

// TrackedRenderPass wraps a hal.RenderPassEncoder and drops state-setting
// commands that would rebind what is already bound. Consecutive sprites
// sharing a texture therefore cost one bind group switch, not one each.
type TrackedRenderPass struct {
	pass hal.RenderPassEncoder

	pipeline      hal.RenderPipeline
	bindGroups    [maxBindGroups]boundGroup
	vertexBuffers [maxVertexBuffers]boundBuffer
	indexBuffer   boundIndexBuffer

	stats PassStats
}

// NewTrackedRenderPass wraps pass.
func NewTrackedRenderPass(pass hal.RenderPassEncoder) *TrackedRenderPass {
	return &TrackedRenderPass{pass: pass}
}

// SetPipeline binds pipeline unless it is already bound.
func (p *TrackedRenderPass) SetPipeline(pipeline hal.RenderPipeline) {
	if p.pipeline != nil && p.pipeline == pipeline {
		p.stats.Elided++
		return
	}
	p.pass.SetPipeline(pipeline)
	p.pipeline = pipeline
	p.stats.Commands++
}

// SetBindGroup binds group at index with the given dynamic offsets unless
// the same group and offsets are already bound there.
func (p *TrackedRenderPass) SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32) {
	if index < maxBindGroups {
		cur := &p.bindGroups[index]
		if cur.group != nil && cur.group == group && slices.Equal(cur.offsets, offsets) {
			p.stats.Elided++
			return
		}
		cur.group = group
		cur.offsets = append(cur.offsets[:0], offsets...)
	}
	p.pass.SetBindGroup(index, group, offsets)
	p.stats.Commands++
}

// SetVertexBuffer binds buffer at slot unless it is already bound.
func (p *TrackedRenderPass) SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64) {
	if slot < maxVertexBuffers {
		cur := &p.vertexBuffers[slot]
		if cur.buffer != nil && cur.buffer == buffer && cur.offset == offset {
			p.stats.Elided++
			return
		}
		*cur = boundBuffer{buffer: buffer, offset: offset}
	}
	p.pass.SetVertexBuffer(slot, buffer, offset)
	p.stats.Commands++
}

// SetIndexBuffer binds the index buffer unless it is already bound.
func (p *TrackedRenderPass) SetIndexBuffer(buffer hal.Buffer, format gputypes.IndexFormat, offset uint64) {
	next := boundIndexBuffer{buffer: buffer, format: format, offset: offset}
	if p.indexBuffer.buffer != nil && p.indexBuffer == next {
		p.stats.Elided++
		return
	}
	p.pass.SetIndexBuffer(buffer, format, offset)
	p.indexBuffer = next
	p.stats.Commands++
}

// DrawIndexed records an indexed draw.
func (p *TrackedRenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
	p.stats.Commands++
	p.stats.DrawCalls++
}

// Stats returns the command counters.
func (p *TrackedRenderPass) Stats() PassStats {
	return p.stats
}

// End finishes the wrapped pass.
func (p *TrackedRenderPass) End() {
	p.pass.End()
}
