// Package gputest provides a headless HAL device and recording decorators
// for GPU tests.
//
// The noop backend discards render pass commands and allocates most
// resources as zero-size values, so tests wrap it: RecordingDevice gives
// every bind group a distinct identity and counts creations, RecordingQueue
// captures buffer writes, and RecordingPass logs render pass commands.
package gputest

import (
	"fmt"
	"sync"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// OpenNoop opens a device and queue on the noop backend.
func OpenNoop() (hal.Device, hal.Queue, func(), error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("gputest: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("gputest: no noop adapter")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("gputest: open device: %w", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup, nil
}

// NewDevice opens a noop device wrapped in recorders. Cleanup is
// registered with t.
func NewDevice(t testing.TB) (*RecordingDevice, *RecordingQueue) {
	t.Helper()
	device, queue, cleanup, err := OpenNoop()
	if err != nil {
		t.Fatalf("OpenNoop failed: %v", err)
	}
	t.Cleanup(cleanup)
	rq := &RecordingQueue{Queue: queue}
	return &RecordingDevice{Device: device, queue: rq}, rq
}

// BindGroup is a bind group with a stable, distinct identity.
type BindGroup struct {
	hal.BindGroup
	ID    int
	Label string
}

// RenderPipeline is a render pipeline with a stable, distinct identity.
type RenderPipeline struct {
	hal.RenderPipeline
	ID    int
	Label string
}

// RecordingDevice decorates a hal.Device.
type RecordingDevice struct {
	hal.Device

	queue *RecordingQueue

	mu                  sync.Mutex
	bindGroups          []*BindGroup
	destroyedBindGroups []hal.BindGroup
	pipelines           []*RenderPipeline
	buffers             int
	destroyedBuffers    int
	textures            int
	shaders             []hal.ShaderSource
	passes              []*RecordingPass
}

// CreateBindGroup wraps the backend bind group and records it.
func (d *RecordingDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	bg, err := d.Device.CreateBindGroup(desc)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	w := &BindGroup{BindGroup: bg, ID: len(d.bindGroups), Label: desc.Label}
	d.bindGroups = append(d.bindGroups, w)
	return w, nil
}

// CreateRenderPipeline wraps the backend pipeline and records it.
func (d *RecordingDevice) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	p, err := d.Device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	w := &RenderPipeline{RenderPipeline: p, ID: len(d.pipelines), Label: desc.Label}
	d.pipelines = append(d.pipelines, w)
	return w, nil
}

// CreateShaderModule records the shader source.
func (d *RecordingDevice) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	d.mu.Lock()
	d.shaders = append(d.shaders, desc.Source)
	d.mu.Unlock()
	return d.Device.CreateShaderModule(desc)
}

// CreateBuffer counts buffer allocations.
func (d *RecordingDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	d.mu.Lock()
	d.buffers++
	d.mu.Unlock()
	return d.Device.CreateBuffer(desc)
}

// DestroyBuffer counts buffer releases.
func (d *RecordingDevice) DestroyBuffer(b hal.Buffer) {
	d.mu.Lock()
	d.destroyedBuffers++
	d.mu.Unlock()
	d.Device.DestroyBuffer(b)
}

// CreateTexture counts texture allocations.
func (d *RecordingDevice) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	d.mu.Lock()
	d.textures++
	d.mu.Unlock()
	return d.Device.CreateTexture(desc)
}

// DestroyBindGroup records bg and unwraps recorded bind groups.
func (d *RecordingDevice) DestroyBindGroup(bg hal.BindGroup) {
	d.mu.Lock()
	d.destroyedBindGroups = append(d.destroyedBindGroups, bg)
	d.mu.Unlock()
	if w, ok := bg.(*BindGroup); ok {
		bg = w.BindGroup
	}
	d.Device.DestroyBindGroup(bg)
}

// DestroyRenderPipeline unwraps recorded pipelines.
func (d *RecordingDevice) DestroyRenderPipeline(p hal.RenderPipeline) {
	if w, ok := p.(*RenderPipeline); ok {
		p = w.RenderPipeline
	}
	d.Device.DestroyRenderPipeline(p)
}

// CreateCommandEncoder returns an encoder whose render passes record.
func (d *RecordingDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &recordingEncoder{CommandEncoder: enc, device: d}, nil
}

// BindGroups returns every bind group created so far.
func (d *RecordingDevice) BindGroups() []*BindGroup {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*BindGroup(nil), d.bindGroups...)
}

// BindGroupCount returns the number of bind groups created with label.
// An empty label counts all of them.
func (d *RecordingDevice) BindGroupCount(label string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, bg := range d.bindGroups {
		if label == "" || bg.Label == label {
			n++
		}
	}
	return n
}

// Pipelines returns every render pipeline created so far.
func (d *RecordingDevice) Pipelines() []*RenderPipeline {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*RenderPipeline(nil), d.pipelines...)
}

// Shaders returns every shader source passed to CreateShaderModule.
func (d *RecordingDevice) Shaders() []hal.ShaderSource {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]hal.ShaderSource(nil), d.shaders...)
}

// BufferCount returns the number of CreateBuffer calls.
func (d *RecordingDevice) BufferCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buffers
}

// DestroyedBindGroups returns the bind groups passed to DestroyBindGroup,
// in call order.
func (d *RecordingDevice) DestroyedBindGroups() []hal.BindGroup {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]hal.BindGroup(nil), d.destroyedBindGroups...)
}

// DestroyedBufferCount returns the number of DestroyBuffer calls.
func (d *RecordingDevice) DestroyedBufferCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.destroyedBuffers
}

// TextureCount returns the number of CreateTexture calls.
func (d *RecordingDevice) TextureCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.textures
}

// Passes returns every render pass begun through this device.
func (d *RecordingDevice) Passes() []*RecordingPass {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*RecordingPass(nil), d.passes...)
}

type recordingEncoder struct {
	hal.CommandEncoder
	device *RecordingDevice
}

func (e *recordingEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	p := NewRecordingPass(e.CommandEncoder.BeginRenderPass(desc))
	e.device.mu.Lock()
	e.device.passes = append(e.device.passes, p)
	e.device.mu.Unlock()
	return p
}

// BufferWrite is one captured Queue.WriteBuffer call.
type BufferWrite struct {
	Buffer hal.Buffer
	Offset uint64
	Data   []byte
}

// RecordingQueue decorates a hal.Queue and captures buffer writes.
type RecordingQueue struct {
	hal.Queue

	mu            sync.Mutex
	writes        []BufferWrite
	textureWrites int
	submits       int

	// completed pins PollCompleted while holdCompletion is set.
	holdCompletion bool
	completed      uint64
}

// WriteBuffer records a copy of data and forwards the write.
func (q *RecordingQueue) WriteBuffer(buffer hal.Buffer, offset uint64, data []byte) error {
	q.mu.Lock()
	q.writes = append(q.writes, BufferWrite{Buffer: buffer, Offset: offset, Data: append([]byte(nil), data...)})
	q.mu.Unlock()
	return q.Queue.WriteBuffer(buffer, offset, data)
}

// WriteTexture counts texture uploads.
func (q *RecordingQueue) WriteTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	q.mu.Lock()
	q.textureWrites++
	q.mu.Unlock()
	return q.Queue.WriteTexture(dst, data, layout, size)
}

// Submit counts submissions.
func (q *RecordingQueue) Submit(cmds []hal.CommandBuffer) (uint64, error) {
	q.mu.Lock()
	q.submits++
	q.mu.Unlock()
	return q.Queue.Submit(cmds)
}

// PollCompleted reports the backend's completed index, or the held index
// while HoldCompletion is in effect.
func (q *RecordingQueue) PollCompleted() uint64 {
	q.mu.Lock()
	hold, completed := q.holdCompletion, q.completed
	q.mu.Unlock()
	if hold {
		return completed
	}
	return q.Queue.PollCompleted()
}

// HoldCompletion makes PollCompleted report index until ReleaseCompletion,
// simulating submissions still in flight.
func (q *RecordingQueue) HoldCompletion(index uint64) {
	q.mu.Lock()
	q.holdCompletion, q.completed = true, index
	q.mu.Unlock()
}

// ReleaseCompletion lets PollCompleted report the backend again.
func (q *RecordingQueue) ReleaseCompletion() {
	q.mu.Lock()
	q.holdCompletion = false
	q.mu.Unlock()
}

// Writes returns the captured buffer writes.
func (q *RecordingQueue) Writes() []BufferWrite {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]BufferWrite(nil), q.writes...)
}

// WritesTo returns the captured writes to buffer.
func (q *RecordingQueue) WritesTo(buffer hal.Buffer) []BufferWrite {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []BufferWrite
	for _, w := range q.writes {
		if w.Buffer == buffer {
			out = append(out, w)
		}
	}
	return out
}

// TextureWriteCount returns the number of WriteTexture calls.
func (q *RecordingQueue) TextureWriteCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.textureWrites
}

// SubmitCount returns the number of Submit calls.
func (q *RecordingQueue) SubmitCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.submits
}

// Reset forgets captured writes and counters.
func (q *RecordingQueue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.writes = nil
	q.textureWrites = 0
	q.submits = 0
}

// Command is one recorded render pass command.
type Command struct {
	Op        string
	Index     uint32
	BindGroup hal.BindGroup
	Pipeline  hal.RenderPipeline
	Buffer    hal.Buffer
	Offsets   []uint32
	Format    gputypes.IndexFormat

	IndexCount, InstanceCount, FirstIndex, FirstInstance uint32
	BaseVertex                                           int32
}

// RecordingPass decorates a hal.RenderPassEncoder and logs commands.
// A nil inner encoder is allowed; commands are then only recorded.
type RecordingPass struct {
	inner    hal.RenderPassEncoder
	Commands []Command
	Ended    bool
}

// NewRecordingPass wraps inner, which may be nil.
func NewRecordingPass(inner hal.RenderPassEncoder) *RecordingPass {
	return &RecordingPass{inner: inner}
}

// Draws returns the recorded DrawIndexed commands.
func (p *RecordingPass) Draws() []Command {
	var out []Command
	for _, c := range p.Commands {
		if c.Op == "DrawIndexed" {
			out = append(out, c)
		}
	}
	return out
}

// Count returns the number of recorded commands with op.
func (p *RecordingPass) Count(op string) int {
	n := 0
	for _, c := range p.Commands {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (p *RecordingPass) record(c Command) { p.Commands = append(p.Commands, c) }

// End implements hal.RenderPassEncoder.
func (p *RecordingPass) End() {
	p.Ended = true
	if p.inner != nil {
		p.inner.End()
	}
}

// SetPipeline implements hal.RenderPassEncoder.
func (p *RecordingPass) SetPipeline(pipeline hal.RenderPipeline) {
	p.record(Command{Op: "SetPipeline", Pipeline: pipeline})
	if p.inner != nil {
		p.inner.SetPipeline(pipeline)
	}
}

// SetBindGroup implements hal.RenderPassEncoder.
func (p *RecordingPass) SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32) {
	p.record(Command{Op: "SetBindGroup", Index: index, BindGroup: group, Offsets: append([]uint32(nil), offsets...)})
	if p.inner != nil {
		p.inner.SetBindGroup(index, group, offsets)
	}
}

// SetVertexBuffer implements hal.RenderPassEncoder.
func (p *RecordingPass) SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64) {
	p.record(Command{Op: "SetVertexBuffer", Index: slot, Buffer: buffer})
	if p.inner != nil {
		p.inner.SetVertexBuffer(slot, buffer, offset)
	}
}

// SetIndexBuffer implements hal.RenderPassEncoder.
func (p *RecordingPass) SetIndexBuffer(buffer hal.Buffer, format gputypes.IndexFormat, offset uint64) {
	p.record(Command{Op: "SetIndexBuffer", Buffer: buffer, Format: format})
	if p.inner != nil {
		p.inner.SetIndexBuffer(buffer, format, offset)
	}
}

// SetViewport implements hal.RenderPassEncoder.
func (p *RecordingPass) SetViewport(x, y, width, height, minDepth, maxDepth float32) {
	p.record(Command{Op: "SetViewport"})
	if p.inner != nil {
		p.inner.SetViewport(x, y, width, height, minDepth, maxDepth)
	}
}

// SetScissorRect implements hal.RenderPassEncoder.
func (p *RecordingPass) SetScissorRect(x, y, width, height uint32) {
	p.record(Command{Op: "SetScissorRect"})
	if p.inner != nil {
		p.inner.SetScissorRect(x, y, width, height)
	}
}

// SetBlendConstant implements hal.RenderPassEncoder.
func (p *RecordingPass) SetBlendConstant(color *gputypes.Color) {
	p.record(Command{Op: "SetBlendConstant"})
	if p.inner != nil {
		p.inner.SetBlendConstant(color)
	}
}

// SetStencilReference implements hal.RenderPassEncoder.
func (p *RecordingPass) SetStencilReference(reference uint32) {
	p.record(Command{Op: "SetStencilReference"})
	if p.inner != nil {
		p.inner.SetStencilReference(reference)
	}
}

// Draw implements hal.RenderPassEncoder.
func (p *RecordingPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.record(Command{Op: "Draw", InstanceCount: instanceCount})
	if p.inner != nil {
		p.inner.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
	}
}

// DrawIndexed implements hal.RenderPassEncoder.
func (p *RecordingPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.record(Command{
		Op:            "DrawIndexed",
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		FirstIndex:    firstIndex,
		BaseVertex:    baseVertex,
		FirstInstance: firstInstance,
	})
	if p.inner != nil {
		p.inner.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
	}
}

// DrawIndirect implements hal.RenderPassEncoder.
func (p *RecordingPass) DrawIndirect(buffer hal.Buffer, offset uint64) {
	p.record(Command{Op: "DrawIndirect", Buffer: buffer})
	if p.inner != nil {
		p.inner.DrawIndirect(buffer, offset)
	}
}

// DrawIndexedIndirect implements hal.RenderPassEncoder.
func (p *RecordingPass) DrawIndexedIndirect(buffer hal.Buffer, offset uint64) {
	p.record(Command{Op: "DrawIndexedIndirect", Buffer: buffer})
	if p.inner != nil {
		p.inner.DrawIndexedIndirect(buffer, offset)
	}
}

// ExecuteBundle implements hal.RenderPassEncoder.
func (p *RecordingPass) ExecuteBundle(bundle hal.RenderBundle) {
	p.record(Command{Op: "ExecuteBundle"})
	if p.inner != nil {
		p.inner.ExecuteBundle(bundle)
	}
}

var (
	_ hal.Device            = (*RecordingDevice)(nil)
	_ hal.Queue             = (*RecordingQueue)(nil)
	_ hal.RenderPassEncoder = (*RecordingPass)(nil)
)
