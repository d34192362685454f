// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// PipelineID identifies a pipeline queued in a PipelineCache.
type PipelineID uint32

// PipelineState is the compilation state of a cached pipeline.
type PipelineState int

const (
	// PipelineQueued means the descriptor is accepted but not compiled yet.
	PipelineQueued PipelineState = iota
	// PipelineCompiling means compilation is running in the background.
	PipelineCompiling
	// PipelineReady means the pipeline can be bound.
	PipelineReady
	// PipelineFailed means compilation failed; see PipelineCache.Err.
	PipelineFailed
)

// String returns the state name.
func (s PipelineState) String() string {
	switch s {
	case PipelineQueued:
		return "Queued"
	case PipelineCompiling:
		return "Compiling"
	case PipelineReady:
		return "Ready"
	case PipelineFailed:
		return "Failed"
	default:
		return fmt.Sprintf("PipelineState(%d)", int(s))
	}
}

// RenderPipelineDescriptor describes a render pipeline independently of
// any compiled GPU object. Layouts are borrowed; the cache does not destroy
// them.
type RenderPipelineDescriptor struct {
	Label string

	// Layouts are the bind group layouts, in group index order.
	Layouts []hal.BindGroupLayout

	// ShaderWGSL is the WGSL source holding both entry points.
	ShaderWGSL         string
	VertexEntryPoint   string
	FragmentEntryPoint string

	VertexBuffers []gputypes.VertexBufferLayout
	Primitive     gputypes.PrimitiveState
	DepthStencil  *hal.DepthStencilState
	Multisample   gputypes.MultisampleState
	Targets       []gputypes.ColorTargetState
}

// validate reports descriptor defects that compilation can never fix.
func (d *RenderPipelineDescriptor) validate() error {
	switch {
	case d == nil:
		return fmt.Errorf("%w: nil descriptor", ErrInvalidDescriptor)
	case d.ShaderWGSL == "":
		return fmt.Errorf("%w: %s: empty shader source", ErrInvalidDescriptor, d.Label)
	case d.VertexEntryPoint == "" || d.FragmentEntryPoint == "":
		return fmt.Errorf("%w: %s: missing entry point", ErrInvalidDescriptor, d.Label)
	case len(d.Targets) == 0:
		return fmt.Errorf("%w: %s: no color targets", ErrInvalidDescriptor, d.Label)
	case d.Multisample.Count == 0:
		return fmt.Errorf("%w: %s: multisample count is zero", ErrInvalidDescriptor, d.Label)
	}
	for i, l := range d.Layouts {
		if l == nil {
			return fmt.Errorf("%w: %s: bind group layout %d is nil", ErrInvalidDescriptor, d.Label, i)
		}
	}
	for i, vb := range d.VertexBuffers {
		for _, attr := range vb.Attributes {
			if attr.Offset >= vb.ArrayStride {
				return fmt.Errorf("%w: %s: vertex buffer %d attribute %d offset %d outside stride %d",
					ErrInvalidDescriptor, d.Label, i, attr.ShaderLocation, attr.Offset, vb.ArrayStride)
			}
		}
	}
	return nil
}

// PipelineCacheOption configures a PipelineCache.
type PipelineCacheOption func(*PipelineCache)

// WithSPIRV compiles WGSL to SPIR-V with naga before creating the shader
// module, for backends that do not accept WGSL directly.
func WithSPIRV() PipelineCacheOption {
	return func(c *PipelineCache) {
		c.spirv = true
	}
}

// WithAsyncCompile compiles queued pipelines on background goroutines.
// Get reports false until the compile finishes.
func WithAsyncCompile() PipelineCacheOption {
	return func(c *PipelineCache) {
		c.async = true
	}
}

type cachedPipeline struct {
	desc     *RenderPipelineDescriptor
	state    PipelineState
	err      error
	shader   hal.ShaderModule
	layout   hal.PipelineLayout
	pipeline hal.RenderPipeline
}

// PipelineCache compiles render pipelines out of band.
//
// Queue registers a descriptor and returns an ID immediately. Compilation
// happens in Process, which the frame driver calls once per frame, so a
// pipeline queued during frame N is usable from frame N+1 at the earliest.
// Consumers must treat a missing pipeline as "not ready yet" and skip.
//
// PipelineCache is safe for concurrent use.
type PipelineCache struct {
	device hal.Device

	spirv bool
	async bool

	mu        sync.RWMutex
	pipelines []*cachedPipeline
	wg        sync.WaitGroup
}

// NewPipelineCache creates a pipeline cache bound to device.
func NewPipelineCache(device hal.Device, opts ...PipelineCacheOption) *PipelineCache {
	c := &PipelineCache{device: device}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Queue registers a pipeline descriptor. Invalid descriptors are rejected
// with an error wrapping ErrInvalidDescriptor.
func (c *PipelineCache) Queue(desc *RenderPipelineDescriptor) (PipelineID, error) {
	if err := desc.validate(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	id := PipelineID(len(c.pipelines))
	c.pipelines = append(c.pipelines, &cachedPipeline{desc: desc, state: PipelineQueued})
	slogger().Debug("render: pipeline queued", "label", desc.Label, "id", id)
	return id, nil
}

// Process compiles every queued pipeline. With WithAsyncCompile the
// compiles start in the background and Process returns immediately.
func (c *PipelineCache) Process() {
	c.mu.Lock()
	var pending []*cachedPipeline
	for _, p := range c.pipelines {
		if p.state == PipelineQueued {
			p.state = PipelineCompiling
			pending = append(pending, p)
		}
	}
	c.mu.Unlock()

	for _, p := range pending {
		if c.async {
			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				c.compile(p)
			}()
			continue
		}
		c.compile(p)
	}
}

// Wait blocks until background compiles started by Process finish.
func (c *PipelineCache) Wait() {
	c.wg.Wait()
}

func (c *PipelineCache) compile(p *cachedPipeline) {
	shader, layout, pipeline, err := c.create(p.desc)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		p.state = PipelineFailed
		p.err = err
		slogger().Warn("render: pipeline compile failed", "label", p.desc.Label, "err", err)
		return
	}
	p.shader, p.layout, p.pipeline = shader, layout, pipeline
	p.state = PipelineReady
	slogger().Info("render: pipeline compiled", "label", p.desc.Label)
}

func (c *PipelineCache) create(d *RenderPipelineDescriptor) (hal.ShaderModule, hal.PipelineLayout, hal.RenderPipeline, error) {
	if c.device == nil {
		return nil, nil, nil, ErrNilDevice
	}

	source := hal.ShaderSource{WGSL: d.ShaderWGSL}
	if c.spirv {
		code, err := CompileSPIRV(d.ShaderWGSL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%s: %w", d.Label, err)
		}
		source = hal.ShaderSource{SPIRV: code}
	}

	shader, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  d.Label + "_shader",
		Source: source,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create %s shader: %w", d.Label, err)
	}

	layout, err := c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            d.Label + "_layout",
		BindGroupLayouts: d.Layouts,
	})
	if err != nil {
		c.device.DestroyShaderModule(shader)
		return nil, nil, nil, fmt.Errorf("create %s pipeline layout: %w", d.Label, err)
	}

	pipeline, err := c.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  d.Label,
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: d.VertexEntryPoint,
			Buffers:    d.VertexBuffers,
		},
		Primitive:    d.Primitive,
		DepthStencil: d.DepthStencil,
		Multisample:  d.Multisample,
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: d.FragmentEntryPoint,
			Targets:    d.Targets,
		},
	})
	if err != nil {
		c.device.DestroyPipelineLayout(layout)
		c.device.DestroyShaderModule(shader)
		return nil, nil, nil, fmt.Errorf("create %s pipeline: %w", d.Label, err)
	}
	return shader, layout, pipeline, nil
}

// Get returns the compiled pipeline for id, or false while it is pending
// or failed.
func (c *PipelineCache) Get(id PipelineID) (hal.RenderPipeline, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if int(id) >= len(c.pipelines) {
		return nil, false
	}
	p := c.pipelines[id]
	if p.state != PipelineReady {
		return nil, false
	}
	return p.pipeline, true
}

// State returns the compilation state of id.
func (c *PipelineCache) State(id PipelineID) (PipelineState, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if int(id) >= len(c.pipelines) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownPipeline, id)
	}
	return c.pipelines[id].state, nil
}

// Err returns the compile error of a failed pipeline, or nil.
func (c *PipelineCache) Err(id PipelineID) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if int(id) >= len(c.pipelines) {
		return fmt.Errorf("%w: %d", ErrUnknownPipeline, id)
	}
	return c.pipelines[id].err
}

// Len returns the number of queued pipelines in any state.
func (c *PipelineCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pipelines)
}

// Destroy waits for background compiles and releases every compiled
// pipeline. IDs become unknown afterwards.
func (c *PipelineCache) Destroy() {
	c.wg.Wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device != nil {
		for _, p := range c.pipelines {
			if p.pipeline != nil {
				c.device.DestroyRenderPipeline(p.pipeline)
			}
			if p.layout != nil {
				c.device.DestroyPipelineLayout(p.layout)
			}
			if p.shader != nil {
				c.device.DestroyShaderModule(p.shader)
			}
		}
	}
	c.pipelines = nil
}

// errEmptySPIRV is returned when naga produces no words.
var errEmptySPIRV = errors.New("render: naga produced empty SPIR-V")

// CompileSPIRV compiles WGSL source to SPIR-V words.
func CompileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("render: compile shader: %w", err)
	}
	if len(spirvBytes) < 4 {
		return nil, errEmptySPIRV
	}

	// SPIR-V is little-endian 32-bit words
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}
