package sprite

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/sprite/render"
)

//go:embed shaders/sprite.wgsl
var spriteShaderWGSL string

// SpritePipeline holds the sprite bind group layouts and the ID of the
// sprite pipeline in the pipeline cache. It never holds the compiled
// pipeline; draws resolve it from the cache each frame.
type SpritePipeline struct {
	ViewLayout     hal.BindGroupLayout
	MaterialLayout hal.BindGroupLayout
	Pipeline       render.PipelineID
}

// NewSpritePipeline creates the bind group layouts and queues the sprite
// pipeline for the target format. Layout creation and descriptor
// validation errors are returned here, once.
func NewSpritePipeline(device hal.Device, cache *render.PipelineCache, format gputypes.TextureFormat) (*SpritePipeline, error) {
	if device == nil {
		return nil, render.ErrNilDevice
	}

	viewLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "sprite_view_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer: &gputypes.BufferBindingLayout{
					Type:             gputypes.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   render.ViewUniformSize,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sprite: create view layout: %w", err)
	}

	materialLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "sprite_material_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		device.DestroyBindGroupLayout(viewLayout)
		return nil, fmt.Errorf("sprite: create material layout: %w", err)
	}

	id, err := cache.Queue(SpritePipelineDescriptor(viewLayout, materialLayout, format))
	if err != nil {
		device.DestroyBindGroupLayout(materialLayout)
		device.DestroyBindGroupLayout(viewLayout)
		return nil, fmt.Errorf("sprite: queue pipeline: %w", err)
	}

	return &SpritePipeline{
		ViewLayout:     viewLayout,
		MaterialLayout: materialLayout,
		Pipeline:       id,
	}, nil
}

// SpritePipelineDescriptor describes the sprite pipeline: one vertex
// buffer of SpriteVertex, view and material bind groups, triangle list
// without culling, and straight alpha blending into a single target.
func SpritePipelineDescriptor(viewLayout, materialLayout hal.BindGroupLayout, format gputypes.TextureFormat) *render.RenderPipelineDescriptor {
	return &render.RenderPipelineDescriptor{
		Label:              "sprite_pipeline",
		Layouts:            []hal.BindGroupLayout{viewLayout, materialLayout},
		ShaderWGSL:         spriteShaderWGSL,
		VertexEntryPoint:   "vs_main",
		FragmentEntryPoint: "fs_main",
		VertexBuffers: []gputypes.VertexBufferLayout{{
			ArrayStride: SpriteVertexSize,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
			},
		}},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeNone,
		},
		Multisample: gputypes.DefaultMultisampleState(),
		Targets: []gputypes.ColorTargetState{{
			Format: format,
			Blend: &gputypes.BlendState{
				Color: gputypes.BlendComponent{
					SrcFactor: gputypes.BlendFactorSrcAlpha,
					DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
					Operation: gputypes.BlendOperationAdd,
				},
				Alpha: gputypes.BlendComponent{
					SrcFactor: gputypes.BlendFactorOne,
					DstFactor: gputypes.BlendFactorOne,
					Operation: gputypes.BlendOperationAdd,
				},
			},
			WriteMask: gputypes.ColorWriteMaskAll,
		}},
	}
}

// Destroy releases the bind group layouts. The pipeline itself belongs to
// the cache.
func (p *SpritePipeline) Destroy(device hal.Device) {
	if device == nil {
		return
	}
	device.DestroyBindGroupLayout(p.MaterialLayout)
	device.DestroyBindGroupLayout(p.ViewLayout)
}
