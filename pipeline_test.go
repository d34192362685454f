package sprite

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/sprite/internal/gputest"
	"github.com/gogpu/sprite/render"
)

func TestSpritePipelineDescriptor(t *testing.T) {
	s := newStages(t)
	d := SpritePipelineDescriptor(s.pipeline.ViewLayout, s.pipeline.MaterialLayout, gputypes.TextureFormatRGBA8Unorm)

	if len(d.Layouts) != 2 {
		t.Errorf("layouts = %d, want 2", len(d.Layouts))
	}
	if d.VertexEntryPoint != "vs_main" || d.FragmentEntryPoint != "fs_main" {
		t.Errorf("entry points = %q, %q", d.VertexEntryPoint, d.FragmentEntryPoint)
	}
	if len(d.VertexBuffers) != 1 || d.VertexBuffers[0].ArrayStride != SpriteVertexSize {
		t.Fatalf("vertex buffers = %+v", d.VertexBuffers)
	}
	attrs := d.VertexBuffers[0].Attributes
	if len(attrs) != 2 || attrs[0].Format != gputypes.VertexFormatFloat32x3 ||
		attrs[1].Format != gputypes.VertexFormatFloat32x2 || attrs[1].Offset != 12 {
		t.Errorf("attributes = %+v", attrs)
	}
	if d.Primitive.Topology != gputypes.PrimitiveTopologyTriangleList || d.Primitive.CullMode != gputypes.CullModeNone {
		t.Errorf("primitive = %+v", d.Primitive)
	}
	if len(d.Targets) != 1 || d.Targets[0].Format != gputypes.TextureFormatRGBA8Unorm {
		t.Fatalf("targets = %+v", d.Targets)
	}
	blend := d.Targets[0].Blend
	if blend == nil || blend.Color.SrcFactor != gputypes.BlendFactorSrcAlpha ||
		blend.Color.DstFactor != gputypes.BlendFactorOneMinusSrcAlpha {
		t.Errorf("blend = %+v, want straight alpha", blend)
	}
}

func TestSpritePipelineCompiles(t *testing.T) {
	s := newStages(t)

	if _, ok := s.pipelines.Get(s.pipeline.Pipeline); ok {
		t.Fatal("pipeline ready before Process")
	}
	s.pipelines.Process()
	state, err := s.pipelines.State(s.pipeline.Pipeline)
	if err != nil || state != render.PipelineReady {
		t.Fatalf("state = %v, %v; want Ready", state, err)
	}

	pipelines := s.device.Pipelines()
	if len(pipelines) != 1 || pipelines[0].Label != "sprite_pipeline" {
		t.Errorf("pipelines = %+v", pipelines)
	}
	shaders := s.device.Shaders()
	if len(shaders) != 1 || shaders[0].WGSL != spriteShaderWGSL {
		t.Error("shader module not created from the sprite WGSL")
	}
}

func TestSpriteShaderSPIRV(t *testing.T) {
	spirv, err := render.CompileSPIRV(spriteShaderWGSL)
	if err != nil {
		t.Fatalf("CompileSPIRV failed: %v", err)
	}
	if len(spirv) == 0 || spirv[0] != 0x07230203 {
		t.Error("output is not SPIR-V")
	}
}

func TestNewSpritePipelineNilDevice(t *testing.T) {
	device, _ := gputest.NewDevice(t)
	if _, err := NewSpritePipeline(nil, render.NewPipelineCache(device), gputypes.TextureFormatBGRA8Unorm); err == nil {
		t.Error("NewSpritePipeline(nil) succeeded")
	}
}
