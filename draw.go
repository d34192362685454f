package sprite

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/sprite/render"
)

// DrawSprite is the draw function of sprite phase items.
type DrawSprite struct {
	Meta         *SpriteMeta
	BindGroups   *ImageBindGroups
	Pipelines    *render.PipelineCache
	ViewUniforms *render.ViewUniforms
	Sprites      *ExtractedSprites
}

// Draw binds the sprite pipeline, the shared buffers, the view and
// material bind groups, and draws the six indices of item's quad.
//
// A pipeline that is still compiling draws nothing and is not an error.
// A view without uniform offset or an entity without extracted sprite
// means the stages ran out of order and is returned as ErrInvariant.
func (d *DrawSprite) Draw(pass *render.TrackedRenderPass, view render.Entity, item render.Transparent2D) error {
	offset, ok := d.ViewUniforms.Offset(view)
	if !ok {
		return fmt.Errorf("%w: view %s", ErrMissingViewUniform, view)
	}
	s, ok := d.Sprites.Get(item.Entity)
	if !ok {
		return fmt.Errorf("%w: entity %s", ErrMissingExtractedSprite, item.Entity)
	}

	pipeline, ok := d.Pipelines.Get(item.Pipeline)
	if !ok {
		return nil
	}

	viewBindGroup := d.Meta.ViewBindGroup()
	if viewBindGroup == nil {
		return fmt.Errorf("%w: no view bind group for view %s", ErrMissingViewUniform, view)
	}
	material, ok := d.BindGroups.Get(s.Image)
	if !ok {
		return fmt.Errorf("%w: image %s (entity %s)", ErrMissingMaterial, s.Image, item.Entity)
	}

	pass.SetPipeline(pipeline)
	pass.SetVertexBuffer(0, d.Meta.VertexBuffer(), 0)
	pass.SetIndexBuffer(d.Meta.IndexBuffer(), gputypes.IndexFormatUint32, 0)
	pass.SetBindGroup(0, viewBindGroup, []uint32{offset})
	pass.SetBindGroup(1, material, nil)
	pass.DrawIndexed(quadIndexCount, 1, uint32(s.BatchIndex*quadIndexCount), 0, 0)
	return nil
}

var _ render.Draw[render.Transparent2D] = (*DrawSprite)(nil)
