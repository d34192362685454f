package sprite

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/sprite/asset"
	"github.com/gogpu/sprite/cache"
	"github.com/gogpu/sprite/render"
)

// ImageBindGroups caches one material bind group per texture identity.
// Entries are created on first use and kept for the life of the cache.
type ImageBindGroups struct {
	values *cache.Map[asset.ID, hal.BindGroup]
}

// NewImageBindGroups creates an empty cache.
func NewImageBindGroups() *ImageBindGroups {
	return &ImageBindGroups{
		values: cache.NewMap[asset.ID, hal.BindGroup](func(id asset.ID) uint64 {
			return cache.Bytes16Hasher(id.Bytes())
		}),
	}
}

// Get returns the bind group of image.
func (b *ImageBindGroups) Get(image asset.ID) (hal.BindGroup, bool) {
	return b.values.Get(image)
}

// GetOrCreate returns the bind group of image, creating it over the GPU
// image's view and sampler on first use. The boolean reports a cache hit.
// An image without a GPU copy yields ErrImageNotUploaded and caches nothing.
func (b *ImageBindGroups) GetOrCreate(device hal.Device, layout hal.BindGroupLayout, images *render.RenderImages, image asset.ID) (hal.BindGroup, bool, error) {
	return b.values.GetOrCreate(image, func() (hal.BindGroup, error) {
		gi, ok := images.Get(image)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrImageNotUploaded, image)
		}
		bg, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  "sprite_material_bind_group",
			Layout: layout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: gi.View.NativeHandle()}},
				{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: gi.Sampler.NativeHandle()}},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("sprite: create material bind group %s: %w", image, err)
		}
		slogger().Debug("sprite: material bind group created", "image", image)
		return bg, nil
	})
}

// Len returns the number of cached bind groups.
func (b *ImageBindGroups) Len() int {
	return b.values.Len()
}

// Stats returns the lookup statistics since the last ResetStats.
func (b *ImageBindGroups) Stats() cache.Stats {
	return b.values.Stats()
}

// ResetStats zeroes the lookup statistics; cached bind groups are kept.
func (b *ImageBindGroups) ResetStats() {
	b.values.ResetStats()
}

// Destroy releases every cached bind group. The cache must not be used
// afterwards.
func (b *ImageBindGroups) Destroy(device hal.Device) {
	if device == nil {
		return
	}
	b.values.Range(func(_ asset.ID, bg hal.BindGroup) bool {
		device.DestroyBindGroup(bg)
		return true
	})
}

// QueueParams is the state QueueSprites borrows for one frame.
type QueueParams struct {
	Device       hal.Device
	Pipeline     *SpritePipeline
	Meta         *SpriteMeta
	BindGroups   *ImageBindGroups
	Images       *render.RenderImages
	ViewUniforms *render.ViewUniforms
	DrawFunction render.DrawFunctionID
	Sprites      *ExtractedSprites
	Phases       []*render.RenderPhase[render.Transparent2D]
}

// QueueStats reports what one QueueSprites call did.
type QueueStats struct {
	// Queued counts phase items added across all phases.
	Queued int
	// Skipped counts sprites left out because their image has no GPU copy.
	Skipped int
	// MaterialsCreated counts material bind groups created this frame.
	MaterialsCreated int
	// ViewBindGroupRebuilt reports whether the view bind group was created
	// this frame rather than reused.
	ViewBindGroupRebuilt bool
}

// QueueSprites builds the view bind group and adds one Transparent2D item
// per extracted sprite to every phase.
//
// Nothing is queued while the view uniforms have no binding. The view bind
// group is rebuilt only when the uniform buffer binding changed; the old
// one goes to the SpriteMeta's Retired, if it has one.
func QueueSprites(p QueueParams) (QueueStats, error) {
	var stats QueueStats

	binding, ok := p.ViewUniforms.Binding()
	if !ok {
		slogger().Debug("sprite: no view binding, queue skipped")
		return stats, nil
	}

	m := p.Meta
	if m.viewBindGroup == nil || m.viewBinding != binding {
		bg, err := p.Device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   "sprite_view_bind_group",
			Layout:  p.Pipeline.ViewLayout,
			Entries: []gputypes.BindGroupEntry{binding.Entry()},
		})
		if err != nil {
			return stats, fmt.Errorf("sprite: create view bind group: %w", err)
		}
		m.replaceViewBindGroup(p.Device, bg, binding)
		stats.ViewBindGroupRebuilt = true
	}

	if len(p.Phases) == 0 {
		return stats, nil
	}

	for i := range p.Sprites.All() {
		s := &p.Sprites.All()[i]
		_, hit, err := p.BindGroups.GetOrCreate(p.Device, p.Pipeline.MaterialLayout, p.Images, s.Image)
		if errors.Is(err, ErrImageNotUploaded) {
			slogger().Warn("sprite: image loaded but not on the GPU, sprite skipped",
				"entity", s.Entity, "image", s.Image)
			stats.Skipped++
			continue
		}
		if err != nil {
			return stats, err
		}
		if !hit {
			stats.MaterialsCreated++
		}

		for _, phase := range p.Phases {
			phase.Add(render.Transparent2D{
				SortKey:      s.Image,
				Entity:       s.Entity,
				Pipeline:     p.Pipeline.Pipeline,
				DrawFunction: p.DrawFunction,
			})
			stats.Queued++
		}
	}

	slogger().Debug("sprite: queued", "items", stats.Queued, "skipped", stats.Skipped,
		"materials_created", stats.MaterialsCreated)
	return stats, nil
}
