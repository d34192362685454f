package sprite

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/sprite/internal/parallel"
	"github.com/gogpu/sprite/render"
)

// View is one camera rendering the sprite scene into its own phase.
type View struct {
	Entity render.Entity
	Camera Camera2D
	// Target is the color attachment RenderFrame draws into. Views with a
	// nil Target are prepared and queued but only drawn through
	// Renderer.Draw.
	Target hal.TextureView
	Phase  *render.RenderPhase[render.Transparent2D]
}

// FrameStats describes one frame.
type FrameStats struct {
	Frame            uint64
	Extracted        int
	Skipped          int
	Queued           int
	MaterialsCreated int
	MaterialHits     int // queued sprites whose material was already cached
	DrawCalls        int
	Commands         int
	Elided           int
	PipelineReady    bool
}

// Renderer drives the sprite stages over a borrowed device and queue.
//
// Renderer is not safe for concurrent use; a frame is a strictly ordered
// sequence of stages.
type Renderer struct {
	device hal.Device
	queue  hal.Queue
	opts   options

	pipelines     *render.PipelineCache
	images        *render.RenderImages
	viewUniforms  *render.ViewUniforms
	pipeline      *SpritePipeline
	meta          *SpriteMeta
	bindGroups    *ImageBindGroups
	sprites       *ExtractedSprites
	drawFunctions *render.DrawFunctions[render.Transparent2D]
	drawSprite    render.DrawFunctionID
	pool          *parallel.WorkerPool

	retired *render.Retired

	views []*View
	frame uint64
	stats FrameStats
}

// NewRenderer creates a renderer and queues the sprite pipeline. The
// pipeline compiles at the end of the first frame, so the first frame
// draws nothing.
func NewRenderer(device hal.Device, queue hal.Queue, opts ...Option) (*Renderer, error) {
	if device == nil || queue == nil {
		return nil, render.ErrNilDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	meta, err := NewSpriteMeta(UnitQuad())
	if err != nil {
		return nil, err
	}
	pipelines := render.NewPipelineCache(device, o.pipelineOptions...)
	pipeline, err := NewSpritePipeline(device, pipelines, o.surfaceFormat)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		device:        device,
		queue:         queue,
		opts:          o,
		pipelines:     pipelines,
		images:        render.NewRenderImages(device, queue, render.WithImageFilter(o.samplerFilter)),
		viewUniforms:  render.NewViewUniforms(),
		pipeline:      pipeline,
		meta:          meta,
		bindGroups:    NewImageBindGroups(),
		sprites:       NewExtractedSprites(o.initialCapacity),
		drawFunctions: render.NewDrawFunctions[render.Transparent2D](),
		retired:       &render.Retired{},
	}
	meta.SetRetired(r.retired)
	r.viewUniforms.SetRetired(r.retired)
	if o.workers != 1 && o.parallelThreshold > 0 {
		r.pool = parallel.NewWorkerPool(o.workers)
		meta.SetParallel(r.pool, o.parallelThreshold)
	}
	r.drawSprite = r.drawFunctions.Add(&DrawSprite{
		Meta:         meta,
		BindGroups:   r.bindGroups,
		Pipelines:    pipelines,
		ViewUniforms: r.viewUniforms,
		Sprites:      r.sprites,
	})

	slogger().Info("sprite: renderer created", "format", o.surfaceFormat.String())
	return r, nil
}

// NewRendererFromProvider creates a renderer on the device of a host
// application. The provider's surface format is the default target
// format; WithSurfaceFormat overrides it.
func NewRendererFromProvider(p render.DeviceHandle, opts ...Option) (*Renderer, error) {
	device, queue, err := render.HALFromProvider(p)
	if err != nil {
		return nil, fmt.Errorf("sprite: %w", err)
	}
	if f := p.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		opts = append([]Option{WithSurfaceFormat(f)}, opts...)
	}
	info := p.AdapterInfo()
	slogger().Info("sprite: using host device", "adapter", info.Name)
	return NewRenderer(device, queue, opts...)
}

// AddView adds a camera. An existing view with the same entity is
// replaced.
func (r *Renderer) AddView(entity render.Entity, camera Camera2D, target hal.TextureView) *View {
	v := &View{
		Entity: entity,
		Camera: camera,
		Target: target,
		Phase:  render.NewRenderPhase[render.Transparent2D](),
	}
	for i, old := range r.views {
		if old.Entity == entity {
			r.views[i] = v
			return v
		}
	}
	r.views = append(r.views, v)
	return v
}

// RemoveView removes the view of entity and reports whether it existed.
func (r *Renderer) RemoveView(entity render.Entity) bool {
	for i, v := range r.views {
		if v.Entity == entity {
			r.views = append(r.views[:i], r.views[i+1:]...)
			return true
		}
	}
	return false
}

// View returns the view of entity.
func (r *Renderer) View(entity render.Entity) (*View, bool) {
	for _, v := range r.views {
		if v.Entity == entity {
			return v, true
		}
	}
	return nil, false
}

// Prepare runs the extract, prepare and queue stages for a new frame and
// sorts every view's phase. Hosts that own their render passes call
// Prepare, then Draw per view, then Submitted with their submission
// index, then EndFrame.
func (r *Renderer) Prepare(scene SceneSource, assets AssetSource) error {
	r.frame++
	r.stats = FrameStats{Frame: r.frame}

	Extract(scene, assets, r.sprites)
	r.stats.Extracted = r.sprites.Len()
	r.stats.Skipped = r.sprites.Skipped()

	if err := r.uploadImages(assets); err != nil {
		return err
	}

	r.viewUniforms.Clear()
	phases := make([]*render.RenderPhase[render.Transparent2D], 0, len(r.views))
	for _, v := range r.views {
		r.viewUniforms.Push(v.Entity, v.Camera.ViewUniform())
		v.Phase.Clear()
		phases = append(phases, v.Phase)
	}
	if err := r.viewUniforms.Write(r.device, r.queue); err != nil {
		return fmt.Errorf("sprite: write view uniforms: %w", err)
	}

	if err := r.meta.Prepare(r.device, r.queue, r.sprites); err != nil {
		return fmt.Errorf("sprite: prepare: %w", err)
	}

	r.bindGroups.ResetStats()
	qs, err := QueueSprites(QueueParams{
		Device:       r.device,
		Pipeline:     r.pipeline,
		Meta:         r.meta,
		BindGroups:   r.bindGroups,
		Images:       r.images,
		ViewUniforms: r.viewUniforms,
		DrawFunction: r.drawSprite,
		Sprites:      r.sprites,
		Phases:       phases,
	})
	if err != nil {
		return err
	}
	r.stats.Queued = qs.Queued
	r.stats.Skipped += qs.Skipped
	r.stats.MaterialsCreated = qs.MaterialsCreated
	r.stats.MaterialHits = int(r.bindGroups.Stats().Hits)

	for _, p := range phases {
		p.Sort()
	}
	return nil
}

// uploadImages gives every extracted sprite's image a GPU copy. Images
// without pixels stay on the CPU; the queue stage skips their sprites.
func (r *Renderer) uploadImages(assets AssetSource) error {
	for _, s := range r.sprites.All() {
		if _, ok := r.images.Get(s.Image); ok {
			continue
		}
		img, ok := assets.Image(s.Image)
		if !ok || img == nil || img.Pixels == nil {
			continue
		}
		_, err := r.images.Upload(s.Image, img.Pixels)
		if errors.Is(err, render.ErrEmptyImage) {
			slogger().Warn("sprite: image has no pixels, not uploaded", "image", s.Image)
			continue
		}
		if err != nil {
			return fmt.Errorf("sprite: upload image: %w", err)
		}
	}
	return nil
}

// Draw renders the prepared phase of view into pass.
func (r *Renderer) Draw(pass hal.RenderPassEncoder, view render.Entity) (render.PassStats, error) {
	v, ok := r.View(view)
	if !ok {
		return render.PassStats{}, fmt.Errorf("%w: unknown view %s", ErrMissingViewUniform, view)
	}
	tracked := render.NewTrackedRenderPass(pass)
	err := v.Phase.Render(tracked, v.Entity, r.drawFunctions)
	ps := tracked.Stats()
	r.stats.DrawCalls += ps.DrawCalls
	r.stats.Commands += ps.Commands
	r.stats.Elided += ps.Elided
	return ps, err
}

// Submitted records the queue submission index of a host-encoded frame
// that drew through Draw. Replaced GPU resources are kept alive until the
// queue reports that submission complete.
func (r *Renderer) Submitted(index uint64) {
	r.retired.Submitted(index)
}

// EndFrame compiles pipelines queued during the frame and destroys
// replaced buffers and bind groups the GPU is done with.
func (r *Renderer) EndFrame() {
	r.pipelines.Process()
	_, r.stats.PipelineReady = r.pipelines.Get(r.pipeline.Pipeline)
	if pending := r.retired.Collect(r.queue.PollCompleted()); pending > 0 {
		slogger().Debug("sprite: retired GPU objects awaiting completion", "count", pending)
	}
}

// RenderFrame runs one full frame: Prepare, one render pass per view with
// a Target, submission, and EndFrame.
func (r *Renderer) RenderFrame(scene SceneSource, assets AssetSource) (FrameStats, error) {
	if err := r.Prepare(scene, assets); err != nil {
		return r.stats, err
	}
	if err := r.encodeViews(); err != nil {
		return r.stats, err
	}
	r.EndFrame()

	slogger().Debug("sprite: frame rendered",
		"frame", r.stats.Frame, "sprites", r.stats.Extracted, "draws", r.stats.DrawCalls)
	return r.stats, nil
}

func (r *Renderer) encodeViews() error {
	var targets []*View
	for _, v := range r.views {
		if v.Target != nil {
			targets = append(targets, v)
		}
	}
	if len(targets) == 0 {
		return nil
	}

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "sprite_encoder",
	})
	if err != nil {
		return fmt.Errorf("sprite: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("sprite_frame"); err != nil {
		return fmt.Errorf("sprite: begin encoding: %w", err)
	}

	for _, v := range targets {
		pass := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: "sprite_pass",
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:       v.Target,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: r.opts.clearColor,
			}},
		})
		_, err := r.Draw(pass, v.Entity)
		pass.End()
		if err != nil {
			encoder.DiscardEncoding()
			return fmt.Errorf("sprite: draw view %s: %w", v.Entity, err)
		}
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("sprite: end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	index, err := r.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("sprite: submit: %w", err)
	}
	r.Submitted(index)
	return nil
}

// Stats returns the statistics of the last frame.
func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// Sprites returns the sprites extracted for the current frame.
func (r *Renderer) Sprites() *ExtractedSprites {
	return r.sprites
}

// Meta returns the shared sprite buffers.
func (r *Renderer) Meta() *SpriteMeta {
	return r.meta
}

// Materials returns the material bind group cache.
func (r *Renderer) Materials() *ImageBindGroups {
	return r.bindGroups
}

// PipelineCache returns the renderer's pipeline cache.
func (r *Renderer) PipelineCache() *render.PipelineCache {
	return r.pipelines
}

// Images returns the GPU copies of image assets.
func (r *Renderer) Images() *render.RenderImages {
	return r.images
}

// Close releases every GPU resource the renderer created. The device and
// queue are borrowed and stay open.
func (r *Renderer) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
	r.retired.Flush()
	r.pipelines.Destroy()
	r.bindGroups.Destroy(r.device)
	r.meta.Destroy(r.device)
	r.viewUniforms.Destroy(r.device)
	r.images.Destroy()
	r.pipeline.Destroy(r.device)
	r.views = nil
}
