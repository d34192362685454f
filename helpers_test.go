package sprite

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/sprite/asset"
	"github.com/gogpu/sprite/internal/gputest"
	"github.com/gogpu/sprite/render"
)

type plainEntry struct {
	entity    render.Entity
	sprite    Sprite
	transform GlobalTransform
	image     asset.Handle[Image]
}

type atlasEntry struct {
	entity    render.Entity
	sprite    AtlasSprite
	transform GlobalTransform
	atlas     asset.Handle[TextureAtlas]
}

// testScene is a SceneSource over plain slices.
type testScene struct {
	sprites []plainEntry
	atlases []atlasEntry
}

func (s *testScene) addSprite(e render.Entity, sp Sprite, t GlobalTransform, h asset.Handle[Image]) {
	s.sprites = append(s.sprites, plainEntry{e, sp, t, h})
}

func (s *testScene) addAtlasSprite(e render.Entity, sp AtlasSprite, t GlobalTransform, h asset.Handle[TextureAtlas]) {
	s.atlases = append(s.atlases, atlasEntry{e, sp, t, h})
}

func (s *testScene) EachSprite(fn func(render.Entity, Sprite, GlobalTransform, asset.Handle[Image])) {
	for _, x := range s.sprites {
		fn(x.entity, x.sprite, x.transform, x.image)
	}
}

func (s *testScene) EachAtlasSprite(fn func(render.Entity, AtlasSprite, GlobalTransform, asset.Handle[TextureAtlas])) {
	for _, x := range s.atlases {
		fn(x.entity, x.sprite, x.transform, x.atlas)
	}
}

// solidImage returns a w x h image filled with c.
func solidImage(w, h int, c color.RGBA) *Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return &Image{Pixels: img}
}

// createTarget creates a render attachment view on device.
func createTarget(t *testing.T, device hal.Device, w, h uint32) hal.TextureView {
	t.Helper()
	target, err := render.NewTextureTarget(device, w, h, gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatalf("NewTextureTarget failed: %v", err)
	}
	t.Cleanup(target.Destroy)
	return target.View()
}

// stages wires the frame stages by hand, without a Renderer.
type stages struct {
	device *gputest.RecordingDevice
	queue  *gputest.RecordingQueue

	pipelines    *render.PipelineCache
	pipeline     *SpritePipeline
	images       *render.RenderImages
	viewUniforms *render.ViewUniforms
	meta         *SpriteMeta
	bindGroups   *ImageBindGroups
	sprites      *ExtractedSprites
	draw         *DrawSprite
	phase        *render.RenderPhase[render.Transparent2D]
}

const testView render.Entity = 1000

func newStages(t *testing.T) *stages {
	t.Helper()
	device, queue := gputest.NewDevice(t)
	pipelines := render.NewPipelineCache(device)
	pipeline, err := NewSpritePipeline(device, pipelines, gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatalf("NewSpritePipeline failed: %v", err)
	}
	meta, err := NewSpriteMeta(UnitQuad())
	if err != nil {
		t.Fatalf("NewSpriteMeta failed: %v", err)
	}
	s := &stages{
		device:       device,
		queue:        queue,
		pipelines:    pipelines,
		pipeline:     pipeline,
		images:       render.NewRenderImages(device, queue),
		viewUniforms: render.NewViewUniforms(),
		meta:         meta,
		bindGroups:   NewImageBindGroups(),
		sprites:      NewExtractedSprites(0),
		phase:        render.NewRenderPhase[render.Transparent2D](),
	}
	s.draw = &DrawSprite{
		Meta:         meta,
		BindGroups:   s.bindGroups,
		Pipelines:    pipelines,
		ViewUniforms: s.viewUniforms,
		Sprites:      s.sprites,
	}
	return s
}

// extractAndPrepare runs extraction and preparation and uploads the GPU
// images of every extracted sprite.
func (s *stages) extractAndPrepare(t *testing.T, scene SceneSource, assets *Assets) {
	t.Helper()
	Extract(scene, assets, s.sprites)
	for _, sp := range s.sprites.All() {
		img, ok := assets.Image(sp.Image)
		if !ok {
			continue
		}
		if _, err := s.images.Upload(sp.Image, img.Pixels); err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
	}
	if err := s.meta.Prepare(s.device, s.queue, s.sprites); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
}

// writeView stores the uniform of the test view.
func (s *stages) writeView(t *testing.T) {
	t.Helper()
	s.viewUniforms.Clear()
	s.viewUniforms.Push(testView, Camera2D{Width: 800, Height: 600}.ViewUniform())
	if err := s.viewUniforms.Write(s.device, s.queue); err != nil {
		t.Fatalf("view uniforms Write failed: %v", err)
	}
}

func (s *stages) queueParams(phases ...*render.RenderPhase[render.Transparent2D]) QueueParams {
	return QueueParams{
		Device:       s.device,
		Pipeline:     s.pipeline,
		Meta:         s.meta,
		BindGroups:   s.bindGroups,
		Images:       s.images,
		ViewUniforms: s.viewUniforms,
		DrawFunction: 0,
		Sprites:      s.sprites,
		Phases:       phases,
	}
}
