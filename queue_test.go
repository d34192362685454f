package sprite

import (
	"errors"
	"image/color"
	"testing"

	"github.com/gogpu/sprite/asset"
	"github.com/gogpu/sprite/render"
)

func TestQueueReusesMaterialPerTexture(t *testing.T) {
	s := newStages(t)
	assets := NewAssets()
	img := assets.AddImage(solidImage(16, 16, color.RGBA{255, 0, 0, 255}))
	scene := &testScene{}
	for i := range 5 {
		scene.addSprite(render.Entity(i+1), Sprite{}, TransformFromXYZ(float32(i)*20, 0, 0), img)
	}
	s.extractAndPrepare(t, scene, assets)
	s.writeView(t)

	other := render.NewRenderPhase[render.Transparent2D]()
	stats, err := QueueSprites(s.queueParams(s.phase, other))
	if err != nil {
		t.Fatalf("QueueSprites failed: %v", err)
	}

	if n := s.device.BindGroupCount("sprite_material_bind_group"); n != 1 {
		t.Errorf("material bind groups created = %d, want 1", n)
	}
	if stats.MaterialsCreated != 1 || stats.Queued != 10 || stats.Skipped != 0 {
		t.Errorf("stats = %+v, want 1 material and 10 items", stats)
	}
	if s.phase.Len() != 5 || other.Len() != 5 {
		t.Errorf("phase lengths = %d, %d; want 5, 5", s.phase.Len(), other.Len())
	}
	for _, item := range s.phase.Items() {
		if item.SortKey != img.Weak() || item.Pipeline != s.pipeline.Pipeline {
			t.Errorf("item %+v has wrong sort key or pipeline", item)
		}
	}
	if s.bindGroups.Len() != 1 {
		t.Errorf("cache Len = %d, want 1", s.bindGroups.Len())
	}
}

func TestQueueMaterialPerDistinctTexture(t *testing.T) {
	s := newStages(t)
	scene, assets := gridScene(12, 3)
	s.extractAndPrepare(t, scene, assets)
	s.writeView(t)

	stats, err := QueueSprites(s.queueParams(s.phase))
	if err != nil {
		t.Fatalf("QueueSprites failed: %v", err)
	}
	if stats.MaterialsCreated != 3 || s.device.BindGroupCount("sprite_material_bind_group") != 3 {
		t.Errorf("materials = %d (created %d), want 3",
			stats.MaterialsCreated, s.device.BindGroupCount("sprite_material_bind_group"))
	}

	// A second frame hits the cache for every texture.
	s.phase.Clear()
	s.extractAndPrepare(t, scene, assets)
	s.writeView(t)
	stats, err = QueueSprites(s.queueParams(s.phase))
	if err != nil {
		t.Fatalf("second QueueSprites failed: %v", err)
	}
	if stats.MaterialsCreated != 0 || s.device.BindGroupCount("sprite_material_bind_group") != 3 {
		t.Errorf("second frame created %d materials", stats.MaterialsCreated)
	}
	if st := s.bindGroups.Stats(); st.Hits == 0 {
		t.Errorf("cache stats = %+v, want hits", st)
	}
}

func TestQueueWithoutViewBinding(t *testing.T) {
	s := newStages(t)
	scene, assets := gridScene(4, 1)
	s.extractAndPrepare(t, scene, assets)

	stats, err := QueueSprites(s.queueParams(s.phase))
	if err != nil {
		t.Fatalf("QueueSprites failed: %v", err)
	}
	if stats != (QueueStats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
	if s.phase.Len() != 0 || s.meta.ViewBindGroup() != nil {
		t.Error("queue without view binding produced state")
	}
	if s.device.BindGroupCount("") != 0 {
		t.Errorf("bind groups created = %d, want 0", s.device.BindGroupCount(""))
	}
}

func TestQueueViewBindGroupLifecycle(t *testing.T) {
	s := newStages(t)
	scene, assets := gridScene(3, 1)

	s.extractAndPrepare(t, scene, assets)
	s.writeView(t)
	stats, err := QueueSprites(s.queueParams(s.phase))
	if err != nil {
		t.Fatal(err)
	}
	if !stats.ViewBindGroupRebuilt {
		t.Error("first frame should build the view bind group")
	}
	first := s.meta.ViewBindGroup()

	s.phase.Clear()
	s.writeView(t)
	stats, err = QueueSprites(s.queueParams(s.phase))
	if err != nil {
		t.Fatal(err)
	}
	if stats.ViewBindGroupRebuilt || s.meta.ViewBindGroup() != first {
		t.Error("unchanged view binding rebuilt the bind group")
	}
	if n := s.device.BindGroupCount("sprite_view_bind_group"); n != 1 {
		t.Errorf("view bind groups = %d, want 1", n)
	}

	// More views than the uniform buffer holds reallocates it.
	s.phase.Clear()
	s.viewUniforms.Clear()
	for v := range 3 {
		s.viewUniforms.Push(render.Entity(2000+v), Camera2D{Width: 10, Height: 10}.ViewUniform())
	}
	if err := s.viewUniforms.Write(s.device, s.queue); err != nil {
		t.Fatal(err)
	}
	retired := &render.Retired{}
	s.meta.SetRetired(retired)
	retired.Submitted(5)
	stats, err = QueueSprites(s.queueParams(s.phase))
	if err != nil {
		t.Fatal(err)
	}
	if !stats.ViewBindGroupRebuilt || s.meta.ViewBindGroup() == first {
		t.Error("changed view binding did not rebuild the bind group")
	}
	if n := s.device.BindGroupCount("sprite_view_bind_group"); n != 2 {
		t.Errorf("view bind groups = %d, want 2", n)
	}

	// The replaced group outlives every submission that may bind it.
	if len(s.device.DestroyedBindGroups()) != 0 {
		t.Fatal("replaced view bind group destroyed while submission 5 may be in flight")
	}
	if pending := retired.Collect(4); pending != 1 {
		t.Errorf("pending after completion 4 = %d, want 1", pending)
	}
	if len(s.device.DestroyedBindGroups()) != 0 {
		t.Error("replaced view bind group destroyed before submission 5 completed")
	}
	if pending := retired.Collect(5); pending != 0 {
		t.Errorf("pending after completion 5 = %d, want 0", pending)
	}
	if got := s.device.DestroyedBindGroups(); len(got) != 1 || got[0] != first {
		t.Errorf("destroyed bind groups = %v, want only the replaced one", got)
	}
}

func TestQueueSkipsImageWithoutGPUCopy(t *testing.T) {
	s := newStages(t)
	assets := NewAssets()
	uploaded := assets.AddImage(solidImage(8, 8, color.RGBA{A: 255}))
	pending := assets.AddImage(solidImage(8, 8, color.RGBA{R: 255, A: 255}))
	scene := &testScene{}
	scene.addSprite(1, Sprite{}, IdentityTransform(), uploaded)
	scene.addSprite(2, Sprite{}, IdentityTransform(), pending)

	Extract(scene, assets, s.sprites)
	img, _ := assets.Image(uploaded.ID())
	if _, err := s.images.Upload(uploaded.ID(), img.Pixels); err != nil {
		t.Fatal(err)
	}
	if err := s.meta.Prepare(s.device, s.queue, s.sprites); err != nil {
		t.Fatal(err)
	}
	s.writeView(t)

	stats, err := QueueSprites(s.queueParams(s.phase))
	if err != nil {
		t.Fatalf("QueueSprites failed: %v", err)
	}
	if stats.Skipped != 1 || stats.Queued != 1 {
		t.Errorf("stats = %+v, want 1 queued and 1 skipped", stats)
	}
	if _, ok := s.bindGroups.Get(pending.ID()); ok {
		t.Error("material cached for an image without GPU copy")
	}
	if s.phase.Items()[0].Entity != 1 {
		t.Errorf("queued entity = %s, want 1", s.phase.Items()[0].Entity)
	}
}

func TestQueueZeroSprites(t *testing.T) {
	s := newStages(t)
	s.extractAndPrepare(t, &testScene{}, NewAssets())
	s.writeView(t)

	stats, err := QueueSprites(s.queueParams(s.phase))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Queued != 0 || s.phase.Len() != 0 {
		t.Errorf("zero sprites queued %d items", stats.Queued)
	}
	if s.device.BindGroupCount("sprite_material_bind_group") != 0 {
		t.Error("zero sprites created material bind groups")
	}
}

func TestImageBindGroupsNotUploaded(t *testing.T) {
	s := newStages(t)
	_, _, err := s.bindGroups.GetOrCreate(s.device, s.pipeline.MaterialLayout, s.images, asset.NewID())
	if !errors.Is(err, ErrImageNotUploaded) {
		t.Fatalf("GetOrCreate = %v, want ErrImageNotUploaded", err)
	}
	if s.bindGroups.Len() != 0 {
		t.Errorf("Len = %d after failure, want 0", s.bindGroups.Len())
	}
}
