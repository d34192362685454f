package scene

import (
	"image"
	"testing"

	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/asset"
	"github.com/gogpu/sprite/render"
)

func testAssets() (*sprite.Assets, asset.Handle[sprite.Image], asset.Handle[sprite.TextureAtlas]) {
	assets := sprite.NewAssets()
	img := assets.AddImage(sprite.NewImage(image.NewRGBA(image.Rect(0, 0, 64, 32))))
	atlas, _ := sprite.NewTextureAtlasFromGrid(img, sprite.V2(16, 16), 4, 2)
	return assets, img, assets.AddAtlas(atlas)
}

func TestWorldSpawnAndExtract(t *testing.T) {
	assets, img, atlas := testAssets()
	w := NewWorld()
	plain := w.SpawnSprite(sprite.Sprite{}, sprite.TransformFromXYZ(10, 0, 0), img)
	tile := w.SpawnAtlasSprite(sprite.AtlasSprite{Index: 5}, sprite.TransformFromXYZ(0, 20, 1), atlas)

	if w.Len() != 2 {
		t.Fatalf("Len = %d, want 2", w.Len())
	}

	out := sprite.NewExtractedSprites(0)
	sprite.Extract(w, assets, out)
	if out.Len() != 2 {
		t.Fatalf("extracted %d sprites, want 2", out.Len())
	}

	s, ok := out.Get(RenderEntity(plain))
	if !ok {
		t.Fatal("plain sprite not extracted")
	}
	if s.Rect != sprite.NewRect(0, 0, 64, 32) || s.Transform.Translation() != sprite.V3(10, 0, 0) {
		t.Errorf("plain sprite = %+v", s)
	}

	a, ok := out.Get(RenderEntity(tile))
	if !ok {
		t.Fatal("atlas sprite not extracted")
	}
	if a.Rect != sprite.NewRect(16, 16, 32, 32) || !a.HasAtlasSize {
		t.Errorf("atlas sprite rect = %v", a.Rect)
	}
}

func TestWorldSetTransform(t *testing.T) {
	_, img, _ := testAssets()
	w := NewWorld()
	e := w.SpawnSprite(sprite.Sprite{}, sprite.IdentityTransform(), img)

	if !w.SetTransform(e, sprite.TransformFromXYZ(5, 6, 7)) {
		t.Fatal("SetTransform failed")
	}
	var got sprite.GlobalTransform
	w.EachSprite(func(_ render.Entity, _ sprite.Sprite, tr sprite.GlobalTransform, _ asset.Handle[sprite.Image]) {
		got = tr
	})
	if got.Translation != sprite.V3(5, 6, 7) {
		t.Errorf("translation = %v", got.Translation)
	}
}

func TestWorldHidden(t *testing.T) {
	_, img, atlas := testAssets()
	w := NewWorld()
	a := w.SpawnSprite(sprite.Sprite{}, sprite.IdentityTransform(), img)
	b := w.SpawnAtlasSprite(sprite.AtlasSprite{}, sprite.IdentityTransform(), atlas)

	w.SetHidden(a, true)
	w.SetHidden(b, true)
	if n := countSprites(w); n != 0 {
		t.Errorf("visible sprites = %d, want 0", n)
	}

	w.SetHidden(a, false)
	if n := countSprites(w); n != 1 {
		t.Errorf("visible sprites = %d, want 1", n)
	}
}

func TestWorldDespawnAndClear(t *testing.T) {
	_, img, atlas := testAssets()
	w := NewWorld()
	e := w.SpawnSprite(sprite.Sprite{}, sprite.IdentityTransform(), img)
	w.SpawnSprite(sprite.WithSize(4, 4), sprite.IdentityTransform(), img)
	w.SpawnAtlasSprite(sprite.AtlasSprite{}, sprite.IdentityTransform(), atlas)

	if !w.Despawn(e) {
		t.Fatal("Despawn failed")
	}
	if w.Despawn(e) || w.SetTransform(e, sprite.IdentityTransform()) || w.SetHidden(e, true) {
		t.Error("operations on a despawned entity should fail")
	}
	if n := countSprites(w); n != 2 {
		t.Errorf("sprites after despawn = %d, want 2", n)
	}

	w.Clear()
	if w.Len() != 0 || countSprites(w) != 0 {
		t.Errorf("Len after Clear = %d", w.Len())
	}
}

func countSprites(w *World) int {
	n := 0
	w.EachSprite(func(render.Entity, sprite.Sprite, sprite.GlobalTransform, asset.Handle[sprite.Image]) { n++ })
	w.EachAtlasSprite(func(render.Entity, sprite.AtlasSprite, sprite.GlobalTransform, asset.Handle[sprite.TextureAtlas]) {
		n++
	})
	return n
}
