package scene

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"

	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/asset"
	"github.com/gogpu/sprite/render"
)

// World is a donburi world holding sprite entities.
//
// World is not safe for concurrent use. Extraction reads it on the
// caller's goroutine, so mutating it between frames is fine.
type World struct {
	world   donburi.World
	sprites *donburi.Query
	atlases *donburi.Query
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		world: donburi.NewWorld(),
		sprites: donburi.NewQuery(filter.And(
			filter.Contains(Transform, Sprite, ImageRef),
			filter.Not(filter.Contains(Hidden)),
		)),
		atlases: donburi.NewQuery(filter.And(
			filter.Contains(Transform, AtlasSprite, AtlasRef),
			filter.Not(filter.Contains(Hidden)),
		)),
	}
}

// Donburi returns the underlying world, for systems that update
// transforms or add their own components.
func (w *World) Donburi() donburi.World {
	return w.world
}

// SpawnSprite creates a plain sprite entity.
func (w *World) SpawnSprite(s sprite.Sprite, t sprite.GlobalTransform, image asset.Handle[sprite.Image]) donburi.Entity {
	e := w.world.Create(Transform, Sprite, ImageRef)
	entry := w.world.Entry(e)
	Transform.SetValue(entry, t)
	Sprite.SetValue(entry, s)
	ImageRef.SetValue(entry, image)
	return e
}

// SpawnAtlasSprite creates an atlas sprite entity.
func (w *World) SpawnAtlasSprite(s sprite.AtlasSprite, t sprite.GlobalTransform, atlas asset.Handle[sprite.TextureAtlas]) donburi.Entity {
	e := w.world.Create(Transform, AtlasSprite, AtlasRef)
	entry := w.world.Entry(e)
	Transform.SetValue(entry, t)
	AtlasSprite.SetValue(entry, s)
	AtlasRef.SetValue(entry, atlas)
	return e
}

// SetTransform moves e. It reports false when e is gone or has no
// transform.
func (w *World) SetTransform(e donburi.Entity, t sprite.GlobalTransform) bool {
	if !w.world.Valid(e) {
		return false
	}
	entry := w.world.Entry(e)
	if !entry.HasComponent(Transform) {
		return false
	}
	Transform.SetValue(entry, t)
	return true
}

// SetHidden hides or shows e. It reports false when e is gone.
func (w *World) SetHidden(e donburi.Entity, hidden bool) bool {
	if !w.world.Valid(e) {
		return false
	}
	entry := w.world.Entry(e)
	switch has := entry.HasComponent(Hidden); {
	case hidden && !has:
		entry.AddComponent(Hidden)
	case !hidden && has:
		entry.RemoveComponent(Hidden)
	}
	return true
}

// Despawn removes e. It reports false when e was already gone.
func (w *World) Despawn(e donburi.Entity) bool {
	if !w.world.Valid(e) {
		return false
	}
	w.world.Remove(e)
	return true
}

// Clear removes every sprite entity.
func (w *World) Clear() {
	var gone []donburi.Entity
	collect := func(entry *donburi.Entry) { gone = append(gone, entry.Entity()) }
	donburi.NewQuery(filter.Contains(Transform)).Each(w.world, collect)
	for _, e := range gone {
		w.world.Remove(e)
	}
}

// Len returns the number of entities in the world.
func (w *World) Len() int {
	return w.world.Len()
}

// EachSprite implements sprite.SceneSource.
func (w *World) EachSprite(fn func(render.Entity, sprite.Sprite, sprite.GlobalTransform, asset.Handle[sprite.Image])) {
	w.sprites.Each(w.world, func(entry *donburi.Entry) {
		fn(RenderEntity(entry.Entity()), Sprite.GetValue(entry), Transform.GetValue(entry), ImageRef.GetValue(entry))
	})
}

// EachAtlasSprite implements sprite.SceneSource.
func (w *World) EachAtlasSprite(fn func(render.Entity, sprite.AtlasSprite, sprite.GlobalTransform, asset.Handle[sprite.TextureAtlas])) {
	w.atlases.Each(w.world, func(entry *donburi.Entry) {
		fn(RenderEntity(entry.Entity()), AtlasSprite.GetValue(entry), Transform.GetValue(entry), AtlasRef.GetValue(entry))
	})
}

// RenderEntity returns the render identity of e. It includes the
// version bits, so a recycled donburi id never aliases the entity it
// replaced.
func RenderEntity(e donburi.Entity) render.Entity {
	return render.Entity(e)
}

var _ sprite.SceneSource = (*World)(nil)
