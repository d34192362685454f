// Package scene stores sprites in a donburi ECS world and exposes them to
// the sprite renderer.
//
// A World is a sprite.SceneSource: pass it to Renderer.RenderFrame or to
// sprite.Extract. Entities are numbered by donburi; the renderer sees them
// as render.Entity values.
//
//	w := scene.NewWorld()
//	e := w.SpawnSprite(sprite.Sprite{}, sprite.TransformFromXYZ(0, 0, 0), img)
//	r.RenderFrame(w, assets)
//	w.Despawn(e)
package scene
