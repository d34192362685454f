// Package sprite batches 2D sprites into GPU draw calls.
//
// # Overview
//
// sprite turns a scene of textured quads into one shared vertex buffer,
// one shared index buffer and one indexed draw per sprite, using the
// gogpu WebGPU HAL. Sprites sharing a texture share a cached material
// bind group, and the transparency phase sorts them by texture so that
// consecutive draws rebind as little as possible.
//
// # Quick Start
//
//	renderer, err := sprite.NewRenderer(device, queue,
//	    sprite.WithSurfaceFormat(gputypes.TextureFormatBGRA8Unorm))
//	if err != nil {
//	    return err
//	}
//	defer renderer.Close()
//
//	renderer.AddView(1, sprite.Camera2D{Width: 800, Height: 600}, targetView)
//
//	for running {
//	    stats, err := renderer.RenderFrame(world, assets)
//	    ...
//	}
//
// # Frame stages
//
// Each frame runs four stages in order, each reading only the complete
// output of the previous one:
//
//   - Extract: snapshot every drawable sprite from the SceneSource into
//     ExtractedSprites, dropping sprites whose assets are not loaded.
//   - Prepare: expand every extracted sprite into four vertices and six
//     indices of the unit quad and upload both buffers in one write each.
//   - Queue: resolve the material bind group of each sprite's texture and
//     add one Transparent2D item per sprite to every view's phase.
//   - Draw: DrawSprite binds the shared state and issues one DrawIndexed
//     over the sprite's six indices.
//
// The stages are exported separately (Extract, SpriteMeta.Prepare,
// QueueSprites, DrawSprite) so a host with its own frame loop can drive
// them directly.
//
// # Logging
//
// sprite is silent by default. Call SetLogger to receive structured
// diagnostics through log/slog.
package sprite
