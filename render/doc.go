// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render provides the GPU infrastructure the sprite renderer runs on.
//
// The package owns nothing about sprites. It supplies the generic pieces a
// batching renderer needs on top of the wgpu HAL:
//
//   - [BufferVec]: a growable GPU buffer with CPU staging, written in one upload
//   - [PipelineCache]: deferred render pipeline compilation keyed by [PipelineID]
//   - [RenderPhase] and [DrawFunctions]: sorted per-view draw item lists
//   - [TrackedRenderPass]: a render pass wrapper that skips redundant binds
//   - [ViewUniforms]: per-view camera uniforms in one dynamic-offset buffer
//   - [RenderImages]: uploaded textures, views and samplers keyed by asset ID
//   - [TextureTarget]: an offscreen color attachment for headless rendering
//   - [Retired]: replaced GPU objects held until their submissions complete
//
// # Key Principle
//
// The renderer RECEIVES a GPU device from the host application, it does
// NOT create one. [DeviceHandle] is the integration point; [HALFromProvider]
// extracts the HAL device and queue from a provider that exposes them.
//
// # Logging
//
// The package is silent by default. [SetLogger] installs a logger; the
// root sprite package forwards its own logger here.
package render
