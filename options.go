package sprite

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/sprite/render"
)

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := sprite.NewRenderer(device, queue,
//	    sprite.WithSurfaceFormat(gputypes.TextureFormatRGBA8Unorm),
//	    sprite.WithParallelThreshold(4096))
type Option func(*options)

// options holds optional configuration for Renderer creation.
type options struct {
	surfaceFormat     gputypes.TextureFormat
	initialCapacity   int
	parallelThreshold int
	workers           int
	samplerFilter     gputypes.FilterMode
	clearColor        gputypes.Color
	pipelineOptions   []render.PipelineCacheOption
}

// DefaultParallelThreshold is the sprite count from which vertex generation
// is split across the worker pool.
const DefaultParallelThreshold = 2048

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		surfaceFormat:     gputypes.TextureFormatBGRA8Unorm,
		parallelThreshold: DefaultParallelThreshold,
		samplerFilter:     gputypes.FilterModeLinear,
	}
}

// WithSurfaceFormat sets the color target format of the sprite pipeline.
// Default: BGRA8Unorm. NewRendererFromProvider uses the provider's surface
// format unless this option is given.
func WithSurfaceFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		o.surfaceFormat = f
	}
}

// WithInitialCapacity pre-sizes the CPU staging slices for n sprites.
// GPU buffers are still allocated lazily by the first non-empty frame.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.initialCapacity = n
		}
	}
}

// WithParallelThreshold sets the sprite count from which preparation runs
// on the worker pool. Values below 1 disable parallel preparation.
func WithParallelThreshold(n int) Option {
	return func(o *options) {
		o.parallelThreshold = n
	}
}

// WithWorkers sets the worker pool size. Zero (the default) uses
// GOMAXPROCS; one disables the pool.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.workers = n
		}
	}
}

// WithSamplerFilter sets the min/mag filter of sprite samplers.
// Default: linear. Pixel art usually wants FilterModeNearest.
func WithSamplerFilter(f gputypes.FilterMode) Option {
	return func(o *options) {
		o.samplerFilter = f
	}
}

// WithClearColor sets the color RenderFrame clears each view target to.
// Default: transparent black.
func WithClearColor(c gputypes.Color) Option {
	return func(o *options) {
		o.clearColor = c
	}
}

// WithPipelineCacheOptions passes options to the renderer's pipeline cache.
func WithPipelineCacheOptions(opts ...render.PipelineCacheOption) Option {
	return func(o *options) {
		o.pipelineOptions = append(o.pipelineOptions, opts...)
	}
}
