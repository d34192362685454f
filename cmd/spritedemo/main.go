// Command spritedemo renders a sprite scene headlessly on the noop GPU
// backend and logs per-frame statistics.
//
// The scene comes from a TOML file (see defaultConfig for the format) or
// from the built-in layout. With -watch the file is reloaded whenever it
// changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/render"
)

func main() {
	var (
		configPath = flag.String("config", "", "scene TOML file (default: built-in scene)")
		frames     = flag.Int("frames", 0, "frames to render per load (default: from config)")
		watch      = flag.Bool("watch", false, "reload the scene when the config file changes")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "spritedemo",
	})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}
	sprite.SetLogger(slog.New(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, logger, *configPath, *frames, *watch); err != nil {
		logger.Fatal("demo failed", "err", err)
	}
}

func run(ctx context.Context, logger *log.Logger, configPath string, frames int, watch bool) error {
	if watch && configPath == "" {
		return fmt.Errorf("-watch needs -config")
	}

	device, queue, cleanup, err := openNoop()
	if err != nil {
		return err
	}
	defer cleanup()

	d := &demo{logger: logger, device: device, queue: queue, path: configPath, frames: frames}
	defer d.close()

	if err := d.reload(); err != nil {
		return err
	}
	if err := d.render(); err != nil {
		return err
	}
	if !watch {
		return nil
	}
	return d.watch(ctx)
}

// demo owns the renderer of the current layout.
type demo struct {
	logger *log.Logger
	device hal.Device
	queue  hal.Queue
	path   string
	frames int

	cfg      *config
	layout   *layout
	renderer *sprite.Renderer
	target   *render.TextureTarget
}

// reload reads the config and rebuilds the layout and renderer.
func (d *demo) reload() error {
	cfg, err := loadConfig(d.path)
	if err != nil {
		return err
	}
	l, err := buildLayout(cfg, filepath.Dir(d.path))
	if err != nil {
		return err
	}

	filter := gputypes.FilterModeLinear
	if cfg.Renderer.Filter == "nearest" {
		filter = gputypes.FilterModeNearest
	}
	opts := []sprite.Option{
		sprite.WithSamplerFilter(filter),
		sprite.WithInitialCapacity(l.world.Len()),
		sprite.WithClearColor(gputypes.Color{R: 0.1, G: 0.1, B: 0.12, A: 1}),
	}
	if cfg.Renderer.Workers != 0 {
		opts = append(opts, sprite.WithWorkers(cfg.Renderer.Workers))
	}
	if cfg.Renderer.ParallelThreshold != 0 {
		opts = append(opts, sprite.WithParallelThreshold(cfg.Renderer.ParallelThreshold))
	}
	if cfg.Renderer.SPIRV {
		opts = append(opts, sprite.WithPipelineCacheOptions(render.WithSPIRV()))
	}

	r, err := sprite.NewRenderer(d.device, d.queue, opts...)
	if err != nil {
		return err
	}
	t, err := render.NewTextureTarget(d.device, uint32(cfg.Camera.Width), uint32(cfg.Camera.Height),
		gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		r.Close()
		return err
	}

	d.close()
	d.cfg, d.layout, d.renderer, d.target = cfg, l, r, t
	r.AddView(1, sprite.Camera2D{
		Position: sprite.V3(cfg.Camera.X, cfg.Camera.Y, 0),
		Width:    cfg.Camera.Width,
		Height:   cfg.Camera.Height,
	}, t.View())

	d.logger.Info("scene loaded", "entities", l.world.Len(),
		"images", len(cfg.Images), "atlases", len(cfg.Atlases))
	return nil
}

// render runs the configured number of frames.
func (d *demo) render() error {
	n := d.frames
	if n <= 0 {
		n = max(d.cfg.Frames, 1)
	}
	for range n {
		start := time.Now()
		stats, err := d.renderer.RenderFrame(d.layout.world, d.layout.assets)
		if err != nil {
			return err
		}
		d.logger.Info("frame",
			"n", stats.Frame,
			"sprites", stats.Extracted,
			"skipped", stats.Skipped,
			"draws", stats.DrawCalls,
			"commands", stats.Commands,
			"elided", stats.Elided,
			"materials", d.renderer.Materials().Len(),
			"pipeline_ready", stats.PipelineReady,
			"took", time.Since(start).Round(time.Microsecond))
	}
	return nil
}

// watch reloads and re-renders on every write to the config file until
// ctx is done. The directory is watched so editors that replace the file
// are seen too.
func (d *demo) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	path, err := filepath.Abs(d.path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	d.logger.Info("watching", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			if err := d.reload(); err != nil {
				// Keep the previous layout; the file may be mid-edit.
				d.logger.Error("reload failed", "err", err)
				continue
			}
			if err := d.render(); err != nil {
				return err
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			d.logger.Warn("watch error", "err", err)
		}
	}
}

func (d *demo) close() {
	if d.renderer != nil {
		d.renderer.Close()
		d.renderer = nil
	}
	if d.target != nil {
		d.target.Destroy()
		d.target = nil
	}
}

// openNoop opens a device on the noop backend.
func openNoop() (hal.Device, hal.Queue, func(), error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("no noop adapter")
	}
	dev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("open device: %w", err)
	}
	return dev.Device, dev.Queue, func() {
		dev.Device.Destroy()
		instance.Destroy()
	}, nil
}
