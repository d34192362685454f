package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// config is the TOML layout of a demo scene.
type config struct {
	Frames   int            `toml:"frames"`
	Renderer rendererConfig `toml:"renderer"`
	Camera   cameraConfig   `toml:"camera"`

	Images       []imageConfig       `toml:"images"`
	Atlases      []atlasConfig       `toml:"atlases"`
	Sprites      []spriteConfig      `toml:"sprites"`
	AtlasSprites []atlasSpriteConfig `toml:"atlas_sprites"`
}

type rendererConfig struct {
	Workers           int    `toml:"workers"`
	ParallelThreshold int    `toml:"parallel_threshold"`
	Filter            string `toml:"filter"`
	SPIRV             bool   `toml:"spirv"`
}

type cameraConfig struct {
	X      float32 `toml:"x"`
	Y      float32 `toml:"y"`
	Width  float32 `toml:"width"`
	Height float32 `toml:"height"`
}

// imageConfig names an image file, or a generated checkerboard when Path
// is empty.
type imageConfig struct {
	Name  string `toml:"name"`
	Path  string `toml:"path"`
	Size  int    `toml:"size"`
	Cells int    `toml:"cells"`
}

type atlasConfig struct {
	Name       string  `toml:"name"`
	Image      string  `toml:"image"`
	TileWidth  float32 `toml:"tile_width"`
	TileHeight float32 `toml:"tile_height"`
	Columns    int     `toml:"columns"`
	Rows       int     `toml:"rows"`
}

type transformConfig struct {
	X        float32 `toml:"x"`
	Y        float32 `toml:"y"`
	Z        float32 `toml:"z"`
	Rotation float32 `toml:"rotation"`
	Scale    float32 `toml:"scale"`
}

type spriteConfig struct {
	transformConfig
	Image  string  `toml:"image"`
	Width  float32 `toml:"width"`
	Height float32 `toml:"height"`
	// Grid repeats the sprite Grid x Grid times, Spacing apart.
	Grid    int     `toml:"grid"`
	Spacing float32 `toml:"spacing"`
}

type atlasSpriteConfig struct {
	transformConfig
	Atlas string `toml:"atlas"`
	Index uint32 `toml:"index"`
}

const defaultConfig = `
frames = 3

[renderer]
filter = "nearest"

[camera]
width = 1280
height = 720

[[images]]
name = "checker"
size = 64
cells = 8

[[atlases]]
name = "tiles"
image = "checker"
tile_width = 16
tile_height = 16
columns = 4
rows = 4

[[sprites]]
image = "checker"
grid = 40
spacing = 24
x = -480
y = -300

[[atlas_sprites]]
atlas = "tiles"
index = 5
z = 10
scale = 4
`

// loadConfig reads path, or the built-in scene when path is empty.
// Unknown keys are rejected.
func loadConfig(path string) (*config, error) {
	data := []byte(defaultConfig)
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, err
		}
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*config, error) {
	cfg := &config{
		Frames: 1,
		Camera: cameraConfig{Width: 800, Height: 600},
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *config) validate() error {
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("camera size %vx%v must be positive", c.Camera.Width, c.Camera.Height)
	}
	switch c.Renderer.Filter {
	case "", "linear", "nearest":
	default:
		return fmt.Errorf("unknown filter %q", c.Renderer.Filter)
	}

	images := make(map[string]bool, len(c.Images))
	for _, img := range c.Images {
		if img.Name == "" {
			return fmt.Errorf("image without name")
		}
		if images[img.Name] {
			return fmt.Errorf("duplicate image %q", img.Name)
		}
		if img.Path == "" && img.Size <= 0 {
			return fmt.Errorf("image %q needs a path or a size", img.Name)
		}
		images[img.Name] = true
	}
	atlases := make(map[string]bool, len(c.Atlases))
	for _, a := range c.Atlases {
		if !images[a.Image] {
			return fmt.Errorf("atlas %q: unknown image %q", a.Name, a.Image)
		}
		atlases[a.Name] = true
	}
	for i, s := range c.Sprites {
		if !images[s.Image] {
			return fmt.Errorf("sprite %d: unknown image %q", i, s.Image)
		}
	}
	for i, s := range c.AtlasSprites {
		if !atlases[s.Atlas] {
			return fmt.Errorf("atlas sprite %d: unknown atlas %q", i, s.Atlas)
		}
	}
	return nil
}
