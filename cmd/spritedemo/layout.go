package main

import (
	"image"
	"image/color"
	"path/filepath"

	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/asset"
	"github.com/gogpu/sprite/scene"
)

// layout is a loaded config: assets plus a populated world.
type layout struct {
	assets *sprite.Assets
	world  *scene.World
}

// buildLayout loads the images of cfg and spawns its sprites. Relative
// image paths resolve against dir.
func buildLayout(cfg *config, dir string) (*layout, error) {
	l := &layout{assets: sprite.NewAssets(), world: scene.NewWorld()}

	images := make(map[string]asset.Handle[sprite.Image], len(cfg.Images))
	for _, ic := range cfg.Images {
		if ic.Path == "" {
			images[ic.Name] = l.assets.AddImage(sprite.NewImage(checkerboard(ic.Size, ic.Cells)))
			continue
		}
		path := ic.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		h, err := l.assets.LoadImage(path)
		if err != nil {
			return nil, err
		}
		images[ic.Name] = h
	}

	atlases := make(map[string]asset.Handle[sprite.TextureAtlas], len(cfg.Atlases))
	for _, ac := range cfg.Atlases {
		a, err := sprite.NewTextureAtlasFromGrid(images[ac.Image],
			sprite.V2(ac.TileWidth, ac.TileHeight), ac.Columns, ac.Rows)
		if err != nil {
			return nil, err
		}
		atlases[ac.Name] = l.assets.AddAtlas(a)
	}

	for _, sc := range cfg.Sprites {
		s := sprite.Sprite{}
		if sc.Width > 0 && sc.Height > 0 {
			s = sprite.WithSize(sc.Width, sc.Height)
		}
		n := max(sc.Grid, 1)
		for row := range n {
			for col := range n {
				t := sc.transform()
				t.Translation.X += float32(col) * sc.Spacing
				t.Translation.Y += float32(row) * sc.Spacing
				l.world.SpawnSprite(s, t, images[sc.Image])
			}
		}
	}
	for _, ac := range cfg.AtlasSprites {
		l.world.SpawnAtlasSprite(sprite.AtlasSprite{Index: ac.Index}, ac.transform(), atlases[ac.Atlas])
	}
	return l, nil
}

func (t transformConfig) transform() sprite.GlobalTransform {
	g := sprite.TransformFromXYZ(t.X, t.Y, t.Z)
	g.Rotation = t.Rotation
	if t.Scale != 0 {
		g.Scale = sprite.V3(t.Scale, t.Scale, 1)
	}
	return g
}

// checkerboard returns a size x size image of cells x cells squares.
func checkerboard(size, cells int) *image.RGBA {
	cells = max(cells, 1)
	small := image.NewRGBA(image.Rect(0, 0, cells, cells))
	light := color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
	dark := color.RGBA{0x40, 0x40, 0x40, 0xff}
	for y := range cells {
		for x := range cells {
			c := dark
			if (x+y)%2 == 0 {
				c = light
			}
			small.SetRGBA(x, y, c)
		}
	}
	if size == cells {
		return small
	}
	return asset.Scale(small, size, size)
}
