package sprite

import (
	"testing"

	"github.com/gogpu/sprite/asset"
)

func TestTextureAtlasAddTexture(t *testing.T) {
	a := NewTextureAtlas(asset.NewHandle[Image](asset.NewID()), V2(256, 256))
	i0 := a.AddTexture(NewRect(0, 0, 32, 32))
	i1 := a.AddTexture(NewRect(32, 32, 96, 96))

	if i0 != 0 || i1 != 1 || a.Len() != 2 {
		t.Fatalf("indices = %d, %d; Len = %d", i0, i1, a.Len())
	}
	if r, ok := a.Rect(1); !ok || r != NewRect(32, 32, 96, 96) {
		t.Errorf("Rect(1) = %v, %v", r, ok)
	}
	if _, ok := a.Rect(2); ok {
		t.Error("Rect(2) should be out of range")
	}
}

func TestTextureAtlasFromGrid(t *testing.T) {
	tex := asset.NewHandle[Image](asset.NewID())
	a, err := NewTextureAtlasFromGrid(tex, V2(16, 32), 4, 2)
	if err != nil {
		t.Fatalf("NewTextureAtlasFromGrid failed: %v", err)
	}
	if a.Size != V2(64, 64) {
		t.Errorf("Size = %v, want (64, 64)", a.Size)
	}
	if a.Len() != 8 {
		t.Fatalf("Len = %d, want 8", a.Len())
	}
	// Row-major from the top-left.
	if a.Textures[1] != NewRect(16, 0, 32, 32) {
		t.Errorf("tile 1 = %v", a.Textures[1])
	}
	if a.Textures[5] != NewRect(16, 32, 32, 64) {
		t.Errorf("tile 5 = %v", a.Textures[5])
	}
	if a.Texture != tex {
		t.Error("atlas lost its texture handle")
	}

	for _, bad := range []struct {
		size       Vec2
		cols, rows int
	}{
		{V2(16, 16), 0, 1},
		{V2(16, 16), 1, -1},
		{V2(0, 16), 1, 1},
	} {
		if _, err := NewTextureAtlasFromGrid(tex, bad.size, bad.cols, bad.rows); err == nil {
			t.Errorf("grid %v %dx%d should fail", bad.size, bad.cols, bad.rows)
		}
	}
}
