package sprite

import "github.com/gogpu/sprite/render"

// Default depth range of Camera2D. Sprites with Z inside it are visible;
// higher Z draws closer to the camera.
const (
	DefaultCameraNear float32 = -1000
	DefaultCameraFar  float32 = 1000
)

// Camera2D is an orthographic camera looking down -Z at the XY plane.
// Width and Height are the visible world extent, centered on Position.
type Camera2D struct {
	Position Vec3
	Width    float32
	Height   float32
	// Near and Far are the clip planes: view-space Z in [-Far, -Near] is
	// visible. Both zero selects DefaultCameraNear and DefaultCameraFar.
	Near, Far float32
}

func (c Camera2D) depthRange() (near, far float32) {
	if c.Near == 0 && c.Far == 0 {
		return DefaultCameraNear, DefaultCameraFar
	}
	return c.Near, c.Far
}

// Projection returns the orthographic projection matrix.
func (c Camera2D) Projection() Mat4 {
	near, far := c.depthRange()
	hw, hh := c.Width/2, c.Height/2
	return Mat4Orthographic(-hw, hw, -hh, hh, near, far)
}

// ViewUniform returns the GPU view data of the camera.
func (c Camera2D) ViewUniform() render.ViewUniform {
	proj := c.Projection()
	view := Mat4Translation(c.Position)
	return render.ViewUniform{
		ViewProj:      proj.Mul(view.Invert()).Array(),
		Projection:    proj.Array(),
		WorldPosition: c.Position.Array(),
	}
}
