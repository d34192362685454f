package sprite

import "testing"

func TestCamera2DViewUniform(t *testing.T) {
	cam := Camera2D{Position: V3(100, 50, 0), Width: 800, Height: 600}
	u := cam.ViewUniform()

	viewProj := Mat4{M: u.ViewProj}
	proj := Mat4{M: u.Projection}

	tests := []struct {
		name string
		m    Mat4
		in   Vec3
		want Vec3
	}{
		{"camera center maps to clip origin", viewProj, V3(100, 50, 0), V3(0, 0, 0.5)},
		{"top-right of view", viewProj, V3(500, 350, 0), V3(1, 1, 0.5)},
		{"bottom-left of view", viewProj, V3(-300, -250, 0), V3(-1, -1, 0.5)},
		{"projection ignores position", proj, V3(400, 300, 0), V3(1, 1, 0.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.TransformPoint3(tt.in); !got.Approx(tt.want, 1e-5) {
				t.Errorf("transform %v = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
	if u.WorldPosition != [3]float32{100, 50, 0} {
		t.Errorf("WorldPosition = %v", u.WorldPosition)
	}
}

func TestCamera2DDepthRange(t *testing.T) {
	near, far := Camera2D{}.depthRange()
	if near != DefaultCameraNear || far != DefaultCameraFar {
		t.Errorf("default range = %v, %v", near, far)
	}

	cam := Camera2D{Width: 2, Height: 2, Near: 0, Far: 10}
	p := cam.Projection()
	// The visible range is Z in [-Far, -Near]; higher Z is closer.
	if z := p.TransformPoint3(V3(0, 0, 0)).Z; abs32(z) > 1e-6 {
		t.Errorf("z=0 depth = %v, want 0", z)
	}
	if z := p.TransformPoint3(V3(0, 0, -10)).Z; abs32(z-1) > 1e-6 {
		t.Errorf("z=-10 depth = %v, want 1", z)
	}
}
