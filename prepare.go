package sprite

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/sprite/internal/parallel"
	"github.com/gogpu/sprite/render"
)

// SpriteVertexSize is the byte size of one SpriteVertex on the GPU.
const SpriteVertexSize = 20

// SpriteVertex is one corner of a sprite quad: world position and UV.
type SpriteVertex struct {
	Position [3]float32
	UV       [2]float32
}

func encodeSpriteVertex(dst []byte, v SpriteVertex) []byte {
	for _, f := range v.Position {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	for _, f := range v.UV {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	return dst
}

// SpriteMeta owns the shared vertex and index buffers every sprite of a
// frame is batched into, and the view bind group built over them.
type SpriteMeta struct {
	vertices *render.BufferVec[SpriteVertex]
	indices  *render.BufferVec[uint32]
	quad     QuadTemplate

	pool              *parallel.WorkerPool
	parallelThreshold int

	viewBindGroup hal.BindGroup
	viewBinding   render.ViewBinding
	retired       *render.Retired
}

// NewSpriteMeta creates empty buffers over quad. A malformed quad is
// returned as an error wrapping ErrMalformedQuad.
func NewSpriteMeta(quad QuadTemplate) (*SpriteMeta, error) {
	if err := quad.Validate(); err != nil {
		return nil, err
	}
	return &SpriteMeta{
		vertices: render.NewBufferVec("sprite_vertex_buffer", gputypes.BufferUsageVertex,
			SpriteVertexSize, encodeSpriteVertex),
		indices: render.NewBufferVec("sprite_index_buffer", gputypes.BufferUsageIndex,
			4, render.EncodeUint32),
		quad: quad,
	}, nil
}

// SetParallel splits vertex generation across pool for frames with at
// least threshold sprites. A nil pool or threshold below 1 disables it.
func (m *SpriteMeta) SetParallel(pool *parallel.WorkerPool, threshold int) {
	m.pool = pool
	m.parallelThreshold = threshold
}

// Vertices returns the vertices staged by the last Prepare.
func (m *SpriteMeta) Vertices() []SpriteVertex { return m.vertices.Values() }

// Indices returns the indices staged by the last Prepare.
func (m *SpriteMeta) Indices() []uint32 { return m.indices.Values() }

// VertexBuffer returns the GPU vertex buffer, nil before the first
// non-empty frame.
func (m *SpriteMeta) VertexBuffer() hal.Buffer { return m.vertices.Buffer() }

// IndexBuffer returns the GPU index buffer, nil before the first
// non-empty frame.
func (m *SpriteMeta) IndexBuffer() hal.Buffer { return m.indices.Buffer() }

// VertexBytes returns the bytes uploaded by the last Prepare.
func (m *SpriteMeta) VertexBytes() []byte { return m.vertices.Bytes() }

// IndexBytes returns the bytes uploaded by the last Prepare.
func (m *SpriteMeta) IndexBytes() []byte { return m.indices.Bytes() }

// ViewBindGroup returns the view bind group built by the last queue.
func (m *SpriteMeta) ViewBindGroup() hal.BindGroup { return m.viewBindGroup }

// Prepare batches sprites into the shared buffers and uploads them.
//
// Sprite i gets BatchIndex i, vertices [4i, 4i+4) and indices [6i, 6i+6).
// A frame without sprites touches no GPU state.
func (m *SpriteMeta) Prepare(device hal.Device, queue hal.Queue, sprites *ExtractedSprites) error {
	n := sprites.Len()
	if n == 0 {
		m.vertices.Clear()
		m.indices.Clear()
		return nil
	}

	if err := m.vertices.ReserveAndClear(device, n*quadVertexCount); err != nil {
		return err
	}
	if err := m.indices.ReserveAndClear(device, n*quadIndexCount); err != nil {
		return err
	}
	vertices := m.vertices.Grow(n * quadVertexCount)
	indices := m.indices.Grow(n * quadIndexCount)
	all := sprites.All()

	build := func(start, end int) {
		for i := start; i < end; i++ {
			s := &all[i]
			s.BatchIndex = i
			m.writeQuad(vertices[i*quadVertexCount:(i+1)*quadVertexCount],
				indices[i*quadIndexCount:(i+1)*quadIndexCount], s, uint32(i*quadVertexCount))
		}
	}
	if m.pool != nil && m.parallelThreshold > 0 && n >= m.parallelThreshold {
		m.pool.ForEachChunk(n, 0, build)
	} else {
		build(0, n)
	}

	if err := m.vertices.Write(device, queue); err != nil {
		return err
	}
	if err := m.indices.Write(device, queue); err != nil {
		return err
	}
	slogger().Debug("sprite: prepared", "sprites", n,
		"vertex_capacity", m.vertices.Capacity(), "index_capacity", m.indices.Capacity())
	return nil
}

// writeQuad fills one sprite's vertex and index slots.
func (m *SpriteMeta) writeQuad(vertices []SpriteVertex, indices []uint32, s *ExtractedSprite, base uint32) {
	anchors := s.Rect.corners()
	size := s.Rect.Size()
	divisor := s.uvDivisor()

	for c, p := range m.quad.Positions {
		local := V3(p[0]*size.X, p[1]*size.Y, p[2])
		vertices[c] = SpriteVertex{
			Position: s.Transform.TransformPoint3(local).Array(),
			UV:       anchors[c].Div(divisor).Array(),
		}
	}
	for k, idx := range m.quad.Indices {
		indices[k] = base + idx
	}
}

// SetRetired defers destruction of replaced buffers and view bind groups
// to r. Without it they are destroyed as soon as they are replaced, which
// is only safe when the device is idle between frames.
func (m *SpriteMeta) SetRetired(r *render.Retired) {
	m.retired = r
	m.vertices.SetRetired(r)
	m.indices.SetRetired(r)
}

// replaceViewBindGroup installs bg as the view bind group built for
// binding and retires the previous one.
func (m *SpriteMeta) replaceViewBindGroup(device hal.Device, bg hal.BindGroup, binding render.ViewBinding) {
	if old := m.viewBindGroup; old != nil {
		if m.retired != nil {
			m.retired.Add(func() { device.DestroyBindGroup(old) })
		} else {
			device.DestroyBindGroup(old)
		}
	}
	m.viewBindGroup = bg
	m.viewBinding = binding
}

// Destroy releases the shared buffers and the view bind group. Objects
// already handed to a Retired are left to it.
func (m *SpriteMeta) Destroy(device hal.Device) {
	if m.viewBindGroup != nil && device != nil {
		device.DestroyBindGroup(m.viewBindGroup)
	}
	m.viewBindGroup = nil
	m.viewBinding = render.ViewBinding{}
	m.vertices.Destroy(device)
	m.indices.Destroy(device)
}
