// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Encoder appends the little-endian GPU representation of v to dst.
type Encoder[T any] func(dst []byte, v T) []byte

// EncodeUint32 appends v in little-endian order. Use it for index buffers.
func EncodeUint32(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

// BufferVec is a growable GPU buffer of fixed-stride elements with a CPU
// staging copy.
//
// Per frame the owner calls Reserve, fills values with Push or Grow, and
// uploads them with a single Write. The GPU buffer is reallocated only
// when the reserved element count exceeds the current capacity; shrinking
// frames reuse the existing allocation.
type BufferVec[T any] struct {
	label  string
	usage  gputypes.BufferUsage
	stride int
	encode Encoder[T]

	values  []T
	staging []byte

	buffer   hal.Buffer
	capacity int
	retired  *Retired
}

// NewBufferVec creates an empty BufferVec. No GPU memory is allocated
// until the first Reserve. CopyDst is always added to usage.
func NewBufferVec[T any](label string, usage gputypes.BufferUsage, stride int, encode Encoder[T]) *BufferVec[T] {
	return &BufferVec[T]{
		label:  label,
		usage:  usage | gputypes.BufferUsageCopyDst,
		stride: stride,
		encode: encode,
	}
}

// Reserve ensures the GPU buffer holds at least n elements, reallocating
// (and discarding the old buffer) when it does not.
func (b *BufferVec[T]) Reserve(device hal.Device, n int) error {
	if n <= 0 || (n <= b.capacity && b.buffer != nil) {
		return nil
	}
	if device == nil {
		return ErrNilDevice
	}
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: b.label,
		Size:  uint64(n * b.stride),
		Usage: b.usage,
	})
	if err != nil {
		return fmt.Errorf("render: create %s buffer (%d elements): %w", b.label, n, err)
	}
	if old := b.buffer; old != nil {
		if b.retired != nil {
			b.retired.Add(func() { device.DestroyBuffer(old) })
		} else {
			device.DestroyBuffer(old)
		}
	}
	slogger().Debug("render: buffer grown",
		"label", b.label, "old_capacity", b.capacity, "capacity", n)
	b.buffer = buf
	b.capacity = n
	return nil
}

// SetRetired hands buffers replaced by growth to r instead of destroying
// them at once. A nil r destroys them immediately.
func (b *BufferVec[T]) SetRetired(r *Retired) {
	b.retired = r
}

// ReserveAndClear discards the staged values and reserves GPU space for n.
func (b *BufferVec[T]) ReserveAndClear(device hal.Device, n int) error {
	b.Clear()
	if cap(b.values) < n {
		b.values = make([]T, 0, n)
	}
	return b.Reserve(device, n)
}

// Push appends v and returns its index.
func (b *BufferVec[T]) Push(v T) int {
	b.values = append(b.values, v)
	return len(b.values) - 1
}

// Grow extends the staged values by n zero elements and returns the new
// tail for direct writing. Disjoint sub-slices may be filled concurrently.
func (b *BufferVec[T]) Grow(n int) []T {
	start := len(b.values)
	b.values = append(b.values, make([]T, n)...)
	return b.values[start:]
}

// Values returns the staged values.
func (b *BufferVec[T]) Values() []T {
	return b.values
}

// Clear discards the staged values. The GPU buffer is kept.
func (b *BufferVec[T]) Clear() {
	b.values = b.values[:0]
}

// Len returns the number of staged values.
func (b *BufferVec[T]) Len() int {
	return len(b.values)
}

// IsEmpty reports whether no values are staged.
func (b *BufferVec[T]) IsEmpty() bool {
	return len(b.values) == 0
}

// Capacity returns the element capacity of the GPU buffer.
func (b *BufferVec[T]) Capacity() int {
	return b.capacity
}

// Stride returns the element size in bytes.
func (b *BufferVec[T]) Stride() int {
	return b.stride
}

// Buffer returns the GPU buffer, or nil before the first Reserve.
func (b *BufferVec[T]) Buffer() hal.Buffer {
	return b.buffer
}

// Bytes returns the bytes produced by the last Write.
func (b *BufferVec[T]) Bytes() []byte {
	return b.staging
}

// Write encodes every staged value and uploads them in one queue write.
// Writing an empty BufferVec is a no-op.
func (b *BufferVec[T]) Write(device hal.Device, queue hal.Queue) error {
	if len(b.values) == 0 {
		return nil
	}
	if queue == nil {
		return ErrNilDevice
	}
	if err := b.Reserve(device, len(b.values)); err != nil {
		return err
	}

	b.staging = b.staging[:0]
	for _, v := range b.values {
		b.staging = b.encode(b.staging, v)
	}
	if len(b.staging) != len(b.values)*b.stride {
		return fmt.Errorf("render: %s encoder produced %d bytes for %d elements of stride %d",
			b.label, len(b.staging), len(b.values), b.stride)
	}

	if err := queue.WriteBuffer(b.buffer, 0, b.staging); err != nil {
		return fmt.Errorf("render: write %s buffer: %w", b.label, err)
	}
	return nil
}

// Destroy releases the GPU buffer.
func (b *BufferVec[T]) Destroy(device hal.Device) {
	if b.buffer != nil && device != nil {
		device.DestroyBuffer(b.buffer)
	}
	b.buffer = nil
	b.capacity = 0
	b.values = nil
	b.staging = nil
}
