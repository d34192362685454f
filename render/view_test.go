// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/sprite/internal/gputest"
)

func TestViewUniformLayout(t *testing.T) {
	var u ViewUniform
	for i := range u.ViewProj {
		u.ViewProj[i] = float32(i)
		u.Projection[i] = float32(100 + i)
	}
	u.WorldPosition = [3]float32{7, 8, 9}

	b := u.AppendBytes(nil)
	if len(b) != UniformAlignment {
		t.Fatalf("encoded size = %d, want %d", len(b), UniformAlignment)
	}
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b[off:])) }
	if f(4*5) != 5 {
		t.Errorf("view_proj[5] = %v", f(4*5))
	}
	if f(64+4*3) != 103 {
		t.Errorf("projection[3] = %v", f(64+4*3))
	}
	if f(128) != 7 || f(132) != 8 || f(136) != 9 {
		t.Errorf("world_position = (%v, %v, %v)", f(128), f(132), f(136))
	}
	for i := 140; i < len(b); i++ {
		if b[i] != 0 {
			t.Fatalf("padding byte %d = %d", i, b[i])
		}
	}
}

func TestViewUniformsOffsetsAndBinding(t *testing.T) {
	device, queue := gputest.NewDevice(t)
	v := NewViewUniforms()

	if _, ok := v.Binding(); ok {
		t.Error("Binding available before any write")
	}

	o1 := v.Push(10, ViewUniform{})
	o2 := v.Push(20, ViewUniform{})
	if o1 != 0 || o2 != UniformAlignment {
		t.Errorf("offsets = %d, %d, want 0, %d", o1, o2, UniformAlignment)
	}
	if err := v.Write(device, queue); err != nil {
		t.Fatalf("Write: %v", err)
	}

	b1, ok := v.Binding()
	if !ok {
		t.Fatal("Binding unavailable after Write")
	}
	if b1.Size != ViewUniformSize {
		t.Errorf("binding size = %d, want %d", b1.Size, ViewUniformSize)
	}
	if off, ok := v.Offset(20); !ok || off != UniformAlignment {
		t.Errorf("Offset(20) = (%d, %v)", off, ok)
	}

	// Same number of views next frame: same buffer, equal binding.
	v.Clear()
	if _, ok := v.Offset(20); ok {
		t.Error("Clear kept view offsets")
	}
	v.Push(10, ViewUniform{})
	v.Push(20, ViewUniform{})
	if err := v.Write(device, queue); err != nil {
		t.Fatal(err)
	}
	b2, _ := v.Binding()
	if b1 != b2 {
		t.Error("binding changed although buffer capacity sufficed")
	}
}
