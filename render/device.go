// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host (e.g. gogpu.App) owns the device and passes a DeviceHandle to
// the sprite renderer, which shares it rather than creating its own.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider

// halProvider is implemented by device providers that expose the wgpu HAL
// objects behind their gpucontext type tokens.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// HALFromProvider extracts the HAL device and queue from a provider.
//
// Providers either return hal types directly from Device/Queue, or expose
// them through HalDevice/HalQueue accessors.
func HALFromProvider(p DeviceHandle) (hal.Device, hal.Queue, error) {
	if p == nil {
		return nil, nil, ErrNilDevice
	}

	var devAny, queueAny any = p.Device(), p.Queue()
	if hp, ok := p.(halProvider); ok {
		devAny, queueAny = hp.HalDevice(), hp.HalQueue()
	}

	device, ok := devAny.(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("%w: device is %T", ErrNoHAL, devAny)
	}
	queue, ok := queueAny.(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("%w: queue is %T", ErrNoHAL, queueAny)
	}
	return device, queue, nil
}

// HALDeviceHandle is a DeviceHandle over an already opened HAL device,
// for headless use and tests.
type HALDeviceHandle struct {
	DeviceHAL hal.Device
	QueueHAL  hal.Queue
	Format    gputypes.TextureFormat
	Info      gpucontext.AdapterInfo
}

// Device returns the HAL device.
func (h HALDeviceHandle) Device() gpucontext.Device { return h.DeviceHAL }

// Queue returns the HAL queue.
func (h HALDeviceHandle) Queue() gpucontext.Queue { return h.QueueHAL }

// Adapter returns nil; the adapter is not retained.
func (h HALDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns the configured target format.
func (h HALDeviceHandle) SurfaceFormat() gputypes.TextureFormat { return h.Format }

// AdapterInfo returns the configured adapter metadata.
func (h HALDeviceHandle) AdapterInfo() gpucontext.AdapterInfo { return h.Info }

// NullDeviceHandle is a DeviceHandle with no device.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo reports an unknown adapter.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
}

var (
	_ DeviceHandle = NullDeviceHandle{}
	_ DeviceHandle = HALDeviceHandle{}
)
