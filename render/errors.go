// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "errors"

var (
	// ErrNilDevice is returned when a GPU device or queue is required but nil.
	ErrNilDevice = errors.New("render: device is nil")

	// ErrNoHAL is returned when a device provider does not expose HAL types.
	ErrNoHAL = errors.New("render: provider does not expose HAL device and queue")

	// ErrInvalidDescriptor is returned by PipelineCache.Queue for a
	// descriptor that can never compile.
	ErrInvalidDescriptor = errors.New("render: invalid pipeline descriptor")

	// ErrUnknownPipeline is returned for a PipelineID the cache never issued.
	ErrUnknownPipeline = errors.New("render: unknown pipeline id")

	// ErrUnknownDrawFunction is returned when a phase item names a draw
	// function that was never registered.
	ErrUnknownDrawFunction = errors.New("render: unknown draw function")

	// ErrEmptyImage is returned when uploading an image with no pixels.
	ErrEmptyImage = errors.New("render: image has zero size")
)
