// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "strconv"

// Entity identifies a scene object across the extract/queue/draw stages.
// It is opaque to the render package; scenes choose the numbering.
type Entity uint64

// String returns the decimal entity number.
func (e Entity) String() string {
	return strconv.FormatUint(uint64(e), 10)
}
