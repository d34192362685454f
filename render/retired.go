// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "sync"

type retiredEntry struct {
	submission uint64
	release    func()
}

// Retired holds GPU objects that were replaced while submitted work may
// still reference them.
//
// Each object is stamped with the newest submission index reported through
// Submitted at the time it was added, and released by Collect once the
// queue reports that index complete. An object added before any submission
// is released by the next Collect.
type Retired struct {
	mu         sync.Mutex
	submission uint64
	entries    []retiredEntry
}

// Submitted records a queue submission index. Indices only move forward.
func (r *Retired) Submitted(index uint64) {
	r.mu.Lock()
	r.submission = max(r.submission, index)
	r.mu.Unlock()
}

// Add defers release until the current submission completes.
func (r *Retired) Add(release func()) {
	r.mu.Lock()
	r.entries = append(r.entries, retiredEntry{submission: r.submission, release: release})
	r.mu.Unlock()
}

// Collect releases every object whose submission is at or below completed
// and returns how many are still waiting.
func (r *Retired) Collect(completed uint64) int {
	r.mu.Lock()
	var due []func()
	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.submission <= completed {
			due = append(due, e.release)
			continue
		}
		kept = append(kept, e)
	}
	clear(r.entries[len(kept):])
	r.entries = kept
	r.mu.Unlock()

	for _, release := range due {
		release()
	}
	return len(kept)
}

// Flush releases everything regardless of submission. The device must be
// idle.
func (r *Retired) Flush() {
	r.mu.Lock()
	entries := r.entries
	r.entries = nil
	r.mu.Unlock()

	for _, e := range entries {
		e.release()
	}
}

// Len returns the number of objects waiting for release.
func (r *Retired) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
