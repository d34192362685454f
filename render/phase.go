// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/sprite/asset"
)

// DrawFunctionID identifies a registered draw function.
type DrawFunctionID uint32

// PhaseItem is one sortable draw item of a render phase.
// I is the concrete item type, so CompareSortKey needs no type assertion.
type PhaseItem[I any] interface {
	// ItemEntity returns the entity the item draws.
	ItemEntity() Entity
	// ItemDrawFunction returns the draw function that renders the item.
	ItemDrawFunction() DrawFunctionID
	// CompareSortKey orders items within a phase.
	CompareSortKey(other I) int
}

// Draw renders one phase item into a render pass.
type Draw[I any] interface {
	Draw(pass *TrackedRenderPass, view Entity, item I) error
}

// DrawFunc adapts a function to the Draw interface.
type DrawFunc[I any] func(pass *TrackedRenderPass, view Entity, item I) error

// Draw calls f.
func (f DrawFunc[I]) Draw(pass *TrackedRenderPass, view Entity, item I) error {
	return f(pass, view, item)
}

// DrawFunctions is a registry of draw functions for one phase item type.
// It is safe for concurrent use.
type DrawFunctions[I any] struct {
	mu    sync.RWMutex
	draws []Draw[I]
}

// NewDrawFunctions creates an empty registry.
func NewDrawFunctions[I any]() *DrawFunctions[I] {
	return &DrawFunctions[I]{}
}

// Add registers d and returns its ID.
func (f *DrawFunctions[I]) Add(d Draw[I]) DrawFunctionID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draws = append(f.draws, d)
	return DrawFunctionID(len(f.draws) - 1)
}

// Get returns the draw function for id.
func (f *DrawFunctions[I]) Get(id DrawFunctionID) (Draw[I], bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if int(id) >= len(f.draws) {
		return nil, false
	}
	return f.draws[id], true
}

// RenderPhase is the per-view list of draw items of one kind.
type RenderPhase[I PhaseItem[I]] struct {
	items []I
}

// NewRenderPhase creates an empty phase.
func NewRenderPhase[I PhaseItem[I]]() *RenderPhase[I] {
	return &RenderPhase[I]{}
}

// Add appends an item.
func (p *RenderPhase[I]) Add(item I) {
	p.items = append(p.items, item)
}

// Items returns the items in their current order.
func (p *RenderPhase[I]) Items() []I {
	return p.items
}

// Len returns the number of items.
func (p *RenderPhase[I]) Len() int {
	return len(p.items)
}

// Clear removes every item, keeping the allocation.
func (p *RenderPhase[I]) Clear() {
	p.items = p.items[:0]
}

// Sort orders the items by sort key. Items with equal keys keep their
// insertion order.
func (p *RenderPhase[I]) Sort() {
	slices.SortStableFunc(p.items, func(a, b I) int {
		return a.CompareSortKey(b)
	})
}

// Render draws every item in order. The first draw error aborts the phase
// and is returned.
func (p *RenderPhase[I]) Render(pass *TrackedRenderPass, view Entity, draws *DrawFunctions[I]) error {
	for i, item := range p.items {
		d, ok := draws.Get(item.ItemDrawFunction())
		if !ok {
			return fmt.Errorf("%w: %d (item %d, entity %s)",
				ErrUnknownDrawFunction, item.ItemDrawFunction(), i, item.ItemEntity())
		}
		if err := d.Draw(pass, view, item); err != nil {
			return err
		}
	}
	return nil
}

// Transparent2D is a draw item of the 2D transparency phase.
// Items sort by the texture identity so equal textures draw adjacently.
type Transparent2D struct {
	SortKey      asset.ID
	Entity       Entity
	Pipeline     PipelineID
	DrawFunction DrawFunctionID
}

// ItemEntity implements PhaseItem.
func (t Transparent2D) ItemEntity() Entity { return t.Entity }

// ItemDrawFunction implements PhaseItem.
func (t Transparent2D) ItemDrawFunction() DrawFunctionID { return t.DrawFunction }

// CompareSortKey implements PhaseItem.
func (t Transparent2D) CompareSortKey(other Transparent2D) int {
	return t.SortKey.Compare(other.SortKey)
}
