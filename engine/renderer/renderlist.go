package renderer

import (
	"slices"

	"github.com/hq2318768188/FFEngine/engine/resources"
	"github.com/hq2318768188/FFEngine/engine/scene"
)

/**
 * @brief One drawable's submission for the current frame. Items are pooled
 * by the RenderList and overwritten every frame; never keep one past the
 * frame it was pushed in.
 */
type RenderItem struct {
	ID         uint32
	Object     scene.Drawable
	Geometry   *resources.Geometry
	Material   *resources.Material
	GroupOrder int
	// positive view space depth
	Z float32
}

func (ri *RenderItem) clear() {
	ri.Object = nil
	ri.Geometry = nil
	ri.Material = nil
}

// RenderListSortFunc reports whether a must be drawn before b.
type RenderListSortFunc func(a, b *RenderItem) bool

// SmallerZFirst orders opaque items: higher group order first, then near to
// far, then the most recently created object first.
func SmallerZFirst(a, b *RenderItem) bool {
	if a.GroupOrder != b.GroupOrder {
		return a.GroupOrder > b.GroupOrder
	}
	if a.Z != b.Z {
		return a.Z < b.Z
	}
	return a.ID > b.ID
}

// BiggerZFirst orders transparent items: higher group order first, then far
// to near, then the most recently created object first.
func BiggerZFirst(a, b *RenderItem) bool {
	if a.GroupOrder != b.GroupOrder {
		return a.GroupOrder > b.GroupOrder
	}
	if a.Z != b.Z {
		return a.Z > b.Z
	}
	return a.ID > b.ID
}

/**
 * @brief The per frame collection of draw submissions, split into an opaque
 * and a transparent bucket. Items come from a pool that only grows; slots
 * unused in a frame keep no references after Finish.
 */
type RenderList struct {
	pool         []*RenderItem
	cursor       int
	opaques      []*RenderItem
	transparents []*RenderItem
}

func NewRenderList() *RenderList {
	return &RenderList{}
}

// Init starts a new frame. The pool keeps its items.
func (rl *RenderList) Init() {
	rl.cursor = 0
	clear(rl.opaques)
	clear(rl.transparents)
	rl.opaques = rl.opaques[:0]
	rl.transparents = rl.transparents[:0]
}

/**
 * @brief Records a drawable for this frame. The geometry and material are
 * passed separately from the drawable because the scene may override the
 * material.
 */
func (rl *RenderList) Push(object scene.Drawable, geometry *resources.Geometry, material *resources.Material, groupOrder int, z float32) {
	item := rl.getNextRenderItem(object, geometry, material, groupOrder, z)
	if material.Transparent {
		rl.transparents = append(rl.transparents, item)
	} else {
		rl.opaques = append(rl.opaques, item)
	}
}

func (rl *RenderList) getNextRenderItem(object scene.Drawable, geometry *resources.Geometry, material *resources.Material, groupOrder int, z float32) *RenderItem {
	var item *RenderItem
	if rl.cursor >= len(rl.pool) {
		item = &RenderItem{}
		rl.pool = append(rl.pool, item)
	} else {
		item = rl.pool[rl.cursor]
	}

	item.ID = object.AsNode().ID
	item.Object = object
	item.Geometry = geometry
	item.Material = material
	item.GroupOrder = groupOrder
	item.Z = z

	rl.cursor++
	return item
}

// Finish drops the references held by pool items this frame did not use.
func (rl *RenderList) Finish() {
	for _, item := range rl.pool[rl.cursor:] {
		item.clear()
	}
}

// Sort orders both buckets. Equal items keep their push order.
func (rl *RenderList) Sort(opaqueLess, transparentLess RenderListSortFunc) {
	if len(rl.opaques) > 1 {
		slices.SortStableFunc(rl.opaques, compareWith(opaqueLess))
	}
	if len(rl.transparents) > 1 {
		slices.SortStableFunc(rl.transparents, compareWith(transparentLess))
	}
}

func compareWith(less RenderListSortFunc) func(a, b *RenderItem) int {
	return func(a, b *RenderItem) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		default:
			return 0
		}
	}
}

func (rl *RenderList) GetOpaques() []*RenderItem {
	return rl.opaques
}

func (rl *RenderList) GetTransparents() []*RenderItem {
	return rl.transparents
}

// PoolSize is the number of pooled items, the most ever pushed in a frame.
func (rl *RenderList) PoolSize() int {
	return len(rl.pool)
}
