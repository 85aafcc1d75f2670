package resources

import (
	"sync/atomic"

	"github.com/hq2318768188/FFEngine/engine/core"
)

// RenderTarget is an off screen surface with a color texture.
type RenderTarget struct {
	ID      uint32
	Width   uint32
	Height  uint32
	Texture *Texture

	disposed atomic.Bool
	bus      *core.EventBus
}

func NewRenderTarget(bus *core.EventBus, width, height uint32) *RenderTarget {
	t := NewTexture(bus, width, height)
	t.GenerateMipmaps = false
	t.MinFilter = TextureFilterLinear
	t.IsRenderTarget = true
	return &RenderTarget{
		ID:      core.IdentifierAcquireNewID(),
		Width:   width,
		Height:  height,
		Texture: t,
		bus:     bus,
	}
}

func (rt *RenderTarget) GetID() uint32 {
	return rt.ID
}

func (rt *RenderTarget) Dispose() {
	if !rt.disposed.CompareAndSwap(false, true) {
		return
	}
	dispatch(rt.bus, core.EVENT_RENDER_TARGET_DISPOSE, rt.ID, rt)
	rt.Texture.Dispose()
}
