package systems

import (
	"github.com/google/uuid"

	"github.com/hq2318768188/FFEngine/engine/containers"
	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/renderer/metadata"
	"github.com/hq2318768188/FFEngine/engine/resources"
)

// RenderTargetState is the framebuffer of one render target.
type RenderTargetState struct {
	RenderTargetID uint32
	Framebuffer    metadata.FramebufferHandle
	Width          uint32
	Height         uint32
}

type RenderTargetSystem struct {
	owner    string
	bus      *core.EventBus
	backend  metadata.Backend
	textures *TextureSystem
	targets  *containers.RefCache[uint32, *RenderTargetState]
}

func NewRenderTargetSystem(bus *core.EventBus, backend metadata.Backend, textures *TextureSystem) *RenderTargetSystem {
	rs := &RenderTargetSystem{
		owner:    uuid.NewString(),
		bus:      bus,
		backend:  backend,
		textures: textures,
	}
	rs.targets = containers.NewRefCache("render targets", func(id uint32, s *RenderTargetState) {
		backend.DestroyFramebuffer(s.Framebuffer)
	})
	bus.AddEventListener(core.EVENT_RENDER_TARGET_DISPOSE, rs.owner, rs.onRenderTargetDispose)
	return rs
}

// Get returns the framebuffer of target, creating it and its color
// texture on first use.
func (rs *RenderTargetSystem) Get(target *resources.RenderTarget) (*RenderTargetState, error) {
	s, _, err := rs.targets.LoadOrCreate(target.ID, func() (*RenderTargetState, error) {
		color, err := rs.textures.Get(target.Texture)
		if err != nil {
			return nil, err
		}
		framebuffer, err := rs.backend.CreateFramebuffer(color.Handle, target.Width, target.Height)
		if err != nil {
			return nil, err
		}
		return &RenderTargetState{
			RenderTargetID: target.ID,
			Framebuffer:    framebuffer,
			Width:          target.Width,
			Height:         target.Height,
		}, nil
	})
	return s, err
}

func (rs *RenderTargetSystem) Count() int {
	return rs.targets.Len()
}

func (rs *RenderTargetSystem) onRenderTargetDispose(event *core.Event) {
	rs.targets.Remove(event.TargetID)
}

func (rs *RenderTargetSystem) Shutdown() error {
	rs.bus.RemoveEventListener(core.EVENT_RENDER_TARGET_DISPOSE, rs.owner)
	rs.targets.Purge()
	return nil
}
