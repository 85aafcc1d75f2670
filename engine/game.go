package engine

import (
	"github.com/hq2318768188/FFEngine/engine/renderer"
	"github.com/hq2318768188/FFEngine/engine/systems"
)

// Game is what an application plugs into the engine. SystemManager and
// Renderer are filled in by Engine.Initialize before FnInitialize runs.
type Game struct {
	ApplicationConfig *ApplicationConfig
	SystemManager     *systems.SystemManager
	Renderer          *renderer.Renderer
	State             interface{}
	FnBoot            Boot
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Boot func() error
type Initialize func() error
type Update func(deltaTime float64) error

// Render fills the packet with the scene and camera to draw. Leaving
// either nil skips drawing for the frame.
type Render func(packet *renderer.RenderPacket, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
