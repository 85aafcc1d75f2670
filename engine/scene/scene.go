package scene

import (
	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/resources"
)

// Scene is the root of a renderable graph.
type Scene struct {
	Node
	// Background, if set, is drawn as a cube map behind everything else.
	Background *resources.Texture
	// OverrideMaterial, if set, replaces the material of every drawable.
	OverrideMaterial *resources.Material
	// AutoUpdate refreshes all world matrices at the start of each render.
	AutoUpdate bool
}

func NewScene(bus *core.EventBus) *Scene {
	s := &Scene{AutoUpdate: true}
	s.init(bus, s)
	return s
}
