package scene

import "github.com/hq2318768188/FFEngine/engine/core"

// Group gathers objects. Its GroupOrder is handed to every drawable below
// it and takes precedence over depth when sorting.
type Group struct {
	Node
	GroupOrder int
}

func NewGroup(bus *core.EventBus) *Group {
	g := &Group{}
	g.init(bus, g)
	return g
}
