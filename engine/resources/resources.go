package resources

import "github.com/hq2318768188/FFEngine/engine/core"

// Disposable is implemented by every shared object whose GPU side state is
// released through the event bus.
type Disposable interface {
	GetID() uint32
	Dispose()
}

func dispatch(bus *core.EventBus, name core.EventName, id uint32, target interface{}) {
	if bus == nil {
		return
	}
	bus.Dispatch(&core.Event{
		Name:     name,
		TargetID: id,
		Target:   target,
	})
}
