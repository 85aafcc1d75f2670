package systems

import (
	"sync"

	"github.com/google/uuid"

	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/resources"
	"github.com/hq2318768188/FFEngine/engine/scene"
)

/**
 * @brief Brings the geometry of each drawable up to date at most once per
 * frame, however many drawables share it. Drawables are tracked by id only,
 * so one dropped from the scene can be collected without being disposed.
 */
type ObjectSystem struct {
	owner      string
	bus        *core.EventBus
	geometries *GeometrySystem

	mutex     sync.Mutex
	updated   map[uint32]uint64
	drawables map[uint32]struct{}
}

func NewObjectSystem(bus *core.EventBus, geometries *GeometrySystem) *ObjectSystem {
	obs := &ObjectSystem{
		owner:      uuid.NewString(),
		bus:        bus,
		geometries: geometries,
		updated:    make(map[uint32]uint64),
		drawables:  make(map[uint32]struct{}),
	}
	bus.AddEventListener(core.EVENT_OBJECT_DISPOSE, obs.owner, obs.onObjectDispose)
	bus.AddEventListener(core.EVENT_GEOMETRY_DISPOSE, obs.owner, obs.onGeometryDispose)
	return obs
}

func (obs *ObjectSystem) Update(drawable scene.Drawable, frame uint64) (*resources.Geometry, error) {
	geometry := drawable.GetGeometry()
	if geometry == nil {
		return nil, core.ErrNilGeometry
	}

	obs.mutex.Lock()
	obs.drawables[drawable.AsNode().ID] = struct{}{}
	last, seen := obs.updated[geometry.ID]
	if seen && last == frame {
		obs.mutex.Unlock()
		return geometry, nil
	}
	obs.updated[geometry.ID] = frame
	obs.mutex.Unlock()

	if err := obs.geometries.Update(geometry); err != nil {
		obs.mutex.Lock()
		delete(obs.updated, geometry.ID)
		obs.mutex.Unlock()
		return nil, err
	}
	return geometry, nil
}

func (obs *ObjectSystem) Tracked(id uint32) bool {
	obs.mutex.Lock()
	defer obs.mutex.Unlock()
	_, ok := obs.drawables[id]
	return ok
}

func (obs *ObjectSystem) Count() int {
	obs.mutex.Lock()
	defer obs.mutex.Unlock()
	return len(obs.drawables)
}

func (obs *ObjectSystem) onObjectDispose(event *core.Event) {
	obs.mutex.Lock()
	defer obs.mutex.Unlock()
	delete(obs.drawables, event.TargetID)
}

func (obs *ObjectSystem) onGeometryDispose(event *core.Event) {
	obs.mutex.Lock()
	defer obs.mutex.Unlock()
	delete(obs.updated, event.TargetID)
}

func (obs *ObjectSystem) Shutdown() error {
	obs.bus.RemoveEventListener(core.EVENT_OBJECT_DISPOSE, obs.owner)
	obs.bus.RemoveEventListener(core.EVENT_GEOMETRY_DISPOSE, obs.owner)
	obs.mutex.Lock()
	defer obs.mutex.Unlock()
	clear(obs.updated)
	clear(obs.drawables)
	return nil
}
