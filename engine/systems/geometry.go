package systems

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hq2318768188/FFEngine/engine/containers"
	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/renderer/metadata"
	"github.com/hq2318768188/FFEngine/engine/resources"
)

/**
 * @brief Registers geometries in use and keeps their attribute buffers in
 * sync. When a geometry is disposed its buffers and its vertex binding are
 * released with it.
 */
type GeometrySystem struct {
	owner         string
	bus           *core.EventBus
	attributes    *AttributeSystem
	bindingStates *BindingStateSystem
	geometries    *containers.RefCache[uint32, *resources.Geometry]
}

func NewGeometrySystem(bus *core.EventBus, attributes *AttributeSystem, bindingStates *BindingStateSystem) *GeometrySystem {
	gs := &GeometrySystem{
		owner:         uuid.NewString(),
		bus:           bus,
		attributes:    attributes,
		bindingStates: bindingStates,
	}
	gs.geometries = containers.NewRefCache("geometries", func(id uint32, g *resources.Geometry) {
		gs.releaseBuffers(g)
	})
	bus.AddEventListener(core.EVENT_GEOMETRY_DISPOSE, gs.owner, gs.onGeometryDispose)
	return gs
}

func (gs *GeometrySystem) releaseBuffers(g *resources.Geometry) {
	for _, attribute := range g.GetAttributes() {
		gs.attributes.Remove(attribute.ID)
	}
	if index := g.GetIndex(); index != nil {
		gs.attributes.Remove(index.ID)
	}
	gs.bindingStates.ReleaseStatesOfGeometry(g.ID)
}

/**
 * @brief Registers geometry. The geometry is the single holder of its
 * entry, so a disposed geometry is refused: its dispose event has already
 * been published and nothing would remove a new entry.
 */
func (gs *GeometrySystem) Get(geometry *resources.Geometry) (*resources.Geometry, error) {
	if geometry.IsDisposed() {
		return nil, fmt.Errorf("%w: geometry %d", core.ErrDisposed, geometry.ID)
	}
	g, _, _ := gs.geometries.LoadOrCreate(geometry.ID, func() (*resources.Geometry, error) {
		return geometry, nil
	})
	// disposed while registering, the event may have missed the entry
	if geometry.IsDisposed() {
		gs.geometries.Remove(geometry.ID)
		return nil, fmt.Errorf("%w: geometry %d", core.ErrDisposed, geometry.ID)
	}
	return g, nil
}

// Update uploads every attribute and the index whose data changed.
func (gs *GeometrySystem) Update(geometry *resources.Geometry) error {
	if _, err := gs.Get(geometry); err != nil {
		return err
	}
	for _, attribute := range geometry.GetAttributes() {
		if _, err := gs.attributes.Update(attribute, metadata.BufferTargetArray); err != nil {
			return err
		}
	}
	if index := geometry.GetIndex(); index != nil {
		if _, err := gs.attributes.Update(index, metadata.BufferTargetElementArray); err != nil {
			return err
		}
	}
	if geometry.IsDisposed() {
		if !gs.geometries.Remove(geometry.ID) {
			gs.releaseBuffers(geometry)
		}
		return fmt.Errorf("%w: geometry %d", core.ErrDisposed, geometry.ID)
	}
	return nil
}

func (gs *GeometrySystem) Has(id uint32) bool {
	_, ok := gs.geometries.Lookup(id)
	return ok
}

func (gs *GeometrySystem) Count() int {
	return gs.geometries.Len()
}

func (gs *GeometrySystem) onGeometryDispose(event *core.Event) {
	if gs.geometries.Remove(event.TargetID) {
		core.LogDebug("geometry %d disposed, buffers released", event.TargetID)
	}
}

func (gs *GeometrySystem) Shutdown() error {
	gs.bus.RemoveEventListener(core.EVENT_GEOMETRY_DISPOSE, gs.owner)
	gs.geometries.Purge()
	return nil
}
