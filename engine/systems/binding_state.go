package systems

import (
	"fmt"

	"github.com/hq2318768188/FFEngine/engine/containers"
	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/renderer/metadata"
	"github.com/hq2318768188/FFEngine/engine/resources"
)

// BindingState is the vertex array describing how one geometry feeds the
// fixed attribute locations.
type BindingState struct {
	GeometryID  uint32
	VertexArray metadata.VertexArrayHandle
	Signature   string
	Indexed     bool
}

/**
 * @brief One vertex binding per geometry. A binding is rebuilt only when the
 * geometry attribute signature changes, never on every draw.
 */
type BindingStateSystem struct {
	backend    metadata.Backend
	attributes *AttributeSystem
	states     *containers.RefCache[uint32, *BindingState]
}

func NewBindingStateSystem(backend metadata.Backend, attributes *AttributeSystem) *BindingStateSystem {
	return &BindingStateSystem{
		backend:    backend,
		attributes: attributes,
		states: containers.NewRefCache("binding states", func(id uint32, s *BindingState) {
			backend.DestroyVertexArray(s.VertexArray)
		}),
	}
}

/**
 * @brief Makes sure geometry has an up to date binding and binds it. The
 * attribute buffers must already be uploaded.
 * @returns the binding and whether it was (re)built by this call.
 */
func (bs *BindingStateSystem) Setup(geometry *resources.Geometry, program *Program) (*BindingState, bool, error) {
	if geometry.IsDisposed() {
		return nil, false, fmt.Errorf("%w: geometry %d", core.ErrDisposed, geometry.ID)
	}
	signature := geometry.AttributeSignature()
	if s, ok := bs.states.Lookup(geometry.ID); ok && s.Signature == signature {
		bs.backend.BindVertexArray(s.VertexArray)
		return s, false, nil
	}

	s, err := bs.build(geometry, program, signature)
	if err != nil {
		return nil, false, err
	}
	bs.states.Remove(geometry.ID)
	bs.states.Insert(geometry.ID, s)
	bs.backend.BindVertexArray(s.VertexArray)
	core.LogDebug("built vertex binding for geometry %d", geometry.ID)
	return s, true, nil
}

func (bs *BindingStateSystem) build(geometry *resources.Geometry, program *Program, signature string) (*BindingState, error) {
	vao, err := bs.backend.CreateVertexArray()
	if err != nil {
		return nil, fmt.Errorf("%w: vertex array for geometry %d: %w", core.ErrBufferBuild, geometry.ID, err)
	}
	for name, attribute := range geometry.GetAttributes() {
		location, ok := bs.location(program, name)
		if !ok {
			continue
		}
		as, ok := bs.attributes.Get(attribute)
		if !ok {
			bs.backend.DestroyVertexArray(vao)
			return nil, fmt.Errorf("%w: attribute `%s` of geometry %d not uploaded", core.ErrBufferBuild, name, geometry.ID)
		}
		bs.backend.VertexAttribPointer(vao, location, as.Buffer, attribute.ItemSize)
	}

	s := &BindingState{
		GeometryID:  geometry.ID,
		VertexArray: vao,
		Signature:   signature,
	}
	if index := geometry.GetIndex(); index != nil {
		as, ok := bs.attributes.Get(index)
		if !ok {
			bs.backend.DestroyVertexArray(vao)
			return nil, fmt.Errorf("%w: index of geometry %d not uploaded", core.ErrBufferBuild, geometry.ID)
		}
		bs.backend.BindIndexBuffer(vao, as.Buffer)
		s.Indexed = true
	}
	return s, nil
}

func (bs *BindingStateSystem) location(program *Program, name string) (uint32, bool) {
	if program != nil {
		if loc, ok := program.Info.AttributeLocations[name]; ok {
			return loc, true
		}
	}
	return AttributeLocation(name)
}

func (bs *BindingStateSystem) Get(geometryID uint32) (*BindingState, bool) {
	return bs.states.Lookup(geometryID)
}

// ReleaseStatesOfGeometry destroys the binding of the geometry with id.
func (bs *BindingStateSystem) ReleaseStatesOfGeometry(geometryID uint32) bool {
	return bs.states.Remove(geometryID)
}

func (bs *BindingStateSystem) Count() int {
	return bs.states.Len()
}

func (bs *BindingStateSystem) Shutdown() error {
	bs.states.Purge()
	return nil
}
