package systems

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hq2318768188/FFEngine/engine/containers"
	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/renderer/metadata"
	"github.com/hq2318768188/FFEngine/engine/resources"
)

// AttributeState is the GPU buffer of one attribute.
type AttributeState struct {
	AttributeID uint32
	Buffer      metadata.BufferHandle
	Target      metadata.BufferTarget
	ItemSize    int

	mutex   sync.Mutex
	version uint32
	count   int
}

func (s *AttributeState) Count() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.count
}

func (s *AttributeState) Version() uint32 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.version
}

type AttributeSystem struct {
	owner      string
	bus        *core.EventBus
	backend    metadata.Backend
	attributes *containers.RefCache[uint32, *AttributeState]
}

func NewAttributeSystem(bus *core.EventBus, backend metadata.Backend) *AttributeSystem {
	as := &AttributeSystem{
		owner:   uuid.NewString(),
		bus:     bus,
		backend: backend,
	}
	as.attributes = containers.NewRefCache("attributes", func(id uint32, s *AttributeState) {
		backend.DestroyBuffer(s.Buffer)
	})
	bus.AddEventListener(core.EVENT_ATTRIBUTE_DISPOSE, as.owner, as.onAttributeDispose)
	return as
}

func attributeData(attribute *resources.Attribute) interface{} {
	if attribute.Kind == resources.AttributeKindIndex {
		return attribute.GetIndices()
	}
	return attribute.GetData()
}

/**
 * @brief Creates the buffer of attribute on first use, otherwise rewrites it
 * when the attribute version moved since the last upload.
 */
func (as *AttributeSystem) Update(attribute *resources.Attribute, target metadata.BufferTarget) (*AttributeState, error) {
	s, created, err := as.attributes.LoadOrCreate(attribute.ID, func() (*AttributeState, error) {
		buffer, err := as.backend.CreateBuffer(target, metadata.BufferUsageStaticDraw, attributeData(attribute))
		if err != nil {
			return nil, fmt.Errorf("attribute %d: %w", attribute.ID, err)
		}
		return &AttributeState{
			AttributeID: attribute.ID,
			Buffer:      buffer,
			Target:      target,
			ItemSize:    attribute.ItemSize,
			version:     attribute.Version(),
			count:       attribute.Count(),
		}, nil
	})
	if err != nil || created {
		return s, err
	}

	version := attribute.Version()
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.version == version {
		return s, nil
	}
	if err := as.backend.UpdateBuffer(s.Buffer, attributeData(attribute)); err != nil {
		return nil, fmt.Errorf("attribute %d: %w", attribute.ID, err)
	}
	s.version = version
	s.count = attribute.Count()
	return s, nil
}

func (as *AttributeSystem) Get(attribute *resources.Attribute) (*AttributeState, bool) {
	return as.attributes.Lookup(attribute.ID)
}

// Remove destroys the buffer of the attribute with id.
func (as *AttributeSystem) Remove(id uint32) bool {
	return as.attributes.Remove(id)
}

func (as *AttributeSystem) Count() int {
	return as.attributes.Len()
}

func (as *AttributeSystem) onAttributeDispose(event *core.Event) {
	as.Remove(event.TargetID)
}

func (as *AttributeSystem) Shutdown() error {
	as.bus.RemoveEventListener(core.EVENT_ATTRIBUTE_DISPOSE, as.owner)
	as.attributes.Purge()
	return nil
}
