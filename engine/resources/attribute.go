package resources

import (
	"sync"

	"github.com/hq2318768188/FFEngine/engine/core"
)

type AttributeKind uint8

const (
	// Per vertex float data, uploaded as an array buffer.
	AttributeKindFloat AttributeKind = iota
	// Triangle indices, uploaded as an element buffer.
	AttributeKindIndex
)

// Well known attribute names.
const (
	AttributePosition = "position"
	AttributeNormal   = "normal"
	AttributeColor    = "color"
	AttributeUV       = "uv"
	AttributeTangent  = "tangent"
)

// Attribute is a typed array shared by geometries. Every data change bumps
// Version so the GPU copy can be refreshed lazily.
type Attribute struct {
	ID       uint32
	Kind     AttributeKind
	ItemSize int

	mutex    sync.RWMutex
	data     []float32
	indices  []uint32
	version  uint32
	disposed bool
	bus      *core.EventBus
}

func NewFloatAttribute(bus *core.EventBus, data []float32, itemSize int) *Attribute {
	return &Attribute{
		ID:       core.IdentifierAcquireNewID(),
		Kind:     AttributeKindFloat,
		ItemSize: itemSize,
		data:     data,
		version:  1,
		bus:      bus,
	}
}

func NewIndexAttribute(bus *core.EventBus, indices []uint32) *Attribute {
	return &Attribute{
		ID:       core.IdentifierAcquireNewID(),
		Kind:     AttributeKindIndex,
		ItemSize: 1,
		indices:  indices,
		version:  1,
		bus:      bus,
	}
}

func (a *Attribute) GetID() uint32 {
	return a.ID
}

func (a *Attribute) GetData() []float32 {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.data
}

func (a *Attribute) GetIndices() []uint32 {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.indices
}

func (a *Attribute) SetData(data []float32) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.data = data
	a.version++
}

func (a *Attribute) SetIndices(indices []uint32) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.indices = indices
	a.version++
}

// NeedsUpdate marks the data as changed in place.
func (a *Attribute) NeedsUpdate() {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.version++
}

func (a *Attribute) Version() uint32 {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.version
}

// Count is the number of items, i.e. vertices or indices.
func (a *Attribute) Count() int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	if a.Kind == AttributeKindIndex {
		return len(a.indices)
	}
	if a.ItemSize == 0 {
		return 0
	}
	return len(a.data) / a.ItemSize
}

func (a *Attribute) Dispose() {
	a.mutex.Lock()
	if a.disposed {
		a.mutex.Unlock()
		return
	}
	a.disposed = true
	a.mutex.Unlock()

	dispatch(a.bus, core.EVENT_ATTRIBUTE_DISPOSE, a.ID, a)
}
