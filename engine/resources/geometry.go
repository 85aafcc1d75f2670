package resources

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/math"
)

// Geometry is a named set of vertex attributes plus an optional index.
// Geometries are shared between drawables.
type Geometry struct {
	ID   uint32
	Name string

	mutex          sync.RWMutex
	attributes     map[string]*Attribute
	index          *Attribute
	boundingBox    *math.Box3
	boundingSphere *math.Sphere
	disposed       bool
	bus            *core.EventBus
}

func NewGeometry(bus *core.EventBus) *Geometry {
	return &Geometry{
		ID:         core.IdentifierAcquireNewID(),
		attributes: make(map[string]*Attribute),
		bus:        bus,
	}
}

func (g *Geometry) GetID() uint32 {
	return g.ID
}

// Bus returns the event bus the geometry publishes on.
func (g *Geometry) Bus() *core.EventBus {
	return g.bus
}

func (g *Geometry) SetAttribute(name string, attribute *Attribute) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.attributes[name] = attribute
	if name == AttributePosition {
		g.boundingBox = nil
		g.boundingSphere = nil
	}
}

func (g *Geometry) GetAttribute(name string) *Attribute {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.attributes[name]
}

func (g *Geometry) HasAttribute(name string) bool {
	return g.GetAttribute(name) != nil
}

func (g *Geometry) DeleteAttribute(name string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	delete(g.attributes, name)
}

// GetAttributes returns a copy of the attribute table.
func (g *Geometry) GetAttributes() map[string]*Attribute {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	attributes := make(map[string]*Attribute, len(g.attributes))
	for k, v := range g.attributes {
		attributes[k] = v
	}
	return attributes
}

func (g *Geometry) SetIndex(index *Attribute) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.index = index
}

func (g *Geometry) GetIndex() *Attribute {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.index
}

/**
 * @brief Describes which attribute objects feed which names, plus the index.
 * Two geometries with the same signature can share a vertex binding layout;
 * a changed signature means the binding must be rebuilt.
 */
func (g *Geometry) AttributeSignature() string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	names := make([]string, 0, len(g.attributes))
	for name := range g.attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, "%s:%d;", name, g.attributes[name].ID)
	}
	if g.index != nil {
		fmt.Fprintf(&sb, "index:%d", g.index.ID)
	}
	return sb.String()
}

func (g *Geometry) ComputeBoundingBox() math.Box3 {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.computeBoundingBox()
}

func (g *Geometry) computeBoundingBox() math.Box3 {
	box := math.NewBox3()
	if position := g.attributes[AttributePosition]; position != nil {
		box = math.BoxFromPoints(position.GetData(), position.ItemSize)
	}
	g.boundingBox = &box
	return box
}

func (g *Geometry) ComputeBoundingSphere() math.Sphere {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.computeBoundingSphere()
}

func (g *Geometry) computeBoundingSphere() math.Sphere {
	sphere := math.Sphere{Radius: -1}
	if position := g.attributes[AttributePosition]; position != nil {
		sphere = math.SphereFromPoints(position.GetData(), position.ItemSize)
	}
	g.boundingSphere = &sphere
	return sphere
}

// GetBoundingSphere computes the sphere on first use and caches it.
func (g *Geometry) GetBoundingSphere() math.Sphere {
	g.mutex.RLock()
	if g.boundingSphere != nil {
		s := *g.boundingSphere
		g.mutex.RUnlock()
		return s
	}
	g.mutex.RUnlock()

	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.boundingSphere != nil {
		return *g.boundingSphere
	}
	return g.computeBoundingSphere()
}

func (g *Geometry) GetBoundingBox() math.Box3 {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.boundingBox != nil {
		return *g.boundingBox
	}
	return g.computeBoundingBox()
}

// ComputeVertexNormals fills the normal attribute with face normals.
func (g *Geometry) ComputeVertexNormals() {
	position := g.GetAttribute(AttributePosition)
	if position == nil || position.ItemSize != 3 {
		return
	}
	var indices []uint32
	if index := g.GetIndex(); index != nil {
		indices = index.GetIndices()
	}
	normals := math.GenerateNormals(position.GetData(), indices)

	if normal := g.GetAttribute(AttributeNormal); normal != nil {
		normal.SetData(normals)
		return
	}
	g.SetAttribute(AttributeNormal, NewFloatAttribute(g.bus, normals, 3))
}

func (g *Geometry) IsDisposed() bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.disposed
}

// Dispose publishes the disposal so every cache holding GPU state for this
// geometry can drop it. Attributes are not disposed.
func (g *Geometry) Dispose() {
	g.mutex.Lock()
	if g.disposed {
		g.mutex.Unlock()
		return
	}
	g.disposed = true
	g.mutex.Unlock()

	dispatch(g.bus, core.EVENT_GEOMETRY_DISPOSE, g.ID, g)
}
