package scene

import (
	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/math"
	"github.com/hq2318768188/FFEngine/engine/resources"
)

// Drawable is a scene object that can be submitted for drawing.
type Drawable interface {
	Object
	GetGeometry() *resources.Geometry
	GetMaterial() *resources.Material
	GetBoundingSphere() math.Sphere
	IsFrustumCulled() bool
	OnBeforeRender(scene *Scene, camera Camera)
}

type BeforeRenderCallback func(scene *Scene, camera Camera)

// Mesh draws a shared geometry with a shared material.
type Mesh struct {
	Node
	Geometry *resources.Geometry
	Material *resources.Material
	// FrustumCulled drawables outside the view volume are skipped.
	FrustumCulled bool
	// Invoked right before the mesh is drawn, after its matrices are updated.
	BeforeRender BeforeRenderCallback
}

func NewMesh(bus *core.EventBus, geometry *resources.Geometry, material *resources.Material) *Mesh {
	m := &Mesh{
		Geometry:      geometry,
		Material:      material,
		FrustumCulled: true,
	}
	m.init(bus, m)
	return m
}

func (m *Mesh) GetGeometry() *resources.Geometry {
	return m.Geometry
}

func (m *Mesh) GetMaterial() *resources.Material {
	return m.Material
}

// GetBoundingSphere returns the geometry's local bounding sphere,
// computing it on first use.
func (m *Mesh) GetBoundingSphere() math.Sphere {
	if m.Geometry == nil {
		return math.Sphere{Radius: -1}
	}
	return m.Geometry.GetBoundingSphere()
}

func (m *Mesh) IsFrustumCulled() bool {
	return m.FrustumCulled
}

func (m *Mesh) OnBeforeRender(scene *Scene, camera Camera) {
	if m.BeforeRender != nil {
		m.BeforeRender(scene, camera)
	}
}
