package resources

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hq2318768188/FFEngine/engine/core"
)

func recordEvents(bus *core.EventBus, names ...core.EventName) *[]*core.Event {
	events := &[]*core.Event{}
	for _, name := range names {
		bus.AddEventListener(name, "recorder", func(e *core.Event) {
			*events = append(*events, e)
		})
	}
	return events
}

func TestGeometryAttributeSignature(t *testing.T) {
	bus := core.NewEventBus()
	g := NewGeometry(bus)
	position := NewFloatAttribute(bus, []float32{0, 0, 0}, 3)
	g.SetAttribute(AttributePosition, position)
	before := g.AttributeSignature()

	assert.Equal(t, before, g.AttributeSignature())

	g.SetAttribute(AttributeUV, NewFloatAttribute(bus, []float32{0, 0}, 2))
	withUV := g.AttributeSignature()
	assert.NotEqual(t, before, withUV)

	// changing data in place does not change the layout
	position.SetData([]float32{1, 1, 1})
	assert.Equal(t, withUV, g.AttributeSignature())

	g.SetIndex(NewIndexAttribute(bus, []uint32{0}))
	assert.NotEqual(t, withUV, g.AttributeSignature())
}

func TestGeometryBoundingSphereIsCached(t *testing.T) {
	g := NewBoxGeometry(nil, 2, 2, 2)
	s := g.GetBoundingSphere()
	assert.True(t, s.Center.ApproxEqualThreshold(mgl32.Vec3{}, 1e-5))
	assert.InDelta(t, 1.7320508, float64(s.Radius), 1e-4)

	// editing the data without resetting the attribute keeps the cached sphere
	g.GetAttribute(AttributePosition).SetData([]float32{10, 10, 10})
	assert.Equal(t, s, g.GetBoundingSphere())

	// recomputing picks the new data up
	assert.InDelta(t, 0, float64(g.ComputeBoundingSphere().Radius), 1e-6)
}

func TestBoxGeometryLayout(t *testing.T) {
	g := NewBoxGeometry(nil, 1, 1, 1)
	assert.Equal(t, 24, g.GetAttribute(AttributePosition).Count())
	assert.Equal(t, 24, g.GetAttribute(AttributeUV).Count())
	assert.Equal(t, 36, g.GetIndex().Count())
	box := g.GetBoundingBox()
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, box.Size())
}

func TestPlaneGeometryNormals(t *testing.T) {
	g := NewPlaneGeometry(nil, 2, 2)
	normals := g.GetAttribute(AttributeNormal).GetData()
	require.Len(t, normals, 12)
	for i := 0; i < 4; i++ {
		assert.Equal(t, float32(1), normals[i*3+2])
	}
}

func TestGeometryDisposePublishesOnce(t *testing.T) {
	bus := core.NewEventBus()
	events := recordEvents(bus, core.EVENT_GEOMETRY_DISPOSE)
	g := NewGeometry(bus)

	g.Dispose()
	g.Dispose()
	require.Len(t, *events, 1)
	assert.Equal(t, g.ID, (*events)[0].TargetID)
}

func TestMaterialClone(t *testing.T) {
	bus := core.NewEventBus()
	m := NewPhongMaterial(bus)
	m.Transparent = true
	m.Opacity = 0.5
	m.DiffuseMap = NewTexture(bus, 4, 4)
	m.NeedsUpdate()

	c, err := m.Clone()
	require.NoError(t, err)
	assert.NotEqual(t, m.ID, c.ID)
	assert.Greater(t, c.ID, m.ID)
	assert.Equal(t, MaterialTypePhong, c.Type)
	assert.True(t, c.Transparent)
	assert.Equal(t, float32(0.5), c.Opacity)
	assert.Same(t, m.DiffuseMap, c.DiffuseMap)
	assert.Equal(t, uint32(1), c.Version())
	assert.Equal(t, uint32(2), m.Version())

	events := recordEvents(bus, core.EVENT_MATERIAL_DISPOSE)
	c.Dispose()
	require.Len(t, *events, 1)
	assert.Equal(t, c.ID, (*events)[0].TargetID)
}

func TestTextureDisposeReleasesSources(t *testing.T) {
	bus := core.NewEventBus()
	events := recordEvents(bus, core.EVENT_TEXTURE_DISPOSE, core.EVENT_SOURCE_RELEASE)

	cube := NewCubeTexture(bus, 1, 1)
	assert.False(t, cube.IsComplete())
	for i := 0; i < CubeFaceCount; i++ {
		cube.SetSource(i, NewSource("face.png", 1, 1, []byte{0, 0, 0, 255}))
	}
	assert.True(t, cube.IsComplete())

	cube.Dispose()
	require.Len(t, *events, 1+CubeFaceCount)
	assert.Equal(t, core.EVENT_TEXTURE_DISPOSE, (*events)[0].Name)
	for _, e := range (*events)[1:] {
		assert.Equal(t, core.EVENT_SOURCE_RELEASE, e.Name)
		assert.Equal(t, "face.png", e.UserData)
	}
	assert.Empty(t, cube.GetSources())
}

func TestTextureSetSourceReleasesReplaced(t *testing.T) {
	bus := core.NewEventBus()
	events := recordEvents(bus, core.EVENT_SOURCE_RELEASE)

	tex := NewTexture(bus, 1, 1)
	first := NewSource("first.png", 1, 1, []byte{0, 0, 0, 255})
	second := NewSource("second.png", 1, 1, []byte{255, 255, 255, 255})
	tex.SetSource(0, first)
	assert.Empty(t, *events)

	v := tex.Version()
	tex.SetSource(0, second)
	require.Len(t, *events, 1)
	assert.Same(t, first, (*events)[0].Target)
	assert.Equal(t, "first.png", (*events)[0].UserData)
	assert.Greater(t, tex.Version(), v)
	assert.Equal(t, []*Source{second}, tex.GetSources())

	tex.Dispose()
	require.Len(t, *events, 2)
	assert.Same(t, second, (*events)[1].Target)

	// a late source is handed straight back
	late := NewSource("late.png", 1, 1, []byte{0, 0, 0, 255})
	tex.SetSource(0, late)
	require.Len(t, *events, 3)
	assert.Same(t, late, (*events)[2].Target)
	assert.Empty(t, tex.GetSources())
}

func TestAttributeVersion(t *testing.T) {
	a := NewFloatAttribute(nil, []float32{1, 2, 3, 4, 5, 6}, 3)
	assert.Equal(t, 2, a.Count())
	v := a.Version()
	a.NeedsUpdate()
	assert.Equal(t, v+1, a.Version())

	idx := NewIndexAttribute(nil, []uint32{0, 1, 2})
	assert.Equal(t, AttributeKindIndex, idx.Kind)
	assert.Equal(t, 3, idx.Count())
}
