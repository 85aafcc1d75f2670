package renderer

import (
	"runtime"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/renderer/headless"
	"github.com/hq2318768188/FFEngine/engine/renderer/metadata"
	"github.com/hq2318768188/FFEngine/engine/resources"
	"github.com/hq2318768188/FFEngine/engine/scene"
	"github.com/hq2318768188/FFEngine/engine/systems"
)

type fixture struct {
	renderer *Renderer
	systems  *systems.SystemManager
	backend  *headless.HeadlessRenderer
	bus      *core.EventBus
	scene    *scene.Scene
	camera   *scene.PerspectiveCamera
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := headless.New()
	require.NoError(t, backend.Initialize("renderer", 640, 480))
	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{Workers: 1}, backend)
	require.NoError(t, err)
	require.NoError(t, sm.Initialize())

	r, err := New(DefaultConfig(), sm)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, r.Shutdown())
		assert.NoError(t, sm.Shutdown())
	})

	return &fixture{
		renderer: r,
		systems:  sm,
		backend:  backend,
		bus:      sm.Bus,
		scene:    scene.NewScene(sm.Bus),
		// looks down -z from the origin
		camera: scene.NewPerspectiveCamera(sm.Bus, 60, 1, 0.1, 100),
	}
}

func (f *fixture) box(parent scene.Object, material *resources.Material, x, y, z float32) *scene.Mesh {
	m := scene.NewMesh(f.bus, resources.NewBoxGeometry(f.bus, 1, 1, 1), material)
	m.SetPosition(x, y, z)
	if parent == nil {
		parent = f.scene
	}
	if err := parent.AsNode().AddChild(m); err != nil {
		panic(err)
	}
	return m
}

func (f *fixture) vertexArrayOf(t *testing.T, m *scene.Mesh) metadata.VertexArrayHandle {
	t.Helper()
	s, ok := f.systems.BindingStates.Get(m.Geometry.ID)
	require.True(t, ok, "geometry %d has no binding", m.Geometry.ID)
	return s.VertexArray
}

func TestNewRequiresInitializedSystems(t *testing.T) {
	_, err := New(DefaultConfig(), nil)
	assert.ErrorIs(t, err, core.ErrNotInitialized)

	backend := headless.New()
	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{}, backend)
	require.NoError(t, err)
	defer sm.Shutdown()
	_, err = New(DefaultConfig(), sm)
	assert.ErrorIs(t, err, core.ErrNotInitialized)
}

func TestRenderRequiresSceneAndCamera(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.renderer.Render(nil, f.camera), core.ErrNilScene)
	assert.ErrorIs(t, f.renderer.Render(f.scene, nil), core.ErrNilCamera)
}

func TestRenderDrawsWhatTheCameraSees(t *testing.T) {
	f := newFixture(t)
	material := resources.NewBasicMaterial(f.bus)
	f.box(nil, material, 0, 0, -5)
	f.box(nil, material, 1, 0, -8)
	// behind the camera and far off to the side
	f.box(nil, material, 0, 0, 5)
	f.box(nil, material, 200, 0, -5)

	require.NoError(t, f.renderer.Render(f.scene, f.camera))

	stats := f.renderer.GetStats()
	assert.Equal(t, uint32(2), stats.Calls)
	assert.Equal(t, uint32(24), stats.Triangles)
	assert.Zero(t, stats.Skipped)
	assert.Equal(t, 1, stats.Programs)
	assert.Equal(t, 2, stats.Geometries)
	assert.Len(t, f.backend.Draws(), 2)
	assert.Equal(t, 1, f.backend.Clears())
	for _, d := range f.backend.Draws() {
		assert.True(t, d.Indexed)
		assert.Equal(t, int32(36), d.Count)
	}
}

func TestRenderFrustumCullingCanBeDisabled(t *testing.T) {
	f := newFixture(t)
	behind := f.box(nil, resources.NewBasicMaterial(f.bus), 0, 0, 5)
	behind.FrustumCulled = false

	require.NoError(t, f.renderer.Render(f.scene, f.camera))
	assert.Equal(t, uint32(1), f.renderer.GetStats().Calls)
}

func TestInvisibleNodeHidesSubtree(t *testing.T) {
	f := newFixture(t)
	group := scene.NewGroup(f.bus)
	require.NoError(t, f.scene.AddChild(group))
	f.box(group, resources.NewBasicMaterial(f.bus), 0, 0, -5)
	group.Visible = false

	require.NoError(t, f.renderer.Render(f.scene, f.camera))
	assert.Zero(t, f.renderer.GetStats().Calls)

	group.Visible = true
	require.NoError(t, f.renderer.Render(f.scene, f.camera))
	assert.Equal(t, uint32(1), f.renderer.GetStats().Calls)
}

func TestRenderSortsBuckets(t *testing.T) {
	f := newFixture(t)
	opaque := resources.NewBasicMaterial(f.bus)
	glass := resources.NewBasicMaterial(f.bus)
	glass.Transparent = true
	glass.Opacity = 0.5

	// pushed in the worst order for both buckets
	opaqueFar := f.box(nil, opaque, 0, 0, -9)
	opaqueNear := f.box(nil, opaque, 0, 0, -3)
	glassNear := f.box(nil, glass, 0, 0, -2)
	glassFar := f.box(nil, glass, 0, 0, -7)

	require.NoError(t, f.renderer.Render(f.scene, f.camera))

	draws := f.backend.Draws()
	require.Len(t, draws, 4)
	expected := []*scene.Mesh{opaqueNear, opaqueFar, glassFar, glassNear}
	for i, m := range expected {
		assert.Equal(t, f.vertexArrayOf(t, m), draws[i].VertexArray, "draw %d", i)
	}
	assert.False(t, draws[0].Blending)
	assert.False(t, draws[1].Blending)
	assert.True(t, draws[2].Blending)
	assert.True(t, draws[3].Blending)
}

func TestGroupOrderTakesPrecedenceOverDepth(t *testing.T) {
	f := newFixture(t)
	material := resources.NewBasicMaterial(f.bus)
	group := scene.NewGroup(f.bus)
	group.GroupOrder = 1
	require.NoError(t, f.scene.AddChild(group))

	near := f.box(nil, material, 0, 0, -2)
	far := f.box(group, material, 0, 0, -9)

	require.NoError(t, f.renderer.Render(f.scene, f.camera))

	draws := f.backend.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, f.vertexArrayOf(t, far), draws[0].VertexArray)
	assert.Equal(t, f.vertexArrayOf(t, near), draws[1].VertexArray)
}

func TestRenderSharesProgramsAndSkipsRedundantState(t *testing.T) {
	f := newFixture(t)
	a := resources.NewPhongMaterial(f.bus)
	b := resources.NewPhongMaterial(f.bus)
	b.Color = mgl32.Vec3{1, 0, 0}
	f.box(nil, a, 0, 0, -4)
	f.box(nil, b, 0, 0, -6)

	require.NoError(t, f.renderer.Render(f.scene, f.camera))
	require.NoError(t, f.renderer.Render(f.scene, f.camera))

	assert.Equal(t, 1, f.backend.ProgramsCompiled())
	assert.Equal(t, 1, f.systems.Programs.Count())
	// one switch per frame
	assert.Equal(t, 2, f.backend.UseProgramCalls())
	assert.Equal(t, uint64(2), f.backend.FrameNumber)
}

func TestRenderSkipsItemsThatFailToBuild(t *testing.T) {
	f := newFixture(t)
	f.backend.FailProgram = func(source metadata.ProgramSource) bool {
		return source.Name == "phong"
	}
	f.box(nil, resources.NewPhongMaterial(f.bus), 0, 0, -4)
	f.box(nil, resources.NewBasicMaterial(f.bus), 0, 0, -6)
	f.box(nil, nil, 0, 0, -8)

	require.NoError(t, f.renderer.Render(f.scene, f.camera))
	stats := f.renderer.GetStats()
	assert.Equal(t, uint32(1), stats.Calls)
	assert.Equal(t, uint32(2), stats.Skipped)

	// failures are not cached, the next frame tries again
	f.backend.FailProgram = nil
	require.NoError(t, f.renderer.Render(f.scene, f.camera))
	stats = f.renderer.GetStats()
	assert.Equal(t, uint32(2), stats.Calls)
	assert.Equal(t, uint32(1), stats.Skipped)
	assert.Equal(t, uint64(1), stats.Frame)
}

func TestOverrideMaterialReplacesEveryMaterial(t *testing.T) {
	f := newFixture(t)
	phong := resources.NewPhongMaterial(f.bus)
	f.box(nil, phong, 0, 0, -4)
	f.box(nil, phong, 0, 0, -6)
	override := resources.NewBasicMaterial(f.bus)
	f.scene.OverrideMaterial = override

	require.NoError(t, f.renderer.Render(f.scene, f.camera))

	assert.Equal(t, uint32(2), f.renderer.GetStats().Calls)
	assert.True(t, f.systems.Materials.Has(override.ID))
	assert.False(t, f.systems.Materials.Has(phong.ID))
	assert.Equal(t, 1, f.backend.ProgramsCompiled())
}

func TestSharedGeometryUploadsOncePerFrame(t *testing.T) {
	f := newFixture(t)
	material := resources.NewBasicMaterial(f.bus)
	geometry := resources.NewBoxGeometry(f.bus, 1, 1, 1)
	for _, z := range []float32{-3, -5} {
		m := scene.NewMesh(f.bus, geometry, material)
		m.SetPosition(0, 0, z)
		require.NoError(t, f.scene.AddChild(m))
	}

	require.NoError(t, f.renderer.Render(f.scene, f.camera))
	position := geometry.GetAttribute(resources.AttributePosition)
	s, ok := f.systems.Attributes.Get(position)
	require.True(t, ok)
	assert.Equal(t, 1, f.backend.BufferWrites(s.Buffer))

	position.NeedsUpdate()
	require.NoError(t, f.renderer.Render(f.scene, f.camera))
	assert.Equal(t, 2, f.backend.BufferWrites(s.Buffer))
	assert.Equal(t, uint32(2), f.renderer.GetStats().Calls)
}

func TestMaterialMapsBindTextureUnits(t *testing.T) {
	f := newFixture(t)
	material := resources.NewBasicMaterial(f.bus)
	// no sources yet, so the checkerboard stands in
	material.DiffuseMap = resources.NewTexture(f.bus, 4, 4)
	f.box(nil, material, 0, 0, -4)

	require.NoError(t, f.renderer.Render(f.scene, f.camera))

	assert.Equal(t, f.systems.Textures.DefaultTexture(), f.backend.BoundTexture(systems.DiffuseMapUnit))
	program := f.systems.Materials.Get(material).Program()
	require.NotNil(t, program)
	location, ok := program.UniformLocation("diffuseMap")
	require.True(t, ok)

	found := false
	for _, u := range f.backend.Uniforms() {
		if u.Program == program.Handle() && u.Location == location {
			assert.Equal(t, int32(systems.DiffuseMapUnit), u.Value)
			found = true
		}
	}
	assert.True(t, found, "diffuseMap sampler not uploaded")
}

func TestCubeBackgroundIsDrawnFirst(t *testing.T) {
	f := newFixture(t)
	f.scene.Background = resources.NewCubeTexture(f.bus, 16, 16)
	f.box(nil, resources.NewBasicMaterial(f.bus), 0, 0, -4)

	require.NoError(t, f.renderer.Render(f.scene, f.camera))

	draws := f.backend.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, metadata.FaceCullModeFront, draws[0].CullMode)
	assert.False(t, draws[0].DepthWrite)
	assert.Equal(t, metadata.FaceCullModeBack, draws[1].CullMode)
	assert.True(t, draws[1].DepthWrite)
	assert.Equal(t, f.systems.Textures.DefaultCubeTexture(), f.backend.BoundTexture(systems.EnvMapUnit))

	// a 2D background is not drawn
	f.scene.Background = resources.NewTexture(f.bus, 16, 16)
	require.NoError(t, f.renderer.Render(f.scene, f.camera))
	assert.Len(t, f.backend.Draws(), 1)
}

func TestRenderTargetRedirectsDraws(t *testing.T) {
	f := newFixture(t)
	f.box(nil, resources.NewBasicMaterial(f.bus), 0, 0, -4)
	target := resources.NewRenderTarget(f.bus, 64, 64)

	require.NoError(t, f.renderer.SetRenderTarget(target))
	require.NoError(t, f.renderer.Render(f.scene, f.camera))
	draws := f.backend.Draws()
	require.Len(t, draws, 1)
	assert.NotEqual(t, metadata.FramebufferHandle(metadata.InvalidHandle), draws[0].Framebuffer)
	assert.Same(t, target, f.renderer.GetRenderTarget())
	assert.Equal(t, 1, f.backend.Live().Framebuffers)

	require.NoError(t, f.renderer.SetRenderTarget(nil))
	require.NoError(t, f.renderer.Render(f.scene, f.camera))
	assert.Equal(t, metadata.FramebufferHandle(metadata.InvalidHandle), f.backend.Draws()[0].Framebuffer)

	target.Dispose()
	assert.Zero(t, f.backend.Live().Framebuffers)
}

func TestDisposingDrawnObjectsFreesGPUObjects(t *testing.T) {
	f := newFixture(t)
	material := resources.NewPhongMaterial(f.bus)
	mesh := f.box(nil, material, 0, 0, -4)
	require.NoError(t, f.renderer.Render(f.scene, f.camera))

	live := f.backend.Live()
	assert.Equal(t, 4, live.Buffers)
	assert.Equal(t, 1, live.VertexArrays)
	assert.Equal(t, 1, live.Programs)

	mesh.Geometry.Dispose()
	material.Dispose()
	mesh.Dispose()

	assert.Equal(t, headless.LiveObjects{Textures: 2}, f.backend.Live())
	assert.Zero(t, f.systems.Objects.Count())

	require.NoError(t, f.renderer.Render(f.scene, f.camera))
	assert.Zero(t, f.renderer.GetStats().Calls)
}

func TestDisposedResourcesAreNotRebuilt(t *testing.T) {
	f := newFixture(t)
	material := resources.NewPhongMaterial(f.bus)
	mesh := f.box(nil, material, 0, 0, -4)
	require.NoError(t, f.renderer.Render(f.scene, f.camera))
	require.Equal(t, uint32(1), f.renderer.GetStats().Calls)

	// the mesh stays in the scene and keeps pointing at both
	mesh.Geometry.Dispose()
	material.Dispose()
	defaults := headless.LiveObjects{Textures: 2}
	require.Equal(t, defaults, f.backend.Live())

	require.NoError(t, f.renderer.Render(f.scene, f.camera))
	stats := f.renderer.GetStats()
	assert.Zero(t, stats.Calls)
	assert.Equal(t, uint32(1), stats.Skipped)
	assert.Equal(t, defaults, f.backend.Live())
	assert.False(t, f.systems.Geometries.Has(mesh.Geometry.ID))
	assert.False(t, f.systems.Materials.Has(material.ID))
	assert.Zero(t, f.systems.Programs.Count())

	assert.ErrorIs(t, f.systems.Geometries.Update(mesh.Geometry), core.ErrDisposed)
	_, _, err := f.systems.BindingStates.Setup(mesh.Geometry, nil)
	assert.ErrorIs(t, err, core.ErrDisposed)
	assert.Equal(t, defaults, f.backend.Live())
}

func TestRemovedDrawableCanBeCollected(t *testing.T) {
	f := newFixture(t)
	material := resources.NewBasicMaterial(f.bus)

	// a mesh points at itself through its node, so the finalizer goes on
	// a value only the mesh holds
	type token struct{ name *string }
	collected := make(chan struct{})
	func() {
		mesh := f.box(nil, material, 0, 0, -4)
		name := "dropped"
		tk := &token{name: &name}
		runtime.SetFinalizer(tk, func(*token) { close(collected) })
		mesh.BeforeRender = func(*scene.Scene, scene.Camera) { _ = tk.name }

		require.NoError(t, f.renderer.Render(f.scene, f.camera))
		require.Equal(t, uint32(1), f.renderer.GetStats().Calls)
		require.True(t, mesh.RemoveFromParent())
	}()

	require.NoError(t, f.renderer.Render(f.scene, f.camera))
	assert.Zero(t, f.renderer.GetStats().Calls)

	assert.Eventually(t, func() bool {
		runtime.GC()
		select {
		case <-collected:
			return true
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond, "drawable still reachable after removal")
}

func TestClearColorAndSize(t *testing.T) {
	f := newFixture(t)
	color := mgl32.Vec4{0.1, 0.2, 0.3, 1}
	f.renderer.SetClearColor(color)
	assert.Equal(t, color, f.renderer.GetClearColor())
	assert.Equal(t, color, f.backend.ClearColor())

	require.NoError(t, f.renderer.SetSize(800, 600))
	w, h := f.renderer.GetSize()
	assert.Equal(t, uint32(800), w)
	assert.Equal(t, uint32(600), h)
	w, h = f.backend.Size()
	assert.Equal(t, uint32(800), w)
	assert.Equal(t, uint32(600), h)
}

func TestViewDepthIsPositiveInFront(t *testing.T) {
	view := mgl32.Ident4()
	assert.InDelta(t, 5, viewDepth(view, mgl32.Vec3{0, 0, -5}), 1e-6)
	assert.InDelta(t, -5, viewDepth(view, mgl32.Vec3{0, 0, 5}), 1e-6)
}
