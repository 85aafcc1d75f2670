package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/math"
	"github.com/hq2318768188/FFEngine/engine/renderer/metadata"
	"github.com/hq2318768188/FFEngine/engine/resources"
	"github.com/hq2318768188/FFEngine/engine/scene"
	"github.com/hq2318768188/FFEngine/engine/systems"
)

type Config struct {
	// SortObjects computes view depth and sorts both buckets every frame.
	SortObjects bool
	// AutoClear clears color, depth and stencil before drawing.
	AutoClear  bool
	ClearColor mgl32.Vec4
}

func DefaultConfig() Config {
	return Config{
		SortObjects: true,
		AutoClear:   true,
		ClearColor:  mgl32.Vec4{0, 0, 0, 1},
	}
}

// RenderPacket is what the engine hands the renderer once per frame.
type RenderPacket struct {
	DeltaTime float64
	Scene     *scene.Scene
	Camera    scene.Camera
}

/**
 * @brief Draws a scene graph through the caches of a SystemManager. Render
 * runs on one goroutine; the caches it drives may still receive dispose
 * events from others.
 */
type Renderer struct {
	config  Config
	systems *systems.SystemManager
	backend metadata.Backend

	state      *renderState
	renderList *RenderList
	frustum    math.Frustum
	stats      metadata.RenderStats
	frame      uint64

	width        uint32
	height       uint32
	renderTarget *resources.RenderTarget

	// lazily built box drawn behind everything for cube map backgrounds
	background *scene.Mesh

	// per frame
	currentScene  *scene.Scene
	currentCamera scene.Camera
	viewMatrix    mgl32.Mat4
}

func New(config Config, sm *systems.SystemManager) (*Renderer, error) {
	if sm == nil || !sm.Initialized() {
		return nil, fmt.Errorf("renderer requires an initialized system manager: %w", core.ErrNotInitialized)
	}
	r := &Renderer{
		config:     config,
		systems:    sm,
		backend:    sm.Backend,
		state:      newRenderState(sm.Backend),
		renderList: NewRenderList(),
	}
	r.backend.SetClearColor(config.ClearColor)
	return r, nil
}

// Render draws one frame of scene as seen from camera.
func (r *Renderer) Render(scn *scene.Scene, camera scene.Camera) error {
	return r.DrawFrame(&RenderPacket{Scene: scn, Camera: camera})
}

/**
 * @brief Runs the frame pipeline: refresh matrices, cull and collect
 * drawables, sort, clear, then draw the background, the opaque bucket and
 * the transparent bucket in that order. An item whose resources fail to
 * build is logged, counted in RenderStats.Skipped and left out.
 */
func (r *Renderer) DrawFrame(packet *RenderPacket) error {
	if packet == nil || packet.Scene == nil {
		return core.ErrNilScene
	}
	if packet.Camera == nil {
		return core.ErrNilCamera
	}
	if err := r.backend.BeginFrame(packet.DeltaTime); err != nil {
		core.LogError(err.Error())
		return err
	}

	scn, camera := packet.Scene, packet.Camera
	r.currentScene = scn
	r.currentCamera = camera
	defer func() {
		r.currentScene = nil
		r.currentCamera = nil
	}()

	if scn.AutoUpdate {
		scn.UpdateWorldMatrix(false, true)
	}
	if camera.AsNode().GetParent() == nil {
		camera.UpdateWorldMatrix(false, false)
	}
	r.viewMatrix = camera.GetViewMatrix()
	r.frustum.SetFromProjectionMatrix(camera.GetProjectionMatrix().Mul4(r.viewMatrix))

	r.stats = metadata.RenderStats{Frame: r.frame}

	r.renderList.Init()
	r.projectObject(scn, 0)
	r.renderList.Finish()
	if r.config.SortObjects {
		r.renderList.Sort(SmallerZFirst, BiggerZFirst)
	}

	r.state.reset()
	if r.config.AutoClear {
		r.backend.Clear(true, true, true)
	}

	r.renderBackground(scn, camera)
	r.renderObjects(r.renderList.GetOpaques())
	r.renderObjects(r.renderList.GetTransparents())

	r.systems.Stats(&r.stats)
	r.frame++

	if err := r.backend.EndFrame(packet.DeltaTime); err != nil {
		core.LogError("renderer end frame failed: %s", err)
		return err
	}
	return nil
}

// projectObject walks the visible part of the graph and pushes every
// drawable that survives culling. A group hands its order to its subtree.
func (r *Renderer) projectObject(object scene.Object, groupOrder int) {
	node := object.AsNode()
	if !node.Visible {
		return
	}

	if group, ok := object.(*scene.Group); ok {
		groupOrder = group.GroupOrder
	}

	if drawable, ok := object.(scene.Drawable); ok {
		if !drawable.IsFrustumCulled() || r.inFrustum(drawable) {
			r.pushDrawable(drawable, groupOrder)
		}
	}

	for _, child := range node.GetChildren() {
		r.projectObject(child, groupOrder)
	}
}

// inFrustum tests the local bounding sphere moved into world space.
func (r *Renderer) inFrustum(drawable scene.Drawable) bool {
	sphere := drawable.GetBoundingSphere()
	if sphere.IsEmpty() {
		return false
	}
	sphere = sphere.ApplyMatrix4(drawable.AsNode().GetWorldMatrix())
	return r.frustum.IntersectSphere(sphere.Center, sphere.Radius)
}

func (r *Renderer) pushDrawable(drawable scene.Drawable, groupOrder int) {
	material := drawable.GetMaterial()
	if r.currentScene.OverrideMaterial != nil {
		material = r.currentScene.OverrideMaterial
	}
	if material == nil {
		core.LogWarn("skipping object %d: %s", drawable.AsNode().ID, core.ErrNilMaterial)
		r.stats.Skipped++
		return
	}
	if !material.Visible {
		return
	}

	var z float32
	if r.config.SortObjects {
		z = viewDepth(r.viewMatrix, drawable.AsNode().GetWorldPosition())
	}
	r.renderList.Push(drawable, drawable.GetGeometry(), material, groupOrder, z)
}

// viewDepth is the distance in front of the camera, positive for points
// the camera looks at.
func viewDepth(view mgl32.Mat4, position mgl32.Vec3) float32 {
	return -view.Mul4x1(position.Vec4(1)).Z()
}

func (r *Renderer) renderObjects(items []*RenderItem) {
	for _, item := range items {
		if err := r.renderItem(item); err != nil {
			core.LogWarn("skipping object %d: %s", item.ID, err)
			r.stats.Skipped++
		}
	}
}

func (r *Renderer) renderItem(item *RenderItem) error {
	drawable := item.Object
	node := drawable.AsNode()
	node.UpdateModelViewMatrix(r.viewMatrix)
	node.UpdateNormalMatrix()
	drawable.OnBeforeRender(r.currentScene, r.currentCamera)

	geometry, err := r.systems.Objects.Update(drawable, r.frame)
	if err != nil {
		return err
	}
	material := item.Material

	program, err := r.systems.Materials.BindProgram(material, systems.ProgramParametersFor(material, geometry))
	if err != nil {
		return err
	}
	binding, _, err := r.systems.BindingStates.Setup(geometry, program)
	if err != nil {
		return err
	}

	r.state.useProgram(program.Handle())
	if err := r.uploadUniforms(program, node, material); err != nil {
		return err
	}
	r.state.setMaterial(material)

	return r.draw(geometry, binding)
}

func (r *Renderer) uploadUniforms(program *systems.Program, node *scene.Node, material *resources.Material) error {
	state := r.systems.Materials.Get(material)
	r.systems.Materials.RefreshUniforms(state, material)

	uniforms := state.Uniforms()
	uniforms["modelViewMatrix"] = metadata.UniformMat4(node.GetModelViewMatrix())
	uniforms["projectionMatrix"] = metadata.UniformMat4(r.currentCamera.GetProjectionMatrix())
	uniforms["normalMatrix"] = metadata.UniformMat3(node.GetNormalMatrix())

	for name, texture := range state.Textures() {
		if err := r.systems.Textures.Bind(texture, uniforms[name].Int()); err != nil {
			return err
		}
	}
	for name, value := range uniforms {
		location, ok := program.UniformLocation(name)
		if !ok {
			continue
		}
		if err := value.Upload(r.backend, location); err != nil {
			return fmt.Errorf("uniform `%s`: %w", name, err)
		}
	}
	return nil
}

func (r *Renderer) draw(geometry *resources.Geometry, binding *systems.BindingState) error {
	var count int
	if binding.Indexed {
		count = geometry.GetIndex().Count()
	} else if position := geometry.GetAttribute(resources.AttributePosition); position != nil {
		count = position.Count()
	}
	if count == 0 {
		return nil
	}

	if binding.Indexed {
		r.backend.DrawElements(metadata.DrawModeTriangles, int32(count))
	} else {
		r.backend.DrawArrays(metadata.DrawModeTriangles, 0, int32(count))
	}
	r.stats.Calls++
	r.stats.Triangles += uint32(count / 3)
	return nil
}

/**
 * @brief Draws a cube map background with a unit box that follows the
 * camera. Non cube backgrounds are ignored.
 */
func (r *Renderer) renderBackground(scn *scene.Scene, camera scene.Camera) {
	background := scn.Background
	if background == nil || background.Type != resources.TextureTypeCube {
		return
	}
	if r.background == nil {
		bus := r.systems.Bus
		r.background = scene.NewMesh(bus, resources.NewBoxGeometry(bus, 1, 1, 1), resources.NewCubeMaterial(bus))
		r.background.Name = "background"
		r.background.FrustumCulled = false
	}
	if r.background.Material.EnvMap != background {
		r.background.Material.EnvMap = background
		r.background.Material.NeedsUpdate()
	}
	r.background.SetPositionV(camera.AsNode().GetWorldPosition())
	r.background.UpdateWorldMatrix(false, false)

	item := &RenderItem{
		ID:       r.background.ID,
		Object:   r.background,
		Geometry: r.background.Geometry,
		Material: r.background.Material,
	}
	if err := r.renderItem(item); err != nil {
		core.LogWarn("skipping background: %s", err)
		r.stats.Skipped++
	}
}

/**
 * @brief Redirects drawing into target. A nil target draws to the default
 * framebuffer again.
 */
func (r *Renderer) SetRenderTarget(target *resources.RenderTarget) error {
	if target == nil {
		r.renderTarget = nil
		r.backend.BindFramebuffer(metadata.InvalidHandle)
		r.backend.Viewport(0, 0, r.width, r.height)
		return nil
	}
	s, err := r.systems.RenderTargets.Get(target)
	if err != nil {
		return err
	}
	r.renderTarget = target
	r.backend.BindFramebuffer(s.Framebuffer)
	r.backend.Viewport(0, 0, s.Width, s.Height)
	return nil
}

func (r *Renderer) GetRenderTarget() *resources.RenderTarget {
	return r.renderTarget
}

func (r *Renderer) SetSize(width, height uint32) error {
	if err := r.backend.Resized(width, height); err != nil {
		return err
	}
	r.width = width
	r.height = height
	if r.renderTarget == nil {
		r.backend.Viewport(0, 0, width, height)
	}
	return nil
}

func (r *Renderer) GetSize() (uint32, uint32) {
	return r.width, r.height
}

func (r *Renderer) SetClearColor(color mgl32.Vec4) {
	r.config.ClearColor = color
	r.backend.SetClearColor(color)
}

func (r *Renderer) GetClearColor() mgl32.Vec4 {
	return r.config.ClearColor
}

// GetStats returns the counters of the last rendered frame.
func (r *Renderer) GetStats() metadata.RenderStats {
	return r.stats
}

// Shutdown disposes what the renderer built for itself. The system manager
// is left running.
func (r *Renderer) Shutdown() error {
	if r.background != nil {
		r.background.Geometry.Dispose()
		r.background.Material.Dispose()
		r.background.Dispose()
		r.background = nil
	}
	return nil
}
