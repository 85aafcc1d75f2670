package testbed

import (
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/hq2318768188/FFEngine/engine"
	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/renderer"
	"github.com/hq2318768188/FFEngine/engine/resources"
	"github.com/hq2318768188/FFEngine/engine/scene"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	scene       *scene.Scene
	worldCamera *scene.PerspectiveCamera

	// three nested cubes, each spinning inside its parent
	cubes []*scene.Mesh
	glass *scene.Mesh

	elapsed float64
	width   uint32
	height  uint32
}

// Faces of the optional skybox, relative to the asset directory.
var skyboxFaces = [resources.CubeFaceCount]string{
	"textures/skybox/right.jpg",
	"textures/skybox/left.jpg",
	"textures/skybox/top.jpg",
	"textures/skybox/bottom.jpg",
	"textures/skybox/front.jpg",
	"textures/skybox/back.jpg",
}

const (
	defaultAssetDir = "assets"
	crateTexture    = "textures/crate.png"
)

func NewTestGame(config *engine.ApplicationConfig) *TestGame {
	if config == nil {
		config = engine.DefaultApplicationConfig()
		config.Name = "FFEngine Testbed"
		config.LogLevel = "debug"
		if fi, err := os.Stat(defaultAssetDir); err == nil && fi.IsDir() {
			config.AssetDir = defaultAssetDir
		}
	}
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State: &gameState{
				width:  config.StartWidth,
				height: config.StartHeight,
			},
		},
	}

	tg.FnBoot = tg.Boot
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Boot() error {
	core.LogInfo("booting testbed...")
	return nil
}

func (g *TestGame) Initialize() error {
	core.LogDebug("testbed initialize")
	state := g.State.(*gameState)
	bus := g.SystemManager.Bus

	state.scene = scene.NewScene(bus)
	state.worldCamera = scene.NewPerspectiveCamera(bus, 45, float32(state.width)/float32(state.height), 0.1, 1000)
	state.worldCamera.SetPosition(0, 4, 30)

	if g.SystemManager.Assets.AssetsDir() != "" {
		if sky, err := g.SystemManager.Assets.LoadCubeTexture(skyboxFaces); err == nil {
			state.scene.Background = sky
		} else {
			core.LogWarn("no skybox: %s", err)
		}
	}

	material := resources.NewPhongMaterial(bus)
	if crate, err := g.SystemManager.Assets.LoadTexture(crateTexture); err == nil {
		material.DiffuseMap = crate
	} else {
		core.LogWarn("crate texture unavailable, drawing untextured: %s", err)
	}

	var parent scene.Object = state.scene
	for _, c := range []struct {
		name   string
		size   float32
		offset mgl32.Vec3
	}{
		{"test_cube", 10, mgl32.Vec3{0, 0, 0}},
		{"test_cube_2", 5, mgl32.Vec3{10, 0, 1}},
		{"test_cube_3", 2, mgl32.Vec3{5, 0, 1}},
	} {
		cube := scene.NewMesh(bus, resources.NewBoxGeometry(bus, c.size, c.size, c.size), material)
		cube.Name = c.name
		cube.SetPositionV(c.offset)
		if err := parent.AsNode().AddChild(cube); err != nil {
			return err
		}
		state.cubes = append(state.cubes, cube)
		parent = cube
	}

	glassMaterial := resources.NewBasicMaterial(bus)
	glassMaterial.Transparent = true
	glassMaterial.Opacity = 0.4
	glassMaterial.Color = mgl32.Vec3{0.3, 0.6, 1}
	glassMaterial.Side = resources.DoubleSide
	state.glass = scene.NewMesh(bus, resources.NewPlaneGeometry(bus, 20, 20), glassMaterial)
	state.glass.SetPosition(0, 0, 8)

	overlay := scene.NewGroup(bus)
	overlay.GroupOrder = -1
	if err := overlay.AddChild(state.glass); err != nil {
		return err
	}
	return state.scene.AddChild(overlay)
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	state.elapsed += deltaTime

	// Perform a small rotation on each cube, compounding down the hierarchy.
	angle := float32(30 * deltaTime)
	for _, cube := range state.cubes {
		cube.RotateY(angle)
	}

	// drift the camera back and forth
	if int(state.elapsed/4)%2 == 0 {
		state.worldCamera.MoveRight(float32(2 * deltaTime))
	} else {
		state.worldCamera.MoveLeft(float32(2 * deltaTime))
	}
	return nil
}

func (g *TestGame) Render(packet *renderer.RenderPacket, deltaTime float64) error {
	state := g.State.(*gameState)
	packet.Scene = state.scene
	packet.Camera = state.worldCamera
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	if height > 0 {
		state.worldCamera.SetAspect(float32(width) / float32(height))
	}
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	if g.Renderer != nil {
		stats := g.Renderer.GetStats()
		core.LogInfo("testbed shutting down after frame %d: %d calls, %d triangles, %d skipped",
			stats.Frame, stats.Calls, stats.Triangles, stats.Skipped)
	}

	if state.scene == nil || state.glass == nil {
		return nil
	}
	if state.scene.Background != nil {
		state.scene.Background.Dispose()
	}
	scene.Traverse(state.scene, func(o scene.Object) {
		if m, ok := o.(*scene.Mesh); ok {
			m.Geometry.Dispose()
		}
	})
	if len(state.cubes) > 0 {
		if diffuse := state.cubes[0].Material.DiffuseMap; diffuse != nil {
			diffuse.Dispose()
		}
		state.cubes[0].Material.Dispose()
	}
	state.glass.Material.Dispose()
	state.scene.Dispose()
	return nil
}
