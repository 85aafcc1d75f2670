package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/renderer"
	"github.com/hq2318768188/FFEngine/engine/renderer/headless"
	"github.com/hq2318768188/FFEngine/engine/resources"
	"github.com/hq2318768188/FFEngine/engine/scene"
)

type spinningCube struct {
	*Game
	scene   *scene.Scene
	camera  *scene.PerspectiveCamera
	cube    *scene.Mesh
	updates int
	closed  bool
}

func newSpinningCube(config *ApplicationConfig) *spinningCube {
	g := &spinningCube{Game: &Game{ApplicationConfig: config}}
	g.FnInitialize = func() error {
		bus := g.SystemManager.Bus
		g.scene = scene.NewScene(bus)
		g.camera = scene.NewPerspectiveCamera(bus, 60, 16.0/9.0, 0.1, 100)
		g.cube = scene.NewMesh(bus, resources.NewBoxGeometry(bus, 1, 1, 1), resources.NewPhongMaterial(bus))
		g.cube.SetPosition(0, 0, -5)
		return g.scene.AddChild(g.cube)
	}
	g.FnUpdate = func(deltaTime float64) error {
		g.updates++
		g.cube.RotateY(float32(deltaTime * 45))
		return nil
	}
	g.FnRender = func(packet *renderer.RenderPacket, deltaTime float64) error {
		packet.Scene = g.scene
		packet.Camera = g.camera
		return nil
	}
	g.FnShutdown = func() error {
		g.closed = true
		return nil
	}
	return g
}

func TestEngineRunFrames(t *testing.T) {
	backend := headless.New()
	g := newSpinningCube(DefaultApplicationConfig())
	e, err := New(g.Game, backend)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	assert.Equal(t, EngineStageInitialized, e.Stage())
	assert.Same(t, e.SystemManager(), g.SystemManager)
	assert.Same(t, e.Renderer(), g.Renderer)

	require.NoError(t, e.RunFrames(3))
	assert.Equal(t, 3, g.updates)
	assert.Equal(t, uint64(3), e.Frames())
	assert.Equal(t, uint64(3), e.Metrics().TotalFrames())
	assert.Equal(t, uint64(3), backend.FrameNumber)
	assert.Len(t, backend.Draws(), 1)
	assert.Equal(t, uint32(1), e.Renderer().GetStats().Calls)

	require.NoError(t, e.Shutdown())
	assert.True(t, g.closed)
	assert.Equal(t, EngineStageStopped, e.Stage())
	assert.Equal(t, headless.LiveObjects{}, backend.Live())
	// idempotent
	require.NoError(t, e.Shutdown())
}

func TestEngineRunStopsAtMaxFrames(t *testing.T) {
	config := DefaultApplicationConfig()
	config.MaxFrames = 4
	g := newSpinningCube(config)
	e, err := New(g.Game, nil)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(4), e.Frames())
	assert.True(t, g.closed)
	assert.Equal(t, EngineStageStopped, e.Stage())
}

func TestEngineShutdownStopsRun(t *testing.T) {
	g := newSpinningCube(DefaultApplicationConfig())
	e, err := New(g.Game, nil)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())

	done := make(chan error, 1)
	go func() {
		done <- e.Run()
	}()
	require.Eventually(t, func() bool {
		return e.Stage() == EngineStageRunning
	}, time.Second, time.Millisecond)

	require.NoError(t, e.Shutdown())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after shutdown")
	}
	assert.True(t, g.closed)
}

func TestRunFramesRequiresInitialize(t *testing.T) {
	e, err := New(&Game{}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, e.RunFrames(1), core.ErrNotInitialized)
	assert.ErrorIs(t, e.Run(), core.ErrNotInitialized)
}

func TestEngineResizeSuspends(t *testing.T) {
	backend := headless.New()
	g := newSpinningCube(DefaultApplicationConfig())
	e, err := New(g.Game, backend)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { assert.NoError(t, e.Shutdown()) })

	require.NoError(t, e.OnResize(0, 0))
	require.NoError(t, e.RunFrames(2))
	assert.Zero(t, g.updates)

	require.NoError(t, e.OnResize(800, 600))
	require.NoError(t, e.RunFrames(1))
	assert.Equal(t, 1, g.updates)
	w, h := backend.Size()
	assert.Equal(t, uint32(800), w)
	assert.Equal(t, uint32(600), h)
}

func TestLoadApplicationConfig(t *testing.T) {
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "app.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`
name = "demo"
start_width = 800
start_height = 600
log_level = "debug"
workers = 3

[renderer]
sort_objects = false
auto_clear = true
clear_color = [0.5, 0.25, 0.0, 1.0]
`), 0o644))

	c, err := LoadApplicationConfig(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, "demo", c.Name)
	assert.Equal(t, uint32(800), c.StartWidth)
	assert.Equal(t, 3, c.Workers)
	// untouched fields keep their defaults
	assert.Equal(t, 16, c.JobQueueSize)
	assert.Equal(t, core.DebugLevel, c.Level())
	rc := c.RendererSettings()
	assert.False(t, rc.SortObjects)
	assert.Equal(t, mgl32.Vec4{0.5, 0.25, 0, 1}, rc.ClearColor)

	yamlPath := filepath.Join(dir, "app.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
name: demo-yaml
start_width: 320
start_height: 200
asset_dir: assets
renderer:
  sort_objects: true
`), 0o644))

	c, err = LoadApplicationConfig(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "demo-yaml", c.Name)
	assert.Equal(t, uint32(200), c.StartHeight)
	assert.Equal(t, "assets", c.AssetDir)
	assert.True(t, c.Renderer.SortObjects)
	assert.True(t, c.Renderer.AutoClear)
}

func TestLoadApplicationConfigRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadApplicationConfig(filepath.Join(dir, "app.ini"))
	assert.ErrorIs(t, err, core.ErrUnknownConfigFormat)

	_, err = LoadApplicationConfig(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	zero := filepath.Join(dir, "zero.toml")
	require.NoError(t, os.WriteFile(zero, []byte("start_width = 0\n"), 0o644))
	_, err = LoadApplicationConfig(zero)
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("name: [unterminated\n"), 0o644))
	_, err = LoadApplicationConfig(broken)
	assert.Error(t, err)
}
