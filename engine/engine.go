package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/renderer"
	"github.com/hq2318768188/FFEngine/engine/renderer/headless"
	"github.com/hq2318768188/FFEngine/engine/renderer/metadata"
	"github.com/hq2318768188/FFEngine/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released everything it owned
	EngineStageStopped
)

type Engine struct {
	stage         atomic.Uint32
	gameInstance  *Game
	backend       metadata.Backend
	systemManager *systems.SystemManager
	renderer      *renderer.Renderer
	clock         *core.Clock
	metrics       *core.FrameMetrics
	lastTime      float64
	frames        uint64
	width         uint32
	height        uint32
	isSuspended   bool

	running      atomic.Bool
	stopped      chan struct{}
	teardownOnce sync.Once
	teardownErr  error
}

/**
 * @brief Creates an engine for g drawing through backend. A nil backend
 * selects the in-memory headless one.
 */
func New(g *Game, backend metadata.Backend) (*Engine, error) {
	if g == nil {
		return nil, fmt.Errorf("engine requires a game")
	}
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig()
	}
	if err := g.ApplicationConfig.Validate(); err != nil {
		return nil, err
	}
	if backend == nil {
		backend = headless.New()
	}
	e := &Engine{
		gameInstance: g,
		backend:      backend,
		clock:        core.NewClock(),
		metrics:      core.NewFrameMetrics(),
		width:        g.ApplicationConfig.StartWidth,
		height:       g.ApplicationConfig.StartHeight,
		stopped:      make(chan struct{}),
	}
	e.setStage(EngineStageUninitialized)
	return e, nil
}

func (e *Engine) setStage(s Stage) {
	e.stage.Store(uint32(s))
}

func (e *Engine) Stage() Stage {
	return Stage(e.stage.Load())
}

/**
 * @brief Boots the game, brings up the backend, the systems and the
 * renderer, then hands them to the game's initialize hook.
 */
func (e *Engine) Initialize() error {
	if e.Stage() != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}
	config := e.gameInstance.ApplicationConfig
	core.SetLogLevel(config.Level())

	e.setStage(EngineStageBooting)
	if e.gameInstance.FnBoot != nil {
		if err := e.gameInstance.FnBoot(); err != nil {
			return err
		}
	}
	e.setStage(EngineStageBootComplete)

	e.setStage(EngineStageInitializing)
	if err := e.backend.Initialize(config.Name, config.StartWidth, config.StartHeight); err != nil {
		return err
	}

	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{
		AssetDir:     config.AssetDir,
		Workers:      config.Workers,
		JobQueueSize: config.JobQueueSize,
	}, e.backend)
	if err != nil {
		return err
	}
	if err := sm.Initialize(); err != nil {
		return errors.Join(err, sm.Shutdown())
	}
	e.systemManager = sm

	r, err := renderer.New(config.RendererSettings(), sm)
	if err != nil {
		return err
	}
	if err := r.SetSize(config.StartWidth, config.StartHeight); err != nil {
		return err
	}
	e.renderer = r

	e.gameInstance.SystemManager = sm
	e.gameInstance.Renderer = r
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	e.setStage(EngineStageInitialized)
	core.LogInfo("%s initialized (%dx%d)", config.Name, config.StartWidth, config.StartHeight)
	return nil
}

// RunFrames runs exactly n frames and returns, leaving the engine up.
func (e *Engine) RunFrames(n int) error {
	if e.Stage() != EngineStageInitialized && e.Stage() != EngineStageRunning {
		return core.ErrNotInitialized
	}
	if e.frames == 0 {
		e.clock.Start()
	}
	for i := 0; i < n; i++ {
		if err := e.frame(); err != nil {
			return err
		}
	}
	return nil
}

/**
 * @brief Runs frames until Shutdown is called or the configured frame
 * count is reached, then tears everything down.
 */
func (e *Engine) Run() error {
	if e.Stage() != EngineStageInitialized {
		return core.ErrNotInitialized
	}
	e.running.Store(true)
	e.setStage(EngineStageRunning)
	e.clock.Start()

	maxFrames := e.gameInstance.ApplicationConfig.MaxFrames
	var runErr error
	for e.running.Load() {
		if err := e.frame(); err != nil {
			core.LogError("frame failed, shutting down: %s", err)
			runErr = err
			break
		}
		if maxFrames > 0 && e.frames >= maxFrames {
			break
		}
	}
	e.running.Store(false)

	fps, frameTime := e.metrics.Frame()
	core.LogInfo("ran %d frames, %.1f fps, %.3f ms/frame", e.metrics.TotalFrames(), fps, frameTime)

	err := errors.Join(runErr, e.teardown())
	close(e.stopped)
	return err
}

func (e *Engine) frame() error {
	if e.isSuspended {
		return nil
	}
	frameStart := time.Now()

	e.clock.Update()
	currentTime := e.clock.Elapsed()
	delta := currentTime - e.lastTime

	e.drainAssetChanges()

	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(delta); err != nil {
			return fmt.Errorf("game update: %w", err)
		}
	}

	packet := &renderer.RenderPacket{DeltaTime: delta}
	if e.gameInstance.FnRender != nil {
		if err := e.gameInstance.FnRender(packet, delta); err != nil {
			return fmt.Errorf("game render: %w", err)
		}
	}
	if packet.Scene != nil && packet.Camera != nil {
		if err := e.renderer.DrawFrame(packet); err != nil {
			return err
		}
	}

	e.metrics.Update(time.Since(frameStart).Seconds())
	e.frames++
	e.lastTime = currentTime
	return nil
}

func (e *Engine) drainAssetChanges() {
	changes := e.systemManager.Assets.Changes()
	for {
		select {
		case ev := <-changes:
			core.LogDebug("asset %s: %s", ev.Op, ev.Info.Path)
		default:
			return
		}
	}
}

/**
 * @brief Stops the engine. When Run is looping it is asked to stop and
 * Shutdown waits for it to tear down; otherwise the teardown happens here.
 * Safe to call more than once and from another goroutine.
 */
func (e *Engine) Shutdown() error {
	if e.running.CompareAndSwap(true, false) {
		<-e.stopped
		return e.teardownErr
	}
	return e.teardown()
}

func (e *Engine) teardown() error {
	e.teardownOnce.Do(func() {
		e.setStage(EngineStageShuttingDown)
		var errs []error
		if e.gameInstance.FnShutdown != nil {
			errs = append(errs, e.gameInstance.FnShutdown())
		}
		if e.renderer != nil {
			errs = append(errs, e.renderer.Shutdown())
		}
		if e.systemManager != nil {
			errs = append(errs, e.systemManager.Shutdown())
			errs = append(errs, e.backend.Shutdown())
		}
		e.teardownErr = errors.Join(errs...)
		e.setStage(EngineStageStopped)
	})
	return e.teardownErr
}

// OnResize forwards a new surface size. A zero size suspends frames until
// a non zero size arrives.
func (e *Engine) OnResize(width, height uint32) error {
	if width == e.width && height == e.height {
		return nil
	}
	e.width = width
	e.height = height
	core.LogDebug("surface resize: %d, %d", width, height)

	if width == 0 || height == 0 {
		core.LogInfo("surface minimized, suspending application.")
		e.isSuspended = true
		return nil
	}
	if e.isSuspended {
		core.LogInfo("surface restored, resuming application.")
		e.isSuspended = false
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			return err
		}
	}
	return e.renderer.SetSize(width, height)
}

// GetFramebufferSize returns the width and height (in this order) of the
// drawing surface.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) Metrics() *core.FrameMetrics {
	return e.metrics
}

func (e *Engine) Frames() uint64 {
	return e.frames
}

func (e *Engine) SystemManager() *systems.SystemManager {
	return e.systemManager
}

func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}
