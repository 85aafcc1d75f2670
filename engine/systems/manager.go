package systems

import (
	"errors"

	"github.com/hq2318768188/FFEngine/engine/assets"
	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/renderer/metadata"
	"github.com/hq2318768188/FFEngine/engine/resources"
)

type SystemManagerConfig struct {
	// Directory indexed by the asset manager, may start with ~. Empty
	// disables the index.
	AssetDir string
	// Workers decoding assets in the background.
	Workers int
	// Capacity of each job queue.
	JobQueueSize int
}

/**
 * @brief Owns the event bus, the backend and every cache built on them.
 * Nothing here is global: two managers are two independent worlds.
 */
type SystemManager struct {
	Config  SystemManagerConfig
	Bus     *core.EventBus
	Backend metadata.Backend

	Shaders       *ShaderLibrary
	Programs      *ProgramSystem
	Materials     *MaterialSystem
	Textures      *TextureSystem
	Attributes    *AttributeSystem
	BindingStates *BindingStateSystem
	Geometries    *GeometrySystem
	Objects       *ObjectSystem
	RenderTargets *RenderTargetSystem
	Jobs          *JobSystem
	Sources       *assets.SourceCache
	Assets        *assets.AssetManager

	initialized bool
}

func NewSystemManager(config SystemManagerConfig, backend metadata.Backend) (*SystemManager, error) {
	if config.Workers == 0 {
		config.Workers = 1
	}

	js, err := NewJobSystem(config.Workers, config.JobQueueSize)
	if err != nil {
		return nil, err
	}
	shaders, err := NewShaderLibrary()
	if err != nil {
		js.Shutdown()
		return nil, err
	}

	bus := core.NewEventBus()
	sources := assets.NewSourceCache(bus)
	am, err := assets.NewAssetManager(bus, sources, js)
	if err != nil {
		js.Shutdown()
		return nil, err
	}

	programs := NewProgramSystem(backend, shaders)
	textures := NewTextureSystem(bus, backend)
	attributes := NewAttributeSystem(bus, backend)
	bindingStates := NewBindingStateSystem(backend, attributes)
	geometries := NewGeometrySystem(bus, attributes, bindingStates)

	return &SystemManager{
		Config:        config,
		Bus:           bus,
		Backend:       backend,
		Shaders:       shaders,
		Programs:      programs,
		Materials:     NewMaterialSystem(bus, programs),
		Textures:      textures,
		Attributes:    attributes,
		BindingStates: bindingStates,
		Geometries:    geometries,
		Objects:       NewObjectSystem(bus, geometries),
		RenderTargets: NewRenderTargetSystem(bus, backend, textures),
		Jobs:          js,
		Sources:       sources,
		Assets:        am,
	}, nil
}

// Initialize creates the default GPU objects and starts indexing assets.
// The backend must already be initialized.
func (sm *SystemManager) Initialize() error {
	if err := sm.Textures.Initialize(); err != nil {
		return err
	}
	if err := sm.Assets.Initialize(sm.Config.AssetDir); err != nil {
		return err
	}
	if err := sm.loadShaderOverrides(); err != nil {
		return err
	}
	sm.initialized = true
	return nil
}

// loadShaderOverrides swaps in shaders/<name>.vert and .frag from the asset
// directory when both stages of a built-in shader are present.
func (sm *SystemManager) loadShaderOverrides() error {
	for _, t := range []resources.MaterialType{
		resources.MaterialTypeBasic,
		resources.MaterialTypePhong,
		resources.MaterialTypeCube,
		resources.MaterialTypeDepth,
	} {
		name := t.String()
		vertexPath, fragmentPath := "shaders/"+name+".vert", "shaders/"+name+".frag"
		if _, ok := sm.Assets.Lookup(vertexPath); !ok {
			continue
		}
		if _, ok := sm.Assets.Lookup(fragmentPath); !ok {
			core.LogWarn("ignoring `%s` without `%s`", vertexPath, fragmentPath)
			continue
		}
		vertex, err := sm.Assets.LoadShaderSource(vertexPath)
		if err != nil {
			return err
		}
		fragment, err := sm.Assets.LoadShaderSource(fragmentPath)
		if err != nil {
			return err
		}
		if err := sm.Shaders.Override(name, vertex, fragment); err != nil {
			return err
		}
		core.LogInfo("using shader `%s` from the asset directory", name)
	}
	return nil
}

func (sm *SystemManager) Initialized() bool {
	return sm.initialized
}

// Shutdown stops every system in reverse dependency order and reports all
// failures together.
func (sm *SystemManager) Shutdown() error {
	var errs []error
	for _, shutdown := range []func() error{
		sm.Assets.Shutdown,
		sm.Jobs.Shutdown,
		sm.Objects.Shutdown,
		sm.RenderTargets.Shutdown,
		sm.Geometries.Shutdown,
		sm.BindingStates.Shutdown,
		sm.Attributes.Shutdown,
		sm.Materials.Shutdown,
		sm.Programs.Shutdown,
		sm.Textures.Shutdown,
		sm.Sources.Shutdown,
		sm.Bus.Shutdown,
	} {
		if err := shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	sm.initialized = false
	return errors.Join(errs...)
}

// Stats fills the cache counters of stats.
func (sm *SystemManager) Stats(stats *metadata.RenderStats) {
	stats.Programs = sm.Programs.Count()
	stats.Textures = sm.Textures.Count()
	stats.Geometries = sm.Geometries.Count()
}
