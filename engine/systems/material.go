package systems

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hq2318768188/FFEngine/engine/containers"
	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/renderer/metadata"
	"github.com/hq2318768188/FFEngine/engine/resources"
)

/**
 * @brief GPU side state of one material: the program variant it currently
 * draws with and the uniform values derived from its fields.
 */
type MaterialState struct {
	MaterialID uint32

	mutex    sync.Mutex
	program  *Program
	uniforms map[string]metadata.UniformValue
	textures map[string]*resources.Texture
	released bool
}

func (s *MaterialState) Program() *Program {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.program
}

// Uniforms returns a copy of the last refreshed uniform values.
func (s *MaterialState) Uniforms() map[string]metadata.UniformValue {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	uniforms := make(map[string]metadata.UniformValue, len(s.uniforms))
	for k, v := range s.uniforms {
		uniforms[k] = v
	}
	return uniforms
}

// Textures returns the texture bound to each sampler uniform.
func (s *MaterialState) Textures() map[string]*resources.Texture {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	textures := make(map[string]*resources.Texture, len(s.textures))
	for k, v := range s.textures {
		textures[k] = v
	}
	return textures
}

/**
 * @brief Tracks one MaterialState per material ID. A state holds one
 * reference on the program it draws with; switching variants releases the
 * old key after acquiring the new one, and disposing the material releases
 * whatever it still holds.
 */
type MaterialSystem struct {
	owner    string
	bus      *core.EventBus
	programs *ProgramSystem
	states   *containers.RefCache[uint32, *MaterialState]
}

func NewMaterialSystem(bus *core.EventBus, programs *ProgramSystem) *MaterialSystem {
	ms := &MaterialSystem{
		owner:    uuid.NewString(),
		bus:      bus,
		programs: programs,
	}
	ms.states = containers.NewRefCache("materials", func(id uint32, s *MaterialState) {
		s.mutex.Lock()
		program := s.program
		s.program = nil
		s.released = true
		s.mutex.Unlock()
		programs.Release(program)
	})
	bus.AddEventListener(core.EVENT_MATERIAL_DISPOSE, ms.owner, ms.onMaterialDispose)
	return ms
}

func newMaterialState(material *resources.Material) *MaterialState {
	return &MaterialState{
		MaterialID: material.ID,
		uniforms:   make(map[string]metadata.UniformValue),
		textures:   make(map[string]*resources.Texture),
	}
}

// Get returns the state of material, creating it on first use. The
// material itself is the single holder; repeated calls do not add holds.
// A disposed material gets a released state that is not cached.
func (ms *MaterialSystem) Get(material *resources.Material) *MaterialState {
	if material.IsDisposed() {
		s := newMaterialState(material)
		s.released = true
		return s
	}
	s, _, _ := ms.states.LoadOrCreate(material.ID, func() (*MaterialState, error) {
		return newMaterialState(material), nil
	})
	// disposed while registering, the event may have missed the entry
	if material.IsDisposed() {
		ms.states.Remove(material.ID)
	}
	return s
}

/**
 * @brief Points material at the program variant for params. When the key
 * differs from the current one the new program is acquired first and the
 * old one released afterwards, so a shared program is never destroyed and
 * rebuilt in between. A failed build keeps the previous program.
 */
func (ms *MaterialSystem) BindProgram(material *resources.Material, params metadata.ProgramParameters) (*Program, error) {
	s := ms.Get(material)
	key := ms.programs.CacheKey(params)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.released || material.IsDisposed() {
		return nil, fmt.Errorf("%w: material %d", core.ErrDisposed, material.ID)
	}
	if s.program != nil && s.program.CacheKey == key {
		return s.program, nil
	}
	p, err := ms.programs.Acquire(params)
	if err != nil {
		return nil, err
	}
	old := s.program
	s.program = p
	if old != nil {
		ms.programs.Release(old)
	}
	return p, nil
}

// Release drops the state of material and the program it holds.
func (ms *MaterialSystem) Release(material *resources.Material) bool {
	return ms.states.Remove(material.ID)
}

func (ms *MaterialSystem) Has(id uint32) bool {
	_, ok := ms.states.Lookup(id)
	return ok
}

func (ms *MaterialSystem) Count() int {
	return ms.states.Len()
}

/**
 * @brief Rebuilds the uniform values of state from material. Every
 * material writes opacity; the rest depends on its type.
 */
func (ms *MaterialSystem) RefreshUniforms(s *MaterialState, material *resources.Material) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	clear(s.uniforms)
	clear(s.textures)

	s.uniforms["opacity"] = metadata.UniformFloat(material.Opacity)

	switch material.Type {
	case resources.MaterialTypeBasic:
		s.uniforms["color"] = metadata.UniformVec3(material.Color)
		s.setMap("diffuseMap", material.DiffuseMap, DiffuseMapUnit)
	case resources.MaterialTypePhong:
		s.uniforms["color"] = metadata.UniformVec3(material.Color)
		s.uniforms["shininess"] = metadata.UniformFloat(material.Shininess)
		s.setMap("diffuseMap", material.DiffuseMap, DiffuseMapUnit)
		s.setMap("normalMap", material.NormalMap, NormalMapUnit)
		s.setMap("specularMap", material.SpecularMap, SpecularMapUnit)
	case resources.MaterialTypeCube:
		s.setMap("envMap", material.EnvMap, EnvMapUnit)
	}
}

func (s *MaterialState) setMap(name string, texture *resources.Texture, unit int32) {
	if texture == nil {
		return
	}
	s.uniforms[name] = metadata.UniformTexture(unit)
	s.textures[name] = texture
}

func (ms *MaterialSystem) onMaterialDispose(event *core.Event) {
	if ms.states.Remove(event.TargetID) {
		core.LogDebug("material %d disposed, state released", event.TargetID)
	}
}

func (ms *MaterialSystem) Shutdown() error {
	ms.bus.RemoveEventListener(core.EVENT_MATERIAL_DISPOSE, ms.owner)
	ms.states.Purge()
	return nil
}
