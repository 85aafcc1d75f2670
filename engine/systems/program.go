package systems

import (
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/hq2318768188/FFEngine/engine/containers"
	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/renderer/metadata"
)

// Program is a linked shader variant shared by every material that needs
// the same parameters.
type Program struct {
	ID         uint32
	CacheKey   uint64
	Parameters metadata.ProgramParameters
	Info       metadata.ProgramInfo
}

func (p *Program) Handle() metadata.ProgramHandle {
	return p.Info.Handle
}

func (p *Program) UniformLocation(name string) (int32, bool) {
	loc, ok := p.Info.UniformLocations[name]
	return loc, ok
}

/**
 * @brief Compiles each shader variant once and shares it. Entries are keyed
 * by a hash of the program parameters and live while at least one holder
 * has acquired them.
 */
type ProgramSystem struct {
	backend  metadata.Backend
	library  *ShaderLibrary
	programs *containers.RefCache[uint64, *Program]
}

func NewProgramSystem(backend metadata.Backend, library *ShaderLibrary) *ProgramSystem {
	ps := &ProgramSystem{
		backend: backend,
		library: library,
	}
	ps.programs = containers.NewRefCache("programs", func(key uint64, p *Program) {
		core.LogDebug("destroying program `%s` (%016x)", p.Parameters.ShaderID, key)
		backend.DestroyProgram(p.Info.Handle)
	})
	return ps
}

/**
 * @brief Hashes a canonical text form of every variant-affecting field with
 * FNV-1a. Field order is fixed, so equal parameters always hash equally.
 */
func (ps *ProgramSystem) CacheKey(params metadata.ProgramParameters) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "shader=%s;instancing=%t;normal=%t;uv=%t;color=%t;tangent=%t;",
		params.ShaderID, params.Instancing, params.HasNormal, params.HasUV, params.HasColor, params.UseTangent)
	fmt.Fprintf(h, "diffuseMap=%t;envCubeMap=%t;specularMap=%t;normalMap=%t;",
		params.HasDiffuseMap, params.HasEnvCubeMap, params.HasSpecularMap, params.UseNormalMap)
	fmt.Fprintf(h, "shadowMap=%t;dirLights=%d;dirLightShadows=%d;",
		params.ShadowMapEnabled, params.DirectionalLightCount, params.NumDirectionalLightShadow)
	fmt.Fprintf(h, "skinning=%t;maxBones=%d;depthPacking=%d",
		params.Skinning, params.MaxBones, params.DepthPacking)
	return h.Sum64()
}

// Acquire returns the program for params, compiling it on first use. A
// failed compile leaves the cache untouched.
func (ps *ProgramSystem) Acquire(params metadata.ProgramParameters) (*Program, error) {
	key := ps.CacheKey(params)
	return ps.programs.Acquire(key, func() (*Program, error) {
		source, err := ps.library.Source(params)
		if err != nil {
			return nil, err
		}
		info, err := ps.backend.CreateProgram(source)
		if err != nil {
			core.LogError("failed to build program `%s`: %s", params.ShaderID, err)
			if !errors.Is(err, core.ErrProgramBuild) {
				err = fmt.Errorf("%w: %w", core.ErrProgramBuild, err)
			}
			return nil, err
		}
		core.LogDebug("built program `%s` (%016x)", params.ShaderID, key)
		return &Program{
			ID:         core.IdentifierAcquireNewID(),
			CacheKey:   key,
			Parameters: params,
			Info:       info,
		}, nil
	})
}

// Release gives back one hold on the program. Unknown programs are ignored.
func (ps *ProgramSystem) Release(p *Program) bool {
	if p == nil {
		return false
	}
	return ps.programs.Release(p.CacheKey)
}

func (ps *ProgramSystem) RefCount(key uint64) uint32 {
	return ps.programs.RefCount(key)
}

func (ps *ProgramSystem) Count() int {
	return ps.programs.Len()
}

func (ps *ProgramSystem) Shutdown() error {
	if n := ps.programs.Purge(); n > 0 {
		core.LogDebug("program system released %d programs on shutdown", n)
	}
	return nil
}
