package renderer

import (
	"github.com/hq2318768188/FFEngine/engine/renderer/metadata"
	"github.com/hq2318768188/FFEngine/engine/resources"
)

type blendState struct {
	enabled bool
	src     metadata.BlendFactor
	dst     metadata.BlendFactor
}

// renderState remembers what was last sent to the backend so that repeated
// state changes inside a frame become no-ops.
type renderState struct {
	backend metadata.Backend

	valid      bool
	program    metadata.ProgramHandle
	blend      blendState
	depthTest  bool
	depthWrite bool
	cullMode   metadata.FaceCullMode
}

func newRenderState(backend metadata.Backend) *renderState {
	return &renderState{backend: backend}
}

// reset forgets the cached state. Called at the start of every frame.
func (rs *renderState) reset() {
	rs.valid = false
	rs.program = metadata.InvalidHandle
}

// useProgram reports whether the program changed.
func (rs *renderState) useProgram(program metadata.ProgramHandle) bool {
	if rs.program == program {
		return false
	}
	rs.program = program
	rs.backend.UseProgram(program)
	return true
}

func (rs *renderState) setMaterial(material *resources.Material) {
	blend := blendFor(material)
	cull := cullModeFor(material.Side)

	if !rs.valid || rs.blend != blend {
		rs.backend.SetBlending(blend.enabled, blend.src, blend.dst)
		rs.blend = blend
	}
	if !rs.valid || rs.depthTest != material.DepthTest || rs.depthWrite != material.DepthWrite {
		rs.backend.SetDepth(material.DepthTest, material.DepthWrite)
		rs.depthTest = material.DepthTest
		rs.depthWrite = material.DepthWrite
	}
	if !rs.valid || rs.cullMode != cull {
		rs.backend.SetCullFace(cull)
		rs.cullMode = cull
	}
	rs.valid = true
}

// Opaque materials never blend, whatever their blending mode says.
func blendFor(material *resources.Material) blendState {
	if !material.Transparent {
		return blendState{enabled: false, src: metadata.BlendFactorOne, dst: metadata.BlendFactorZero}
	}
	switch material.Blending {
	case resources.AdditiveBlending:
		return blendState{enabled: true, src: metadata.BlendFactorSrcAlpha, dst: metadata.BlendFactorOne}
	case resources.NormalBlending:
		return blendState{enabled: true, src: metadata.BlendFactorSrcAlpha, dst: metadata.BlendFactorOneMinusSrcAlpha}
	default:
		return blendState{enabled: false, src: metadata.BlendFactorOne, dst: metadata.BlendFactorZero}
	}
}

func cullModeFor(side resources.Side) metadata.FaceCullMode {
	switch side {
	case resources.BackSide:
		return metadata.FaceCullModeFront
	case resources.DoubleSide:
		return metadata.FaceCullModeNone
	default:
		return metadata.FaceCullModeBack
	}
}
