package headless

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/hq2318768188/FFEngine/engine/renderer/metadata"
)

// Counts of live GPU objects.
type LiveObjects struct {
	Buffers      int
	VertexArrays int
	Programs     int
	Textures     int
	Framebuffers int
}

func (hr *HeadlessRenderer) liveLocked() int {
	return len(hr.buffers) + len(hr.vertexArrays) + len(hr.programs) + len(hr.textures) + len(hr.framebuffers)
}

func (hr *HeadlessRenderer) Live() LiveObjects {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	return LiveObjects{
		Buffers:      len(hr.buffers),
		VertexArrays: len(hr.vertexArrays),
		Programs:     len(hr.programs),
		Textures:     len(hr.textures),
		Framebuffers: len(hr.framebuffers),
	}
}

// Draws returns the draws recorded since the last BeginFrame.
func (hr *HeadlessRenderer) Draws() []DrawCall {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	draws := make([]DrawCall, len(hr.draws))
	copy(draws, hr.draws)
	return draws
}

// Uniforms returns the uniform writes recorded since the last BeginFrame.
func (hr *HeadlessRenderer) Uniforms() []UniformWrite {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	uniforms := make([]UniformWrite, len(hr.uniforms))
	copy(uniforms, hr.uniforms)
	return uniforms
}

func (hr *HeadlessRenderer) ProgramsCompiled() int {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	return hr.programsCompiled
}

func (hr *HeadlessRenderer) UseProgramCalls() int {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	return hr.useProgramCalls
}

func (hr *HeadlessRenderer) Clears() int {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	return hr.clears
}

func (hr *HeadlessRenderer) ClearColor() mgl32.Vec4 {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	return hr.clearColor
}

// BufferWrites returns how many times a buffer was written, 0 if unknown.
func (hr *HeadlessRenderer) BufferWrites(handle metadata.BufferHandle) int {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	if b, ok := hr.buffers[handle]; ok {
		return b.writes
	}
	return 0
}

// TextureUploads returns how many times a face of a texture was uploaded.
func (hr *HeadlessRenderer) TextureUploads(handle metadata.TextureHandle, face int) int {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	if t, ok := hr.textures[handle]; ok {
		return t.uploads[face]
	}
	return 0
}

func (hr *HeadlessRenderer) BoundTexture(unit int32) metadata.TextureHandle {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	return hr.boundTextures[unit]
}

func (hr *HeadlessRenderer) Size() (uint32, uint32) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	return hr.width, hr.height
}

var _ metadata.Backend = (*HeadlessRenderer)(nil)
