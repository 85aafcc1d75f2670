package headless

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/renderer/metadata"
)

type buffer struct {
	target metadata.BufferTarget
	usage  metadata.BufferUsage
	size   int
	writes int
}

type vertexArray struct {
	attributes map[uint32]metadata.BufferHandle
	index      metadata.BufferHandle
}

type texture struct {
	desc    metadata.TextureDescriptor
	uploads map[int]int
}

// DrawCall is one recorded draw.
type DrawCall struct {
	Program     metadata.ProgramHandle
	VertexArray metadata.VertexArrayHandle
	Framebuffer metadata.FramebufferHandle
	Mode        metadata.DrawMode
	Count       int32
	Indexed     bool
	Blending    bool
	DepthTest   bool
	DepthWrite  bool
	CullMode    metadata.FaceCullMode
}

// UniformWrite is one recorded uniform upload on the current program.
type UniformWrite struct {
	Program  metadata.ProgramHandle
	Location int32
	Value    interface{}
}

/**
 * @brief A backend that keeps every GPU object in memory. It validates
 * handles, tracks what is alive and records draws, so cache behaviour can
 * be observed without a graphics device.
 */
type HeadlessRenderer struct {
	FrameNumber uint64

	// FailProgram, if set, makes CreateProgram fail for matching sources.
	FailProgram func(source metadata.ProgramSource) bool

	mutex        sync.Mutex
	nextHandle   uint32
	width        uint32
	height       uint32
	initialized  bool
	buffers      map[metadata.BufferHandle]*buffer
	vertexArrays map[metadata.VertexArrayHandle]*vertexArray
	programs     map[metadata.ProgramHandle]metadata.ProgramSource
	textures     map[metadata.TextureHandle]*texture
	framebuffers map[metadata.FramebufferHandle]metadata.TextureHandle

	currentProgram     metadata.ProgramHandle
	currentVertexArray metadata.VertexArrayHandle
	currentFramebuffer metadata.FramebufferHandle
	boundTextures      map[int32]metadata.TextureHandle
	clearColor         mgl32.Vec4
	blending           bool
	depthTest          bool
	depthWrite         bool
	cullMode           metadata.FaceCullMode

	programsCompiled int
	useProgramCalls  int
	clears           int
	draws            []DrawCall
	uniforms         []UniformWrite
}

func New() *HeadlessRenderer {
	return &HeadlessRenderer{
		buffers:       make(map[metadata.BufferHandle]*buffer),
		vertexArrays:  make(map[metadata.VertexArrayHandle]*vertexArray),
		programs:      make(map[metadata.ProgramHandle]metadata.ProgramSource),
		textures:      make(map[metadata.TextureHandle]*texture),
		framebuffers:  make(map[metadata.FramebufferHandle]metadata.TextureHandle),
		boundTextures: make(map[int32]metadata.TextureHandle),
		depthTest:     true,
		depthWrite:    true,
	}
}

func (hr *HeadlessRenderer) handle() uint32 {
	hr.nextHandle++
	return hr.nextHandle
}

func (hr *HeadlessRenderer) Initialize(appName string, width, height uint32) error {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	hr.width = width
	hr.height = height
	hr.initialized = true
	core.LogDebug("headless backend `%s` initialized at %dx%d", appName, width, height)
	return nil
}

func (hr *HeadlessRenderer) Shutdown() error {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	if n := hr.liveLocked(); n > 0 {
		core.LogWarn("headless backend shutting down with %d live objects", n)
	}
	hr.initialized = false
	return nil
}

func (hr *HeadlessRenderer) Resized(width, height uint32) error {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	hr.width = width
	hr.height = height
	return nil
}

func (hr *HeadlessRenderer) BeginFrame(deltaTime float64) error {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	if !hr.initialized {
		return core.ErrNotInitialized
	}
	hr.draws = hr.draws[:0]
	hr.uniforms = hr.uniforms[:0]
	return nil
}

func (hr *HeadlessRenderer) EndFrame(deltaTime float64) error {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	hr.FrameNumber++
	return nil
}

func dataSize(data interface{}) (int, error) {
	switch d := data.(type) {
	case nil:
		return 0, nil
	case []float32:
		return len(d) * 4, nil
	case []uint32:
		return len(d) * 4, nil
	case []uint16:
		return len(d) * 2, nil
	case []byte:
		return len(d), nil
	default:
		return 0, fmt.Errorf("%w: unsupported buffer data %T", core.ErrBufferBuild, data)
	}
}

func (hr *HeadlessRenderer) CreateBuffer(target metadata.BufferTarget, usage metadata.BufferUsage, data interface{}) (metadata.BufferHandle, error) {
	size, err := dataSize(data)
	if err != nil {
		return metadata.InvalidHandle, err
	}
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	h := metadata.BufferHandle(hr.handle())
	hr.buffers[h] = &buffer{target: target, usage: usage, size: size, writes: 1}
	return h, nil
}

func (hr *HeadlessRenderer) UpdateBuffer(handle metadata.BufferHandle, data interface{}) error {
	size, err := dataSize(data)
	if err != nil {
		return err
	}
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	b, ok := hr.buffers[handle]
	if !ok {
		return fmt.Errorf("%w: unknown buffer %d", core.ErrBufferBuild, handle)
	}
	b.size = size
	b.writes++
	return nil
}

func (hr *HeadlessRenderer) DestroyBuffer(handle metadata.BufferHandle) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	delete(hr.buffers, handle)
}

func (hr *HeadlessRenderer) CreateVertexArray() (metadata.VertexArrayHandle, error) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	h := metadata.VertexArrayHandle(hr.handle())
	hr.vertexArrays[h] = &vertexArray{attributes: make(map[uint32]metadata.BufferHandle)}
	return h, nil
}

func (hr *HeadlessRenderer) BindVertexArray(vao metadata.VertexArrayHandle) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	hr.currentVertexArray = vao
}

func (hr *HeadlessRenderer) VertexAttribPointer(vao metadata.VertexArrayHandle, location uint32, buf metadata.BufferHandle, itemSize int) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	if v, ok := hr.vertexArrays[vao]; ok {
		v.attributes[location] = buf
	}
}

func (hr *HeadlessRenderer) BindIndexBuffer(vao metadata.VertexArrayHandle, buf metadata.BufferHandle) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	if v, ok := hr.vertexArrays[vao]; ok {
		v.index = buf
	}
}

func (hr *HeadlessRenderer) DestroyVertexArray(vao metadata.VertexArrayHandle) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	delete(hr.vertexArrays, vao)
	if hr.currentVertexArray == vao {
		hr.currentVertexArray = metadata.InvalidHandle
	}
}

// CreateProgram "links" the source, assigning locations in declaration order.
func (hr *HeadlessRenderer) CreateProgram(source metadata.ProgramSource) (metadata.ProgramInfo, error) {
	if hr.FailProgram != nil && hr.FailProgram(source) {
		return metadata.ProgramInfo{}, fmt.Errorf("%w: `%s` did not compile", core.ErrProgramBuild, source.Name)
	}
	hr.mutex.Lock()
	defer hr.mutex.Unlock()

	h := metadata.ProgramHandle(hr.handle())
	hr.programs[h] = source
	hr.programsCompiled++

	info := metadata.ProgramInfo{
		Handle:             h,
		UniformLocations:   make(map[string]int32, len(source.Uniforms)),
		AttributeLocations: make(map[string]uint32, len(source.Attributes)),
	}
	for i, name := range source.Uniforms {
		info.UniformLocations[name] = int32(i)
	}
	for i, name := range source.Attributes {
		info.AttributeLocations[name] = uint32(i)
	}
	return info, nil
}

func (hr *HeadlessRenderer) UseProgram(program metadata.ProgramHandle) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	hr.currentProgram = program
	hr.useProgramCalls++
}

func (hr *HeadlessRenderer) DestroyProgram(program metadata.ProgramHandle) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	delete(hr.programs, program)
	if hr.currentProgram == program {
		hr.currentProgram = metadata.InvalidHandle
	}
}

func (hr *HeadlessRenderer) recordUniform(location int32, value interface{}) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	hr.uniforms = append(hr.uniforms, UniformWrite{Program: hr.currentProgram, Location: location, Value: value})
}

func (hr *HeadlessRenderer) SetUniform1f(location int32, v float32) {
	hr.recordUniform(location, v)
}

func (hr *HeadlessRenderer) SetUniform2f(location int32, v mgl32.Vec2) {
	hr.recordUniform(location, v)
}

func (hr *HeadlessRenderer) SetUniform3f(location int32, v mgl32.Vec3) {
	hr.recordUniform(location, v)
}

func (hr *HeadlessRenderer) SetUniform4f(location int32, v mgl32.Vec4) {
	hr.recordUniform(location, v)
}

func (hr *HeadlessRenderer) SetUniform1i(location int32, v int32) {
	hr.recordUniform(location, v)
}

func (hr *HeadlessRenderer) SetUniformMatrix3f(location int32, m mgl32.Mat3) {
	hr.recordUniform(location, m)
}

func (hr *HeadlessRenderer) SetUniformMatrix4f(location int32, m mgl32.Mat4) {
	hr.recordUniform(location, m)
}

func (hr *HeadlessRenderer) CreateTexture(desc metadata.TextureDescriptor) (metadata.TextureHandle, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return metadata.InvalidHandle, fmt.Errorf("%w: zero sized texture", core.ErrTextureBuild)
	}
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	h := metadata.TextureHandle(hr.handle())
	hr.textures[h] = &texture{desc: desc, uploads: make(map[int]int)}
	return h, nil
}

func (hr *HeadlessRenderer) UploadTexture(handle metadata.TextureHandle, face int, width, height uint32, pixels []byte) error {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	t, ok := hr.textures[handle]
	if !ok {
		return fmt.Errorf("%w: unknown texture %d", core.ErrTextureBuild, handle)
	}
	if want := int(width * height * 4); len(pixels) != 0 && len(pixels) < want {
		return fmt.Errorf("%w: %d bytes for %dx%d rgba", core.ErrTextureBuild, len(pixels), width, height)
	}
	t.uploads[face]++
	return nil
}

func (hr *HeadlessRenderer) BindTexture(unit int32, handle metadata.TextureHandle) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	hr.boundTextures[unit] = handle
}

func (hr *HeadlessRenderer) DestroyTexture(handle metadata.TextureHandle) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	delete(hr.textures, handle)
	for unit, bound := range hr.boundTextures {
		if bound == handle {
			delete(hr.boundTextures, unit)
		}
	}
}

func (hr *HeadlessRenderer) CreateFramebuffer(color metadata.TextureHandle, width, height uint32) (metadata.FramebufferHandle, error) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	if _, ok := hr.textures[color]; !ok {
		return metadata.InvalidHandle, fmt.Errorf("%w: unknown color attachment %d", core.ErrTextureBuild, color)
	}
	h := metadata.FramebufferHandle(hr.handle())
	hr.framebuffers[h] = color
	return h, nil
}

func (hr *HeadlessRenderer) BindFramebuffer(framebuffer metadata.FramebufferHandle) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	hr.currentFramebuffer = framebuffer
}

func (hr *HeadlessRenderer) DestroyFramebuffer(framebuffer metadata.FramebufferHandle) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	delete(hr.framebuffers, framebuffer)
	if hr.currentFramebuffer == framebuffer {
		hr.currentFramebuffer = metadata.InvalidHandle
	}
}

func (hr *HeadlessRenderer) Viewport(x, y int32, width, height uint32) {}

func (hr *HeadlessRenderer) SetClearColor(color mgl32.Vec4) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	hr.clearColor = color
}

func (hr *HeadlessRenderer) Clear(color, depth, stencil bool) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	hr.clears++
}

func (hr *HeadlessRenderer) SetBlending(enabled bool, src, dst metadata.BlendFactor) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	hr.blending = enabled
}

func (hr *HeadlessRenderer) SetDepth(test, write bool) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	hr.depthTest = test
	hr.depthWrite = write
}

func (hr *HeadlessRenderer) SetCullFace(mode metadata.FaceCullMode) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	hr.cullMode = mode
}

func (hr *HeadlessRenderer) draw(mode metadata.DrawMode, count int32, indexed bool) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()
	hr.draws = append(hr.draws, DrawCall{
		Program:     hr.currentProgram,
		VertexArray: hr.currentVertexArray,
		Framebuffer: hr.currentFramebuffer,
		Mode:        mode,
		Count:       count,
		Indexed:     indexed,
		Blending:    hr.blending,
		DepthTest:   hr.depthTest,
		DepthWrite:  hr.depthWrite,
		CullMode:    hr.cullMode,
	})
}

func (hr *HeadlessRenderer) DrawArrays(mode metadata.DrawMode, first, count int32) {
	hr.draw(mode, count, false)
}

func (hr *HeadlessRenderer) DrawElements(mode metadata.DrawMode, count int32) {
	hr.draw(mode, count, true)
}
