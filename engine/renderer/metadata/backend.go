package metadata

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/hq2318768188/FFEngine/engine/resources"
)

// TextureDescriptor describes the storage and sampling of a GPU texture.
type TextureDescriptor struct {
	Type      resources.TextureType
	Width     uint32
	Height    uint32
	Format    resources.TextureFormat
	WrapS     resources.TextureWrap
	WrapT     resources.TextureWrap
	WrapR     resources.TextureWrap
	MinFilter resources.TextureFilter
	MagFilter resources.TextureFilter
	Mipmaps   bool
}

/**
 * @brief The capability the renderer drives. A backend owns the graphics API
 * calls; the renderer and its caches decide when objects are created,
 * bound and destroyed.
 */
type Backend interface {
	UniformSetter

	Initialize(appName string, width, height uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error

	CreateBuffer(target BufferTarget, usage BufferUsage, data interface{}) (BufferHandle, error)
	UpdateBuffer(buffer BufferHandle, data interface{}) error
	DestroyBuffer(buffer BufferHandle)

	CreateVertexArray() (VertexArrayHandle, error)
	BindVertexArray(vao VertexArrayHandle)
	VertexAttribPointer(vao VertexArrayHandle, location uint32, buffer BufferHandle, itemSize int)
	BindIndexBuffer(vao VertexArrayHandle, buffer BufferHandle)
	DestroyVertexArray(vao VertexArrayHandle)

	CreateProgram(source ProgramSource) (ProgramInfo, error)
	UseProgram(program ProgramHandle)
	DestroyProgram(program ProgramHandle)

	CreateTexture(desc TextureDescriptor) (TextureHandle, error)
	UploadTexture(texture TextureHandle, face int, width, height uint32, pixels []byte) error
	BindTexture(unit int32, texture TextureHandle)
	DestroyTexture(texture TextureHandle)

	CreateFramebuffer(color TextureHandle, width, height uint32) (FramebufferHandle, error)
	BindFramebuffer(framebuffer FramebufferHandle)
	DestroyFramebuffer(framebuffer FramebufferHandle)

	Viewport(x, y int32, width, height uint32)
	SetClearColor(color mgl32.Vec4)
	Clear(color, depth, stencil bool)
	SetBlending(enabled bool, src, dst BlendFactor)
	SetDepth(test, write bool)
	SetCullFace(mode FaceCullMode)

	DrawArrays(mode DrawMode, first, count int32)
	DrawElements(mode DrawMode, count int32)
}
