package metadata

/** @brief Determines face culling mode during rendering. */
type FaceCullMode int

const (
	/** @brief No faces are culled. */
	FaceCullModeNone FaceCullMode = 0x0
	/** @brief Only front faces are culled. */
	FaceCullModeFront FaceCullMode = 0x1
	/** @brief Only back faces are culled. */
	FaceCullModeBack FaceCullMode = 0x2
	/** @brief Both front and back faces are culled. */
	FaceCullModeFrontAndBack FaceCullMode = 0x3
)

type BlendFactor int

const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSrcAlpha
	BlendFactorOneMinusSrcAlpha
)

type DrawMode int

const (
	DrawModeTriangles DrawMode = iota
	DrawModeLines
	DrawModePoints
)

type BufferTarget int

const (
	/** @brief Per vertex data. */
	BufferTargetArray BufferTarget = iota
	/** @brief Index data. */
	BufferTargetElementArray
)

type BufferUsage int

const (
	BufferUsageStaticDraw BufferUsage = iota
	BufferUsageDynamicDraw
)

// Opaque GPU object names. Zero is never a valid handle.
type (
	BufferHandle      uint32
	VertexArrayHandle uint32
	ProgramHandle     uint32
	TextureHandle     uint32
	FramebufferHandle uint32
)

const InvalidHandle = 0
