package resources

import (
	"sync"

	"github.com/hq2318768188/FFEngine/engine/core"
)

type TextureType uint8

const (
	TextureType2D TextureType = iota
	TextureTypeCube
)

type TextureFormat uint8

const (
	TextureFormatRGBA8 TextureFormat = iota
	TextureFormatRGB8
	TextureFormatDepth
)

type TextureWrap uint8

const (
	TextureWrapRepeat TextureWrap = iota
	TextureWrapClampToEdge
	TextureWrapMirroredRepeat
)

type TextureFilter uint8

const (
	TextureFilterLinear TextureFilter = iota
	TextureFilterNearest
	TextureFilterLinearMipmapLinear
)

// Cube map faces in upload order.
const (
	CubeFacePositiveX = iota
	CubeFaceNegativeX
	CubeFacePositiveY
	CubeFaceNegativeY
	CubeFacePositiveZ
	CubeFaceNegativeZ
	CubeFaceCount
)

/**
 * @brief A texture description plus the decoded sources that feed it. The
 * sources are shared through the source cache; a texture holds one
 * reference on each and gives it back when disposed.
 */
type Texture struct {
	ID   uint32
	Name string
	Type TextureType

	Width           uint32
	Height          uint32
	Format          TextureFormat
	WrapS           TextureWrap
	WrapT           TextureWrap
	WrapR           TextureWrap
	MagFilter       TextureFilter
	MinFilter       TextureFilter
	GenerateMipmaps bool
	// Set on textures a render target draws into; they have no sources.
	IsRenderTarget bool

	mutex    sync.RWMutex
	sources  []*Source
	version  uint32
	disposed bool
	bus      *core.EventBus
}

func NewTexture(bus *core.EventBus, width, height uint32) *Texture {
	return &Texture{
		ID:              core.IdentifierAcquireNewID(),
		Type:            TextureType2D,
		Width:           width,
		Height:          height,
		Format:          TextureFormatRGBA8,
		MagFilter:       TextureFilterLinear,
		MinFilter:       TextureFilterLinearMipmapLinear,
		GenerateMipmaps: true,
		version:         1,
		bus:             bus,
	}
}

// NewCubeTexture returns a cube texture with six empty face slots.
func NewCubeTexture(bus *core.EventBus, width, height uint32) *Texture {
	t := NewTexture(bus, width, height)
	t.Type = TextureTypeCube
	t.WrapS = TextureWrapClampToEdge
	t.WrapT = TextureWrapClampToEdge
	t.WrapR = TextureWrapClampToEdge
	t.MinFilter = TextureFilterLinear
	t.GenerateMipmaps = false
	t.sources = make([]*Source, CubeFaceCount)
	return t
}

func (t *Texture) GetID() uint32 {
	return t.ID
}

/**
 * @brief Sets the source of a slot, growing the slot list if needed. The
 * texture takes over the caller's hold on source and gives back the hold
 * on the source it replaces. A disposed texture gives the new hold back
 * right away.
 */
func (t *Texture) SetSource(slot int, source *Source) {
	t.mutex.Lock()
	if t.disposed {
		t.mutex.Unlock()
		t.releaseSource(source)
		return
	}
	for len(t.sources) <= slot {
		t.sources = append(t.sources, nil)
	}
	previous := t.sources[slot]
	t.sources[slot] = source
	t.version++
	t.mutex.Unlock()

	t.releaseSource(previous)
}

func (t *Texture) releaseSource(s *Source) {
	if s == nil || t.bus == nil {
		return
	}
	t.bus.Dispatch(&core.Event{
		Name:     core.EVENT_SOURCE_RELEASE,
		TargetID: t.ID,
		Target:   s,
		UserData: s.Path,
	})
}

func (t *Texture) GetSources() []*Source {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	sources := make([]*Source, len(t.sources))
	copy(sources, t.sources)
	return sources
}

// IsComplete reports whether every slot has a source.
func (t *Texture) IsComplete() bool {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	if len(t.sources) == 0 {
		return false
	}
	for _, s := range t.sources {
		if s == nil {
			return false
		}
	}
	return true
}

func (t *Texture) NeedsUpdate() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.version++
}

func (t *Texture) Version() uint32 {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.version
}

/**
 * @brief Publishes the texture disposal, then one source release per held
 * source so the source cache can drop the references this texture owned.
 */
func (t *Texture) Dispose() {
	t.mutex.Lock()
	if t.disposed {
		t.mutex.Unlock()
		return
	}
	t.disposed = true
	sources := t.sources
	t.sources = nil
	t.mutex.Unlock()

	dispatch(t.bus, core.EVENT_TEXTURE_DISPOSE, t.ID, t)
	for _, s := range sources {
		t.releaseSource(s)
	}
}
