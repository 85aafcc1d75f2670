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

const (
	DEFAULT_TEXTURE_NAME      = "default"
	DEFAULT_CUBE_TEXTURE_NAME = "default_cube"

	defaultTextureDimension = uint32(256)
	defaultCubeDimension    = uint32(16)
)

// TextureState is the GPU storage of one texture.
type TextureState struct {
	TextureID uint32
	Handle    metadata.TextureHandle
	Type      resources.TextureType

	mutex   sync.Mutex
	version uint32
}

// Version is the texture version last uploaded, 0 before the first upload.
func (s *TextureState) Version() uint32 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.version
}

type TextureSystem struct {
	owner    string
	bus      *core.EventBus
	backend  metadata.Backend
	textures *containers.RefCache[uint32, *TextureState]

	defaultTexture     metadata.TextureHandle
	defaultCubeTexture metadata.TextureHandle
}

func NewTextureSystem(bus *core.EventBus, backend metadata.Backend) *TextureSystem {
	ts := &TextureSystem{
		owner:   uuid.NewString(),
		bus:     bus,
		backend: backend,
	}
	ts.textures = containers.NewRefCache("textures", func(id uint32, s *TextureState) {
		backend.DestroyTexture(s.Handle)
	})
	bus.AddEventListener(core.EVENT_TEXTURE_DISPOSE, ts.owner, ts.onTextureDispose)
	return ts
}

// Initialize creates the default textures bound in place of missing or
// incomplete ones.
func (ts *TextureSystem) Initialize() error {
	var err error
	ts.defaultTexture, err = ts.createDefaultTexture(resources.TextureType2D, defaultTextureDimension)
	if err != nil {
		return err
	}
	ts.defaultCubeTexture, err = ts.createDefaultTexture(resources.TextureTypeCube, defaultCubeDimension)
	return err
}

/**
 * @brief Creates a blue/white checkerboard. This is done in code to
 * eliminate asset dependencies.
 */
func (ts *TextureSystem) createDefaultTexture(textureType resources.TextureType, dimension uint32) (metadata.TextureHandle, error) {
	pixels := CheckerboardPixels(dimension)
	handle, err := ts.backend.CreateTexture(metadata.TextureDescriptor{
		Type:      textureType,
		Width:     dimension,
		Height:    dimension,
		Format:    resources.TextureFormatRGBA8,
		WrapS:     resources.TextureWrapRepeat,
		WrapT:     resources.TextureWrapRepeat,
		WrapR:     resources.TextureWrapRepeat,
		MinFilter: resources.TextureFilterNearest,
		MagFilter: resources.TextureFilterNearest,
	})
	if err != nil {
		return metadata.InvalidHandle, err
	}
	faces := 1
	if textureType == resources.TextureTypeCube {
		faces = resources.CubeFaceCount
	}
	for face := 0; face < faces; face++ {
		if err := ts.backend.UploadTexture(handle, face, dimension, dimension, pixels); err != nil {
			ts.backend.DestroyTexture(handle)
			return metadata.InvalidHandle, err
		}
	}
	return handle, nil
}

// CheckerboardPixels returns dimension x dimension RGBA pixels alternating
// blue and white.
func CheckerboardPixels(dimension uint32) []byte {
	channels := uint32(4)
	pixels := make([]byte, dimension*dimension*channels)
	for i := range pixels {
		pixels[i] = 255
	}
	for row := uint32(0); row < dimension; row++ {
		for col := uint32(0); col < dimension; col++ {
			index := (row*dimension + col) * channels
			if row%2 == col%2 {
				pixels[index+0] = 0
				pixels[index+1] = 0
			}
		}
	}
	return pixels
}

func (ts *TextureSystem) DefaultTexture() metadata.TextureHandle {
	return ts.defaultTexture
}

func (ts *TextureSystem) DefaultCubeTexture() metadata.TextureHandle {
	return ts.defaultCubeTexture
}

func (ts *TextureSystem) build(texture *resources.Texture) func() (*TextureState, error) {
	return func() (*TextureState, error) {
		handle, err := ts.backend.CreateTexture(metadata.TextureDescriptor{
			Type:      texture.Type,
			Width:     texture.Width,
			Height:    texture.Height,
			Format:    texture.Format,
			WrapS:     texture.WrapS,
			WrapT:     texture.WrapT,
			WrapR:     texture.WrapR,
			MinFilter: texture.MinFilter,
			MagFilter: texture.MagFilter,
			Mipmaps:   texture.GenerateMipmaps,
		})
		if err != nil {
			return nil, fmt.Errorf("texture %d: %w", texture.ID, err)
		}
		return &TextureState{
			TextureID: texture.ID,
			Handle:    handle,
			Type:      texture.Type,
		}, nil
	}
}

/**
 * @brief Returns the GPU state of texture, creating it on first use and
 * uploading its sources whenever the texture version moved. The texture
 * itself is the holder; Get does not add a hold.
 */
func (ts *TextureSystem) Get(texture *resources.Texture) (*TextureState, error) {
	s, _, err := ts.textures.LoadOrCreate(texture.ID, ts.build(texture))
	if err != nil {
		return nil, err
	}
	return s, ts.upload(s, texture)
}

// Acquire is Get plus one extra hold, given back with Release.
func (ts *TextureSystem) Acquire(texture *resources.Texture) (*TextureState, error) {
	s, err := ts.textures.Acquire(texture.ID, ts.build(texture))
	if err != nil {
		return nil, err
	}
	return s, ts.upload(s, texture)
}

func (ts *TextureSystem) Release(texture *resources.Texture) bool {
	return ts.textures.Release(texture.ID)
}

func (ts *TextureSystem) RefCount(id uint32) uint32 {
	return ts.textures.RefCount(id)
}

func (ts *TextureSystem) Count() int {
	return ts.textures.Len()
}

func (ts *TextureSystem) upload(s *TextureState, texture *resources.Texture) error {
	version := texture.Version()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.version == version || !texture.IsComplete() {
		return nil
	}
	for face, source := range texture.GetSources() {
		if err := ts.backend.UploadTexture(s.Handle, face, source.Width, source.Height, source.Data); err != nil {
			return fmt.Errorf("texture %d face %d: %w", texture.ID, face, err)
		}
	}
	s.version = version
	return nil
}

/**
 * @brief Binds texture to unit. Missing textures and textures still waiting
 * for their sources bind the default texture of the same type.
 */
func (ts *TextureSystem) Bind(texture *resources.Texture, unit int32) error {
	if texture == nil {
		ts.backend.BindTexture(unit, ts.defaultTexture)
		return nil
	}
	if !texture.IsRenderTarget && !texture.IsComplete() {
		if texture.Type == resources.TextureTypeCube {
			ts.backend.BindTexture(unit, ts.defaultCubeTexture)
		} else {
			ts.backend.BindTexture(unit, ts.defaultTexture)
		}
		return nil
	}
	s, err := ts.Get(texture)
	if err != nil {
		return err
	}
	ts.backend.BindTexture(unit, s.Handle)
	return nil
}

func (ts *TextureSystem) onTextureDispose(event *core.Event) {
	if ts.textures.Remove(event.TargetID) {
		core.LogDebug("texture %d disposed, GPU storage released", event.TargetID)
	}
}

func (ts *TextureSystem) Shutdown() error {
	ts.bus.RemoveEventListener(core.EVENT_TEXTURE_DISPOSE, ts.owner)
	ts.textures.Purge()
	if ts.defaultTexture != metadata.InvalidHandle {
		ts.backend.DestroyTexture(ts.defaultTexture)
		ts.defaultTexture = metadata.InvalidHandle
	}
	if ts.defaultCubeTexture != metadata.InvalidHandle {
		ts.backend.DestroyTexture(ts.defaultCubeTexture)
		ts.defaultCubeTexture = metadata.InvalidHandle
	}
	return nil
}
