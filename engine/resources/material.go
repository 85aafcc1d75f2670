package resources

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jinzhu/copier"

	"github.com/hq2318768188/FFEngine/engine/core"
)

type MaterialType uint8

const (
	MaterialTypeBasic MaterialType = iota
	MaterialTypePhong
	MaterialTypeCube
	MaterialTypeDepth
)

func (t MaterialType) String() string {
	switch t {
	case MaterialTypeBasic:
		return "basic"
	case MaterialTypePhong:
		return "phong"
	case MaterialTypeCube:
		return "cube"
	case MaterialTypeDepth:
		return "depth"
	default:
		return "unknown"
	}
}

type Side uint8

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

type BlendingType uint8

const (
	NoBlending BlendingType = iota
	NormalBlending
	AdditiveBlending
)

type DepthPacking uint8

const (
	BasicDepthPacking DepthPacking = iota
	RGBADepthPacking
)

/**
 * @brief Describes how a surface is shaded. Materials are shared between
 * drawables; changing a field that affects the shader variant should be
 * followed by NeedsUpdate so caches re-resolve the program.
 */
type Material struct {
	ID   uint32
	Name string
	Type MaterialType

	Visible     bool
	Transparent bool
	Opacity     float32
	Color       mgl32.Vec3
	Shininess   float32

	DiffuseMap  *Texture
	NormalMap   *Texture
	SpecularMap *Texture
	EnvMap      *Texture

	Side         Side
	Blending     BlendingType
	DepthTest    bool
	DepthWrite   bool
	DepthPacking DepthPacking

	version  atomic.Uint32 `copier:"-"`
	disposed atomic.Bool   `copier:"-"`
	bus      *core.EventBus
}

func newMaterial(bus *core.EventBus, materialType MaterialType) *Material {
	m := &Material{
		ID:         core.IdentifierAcquireNewID(),
		Type:       materialType,
		Visible:    true,
		Opacity:    1,
		Color:      mgl32.Vec3{1, 1, 1},
		Shininess:  32,
		Side:       FrontSide,
		Blending:   NormalBlending,
		DepthTest:  true,
		DepthWrite: true,
		bus:        bus,
	}
	m.version.Store(1)
	return m
}

func NewBasicMaterial(bus *core.EventBus) *Material {
	return newMaterial(bus, MaterialTypeBasic)
}

func NewPhongMaterial(bus *core.EventBus) *Material {
	return newMaterial(bus, MaterialTypePhong)
}

// NewCubeMaterial returns the material used to draw cube map backgrounds:
// seen from inside, no depth writes.
func NewCubeMaterial(bus *core.EventBus) *Material {
	m := newMaterial(bus, MaterialTypeCube)
	m.Side = BackSide
	m.DepthWrite = false
	return m
}

func NewDepthMaterial(bus *core.EventBus) *Material {
	return newMaterial(bus, MaterialTypeDepth)
}

func (m *Material) GetID() uint32 {
	return m.ID
}

// NeedsUpdate marks the material as changed.
func (m *Material) NeedsUpdate() {
	m.version.Add(1)
}

func (m *Material) Version() uint32 {
	return m.version.Load()
}

// Clone returns a copy with a fresh identity. Texture maps are shared.
func (m *Material) Clone() (*Material, error) {
	c := &Material{}
	if err := copier.Copy(c, m); err != nil {
		return nil, err
	}
	c.ID = core.IdentifierAcquireNewID()
	c.bus = m.bus
	c.version.Store(1)
	return c, nil
}

// Textures returns the maps that are set, in a fixed order.
func (m *Material) Textures() []*Texture {
	textures := make([]*Texture, 0, 4)
	for _, t := range []*Texture{m.DiffuseMap, m.NormalMap, m.SpecularMap, m.EnvMap} {
		if t != nil {
			textures = append(textures, t)
		}
	}
	return textures
}

func (m *Material) IsDisposed() bool {
	return m.disposed.Load()
}

func (m *Material) Dispose() {
	if !m.disposed.CompareAndSwap(false, true) {
		return
	}
	dispatch(m.bus, core.EVENT_MATERIAL_DISPOSE, m.ID, m)
}
