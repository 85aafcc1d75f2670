package assets

import "github.com/hq2318768188/FFEngine/engine/resources"

type AssetType int

const (
	AssetTypeNone AssetType = iota
	AssetTypeImage
	AssetTypeShader
)

func (t AssetType) String() string {
	switch t {
	case AssetTypeImage:
		return "image"
	case AssetTypeShader:
		return "shader"
	default:
		return "none"
	}
}

// ImageLoader decodes an image file into RGBA pixels.
type ImageLoader interface {
	Load(path string, flipY bool) (*resources.Source, error)
}
