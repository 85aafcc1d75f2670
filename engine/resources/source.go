package resources

// Source is decoded pixel data shared between textures through the source
// cache. HashCode is stamped by the cache on registration.
type Source struct {
	Path     string
	Width    uint32
	Height   uint32
	Data     []byte
	HashCode uint64
}

func NewSource(path string, width, height uint32, data []byte) *Source {
	return &Source{
		Path:   path,
		Width:  width,
		Height: height,
		Data:   data,
	}
}
