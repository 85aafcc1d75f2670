package loaders

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/hq2318768188/FFEngine/engine/resources"
)

type ImageLoader struct{}

// Load decodes the file at path into tightly packed RGBA8 pixels, the first
// row at the bottom when flipY is set.
func (il *ImageLoader) Load(path string, flipY bool) (*resources.Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding `%s`: %w", path, err)
	}

	rgba := clone.AsRGBA(img)
	if flipY {
		rgba = transform.FlipV(rgba)
	}
	bounds := rgba.Bounds()
	source := resources.NewSource(path, uint32(bounds.Dx()), uint32(bounds.Dy()), packRGBA(rgba))
	return source, nil
}

// packRGBA drops any row padding.
func packRGBA(img *image.RGBA) []byte {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if img.Stride == w*4 && len(img.Pix) == w*h*4 {
		return img.Pix
	}
	pixels := make([]byte, 0, w*h*4)
	for y := 0; y < h; y++ {
		start := y * img.Stride
		pixels = append(pixels, img.Pix[start:start+w*4]...)
	}
	return pixels
}
