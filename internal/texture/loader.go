package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
)

// LoadTexture reads a PNG, JPEG or TGA file and builds its mip chain.
func LoadTexture(path string, srgb bool) (*Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}

	// tga registers an empty magic string and would claim every file
	// passed to image.Decode, so the decoder follows the extension.
	var img image.Image
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		img, err = png.Decode(bytes.NewReader(raw))
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(bytes.NewReader(raw))
	case ".tga":
		img, err = tga.Decode(bytes.NewReader(raw))
	default:
		return nil, fmt.Errorf("texture: unknown extension: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}

	return NewImageFromNRGBA(toNRGBA(img), srgb), nil
}

// toNRGBA converts any image to NRGBA format anchored at the origin.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
