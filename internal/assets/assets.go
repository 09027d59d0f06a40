// Package assets loads an atlas from disk: the descriptor, the page image
// it names, and the scene graph the exporter renders from.
package assets

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/phanxgames/unpack"
)

// ErrNoImage is returned when neither the descriptor nor the caller names
// an atlas image.
var ErrNoImage = errors.New("assets: descriptor names no atlas image")

// Atlas is a descriptor together with its decoded page image.
type Atlas struct {
	Descriptor *unpack.Descriptor
	// ImagePath is the resolved path the page was read from.
	ImagePath string
	// Format is the decoder name reported by image.Decode.
	Format string
	Image  image.Image
}

// Load reads the descriptor at path and decodes its page image. A non-empty
// imagePath overrides the image named by the descriptor; relative image
// paths named by the descriptor resolve against the descriptor's directory.
func Load(path, imagePath string) (*Atlas, error) {
	desc, err := LoadDescriptor(path)
	if err != nil {
		return nil, err
	}
	if imagePath == "" {
		imagePath = ResolveImagePath(path, desc.ImagePath)
	}
	if imagePath == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoImage, path)
	}
	img, format, err := DecodeImage(imagePath)
	if err != nil {
		return nil, err
	}
	return &Atlas{Descriptor: desc, ImagePath: imagePath, Format: format, Image: img}, nil
}

// LoadDescriptor reads and parses an XML or JSON descriptor file.
func LoadDescriptor(path string) (*unpack.Descriptor, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided descriptor path is intentional
	if err != nil {
		return nil, fmt.Errorf("assets: read descriptor: %w", err)
	}
	desc, err := unpack.LoadDescriptor(data)
	if err != nil {
		return nil, fmt.Errorf("assets: %s: %w", path, err)
	}
	return desc, nil
}

// ResolveImagePath returns named relative to the directory of descriptor.
// Absolute names are returned unchanged; an empty name stays empty.
func ResolveImagePath(descriptor, named string) string {
	if named == "" {
		return ""
	}
	named = filepath.FromSlash(strings.ReplaceAll(named, "\\", "/"))
	if filepath.IsAbs(named) {
		return named
	}
	return filepath.Join(filepath.Dir(descriptor), named)
}

// DecodeImage decodes a PNG, JPEG, GIF, BMP or WebP file.
func DecodeImage(path string) (image.Image, string, error) {
	f, err := os.Open(path) //nolint:gosec // user-provided image path is intentional
	if err != nil {
		return nil, "", fmt.Errorf("assets: open image: %w", err)
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("assets: decode %s: %w", path, err)
	}
	return img, format, nil
}

// Scene wraps the page image in a group so the exporter can translate the
// root without touching the image node.
func (a *Atlas) Scene() *unpack.Node {
	root := unpack.NewGroup("atlas")
	root.AddChild(unpack.NewImage(filepath.Base(a.ImagePath), a.Image))
	return root
}
