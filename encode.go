package unpack

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"unicode"
)

// Unpremultiply converts a premultiplied RGBA pixel buffer (as read back
// from a GPU surface) into a straight-alpha image.
func Unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	n := min(len(pixels), len(img.Pix))
	for i := 0; i+3 < n; i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// pngEncoder wraps png.Encoder with a reusable buffer pool.
type pngEncoder struct {
	enc png.Encoder
}

type pngBufferPool struct {
	b *png.EncoderBuffer
}

func (p *pngBufferPool) Get() *png.EncoderBuffer  { return p.b }
func (p *pngBufferPool) Put(b *png.EncoderBuffer) { p.b = b }

func newPNGEncoder(level png.CompressionLevel) *pngEncoder {
	return &pngEncoder{enc: png.Encoder{
		CompressionLevel: level,
		BufferPool:       &pngBufferPool{},
	}}
}

// encode returns img as PNG bytes.
func (e *pngEncoder) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodePNG encodes img at the given compression level.
func EncodePNG(img image.Image, level png.CompressionLevel) ([]byte, error) {
	return newPNGEncoder(level).encode(img)
}

// EntryName returns the archive entry name for a region: "{name}.png".
// Slashes are kept so atlas folders become archive folders, backslashes are
// treated as slashes, and empty, "." and ".." segments are dropped so no
// entry can escape the extraction directory. Control characters become
// underscores.
func EntryName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	parts := strings.Split(name, "/")
	kept := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || p == "." || p == ".." {
			continue
		}
		kept = append(kept, strings.Map(func(r rune) rune {
			if unicode.IsControl(r) {
				return '_'
			}
			return r
		}, p))
	}
	if len(kept) == 0 {
		return unknownRegionName + ".png"
	}
	return strings.Join(kept, "/") + ".png"
}
