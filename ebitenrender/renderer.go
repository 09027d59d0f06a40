// Package ebitenrender implements unpack.Renderer on the GPU through ebiten
// and hosts an export inside an ebiten game loop.
//
// Read-back from the GPU is only possible while the game loop runs, so an
// export using this renderer must be driven from ebiten.Game.Update, one
// region per tick (see Game).
package ebitenrender

import (
	"fmt"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/unpack"
)

// DefaultMaxSurfaceSize is the largest surface side, in device pixels,
// NewSurface allocates. It matches the texture limit of common GPUs.
const DefaultMaxSurfaceSize = 8192

// Renderer draws unpack scene graphs onto offscreen ebiten images. Source
// images are uploaded once and cached until Dispose.
type Renderer struct {
	// Filter selects ebiten's sampling filter for scaled draws.
	Filter unpack.Filter
	// MaxSurfaceSize caps each side of a surface. Zero means
	// DefaultMaxSurfaceSize.
	MaxSurfaceSize int

	sources map[image.Image]*ebiten.Image
	stats   Stats
}

// New returns a Renderer using the given filter.
func New(filter unpack.Filter) *Renderer {
	return &Renderer{Filter: filter, sources: make(map[image.Image]*ebiten.Image)}
}

// Surface is an offscreen ebiten image created by Renderer.NewSurface.
type Surface struct {
	owner      *Renderer
	img        *ebiten.Image
	w, h       int
	resolution float64
}

// Size returns the surface size in device pixels.
func (s *Surface) Size() (int, int) { return s.w, s.h }

// Resolution returns the device-pixel multiplier of the surface.
func (s *Surface) Resolution() float64 { return s.resolution }

// Image returns the underlying image, nil after Dispose.
func (s *Surface) Image() *ebiten.Image { return s.img }

// Dispose deallocates the underlying image. A second call is a no-op.
func (s *Surface) Dispose() {
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
}

// NewSurface allocates a transparent surface of width*resolution by
// height*resolution device pixels.
func (r *Renderer) NewSurface(width, height, resolution float64) (unpack.Surface, error) {
	w, h := unpack.SurfaceSize(width, height, resolution)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: %gx%g at %gx", unpack.ErrDegenerateRegion, width, height, resolution)
	}
	limit := r.MaxSurfaceSize
	if limit <= 0 {
		limit = DefaultMaxSurfaceSize
	}
	if w > limit || h > limit {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d per side", unpack.ErrSurfaceAlloc, w, h, limit)
	}
	img, err := newImage(w, h)
	if err != nil {
		return nil, err
	}
	r.stats.Surfaces++
	return &Surface{owner: r, img: img, w: w, h: h, resolution: resolution}, nil
}

// newImage converts an allocation panic from the graphics driver into
// ErrSurfaceAlloc.
func newImage(w, h int) (img *ebiten.Image, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", unpack.ErrSurfaceAlloc, p)
		}
	}()
	return ebiten.NewImage(w, h), nil
}

// Render draws every visible image node of root onto target, scaled by the
// target's resolution.
func (r *Renderer) Render(root *unpack.Node, target unpack.Surface) error {
	s, err := r.surface(target)
	if err != nil {
		return err
	}
	start := time.Now()
	defer func() { r.stats.RenderTime += time.Since(start) }()

	filter := ebitenFilter(r.Filter)
	unpack.Walk(root, unpack.ScaleAffine(s.resolution), func(n *unpack.Node, world unpack.Affine) {
		if n.Type != unpack.NodeTypeImage || n.Source == nil {
			return
		}
		var op ebiten.DrawImageOptions
		op.GeoM = geoM(world)
		op.Filter = filter
		s.img.DrawImage(r.source(n.Source), &op)
		r.stats.DrawCalls++
	})
	return nil
}

// Extract reads target back from the GPU and converts it to straight alpha.
// It must be called while the game loop is running.
func (r *Renderer) Extract(target unpack.Surface) (image.Image, error) {
	s, err := r.surface(target)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	pix := make([]byte, 4*s.w*s.h)
	s.img.ReadPixels(pix)
	r.stats.ExtractTime += time.Since(start)
	return unpack.Unpremultiply(pix, s.w, s.h), nil
}

// DrawTo draws target onto dst with the given opacity. Hosts use it to
// present an offscreen layer.
func (r *Renderer) DrawTo(dst *ebiten.Image, target unpack.Surface, alpha float64) error {
	s, err := r.surface(target)
	if err != nil {
		return err
	}
	var op ebiten.DrawImageOptions
	op.ColorScale.ScaleAlpha(float32(alpha))
	dst.DrawImage(s.img, &op)
	return nil
}

// Dispose releases every cached source image.
func (r *Renderer) Dispose() {
	for src, img := range r.sources {
		img.Deallocate()
		delete(r.sources, src)
	}
}

// CachedSources returns the number of uploaded source images.
func (r *Renderer) CachedSources() int {
	return len(r.sources)
}

func (r *Renderer) surface(target unpack.Surface) (*Surface, error) {
	s, ok := target.(*Surface)
	if !ok || s.owner != r {
		return nil, unpack.ErrForeignSurface
	}
	if s.img == nil {
		return nil, unpack.ErrSurfaceDisposed
	}
	return s, nil
}

// source returns the GPU copy of src, uploading it on first use. The
// uploaded image always starts at (0, 0), matching the node origin. Images
// that already live on the GPU are used as is and never cached.
func (r *Renderer) source(src image.Image) *ebiten.Image {
	if img, ok := src.(*ebiten.Image); ok {
		return img
	}
	if img, ok := r.sources[src]; ok {
		return img
	}
	if r.sources == nil {
		r.sources = make(map[image.Image]*ebiten.Image)
	}
	img := ebiten.NewImageFromImage(src)
	r.sources[src] = img
	r.stats.Uploads++
	return img
}

// geoM converts an affine [a b c d tx ty] into an ebiten.GeoM.
func geoM(m unpack.Affine) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// ebitenFilter maps an unpack filter to the closest ebiten filter; ebiten
// has no cubic filter, so CatmullRom samples linearly.
func ebitenFilter(f unpack.Filter) ebiten.Filter {
	if f == unpack.FilterNearest {
		return ebiten.FilterNearest
	}
	return ebiten.FilterLinear
}
