package unpack

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// DefaultMaxSurfacePixels bounds a raster surface at 64 megapixels
// (256 MiB of RGBA).
const DefaultMaxSurfacePixels = 1 << 26

// RasterRenderer is a CPU Renderer backed by *image.RGBA surfaces. It needs
// no graphics device, so it serves headless hosts and tests. Output is
// deterministic for a given scene, region and filter.
type RasterRenderer struct {
	// Filter is the interpolator used for non-integer transforms.
	Filter Filter
	// MaxSurfacePixels caps w*h of a single surface; larger requests fail
	// with ErrSurfaceAlloc. Zero means DefaultMaxSurfacePixels.
	MaxSurfacePixels int
}

// NewRasterRenderer returns a RasterRenderer using the given filter.
func NewRasterRenderer(filter Filter) *RasterRenderer {
	return &RasterRenderer{Filter: filter}
}

type rasterSurface struct {
	owner      *RasterRenderer
	img        *image.RGBA
	resolution float64
}

func (s *rasterSurface) Size() (int, int) {
	if s.img == nil {
		return 0, 0
	}
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *rasterSurface) Resolution() float64 { return s.resolution }

func (s *rasterSurface) Dispose() { s.img = nil }

// NewSurface allocates a transparent RGBA surface.
func (r *RasterRenderer) NewSurface(width, height, resolution float64) (Surface, error) {
	w, h := SurfaceSize(width, height, resolution)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: %gx%g at %gx", ErrDegenerateRegion, width, height, resolution)
	}
	if err := checkSurfacePixels(w, h, r.MaxSurfacePixels); err != nil {
		return nil, err
	}
	return &rasterSurface{
		owner:      r,
		img:        image.NewRGBA(image.Rect(0, 0, w, h)),
		resolution: resolution,
	}, nil
}

// Render draws every visible image node of root onto target, source-over,
// in tree order.
func (r *RasterRenderer) Render(root *Node, target Surface) error {
	s, err := r.surface(target)
	if err != nil {
		return err
	}
	interp := interpolator(r.Filter)
	Walk(root, ScaleAffine(s.resolution), func(n *Node, world Affine) {
		switch n.Type {
		case NodeTypeImage:
			drawImageNode(s.img, n.Source, world, interp)
		case NodeTypeGroup:
			// Groups only contribute their transform.
		}
	})
	return nil
}

// Extract returns a straight-alpha copy of the surface.
func (r *RasterRenderer) Extract(target Surface) (image.Image, error) {
	s, err := r.surface(target)
	if err != nil {
		return nil, err
	}
	b := s.img.Bounds()
	return Unpremultiply(s.img.Pix, b.Dx(), b.Dy()), nil
}

func (r *RasterRenderer) surface(target Surface) (*rasterSurface, error) {
	s, ok := target.(*rasterSurface)
	if !ok || s.owner != r {
		return nil, ErrForeignSurface
	}
	if s.img == nil {
		return nil, ErrSurfaceDisposed
	}
	return s, nil
}

// drawImageNode composites src onto dst through the world matrix. The
// source's own bounds origin maps to the node origin.
func drawImageNode(dst *image.RGBA, src image.Image, world Affine, interp xdraw.Interpolator) {
	if src == nil {
		return
	}
	sb := src.Bounds()
	if sb.Empty() {
		return
	}
	m := world.Mul(TranslateAffine(-float64(sb.Min.X), -float64(sb.Min.Y)))
	s2d := f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
	interp.Transform(dst, s2d, src, sb, xdraw.Over, nil)
}

// checkSurfacePixels fails with ErrSurfaceAlloc when a w by h pixel buffer
// exceeds limit. A limit of zero or less means DefaultMaxSurfacePixels.
func checkSurfacePixels(w, h, limit int) error {
	if limit <= 0 {
		limit = DefaultMaxSurfacePixels
	}
	if int64(w)*int64(h) > int64(limit) {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrSurfaceAlloc, w, h, limit)
	}
	return nil
}

func interpolator(f Filter) xdraw.Interpolator {
	switch f {
	case FilterBilinear:
		return xdraw.BiLinear
	case FilterCatmullRom:
		return xdraw.CatmullRom
	default:
		return xdraw.NearestNeighbor
	}
}
