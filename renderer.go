package unpack

import (
	"fmt"
	"image"
)

// Surface is an offscreen render target created by a Renderer.
type Surface interface {
	// Size returns the surface size in device pixels.
	Size() (w, h int)
	// Resolution is the device-pixel multiplier applied to everything
	// rendered onto the surface.
	Resolution() float64
	// Dispose releases the surface. Further use is an error; a second
	// Dispose is a no-op.
	Dispose()
}

// Renderer is the host rendering capability the pipeline draws through. The
// pipeline never constructs one; it is handed in by the host.
type Renderer interface {
	// NewSurface allocates a transparent surface of width*resolution by
	// height*resolution device pixels.
	NewSurface(width, height, resolution float64) (Surface, error)
	// Render rasterizes the tree rooted at root onto target, scaled by the
	// target's resolution.
	Render(root *Node, target Surface) error
	// Extract reads the target back as a straight-alpha image.
	Extract(target Surface) (image.Image, error)
}

// RenderRegion renders one atlas region of scene. The scene is cloned, the
// clone translated by (-rect.X, -rect.Y) so the region's top-left lands on
// the surface origin, and a surface of rect's size at the given resolution
// receives the render. The clone and the surface are released before
// RenderRegion returns, on every path.
func RenderRegion(r Renderer, scene *Node, rect Rect, resolution float64) (img image.Image, err error) {
	if scene == nil {
		return nil, ErrNilScene
	}
	if w, h := SurfaceSize(rect.Width, rect.Height, resolution); w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: %gx%g at %gx", ErrDegenerateRegion, rect.Width, rect.Height, resolution)
	}

	clone := Clone(scene)
	defer clone.Dispose()
	clone.X -= rect.X
	clone.Y -= rect.Y

	surface, err := r.NewSurface(rect.Width, rect.Height, resolution)
	if err != nil {
		return nil, err
	}
	defer surface.Dispose()

	if err := r.Render(clone, surface); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	img, err = r.Extract(surface)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	return img, nil
}
