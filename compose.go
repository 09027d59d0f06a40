package unpack

import (
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// ComposeFrame restores a trimmed sprite to its untrimmed frame. It returns
// a transparent canvas of frame.Width*r by frame.Height*r device pixels with
// trimmed drawn at (-frame.X, -frame.Y) logical units, scaled so it covers
// rect.Width*r by rect.Height*r. Pixels falling outside the canvas are
// clipped. Canvases larger than DefaultMaxSurfacePixels fail with
// ErrSurfaceAlloc.
func ComposeFrame(trimmed image.Image, rect, frame Rect, resolution float64, filter Filter) (*image.NRGBA, error) {
	return composeFrame(trimmed, rect, frame, resolution, filter, DefaultMaxSurfacePixels)
}

func composeFrame(trimmed image.Image, rect, frame Rect, resolution float64, filter Filter, maxPixels int) (*image.NRGBA, error) {
	w, h := SurfaceSize(frame.Width, frame.Height, resolution)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: frame %gx%g at %gx", ErrDegenerateRegion, frame.Width, frame.Height, resolution)
	}
	if err := checkSurfacePixels(w, h, maxPixels); err != nil {
		return nil, fmt.Errorf("frame: %w", err)
	}
	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))

	dw, dh := SurfaceSize(rect.Width, rect.Height, resolution)
	if dw == 0 || dh == 0 || trimmed == nil {
		return canvas, nil
	}
	x := int(math.Round(-frame.X * resolution))
	y := int(math.Round(-frame.Y * resolution))
	dst := image.Rect(x, y, x+dw, y+dh)

	sb := trimmed.Bounds()
	if sb.Dx() == dw && sb.Dy() == dh {
		xdraw.Copy(canvas, dst.Min, trimmed, sb, xdraw.Src, nil)
		return canvas, nil
	}
	interpolator(filter).Scale(canvas, dst, trimmed, sb, xdraw.Src, nil)
	return canvas, nil
}
