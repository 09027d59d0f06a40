package ebitenrender

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/unpack"
)

const (
	tileSize        = 32
	tileScale       = 2
	spinnerSize     = 64
	spinnerSpeed    = 1.0 // radians per second, counter-clockwise
	badgeW, badgeH  = 160, 28
	badgeBottomGap  = 55
	badgeHideOffset = 100
)

// LoadScreen is the overlay shown while an export runs: a tiled
// background, a rotating spinner and a badge near the bottom edge. It is an
// unpack scene graph drawn through Renderer, faded as a whole by Alpha.
type LoadScreen struct {
	Root *unpack.Node

	background *unpack.Node
	spinner    *unpack.Node
	bottom     *unpack.Node
	badge      *unpack.Node
	tile       image.Image

	w, h  int
	alpha float64
	anim  *Timeline
	layer unpack.Surface
}

// NewLoadScreen builds the overlay for a w×h screen. It starts hidden;
// call Show to fade it in.
func NewLoadScreen(w, h int) *LoadScreen {
	l := &LoadScreen{
		Root:       unpack.NewGroup("loadscreen"),
		background: unpack.NewGroup("background"),
		spinner:    unpack.NewImage("spinner", spinnerImage(spinnerSize)),
		bottom:     unpack.NewGroup("bottom"),
		badge:      unpack.NewImage("badge", badgeImage(badgeW, badgeH)),
		tile:       backgroundTile(tileSize),
	}
	l.spinner.SetPivot(spinnerSize/2, spinnerSize/2)
	l.badge.SetPivot(badgeW/2, badgeH/2)

	l.Root.AddChild(l.background)
	l.Root.AddChild(l.spinner)
	l.bottom.AddChild(l.badge)
	l.Root.AddChild(l.bottom)

	l.Resize(w, h)
	return l
}

// Resize fits the background to the screen and recenters the spinner and
// badge.
func (l *LoadScreen) Resize(w, h int) {
	if w == l.w && h == l.h {
		return
	}
	l.w, l.h = w, h

	for l.background.NumChildren() > 0 {
		l.background.ChildAt(0).Dispose()
	}
	step := tileSize * tileScale
	for y := 0; y < h; y += step {
		for x := 0; x < w; x += step {
			t := unpack.NewImage("tile", l.tile)
			t.SetPosition(float64(x), float64(y))
			t.SetScale(tileScale, tileScale)
			l.background.AddChild(t)
		}
	}

	l.spinner.SetPosition(float64(w)*0.5, float64(h)*0.5)
	l.badge.SetPosition(float64(w)*0.5, float64(h-badgeBottomGap))

	if l.layer != nil {
		l.layer.Dispose()
		l.layer = nil
	}
}

// Show resets the overlay and fades it in.
func (l *LoadScreen) Show() {
	l.alpha = 0
	l.bottom.Y = 0
	l.anim = NewTimeline(func() *Tween {
		return NewTween(l.Root, &l.alpha, 1, 0.2, ease.Linear)
	})
}

// Hide slides the badge off screen, waits briefly and fades the overlay
// out.
func (l *LoadScreen) Hide() {
	l.anim = NewTimeline(
		func() *Tween { return NewTween(l.bottom, &l.bottom.Y, badgeHideOffset, 0.25, ease.OutQuad) },
		func() *Tween { return Pause(0.1) },
		func() *Tween { return NewTween(l.Root, &l.alpha, 0, 0.2, ease.Linear) },
	)
}

// Update advances the spinner and any running fade by dt seconds.
func (l *LoadScreen) Update(dt float64) {
	l.spinner.Rotation -= dt * spinnerSpeed
	if l.anim != nil {
		l.anim.Update(float32(dt))
	}
}

// Animating reports whether a Show or Hide is still in progress.
func (l *LoadScreen) Animating() bool {
	return l.anim != nil && !l.anim.Done()
}

// Alpha returns the current overlay opacity.
func (l *LoadScreen) Alpha() float64 {
	return l.alpha
}

// Draw renders the overlay offscreen with r and composites it onto dst at
// the current opacity.
func (l *LoadScreen) Draw(r *Renderer, dst *ebiten.Image) error {
	if l.alpha <= 0 || l.w <= 0 || l.h <= 0 {
		return nil
	}
	if l.layer == nil {
		layer, err := r.NewSurface(float64(l.w), float64(l.h), 1)
		if err != nil {
			return err
		}
		l.layer = layer
	} else if s, ok := l.layer.(*Surface); ok && s.img != nil {
		s.img.Clear()
	}
	if err := r.Render(l.Root, l.layer); err != nil {
		return err
	}
	return r.DrawTo(dst, l.layer, l.alpha)
}

// Dispose releases the offscreen layer and the scene graph.
func (l *LoadScreen) Dispose() {
	if l.layer != nil {
		l.layer.Dispose()
		l.layer = nil
	}
	l.Root.Dispose()
}

// backgroundTile draws a two-tone checker tile.
func backgroundTile(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	dark := color.NRGBA{R: 0x1c, G: 0x1f, B: 0x2b, A: 0xff}
	light := color.NRGBA{R: 0x24, G: 0x28, B: 0x37, A: 0xff}
	half := size / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := dark
			if (x < half) != (y < half) {
				c = light
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// spinnerImage draws a ring whose opacity fades around its circumference.
func spinnerImage(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	outer := c - 2
	inner := outer - 6
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)+0.5-c, float64(y)+0.5-c
			d := math.Hypot(dx, dy)
			if d < inner || d > outer {
				continue
			}
			t := (math.Atan2(dy, dx) + math.Pi) / (2 * math.Pi)
			img.SetNRGBA(x, y, color.NRGBA{R: 0xe9, G: 0x1e, B: 0x63, A: uint8(40 + 215*t)})
		}
	}
	return img
}

// badgeImage draws a filled pill.
func badgeImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	r := float64(h) / 2
	fill := color.NRGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 0xe0}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			cx := math.Min(math.Max(px, r), float64(w)-r)
			if math.Hypot(px-cx, py-r) <= r {
				img.SetNRGBA(x, y, fill)
			}
		}
	}
	return img
}
