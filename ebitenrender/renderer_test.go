package ebitenrender

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/unpack"
)

func TestNewSurfaceDimensions(t *testing.T) {
	r := New(unpack.FilterNearest)
	s, err := r.NewSurface(16, 64, 2)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	defer s.Dispose()

	if w, h := s.Size(); w != 32 || h != 128 {
		t.Errorf("Size = (%d, %d), want (32, 128)", w, h)
	}
	if s.Resolution() != 2 {
		t.Errorf("Resolution = %v, want 2", s.Resolution())
	}
	img := s.(*Surface).Image()
	if img == nil || img.Bounds().Dx() != 32 || img.Bounds().Dy() != 128 {
		t.Errorf("image bounds = %v", img.Bounds())
	}
}

func TestNewSurfaceErrors(t *testing.T) {
	r := &Renderer{MaxSurfaceSize: 64}

	tests := []struct {
		name      string
		w, h, res float64
		want      error
	}{
		{"zero width", 0, 8, 2, unpack.ErrDegenerateRegion},
		{"rounds to zero", 0.2, 8, 2, unpack.ErrDegenerateRegion},
		{"nan", math.NaN(), 8, 2, unpack.ErrDegenerateRegion},
		{"over limit", 40, 8, 2, unpack.ErrSurfaceAlloc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.NewSurface(tt.w, tt.h, tt.res); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSurfaceOwnership(t *testing.T) {
	a := New(unpack.FilterNearest)
	b := New(unpack.FilterNearest)
	s, err := a.NewSurface(4, 4, 2)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}

	if err := b.Render(unpack.NewGroup("g"), s); !errors.Is(err, unpack.ErrForeignSurface) {
		t.Errorf("foreign Render err = %v, want ErrForeignSurface", err)
	}
	raster, err := unpack.NewRasterRenderer(unpack.FilterNearest).NewSurface(1, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Extract(raster); !errors.Is(err, unpack.ErrForeignSurface) {
		t.Errorf("raster surface err = %v, want ErrForeignSurface", err)
	}

	s.Dispose()
	s.Dispose() // second Dispose is a no-op
	if err := a.Render(unpack.NewGroup("g"), s); !errors.Is(err, unpack.ErrSurfaceDisposed) {
		t.Errorf("disposed Render err = %v, want ErrSurfaceDisposed", err)
	}
}

func TestRenderCachesSources(t *testing.T) {
	r := New(unpack.FilterNearest)
	defer r.Dispose()

	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	root := unpack.NewGroup("root")
	root.AddChild(unpack.NewImage("a", src))
	root.AddChild(unpack.NewImage("b", src))
	gpu := ebiten.NewImage(2, 2)
	defer gpu.Deallocate()
	root.AddChild(unpack.NewImage("gpu", gpu))

	s, err := r.NewSurface(4, 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Dispose()

	if err := r.Render(root, s); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := r.Render(root, s); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := r.CachedSources(); got != 1 {
		t.Errorf("CachedSources = %d, want 1 (shared source uploaded once, GPU image not cached)", got)
	}

	r.Dispose()
	if got := r.CachedSources(); got != 0 {
		t.Errorf("CachedSources after Dispose = %d, want 0", got)
	}
}

func TestGeoMMatchesAffine(t *testing.T) {
	n := unpack.NewImage("n", nil)
	n.SetPosition(10, 20)
	n.SetScale(2, 3)
	n.SetPivot(1, 1)
	n.Rotation = math.Pi / 6
	m := unpack.ScaleAffine(2).Mul(unpack.LocalTransform(n))

	g := geoM(m)
	for _, p := range [][2]float64{{0, 0}, {1, 0}, {0, 1}, {3.5, -2}} {
		wx, wy := m.Apply(p[0], p[1])
		gx, gy := g.Apply(p[0], p[1])
		if math.Abs(wx-gx) > 1e-9 || math.Abs(wy-gy) > 1e-9 {
			t.Errorf("point %v: GeoM = (%v, %v), affine = (%v, %v)", p, gx, gy, wx, wy)
		}
	}
}

func TestEbitenFilter(t *testing.T) {
	tests := []struct {
		in   unpack.Filter
		want ebiten.Filter
	}{
		{unpack.FilterNearest, ebiten.FilterNearest},
		{unpack.FilterBilinear, ebiten.FilterLinear},
		{unpack.FilterCatmullRom, ebiten.FilterLinear},
	}
	for _, tt := range tests {
		if got := ebitenFilter(tt.in); got != tt.want {
			t.Errorf("ebitenFilter(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRendererStats(t *testing.T) {
	r := New(unpack.FilterNearest)
	defer r.Dispose()

	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	root := unpack.NewGroup("root")
	root.AddChild(unpack.NewImage("a", src))
	root.AddChild(unpack.NewImage("b", src))
	root.AddChild(unpack.NewGroup("empty"))

	s, err := r.NewSurface(2, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Dispose()
	if err := r.Render(root, s); err != nil {
		t.Fatalf("Render: %v", err)
	}

	got := r.Stats()
	if got.Surfaces != 1 || got.DrawCalls != 2 || got.Uploads != 1 {
		t.Errorf("Stats = %+v, want 1 surface, 2 draw calls, 1 upload", got)
	}
	r.ResetStats()
	if r.Stats() != (Stats{}) {
		t.Errorf("Stats after reset = %+v", r.Stats())
	}
}
