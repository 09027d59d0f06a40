package config

import (
	"fmt"
	"image/png"
	"math"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/klauspost/compress/flate"

	"github.com/phanxgames/unpack"
)

// AppName is the directory name used under the XDG config home.
const AppName = "unpack"

// FileName is the config file name searched for in the XDG config dirs.
const FileName = "config.toml"

// File mirrors the TOML settings file. Every field is optional.
type File struct {
	// Resolution is the device-pixel multiplier; values below 2 are raised.
	Resolution float64 `toml:"resolution"`
	// Output is the archive path written by the tools.
	Output string `toml:"output"`
	// Filter is nearest, bilinear or catmullrom.
	Filter string `toml:"filter"`
	// PNGCompression is default, none, fast or best.
	PNGCompression string `toml:"png_compression"`
	// ZipLevel is the deflate level; 0 stores entries. Unset means the
	// library default.
	ZipLevel *int `toml:"zip_level"`
	// MaxSurfacePixels caps offscreen surfaces of the CPU renderer and
	// frame canvases. Zero selects the default.
	MaxSurfacePixels int `toml:"max_surface_pixels"`

	// Path is the file the settings were read from, empty for defaults.
	Path string `toml:"-"`
}

// XDGConfigDir returns the per-user config directory for unpack.
// On Linux: ~/.config/unpack
// On macOS: ~/Library/Application Support/unpack
// On Windows: %LOCALAPPDATA%\unpack
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks every field and returns the first problem found.
func (f *File) Validate() error {
	if f.Resolution < 0 || math.IsNaN(f.Resolution) || math.IsInf(f.Resolution, 0) {
		return ErrInvalidResolution
	}
	if _, ok := unpack.ParseFilter(f.Filter); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidFilter, f.Filter)
	}
	if _, ok := parsePNGCompression(f.PNGCompression); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPNGCompression, f.PNGCompression)
	}
	if f.ZipLevel != nil && (*f.ZipLevel < flate.HuffmanOnly || *f.ZipLevel > flate.BestCompression) {
		return fmt.Errorf("%w: %d", ErrInvalidZipLevel, *f.ZipLevel)
	}
	if f.MaxSurfacePixels < 0 {
		return ErrInvalidMaxSurfacePixels
	}
	return nil
}

// ExportConfig validates the file and overlays it on unpack.DefaultConfig.
func (f *File) ExportConfig() (unpack.Config, error) {
	cfg := unpack.DefaultConfig()
	if err := f.Validate(); err != nil {
		return cfg, err
	}
	if f.Resolution > 0 {
		cfg.Resolution = f.Resolution
	}
	if f.Output != "" {
		cfg.ArchiveName = filepath.Base(f.Output)
	}
	cfg.Filter, _ = unpack.ParseFilter(f.Filter)
	cfg.PNGCompression, _ = parsePNGCompression(f.PNGCompression)
	if f.ZipLevel != nil {
		cfg.ZipLevel = *f.ZipLevel
	}
	cfg.MaxSurfacePixels = f.MaxSurfacePixels
	return cfg, nil
}

// OutputPath returns the configured archive path or the default name in
// the working directory.
func (f *File) OutputPath() string {
	if f.Output != "" {
		return f.Output
	}
	return unpack.DefaultArchiveName
}

// Renderer returns the CPU renderer configured by the file.
func (f *File) Renderer() *unpack.RasterRenderer {
	filter, _ := unpack.ParseFilter(f.Filter)
	r := unpack.NewRasterRenderer(filter)
	if f.MaxSurfacePixels > 0 {
		r.MaxSurfacePixels = f.MaxSurfacePixels
	}
	return r
}

func parsePNGCompression(s string) (png.CompressionLevel, bool) {
	switch s {
	case "", "default":
		return png.DefaultCompression, true
	case "none":
		return png.NoCompression, true
	case "fast":
		return png.BestSpeed, true
	case "best":
		return png.BestCompression, true
	}
	return 0, false
}
