package unpack

import (
	"image/png"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/flate"
)

// MinResolution is the lowest device-pixel multiplier an export runs at,
// so output stays crisp regardless of the host's display density.
const MinResolution = 2

// Config is the process-wide export configuration. It is built once at
// startup, handed to NewExporter, and read-only for the whole run.
type Config struct {
	// Resolution is the device-pixel multiplier. Values below
	// MinResolution (including zero) are raised to MinResolution.
	Resolution float64
	// ArchiveName is the suggested file name reported in Result.
	// Empty selects DefaultArchiveName.
	ArchiveName string
	// Filter is used by ComposeFrame when the trimmed image must be
	// resampled.
	Filter Filter
	// MaxSurfacePixels caps the frame canvas of a trimmed region; larger
	// frames fail the region with ErrSurfaceAlloc. Zero means
	// DefaultMaxSurfacePixels.
	MaxSurfacePixels int
	// PNGCompression is the per-entry PNG compression level.
	PNGCompression png.CompressionLevel
	// ZipLevel is the deflate level for archive entries; 0 stores them
	// uncompressed. Start from DefaultConfig to get the library default.
	ZipLevel int
	// ModTime is stamped on archive entries; zero writes none.
	ModTime time.Time
	// Logger receives per-region progress and failures. Nil discards.
	Logger *log.Logger
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Resolution:     MinResolution,
		ArchiveName:    DefaultArchiveName,
		Filter:         FilterNearest,
		PNGCompression: png.DefaultCompression,
		ZipLevel:       flate.DefaultCompression,
	}
}

// normalize fills derived defaults without touching the caller's copy.
func (c Config) normalize() Config {
	if !(c.Resolution >= MinResolution) {
		c.Resolution = MinResolution
	}
	if c.ArchiveName == "" {
		c.ArchiveName = DefaultArchiveName
	}
	if c.MaxSurfacePixels <= 0 {
		c.MaxSurfacePixels = DefaultMaxSurfacePixels
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
	return c
}
