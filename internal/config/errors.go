package config

import "errors"

// Validation errors returned by File.Validate. Callers match them with
// errors.Is.
var (
	// ErrConfigNotFound is returned when an explicitly named config file
	// does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidResolution is returned for a negative or non-finite
	// resolution. Zero selects the default.
	ErrInvalidResolution = errors.New("invalid resolution: must be a positive number")

	// ErrInvalidFilter is returned for an unknown resampling filter name.
	ErrInvalidFilter = errors.New("invalid filter: use nearest, bilinear or catmullrom")

	// ErrInvalidPNGCompression is returned for an unknown PNG compression
	// name.
	ErrInvalidPNGCompression = errors.New("invalid png_compression: use default, none, fast or best")

	// ErrInvalidZipLevel is returned for a deflate level outside -2..9.
	ErrInvalidZipLevel = errors.New("invalid zip_level: must be between -2 and 9")

	// ErrInvalidMaxSurfacePixels is returned for a negative surface limit.
	ErrInvalidMaxSurfacePixels = errors.New("invalid max_surface_pixels: must be non-negative")
)
