package unpack

import (
	"errors"
	"fmt"
)

var (
	// ErrSurfaceAlloc is returned by a Renderer that cannot allocate an
	// offscreen surface of the requested size.
	ErrSurfaceAlloc = errors.New("unpack: offscreen surface allocation failed")

	// ErrDegenerateRegion is returned for regions whose rectangle, or
	// frame, rounds to zero device pixels.
	ErrDegenerateRegion = errors.New("unpack: region has zero area")

	// ErrForeignSurface is returned when a Surface is handed to a Renderer
	// that did not create it.
	ErrForeignSurface = errors.New("unpack: surface belongs to another renderer")

	// ErrSurfaceDisposed is returned when a disposed Surface is used.
	ErrSurfaceDisposed = errors.New("unpack: surface already disposed")

	// ErrArchiveFinalized is returned by Archive.Add after Finalize, by a
	// second Finalize, and by a second Job.Finalize.
	ErrArchiveFinalized = errors.New("unpack: archive already finalized")

	// ErrDuplicateEntry is returned when an archive entry name is reused.
	ErrDuplicateEntry = errors.New("unpack: duplicate archive entry")

	// ErrNilScene is returned when an export or a region render is given
	// no scene to draw.
	ErrNilScene = errors.New("unpack: scene is nil")
)

// Stage identifies the pipeline step a region failed in.
type Stage uint8

const (
	StageRender  Stage = iota // surface allocation, rasterization or read-back
	StageCompose              // frame compositing
	StageEncode               // PNG encoding
	StageArchive              // adding the entry to the archive
)

// String returns the stage name used in logs.
func (s Stage) String() string {
	switch s {
	case StageRender:
		return "render"
	case StageCompose:
		return "compose"
	case StageEncode:
		return "encode"
	case StageArchive:
		return "archive"
	default:
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
}

// RegionError reports a failure confined to one region. The region is
// omitted from the archive and the run continues.
type RegionError struct {
	Region string
	Stage  Stage
	Err    error
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("unpack: region %q: %s: %v", e.Region, e.Stage, e.Err)
}

func (e *RegionError) Unwrap() error {
	return e.Err
}
