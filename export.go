package unpack

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/charmbracelet/log"
)

// Exporter renders atlas regions through a host Renderer and packages them
// into a zip archive.
type Exporter struct {
	renderer Renderer
	cfg      Config
	log      *log.Logger
}

// NewExporter binds a renderer and a configuration. The configuration is
// copied; later changes by the caller do not affect the exporter.
func NewExporter(r Renderer, cfg Config) (*Exporter, error) {
	if r == nil {
		return nil, errors.New("unpack: renderer is required")
	}
	cfg = cfg.normalize()
	return &Exporter{renderer: r, cfg: cfg, log: cfg.Logger}, nil
}

// Config returns the normalized configuration in effect.
func (e *Exporter) Config() Config {
	return e.cfg
}

// Result is the outcome of a completed export run.
type Result struct {
	// Filename is the suggested download name for Archive.
	Filename string
	// Archive is the serialized zip.
	Archive []byte
	// Entries lists archive entry names in processing order.
	Entries []string
	// Failures lists the regions left out of the archive.
	Failures []*RegionError
}

// Job is one export run, advanced a region at a time. Hosts with a frame
// loop call Step once per tick so the loop stays responsive; everyone else
// calls Exporter.Export. A Job is not safe for concurrent use.
type Job struct {
	exp      *Exporter
	scene    *Node
	regions  []Region
	next     int
	archive  *Archive
	png      *pngEncoder
	failures []*RegionError
	start    time.Time
	done     bool
}

// Start begins a run over regions in order. The scene is only read; each
// region renders from its own clone.
func (e *Exporter) Start(scene *Node, regions []Region) *Job {
	return &Job{
		exp:     e,
		scene:   scene,
		regions: regions,
		archive: NewArchive(ArchiveOptions{Level: e.cfg.ZipLevel, ModTime: e.cfg.ModTime}),
		png:     newPNGEncoder(e.cfg.PNGCompression),
		start:   time.Now(),
	}
}

// Export runs every region and finalizes the archive. A nil scene is
// rejected before any region is attempted.
func (e *Exporter) Export(scene *Node, regions []Region) (*Result, error) {
	if scene == nil {
		return nil, ErrNilScene
	}
	job := e.Start(scene, regions)
	for job.Step() {
	}
	return job.Finalize()
}

// Step processes the next region and reports whether any remain. A failing
// region is recorded and skipped; it never stops the run.
func (j *Job) Step() bool {
	if j.done || j.next >= len(j.regions) {
		return false
	}
	region := j.regions[j.next]
	j.next++

	if err := j.process(region); err != nil {
		var rerr *RegionError
		if !errors.As(err, &rerr) {
			rerr = &RegionError{Region: region.Name, Stage: StageRender, Err: err}
		}
		j.failures = append(j.failures, rerr)
		j.exp.log.Warn("region skipped", "region", region.Name, "stage", rerr.Stage, "err", rerr.Err)
	}
	return j.next < len(j.regions)
}

// Progress returns how many regions have been attempted out of the total.
func (j *Job) Progress() (attempted, total int) {
	return j.next, len(j.regions)
}

// Finalize serializes the archive. It must be called once, after Step has
// returned false; remaining regions are processed first if it was not.
// A serialization failure is returned as an error: no partial archive
// exists.
func (j *Job) Finalize() (*Result, error) {
	if j.done {
		return nil, ErrArchiveFinalized
	}
	for j.Step() {
	}
	j.done = true

	entries := j.archive.Names()
	data, err := j.archive.Finalize()
	if err != nil {
		return nil, err
	}
	j.exp.log.Info("archive finalized",
		"file", j.exp.cfg.ArchiveName,
		"entries", len(entries),
		"failed", len(j.failures),
		"bytes", len(data),
		"elapsed", time.Since(j.start).Round(time.Millisecond))
	return &Result{
		Filename: j.exp.cfg.ArchiveName,
		Archive:  data,
		Entries:  entries,
		Failures: j.failures,
	}, nil
}

// process renders, composes, encodes and archives a single region. Panics
// raised by the renderer are confined to the region.
func (j *Job) process(region Region) (err error) {
	stage := StageRender
	defer func() {
		if p := recover(); p != nil {
			err = &RegionError{Region: region.Name, Stage: stage, Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	fail := func(err error) error {
		return &RegionError{Region: region.Name, Stage: stage, Err: err}
	}

	cfg := j.exp.cfg
	var img image.Image
	img, err = RenderRegion(j.exp.renderer, j.scene, region.Rect, cfg.Resolution)
	if err != nil {
		return fail(err)
	}

	if region.Frame != nil {
		stage = StageCompose
		img, err = composeFrame(img, region.Rect, *region.Frame, cfg.Resolution, cfg.Filter, cfg.MaxSurfacePixels)
		if err != nil {
			return fail(err)
		}
	}

	stage = StageEncode
	data, err := j.png.encode(img)
	if err != nil {
		return fail(err)
	}

	stage = StageArchive
	name := EntryName(region.Name)
	if err := j.archive.Add(name, data); err != nil {
		return fail(err)
	}

	b := img.Bounds()
	j.exp.log.Debug("region exported", "region", region.Name, "entry", name, "w", b.Dx(), "h", b.Dy(), "bytes", len(data))
	return nil
}
