package unpack

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// DefaultArchiveName is the suggested file name for the exported archive.
const DefaultArchiveName = "unpacked.zip"

// ArchiveOptions controls archive serialization.
type ArchiveOptions struct {
	// Level is the deflate level, flate.NoCompression (0) through
	// flate.BestCompression (9). flate.DefaultCompression (-1) selects the
	// library default. PNG payloads are already compressed, so low levels
	// lose little.
	Level int
	// ModTime is stamped on every entry. The zero value writes no
	// timestamp, keeping output byte-identical across runs.
	ModTime time.Time
}

type archiveEntry struct {
	name string
	data []byte
}

// Archive collects named entries and serializes them into a single zip
// exactly once. Entries are written in insertion order.
type Archive struct {
	opts      ArchiveOptions
	entries   []archiveEntry
	names     map[string]struct{}
	finalized bool
}

// NewArchive returns an empty archive.
func NewArchive(opts ArchiveOptions) *Archive {
	if opts.Level < flate.HuffmanOnly || opts.Level > flate.BestCompression {
		opts.Level = flate.DefaultCompression
	}
	return &Archive{opts: opts, names: make(map[string]struct{})}
}

// Add appends an entry. Names must be unique; data is retained, not copied.
func (a *Archive) Add(name string, data []byte) error {
	if a.finalized {
		return ErrArchiveFinalized
	}
	if _, dup := a.names[name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateEntry, name)
	}
	a.names[name] = struct{}{}
	a.entries = append(a.entries, archiveEntry{name: name, data: data})
	return nil
}

// Len returns the number of entries added so far.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Names returns the entry names in insertion order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.entries))
	for i, e := range a.entries {
		names[i] = e.name
	}
	return names
}

// Finalize serializes every entry into one zip blob. It may be called once;
// the archive is immutable afterwards and its entry payloads are released.
func (a *Archive) Finalize() ([]byte, error) {
	if a.finalized {
		return nil, ErrArchiveFinalized
	}
	a.finalized = true

	var buf bytes.Buffer
	if err := a.write(&buf); err != nil {
		return nil, fmt.Errorf("unpack: finalize archive: %w", err)
	}
	for i := range a.entries {
		a.entries[i].data = nil
	}
	return buf.Bytes(), nil
}

func (a *Archive) write(w io.Writer) error {
	zw := zip.NewWriter(w)
	level := a.opts.Level
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	for _, e := range a.entries {
		hdr := &zip.FileHeader{Name: e.name, Method: zip.Deflate}
		if level == flate.NoCompression {
			hdr.Method = zip.Store
		}
		if !a.opts.ModTime.IsZero() {
			hdr.Modified = a.opts.ModTime
		}
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("create %s: %w", e.name, err)
		}
		if _, err := fw.Write(e.data); err != nil {
			return fmt.Errorf("write %s: %w", e.name, err)
		}
	}
	return zw.Close()
}
