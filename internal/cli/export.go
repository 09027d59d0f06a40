package cli

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/zeebo/blake3"

	"github.com/phanxgames/unpack"
	"github.com/phanxgames/unpack/internal/assets"
	"github.com/phanxgames/unpack/internal/config"
)

// errNothingExported is returned when every region of a non-empty atlas
// failed, so no useful archive exists.
var errNothingExported = errors.New("no region could be exported")

// exportOpts holds the flags of the export command. Unset flags fall back
// to the config file.
type exportOpts struct {
	image      string  // atlas image, overriding the descriptor's imagePath
	output     string  // archive path
	resolution float64 // device-pixel multiplier
	filter     string  // resampling filter
	zipLevel   int     // deflate level, 0 stores
}

// newExportCmd creates the export command.
func newExportCmd() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export [descriptor]",
		Short: "Export every atlas region as a PNG inside a zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := applyExportFlags(cmd, settingsFromContext(cmd.Context()), &opts)
			if err := settings.Validate(); err != nil {
				return err
			}
			return runExport(cmd.Context(), cmd.OutOrStdout(), args[0], opts.image, settings)
		},
	}

	cmd.Flags().StringVar(&opts.image, "image", "", "atlas image (default: imagePath from the descriptor)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "archive path (default: "+unpack.DefaultArchiveName+")")
	cmd.Flags().Float64VarP(&opts.resolution, "resolution", "r", unpack.MinResolution, "device-pixel multiplier, at least 2")
	cmd.Flags().StringVar(&opts.filter, "filter", "nearest", "resampling filter: nearest, bilinear, catmullrom")
	cmd.Flags().IntVar(&opts.zipLevel, "zip-level", -1, "deflate level 0-9, 0 stores, -1 library default")

	return cmd
}

// applyExportFlags returns a copy of settings with explicitly set flags
// layered on top.
func applyExportFlags(cmd *cobra.Command, settings *config.File, opts *exportOpts) *config.File {
	f := *settings
	flags := cmd.Flags()
	if flags.Changed("output") {
		f.Output = opts.output
	}
	if flags.Changed("resolution") {
		f.Resolution = opts.resolution
	}
	if flags.Changed("filter") {
		f.Filter = opts.filter
	}
	if flags.Changed("zip-level") {
		level := opts.zipLevel
		f.ZipLevel = &level
	}
	return &f
}

// runExport loads the atlas, exports every region and writes the archive.
func runExport(ctx context.Context, out io.Writer, input, image string, settings *config.File) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	atlas, err := assets.Load(input, image)
	if err != nil {
		return err
	}
	b := atlas.Image.Bounds()
	logger.Info("Loaded atlas", "descriptor", input, "image", atlas.ImagePath, "format", atlas.Format,
		"size", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()), "regions", len(atlas.Descriptor.Regions))

	cfg, err := settings.ExportConfig()
	if err != nil {
		return err
	}
	cfg.Logger = logger

	exp, err := unpack.NewExporter(settings.Renderer(), cfg)
	if err != nil {
		return err
	}
	res, err := runJob(ctx, exp.Start(atlas.Scene(), atlas.Descriptor.Regions))
	if err != nil {
		return err
	}
	if len(res.Entries) == 0 && len(atlas.Descriptor.Regions) > 0 {
		return fmt.Errorf("%s: %w (%d failed)", input, errNothingExported, len(res.Failures))
	}

	path := settings.OutputPath()
	if err := WriteArchive(path, res.Archive); err != nil {
		return err
	}
	logger.Debug("archive digest", "blake3", Digest(res.Archive))
	prog.done(fmt.Sprintf("Exported %d regions", len(res.Entries)))

	printSuccess(out, "%d regions exported (%s)", len(res.Entries), humanize.Bytes(uint64(len(res.Archive))))
	printFile(out, path)
	for _, f := range res.Failures {
		printWarning(out, "%s skipped at %s: %v", f.Region, f.Stage, f.Err)
	}
	return nil
}

// runJob steps job until every region is processed, checking ctx between
// regions. A canceled run returns ctx.Err() and produces no archive.
func runJob(ctx context.Context, job *unpack.Job) (*unpack.Result, error) {
	for more := true; more; {
		if err := ctx.Err(); err != nil {
			done, total := job.Progress()
			loggerFromContext(ctx).Warn("export aborted", "done", done, "total", total)
			return nil, err
		}
		more = job.Step()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return job.Finalize()
}

// WriteArchive writes data to path, creating parent directories.
func WriteArchive(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // archive is meant to be shared
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}

// Digest returns the hex BLAKE3-256 digest of an archive, logged so two
// exports can be compared without unzipping them.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
