// Command unpack-gpu exports an atlas on the GPU inside an ebiten window,
// showing a load screen while regions are rendered one per frame.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2"
	flag "github.com/spf13/pflag"

	"github.com/phanxgames/unpack"
	"github.com/phanxgames/unpack/ebitenrender"
	"github.com/phanxgames/unpack/internal/assets"
	"github.com/phanxgames/unpack/internal/cli"
	"github.com/phanxgames/unpack/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "config file (default: $XDG_CONFIG_HOME/unpack/config.toml)")
		image      = flag.String("image", "", "atlas image (default: imagePath from the descriptor)")
		output     = flag.StringP("output", "o", "", "archive path (default: "+unpack.DefaultArchiveName+")")
		resolution = flag.Float64P("resolution", "r", unpack.MinResolution, "device-pixel multiplier, at least 2")
		filter     = flag.String("filter", "nearest", "resampling filter: nearest, bilinear, catmullrom")
		zipLevel   = flag.Int("zip-level", -1, "deflate level 0-9, 0 stores, -1 library default")
		width      = flag.Int("width", 640, "window width")
		height     = flag.Int("height", 480, "window height")
		verbose    = flag.BoolP("verbose", "v", false, "enable debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: unpack-gpu [flags] descriptor\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := log.InfoLevel
	if *verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "unpack-gpu",
	})

	settings, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("load config", "err", err)
	}
	if flag.CommandLine.Changed("output") {
		settings.Output = *output
	}
	if flag.CommandLine.Changed("resolution") {
		settings.Resolution = *resolution
	}
	if flag.CommandLine.Changed("filter") {
		settings.Filter = *filter
	}
	if flag.CommandLine.Changed("zip-level") {
		settings.ZipLevel = zipLevel
	}

	if err := run(flag.Arg(0), *image, settings, *width, *height, logger); err != nil {
		logger.Fatal("export failed", "err", err)
	}
}

func run(input, image string, settings *config.File, w, h int, logger *log.Logger) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	atlas, err := assets.Load(input, image)
	if err != nil {
		return err
	}
	cfg, err := settings.ExportConfig()
	if err != nil {
		return err
	}
	cfg.Resolution = max(cfg.Resolution, ebiten.Monitor().DeviceScaleFactor())
	cfg.Logger = logger

	renderer := ebitenrender.New(cfg.Filter)
	exp, err := unpack.NewExporter(renderer, cfg)
	if err != nil {
		return err
	}
	logger.Info("Loaded atlas", "descriptor", input, "image", atlas.ImagePath,
		"regions", len(atlas.Descriptor.Regions), "resolution", cfg.Resolution)

	path := settings.OutputPath()
	onDone := func(res *unpack.Result) error {
		if len(res.Entries) == 0 && len(atlas.Descriptor.Regions) > 0 {
			return fmt.Errorf("%s: no region could be exported (%d failed)", input, len(res.Failures))
		}
		if err := cli.WriteArchive(path, res.Archive); err != nil {
			return err
		}
		logger.Debug("archive digest", "blake3", cli.Digest(res.Archive))
		for _, f := range res.Failures {
			logger.Warn("region skipped", "region", f.Region, "stage", f.Stage, "err", f.Err)
		}
		logger.Info("Exported", "regions", len(res.Entries), "size", humanize.Bytes(uint64(len(res.Archive))), "path", path)
		return nil
	}

	game := ebitenrender.NewGame(exp.Start(atlas.Scene(), atlas.Descriptor.Regions), renderer, w, h, onDone, logger)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("unpack: " + atlas.ImagePath)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return game.Err()
}
