// Package cli implements the unpack command-line interface.
//
// The CLI loads a texture atlas (an XML or JSON descriptor plus its page
// image), renders every region with the CPU renderer and writes the PNGs to
// a zip archive. It is built on cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - export: write every region of an atlas to a zip archive
//   - list: print the regions a descriptor defines
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which
// includes one line per exported region. Loggers travel through
// context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/phanxgames/unpack/internal/config"
)

// newLogger creates a logger writing to w at the given level, with
// "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Exported 12 regions (41ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const (
	loggerKey ctxKey = iota
	settingsKey
)

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the attached logger, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

func withSettings(ctx context.Context, f *config.File) context.Context {
	return context.WithValue(ctx, settingsKey, f)
}

// settingsFromContext returns the loaded config file, or an empty one.
func settingsFromContext(ctx context.Context) *config.File {
	if f, ok := ctx.Value(settingsKey).(*config.File); ok {
		return f
	}
	return &config.File{}
}
