package ebitenrender

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/unpack"
)

// phase is the host's position in the export lifecycle.
type phase uint8

const (
	phaseShowing   phase = iota // load screen fading in
	phaseExporting              // one region per tick
	phaseHiding                 // load screen fading out
	phaseDone
)

// Game is an ebiten.Game that runs an export job inside the game loop. Each
// Update advances the job by one region while the load screen animates;
// when the job is finalized, onDone receives the result and the game
// terminates once the load screen has faded out.
type Game struct {
	job      *unpack.Job
	renderer *Renderer
	screen   *LoadScreen
	onDone   func(*unpack.Result) error
	log      *log.Logger

	phase phase
	err   error
	w, h  int
}

// NewGame returns a host for job. The job must have been started on an
// exporter using renderer. onDone is called once with the finalized result;
// an error it returns ends the game with that error.
func NewGame(job *unpack.Job, renderer *Renderer, w, h int, onDone func(*unpack.Result) error, logger *log.Logger) *Game {
	if logger == nil {
		logger = log.Default()
	}
	g := &Game{
		job:      job,
		renderer: renderer,
		screen:   NewLoadScreen(w, h),
		onDone:   onDone,
		log:      logger,
		w:        w,
		h:        h,
	}
	g.screen.Show()
	return g
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	return g.tick(1 / float64(ebiten.TPS()))
}

// tick advances the host by dt seconds.
func (g *Game) tick(dt float64) error {
	g.screen.Update(dt)

	switch g.phase {
	case phaseShowing:
		if !g.screen.Animating() {
			g.phase = phaseExporting
		}
	case phaseExporting:
		if g.job.Step() {
			done, total := g.job.Progress()
			g.log.Debug("export progress", "done", done, "total", total)
			return nil
		}
		g.finish()
		logStats(g.log, g.renderer.Stats())
		g.screen.Hide()
		g.phase = phaseHiding
	case phaseHiding:
		if !g.screen.Animating() {
			g.phase = phaseDone
		}
	case phaseDone:
		g.screen.Dispose()
		g.renderer.Dispose()
		if g.err != nil {
			return g.err
		}
		return ebiten.Termination
	}
	return nil
}

// finish finalizes the job and hands the result to onDone.
func (g *Game) finish() {
	res, err := g.job.Finalize()
	if err != nil {
		g.err = err
		return
	}
	if g.onDone != nil {
		g.err = g.onDone(res)
	}
}

// Err returns the error the export ended with, if any.
func (g *Game) Err() error {
	return g.err
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.phase == phaseDone {
		return
	}
	if err := g.screen.Draw(g.renderer, screen); err != nil && !errors.Is(err, unpack.ErrSurfaceDisposed) {
		g.log.Warn("load screen draw failed", "err", err)
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.phase != phaseDone && (outsideWidth != g.w || outsideHeight != g.h) {
		g.w, g.h = outsideWidth, outsideHeight
		g.screen.Resize(g.w, g.h)
	}
	return g.w, g.h
}
