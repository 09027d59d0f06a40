package ebitenrender

import (
	"time"

	"github.com/charmbracelet/log"
)

// Stats holds cumulative timing and draw-call metrics of a Renderer.
type Stats struct {
	Surfaces    int // surfaces allocated
	DrawCalls   int // DrawImage calls issued by Render
	Uploads     int // source images copied to the GPU
	RenderTime  time.Duration
	ExtractTime time.Duration
}

// Stats returns the metrics collected since the renderer was created or
// last reset.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// ResetStats zeroes the collected metrics.
func (r *Renderer) ResetStats() {
	r.stats = Stats{}
}

// logStats writes s to logger at debug level.
func logStats(logger *log.Logger, s Stats) {
	logger.Debug("renderer stats",
		"surfaces", s.Surfaces,
		"draw_calls", s.DrawCalls,
		"uploads", s.Uploads,
		"render", s.RenderTime,
		"extract", s.ExtractTime,
		"total", s.RenderTime+s.ExtractTime)
}
