package ebitenrender

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/unpack"
)

// Tween animates one float64 field. Call Update(dt) each frame; the value is
// written through on every update. If the owning node is disposed, the
// tween stops immediately.
type Tween struct {
	tween  *gween.Tween
	field  *float64
	target *unpack.Node
	Done   bool
}

// NewTween animates *field from its current value to `to` over duration
// seconds. target may be nil when the field is not owned by a node.
func NewTween(target *unpack.Node, field *float64, to float64, duration float32, fn ease.TweenFunc) *Tween {
	return &Tween{
		tween:  gween.New(float32(*field), float32(to), duration, fn),
		field:  field,
		target: target,
	}
}

// Pause returns a Tween that only waits for duration seconds.
func Pause(duration float32) *Tween {
	return &Tween{tween: gween.New(0, 0, duration, ease.Linear)}
}

// Update advances the tween by dt seconds.
func (t *Tween) Update(dt float32) {
	if t.Done {
		return
	}
	if t.target != nil && t.target.IsDisposed() {
		t.Done = true
		return
	}
	val, finished := t.tween.Update(dt)
	if t.field != nil {
		*t.field = float64(val)
	}
	t.Done = finished
}

// Timeline runs steps one after another. Each step is built lazily when it
// starts, so it tweens from the value the previous step left behind.
type Timeline struct {
	steps   []func() *Tween
	current *Tween
	next    int
}

// NewTimeline returns a timeline over the given step constructors.
func NewTimeline(steps ...func() *Tween) *Timeline {
	return &Timeline{steps: steps}
}

// Update advances the running step by dt seconds and starts the next step
// once it completes.
func (tl *Timeline) Update(dt float32) {
	if tl.current == nil || tl.current.Done {
		if tl.next >= len(tl.steps) {
			return
		}
		tl.current = tl.steps[tl.next]()
		tl.next++
	}
	tl.current.Update(dt)
}

// Done reports whether every step has completed.
func (tl *Timeline) Done() bool {
	return tl.next >= len(tl.steps) && (tl.current == nil || tl.current.Done)
}
