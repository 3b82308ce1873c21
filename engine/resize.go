package engine

import (
	"context"
	"math"
	"time"
)

// Animation is the handle of one playfield resize. Starting another resize
// cancels it; a cancelled handle never touches the playfield again.
type Animation struct {
	ctx      context.Context
	cancel   context.CancelFunc
	from     int
	to       int
	start    time.Time
	duration time.Duration
}

// Current reports whether the animation has neither been superseded nor
// finished.
func (a *Animation) Current() bool {
	return a.ctx.Err() == nil
}

func (a *Animation) Done() <-chan struct{} {
	return a.ctx.Done()
}

func (a *Animation) Target() int {
	return a.to
}

// Resizing reports whether a resize animation is in flight.
func (e *Engine) Resizing() bool {
	return e.resize != nil
}

// animateTo starts growing the playfield from its current, possibly partial,
// size towards target. Targets that are not larger apply immediately and
// return nil.
func (e *Engine) animateTo(target int, now time.Time) *Animation {
	e.cancelResize()

	clamped := min(target, e.cfg.MaxSize)
	if clamped <= e.canvasSize {
		e.targetSize = clamped
		e.canvasSize = clamped
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &Animation{
		ctx:      ctx,
		cancel:   cancel,
		from:     e.canvasSize,
		to:       clamped,
		start:    now,
		duration: e.cfg.ResizeDuration,
	}
	e.targetSize = clamped
	e.resize = a
	return a
}

// StepResize advances the in-flight resize to now and reports whether it is
// still running.
func (e *Engine) StepResize(now time.Time) bool {
	if e.resize == nil {
		return false
	}
	return e.step(e.resize, now)
}

func (e *Engine) step(a *Animation, now time.Time) bool {
	if !a.Current() {
		return false
	}

	t := 1.0
	if a.duration > 0 {
		t = math.Min(1, float64(now.Sub(a.start))/float64(a.duration))
	}
	if t < 0 {
		t = 0
	}

	if t >= 1 {
		e.canvasSize = a.to
		e.resize = nil
		a.cancel()
		return false
	}

	delta := float64(a.to - a.from)
	e.canvasSize = a.from + int(math.Round(delta*easeInOut(t)))
	return true
}

func (e *Engine) cancelResize() {
	if e.resize == nil {
		return
	}
	e.resize.cancel()
	e.resize = nil
}

func easeInOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}
