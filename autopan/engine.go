// Package autopan scrolls the viewport automatically while a drag hovers
// near a viewport edge. The engine itself is a pure per-frame step so the
// session manager can serialize it with drag updates on one tick; Runner
// supplies the frame clock for hosts without their own.
package autopan

import (
	"time"

	"proofcanvas/geometry"
)

// Tuning constants.
const (
	// Threshold is the distance from a viewport edge, in screen pixels,
	// inside which auto-pan engages.
	Threshold = 60.0

	// MaxStep is the pan applied per frame when the pointer sits directly
	// on an edge; the step scales linearly down to zero at Threshold.
	MaxStep = 12.0

	// FrameInterval approximates animation-frame cadence.
	FrameInterval = 16 * time.Millisecond
)

// Engine computes per-frame pan deltas from the last known pointer
// position.
type Engine struct {
	active  bool
	pointer geometry.Point
}

// Start arms the engine for a drag gesture.
func (e *Engine) Start() {
	e.active = true
}

// Stop disarms the engine; subsequent steps return zero.
func (e *Engine) Stop() {
	e.active = false
}

// Active reports whether a drag is currently feeding the engine.
func (e *Engine) Active() bool {
	return e.active
}

// Observe records the latest pointer position in screen space.
func (e *Engine) Observe(screen geometry.Point) {
	e.pointer = screen
}

// Step returns the viewport pan delta for one frame given the viewport's
// screen dimensions. The delta is proportional to edge proximity:
// (Threshold − distance)/Threshold × MaxStep per axis. A zero delta means
// the pointer is not near any edge.
//
// A positive X delta means the canvas content moves left, i.e. the
// viewport scrolls right — the sign convention of Viewport.PanBy with the
// compensation applied by the caller.
func (e *Engine) Step(width, height float64) geometry.Point {
	if !e.active {
		return geometry.Point{}
	}
	var delta geometry.Point

	if d := e.pointer.X; d < Threshold {
		delta.X = (Threshold - geometry.Max(d, 0)) / Threshold * MaxStep
	} else if d := width - e.pointer.X; d < Threshold {
		delta.X = -(Threshold - geometry.Max(d, 0)) / Threshold * MaxStep
	}
	if d := e.pointer.Y; d < Threshold {
		delta.Y = (Threshold - geometry.Max(d, 0)) / Threshold * MaxStep
	} else if d := height - e.pointer.Y; d < Threshold {
		delta.Y = -(Threshold - geometry.Max(d, 0)) / Threshold * MaxStep
	}
	return delta
}

// Runner drives an Engine on a frame ticker for hosts that do not have an
// animation-frame callback of their own. Ticks are skipped while the engine
// is disarmed, so a runner survives Engine.Stop and resumes when the next
// gesture re-arms it; only Stop terminates the loop.
type Runner struct {
	engine *Engine
	tick   func()
	stop   chan struct{}
}

// NewRunner creates a runner that invokes tick on every frame while the
// engine is active.
func NewRunner(engine *Engine, tick func()) *Runner {
	return &Runner{engine: engine, tick: tick}
}

// Start launches the frame loop. Calling Start on a running runner is a
// no-op.
func (r *Runner) Start() {
	if r.stop != nil {
		return
	}
	r.stop = make(chan struct{})
	go func(stop chan struct{}) {
		ticker := time.NewTicker(FrameInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if r.engine.Active() {
					r.tick()
				}
			case <-stop:
				return
			}
		}
	}(r.stop)
}

// Stop terminates the frame loop immediately. Safe to call repeatedly and
// on a runner that never started.
func (r *Runner) Stop() {
	if r.stop != nil {
		close(r.stop)
		r.stop = nil
	}
}
