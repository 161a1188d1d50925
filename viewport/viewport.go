// Package viewport maintains the pan/zoom transform of a canvas and
// converts between screen space (pointer coordinates) and canvas space
// (node coordinates).
package viewport

import (
	"errors"
	"time"

	"github.com/bep/debounce"

	"proofcanvas/geometry"
)

// Zoom limits and wheel step factors.
const (
	ZoomMin = 0.25
	ZoomMax = 3.0

	WheelZoomOut = 0.92
	WheelZoomIn  = 1.08

	// FitMaxZoom caps the scale chosen by FitBounds so small graphs are not
	// blown up past readable size.
	FitMaxZoom = 1.5

	// FitMargin is the screen-space margin kept around the content by
	// FitBounds.
	FitMargin = 64.0
)

// ErrInvalidZoom is returned when a zoom value outside [ZoomMin, ZoomMax]
// is requested directly.
var ErrInvalidZoom = errors.New("zoom out of range")

// TransformSurface is the imperative channel a rendering host exposes for
// transform updates during active gestures, bypassing its normal render
// cycle.
type TransformSurface interface {
	SetTransform(pan geometry.Point, zoom float64)
}

// Viewport holds the pan/zoom state of one canvas instance.
//
// During active gestures every update is written straight to the surface,
// while the authoritative Pan/Zoom values trail behind on a debounce so a
// reactive host is not re-rendered on every pixel of movement. Both views
// converge on Sync, which the debouncer triggers automatically.
type Viewport struct {
	// Authoritative state, converging via the debounced sync.
	Pan  geometry.Point
	Zoom float64

	// Screen dimensions of the visible area.
	Width, Height float64

	livePan  geometry.Point
	liveZoom float64

	surface  TransformSurface
	debounce func(func())
}

// New creates a viewport for a visible area of the given screen size.
func New(width, height float64) *Viewport {
	return &Viewport{
		Zoom:     1.0,
		liveZoom: 1.0,
		Width:    width,
		Height:   height,
		debounce: debounce.New(120 * time.Millisecond),
	}
}

// AttachSurface connects the imperative transform channel. Passing nil
// detaches it.
func (v *Viewport) AttachSurface(s TransformSurface) {
	v.surface = s
}

// Resize updates the visible screen dimensions.
func (v *Viewport) Resize(width, height float64) {
	v.Width, v.Height = width, height
}

// ToCanvas converts a screen-space point to canvas space using the live
// transform: canvas = (screen − pan) / zoom.
func (v *Viewport) ToCanvas(screen geometry.Point) geometry.Point {
	return geometry.Point{
		X: (screen.X - v.livePan.X) / v.liveZoom,
		Y: (screen.Y - v.livePan.Y) / v.liveZoom,
	}
}

// ToScreen converts a canvas-space point to screen space:
// screen = canvas·zoom + pan.
func (v *Viewport) ToScreen(canvas geometry.Point) geometry.Point {
	return geometry.Point{
		X: canvas.X*v.liveZoom + v.livePan.X,
		Y: canvas.Y*v.liveZoom + v.livePan.Y,
	}
}

// LivePan returns the transform pan as currently shown on the surface.
func (v *Viewport) LivePan() geometry.Point { return v.livePan }

// LiveZoom returns the transform zoom as currently shown on the surface.
func (v *Viewport) LiveZoom() float64 { return v.liveZoom }

// PanBy shifts the pan by the given screen-space delta. Pan is
// unconstrained.
func (v *Viewport) PanBy(delta geometry.Point) {
	v.livePan = v.livePan.Add(delta)
	v.apply()
}

// ZoomBy multiplies the zoom by the given factor around the current pan
// origin, clamped to [ZoomMin, ZoomMax].
func (v *Viewport) ZoomBy(factor float64) {
	v.liveZoom = geometry.Clamp(v.liveZoom*factor, ZoomMin, ZoomMax)
	v.apply()
}

// ZoomAt multiplies the zoom by factor while keeping the canvas point under
// the given screen position stationary.
func (v *Viewport) ZoomAt(screen geometry.Point, factor float64) {
	anchor := v.ToCanvas(screen)
	v.liveZoom = geometry.Clamp(v.liveZoom*factor, ZoomMin, ZoomMax)
	// Re-solve pan so anchor maps back to the same screen point.
	v.livePan = screen.Sub(anchor.Scale(v.liveZoom))
	v.apply()
}

// SetZoom sets an absolute zoom value.
func (v *Viewport) SetZoom(zoom float64) error {
	if zoom < ZoomMin || zoom > ZoomMax {
		return ErrInvalidZoom
	}
	v.liveZoom = zoom
	v.apply()
	return nil
}

// Wheel interprets a wheel event: with the zoom modifier held the vertical
// delta zooms in or out by a fixed factor, otherwise the viewport pans by
// the wheel delta.
func (v *Viewport) Wheel(delta geometry.Point, zoomModifier bool) {
	if zoomModifier {
		if delta.Y > 0 {
			v.ZoomBy(WheelZoomOut)
		} else if delta.Y < 0 {
			v.ZoomBy(WheelZoomIn)
		}
		return
	}
	v.PanBy(geometry.Point{X: -delta.X, Y: -delta.Y})
}

// FitBounds recenters and rescales the viewport so the given canvas-space
// bounds fit the visible area with a margin. The derived zoom is capped at
// FitMaxZoom and clamped to the zoom range.
func (v *Viewport) FitBounds(bounds geometry.Rect) {
	w, h := bounds.Width(), bounds.Height()
	if w <= 0 || h <= 0 {
		return
	}
	scaleX := (v.Width - 2*FitMargin) / w
	scaleY := (v.Height - 2*FitMargin) / h
	zoom := geometry.Min(scaleX, scaleY)
	zoom = geometry.Min(zoom, FitMaxZoom)
	zoom = geometry.Clamp(zoom, ZoomMin, ZoomMax)

	center := bounds.Center()
	v.liveZoom = zoom
	v.livePan = geometry.Point{
		X: v.Width/2 - center.X*zoom,
		Y: v.Height/2 - center.Y*zoom,
	}
	v.apply()
}

// Sync flushes the live transform into the authoritative Pan/Zoom values
// immediately. Gesture handlers call this on completion; intermediate
// updates converge through the debouncer.
func (v *Viewport) Sync() {
	v.Pan = v.livePan
	v.Zoom = v.liveZoom
}

func (v *Viewport) apply() {
	if v.surface != nil {
		v.surface.SetTransform(v.livePan, v.liveZoom)
	}
	v.debounce(v.Sync)
}
