// Package terminal is the interactive tcell front-end: it feeds pointer
// and keyboard events into the engine and draws the graph through the
// viewport transform.
package terminal

import (
	"proofcanvas/geometry"
	"proofcanvas/route"
)

// surface receives the engine's imperative visual updates. A terminal
// repaints whole frames, so the surface records the uncommitted visual
// state (drag positions, rerouted edges, marquee, preview) and the next
// draw folds it in; the point of the channel is that the engine never
// waits on a full model-driven rebuild.
type surface struct {
	nodePos     map[string]geometry.Point
	edgePaths   map[string]route.Path
	blockBounds map[string]geometry.Rect

	marquee        geometry.Rect
	marqueeVisible bool

	preview        route.Path
	previewVisible bool

	pan  geometry.Point
	zoom float64

	dirty bool
}

func newSurface() *surface {
	return &surface{
		nodePos:     make(map[string]geometry.Point),
		edgePaths:   make(map[string]route.Path),
		blockBounds: make(map[string]geometry.Rect),
		zoom:        1.0,
	}
}

func (s *surface) MoveNode(id string, pos geometry.Point) {
	s.nodePos[id] = pos
	s.dirty = true
}

func (s *surface) SetEdgePath(id string, p route.Path) {
	s.edgePaths[id] = p
	s.dirty = true
}

func (s *surface) SetBlockBounds(id string, r geometry.Rect) {
	s.blockBounds[id] = r
	s.dirty = true
}

func (s *surface) SetMarquee(r geometry.Rect, visible bool) {
	s.marquee = r
	s.marqueeVisible = visible
	s.dirty = true
}

func (s *surface) SetPreviewEdge(p route.Path, visible bool) {
	s.preview = p
	s.previewVisible = visible
	s.dirty = true
}

func (s *surface) SetTransform(pan geometry.Point, zoom float64) {
	s.pan = pan
	s.zoom = zoom
	s.dirty = true
}

// reset drops all uncommitted visual state, after a gesture ends and the
// model is authoritative again.
func (s *surface) reset() {
	s.nodePos = make(map[string]geometry.Point)
	s.edgePaths = make(map[string]route.Path)
	s.blockBounds = make(map[string]geometry.Rect)
	s.marqueeVisible = false
	s.previewVisible = false
	s.dirty = true
}
