// Package route computes the drawable geometry of edges: which side of a
// node an edge leaves and enters, the cubic Bézier path between the two
// anchors, and where an edge label sits on that path.
package route

import (
	"math"

	"proofcanvas/geometry"
	"proofcanvas/graph"
)

// Routing constants.
const (
	// ArrowLength shrinks the path end point along the line direction so
	// the arrowhead renders at the node border instead of overlapping it.
	ArrowLength = 12.0

	// Tension controls how far the control points reach along the dominant
	// axis.
	Tension = 0.5
)

// Side identifies which side of a node's rectangle an anchor sits on.
type Side int

const (
	SideRight Side = iota
	SideBottom
	SideTop
	SideLeft
)

// String returns the side name for debugging.
func (s Side) String() string {
	switch s {
	case SideRight:
		return "right"
	case SideBottom:
		return "bottom"
	case SideTop:
		return "top"
	case SideLeft:
		return "left"
	default:
		return "unknown"
	}
}

// Path is a routed edge: a cubic Bézier from Start to End with the sides
// it leaves and enters.
type Path struct {
	Start, C1, C2, End geometry.Point
	FromSide, ToSide   Side
}

// PointAt evaluates the path at parameter t.
func (p Path) PointAt(t float64) geometry.Point {
	return geometry.CubicBezier(p.Start, p.C1, p.C2, p.End, t)
}

// LabelPoint returns the position for an edge label, the parametric
// midpoint of the curve.
func (p Path) LabelPoint() geometry.Point {
	return p.PointAt(0.5)
}

// Route computes the Bézier path for a directed edge between two nodes.
//
// The exit and entry anchors are chosen by the quadrant of the angle
// between the node centers, so the edge always leaves and enters the side
// of each rectangle facing the other node. The end point is pulled back by
// ArrowLength along the line direction to leave room for the arrowhead.
func Route(from, to graph.Node) Path {
	fc, tc := from.Center(), to.Center()
	angle := math.Atan2(tc.Y-fc.Y, tc.X-fc.X)

	fromSide := exitSide(angle)
	toSide := opposite(fromSide)

	start := anchor(from, fromSide)
	end := anchor(to, toSide)

	// Shrink toward the start so the arrowhead sits cleanly at the border.
	dist := start.Distance(end)
	if dist > ArrowLength {
		dir := end.Sub(start).Scale(1 / dist)
		end = end.Sub(dir.Scale(ArrowLength))
	}

	c1, c2 := controlPoints(start, end)
	return Path{Start: start, C1: c1, C2: c2, End: end, FromSide: fromSide, ToSide: toSide}
}

// exitSide maps the center-to-center angle onto the rectangle side facing
// the target: right for the front quadrant, bottom/top for the downward and
// upward quadrants, left for the back quadrant.
func exitSide(angle float64) Side {
	switch {
	case angle >= -math.Pi/4 && angle < math.Pi/4:
		return SideRight
	case angle >= math.Pi/4 && angle < 3*math.Pi/4:
		return SideBottom
	case angle >= -3*math.Pi/4 && angle < -math.Pi/4:
		return SideTop
	default:
		return SideLeft
	}
}

func opposite(s Side) Side {
	switch s {
	case SideRight:
		return SideLeft
	case SideLeft:
		return SideRight
	case SideTop:
		return SideBottom
	default:
		return SideTop
	}
}

// anchor returns the midpoint of the given side of the node's rectangle.
func anchor(n graph.Node, s Side) geometry.Point {
	b := n.Bounds()
	c := b.Center()
	switch s {
	case SideRight:
		return geometry.Point{X: b.Max.X, Y: c.Y}
	case SideLeft:
		return geometry.Point{X: b.Min.X, Y: c.Y}
	case SideTop:
		return geometry.Point{X: c.X, Y: b.Min.Y}
	default:
		return geometry.Point{X: c.X, Y: b.Max.Y}
	}
}

// controlPoints places the two Bézier control points by tension along the
// dominant axis, producing a smooth S-curve rather than a straight
// diagonal.
func controlPoints(start, end geometry.Point) (c1, c2 geometry.Point) {
	dx := end.X - start.X
	dy := end.Y - start.Y
	if geometry.Abs(dy) > geometry.Abs(dx) {
		// Vertical-dominant: control points reach up/down.
		c1 = geometry.Point{X: start.X, Y: start.Y + dy*Tension}
		c2 = geometry.Point{X: end.X, Y: end.Y - dy*Tension}
	} else {
		c1 = geometry.Point{X: start.X + dx*Tension, Y: start.Y}
		c2 = geometry.Point{X: end.X - dx*Tension, Y: end.Y}
	}
	return c1, c2
}

// PreviewTarget is a synthetic zero-size node used to route a live
// connection preview from a source node to the pointer position.
func PreviewTarget(p geometry.Point) graph.Node {
	return graph.Node{ID: "", X: p.X, Y: p.Y, Width: 1, Height: 1}
}
