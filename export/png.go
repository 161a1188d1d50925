package export

import (
	"fmt"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gomono"

	"proofcanvas/geometry"
	"proofcanvas/graph"
	"proofcanvas/route"
)

// PNG rendering constants.
const (
	pngMargin    = 60.0
	pngFontSize  = 14.0
	cornerRadius = 8.0
	arrowWing    = 6.0
)

// RenderPNG rasterizes the graph: rounded node cards, Bézier edges with
// arrowheads, edge labels at the curve midpoint, and block outlines.
func RenderPNG(g *graph.Graph, path string) error {
	bounds, ok := g.Extents()
	if !ok {
		return fmt.Errorf("graph has no nodes")
	}
	bounds = bounds.Expand(pngMargin)

	dc := gg.NewContext(int(bounds.Width()), int(bounds.Height()))
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	font, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: pngFontSize}))

	// Canvas space to image space.
	tx := func(p geometry.Point) (float64, float64) {
		return p.X - bounds.Min.X, p.Y - bounds.Min.Y
	}

	drawBlocks(dc, g, tx)
	drawEdges(dc, g, tx)
	drawNodes(dc, g, tx)

	return dc.SavePNG(path)
}

func drawBlocks(dc *gg.Context, g *graph.Graph, tx func(geometry.Point) (float64, float64)) {
	for _, b := range g.Blocks {
		hull, found := blockHull(g, b)
		if !found {
			continue
		}
		x, y := tx(hull.Min)
		dc.SetRGBA(0.4, 0.4, 0.6, 0.35)
		dc.SetLineWidth(1.5)
		dc.DrawRoundedRectangle(x, y, hull.Width(), hull.Height(), cornerRadius)
		dc.Stroke()
		dc.SetRGBA(0.3, 0.3, 0.5, 0.8)
		dc.DrawString(b.Name, x+6, y-4)
	}
}

func blockHull(g *graph.Graph, b graph.Block) (geometry.Rect, bool) {
	var hull geometry.Rect
	found := false
	for _, id := range b.NodeIDs {
		n := g.NodeByID(id)
		if n == nil {
			continue
		}
		if !found {
			hull = n.Bounds()
			found = true
		} else {
			hull = hull.Union(n.Bounds())
		}
	}
	return hull.Expand(24), found
}

func drawEdges(dc *gg.Context, g *graph.Graph, tx func(geometry.Point) (float64, float64)) {
	for _, edge := range graph.DrawableEdges(g) {
		from := g.NodeByID(edge.From)
		to := g.NodeByID(edge.To)
		p := route.Route(*from, *to)

		sx, sy := tx(p.Start)
		c1x, c1y := tx(p.C1)
		c2x, c2y := tx(p.C2)
		ex, ey := tx(p.End)

		setEdgeColor(dc, edge.Type)
		dc.SetLineWidth(1.5)
		dc.MoveTo(sx, sy)
		dc.CubicTo(c1x, c1y, c2x, c2y, ex, ey)
		dc.Stroke()

		drawArrowhead(dc, c2x, c2y, ex, ey)

		if edge.Label != "" {
			lx, ly := tx(p.LabelPoint())
			dc.SetRGB(0.2, 0.2, 0.2)
			dc.DrawStringAnchored(edge.Label, lx, ly-4, 0.5, 0)
		}
	}
}

func setEdgeColor(dc *gg.Context, t graph.EdgeType) {
	switch t {
	case graph.EdgeContradicts:
		dc.SetRGB(0.8, 0.2, 0.2)
	case graph.EdgeReferences:
		dc.SetRGB(0.5, 0.5, 0.5)
	default:
		dc.SetRGB(0.25, 0.25, 0.35)
	}
}

// drawArrowhead places a triangle at the path end, oriented along the
// curve's final tangent (from the second control point to the end).
func drawArrowhead(dc *gg.Context, c2x, c2y, ex, ey float64) {
	angle := math.Atan2(ey-c2y, ex-c2x)
	tipX := ex + route.ArrowLength*math.Cos(angle)
	tipY := ey + route.ArrowLength*math.Sin(angle)
	left := angle + math.Pi - 0.5
	right := angle + math.Pi + 0.5
	dc.MoveTo(tipX, tipY)
	dc.LineTo(tipX+2*arrowWing*math.Cos(left), tipY+2*arrowWing*math.Sin(left))
	dc.LineTo(tipX+2*arrowWing*math.Cos(right), tipY+2*arrowWing*math.Sin(right))
	dc.ClosePath()
	dc.Fill()
}

func drawNodes(dc *gg.Context, g *graph.Graph, tx func(geometry.Point) (float64, float64)) {
	for _, n := range g.Nodes {
		b := n.Bounds()
		x, y := tx(b.Min)
		w, h := n.Size()

		dc.SetRGB(0.97, 0.97, 0.99)
		dc.DrawRoundedRectangle(x, y, w, h, cornerRadius)
		dc.FillPreserve()
		setStatusColor(dc, n.Status)
		dc.SetLineWidth(2)
		dc.Stroke()

		title := n.Title
		if title == "" {
			title = string(n.Type)
		}
		dc.SetRGB(0.1, 0.1, 0.1)
		dc.DrawStringAnchored(title, x+w/2, y+h/2, 0.5, 0.3)
		dc.SetRGB(0.45, 0.45, 0.45)
		dc.DrawStringAnchored(string(n.Type), x+w/2, y+14, 0.5, 0.3)
	}
}

func setStatusColor(dc *gg.Context, s graph.NodeStatus) {
	switch s {
	case graph.StatusVerified:
		dc.SetRGB(0.2, 0.6, 0.3)
	case graph.StatusRejected:
		dc.SetRGB(0.8, 0.25, 0.25)
	case graph.StatusProposed:
		dc.SetRGB(0.25, 0.45, 0.8)
	default:
		dc.SetRGB(0.55, 0.55, 0.6)
	}
}
