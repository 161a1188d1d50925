package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"proofcanvas/geometry"
	"proofcanvas/graph"
	"proofcanvas/route"
	"proofcanvas/session"
)

var (
	styleDefault  = tcell.StyleDefault
	styleSelected = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleVerified = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleRejected = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleEdge     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleMarquee  = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleBlock    = tcell.StyleDefault.Foreground(tcell.ColorPurple)
	styleCursor   = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	styleStatus   = tcell.StyleDefault.Reverse(true)
)

func (ui *UI) draw() {
	ui.screen.Clear()
	ui.surface.dirty = false

	ui.drawBlocks()
	ui.drawEdges()
	ui.drawNodes()
	if ui.surface.marqueeVisible {
		ui.drawCanvasRect(ui.surface.marquee, styleMarquee)
	}
	if ui.surface.previewVisible {
		ui.drawBezier(ui.surface.preview, styleMarquee)
	}
	ui.drawCursors()
	ui.drawStatus()
	if ui.menuActive {
		ui.drawMenu()
	}
	if ui.promptActive {
		ui.drawPrompt()
	}
	ui.screen.Show()
}

// visualNode returns the node with any uncommitted drag position applied.
func (ui *UI) visualNode(n graph.Node) graph.Node {
	if pos, ok := ui.surface.nodePos[n.ID]; ok {
		n.X, n.Y = pos.X, pos.Y
	}
	return n
}

func (ui *UI) drawNodes() {
	for _, n := range ui.ed.Graph.Nodes {
		n = ui.visualNode(n)
		style := styleDefault
		switch {
		case ui.ed.Sess.IsSelected(n.ID):
			style = styleSelected
		case n.Status == graph.StatusVerified:
			style = styleVerified
		case n.Status == graph.StatusRejected:
			style = styleRejected
		}
		ui.drawNodeBox(n, style)
	}
}

func (ui *UI) drawNodeBox(n graph.Node, style tcell.Style) {
	b := n.Bounds()
	min := ui.ed.View.ToScreen(b.Min)
	max := ui.ed.View.ToScreen(b.Max)
	x0, y0 := int(min.X), int(min.Y)
	x1, y1 := int(max.X), int(max.Y)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}

	for x := x0; x <= x1; x++ {
		ui.setContent(x, y0, '─', style)
		ui.setContent(x, y1, '─', style)
	}
	for y := y0; y <= y1; y++ {
		ui.setContent(x0, y, '│', style)
		ui.setContent(x1, y, '│', style)
	}
	ui.setContent(x0, y0, '┌', style)
	ui.setContent(x1, y0, '┐', style)
	ui.setContent(x0, y1, '└', style)
	ui.setContent(x1, y1, '┘', style)

	// Connection handle on the right side.
	ui.setContent(x1, (y0+y1)/2, '◉', style)

	title := n.Title
	if title == "" {
		title = string(n.Type)
	}
	ui.drawText(x0+1, y0+1, x1-1, title, style)
	if y0+2 < y1 {
		ui.drawText(x0+1, y0+2, x1-1, string(n.Type), styleEdge)
	}
}

func (ui *UI) drawEdges() {
	drawable := graph.DrawableEdges(ui.ed.Graph)
	for _, e := range drawable {
		path, ok := ui.surface.edgePaths[e.ID]
		if !ok {
			from := ui.visualNode(*ui.ed.Graph.NodeByID(e.From))
			to := ui.visualNode(*ui.ed.Graph.NodeByID(e.To))
			path = route.Route(from, to)
		}
		style := styleEdge
		if e.ID == ui.ed.SelectedEdge {
			style = styleSelected
		}
		ui.drawBezier(path, style)
		if e.Label != "" {
			p := ui.ed.View.ToScreen(path.LabelPoint())
			ui.drawText(int(p.X), int(p.Y), int(p.X)+len(e.Label), e.Label, style)
		}
	}
}

// drawBezier samples the curve and plots one cell per sample.
func (ui *UI) drawBezier(p route.Path, style tcell.Style) {
	const samples = 48
	for i := 0; i <= samples; i++ {
		t := float64(i) / samples
		pt := ui.ed.View.ToScreen(p.PointAt(t))
		ch := '·'
		if i == samples {
			ch = '▶'
		}
		ui.setContent(int(pt.X), int(pt.Y), ch, style)
	}
}

func (ui *UI) drawBlocks() {
	for _, b := range ui.ed.Graph.Blocks {
		bounds, ok := ui.surface.blockBounds[b.ID]
		if !ok {
			bounds, ok = ui.ed.Sess.Blocks().Bounds(b)
			if !ok {
				continue
			}
		}
		ui.drawCanvasRect(bounds, styleBlock)
		min := ui.ed.View.ToScreen(bounds.Min)
		ui.drawText(int(min.X)+1, int(min.Y), int(min.X)+1+len(b.Name), b.Name, styleBlock)
	}
}

func (ui *UI) drawCanvasRect(r geometry.Rect, style tcell.Style) {
	min := ui.ed.View.ToScreen(r.Min)
	max := ui.ed.View.ToScreen(r.Max)
	x0, y0 := int(min.X), int(min.Y)
	x1, y1 := int(max.X), int(max.Y)
	for x := x0; x <= x1; x++ {
		ui.setContent(x, y0, '╌', style)
		ui.setContent(x, y1, '╌', style)
	}
	for y := y0; y <= y1; y++ {
		ui.setContent(x0, y, '╎', style)
		ui.setContent(x1, y, '╎', style)
	}
}

func (ui *UI) drawCursors() {
	for _, c := range ui.cursors {
		p := ui.ed.View.ToScreen(geometry.Point{X: c.X, Y: c.Y})
		ui.setContent(int(p.X), int(p.Y), '✦', styleCursor)
		ui.drawText(int(p.X)+1, int(p.Y), int(p.X)+1+len(c.Name), c.Name, styleCursor)
	}
}

func (ui *UI) drawStatus() {
	w, h := ui.screen.Size()
	tool := "select"
	if ui.ed.Sess.Tool() == session.ToolHand {
		tool = "hand"
	}
	line := fmt.Sprintf(" %s | zoom %.2f | %d nodes, %d edges | %s ",
		tool, ui.ed.View.LiveZoom(), len(ui.ed.Graph.Nodes), len(ui.ed.Graph.Edges), ui.ed.Sess.State())
	for x := 0; x < w; x++ {
		ch := ' '
		if x < len(line) {
			ch = rune(line[x])
		}
		ui.setContent(x, h-1, ch, styleStatus)
	}
}

func (ui *UI) drawMenu() {
	x, y := int(ui.menuAt.X), int(ui.menuAt.Y)
	for i, item := range ui.menuItems {
		style := styleDefault
		if i == ui.menuIndex {
			style = styleStatus
		}
		ui.drawText(x, y+i, x+24, " "+item.label+" ", style)
	}
}

func (ui *UI) drawPrompt() {
	w, h := ui.screen.Size()
	line := ui.promptLabel + string(ui.promptBuffer) + "▏"
	for x := 0; x < w; x++ {
		ch := ' '
		if x < len([]rune(line)) {
			ch = []rune(line)[x]
		}
		ui.setContent(x, h-2, ch, styleStatus)
	}
}

func (ui *UI) drawText(x, y, maxX int, text string, style tcell.Style) {
	for _, r := range text {
		if x > maxX {
			return
		}
		ui.setContent(x, y, r, style)
		x++
	}
}

func (ui *UI) setContent(x, y int, ch rune, style tcell.Style) {
	w, h := ui.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	ui.screen.SetContent(x, y, ch, nil, style)
}
