package editor

import (
	"context"

	"proofcanvas/geometry"
	"proofcanvas/graph"
	"proofcanvas/session"
)

// Key is one keyboard event, normalized by the host.
type Key struct {
	Rune  rune
	Name  string // named keys: "delete", "backspace", "escape", "enter"
	Ctrl  bool
	Shift bool
	Meta  bool
}

func (k Key) chord() bool { return k.Ctrl || k.Meta }

// HandleKey dispatches the keyboard surface. Returns true when the key was
// consumed.
func (e *Editor) HandleKey(ctx context.Context, k Key) (bool, error) {
	if k.chord() {
		switch k.Rune {
		case 'z', 'Z':
			if k.Shift {
				return true, e.Redo(ctx)
			}
			return true, e.Undo(ctx)
		case 'y', 'Y':
			return true, e.Redo(ctx)
		case 'g', 'G':
			e.ProposeGroup()
			return true, nil
		case 'a', 'A':
			e.Sess.SelectAll()
			return true, nil
		case 'c', 'C':
			return true, e.Copy()
		case 'v', 'V':
			return true, e.Paste(ctx)
		}
		return false, nil
	}

	switch k.Name {
	case "escape":
		if e.GroupPending() {
			e.CancelGroup()
		} else {
			e.Sess.Cancel()
		}
		return true, nil
	case "delete", "backspace":
		return true, e.DeleteSelection(ctx)
	}

	switch k.Rune {
	case 'v', 'V':
		e.Sess.SetTool(session.ToolSelect)
	case 'h', 'H':
		e.Sess.SetTool(session.ToolHand)
	case 'f', 'F':
		e.FitToView()
	case 'n', 'N':
		// Inline node creator: a fresh claim in editing state; the host
		// picks the id up via TakePendingEdit and prompts for the title.
		id, err := e.CreateNode(ctx, e.nodeAtViewCenter(graph.NodeConjecture))
		if err != nil {
			return true, err
		}
		e.Sess.SetSelection([]string{id})
		e.pendingEdit = id
	default:
		return false, nil
	}
	return true, nil
}

func (e *Editor) nodeAtViewCenter(t graph.NodeType) graph.Node {
	center := e.View.ToCanvas(geometry.Point{X: e.View.Width / 2, Y: e.View.Height / 2})
	return graph.Node{
		Type:   t,
		Status: graph.StatusEditing,
		X:      center.X - graph.DefaultNodeWidth/2,
		Y:      center.Y - graph.DefaultNodeHeight/2,
	}
}
