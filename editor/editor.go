// Package editor is the command layer above the session manager: the
// keyboard surface, selection commands, undo/redo history, clipboard, and
// the group-creation and sub-graph-materialization flows.
package editor

import (
	"context"
	"fmt"
	"log/slog"

	"proofcanvas/block"
	"proofcanvas/geometry"
	"proofcanvas/graph"
	"proofcanvas/layout"
	"proofcanvas/session"
	"proofcanvas/viewport"
)

// Editor ties the interaction engine together for a host UI.
type Editor struct {
	Graph *graph.Graph
	View  *viewport.Viewport
	Sess  *session.Manager

	store   graph.Store
	history *History
	layouts graph.LayoutEngine
	log     *slog.Logger

	// SelectedEdge is the edge targeted by edge-level commands; it takes
	// priority over node selection when deleting.
	SelectedEdge string

	// lastPointer anchors clipboard pastes near the most recent pointer
	// position, in canvas space.
	lastPointer geometry.Point

	pendingGroup *block.GroupProposal

	// pendingEdit is a freshly created node awaiting its inline title; the
	// host collects the text and commits through CommitNodeTitle.
	pendingEdit string
}

// New creates an editor over the given model and collaborator store.
func New(g *graph.Graph, view *viewport.Viewport, store graph.Store, surface session.Surface, log *slog.Logger) *Editor {
	if log == nil {
		log = slog.Default()
	}
	e := &Editor{
		Graph:   g,
		View:    view,
		Sess:    session.NewManager(g, view, store, surface, log),
		store:   store,
		history: NewHistory(50),
		layouts: layout.NewLayered(),
		log:     log,
	}
	e.history.Save(g)
	return e
}

// History exposes the undo/redo manager.
func (e *Editor) History() *History { return e.history }

// Checkpoint records the current graph state for undo. Call after every
// committed structural change or completed drag.
func (e *Editor) Checkpoint() {
	if err := e.history.Save(e.Graph); err != nil {
		e.log.Warn("history snapshot failed", slog.String("error", err.Error()))
	}
}

// TrackPointer records the latest pointer position in canvas space, used
// to anchor pasted content.
func (e *Editor) TrackPointer(canvas geometry.Point) {
	e.lastPointer = canvas
}

// PointerDown forwards to the session manager.
func (e *Editor) PointerDown(ev session.Pointer) session.Hit {
	return e.Sess.PointerDown(ev)
}

// PointerMove forwards to the session manager and tracks the paste anchor.
func (e *Editor) PointerMove(ev session.Pointer) {
	e.TrackPointer(e.View.ToCanvas(ev.Screen))
	e.Sess.PointerMove(ev)
}

// PointerUp completes the gesture and snapshots history when a drag
// committed a net change.
func (e *Editor) PointerUp(ctx context.Context, ev session.Pointer) {
	dragged := e.Sess.State().Dragging() && e.Sess.Session().Moved
	e.Sess.PointerUp(ctx, ev)
	if dragged {
		e.Checkpoint()
	}
}

// FitToView recenters and rescales the viewport around all nodes.
func (e *Editor) FitToView() {
	if bounds, ok := e.Graph.Extents(); ok {
		e.View.FitBounds(bounds)
	}
}

// CreateNode asks the store for a new node and mirrors it into the model.
// The store supplies the canonical id.
func (e *Editor) CreateNode(ctx context.Context, n graph.Node) (string, error) {
	if n.Status == "" {
		n.Status = graph.StatusDraft
	}
	id, err := e.store.CreateNode(ctx, n)
	if err != nil {
		return "", fmt.Errorf("create node: %w", err)
	}
	n.ID = id
	e.Graph.Nodes = append(e.Graph.Nodes, n)
	e.Checkpoint()
	return id, nil
}

// CreateNodeAtCenter opens the inline node creator: a draft node placed at
// the center of the current viewport.
func (e *Editor) CreateNodeAtCenter(ctx context.Context, t graph.NodeType, title string) (string, error) {
	center := e.View.ToCanvas(geometry.Point{X: e.View.Width / 2, Y: e.View.Height / 2})
	return e.CreateNode(ctx, graph.Node{
		Type:  t,
		Title: title,
		X:     center.X - graph.DefaultNodeWidth/2,
		Y:     center.Y - graph.DefaultNodeHeight/2,
	})
}

// DeleteSelection removes the current target with edge > multi-node >
// single-node priority. Deleting an edge leaves its endpoints untouched.
func (e *Editor) DeleteSelection(ctx context.Context) error {
	if e.SelectedEdge != "" {
		return e.DeleteEdge(ctx, e.SelectedEdge)
	}
	sel := e.Sess.Selection()
	if len(sel) == 0 {
		return nil
	}
	for _, id := range sel {
		if err := e.store.DeleteNode(ctx, id); err != nil {
			return fmt.Errorf("delete node %s: %w", id, err)
		}
		e.removeNodeLocal(id)
	}
	e.Sess.ClearSelection()
	e.Checkpoint()
	return nil
}

// TakePendingEdit returns the id of the node awaiting an inline title and
// clears it, or "" when none is pending.
func (e *Editor) TakePendingEdit() string {
	id := e.pendingEdit
	e.pendingEdit = ""
	return id
}

// CommitNodeTitle finishes inline node creation: the node takes its title
// and leaves the editing state. An empty title keeps the placeholder text.
func (e *Editor) CommitNodeTitle(ctx context.Context, id, title string) error {
	status := graph.StatusDraft
	update := graph.NodeUpdate{Status: &status}
	if title != "" {
		update.Title = &title
	}
	if err := e.store.UpdateNode(ctx, id, update); err != nil {
		return fmt.Errorf("title node %s: %w", id, err)
	}
	if n := e.Graph.NodeByID(id); n != nil {
		if title != "" {
			n.Title = title
		}
		n.Status = graph.StatusDraft
	}
	e.Checkpoint()
	return nil
}

// UpdateNodeTitle commits a title change for one node.
func (e *Editor) UpdateNodeTitle(ctx context.Context, id, title string) error {
	if err := e.store.UpdateNode(ctx, id, graph.NodeUpdate{Title: &title}); err != nil {
		return fmt.Errorf("update node %s: %w", id, err)
	}
	if n := e.Graph.NodeByID(id); n != nil {
		n.Title = title
	}
	e.Checkpoint()
	return nil
}

// DeleteBlock removes a group; member nodes stay.
func (e *Editor) DeleteBlock(ctx context.Context, id string) error {
	if err := e.store.DeleteBlock(ctx, id); err != nil {
		return fmt.Errorf("delete block %s: %w", id, err)
	}
	for i, b := range e.Graph.Blocks {
		if b.ID == id {
			e.Graph.Blocks = append(e.Graph.Blocks[:i], e.Graph.Blocks[i+1:]...)
			break
		}
	}
	e.Checkpoint()
	return nil
}

// DeleteEdge removes a single edge.
func (e *Editor) DeleteEdge(ctx context.Context, id string) error {
	if err := e.store.DeleteEdge(ctx, id); err != nil {
		return fmt.Errorf("delete edge %s: %w", id, err)
	}
	for i, edge := range e.Graph.Edges {
		if edge.ID == id {
			e.Graph.Edges = append(e.Graph.Edges[:i], e.Graph.Edges[i+1:]...)
			break
		}
	}
	if e.SelectedEdge == id {
		e.SelectedEdge = ""
	}
	e.Checkpoint()
	return nil
}

func (e *Editor) removeNodeLocal(id string) {
	for i, n := range e.Graph.Nodes {
		if n.ID == id {
			e.Graph.Nodes = append(e.Graph.Nodes[:i], e.Graph.Nodes[i+1:]...)
			break
		}
	}
	// Edges referencing the node stay in the model as dangling entries;
	// rendering skips them. Blocks shrink to their surviving members.
	for i := range e.Graph.Blocks {
		b := &e.Graph.Blocks[i]
		for j, nid := range b.NodeIDs {
			if nid == id {
				b.NodeIDs = append(b.NodeIDs[:j], b.NodeIDs[j+1:]...)
				break
			}
		}
	}
}

// ProposeGroup starts the two-step group flow for the current selection,
// returning the naming prompt anchor. Returns false for an empty
// selection.
func (e *Editor) ProposeGroup() (geometry.Point, bool) {
	sel := e.Sess.Selection()
	proposal, ok := e.Sess.Blocks().ProposeGroup(sel)
	if !ok {
		return geometry.Point{}, false
	}
	e.pendingGroup = &proposal
	return proposal.Anchor, true
}

// ConfirmGroup completes the flow with the chosen name, emitting one
// create-block request.
func (e *Editor) ConfirmGroup(ctx context.Context, name string) (string, error) {
	if e.pendingGroup == nil {
		return "", fmt.Errorf("no group proposal pending")
	}
	proposal := *e.pendingGroup
	e.pendingGroup = nil
	id, err := e.store.CreateBlock(ctx, name, proposal.NodeIDs)
	if err != nil {
		return "", fmt.Errorf("create block: %w", err)
	}
	e.Graph.Blocks = append(e.Graph.Blocks, graph.Block{ID: id, Name: name, NodeIDs: proposal.NodeIDs})
	e.Checkpoint()
	return id, nil
}

// CancelGroup abandons a pending group proposal; nothing is emitted.
func (e *Editor) CancelGroup() {
	e.pendingGroup = nil
}

// GroupPending reports whether a naming prompt is open.
func (e *Editor) GroupPending() bool { return e.pendingGroup != nil }

// MaterializeSubgraph places an externally supplied, unpositioned node/edge
// set onto the canvas: the layered layout assigns positions, the store
// mints ids, and edges are rewritten onto the canonical ids.
func (e *Editor) MaterializeSubgraph(ctx context.Context, nodes []graph.Node, edges []graph.Edge) error {
	positions, err := e.layouts.Layout(nodes, edges)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}

	idMap := make(map[string]string, len(nodes))
	for _, n := range nodes {
		if pos, ok := positions[n.ID]; ok {
			n.X, n.Y = pos.X, pos.Y
		}
		proposed := n.ID
		n.ID = ""
		id, err := e.store.CreateNode(ctx, n)
		if err != nil {
			return fmt.Errorf("materialize node %q: %w", n.Title, err)
		}
		idMap[proposed] = id
		n.ID = id
		e.Graph.Nodes = append(e.Graph.Nodes, n)
	}

	for _, edge := range edges {
		from, okF := idMap[edge.From]
		to, okT := idMap[edge.To]
		if !okF || !okT || from == to {
			continue
		}
		t := edge.Type
		if t == "" {
			t = graph.EdgeImplies
		}
		id, err := e.store.CreateEdge(ctx, from, to, t)
		if err != nil {
			return fmt.Errorf("materialize edge %s->%s: %w", from, to, err)
		}
		e.Graph.Edges = append(e.Graph.Edges, graph.Edge{ID: id, From: from, To: to, Type: t, Label: edge.Label})
	}

	e.Checkpoint()
	return nil
}

// Undo restores the previous snapshot and replays the difference to the
// store.
func (e *Editor) Undo(ctx context.Context) error {
	snapshot, err := e.history.Undo()
	if err != nil || snapshot == nil {
		return err
	}
	return e.restore(ctx, snapshot)
}

// Redo restores the next snapshot and replays the difference to the store.
func (e *Editor) Redo(ctx context.Context) error {
	snapshot, err := e.history.Redo()
	if err != nil || snapshot == nil {
		return err
	}
	return e.restore(ctx, snapshot)
}
