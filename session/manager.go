package session

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"proofcanvas/autopan"
	"proofcanvas/block"
	"proofcanvas/geometry"
	"proofcanvas/graph"
	"proofcanvas/route"
	"proofcanvas/viewport"
)

// Gesture tuning constants.
const (
	// ClickThreshold is the screen-space box size below which a released
	// marquee is reinterpreted as a deselect click.
	ClickThreshold = 5.0

	// ConnectHandleRadius is the canvas-space hit radius around a node's
	// connection handle (the midpoint of its right side).
	ConnectHandleRadius = 10.0

	// BlockHandleHeight is the height of the strip along a block's top
	// edge that drags the whole group.
	BlockHandleHeight = 20.0
)

// Tool selects the background gesture: marquee selection or panning.
type Tool int

const (
	ToolSelect Tool = iota
	ToolHand
)

// Manager owns the session state machine and the selection set. All
// methods must be called from the host's event thread; per-frame work
// (auto-pan, marquee recompute) is serialized through Tick so edge and
// block rederivation always sees one consistent position snapshot.
type Manager struct {
	graph   *graph.Graph
	view    *viewport.Viewport
	store   graph.Store
	surface Surface
	blocks  *block.Manager
	pan     autopan.Engine
	log     *slog.Logger

	sess      Session
	selection map[string]bool
	tool      Tool

	// DefaultEdgeType is assigned to edges created by the connect gesture.
	DefaultEdgeType graph.EdgeType

	// OnSelection, when set, is invoked after every selection change with
	// the sorted selected ids.
	OnSelection func(ids []string)

	now       func() time.Time
	lastFrame time.Time
}

// NewManager creates a session manager over the given model, viewport and
// collaborator store.
func NewManager(g *graph.Graph, view *viewport.Viewport, store graph.Store, surface Surface, log *slog.Logger) *Manager {
	if surface == nil {
		surface = NopSurface{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		graph:           g,
		view:            view,
		store:           store,
		surface:         surface,
		blocks:          block.NewManager(g),
		log:             log,
		selection:       make(map[string]bool),
		DefaultEdgeType: graph.EdgeImplies,
		now:             time.Now,
	}
}

// SetSurface swaps the render surface, for hosts that construct their
// display after the engine.
func (m *Manager) SetSurface(s Surface) {
	if s == nil {
		s = NopSurface{}
	}
	m.surface = s
}

// State returns the current gesture state.
func (m *Manager) State() State { return m.sess.State }

// Session returns a copy of the current session value.
func (m *Manager) Session() Session { return m.sess }

// Tool returns the active background tool.
func (m *Manager) Tool() Tool { return m.tool }

// SetTool switches between select and hand mode.
func (m *Manager) SetTool(t Tool) { m.tool = t }

// Blocks exposes the block bounds manager, which tracks live drag
// positions.
func (m *Manager) Blocks() *block.Manager { return m.blocks }

// AutoPan exposes the auto-pan engine, for hosts driving their own frame
// loop.
func (m *Manager) AutoPan() *autopan.Engine { return &m.pan }

// Selection returns the selected node ids in sorted order.
func (m *Manager) Selection() []string {
	ids := make([]string, 0, len(m.selection))
	for id := range m.selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsSelected reports whether a node is in the selection.
func (m *Manager) IsSelected(id string) bool { return m.selection[id] }

// SetSelection replaces the selection set.
func (m *Manager) SetSelection(ids []string) {
	m.selection = make(map[string]bool, len(ids))
	for _, id := range ids {
		m.selection[id] = true
	}
	m.selectionChanged()
}

// ToggleSelected flips one node's membership in the selection.
func (m *Manager) ToggleSelected(id string) {
	if m.selection[id] {
		delete(m.selection, id)
	} else {
		m.selection[id] = true
	}
	m.selectionChanged()
}

// SelectAll selects every node in the graph.
func (m *Manager) SelectAll() {
	m.selection = make(map[string]bool, len(m.graph.Nodes))
	for _, n := range m.graph.Nodes {
		m.selection[n.ID] = true
	}
	m.selectionChanged()
}

// ClearSelection empties the selection.
func (m *Manager) ClearSelection() {
	m.selection = make(map[string]bool)
	m.selectionChanged()
}

func (m *Manager) selectionChanged() {
	if m.OnSelection != nil {
		m.OnSelection(m.Selection())
	}
}

// HitTest classifies what sits under a canvas-space point: connection
// handles win over node bodies, node bodies over block handles, and
// anything else is background.
func (m *Manager) HitTest(canvas geometry.Point) Hit {
	for i := len(m.graph.Nodes) - 1; i >= 0; i-- {
		n := m.graph.Nodes[i]
		if m.connectHandle(n).Distance(canvas) <= ConnectHandleRadius {
			return Hit{Kind: HitConnectHandle, NodeID: n.ID}
		}
		if n.Contains(canvas) {
			return Hit{Kind: HitNode, NodeID: n.ID}
		}
	}
	for i := range m.graph.Blocks {
		b := m.graph.Blocks[i]
		bounds, ok := m.blocks.Bounds(b)
		if !ok {
			continue
		}
		handle := geometry.Rect{
			Min: bounds.Min,
			Max: geometry.Point{X: bounds.Max.X, Y: bounds.Min.Y + BlockHandleHeight},
		}
		if handle.Contains(canvas) {
			return Hit{Kind: HitBlockHandle, BlockID: b.ID}
		}
	}
	return Hit{Kind: HitBackground}
}

func (m *Manager) connectHandle(n graph.Node) geometry.Point {
	b := n.Bounds()
	return geometry.Point{X: b.Max.X, Y: b.Center().Y}
}

// PointerDown enters a gesture from Idle. The returned Hit lets the host
// anchor a context menu on right-click, which starts no gesture.
func (m *Manager) PointerDown(ev Pointer) Hit {
	canvas := m.view.ToCanvas(ev.Screen)
	hit := m.HitTest(canvas)

	if m.sess.State != StateIdle || ev.Button == ButtonRight {
		return hit
	}

	m.sess.Screen = ev.Screen
	m.sess.Canvas = canvas

	if ev.Button == ButtonMiddle {
		m.beginPan(ev.Screen)
		return hit
	}

	switch hit.Kind {
	case HitConnectHandle:
		m.sess.State = StateConnecting
		m.sess.SourceID = hit.NodeID

	case HitNode:
		if ev.Shift {
			// Shift-click toggles membership without starting a drag.
			m.ToggleSelected(hit.NodeID)
			return hit
		}
		if m.selection[hit.NodeID] && len(m.selection) >= 2 {
			m.beginDrag(StateDraggingMulti, hit.NodeID, m.Selection(), canvas)
		} else {
			m.SetSelection([]string{hit.NodeID})
			m.beginDrag(StateDraggingSingle, hit.NodeID, []string{hit.NodeID}, canvas)
		}

	case HitBlockHandle:
		b := m.graph.BlockByID(hit.BlockID)
		if b == nil {
			return hit
		}
		m.sess.BlockID = b.ID
		m.beginDrag(StateDraggingGroup, "", b.NodeIDs, canvas)

	case HitBackground:
		if m.tool == ToolHand {
			m.beginPan(ev.Screen)
			return hit
		}
		m.sess.State = StateSelecting
		m.sess.MarqueeOriginScreen = ev.Screen
		m.sess.MarqueeOrigin = canvas
		m.sess.PrevSelection = m.Selection()
	}
	return hit
}

func (m *Manager) beginPan(screen geometry.Point) {
	m.sess.State = StatePanning
	m.sess.LastScreen = screen
}

func (m *Manager) beginDrag(state State, primary string, members []string, origin geometry.Point) {
	starts := make(map[string]geometry.Point, len(members))
	for _, id := range members {
		if n := m.graph.NodeByID(id); n != nil {
			starts[id] = geometry.Point{X: n.X, Y: n.Y}
		}
	}
	if len(starts) == 0 {
		m.sess = Session{State: StateIdle}
		return
	}
	m.sess.State = state
	m.sess.PrimaryID = primary
	m.sess.DragOrigin = origin
	m.sess.StartPositions = starts
	m.sess.Moved = false
	m.pan.Start()
	m.pan.Observe(m.sess.Screen)
}

// PointerMove advances the active gesture. Drag visuals are applied on
// every move; marquee recomputation is rate-limited to frame cadence and
// flushed by Tick.
func (m *Manager) PointerMove(ev Pointer) {
	m.sess.Screen = ev.Screen
	m.sess.Canvas = m.view.ToCanvas(ev.Screen)
	m.pan.Observe(ev.Screen)

	switch m.sess.State {
	case StateSelecting:
		if now := m.now(); now.Sub(m.lastFrame) >= autopan.FrameInterval {
			m.lastFrame = now
			m.updateMarquee()
		}

	case StateDraggingSingle, StateDraggingMulti, StateDraggingGroup:
		m.applyDrag()

	case StateConnecting:
		m.updatePreview()

	case StatePanning:
		delta := ev.Screen.Sub(m.sess.LastScreen)
		m.sess.LastScreen = ev.Screen
		m.view.PanBy(delta)
	}
}

// Tick runs one animation frame: auto-pan stepping with drag compensation,
// and any pending marquee recompute. Hosts call this at frame cadence
// while a gesture is active.
func (m *Manager) Tick() {
	switch {
	case m.sess.State.Dragging():
		delta := m.pan.Step(m.view.Width, m.view.Height)
		if delta.X != 0 || delta.Y != 0 {
			m.view.PanBy(delta)
			// Re-deriving the pointer's canvas position under the new pan
			// shifts every dragged member by the inverse of the pan delta,
			// keeping them stationary under the pointer.
			m.sess.Canvas = m.view.ToCanvas(m.sess.Screen)
			m.applyDrag()
		}
	case m.sess.State == StateSelecting:
		m.updateMarquee()
	}
}

// applyDrag recomputes every dragged member from its captured start
// position plus the current pointer delta, then rewrites affected edge and
// block geometry. Positions derive from absolute deltas, so repeated
// application of the same pointer state is idempotent.
func (m *Manager) applyDrag() {
	delta := m.sess.Canvas.Sub(m.sess.DragOrigin)
	if delta.X != 0 || delta.Y != 0 {
		m.sess.Moved = true
	}
	for id, start := range m.sess.StartPositions {
		pos := start.Add(delta)
		m.surface.MoveNode(id, pos)
		m.blocks.SetOverride(id, pos)
	}
	m.rerouteEdges()
	m.rederiveBlocks()
}

// rerouteEdges rewrites the path of every edge with a dragged endpoint,
// using the members' visual positions. Cost stays proportional to the
// affected-edge count.
func (m *Manager) rerouteEdges() {
	members := make(map[string]bool, len(m.sess.StartPositions))
	for id := range m.sess.StartPositions {
		members[id] = true
	}
	delta := m.sess.Canvas.Sub(m.sess.DragOrigin)
	for _, e := range m.graph.EdgesTouching(members) {
		from := m.graph.NodeByID(e.From)
		to := m.graph.NodeByID(e.To)
		if from == nil || to == nil || e.From == e.To {
			continue
		}
		fv, tv := *from, *to
		if start, ok := m.sess.StartPositions[fv.ID]; ok {
			fv.X, fv.Y = start.X+delta.X, start.Y+delta.Y
		}
		if start, ok := m.sess.StartPositions[tv.ID]; ok {
			tv.X, tv.Y = start.X+delta.X, start.Y+delta.Y
		}
		m.surface.SetEdgePath(e.ID, route.Route(fv, tv))
	}
}

// rederiveBlocks recomputes the bounds of every block containing a dragged
// member, from visual positions.
func (m *Manager) rederiveBlocks() {
	seen := make(map[string]bool)
	for id := range m.sess.StartPositions {
		for _, b := range m.graph.BlocksContaining(id) {
			if seen[b.ID] {
				continue
			}
			seen[b.ID] = true
			if bounds, ok := m.blocks.Bounds(*b); ok {
				m.surface.SetBlockBounds(b.ID, bounds)
			}
		}
	}
}

// updateMarquee recomputes the marquee rectangle and the live selection:
// every node whose bounding box intersects the marquee, by open-interval
// overlap.
func (m *Manager) updateMarquee() {
	rect := geometry.RectFromCorners(m.sess.MarqueeOrigin, m.sess.Canvas)
	m.surface.SetMarquee(rect, true)

	sel := make(map[string]bool)
	for _, n := range m.graph.Nodes {
		if n.Bounds().Intersects(rect) {
			sel[n.ID] = true
		}
	}
	m.selection = sel
	m.selectionChanged()
}

func (m *Manager) updatePreview() {
	src := m.graph.NodeByID(m.sess.SourceID)
	if src == nil {
		return
	}
	path := route.Route(*src, route.PreviewTarget(m.sess.Canvas))
	m.surface.SetPreviewEdge(path, true)
}

// PointerUp completes the active gesture. The authoritative commit for a
// gesture is emitted here exactly once, and only if the gesture produced a
// net change.
func (m *Manager) PointerUp(ctx context.Context, ev Pointer) {
	m.sess.Screen = ev.Screen
	m.sess.Canvas = m.view.ToCanvas(ev.Screen)

	switch m.sess.State {
	case StateSelecting:
		m.finishMarquee(ev)

	case StateDraggingSingle, StateDraggingMulti, StateDraggingGroup:
		m.finishDrag(ctx)

	case StateConnecting:
		m.finishConnect(ctx)

	case StatePanning:
		m.view.Sync()
	}
	m.endGesture()
}

func (m *Manager) finishMarquee(ev Pointer) {
	size := ev.Screen.Sub(m.sess.MarqueeOriginScreen)
	if geometry.Abs(size.X) < ClickThreshold && geometry.Abs(size.Y) < ClickThreshold {
		// Too small to be a marquee: a click on empty canvas deselects.
		m.ClearSelection()
	} else {
		m.updateMarquee()
	}
	m.surface.SetMarquee(geometry.Rect{}, false)
}

func (m *Manager) finishDrag(ctx context.Context) {
	if !m.sess.Moved {
		return
	}
	delta := m.sess.Canvas.Sub(m.sess.DragOrigin)
	if delta.X == 0 && delta.Y == 0 {
		// The pointer ended up exactly where it started: no net change.
		return
	}
	moves := make(map[string]geometry.Point, len(m.sess.StartPositions))
	for id, start := range m.sess.StartPositions {
		moves[id] = start.Add(delta)
	}
	if err := m.store.BulkMoveNodes(ctx, moves); err != nil {
		// No rollback: visuals stay where the user left them until the
		// next authoritative refresh.
		m.log.Warn("bulk move rejected", slog.Int("nodes", len(moves)), slog.String("error", err.Error()))
		return
	}
	for id, pos := range moves {
		if n := m.graph.NodeByID(id); n != nil {
			n.X, n.Y = pos.X, pos.Y
		}
	}
}

func (m *Manager) finishConnect(ctx context.Context) {
	m.surface.SetPreviewEdge(route.Path{}, false)
	target := m.graph.NodeAt(m.sess.Canvas)
	if target == nil || target.ID == m.sess.SourceID {
		// Released over empty space or the source itself: discard.
		return
	}
	from := m.sess.SourceID
	id, err := m.store.CreateEdge(ctx, from, target.ID, m.DefaultEdgeType)
	if err != nil {
		m.log.Warn("edge create rejected",
			slog.String("from", from), slog.String("to", target.ID), slog.String("error", err.Error()))
		return
	}
	m.graph.Edges = append(m.graph.Edges, graph.Edge{ID: id, From: from, To: target.ID, Type: m.DefaultEdgeType})
}

// Cancel aborts any active gesture without committing: dragged nodes snap
// back to their committed positions, marquee and connection previews are
// cleared, and the auto-pan loop stops.
func (m *Manager) Cancel() {
	switch m.sess.State {
	case StateSelecting:
		m.SetSelection(m.sess.PrevSelection)
		m.surface.SetMarquee(geometry.Rect{}, false)

	case StateDraggingSingle, StateDraggingMulti, StateDraggingGroup:
		for id := range m.sess.StartPositions {
			if n := m.graph.NodeByID(id); n != nil {
				m.surface.MoveNode(id, geometry.Point{X: n.X, Y: n.Y})
			}
		}
		m.blocks.ClearOverrides()
		m.restoreCommittedGeometry()

	case StateConnecting:
		m.surface.SetPreviewEdge(route.Path{}, false)

	case StatePanning:
		m.view.Sync()
	}
	m.endGesture()
}

// restoreCommittedGeometry rewrites edges and blocks touched by an aborted
// drag from committed model positions.
func (m *Manager) restoreCommittedGeometry() {
	members := make(map[string]bool, len(m.sess.StartPositions))
	for id := range m.sess.StartPositions {
		members[id] = true
	}
	for _, e := range m.graph.EdgesTouching(members) {
		from := m.graph.NodeByID(e.From)
		to := m.graph.NodeByID(e.To)
		if from == nil || to == nil || e.From == e.To {
			continue
		}
		m.surface.SetEdgePath(e.ID, route.Route(*from, *to))
	}
	for id := range members {
		for _, b := range m.graph.BlocksContaining(id) {
			if bounds, ok := m.blocks.Bounds(*b); ok {
				m.surface.SetBlockBounds(b.ID, bounds)
			}
		}
	}
}

// endGesture clears all session refs and stops the auto-pan engine. A
// leaked auto-pan loop is a defect, so this runs on every exit path.
func (m *Manager) endGesture() {
	m.pan.Stop()
	m.blocks.ClearOverrides()
	m.sess = Session{State: StateIdle}
}
