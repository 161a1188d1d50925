// Package block derives the rectangle of a node group. A block never
// stores geometry: its bounds are the padded hull of its members' current
// extents, recomputed whenever a member moves or membership changes.
package block

import (
	"proofcanvas/geometry"
	"proofcanvas/graph"
)

// Padding is added around the member hull on every side.
const Padding = 24.0

// Manager computes block bounds against live node positions. During a drag
// the session manager overlays uncommitted visual positions so bounds track
// the pointer rather than the last committed state.
type Manager struct {
	graph *graph.Graph

	// overrides maps node id to its current visual position while a drag
	// is in flight.
	overrides map[string]geometry.Point
}

// NewManager creates a bounds manager for the given graph.
func NewManager(g *graph.Graph) *Manager {
	return &Manager{graph: g}
}

// SetOverride records an uncommitted visual position for a node.
func (m *Manager) SetOverride(nodeID string, pos geometry.Point) {
	if m.overrides == nil {
		m.overrides = make(map[string]geometry.Point)
	}
	m.overrides[nodeID] = pos
}

// ClearOverrides drops all uncommitted visual positions, reverting bounds
// to committed node state.
func (m *Manager) ClearOverrides() {
	m.overrides = nil
}

// Bounds returns the padded hull of the block's members and false when no
// member resolves to a live node.
func (m *Manager) Bounds(b graph.Block) (geometry.Rect, bool) {
	var hull geometry.Rect
	found := false
	for _, id := range b.NodeIDs {
		n := m.graph.NodeByID(id)
		if n == nil {
			continue
		}
		nb := m.nodeBounds(*n)
		if !found {
			hull = nb
			found = true
		} else {
			hull = hull.Union(nb)
		}
	}
	if !found {
		return geometry.Rect{}, false
	}
	return hull.Expand(Padding), true
}

// BoundsForNodes returns the padded hull over an explicit id set, used by
// the group-creation flow before a block exists.
func (m *Manager) BoundsForNodes(nodeIDs []string) (geometry.Rect, bool) {
	return m.Bounds(graph.Block{NodeIDs: nodeIDs})
}

func (m *Manager) nodeBounds(n graph.Node) geometry.Rect {
	if pos, ok := m.overrides[n.ID]; ok {
		w, h := n.Size()
		return geometry.RectFromSize(pos, w, h)
	}
	return n.Bounds()
}

// GroupProposal is the pending state of the two-step group-creation flow:
// the prompt is anchored at the hull centroid, and confirmation emits a
// create-block request while cancel emits nothing.
type GroupProposal struct {
	NodeIDs []string
	Anchor  geometry.Point
}

// ProposeGroup starts the naming flow for a selection. Returns false when
// the selection resolves to no live nodes.
func (m *Manager) ProposeGroup(nodeIDs []string) (GroupProposal, bool) {
	if len(nodeIDs) == 0 {
		return GroupProposal{}, false
	}
	bounds, ok := m.BoundsForNodes(nodeIDs)
	if !ok {
		return GroupProposal{}, false
	}
	ids := append([]string(nil), nodeIDs...)
	return GroupProposal{NodeIDs: ids, Anchor: bounds.Center()}, true
}
