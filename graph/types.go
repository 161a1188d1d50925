// Package graph contains the fundamental types of the proofcanvas engine:
// the in-memory node/edge/block model the interaction layer operates on,
// and the collaborator interfaces through which mutations are committed.
package graph

import (
	"proofcanvas/geometry"
)

// NodeType classifies the kind of proof artifact a node represents.
type NodeType string

const (
	NodeDefinition  NodeType = "definition"
	NodeAxiom       NodeType = "axiom"
	NodeLemma       NodeType = "lemma"
	NodeTheorem     NodeType = "theorem"
	NodeComputation NodeType = "computation"
	NodeConjecture  NodeType = "conjecture"
	NodeRemark      NodeType = "remark"
	NodeResource    NodeType = "resource"
)

// NodeStatus tracks the verification lifecycle of a node.
type NodeStatus string

const (
	StatusDraft    NodeStatus = "DRAFT"
	StatusProposed NodeStatus = "PROPOSED"
	StatusVerified NodeStatus = "VERIFIED"
	StatusRejected NodeStatus = "REJECTED"
	StatusEditing  NodeStatus = "EDITING"
)

// EdgeType classifies the logical relation an edge expresses.
type EdgeType string

const (
	EdgeUses        EdgeType = "uses"
	EdgeImplies     EdgeType = "implies"
	EdgeContradicts EdgeType = "contradicts"
	EdgeReferences  EdgeType = "references"
)

// Default node card dimensions, used when the store supplies none.
const (
	DefaultNodeWidth  = 200.0
	DefaultNodeHeight = 100.0
)

// Node represents a proof artifact placed on the canvas. Coordinates are
// canvas-space with (X, Y) the top-left corner.
type Node struct {
	ID           string     `json:"id"`
	Type         NodeType   `json:"type"`
	Title        string     `json:"title"`
	Content      string     `json:"content,omitempty"`
	Formula      string     `json:"formula,omitempty"`
	VerifiedCode string     `json:"verifiedCode,omitempty"`
	X            float64    `json:"x"`
	Y            float64    `json:"y"`
	Width        float64    `json:"width,omitempty"`
	Height       float64    `json:"height,omitempty"`
	Status       NodeStatus `json:"status,omitempty"`
	Dependencies []string   `json:"dependencies,omitempty"`
	Authors      []string   `json:"authors,omitempty"`
	AgentID      string     `json:"agentId,omitempty"`
}

// Size returns the node's dimensions, substituting defaults for zero values.
func (n Node) Size() (w, h float64) {
	w, h = n.Width, n.Height
	if w <= 0 {
		w = DefaultNodeWidth
	}
	if h <= 0 {
		h = DefaultNodeHeight
	}
	return w, h
}

// Bounds returns the node's axis-aligned bounding box in canvas space.
func (n Node) Bounds() geometry.Rect {
	w, h := n.Size()
	return geometry.RectFromSize(geometry.Point{X: n.X, Y: n.Y}, w, h)
}

// Center returns the center point of the node.
func (n Node) Center() geometry.Point {
	return n.Bounds().Center()
}

// Contains checks if a canvas-space point is inside the node.
func (n Node) Contains(p geometry.Point) bool {
	return n.Bounds().Contains(p)
}

// Edge represents a typed directed relation between two nodes.
type Edge struct {
	ID    string   `json:"id"`
	From  string   `json:"from"`
	To    string   `json:"to"`
	Type  EdgeType `json:"type"`
	Label string   `json:"label,omitempty"`
}

// Block is a named grouping of nodes. Its rectangle is derived from the
// current member extents, never stored.
type Block struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	NodeIDs []string `json:"nodeIds"`
}

// Contains reports whether the block includes the given node id.
func (b Block) Contains(nodeID string) bool {
	for _, id := range b.NodeIDs {
		if id == nodeID {
			return true
		}
	}
	return false
}

// Cursor is an ephemeral collaborator pointer, broadcast-only and never
// persisted by the engine.
type Cursor struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Color string  `json:"color"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Graph is the in-memory model the interaction engine reads from. The
// collaborator store owns creation and deletion; the engine only proposes
// new geometry.
type Graph struct {
	Nodes  []Node  `json:"nodes"`
	Edges  []Edge  `json:"edges"`
	Blocks []Block `json:"blocks,omitempty"`
}

// NodeByID returns a pointer to the node with the given id, or nil.
func (g *Graph) NodeByID(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// EdgeByID returns a pointer to the edge with the given id, or nil.
func (g *Graph) EdgeByID(id string) *Edge {
	for i := range g.Edges {
		if g.Edges[i].ID == id {
			return &g.Edges[i]
		}
	}
	return nil
}

// BlockByID returns a pointer to the block with the given id, or nil.
func (g *Graph) BlockByID(id string) *Block {
	for i := range g.Blocks {
		if g.Blocks[i].ID == id {
			return &g.Blocks[i]
		}
	}
	return nil
}

// BlocksContaining returns the blocks that include the given node id.
func (g *Graph) BlocksContaining(nodeID string) []*Block {
	var out []*Block
	for i := range g.Blocks {
		if g.Blocks[i].Contains(nodeID) {
			out = append(out, &g.Blocks[i])
		}
	}
	return out
}

// EdgesTouching returns the edges with either endpoint in the given id set.
func (g *Graph) EdgesTouching(nodeIDs map[string]bool) []*Edge {
	var out []*Edge
	for i := range g.Edges {
		if nodeIDs[g.Edges[i].From] || nodeIDs[g.Edges[i].To] {
			out = append(out, &g.Edges[i])
		}
	}
	return out
}

// NodeAt returns the topmost node containing the given canvas-space point,
// or nil. Later nodes in the slice are treated as drawn on top.
func (g *Graph) NodeAt(p geometry.Point) *Node {
	for i := len(g.Nodes) - 1; i >= 0; i-- {
		if g.Nodes[i].Contains(p) {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Extents returns the bounding box over all nodes, and false when the
// graph has no nodes.
func (g *Graph) Extents() (geometry.Rect, bool) {
	if len(g.Nodes) == 0 {
		return geometry.Rect{}, false
	}
	bounds := g.Nodes[0].Bounds()
	for _, n := range g.Nodes[1:] {
		bounds = bounds.Union(n.Bounds())
	}
	return bounds, true
}

// Clone creates a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	clone := &Graph{
		Nodes:  make([]Node, len(g.Nodes)),
		Edges:  make([]Edge, len(g.Edges)),
		Blocks: make([]Block, len(g.Blocks)),
	}
	copy(clone.Nodes, g.Nodes)
	copy(clone.Edges, g.Edges)
	for i, n := range g.Nodes {
		if n.Dependencies != nil {
			clone.Nodes[i].Dependencies = append([]string(nil), n.Dependencies...)
		}
		if n.Authors != nil {
			clone.Nodes[i].Authors = append([]string(nil), n.Authors...)
		}
	}
	for i, b := range g.Blocks {
		clone.Blocks[i] = Block{ID: b.ID, Name: b.Name, NodeIDs: append([]string(nil), b.NodeIDs...)}
	}
	return clone
}
