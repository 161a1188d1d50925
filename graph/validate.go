package graph

import (
	"errors"
	"fmt"
)

// ErrSelfEdge is returned when an edge request has identical endpoints.
var ErrSelfEdge = errors.New("edge endpoints must differ")

// ErrUnknownNode is returned when an operation references a node id that is
// not present in the graph.
var ErrUnknownNode = errors.New("unknown node id")

// Validate checks structural invariants: unique node ids, unique edge ids,
// and no self-referential edges. Edges whose endpoints do not resolve are
// legal (they are simply not drawable), as are dangling dependency
// references.
func Validate(g *Graph) error {
	nodeIDs := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node with empty id")
		}
		if nodeIDs[n.ID] {
			return fmt.Errorf("duplicate node id: %s", n.ID)
		}
		nodeIDs[n.ID] = true
	}

	edgeIDs := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		if e.From == e.To {
			return fmt.Errorf("edge %s: %w", e.ID, ErrSelfEdge)
		}
		if e.ID != "" {
			if edgeIDs[e.ID] {
				return fmt.Errorf("duplicate edge id: %s", e.ID)
			}
			edgeIDs[e.ID] = true
		}
	}
	return nil
}

// DrawableEdges returns the edges whose endpoints both resolve to live
// nodes. Edges with a missing endpoint are silently skipped rather than
// treated as fatal.
func DrawableEdges(g *Graph) []Edge {
	nodeIDs := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		nodeIDs[n.ID] = true
	}
	out := make([]Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if e.From != e.To && nodeIDs[e.From] && nodeIDs[e.To] {
			out = append(out, e)
		}
	}
	return out
}

// DependencyEdges derives implicit edges from node dependency lists for
// dependencies that are not already covered by an explicit edge. Dangling
// references produce no edge.
func DependencyEdges(g *Graph) []Edge {
	nodeIDs := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		nodeIDs[n.ID] = true
	}
	explicit := make(map[[2]string]bool, len(g.Edges))
	for _, e := range g.Edges {
		explicit[[2]string{e.From, e.To}] = true
	}

	var out []Edge
	for _, n := range g.Nodes {
		for _, dep := range n.Dependencies {
			if dep == n.ID || !nodeIDs[dep] {
				continue
			}
			if explicit[[2]string{dep, n.ID}] {
				continue
			}
			out = append(out, Edge{From: dep, To: n.ID, Type: EdgeUses})
		}
	}
	return out
}
