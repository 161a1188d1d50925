// Package layout assigns canvas positions to node/edge sets that have not
// been placed yet, such as sub-graphs materialized from an external
// proposal. The interaction engine takes over once positions exist.
package layout

import (
	"sort"

	"proofcanvas/geometry"
	"proofcanvas/graph"
)

// Spacing defaults for the layered layout.
const (
	DefaultBaseX    = 100.0
	DefaultBaseY    = 100.0
	DefaultXSpacing = 420.0
	DefaultYSpacing = 180.0
)

// Layered implements a left-to-right topological layout: nodes are grouped
// into depth layers via Kahn's algorithm and each layer becomes a column.
type Layered struct {
	BaseX    float64
	BaseY    float64
	XSpacing float64
	YSpacing float64
}

// NewLayered creates a Layered layout with default spacing.
func NewLayered() *Layered {
	return &Layered{
		BaseX:    DefaultBaseX,
		BaseY:    DefaultBaseY,
		XSpacing: DefaultXSpacing,
		YSpacing: DefaultYSpacing,
	}
}

// Name returns the name of this layout algorithm.
func (l *Layered) Name() string {
	return "Layered"
}

// Layout computes a position for every node. Nodes reachable from a
// zero-in-degree root get depth = max over predecessors + 1; nodes
// reachable only through cycles are appended as one final layer past the
// deepest assigned depth. The input is not modified.
func (l *Layered) Layout(nodes []graph.Node, edges []graph.Edge) (map[string]geometry.Point, error) {
	positions := make(map[string]geometry.Point, len(nodes))
	if len(nodes) == 0 {
		return positions, nil
	}

	byID := make(map[string]graph.Node, len(nodes))
	inDegree := make(map[string]int, len(nodes))
	adjacency := make(map[string][]string)
	for _, n := range nodes {
		byID[n.ID] = n
		inDegree[n.ID] = 0
	}
	for _, e := range edges {
		// Self-loops and edges to unknown nodes carry no layering
		// information.
		if e.From == e.To {
			continue
		}
		if _, ok := byID[e.From]; !ok {
			continue
		}
		if _, ok := byID[e.To]; !ok {
			continue
		}
		adjacency[e.From] = append(adjacency[e.From], e.To)
		inDegree[e.To]++
	}

	depths := l.assignDepths(byID, adjacency, inDegree)

	// Group by depth into layers.
	maxDepth := 0
	for _, d := range depths {
		if d > maxDepth {
			maxDepth = d
		}
	}
	layers := make([][]string, maxDepth+1)
	for id, d := range depths {
		layers[d] = append(layers[d], id)
	}

	// Deterministic order within a layer: by title, then id.
	for _, layer := range layers {
		sort.Slice(layer, func(i, j int) bool {
			a, b := byID[layer[i]], byID[layer[j]]
			if a.Title != b.Title {
				return a.Title < b.Title
			}
			return a.ID < b.ID
		})
	}

	// Center every layer around the tallest one.
	tallest := 0
	for _, layer := range layers {
		if len(layer) > tallest {
			tallest = len(layer)
		}
	}

	for depth, layer := range layers {
		x := l.BaseX + float64(depth)*l.XSpacing
		offset := float64(tallest-len(layer)) / 2 * l.YSpacing
		for row, id := range layer {
			positions[id] = geometry.Point{
				X: x,
				Y: l.BaseY + offset + float64(row)*l.YSpacing,
			}
		}
	}
	return positions, nil
}

// assignDepths runs Kahn's algorithm from all zero-in-degree roots,
// assigning depth = max(existing, predecessor+1). Nodes never dequeued
// (cycle-only nodes) are placed one layer past the deepest assigned depth.
func (l *Layered) assignDepths(byID map[string]graph.Node, adjacency map[string][]string, inDegree map[string]int) map[string]int {
	remaining := make(map[string]int, len(inDegree))
	for id, d := range inDegree {
		remaining[id] = d
	}

	depths := make(map[string]int, len(byID))
	var queue []string
	for id, d := range remaining {
		if d == 0 {
			queue = append(queue, id)
			depths[id] = 0
		}
	}
	sort.Strings(queue)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[current] {
			if depths[current]+1 > depths[next] {
				depths[next] = depths[current] + 1
			}
			remaining[next]--
			if remaining[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	// Cycle-only leftovers: one synthetic layer past the deepest depth so
	// they remain visible and editable.
	maxDepth := 0
	for id := range byID {
		if d, ok := depths[id]; ok && remaining[id] == 0 && d > maxDepth {
			maxDepth = d
		}
	}
	for id := range byID {
		if remaining[id] > 0 {
			depths[id] = maxDepth + 1
		}
	}
	return depths
}
