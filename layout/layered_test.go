package layout

import (
	"reflect"
	"testing"

	"proofcanvas/graph"
)

func chain(ids ...string) ([]graph.Node, []graph.Edge) {
	nodes := make([]graph.Node, len(ids))
	for i, id := range ids {
		nodes[i] = graph.Node{ID: id, Title: id}
	}
	edges := make([]graph.Edge, 0, len(ids)-1)
	for i := 0; i < len(ids)-1; i++ {
		edges = append(edges, graph.Edge{ID: ids[i] + ids[i+1], From: ids[i], To: ids[i+1]})
	}
	return nodes, edges
}

func TestLayoutChain(t *testing.T) {
	l := NewLayered()
	nodes, edges := chain("n1", "n2", "n3")

	positions, err := l.Layout(nodes, edges)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(positions) != 3 {
		t.Fatalf("positions = %d, want 3", len(positions))
	}

	// One column per depth, advancing by XSpacing.
	wantX := map[string]float64{
		"n1": DefaultBaseX,
		"n2": DefaultBaseX + DefaultXSpacing,
		"n3": DefaultBaseX + 2*DefaultXSpacing,
	}
	for id, x := range wantX {
		if positions[id].X != x {
			t.Errorf("%s.X = %v, want %v", id, positions[id].X, x)
		}
		if positions[id].Y != DefaultBaseY {
			t.Errorf("%s.Y = %v, want %v", id, positions[id].Y, DefaultBaseY)
		}
	}
}

func TestLayoutDiamondDepths(t *testing.T) {
	nodes := []graph.Node{
		{ID: "root", Title: "root"},
		{ID: "left", Title: "left"},
		{ID: "right", Title: "right"},
		{ID: "sink", Title: "sink"},
	}
	edges := []graph.Edge{
		{ID: "e1", From: "root", To: "left"},
		{ID: "e2", From: "root", To: "right"},
		{ID: "e3", From: "left", To: "sink"},
		{ID: "e4", From: "right", To: "sink"},
	}

	positions, err := NewLayered().Layout(nodes, edges)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	if positions["left"].X != positions["right"].X {
		t.Errorf("siblings split columns: %v vs %v", positions["left"].X, positions["right"].X)
	}
	if positions["sink"].X != DefaultBaseX+2*DefaultXSpacing {
		t.Errorf("sink.X = %v, want depth 2 column", positions["sink"].X)
	}
	if positions["left"].Y == positions["right"].Y {
		t.Error("siblings share a row")
	}
}

// Depth is the longest path from a root, not the shortest: a node fed both
// directly and through an intermediate lands after the intermediate.
func TestLayoutLongestPathWins(t *testing.T) {
	nodes := []graph.Node{
		{ID: "a", Title: "a"},
		{ID: "b", Title: "b"},
		{ID: "c", Title: "c"},
	}
	edges := []graph.Edge{
		{ID: "e1", From: "a", To: "c"},
		{ID: "e2", From: "a", To: "b"},
		{ID: "e3", From: "b", To: "c"},
	}

	positions, err := NewLayered().Layout(nodes, edges)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if positions["c"].X != DefaultBaseX+2*DefaultXSpacing {
		t.Errorf("c.X = %v, want depth 2 column", positions["c"].X)
	}
}

func TestLayoutCycleOnlyNodesGetFinalLayer(t *testing.T) {
	nodes := []graph.Node{
		{ID: "root", Title: "root"},
		{ID: "cyc1", Title: "cyc1"},
		{ID: "cyc2", Title: "cyc2"},
	}
	edges := []graph.Edge{
		{ID: "e1", From: "cyc1", To: "cyc2"},
		{ID: "e2", From: "cyc2", To: "cyc1"},
	}

	positions, err := NewLayered().Layout(nodes, edges)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(positions) != 3 {
		t.Fatalf("cycle members must still be placed, got %d positions", len(positions))
	}
	// The cycle lands one column past the deepest acyclic depth (0 here).
	want := DefaultBaseX + DefaultXSpacing
	if positions["cyc1"].X != want || positions["cyc2"].X != want {
		t.Errorf("cycle column = %v / %v, want %v", positions["cyc1"].X, positions["cyc2"].X, want)
	}
}

func TestLayoutIgnoresSelfLoopsAndUnknownEndpoints(t *testing.T) {
	nodes := []graph.Node{{ID: "a", Title: "a"}, {ID: "b", Title: "b"}}
	edges := []graph.Edge{
		{ID: "self", From: "a", To: "a"},
		{ID: "dangling", From: "ghost", To: "b"},
		{ID: "real", From: "a", To: "b"},
	}

	positions, err := NewLayered().Layout(nodes, edges)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if positions["a"].X != DefaultBaseX || positions["b"].X != DefaultBaseX+DefaultXSpacing {
		t.Errorf("columns = %v / %v", positions["a"].X, positions["b"].X)
	}
}

func TestLayoutDeterministic(t *testing.T) {
	nodes := []graph.Node{
		{ID: "z", Title: "gamma"},
		{ID: "m", Title: "alpha"},
		{ID: "q", Title: "beta"},
	}
	first, err := NewLayered().Layout(nodes, nil)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := NewLayered().Layout(nodes, nil)
		if err != nil {
			t.Fatalf("Layout: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %v vs %v", i, again, first)
		}
	}

	// Rows within a layer follow title order.
	if !(first["m"].Y < first["q"].Y && first["q"].Y < first["z"].Y) {
		t.Errorf("row order by title violated: %v", first)
	}
}

func TestLayoutEmpty(t *testing.T) {
	positions, err := NewLayered().Layout(nil, nil)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(positions) != 0 {
		t.Errorf("empty input produced %d positions", len(positions))
	}
}

func TestLayoutInputNotModified(t *testing.T) {
	nodes, edges := chain("n1", "n2")
	nodes[0].X, nodes[0].Y = 77, 88

	if _, err := NewLayered().Layout(nodes, edges); err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if nodes[0].X != 77 || nodes[0].Y != 88 {
		t.Errorf("input node mutated: %+v", nodes[0])
	}
}
