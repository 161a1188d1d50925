package editor

import (
	"fmt"
	"testing"

	"proofcanvas/graph"
)

func snap(t *testing.T, h *History, title string) {
	t.Helper()
	g := &graph.Graph{Nodes: []graph.Node{{ID: "a", Title: title}}}
	if err := h.Save(g); err != nil {
		t.Fatalf("Save(%s): %v", title, err)
	}
}

func title(t *testing.T, g *graph.Graph) string {
	t.Helper()
	if g == nil || len(g.Nodes) == 0 {
		t.Fatal("empty snapshot")
	}
	return g.Nodes[0].Title
}

func TestHistoryUndoRedo(t *testing.T) {
	h := NewHistory(10)
	snap(t, h, "one")
	snap(t, h, "two")
	snap(t, h, "three")

	if !h.CanUndo() {
		t.Fatal("CanUndo should be true")
	}
	g, err := h.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := title(t, g); got != "two" {
		t.Errorf("undo = %s, want two", got)
	}

	g, _ = h.Undo()
	if got := title(t, g); got != "one" {
		t.Errorf("second undo = %s, want one", got)
	}
	if h.CanUndo() {
		t.Error("CanUndo at oldest state")
	}
	if g, _ := h.Undo(); g != nil {
		t.Error("Undo past the start should return nil")
	}

	g, _ = h.Redo()
	if got := title(t, g); got != "two" {
		t.Errorf("redo = %s, want two", got)
	}
}

func TestHistoryTruncatesForwardOnSave(t *testing.T) {
	h := NewHistory(10)
	snap(t, h, "one")
	snap(t, h, "two")
	snap(t, h, "three")

	h.Undo()
	h.Undo()
	snap(t, h, "branch")

	if h.CanRedo() {
		t.Error("redo history should be truncated after a new save")
	}
	g, _ := h.Undo()
	if got := title(t, g); got != "one" {
		t.Errorf("undo after branch = %s, want one", got)
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		snap(t, h, fmt.Sprintf("state-%d", i))
	}
	if _, total := h.Stats(); total != 3 {
		t.Errorf("total states = %d, want 3", total)
	}

	// Walk back to the oldest surviving state.
	var last *graph.Graph
	for h.CanUndo() {
		last, _ = h.Undo()
	}
	if got := title(t, last); got != "state-2" {
		t.Errorf("oldest surviving state = %s, want state-2", got)
	}
}

func TestHistorySetMax(t *testing.T) {
	h := NewHistory(10)
	for i := 0; i < 5; i++ {
		snap(t, h, fmt.Sprintf("state-%d", i))
	}

	// Shrinking evicts the oldest states and keeps the cap for new saves.
	h.SetMax(3)
	if _, total := h.Stats(); total != 3 {
		t.Errorf("total after SetMax(3) = %d, want 3", total)
	}
	var last *graph.Graph
	for h.CanUndo() {
		last, _ = h.Undo()
	}
	if got := title(t, last); got != "state-2" {
		t.Errorf("oldest surviving state = %s, want state-2", got)
	}

	snap(t, h, "state-5")
	snap(t, h, "state-6")
	if _, total := h.Stats(); total > 3 {
		t.Errorf("cap not enforced after SetMax: %d states", total)
	}

	// A bogus cap falls back to the default instead of wedging.
	h.SetMax(0)
	if h.max != 50 {
		t.Errorf("SetMax(0) max = %d, want 50", h.max)
	}
}

func TestHistorySnapshotsAreIndependent(t *testing.T) {
	h := NewHistory(10)
	g := &graph.Graph{Nodes: []graph.Node{{ID: "a", Title: "original"}}}
	h.Save(g)
	g.Nodes[0].Title = "mutated"
	h.Save(g)

	prev, _ := h.Undo()
	if got := title(t, prev); got != "original" {
		t.Errorf("snapshot = %s, want original (not aliased to live graph)", got)
	}
}
