package editor

import (
	"context"
	"testing"

	"proofcanvas/geometry"
	"proofcanvas/graph"
	"proofcanvas/session"
	"proofcanvas/store"
	"proofcanvas/viewport"
)

func pt(x, y float64) geometry.Point { return geometry.Point{X: x, Y: y} }

func seedGraph() *graph.Graph {
	return &graph.Graph{
		Nodes: []graph.Node{
			{ID: "n1", Title: "lemma", X: 100, Y: 100, Width: 200, Height: 100},
			{ID: "n2", Title: "theorem", X: 600, Y: 100, Width: 200, Height: 100},
		},
		Edges: []graph.Edge{
			{ID: "e1", From: "n1", To: "n2", Type: graph.EdgeImplies},
		},
		Blocks: []graph.Block{
			{ID: "blk", Name: "base", NodeIDs: []string{"n1", "n2"}},
		},
	}
}

func testEditor() (*Editor, *store.MemStore) {
	g := seedGraph()
	st := store.NewMemStore(g)
	view := viewport.New(800, 600)
	ed := New(g, view, st, session.NopSurface{}, nil)
	return ed, st
}

func TestCreateNodeMirrorsStoreID(t *testing.T) {
	ed, st := testEditor()
	ctx := context.Background()

	id, err := ed.CreateNode(ctx, graph.Node{Type: graph.NodeLemma, Title: "new", X: 10, Y: 20})
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if id == "" {
		t.Fatal("store did not mint an id")
	}
	n := ed.Graph.NodeByID(id)
	if n == nil {
		t.Fatal("created node missing from model")
	}
	if n.Status != graph.StatusDraft {
		t.Errorf("status = %s, want DRAFT default", n.Status)
	}
	if st.Snapshot().NodeByID(id) == nil {
		t.Error("created node missing from store")
	}
}

func TestDeleteSelectionEdgeHasPriority(t *testing.T) {
	ed, st := testEditor()
	ctx := context.Background()

	ed.Sess.SetSelection([]string{"n1"})
	ed.SelectedEdge = "e1"

	if err := ed.DeleteSelection(ctx); err != nil {
		t.Fatalf("DeleteSelection: %v", err)
	}

	// The edge goes; its endpoints and their positions stay.
	if ed.Graph.EdgeByID("e1") != nil {
		t.Error("edge survived delete")
	}
	for _, id := range []string{"n1", "n2"} {
		if ed.Graph.NodeByID(id) == nil {
			t.Errorf("node %s deleted along with the edge", id)
		}
	}
	if n := st.Snapshot().NodeByID("n1"); n == nil || n.X != 100 {
		t.Error("node position disturbed by edge delete")
	}
	if ed.SelectedEdge != "" {
		t.Error("SelectedEdge not cleared")
	}
}

func TestDeleteSelectionNodes(t *testing.T) {
	ed, _ := testEditor()
	ctx := context.Background()

	ed.Sess.SetSelection([]string{"n1"})
	if err := ed.DeleteSelection(ctx); err != nil {
		t.Fatalf("DeleteSelection: %v", err)
	}

	if ed.Graph.NodeByID("n1") != nil {
		t.Error("node survived delete")
	}
	// The edge stays as a dangling entry and is simply not drawable.
	if ed.Graph.EdgeByID("e1") == nil {
		t.Error("dangling edge was purged from the model")
	}
	if len(graph.DrawableEdges(ed.Graph)) != 0 {
		t.Error("dangling edge still drawable")
	}
	// The block shrinks to its surviving members.
	if b := ed.Graph.BlockByID("blk"); b == nil || len(b.NodeIDs) != 1 || b.NodeIDs[0] != "n2" {
		t.Errorf("block members = %v, want [n2]", ed.Graph.BlockByID("blk"))
	}
	if len(ed.Sess.Selection()) != 0 {
		t.Error("selection not cleared after delete")
	}
}

func TestUndoRedoCreate(t *testing.T) {
	ed, st := testEditor()
	ctx := context.Background()

	id, err := ed.CreateNode(ctx, graph.Node{Type: graph.NodeRemark, Title: "note"})
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}

	if err := ed.Undo(ctx); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if ed.Graph.NodeByID(id) != nil {
		t.Error("undo left the created node in the model")
	}
	if st.Snapshot().NodeByID(id) != nil {
		t.Error("undo left the created node in the store")
	}

	if err := ed.Redo(ctx); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	// The store mints a fresh id on recreate; find the node by title.
	var found *graph.Node
	for i := range ed.Graph.Nodes {
		if ed.Graph.Nodes[i].Title == "note" {
			found = &ed.Graph.Nodes[i]
		}
	}
	if found == nil {
		t.Fatal("redo did not restore the node")
	}
	if found.ID == id {
		t.Error("recreated node kept the stale id")
	}
	if st.Snapshot().NodeByID(found.ID) == nil {
		t.Error("recreated node missing from store")
	}
}

func TestUndoRestoresPositionsAfterDrag(t *testing.T) {
	ed, st := testEditor()
	ctx := context.Background()

	// A committed drag through the pointer pipeline snapshots history.
	ed.PointerDown(session.Pointer{Screen: pt(150, 150), Button: session.ButtonLeft})
	ed.PointerMove(session.Pointer{Screen: pt(250, 180), Button: session.ButtonLeft})
	ed.PointerUp(ctx, session.Pointer{Screen: pt(250, 180)})

	if n := ed.Graph.NodeByID("n1"); n.X != 200 || n.Y != 130 {
		t.Fatalf("drag did not commit: (%v, %v)", n.X, n.Y)
	}

	if err := ed.Undo(ctx); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if n := ed.Graph.NodeByID("n1"); n.X != 100 || n.Y != 100 {
		t.Errorf("undo position = (%v, %v), want (100, 100)", n.X, n.Y)
	}
	if n := st.Snapshot().NodeByID("n1"); n.X != 100 || n.Y != 100 {
		t.Errorf("store position after undo = (%v, %v)", n.X, n.Y)
	}

	if err := ed.Redo(ctx); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if n := ed.Graph.NodeByID("n1"); n.X != 200 || n.Y != 130 {
		t.Errorf("redo position = (%v, %v), want (200, 130)", n.X, n.Y)
	}
}

func TestGroupFlow(t *testing.T) {
	ed, st := testEditor()
	ctx := context.Background()

	if _, ok := ed.ProposeGroup(); ok {
		t.Error("empty selection should not propose")
	}

	ed.Sess.SetSelection([]string{"n1", "n2"})
	anchor, ok := ed.ProposeGroup()
	if !ok {
		t.Fatal("proposal rejected")
	}
	if !ed.GroupPending() {
		t.Fatal("no pending proposal")
	}
	if anchor.X == 0 && anchor.Y == 0 {
		t.Error("anchor not derived from member hull")
	}

	id, err := ed.ConfirmGroup(ctx, "cases")
	if err != nil {
		t.Fatalf("ConfirmGroup: %v", err)
	}
	if ed.GroupPending() {
		t.Error("proposal still pending after confirm")
	}
	b := ed.Graph.BlockByID(id)
	if b == nil || b.Name != "cases" || len(b.NodeIDs) != 2 {
		t.Errorf("block = %+v", b)
	}
	if st.Snapshot().BlockByID(id) == nil {
		t.Error("block missing from store")
	}

	// Confirming again without a proposal fails.
	if _, err := ed.ConfirmGroup(ctx, "again"); err == nil {
		t.Error("confirm without proposal should fail")
	}
}

func TestCancelGroupEmitsNothing(t *testing.T) {
	ed, st := testEditor()

	ed.Sess.SetSelection([]string{"n1"})
	ed.ProposeGroup()
	ed.CancelGroup()

	if ed.GroupPending() {
		t.Error("proposal still pending after cancel")
	}
	if len(st.Snapshot().Blocks) != 1 {
		t.Error("cancel created a block")
	}
}

func TestMaterializeSubgraph(t *testing.T) {
	ed, _ := testEditor()
	ctx := context.Background()

	nodes := []graph.Node{
		{ID: "p1", Type: graph.NodeAxiom, Title: "axiom"},
		{ID: "p2", Type: graph.NodeLemma, Title: "step"},
	}
	edges := []graph.Edge{
		{From: "p1", To: "p2"},
		{From: "p1", To: "ghost"}, // unmapped endpoint, skipped
		{From: "p2", To: "p2"},    // self edge, skipped
	}

	if err := ed.MaterializeSubgraph(ctx, nodes, edges); err != nil {
		t.Fatalf("MaterializeSubgraph: %v", err)
	}

	if len(ed.Graph.Nodes) != 4 {
		t.Fatalf("nodes = %d, want 4", len(ed.Graph.Nodes))
	}
	var axiom, step *graph.Node
	for i := range ed.Graph.Nodes {
		switch ed.Graph.Nodes[i].Title {
		case "axiom":
			axiom = &ed.Graph.Nodes[i]
		case "step":
			step = &ed.Graph.Nodes[i]
		}
	}
	if axiom == nil || step == nil {
		t.Fatal("materialized nodes missing")
	}
	if axiom.ID == "p1" || step.ID == "p2" {
		t.Error("proposed ids leaked into the model")
	}
	// The layered layout assigns columns.
	if axiom.X >= step.X {
		t.Errorf("layout columns: axiom %v, step %v", axiom.X, step.X)
	}

	if len(ed.Graph.Edges) != 2 {
		t.Fatalf("edges = %d, want original plus one materialized", len(ed.Graph.Edges))
	}
	created := ed.Graph.Edges[1]
	if created.From != axiom.ID || created.To != step.ID {
		t.Errorf("edge endpoints = %s -> %s, want canonical ids", created.From, created.To)
	}
	if created.Type != graph.EdgeImplies {
		t.Errorf("default edge type = %s", created.Type)
	}
}

func TestUpdateNodeTitle(t *testing.T) {
	ed, st := testEditor()
	if err := ed.UpdateNodeTitle(context.Background(), "n1", "renamed"); err != nil {
		t.Fatalf("UpdateNodeTitle: %v", err)
	}
	if ed.Graph.NodeByID("n1").Title != "renamed" {
		t.Error("model title unchanged")
	}
	if st.Snapshot().NodeByID("n1").Title != "renamed" {
		t.Error("store title unchanged")
	}
}

func TestDeleteBlockKeepsMembers(t *testing.T) {
	ed, _ := testEditor()
	if err := ed.DeleteBlock(context.Background(), "blk"); err != nil {
		t.Fatalf("DeleteBlock: %v", err)
	}
	if ed.Graph.BlockByID("blk") != nil {
		t.Error("block survived delete")
	}
	if ed.Graph.NodeByID("n1") == nil || ed.Graph.NodeByID("n2") == nil {
		t.Error("ungrouping deleted member nodes")
	}
}

func TestHandleKeyTools(t *testing.T) {
	ed, _ := testEditor()
	ctx := context.Background()

	handled, err := ed.HandleKey(ctx, Key{Rune: 'h'})
	if !handled || err != nil {
		t.Fatalf("HandleKey(h) = %v, %v", handled, err)
	}
	if ed.Sess.Tool() != session.ToolHand {
		t.Error("h did not switch to hand tool")
	}

	ed.HandleKey(ctx, Key{Rune: 'v'})
	if ed.Sess.Tool() != session.ToolSelect {
		t.Error("v did not switch back to select tool")
	}

	if handled, _ := ed.HandleKey(ctx, Key{Rune: 'x'}); handled {
		t.Error("unbound key reported handled")
	}
}

func TestHandleKeyNewNode(t *testing.T) {
	ed, _ := testEditor()

	handled, err := ed.HandleKey(context.Background(), Key{Rune: 'n'})
	if !handled || err != nil {
		t.Fatalf("HandleKey(n) = %v, %v", handled, err)
	}
	sel := ed.Sess.Selection()
	if len(sel) != 1 {
		t.Fatalf("selection = %v, want the fresh node", sel)
	}
	n := ed.Graph.NodeByID(sel[0])
	if n == nil || n.Status != graph.StatusEditing || n.Type != graph.NodeConjecture {
		t.Errorf("fresh node = %+v", n)
	}
	// Centered under the default transform: view center (400, 300) minus
	// half a default card.
	if n.X != 400-graph.DefaultNodeWidth/2 || n.Y != 300-graph.DefaultNodeHeight/2 {
		t.Errorf("fresh node position = (%v, %v)", n.X, n.Y)
	}

	// The host collects the title through the pending-edit handoff.
	if got := ed.TakePendingEdit(); got != sel[0] {
		t.Errorf("TakePendingEdit = %q, want %q", got, sel[0])
	}
	if got := ed.TakePendingEdit(); got != "" {
		t.Errorf("pending edit not cleared: %q", got)
	}
}

func TestCommitNodeTitle(t *testing.T) {
	ed, _ := testEditor()
	ctx := context.Background()

	ed.HandleKey(ctx, Key{Rune: 'n'})
	id := ed.TakePendingEdit()
	if id == "" {
		t.Fatal("no pending edit after n")
	}

	if err := ed.CommitNodeTitle(ctx, id, "Goldbach"); err != nil {
		t.Fatalf("CommitNodeTitle: %v", err)
	}
	n := ed.Graph.NodeByID(id)
	if n == nil || n.Title != "Goldbach" || n.Status != graph.StatusDraft {
		t.Errorf("node after title commit = %+v", n)
	}
}

func TestCommitNodeTitleEmptyLeavesDraft(t *testing.T) {
	ed, st := testEditor()
	ctx := context.Background()

	ed.HandleKey(ctx, Key{Rune: 'n'})
	id := ed.TakePendingEdit()

	// An abandoned prompt still clears the editing status.
	if err := ed.CommitNodeTitle(ctx, id, ""); err != nil {
		t.Fatalf("CommitNodeTitle: %v", err)
	}
	if n := ed.Graph.NodeByID(id); n == nil || n.Status != graph.StatusDraft {
		t.Errorf("node after empty commit = %+v", n)
	}
	if n := st.Snapshot().NodeByID(id); n == nil || n.Status != graph.StatusDraft {
		t.Errorf("store node after empty commit = %+v", n)
	}
}

func TestHandleKeyUndoChord(t *testing.T) {
	ed, _ := testEditor()
	ctx := context.Background()

	id, _ := ed.CreateNode(ctx, graph.Node{Title: "temp"})
	handled, err := ed.HandleKey(ctx, Key{Rune: 'z', Ctrl: true})
	if !handled || err != nil {
		t.Fatalf("ctrl+z = %v, %v", handled, err)
	}
	if ed.Graph.NodeByID(id) != nil {
		t.Error("ctrl+z did not undo the create")
	}
}
