package export

import (
	"encoding/json"
	"strings"
	"testing"

	"proofcanvas/graph"
)

func sampleGraph() *graph.Graph {
	return &graph.Graph{
		Nodes: []graph.Node{
			{ID: "n1", Type: graph.NodeAxiom, Title: "axiom of choice", Status: graph.StatusVerified, X: 0, Y: 0},
			{ID: "n2", Type: graph.NodeTheorem, Title: "well-ordering", Status: graph.StatusProposed, X: 500, Y: 0},
		},
		Edges: []graph.Edge{
			{ID: "e1", From: "n1", To: "n2", Type: graph.EdgeImplies, Label: "Zermelo"},
			{ID: "e2", From: "n1", To: "gone", Type: graph.EdgeUses},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"dot", FormatDOT, false},
		{"graphviz", FormatDOT, false},
		{"gv", FormatDOT, false},
		{"bogus", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewExporter(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatDOT} {
		e, err := NewExporter(f)
		if err != nil || e == nil {
			t.Errorf("NewExporter(%s) = %v, %v", f, e, err)
		}
	}
	if _, err := NewExporter(Format("nope")); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestJSONExportRoundTrips(t *testing.T) {
	out, err := NewJSONExporter().Export(sampleGraph())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	var g graph.Graph
	if err := json.Unmarshal([]byte(out), &g); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(g.Nodes) != 2 || len(g.Edges) != 2 {
		t.Errorf("round trip lost content: %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	}
}

func TestDOTExport(t *testing.T) {
	out, err := NewDOTExporter().Export(sampleGraph())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	for _, want := range []string{
		"digraph proof {",
		"rankdir=LR",
		`label="axiom of choice\n(axiom)"`,
		"color=green",
		"n0 -> n1",
		`label="Zermelo"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// The dangling edge is skipped, so exactly one arrow appears.
	if got := strings.Count(out, "->"); got != 1 {
		t.Errorf("edges rendered = %d, want 1", got)
	}
}

func TestDOTExportRejectsEmpty(t *testing.T) {
	if _, err := NewDOTExporter().Export(&graph.Graph{}); err == nil {
		t.Error("empty graph accepted")
	}
	if _, err := NewDOTExporter().Export(nil); err == nil {
		t.Error("nil graph accepted")
	}
}
