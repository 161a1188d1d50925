package export

import (
	"fmt"
	"strings"

	"proofcanvas/graph"
)

// DOTExporter exports graphs to Graphviz DOT syntax.
type DOTExporter struct{}

// NewDOTExporter creates a new DOT exporter.
func NewDOTExporter() *DOTExporter {
	return &DOTExporter{}
}

// Export converts the graph to Graphviz DOT syntax. Edges with missing
// endpoints are skipped, matching the rendering rule.
func (e *DOTExporter) Export(g *graph.Graph) (string, error) {
	if g == nil {
		return "", fmt.Errorf("graph is nil")
	}
	if len(g.Nodes) == 0 {
		return "", fmt.Errorf("graph has no nodes")
	}

	ids := make(map[string]string, len(g.Nodes))
	var sb strings.Builder

	sb.WriteString("digraph proof {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box, style=rounded];\n\n")

	for i, node := range g.Nodes {
		id := fmt.Sprintf("n%d", i)
		ids[node.ID] = id
		attrs := []string{fmt.Sprintf("label=%q", e.label(node))}
		if a := e.nodeAttrs(node); a != "" {
			attrs = append(attrs, a)
		}
		sb.WriteString(fmt.Sprintf("  %s [%s];\n", id, strings.Join(attrs, ", ")))
	}

	drawable := graph.DrawableEdges(g)
	if len(drawable) > 0 {
		sb.WriteString("\n")
	}
	for _, edge := range drawable {
		attrs := e.edgeAttrs(edge)
		if attrs != "" {
			sb.WriteString(fmt.Sprintf("  %s -> %s [%s];\n", ids[edge.From], ids[edge.To], attrs))
		} else {
			sb.WriteString(fmt.Sprintf("  %s -> %s;\n", ids[edge.From], ids[edge.To]))
		}
	}

	sb.WriteString("}\n")
	return sb.String(), nil
}

func (e *DOTExporter) label(n graph.Node) string {
	label := n.Title
	if label == "" {
		label = string(n.Type)
	}
	if n.Type != "" && n.Title != "" {
		label = fmt.Sprintf("%s\\n(%s)", n.Title, n.Type)
	}
	return label
}

func (e *DOTExporter) nodeAttrs(n graph.Node) string {
	switch n.Status {
	case graph.StatusVerified:
		return "color=green"
	case graph.StatusRejected:
		return "color=red"
	case graph.StatusProposed:
		return "color=blue, style=\"rounded,dashed\""
	default:
		return ""
	}
}

func (e *DOTExporter) edgeAttrs(edge graph.Edge) string {
	var attrs []string
	switch edge.Type {
	case graph.EdgeContradicts:
		attrs = append(attrs, "color=red", "style=dashed")
	case graph.EdgeReferences:
		attrs = append(attrs, "style=dotted")
	case graph.EdgeUses:
		attrs = append(attrs, "arrowhead=open")
	}
	if edge.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", edge.Label))
	}
	return strings.Join(attrs, ", ")
}

// FileExtension returns the file extension for DOT.
func (e *DOTExporter) FileExtension() string {
	return ".dot"
}

// FormatName returns the format name.
func (e *DOTExporter) FormatName() string {
	return "Graphviz DOT"
}
