// Package export converts proof graphs to interchange and image formats.
package export

import (
	"fmt"

	"proofcanvas/graph"
)

// Format represents an export format.
type Format string

const (
	// FormatJSON exports the raw graph model.
	FormatJSON Format = "json"
	// FormatDOT exports Graphviz DOT syntax.
	FormatDOT Format = "dot"
)

// Exporter converts a graph to a text format. PNG export is separate
// because it produces bytes, not text (see RenderPNG).
type Exporter interface {
	// Export converts a graph to the target format.
	Export(g *graph.Graph) (string, error)
	// FileExtension returns the recommended file extension.
	FileExtension() string
	// FormatName returns a human-readable name.
	FormatName() string
}

// NewExporter creates an exporter for the specified format.
func NewExporter(format Format) (Exporter, error) {
	switch format {
	case FormatJSON:
		return NewJSONExporter(), nil
	case FormatDOT:
		return NewDOTExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json":
		return FormatJSON, nil
	case "dot", "graphviz", "gv":
		return FormatDOT, nil
	default:
		return "", fmt.Errorf("unknown format: %s", s)
	}
}
