package export

import (
	"encoding/json"

	"proofcanvas/graph"
)

// JSONExporter exports the raw graph model.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export converts a graph to indented JSON.
func (e *JSONExporter) Export(g *graph.Graph) (string, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// FormatName returns the format name.
func (e *JSONExporter) FormatName() string {
	return "JSON"
}
