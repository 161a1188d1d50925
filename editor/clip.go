package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"

	"proofcanvas/graph"
)

// Paste placement constants: a fixed offset from the source position plus
// a per-item stagger so multiple pasted items never overlap exactly.
const (
	PasteOffset  = 40.0
	PasteStagger = 12.0
)

// clipPayload is the JSON shape copied to the system clipboard.
type clipPayload struct {
	Nodes []graph.Node `json:"nodes"`
}

// Copy writes the selected nodes to the system clipboard as JSON.
func (e *Editor) Copy() error {
	sel := e.Sess.Selection()
	if len(sel) == 0 {
		return nil
	}
	payload := clipPayload{}
	for _, id := range sel {
		if n := e.Graph.NodeByID(id); n != nil {
			payload.Nodes = append(payload.Nodes, *n)
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return clipboard.WriteAll(string(data))
}

// Paste reads node JSON from the system clipboard and creates copies
// offset by PasteOffset plus a per-item stagger. Clipboard content that is
// not a node payload is ignored.
func (e *Editor) Paste(ctx context.Context) error {
	text, err := clipboard.ReadAll()
	if err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	var payload clipPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil || len(payload.Nodes) == 0 {
		return nil
	}

	var created []string
	for i, n := range payload.Nodes {
		n.ID = ""
		n.Status = graph.StatusDraft
		stagger := PasteStagger * float64(i)
		n.X += PasteOffset + stagger
		n.Y += PasteOffset + stagger
		// Dependencies point at the originals; the copies stand alone.
		n.Dependencies = nil
		id, err := e.store.CreateNode(ctx, n)
		if err != nil {
			return fmt.Errorf("paste node %q: %w", n.Title, err)
		}
		n.ID = id
		e.Graph.Nodes = append(e.Graph.Nodes, n)
		created = append(created, id)
	}
	e.Sess.SetSelection(created)
	e.Checkpoint()
	return nil
}

// PasteImages creates one resource node per pasted image file, anchored
// near the last known pointer position and staggered to avoid exact
// overlap.
func (e *Editor) PasteImages(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return nil
	}
	anchor := e.lastPointer
	var created []string
	for i, file := range files {
		title := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		stagger := PasteStagger * float64(i)
		id, err := e.store.CreateNode(ctx, graph.Node{
			Type:    graph.NodeResource,
			Title:   title,
			Content: file,
			Status:  graph.StatusDraft,
			X:       anchor.X + stagger,
			Y:       anchor.Y + stagger,
		})
		if err != nil {
			return fmt.Errorf("paste image %s: %w", file, err)
		}
		e.Graph.Nodes = append(e.Graph.Nodes, graph.Node{
			ID: id, Type: graph.NodeResource, Title: title, Content: file,
			Status: graph.StatusDraft,
			X:      anchor.X + stagger, Y: anchor.Y + stagger,
		})
		created = append(created, id)
	}
	e.Sess.SetSelection(created)
	e.Checkpoint()
	return nil
}
