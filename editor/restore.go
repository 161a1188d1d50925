package editor

import (
	"context"
	"fmt"

	"proofcanvas/geometry"
	"proofcanvas/graph"
)

// restore replays the difference between the live graph and a history
// snapshot to the store, then swaps the snapshot in as the new model.
//
// The store owns id minting, so objects that have to be recreated come
// back under new canonical ids; the snapshot is rewritten onto those ids
// before it becomes the model.
func (e *Editor) restore(ctx context.Context, target *graph.Graph) error {
	current := e.Graph

	currentNodes := make(map[string]graph.Node, len(current.Nodes))
	for _, n := range current.Nodes {
		currentNodes[n.ID] = n
	}
	targetNodes := make(map[string]graph.Node, len(target.Nodes))
	for _, n := range target.Nodes {
		targetNodes[n.ID] = n
	}

	// Nodes present now but absent in the snapshot.
	for id := range currentNodes {
		if _, ok := targetNodes[id]; !ok {
			if err := e.store.DeleteNode(ctx, id); err != nil {
				return fmt.Errorf("undo delete node %s: %w", id, err)
			}
		}
	}

	// Nodes in the snapshot that no longer exist come back under fresh
	// ids.
	remap := make(map[string]string, len(target.Nodes))
	for i := range target.Nodes {
		n := &target.Nodes[i]
		old := n.ID
		if _, ok := currentNodes[old]; ok {
			remap[old] = old
			continue
		}
		fresh := *n
		fresh.ID = ""
		id, err := e.store.CreateNode(ctx, fresh)
		if err != nil {
			return fmt.Errorf("undo recreate node %q: %w", n.Title, err)
		}
		remap[old] = id
		n.ID = id
	}

	// Rewrite dependency lists onto the new ids.
	for i := range target.Nodes {
		for j, dep := range target.Nodes[i].Dependencies {
			if mapped, ok := remap[dep]; ok {
				target.Nodes[i].Dependencies[j] = mapped
			}
		}
	}

	// Surviving nodes whose position differs move in one batch.
	moves := make(map[string]geometry.Point)
	for _, n := range target.Nodes {
		if cur, ok := currentNodes[n.ID]; ok && (cur.X != n.X || cur.Y != n.Y) {
			moves[n.ID] = geometry.Point{X: n.X, Y: n.Y}
		}
	}
	if len(moves) > 0 {
		if err := e.store.BulkMoveNodes(ctx, moves); err != nil {
			return fmt.Errorf("undo move: %w", err)
		}
	}

	if err := e.restoreEdges(ctx, current, target, remap); err != nil {
		return err
	}
	if err := e.restoreBlocks(ctx, current, target, remap); err != nil {
		return err
	}

	*e.Graph = *target
	e.Sess.ClearSelection()
	e.SelectedEdge = ""
	return nil
}

func (e *Editor) restoreEdges(ctx context.Context, current, target *graph.Graph, remap map[string]string) error {
	targetEdges := make(map[string]bool, len(target.Edges))
	for _, edge := range target.Edges {
		targetEdges[edge.ID] = true
	}
	currentEdges := make(map[string]bool, len(current.Edges))
	for _, edge := range current.Edges {
		currentEdges[edge.ID] = true
		if !targetEdges[edge.ID] {
			if err := e.store.DeleteEdge(ctx, edge.ID); err != nil {
				return fmt.Errorf("undo delete edge %s: %w", edge.ID, err)
			}
		}
	}

	for i := range target.Edges {
		edge := &target.Edges[i]
		if mapped, ok := remap[edge.From]; ok {
			edge.From = mapped
		}
		if mapped, ok := remap[edge.To]; ok {
			edge.To = mapped
		}
		if currentEdges[edge.ID] {
			continue
		}
		if edge.From == edge.To {
			continue
		}
		id, err := e.store.CreateEdge(ctx, edge.From, edge.To, edge.Type)
		if err != nil {
			return fmt.Errorf("undo recreate edge %s->%s: %w", edge.From, edge.To, err)
		}
		edge.ID = id
	}
	return nil
}

func (e *Editor) restoreBlocks(ctx context.Context, current, target *graph.Graph, remap map[string]string) error {
	targetBlocks := make(map[string]bool, len(target.Blocks))
	for _, b := range target.Blocks {
		targetBlocks[b.ID] = true
	}
	currentBlocks := make(map[string]bool, len(current.Blocks))
	for _, b := range current.Blocks {
		currentBlocks[b.ID] = true
		if !targetBlocks[b.ID] {
			if err := e.store.DeleteBlock(ctx, b.ID); err != nil {
				return fmt.Errorf("undo delete block %s: %w", b.ID, err)
			}
		}
	}

	for i := range target.Blocks {
		b := &target.Blocks[i]
		for j, id := range b.NodeIDs {
			if mapped, ok := remap[id]; ok {
				b.NodeIDs[j] = mapped
			}
		}
		if currentBlocks[b.ID] {
			continue
		}
		id, err := e.store.CreateBlock(ctx, b.Name, b.NodeIDs)
		if err != nil {
			return fmt.Errorf("undo recreate block %q: %w", b.Name, err)
		}
		b.ID = id
	}
	return nil
}
