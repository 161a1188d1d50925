// Package store provides collaborator-store implementations the engine
// commits mutations to: an in-memory store that mints canonical ids, and a
// JSON file store that persists every committed change and follows
// external edits.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"proofcanvas/geometry"
	"proofcanvas/graph"
)

// MemStore is an in-process collaborator store. It owns the authoritative
// graph and mints UUIDs for created objects.
type MemStore struct {
	mu sync.Mutex
	g  graph.Graph
}

// NewMemStore creates a store seeded with the given graph. A nil seed
// starts empty.
func NewMemStore(seed *graph.Graph) *MemStore {
	s := &MemStore{}
	if seed != nil {
		s.g = *seed.Clone()
	}
	return s
}

// Snapshot returns a deep copy of the authoritative graph.
func (s *MemStore) Snapshot() *graph.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Clone()
}

// CreateNode mints an id for the node and stores it.
func (s *MemStore) CreateNode(_ context.Context, n graph.Node) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = uuid.NewString()
	if n.Status == "" {
		n.Status = graph.StatusDraft
	}
	s.g.Nodes = append(s.g.Nodes, n)
	return n.ID, nil
}

// UpdateNode applies a partial update to a node.
func (s *MemStore) UpdateNode(_ context.Context, id string, update graph.NodeUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.g.NodeByID(id)
	if n == nil {
		return fmt.Errorf("update node %s: %w", id, graph.ErrUnknownNode)
	}
	if update.Title != nil {
		n.Title = *update.Title
	}
	if update.Content != nil {
		n.Content = *update.Content
	}
	if update.Formula != nil {
		n.Formula = *update.Formula
	}
	if update.Status != nil {
		n.Status = *update.Status
	}
	if update.X != nil {
		n.X = *update.X
	}
	if update.Y != nil {
		n.Y = *update.Y
	}
	return nil
}

// DeleteNode removes a node. Edges referencing it remain as dangling
// entries; rendering skips them.
func (s *MemStore) DeleteNode(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.g.Nodes {
		if n.ID == id {
			s.g.Nodes = append(s.g.Nodes[:i], s.g.Nodes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete node %s: %w", id, graph.ErrUnknownNode)
}

// BulkMoveNodes commits final positions for a completed drag in one batch.
// Unknown ids are rejected before any position changes.
func (s *MemStore) BulkMoveNodes(_ context.Context, moves map[string]geometry.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range moves {
		if s.g.NodeByID(id) == nil {
			return fmt.Errorf("move node %s: %w", id, graph.ErrUnknownNode)
		}
	}
	for id, pos := range moves {
		n := s.g.NodeByID(id)
		n.X, n.Y = pos.X, pos.Y
	}
	return nil
}

// CreateEdge mints an id for a new edge. Self-referential requests are
// rejected.
func (s *MemStore) CreateEdge(_ context.Context, from, to string, t graph.EdgeType) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from == to {
		return "", graph.ErrSelfEdge
	}
	if s.g.NodeByID(from) == nil {
		return "", fmt.Errorf("edge source %s: %w", from, graph.ErrUnknownNode)
	}
	if s.g.NodeByID(to) == nil {
		return "", fmt.Errorf("edge target %s: %w", to, graph.ErrUnknownNode)
	}
	id := uuid.NewString()
	s.g.Edges = append(s.g.Edges, graph.Edge{ID: id, From: from, To: to, Type: t})
	return id, nil
}

// DeleteEdge removes a single edge; endpoints are untouched.
func (s *MemStore) DeleteEdge(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.g.Edges {
		if e.ID == id {
			s.g.Edges = append(s.g.Edges[:i], s.g.Edges[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete edge %s: not found", id)
}

// CreateBlock mints an id for a new named group.
func (s *MemStore) CreateBlock(_ context.Context, name string, nodeIDs []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(nodeIDs) == 0 {
		return "", fmt.Errorf("create block %q: empty member set", name)
	}
	id := uuid.NewString()
	s.g.Blocks = append(s.g.Blocks, graph.Block{
		ID: id, Name: name, NodeIDs: append([]string(nil), nodeIDs...),
	})
	return id, nil
}

// DeleteBlock removes a group; member nodes are untouched.
func (s *MemStore) DeleteBlock(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.g.Blocks {
		if b.ID == id {
			s.g.Blocks = append(s.g.Blocks[:i], s.g.Blocks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete block %s: not found", id)
}

var _ graph.Store = (*MemStore)(nil)
