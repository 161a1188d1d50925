package graph

import (
	"context"

	"proofcanvas/geometry"
)

// Store is the external collaborator that owns node/edge/block lifecycle.
// The engine proposes mutations through it and never invents or deletes an
// id itself. Implementations return the canonical id for created objects.
type Store interface {
	CreateNode(ctx context.Context, n Node) (id string, err error)
	UpdateNode(ctx context.Context, id string, update NodeUpdate) error
	DeleteNode(ctx context.Context, id string) error

	// BulkMoveNodes commits the final positions of a completed drag in one
	// batch.
	BulkMoveNodes(ctx context.Context, moves map[string]geometry.Point) error

	CreateEdge(ctx context.Context, from, to string, t EdgeType) (id string, err error)
	DeleteEdge(ctx context.Context, id string) error

	CreateBlock(ctx context.Context, name string, nodeIDs []string) (id string, err error)
	DeleteBlock(ctx context.Context, id string) error
}

// NodeUpdate is a partial node mutation; nil fields are left untouched.
type NodeUpdate struct {
	Title   *string
	Content *string
	Formula *string
	Status  *NodeStatus
	X       *float64
	Y       *float64
}

// LayoutEngine assigns canvas positions to an externally supplied node/edge
// set that has not been placed yet.
type LayoutEngine interface {
	// Layout returns a position for every node id. The input is not
	// modified.
	Layout(nodes []Node, edges []Edge) (map[string]geometry.Point, error)

	// Name returns the name of this layout algorithm.
	Name() string
}
