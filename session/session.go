// Package session interprets pointer gestures on the canvas: marquee
// selection, single/multi/group node drags, background panning, and
// connect-by-drag. It is the only writer of node positions and the
// selection set, and emits committed mutations to the collaborator store
// exactly once per completed gesture.
package session

import (
	"proofcanvas/geometry"
	"proofcanvas/route"
)

// State identifies the current gesture of the session state machine.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StateDraggingSingle
	StateDraggingMulti
	StateDraggingGroup
	StatePanning
	StateConnecting
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateDraggingSingle:
		return "dragging-single"
	case StateDraggingMulti:
		return "dragging-multi"
	case StateDraggingGroup:
		return "dragging-group"
	case StatePanning:
		return "panning"
	case StateConnecting:
		return "connecting"
	default:
		return "unknown"
	}
}

// Dragging reports whether the state moves nodes.
func (s State) Dragging() bool {
	return s == StateDraggingSingle || s == StateDraggingMulti || s == StateDraggingGroup
}

// Session is the complete mutable state of one active gesture. Exactly one
// Session value exists per manager; the fields beyond State are only
// meaningful for the states noted on them.
type Session struct {
	State State

	// Pointer tracking, all states. Screen is the last raw pointer
	// position; Canvas is its canvas-space projection at the time of the
	// last update.
	Screen geometry.Point
	Canvas geometry.Point

	// StateSelecting: marquee origin and the selection in force before the
	// gesture, restored on cancel.
	MarqueeOriginScreen geometry.Point
	MarqueeOrigin       geometry.Point
	PrevSelection       []string

	// Dragging states: canvas-space pointer position at gesture start and
	// the captured start position of every dragged member.
	DragOrigin     geometry.Point
	StartPositions map[string]geometry.Point
	PrimaryID      string
	BlockID        string
	Moved          bool

	// StateConnecting.
	SourceID string

	// StatePanning.
	LastScreen geometry.Point
}

// Button identifies which pointer button started an event.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// Pointer is one pointer event in screen space.
type Pointer struct {
	Screen geometry.Point
	Button Button
	Shift  bool
}

// HitKind classifies what a pointer position landed on.
type HitKind int

const (
	HitBackground HitKind = iota
	HitNode
	HitConnectHandle
	HitBlockHandle
)

// Hit is the result of hit-testing a pointer position, returned from
// PointerDown so hosts can anchor context menus.
type Hit struct {
	Kind    HitKind
	NodeID  string
	BlockID string
}

// Surface is the imperative update channel of the rendering host. During a
// gesture the manager writes visual geometry straight through it, bypassing
// the host's normal state-driven render; the authoritative model catches up
// at commit time.
type Surface interface {
	MoveNode(id string, pos geometry.Point)
	SetEdgePath(id string, p route.Path)
	SetBlockBounds(id string, r geometry.Rect)
	SetMarquee(r geometry.Rect, visible bool)
	SetPreviewEdge(p route.Path, visible bool)
}

// NopSurface discards all visual updates. Useful for headless operation
// and tests that only assert on commits.
type NopSurface struct{}

func (NopSurface) MoveNode(string, geometry.Point)        {}
func (NopSurface) SetEdgePath(string, route.Path)         {}
func (NopSurface) SetBlockBounds(string, geometry.Rect)   {}
func (NopSurface) SetMarquee(geometry.Rect, bool)         {}
func (NopSurface) SetPreviewEdge(route.Path, bool)        {}
