package editor

import (
	"encoding/json"

	"proofcanvas/graph"
)

// History manages undo/redo over JSON snapshots of the graph.
type History struct {
	states  []string // JSON states
	current int      // Current position in history
	max     int      // Maximum number of states to keep
}

// NewHistory creates a history manager keeping up to max states.
func NewHistory(max int) *History {
	if max <= 0 {
		max = 50
	}
	return &History{
		states:  make([]string, 0, max),
		current: -1,
		max:     max,
	}
}

// SetMax changes the snapshot cap, evicting the oldest states when the
// history already holds more.
func (h *History) SetMax(max int) {
	if max <= 0 {
		max = 50
	}
	h.max = max
	if over := len(h.states) - max; over > 0 {
		h.states = h.states[over:]
		h.current -= over
		if h.current < 0 {
			h.current = 0
		}
	}
}

// Save snapshots the current graph state.
func (h *History) Save(g *graph.Graph) error {
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}

	// If we're not at the end, truncate everything after current.
	if h.current < len(h.states)-1 {
		h.states = h.states[:h.current+1]
	}

	h.states = append(h.states, string(data))

	// If we exceed max, remove oldest.
	if len(h.states) > h.max {
		h.states = h.states[1:]
	} else {
		h.current++
	}

	return nil
}

// CanUndo returns true if an earlier state exists.
func (h *History) CanUndo() bool {
	return h.current > 0
}

// CanRedo returns true if a later state exists.
func (h *History) CanRedo() bool {
	return h.current < len(h.states)-1
}

// Undo returns the previous state, or nil when there is none.
func (h *History) Undo() (*graph.Graph, error) {
	if !h.CanUndo() {
		return nil, nil
	}
	h.current--
	return h.load()
}

// Redo returns the next state, or nil when there is none.
func (h *History) Redo() (*graph.Graph, error) {
	if !h.CanRedo() {
		return nil, nil
	}
	h.current++
	return h.load()
}

func (h *History) load() (*graph.Graph, error) {
	var g graph.Graph
	if err := json.Unmarshal([]byte(h.states[h.current]), &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Clear drops all history.
func (h *History) Clear() {
	h.states = h.states[:0]
	h.current = -1
}

// Stats returns current position and total states.
func (h *History) Stats() (current, total int) {
	return h.current + 1, len(h.states)
}
