package collab

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"proofcanvas/graph"
)

// Client connects one canvas instance to a cursor hub. Remote cursor
// updates arrive on Cursors; local updates go out through Send.
type Client struct {
	conn *websocket.Conn

	// Cursors delivers remote cursor updates. Closed when the connection
	// drops.
	Cursors chan graph.Cursor

	writeMu sync.Mutex
	closed  bool
}

// Dial connects to a hub at the given websocket URL, e.g.
// ws://host:port/cursors.
func Dial(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial cursor hub: %w", err)
	}
	c := &Client{conn: conn, Cursors: make(chan graph.Cursor, sendQueue)}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.Cursors)
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var cur graph.Cursor
		if err := json.Unmarshal(msg, &cur); err != nil {
			continue
		}
		select {
		case c.Cursors <- cur:
		default:
			// Stale position; the next update supersedes it.
		}
	}
}

// Send broadcasts the local cursor position.
func (c *Client) Send(cur graph.Cursor) error {
	data, err := json.Marshal(cur)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return fmt.Errorf("cursor client closed")
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close terminates the connection.
func (c *Client) Close() error {
	c.writeMu.Lock()
	c.closed = true
	c.writeMu.Unlock()
	return c.conn.Close()
}
