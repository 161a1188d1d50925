// Package collab broadcasts ephemeral collaborator cursors between canvas
// instances over websockets. Cursor traffic is fire-and-forget: nothing
// here is persisted, and a slow peer is dropped rather than buffered
// indefinitely.
package collab

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"proofcanvas/graph"
)

// Fan-out limits: cursor updates above this rate are coalesced by
// dropping, which is harmless for a position stream.
const (
	broadcastRate  = rate.Limit(30) // updates per second per peer
	broadcastBurst = 10
	sendQueue      = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cursor broadcast is same-deployment traffic.
	CheckOrigin: func(*http.Request) bool { return true },
}

type peer struct {
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
}

// Hub relays cursor updates between connected peers.
type Hub struct {
	log *slog.Logger

	mu    sync.Mutex
	peers map[*peer]bool
}

// NewHub creates an empty cursor hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{log: log, peers: make(map[*peer]bool)}
}

// ServeHTTP upgrades the request to a websocket and joins the peer to the
// hub until its connection drops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("cursor upgrade failed", slog.String("error", err.Error()))
		return
	}
	p := &peer{
		conn:    conn,
		send:    make(chan []byte, sendQueue),
		limiter: rate.NewLimiter(broadcastRate, broadcastBurst),
	}
	h.mu.Lock()
	h.peers[p] = true
	n := len(h.peers)
	h.mu.Unlock()
	h.log.Info("cursor peer joined", slog.Int("peers", n))

	go h.writeLoop(p)
	h.readLoop(p)
}

func (h *Hub) readLoop(p *peer) {
	defer h.drop(p)
	for {
		_, msg, err := p.conn.ReadMessage()
		if err != nil {
			return
		}
		// Validate before fan-out; garbage from one peer must not reach
		// the others.
		var c graph.Cursor
		if err := json.Unmarshal(msg, &c); err != nil || c.ID == "" {
			continue
		}
		h.broadcast(p, msg)
	}
}

func (h *Hub) writeLoop(p *peer) {
	for msg := range p.send {
		if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (h *Hub) broadcast(from *peer, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for p := range h.peers {
		if p == from {
			continue
		}
		if !p.limiter.Allow() {
			continue
		}
		select {
		case p.send <- msg:
		default:
			// Full queue: drop the update, a newer one follows.
		}
	}
}

func (h *Hub) drop(p *peer) {
	h.mu.Lock()
	if h.peers[p] {
		delete(h.peers, p)
		close(p.send)
	}
	n := len(h.peers)
	h.mu.Unlock()
	p.conn.Close()
	h.log.Info("cursor peer left", slog.Int("peers", n))
}

// Peers returns the current number of connected peers.
func (h *Hub) Peers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// ListenAndServe runs a standalone hub server until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, log *slog.Logger) error {
	hub := NewHub(log)
	mux := http.NewServeMux()
	mux.Handle("/cursors", hub)
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
