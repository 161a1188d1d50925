package collab

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"proofcanvas/graph"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitPeers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Peers() != want {
		if time.Now().After(deadline) {
			t.Fatalf("peers = %d, want %d", hub.Peers(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastsToOtherPeers(t *testing.T) {
	hub, url := startHub(t)

	alice, err := Dial(url)
	if err != nil {
		t.Fatalf("dial alice: %v", err)
	}
	defer alice.Close()
	bob, err := Dial(url)
	if err != nil {
		t.Fatalf("dial bob: %v", err)
	}
	defer bob.Close()
	waitPeers(t, hub, 2)

	sent := graph.Cursor{ID: "alice", Name: "Alice", Color: "#f00", X: 120, Y: 340}
	if err := alice.Send(sent); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case got := <-bob.Cursors:
		if got != sent {
			t.Errorf("bob received %+v, want %+v", got, sent)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("bob never received the cursor")
	}

	// The sender does not hear its own update.
	select {
	case got := <-alice.Cursors:
		t.Errorf("alice received her own cursor: %+v", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubDropsInvalidPayloads(t *testing.T) {
	hub, url := startHub(t)

	sender, err := Dial(url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer sender.Close()
	receiver, err := Dial(url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer receiver.Close()
	waitPeers(t, hub, 2)

	// A cursor with no id is rejected at the hub; a valid one after it
	// still arrives.
	if err := sender.Send(graph.Cursor{Name: "anon"}); err != nil {
		t.Fatalf("send invalid: %v", err)
	}
	valid := graph.Cursor{ID: "c1", Name: "ok"}
	if err := sender.Send(valid); err != nil {
		t.Fatalf("send valid: %v", err)
	}

	select {
	case got := <-receiver.Cursors:
		if got.ID != "c1" {
			t.Errorf("received %+v, want the valid cursor", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("valid cursor never arrived")
	}
}

func TestHubForgetsDisconnectedPeers(t *testing.T) {
	hub, url := startHub(t)

	c, err := Dial(url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitPeers(t, hub, 1)

	c.Close()
	waitPeers(t, hub, 0)
}

func TestClientSendAfterClose(t *testing.T) {
	_, url := startHub(t)

	c, err := Dial(url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	c.Close()
	if err := c.Send(graph.Cursor{ID: "x"}); err == nil {
		t.Error("send on closed client succeeded")
	}
}
