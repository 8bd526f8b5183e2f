// ABOUTME: Websocket hub that tells connected editor pages to reload their preview frame.
// ABOUTME: Implements preview.Surface; dead or slow clients are dropped, never retried.
package editor

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait is how long a broadcast waits on a single client before the
// client is considered dead.
const writeWait = 5 * time.Second

// reloadMessage is pushed to every connected client after a render completes.
// The client responds by refetching the preview document.
type reloadMessage struct {
	Type     string `json:"type"`
	Revision uint64 `json:"rev"`
}

// Hub fans render notifications out to the websocket clients of one session.
// It is the session scheduler's render surface: SetContent is called with
// each newly composed document, at most once per debounce quiet period.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
	rev   uint64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]bool)}
}

// SetContent implements preview.Surface. The document itself is not pushed
// over the socket; clients refetch it so the iframe and a late-joining tab
// always read the same bytes from the same endpoint.
func (h *Hub) SetContent(string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.rev++
	msg := reloadMessage{Type: "reload", Revision: h.rev}
	for conn := range h.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			_ = conn.Close()
			delete(h.conns, conn)
		}
	}
}

// Add registers a client connection.
func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = true
}

// Remove drops a client connection.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[conn] {
		delete(h.conns, conn)
		_ = conn.Close()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.Close()
		delete(h.conns, conn)
	}
}
