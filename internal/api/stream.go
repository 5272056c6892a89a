package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/guardian-sim/internal/sim"
)

const (
	streamWriteWait  = 5 * time.Second
	streamSendBuffer = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Cross-origin policy is enforced by the CORS layer; the websocket
	// itself accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// hub fans one snapshot out to every connected stream client. Clients that
// cannot keep up are dropped rather than allowed to stall the engine.
type hub struct {
	mu      sync.Mutex
	clients map[*streamClient]struct{}
}

type streamClient struct {
	conn *websocket.Conn
	send chan sim.Snapshot
}

func newHub() *hub {
	return &hub{clients: make(map[*streamClient]struct{})}
}

func (h *hub) add(c *streamClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(c *streamClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *hub) broadcast(snap sim.Snapshot) {
	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- snap:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
	h.mu.Unlock()
}

// handleStream upgrades GET /api/v1/stream to a websocket. The client gets
// the current state immediately and a fresh snapshot after every mutation.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &streamClient{conn: conn, send: make(chan sim.Snapshot, streamSendBuffer)}
	c.send <- s.snapshotLocked(nil)
	s.hub.add(c)
	slog.Debug("stream client connected", "remote", r.RemoteAddr)

	go s.streamWriter(c)
	go s.streamReader(c)
}

// streamWriter owns all writes to the connection; it exits when the send
// channel closes or a write fails.
func (s *Server) streamWriter(c *streamClient) {
	defer c.conn.Close()
	for snap := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := c.conn.WriteJSON(snap); err != nil {
			s.hub.remove(c)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "slow consumer"))
}

// streamReader drains inbound frames so close handshakes are noticed.
func (s *Server) streamReader(c *streamClient) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			s.hub.remove(c)
			return
		}
	}
}
