package inspect

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/outlet/pkg/nav"
)

// EventType represents the type of inspector event.
type EventType string

const (
	// EventCommit is emitted when any node in the tree commits.
	EventCommit EventType = "commit"

	// EventHello is sent to a client right after it connects.
	EventHello EventType = "hello"
)

// Event is sent to inspector clients via WebSocket.
type Event struct {
	Type   EventType   `json:"type"`
	Time   time.Time   `json:"time"`
	Commit *nav.Commit `json:"commit,omitempty"`
}

// client is one attached WebSocket connection. Every outbound message goes
// through the send channel so a single writer goroutine owns the
// connection: commits fan out concurrently (one per committing node, plus
// tail propagation goroutines), and the connection allows at most one
// concurrent writer.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// writeWait bounds a single frame write so a stalled peer cannot wedge the
// writer.
const writeWait = 10 * time.Second

// writePump owns all writes to the connection. It exits when the send
// channel is closed or a write fails, and closes the connection on the way
// out.
func (c *client) writePump() {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			break
		}
	}
	c.conn.Close()
}

// Hub manages WebSocket connections for live navigation events.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]bool
	upgrader websocket.Upgrader
}

// NewHub creates a new event hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // inspector is a local dev tool
			},
		},
	}
}

// HandleWebSocket handles WebSocket upgrade and connection.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 32)}
	go c.writePump()

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	hello, _ := json.Marshal(Event{Type: EventHello, Time: time.Now().UTC()})
	h.enqueue(c, hello)

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(c)
}

// BroadcastCommit sends a commit event to all clients.
func (h *Hub) BroadcastCommit(cm nav.Commit) {
	h.broadcast(Event{Type: EventCommit, Time: time.Now().UTC(), Commit: &cm})
}

// broadcast queues an event for every connected client. A client whose
// send buffer is full is dropped rather than blocking the committing
// navigation.
func (h *Hub) broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
	h.mu.Unlock()
}

// enqueue queues data for one client if it is still attached.
func (h *Hub) enqueue(c *client, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

// drop detaches a client. The send channel is closed exactly once, by
// whichever path removes the client from the set; closing it stops the
// writer, which closes the connection.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
