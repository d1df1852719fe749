package ws

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one websocket subscriber to a session's show.
type Client struct {
	SessionID string
	Send      chan []byte
	Conn      *websocket.Conn
	Revision  uint64 // newest revision queued on Send; set before Join, then owned by the hub
}

// BroadcastMessage carries an encoded show to every subscriber of a session.
type BroadcastMessage struct {
	SessionID string
	Revision  uint64
	Data      []byte
}

type Hub struct {
	Clients    map[string]map[*Client]bool // sessionID -> clients
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan BroadcastMessage
	mu         sync.RWMutex
	done       chan struct{} // closed when Run returns
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan BroadcastMessage, 64),
		done:       make(chan struct{}),
	}
}

// Run serves register, unregister and broadcast requests until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.Register:
			h.mu.Lock()
			if h.Clients[client.SessionID] == nil {
				h.Clients[client.SessionID] = make(map[*Client]bool)
			}
			h.Clients[client.SessionID][client] = true
			h.mu.Unlock()
		case client := <-h.Unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
		case msg := <-h.Broadcast:
			h.mu.Lock()
			for client := range h.Clients[msg.SessionID] {
				// already has this state or a newer one
				if msg.Revision <= client.Revision {
					continue
				}
				select {
				case client.Send <- msg.Data:
					client.Revision = msg.Revision
				default:
					// slow subscriber
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Join registers a client. It reports false once the hub has stopped.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters a client; it is a no-op once the hub has stopped.
func (h *Hub) Leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// Publish queues data for a session's subscribers without blocking the
// caller; it drops the update when the hub is backed up. Subscribers that
// already hold revision or a newer one skip it, so callers that publish in
// revision order never move a subscriber backwards.
func (h *Hub) Publish(sessionID string, revision uint64, data []byte) bool {
	select {
	case h.Broadcast <- BroadcastMessage{SessionID: sessionID, Revision: revision, Data: data}:
		return true
	default:
		return false
	}
}

// ClientCount returns the number of subscribers watching a session.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Clients[sessionID])
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.Clients[client.SessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; ok {
		delete(clients, client)
		close(client.Send)
	}
	if len(clients) == 0 {
		delete(h.Clients, client.SessionID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.Clients {
		for client := range clients {
			close(client.Send)
		}
	}
	h.Clients = make(map[string]map[*Client]bool)
}
