// Package realtime implements the per-session broadcast bus: a
// websocket hub with one room per session id, fanning out ephemeral
// phase messages and row-change notifications to every subscribed
// device. Messages are fire-and-forget; a slow consumer is dropped
// rather than buffered without bound.
package realtime

import (
	"encoding/json"
	"sync"
)

// Hub maintains the set of session rooms and fans broadcasts out to
// their subscribers.
type Hub struct {
	rooms      map[string]map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates an empty hub. Run must be started on it.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes register/unregister/broadcast events until the process
// exits. Meant to run on its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.SessionID] == nil {
				h.rooms[client.SessionID] = make(map[*Client]bool)
			}
			h.rooms[client.SessionID][client] = true
			h.mu.Unlock()

			// Subscribe ack: the client reacts by requesting a phase
			// sync from the host.
			client.deliver(Message{Kind: KindSubscribed, SessionID: client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.rooms[client.SessionID]; ok {
				if h.rooms[client.SessionID][client] {
					delete(h.rooms[client.SessionID], client)
					close(client.Send)
				}
				if len(h.rooms[client.SessionID]) == 0 {
					delete(h.rooms, client.SessionID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			raw, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			h.mu.Lock()
			for client := range h.rooms[msg.SessionID] {
				select {
				case client.Send <- raw:
				default:
					close(client.Send)
					delete(h.rooms[msg.SessionID], client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register subscribes a client to its session room.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a client from its session room.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Publish fans a message out to every subscriber of its session room.
func (h *Hub) Publish(msg Message) {
	h.broadcast <- msg
}

// RoomSize returns the current subscriber count for a session.
func (h *Hub) RoomSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}
