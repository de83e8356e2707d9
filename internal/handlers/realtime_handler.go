package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"eltopo/internal/realtime"
	"eltopo/internal/session"
)

// RealtimeHandler upgrades HTTP requests to websocket subscriptions on
// a session room.
type RealtimeHandler struct {
	hub      *realtime.Hub
	store    session.Store
	upgrader websocket.Upgrader
}

// NewRealtimeHandler creates the realtime handler
func NewRealtimeHandler(hub *realtime.Hub, store session.Store) *RealtimeHandler {
	return &RealtimeHandler{
		hub:   hub,
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients are trusted apps, not browsers on arbitrary origins
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Subscribe joins the caller to a session's realtime room. The session
// must exist; the sender id distinguishes a device's own broadcasts
// from its peers'.
func (h *RealtimeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	senderID := r.URL.Query().Get("sender_id")
	if sessionID == "" || senderID == "" {
		respondWithError(w, http.StatusBadRequest, "session_id and sender_id are required", "", nil)
		return
	}

	if _, _, err := h.store.Fetch(sessionID); err != nil {
		respondCoreError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WARNING: websocket upgrade failed: %v", err)
		return
	}

	client := realtime.NewClient(h.hub, conn, sessionID, senderID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
