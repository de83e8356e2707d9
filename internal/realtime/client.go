package realtime

import (
	"encoding/json"
	"log"

	"github.com/gorilla/websocket"
)

// Client is one subscribed device connection within a session room.
type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	SessionID string
	SenderID  string
}

// NewClient wraps an upgraded websocket connection for the given
// session room.
func NewClient(hub *Hub, conn *websocket.Conn, sessionID, senderID string) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		Send:      make(chan []byte, 64),
		SessionID: sessionID,
		SenderID:  senderID,
	}
}

// deliver sends a message to this client only, dropping it if the send
// buffer is full.
func (c *Client) deliver(msg Message) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.Send <- raw:
	default:
	}
}

// ReadPump relays inbound broadcast messages from this device to the
// rest of its room. The bus is a relay: the server attaches the sender
// and session but never interprets phase semantics, which stay with the
// devices (the host in particular).
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Read error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("Unmarshal error: %v", err)
			continue
		}

		switch msg.Kind {
		case KindPhaseChange, KindPhaseSyncRequest, KindPhaseSyncState:
			msg.SessionID = c.SessionID
			msg.SenderID = c.SenderID
			c.Hub.Publish(msg)
		default:
			// Row changes and acks are server-originated only.
		}
	}
}

// WritePump drains the send buffer onto the websocket connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()
	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
