package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"eltopo/internal/models"
)

func newTestClient(hub *Hub, sessionID, senderID string) *Client {
	return NewClient(hub, nil, sessionID, senderID)
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case raw := <-c.Send:
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("failed to decode message: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestHubSubscribeAck(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub, "sess-1", "dev-1")
	hub.Register(client)

	msg := receive(t, client)
	if msg.Kind != KindSubscribed {
		t.Errorf("first message kind = %v, want %v", msg.Kind, KindSubscribed)
	}
	if msg.SessionID != "sess-1" {
		t.Errorf("ack session = %q, want sess-1", msg.SessionID)
	}
}

func TestHubFanOutWithinRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := newTestClient(hub, "sess-1", "dev-a")
	b := newTestClient(hub, "sess-1", "dev-b")
	other := newTestClient(hub, "sess-2", "dev-c")
	for _, c := range []*Client{a, b, other} {
		hub.Register(c)
		receive(t, c) // drain the subscribe ack
	}

	hub.Publish(Message{
		Kind:      KindPhaseChange,
		SessionID: "sess-1",
		SenderID:  "dev-a",
		Phase:     models.PhaseDiscussion,
	})

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		if msg.Kind != KindPhaseChange || msg.Phase != models.PhaseDiscussion {
			t.Errorf("subscriber got %+v, want the discussion phase change", msg)
		}
	}

	// The other room stays silent
	select {
	case raw := <-other.Send:
		t.Errorf("foreign room received %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterShrinksRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := newTestClient(hub, "sess-1", "dev-a")
	b := newTestClient(hub, "sess-1", "dev-b")
	hub.Register(a)
	hub.Register(b)
	receive(t, a)
	receive(t, b)

	if got := hub.RoomSize("sess-1"); got != 2 {
		t.Fatalf("RoomSize() = %d, want 2", got)
	}

	hub.Unregister(a)

	deadline := time.Now().Add(time.Second)
	for hub.RoomSize("sess-1") != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("RoomSize() = %d after unregister, want 1", hub.RoomSize("sess-1"))
		}
		time.Sleep(5 * time.Millisecond)
	}

	// The departed client's channel is closed
	if _, ok := <-a.Send; ok {
		t.Error("unregistered client's send channel still open")
	}
}

func TestMessageJSONShape(t *testing.T) {
	msg := Message{
		Kind:                 KindPhaseSyncState,
		SessionID:            "sess-1",
		SenderID:             "dev-host",
		Phase:                models.PhaseDiscussion,
		FirstSpeakerPlayerID: "p2",
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded["kind"] != "phase_sync_state" {
		t.Errorf("kind = %v, want phase_sync_state", decoded["kind"])
	}
	if decoded["first_speaker_player_id"] != "p2" {
		t.Errorf("first_speaker_player_id = %v, want p2", decoded["first_speaker_player_id"])
	}
}
