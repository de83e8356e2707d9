package realtime

import "eltopo/internal/models"

// Kind names a broadcast message class on the per-session bus.
type Kind string

const (
	// KindSubscribed is the ack delivered to a client right after it
	// joins a room. Receiving it is the cue to send a phase sync
	// request, since ephemeral phase cannot be learned from the
	// database.
	KindSubscribed Kind = "subscribed"

	// KindPhaseChange announces an ephemeral phase transition, sent by
	// whoever drives it.
	KindPhaseChange Kind = "phase_change"

	// KindPhaseSyncRequest asks "what phase are we really in?". Sent by
	// newly subscribed devices; only the host answers.
	KindPhaseSyncRequest Kind = "phase_sync_request"

	// KindPhaseSyncState is the host-only reply carrying the current
	// ephemeral phase.
	KindPhaseSyncState Kind = "phase_sync_state"

	// KindRowChange notifies that a persisted session or player row was
	// mutated; consumers re-fetch the row state.
	KindRowChange Kind = "row_change"
)

// Message is the envelope fanned out to all subscribers of a session
// room. Delivery is at-most-once and nothing is persisted.
type Message struct {
	Kind                 Kind         `json:"kind"`
	SessionID            string       `json:"session_id"`
	SenderID             string       `json:"sender_id,omitempty"`
	Phase                models.Phase `json:"phase,omitempty"`
	FirstSpeakerPlayerID string       `json:"first_speaker_player_id,omitempty"`
	Table                string       `json:"table,omitempty"`
	RowID                string       `json:"row_id,omitempty"`
}
