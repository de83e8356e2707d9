package models

// Status is the persisted lifecycle state of a session. It is the
// durable half of the phase: every status survives restarts and is
// visible to late joiners.
type Status string

const (
	StatusLobby    Status = "lobby"
	StatusDealing  Status = "dealing"
	StatusReady    Status = "ready"
	StatusFinished Status = "finished"
	StatusClosed   Status = "closed"
)

// Terminal reports whether the session can no longer progress
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusClosed
}

// Valid checks the status is one we know how to handle
func (s Status) Valid() bool {
	switch s {
	case StatusLobby, StatusDealing, StatusReady, StatusFinished, StatusClosed:
		return true
	}
	return false
}

// Phase is what a device actually shows. It is the persisted status
// overlaid with ephemeral broadcasts that are never written to storage.
type Phase string

const (
	PhaseLobby      Phase = "lobby"
	PhaseDealing    Phase = "dealing"
	PhaseReady      Phase = "ready"
	PhaseDiscussion Phase = "discussion"
	PhaseFinished   Phase = "finished"
	PhaseClosed     Phase = "closed"
)

// ResolvePhase reconciles the persisted status with the last ephemeral
// phase a device heard. A terminal status always wins so a missed
// broadcast can never trap a device in discussion, and discussion
// itself is sticky while the session is still live.
func ResolvePhase(status Status, ephemeral Phase) Phase {
	if status.Terminal() {
		return Phase(status)
	}
	if ephemeral == PhaseDiscussion {
		return PhaseDiscussion
	}
	return Phase(status)
}
