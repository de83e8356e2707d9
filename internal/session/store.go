package session

import (
	"strings"

	"eltopo/internal/models"
)

// Store is the authoritative home of session and player records. Online
// sessions live in the remote relational store, offline sessions in
// local persisted state; RoutingStore dispatches between the two on the
// session id's offline marker.
type Store interface {
	// Fetch loads a session with its players ordered by turn order.
	// Returns ErrNotFound if absent.
	Fetch(id string) (*models.Session, []models.Player, error)

	// Create persists a new session with any initial players.
	Create(s *models.Session, players []models.Player) error

	// AddPlayer persists a new participant.
	AddPlayer(p *models.Player) error

	// UpdateStatus changes the persisted lifecycle stage.
	UpdateStatus(id string, status models.Status) error

	// MarkDealt persists status=dealing together with the chosen first
	// speaker.
	MarkDealt(id, firstSpeakerPlayerID string) error

	// SetCard attaches the secret card to an existing session, making a
	// reset row playable again.
	SetCard(id string, card *models.Card) error

	// SetDeceivedCard persists the deceptive word/clue pair.
	SetDeceivedCard(id, word, clue string) error

	// UpdateAssignment persists one player's role, turn order and a
	// cleared reveal flag.
	UpdateAssignment(sessionID, playerID string, role models.Role, turnOrder int) error

	// MarkRevealed records a player's card confirmation. Idempotent.
	MarkRevealed(sessionID, playerID string) error

	// Reset clears all game fields and player roles, returning the
	// session to the lobby.
	Reset(id string) error

	// Delete removes the session entirely.
	Delete(id string) error
}

// RoutingStore dispatches to the offline store for offline-marked ids
// and to the remote store for everything else.
type RoutingStore struct {
	Remote  Store
	Offline Store
}

// NewRoutingStore creates a store router over the two backends.
func NewRoutingStore(remote, offline Store) *RoutingStore {
	return &RoutingStore{Remote: remote, Offline: offline}
}

func (r *RoutingStore) pick(id string) Store {
	if strings.HasPrefix(id, models.OfflineIDPrefix) {
		return r.Offline
	}
	return r.Remote
}

func (r *RoutingStore) Fetch(id string) (*models.Session, []models.Player, error) {
	return r.pick(id).Fetch(id)
}

func (r *RoutingStore) Create(s *models.Session, players []models.Player) error {
	return r.pick(s.ID).Create(s, players)
}

func (r *RoutingStore) AddPlayer(p *models.Player) error {
	return r.pick(p.SessionID).AddPlayer(p)
}

func (r *RoutingStore) UpdateStatus(id string, status models.Status) error {
	return r.pick(id).UpdateStatus(id, status)
}

func (r *RoutingStore) MarkDealt(id, firstSpeakerPlayerID string) error {
	return r.pick(id).MarkDealt(id, firstSpeakerPlayerID)
}

func (r *RoutingStore) SetCard(id string, card *models.Card) error {
	return r.pick(id).SetCard(id, card)
}

func (r *RoutingStore) SetDeceivedCard(id, word, clue string) error {
	return r.pick(id).SetDeceivedCard(id, word, clue)
}

func (r *RoutingStore) UpdateAssignment(sessionID, playerID string, role models.Role, turnOrder int) error {
	return r.pick(sessionID).UpdateAssignment(sessionID, playerID, role, turnOrder)
}

func (r *RoutingStore) MarkRevealed(sessionID, playerID string) error {
	return r.pick(sessionID).MarkRevealed(sessionID, playerID)
}

func (r *RoutingStore) Reset(id string) error {
	return r.pick(id).Reset(id)
}

func (r *RoutingStore) Delete(id string) error {
	return r.pick(id).Delete(id)
}
