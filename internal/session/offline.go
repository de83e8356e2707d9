package session

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"eltopo/internal/localstate"
	"eltopo/internal/models"
)

const offlineSnapshotPrefix = "offline_session:"

// offlineSnapshot is the unit of offline persistence: the session and
// its full player list stored as one value. Mutations load the snapshot,
// modify it and re-persist the whole thing.
type offlineSnapshot struct {
	Session models.Session  `json:"session"`
	Players []models.Player `json:"players"`
}

// OfflineStore keeps sessions entirely in local persisted state. Used
// for offline-marked session ids, which never touch the remote store.
type OfflineStore struct {
	state *localstate.Store
}

// NewOfflineStore creates a store over the local key-value state.
func NewOfflineStore(state *localstate.Store) *OfflineStore {
	return &OfflineStore{state: state}
}

func snapshotKey(id string) string {
	return offlineSnapshotPrefix + id
}

func (s *OfflineStore) load(id string) (*offlineSnapshot, error) {
	var snap offlineSnapshot
	if err := s.state.Get(snapshotKey(id), &snap); err != nil {
		if err == localstate.ErrKeyNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load offline session: %w", err)
	}
	return &snap, nil
}

func (s *OfflineStore) save(snap *offlineSnapshot) error {
	snap.Session.UpdatedAt = time.Now()
	return s.state.Set(snapshotKey(snap.Session.ID), snap)
}

func (s *OfflineStore) Fetch(id string) (*models.Session, []models.Player, error) {
	snap, err := s.load(id)
	if err != nil {
		return nil, nil, err
	}

	sort.SliceStable(snap.Players, func(i, j int) bool {
		return snap.Players[i].TurnOrder < snap.Players[j].TurnOrder
	})

	sess := snap.Session
	return &sess, snap.Players, nil
}

func (s *OfflineStore) Create(sess *models.Session, players []models.Player) error {
	return s.save(&offlineSnapshot{Session: *sess, Players: players})
}

func (s *OfflineStore) AddPlayer(p *models.Player) error {
	snap, err := s.load(p.SessionID)
	if err != nil {
		return err
	}
	snap.Players = append(snap.Players, *p)
	return s.save(snap)
}

func (s *OfflineStore) UpdateStatus(id string, status models.Status) error {
	snap, err := s.load(id)
	if err != nil {
		return err
	}
	snap.Session.Status = status
	return s.save(snap)
}

func (s *OfflineStore) MarkDealt(id, firstSpeakerPlayerID string) error {
	snap, err := s.load(id)
	if err != nil {
		return err
	}
	snap.Session.Status = models.StatusDealing
	snap.Session.FirstSpeakerPlayerID = firstSpeakerPlayerID
	return s.save(snap)
}

func (s *OfflineStore) SetCard(id string, card *models.Card) error {
	snap, err := s.load(id)
	if err != nil {
		return err
	}
	snap.Session.SetCard(card)
	return s.save(snap)
}

func (s *OfflineStore) SetDeceivedCard(id, word, clue string) error {
	snap, err := s.load(id)
	if err != nil {
		return err
	}
	snap.Session.SetDeceivedCard(word, clue)
	return s.save(snap)
}

func (s *OfflineStore) UpdateAssignment(sessionID, playerID string, role models.Role, turnOrder int) error {
	snap, err := s.load(sessionID)
	if err != nil {
		return err
	}
	for i := range snap.Players {
		if snap.Players[i].ID == playerID {
			snap.Players[i].Role = role
			snap.Players[i].TurnOrder = turnOrder
			snap.Players[i].HasRevealed = false
			return s.save(snap)
		}
	}
	return ErrNotFound
}

func (s *OfflineStore) MarkRevealed(sessionID, playerID string) error {
	snap, err := s.load(sessionID)
	if err != nil {
		return err
	}
	for i := range snap.Players {
		if snap.Players[i].ID == playerID {
			snap.Players[i].HasRevealed = true
			return s.save(snap)
		}
	}
	return ErrNotFound
}

func (s *OfflineStore) Reset(id string) error {
	snap, err := s.load(id)
	if err != nil {
		return err
	}
	snap.Session.ClearGame()
	for i := range snap.Players {
		snap.Players[i].Role = models.RoleUnassigned
		snap.Players[i].HasRevealed = false
	}
	return s.save(snap)
}

func (s *OfflineStore) Delete(id string) error {
	if !s.state.Has(snapshotKey(id)) {
		return ErrNotFound
	}
	return s.state.Remove(snapshotKey(id))
}

// ListIDs returns the ids of every locally stored session.
func (s *OfflineStore) ListIDs() []string {
	var ids []string
	for _, key := range s.state.Keys() {
		if strings.HasPrefix(key, offlineSnapshotPrefix) {
			ids = append(ids, strings.TrimPrefix(key, offlineSnapshotPrefix))
		}
	}
	return ids
}

// PurgeFinished removes snapshots of terminal sessions. A reset deletes
// its snapshot, but a session finished and abandoned lingers until the
// next start.
func (s *OfflineStore) PurgeFinished() (int, error) {
	purged := 0
	for _, id := range s.ListIDs() {
		snap, err := s.load(id)
		if err != nil {
			continue
		}
		if snap.Session.Status.Terminal() {
			if err := s.Delete(id); err != nil {
				return purged, err
			}
			purged++
		}
	}
	return purged, nil
}
