package session

import (
	"database/sql"
	"errors"
	"fmt"

	"eltopo/internal/models"
	"eltopo/internal/repository"
)

// RemoteStore adapts the relational repositories to the Store interface.
// This is the in-process face of the remote data service; a device build
// would put its network client behind the same interface.
type RemoteStore struct {
	sessions *repository.SessionRepository
	players  *repository.PlayerRepository
}

// NewRemoteStore creates a store over the session and player repositories.
func NewRemoteStore(sessions *repository.SessionRepository, players *repository.PlayerRepository) *RemoteStore {
	return &RemoteStore{sessions: sessions, players: players}
}

func (s *RemoteStore) Fetch(id string) (*models.Session, []models.Player, error) {
	sess, err := s.sessions.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	players, err := s.players.ListBySession(id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch players: %w", err)
	}

	return sess, players, nil
}

func (s *RemoteStore) Create(sess *models.Session, players []models.Player) error {
	if err := s.sessions.Create(sess); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	for i := range players {
		if err := s.players.Create(&players[i]); err != nil {
			return fmt.Errorf("failed to create player: %w", err)
		}
	}
	return nil
}

func (s *RemoteStore) AddPlayer(p *models.Player) error {
	return s.players.Create(p)
}

func (s *RemoteStore) UpdateStatus(id string, status models.Status) error {
	return s.sessions.UpdateStatus(id, status)
}

func (s *RemoteStore) MarkDealt(id, firstSpeakerPlayerID string) error {
	return s.sessions.MarkDealt(id, firstSpeakerPlayerID)
}

func (s *RemoteStore) SetCard(id string, card *models.Card) error {
	return s.sessions.SetCard(id, card)
}

func (s *RemoteStore) SetDeceivedCard(id, word, clue string) error {
	return s.sessions.SetDeceivedCard(id, word, clue)
}

func (s *RemoteStore) UpdateAssignment(sessionID, playerID string, role models.Role, turnOrder int) error {
	return s.players.UpdateAssignment(playerID, role, turnOrder)
}

func (s *RemoteStore) MarkRevealed(sessionID, playerID string) error {
	return s.players.MarkRevealed(playerID)
}

func (s *RemoteStore) Reset(id string) error {
	if err := s.players.ResetBySession(id); err != nil {
		return fmt.Errorf("failed to reset players: %w", err)
	}
	if err := s.sessions.ResetGame(id); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}
	return nil
}

func (s *RemoteStore) Delete(id string) error {
	return s.sessions.Delete(id)
}
