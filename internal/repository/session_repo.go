package repository

import (
	"database/sql"
	"strings"
	"time"

	"eltopo/internal/database"
	"eltopo/internal/models"
)

// SessionRepository handles session row database operations
type SessionRepository struct {
	db *database.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session row
func (r *SessionRepository) Create(s *models.Session) error {
	query := `
		INSERT INTO sessions (id, host_user_id, host_guest_id, status, topo_count,
		       selected_pack_ids, card_id, word_text, clue_text,
		       deceived_word_text, deceived_clue_text, first_speaker_player_id,
		       clues_enabled, variant)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		s.ID,
		nullString(s.HostUserID),
		nullString(s.HostGuestID),
		string(s.Status),
		s.TopoCount,
		strings.Join(s.SelectedPackIDs, ","),
		nullString(s.CardID),
		nullString(s.WordText),
		nullString(s.ClueText),
		nullString(s.DeceivedWordText),
		nullString(s.DeceivedClueText),
		nullString(s.FirstSpeakerPlayerID),
		s.CluesEnabled,
		string(s.Variant),
	)
	return err
}

// GetByID retrieves a session by ID. Returns sql.ErrNoRows if absent.
func (r *SessionRepository) GetByID(id string) (*models.Session, error) {
	query := `
		SELECT id, host_user_id, host_guest_id, status, topo_count,
		       selected_pack_ids, card_id, word_text, clue_text,
		       deceived_word_text, deceived_clue_text, first_speaker_player_id,
		       clues_enabled, variant, created_at, updated_at
		FROM sessions
		WHERE id = ?
	`

	s := &models.Session{}
	var hostUserID, hostGuestID, cardID, wordText, clueText sql.NullString
	var deceivedWord, deceivedClue, firstSpeaker sql.NullString
	var status, variant, packIDs string

	err := r.db.QueryRow(query, id).Scan(
		&s.ID,
		&hostUserID,
		&hostGuestID,
		&status,
		&s.TopoCount,
		&packIDs,
		&cardID,
		&wordText,
		&clueText,
		&deceivedWord,
		&deceivedClue,
		&firstSpeaker,
		&s.CluesEnabled,
		&variant,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.HostUserID = hostUserID.String
	s.HostGuestID = hostGuestID.String
	s.Status = models.Status(status)
	s.CardID = cardID.String
	s.WordText = wordText.String
	s.ClueText = clueText.String
	s.DeceivedWordText = deceivedWord.String
	s.DeceivedClueText = deceivedClue.String
	s.FirstSpeakerPlayerID = firstSpeaker.String
	s.Variant = models.Variant(variant)
	if packIDs != "" {
		s.SelectedPackIDs = strings.Split(packIDs, ",")
	}

	return s, nil
}

// UpdateStatus changes the persisted lifecycle stage
func (r *SessionRepository) UpdateStatus(id string, status models.Status) error {
	query := `UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.Exec(query, string(status), time.Now(), id)
	return err
}

// MarkDealt persists the dealing outcome: the chosen first speaker and
// status=dealing land in one write so a reload sees them together
func (r *SessionRepository) MarkDealt(id, firstSpeakerPlayerID string) error {
	query := `
		UPDATE sessions
		SET status = ?, first_speaker_player_id = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, string(models.StatusDealing), firstSpeakerPlayerID, time.Now(), id)
	return err
}

// SetDeceivedCard persists the deceptive word/clue shown to deceived
// topos, so a page reload shows the same content
func (r *SessionRepository) SetDeceivedCard(id, word, clue string) error {
	query := `
		UPDATE sessions
		SET deceived_word_text = ?, deceived_clue_text = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, word, clue, time.Now(), id)
	return err
}

// ResetGame clears all game-specific fields and returns the session to
// the lobby, so the same row can be replayed
func (r *SessionRepository) ResetGame(id string) error {
	query := `
		UPDATE sessions
		SET status = ?, card_id = NULL, word_text = NULL, clue_text = NULL,
		    deceived_word_text = NULL, deceived_clue_text = NULL,
		    first_speaker_player_id = NULL, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, string(models.StatusLobby), time.Now(), id)
	return err
}

// SetCard assigns the secret content. Word and clue always travel
// together; a session never holds one without the other.
func (r *SessionRepository) SetCard(id string, card *models.Card) error {
	query := `
		UPDATE sessions
		SET card_id = ?, word_text = ?, clue_text = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, card.ID, card.Word, card.Clue, time.Now(), id)
	return err
}

// Delete removes a session row (players cascade)
func (r *SessionRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// nullString maps the empty string to SQL NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
