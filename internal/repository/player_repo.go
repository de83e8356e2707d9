package repository

import (
	"database/sql"

	"eltopo/internal/database"
	"eltopo/internal/models"
)

// PlayerRepository handles player row database operations
type PlayerRepository struct {
	db *database.DB
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *database.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Create inserts a new player row
func (r *PlayerRepository) Create(p *models.Player) error {
	query := `
		INSERT INTO players (id, session_id, user_id, guest_id, display_name,
		       gender, avatar_key, photo_url, role, has_revealed, turn_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		p.ID,
		p.SessionID,
		nullString(p.UserID),
		nullString(p.GuestID),
		p.DisplayName,
		p.Gender,
		p.AvatarKey,
		p.PhotoURL,
		nullRole(p.Role),
		p.HasRevealed,
		p.TurnOrder,
	)
	return err
}

// GetByID retrieves a player by ID. Returns sql.ErrNoRows if absent.
func (r *PlayerRepository) GetByID(id string) (*models.Player, error) {
	query := playerSelect + ` WHERE id = ?`
	return scanPlayer(r.db.QueryRow(query, id))
}

// ListBySession retrieves all players of a session ordered by turn order
func (r *PlayerRepository) ListBySession(sessionID string) ([]models.Player, error) {
	query := playerSelect + ` WHERE session_id = ? ORDER BY turn_order ASC, created_at ASC`

	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}

	return players, rows.Err()
}

// UpdateAssignment persists one player's dealing outcome: the new role,
// the new turn order and a cleared reveal flag. Each player is an
// independent write; a crash mid-dealing is recovered by re-dealing.
func (r *PlayerRepository) UpdateAssignment(id string, role models.Role, turnOrder int) error {
	query := `
		UPDATE players
		SET role = ?, turn_order = ?, has_revealed = ` + r.db.Dialect.BoolValue(false) + `
		WHERE id = ?
	`
	_, err := r.db.Exec(query, string(role), turnOrder, id)
	return err
}

// MarkRevealed records that the player has confirmed seeing their card.
// Idempotent.
func (r *PlayerRepository) MarkRevealed(id string) error {
	query := `UPDATE players SET has_revealed = ` + r.db.Dialect.BoolValue(true) + ` WHERE id = ?`
	_, err := r.db.Exec(query, id)
	return err
}

// ResetBySession clears every player's role and reveal flag for a replay
func (r *PlayerRepository) ResetBySession(sessionID string) error {
	query := `
		UPDATE players
		SET role = NULL, has_revealed = ` + r.db.Dialect.BoolValue(false) + `
		WHERE session_id = ?
	`
	_, err := r.db.Exec(query, sessionID)
	return err
}

// Delete removes a player row
func (r *PlayerRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM players WHERE id = ?`, id)
	return err
}

const playerSelect = `
	SELECT id, session_id, user_id, guest_id, display_name, gender,
	       avatar_key, photo_url, role, has_revealed, turn_order, created_at
	FROM players`

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlayer(row rowScanner) (*models.Player, error) {
	p := &models.Player{}
	var userID, guestID, role sql.NullString

	err := row.Scan(
		&p.ID,
		&p.SessionID,
		&userID,
		&guestID,
		&p.DisplayName,
		&p.Gender,
		&p.AvatarKey,
		&p.PhotoURL,
		&role,
		&p.HasRevealed,
		&p.TurnOrder,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.UserID = userID.String
	p.GuestID = guestID.String
	if role.Valid {
		p.Role = models.Role(role.String)
	} else {
		p.Role = models.RoleUnassigned
	}

	return p, nil
}

// nullRole maps the unassigned role to SQL NULL
func nullRole(r models.Role) sql.NullString {
	if r == "" || r == models.RoleUnassigned {
		return sql.NullString{}
	}
	return sql.NullString{String: string(r), Valid: true}
}
