package repository

import (
	"strings"

	"eltopo/internal/database"
	"eltopo/internal/models"
)

// CardRepository handles card and pack database operations, including
// the count-only and offset queries used by chunked random selection
type CardRepository struct {
	db *database.DB
}

// NewCardRepository creates a new card repository
func NewCardRepository(db *database.DB) *CardRepository {
	return &CardRepository{db: db}
}

// ListActiveCards retrieves every active card, used for cache sync
func (r *CardRepository) ListActiveCards() ([]models.Card, error) {
	query := `
		SELECT id, word, clue, pack_id, active
		FROM cards
		WHERE active = ` + r.db.Dialect.BoolValue(true) + `
		ORDER BY id ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var c models.Card
		if err := rows.Scan(&c.ID, &c.Word, &c.Clue, &c.PackID, &c.Active); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}

	return cards, rows.Err()
}

// ListPacks retrieves all packs, used for cache sync and category expansion
func (r *CardRepository) ListPacks() ([]models.Pack, error) {
	query := `SELECT id, name, master_category FROM packs ORDER BY name ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packs []models.Pack
	for rows.Next() {
		var p models.Pack
		if err := rows.Scan(&p.ID, &p.Name, &p.MasterCategory); err != nil {
			return nil, err
		}
		packs = append(packs, p)
	}

	return packs, rows.Err()
}

// CountActive returns the number of active cards within the given packs
// without fetching any rows
func (r *CardRepository) CountActive(packIDs []string) (int, error) {
	if len(packIDs) == 0 {
		return 0, nil
	}

	query := `
		SELECT COUNT(*) FROM cards
		WHERE active = ` + r.db.Dialect.BoolValue(true) + `
		AND pack_id IN (` + inPlaceholders(len(packIDs)) + `)
	`
	return r.db.Count(query, stringArgs(packIDs)...)
}

// HasActiveCard reports whether the given card is an active member of
// one of the given packs
func (r *CardRepository) HasActiveCard(packIDs []string, cardID string) (bool, error) {
	if len(packIDs) == 0 || cardID == "" {
		return false, nil
	}

	query := `
		SELECT COUNT(*) FROM cards
		WHERE id = ? AND active = ` + r.db.Dialect.BoolValue(true) + `
		AND pack_id IN (` + inPlaceholders(len(packIDs)) + `)
	`
	args := append([]interface{}{cardID}, stringArgs(packIDs)...)
	count, err := r.db.Count(query, args...)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ActiveAtOffset fetches exactly one active card at the given offset
// within the given packs, optionally skipping one excluded card id.
// Ordering is by id so the same offset is stable between the count and
// the fetch.
func (r *CardRepository) ActiveAtOffset(packIDs []string, excludeID string, offset int) (*models.Card, error) {
	if len(packIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, word, clue, pack_id, active
		FROM cards
		WHERE active = ` + r.db.Dialect.BoolValue(true) + `
		AND pack_id IN (` + inPlaceholders(len(packIDs)) + `)
	`
	args := stringArgs(packIDs)

	if excludeID != "" {
		query += ` AND id != ?`
		args = append(args, excludeID)
	}

	query += ` ORDER BY id ASC LIMIT 1 OFFSET ?`
	args = append(args, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var c models.Card
	if err := rows.Scan(&c.ID, &c.Word, &c.Clue, &c.PackID, &c.Active); err != nil {
		return nil, err
	}
	return &c, rows.Err()
}

// inPlaceholders builds "?, ?, ?" for an IN clause of n values
func inPlaceholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// stringArgs widens a string slice for variadic query arguments
func stringArgs(values []string) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
