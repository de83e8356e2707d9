package database

import (
	"fmt"
	"log"

	"eltopo/internal/models"
)

// defaultPacks is the starter content shipped with the game. Real
// deployments replace or extend it through the content admin surface;
// the seed only exists so a fresh database can run a game immediately.
var defaultPacks = []models.Pack{
	{ID: "pack-casa", Name: "En Casa", MasterCategory: "clasico"},
	{ID: "pack-comida", Name: "Comida", MasterCategory: "clasico"},
	{ID: "pack-lugares", Name: "Lugares", MasterCategory: "clasico"},
	{ID: "pack-cine", Name: "Cine y Series", MasterCategory: "cultura"},
	{ID: "pack-musica", Name: "Música", MasterCategory: "cultura"},
	{ID: "pack-deportes", Name: "Deportes", MasterCategory: "deporte"},
}

var defaultCards = []models.Card{
	{ID: "card-sofa", Word: "Sofá", Clue: "Se usa para descansar", PackID: "pack-casa"},
	{ID: "card-nevera", Word: "Nevera", Clue: "Conserva cosas frías", PackID: "pack-casa"},
	{ID: "card-espejo", Word: "Espejo", Clue: "Te devuelve la mirada", PackID: "pack-casa"},
	{ID: "card-escoba", Word: "Escoba", Clue: "Limpia sin agua", PackID: "pack-casa"},
	{ID: "card-paella", Word: "Paella", Clue: "Plato con arroz", PackID: "pack-comida"},
	{ID: "card-tortilla", Word: "Tortilla", Clue: "Lleva huevo", PackID: "pack-comida"},
	{ID: "card-churros", Word: "Churros", Clue: "Se mojan en chocolate", PackID: "pack-comida"},
	{ID: "card-gazpacho", Word: "Gazpacho", Clue: "Sopa fría", PackID: "pack-comida"},
	{ID: "card-playa", Word: "Playa", Clue: "Arena y agua", PackID: "pack-lugares"},
	{ID: "card-museo", Word: "Museo", Clue: "Silencio y arte", PackID: "pack-lugares"},
	{ID: "card-aeropuerto", Word: "Aeropuerto", Clue: "Llegadas y salidas", PackID: "pack-lugares"},
	{ID: "card-hospital", Word: "Hospital", Clue: "Batas blancas", PackID: "pack-lugares"},
	{ID: "card-titanic", Word: "Titanic", Clue: "Película con barco", PackID: "pack-cine"},
	{ID: "card-matrix", Word: "Matrix", Clue: "Pastilla roja o azul", PackID: "pack-cine"},
	{ID: "card-shrek", Word: "Shrek", Clue: "Ogro verde", PackID: "pack-cine"},
	{ID: "card-guitarra", Word: "Guitarra", Clue: "Seis cuerdas", PackID: "pack-musica"},
	{ID: "card-opera", Word: "Ópera", Clue: "Se canta sin micrófono", PackID: "pack-musica"},
	{ID: "card-reggaeton", Word: "Reggaetón", Clue: "Suena en todas las fiestas", PackID: "pack-musica"},
	{ID: "card-futbol", Word: "Fútbol", Clue: "Once contra once", PackID: "pack-deportes"},
	{ID: "card-tenis", Word: "Tenis", Clue: "Se juega con red", PackID: "pack-deportes"},
	{ID: "card-ajedrez", Word: "Ajedrez", Clue: "Blancas y negras", PackID: "pack-deportes"},
}

// SeedDefaultPacks inserts the starter packs and cards if the packs
// table is empty. Safe to call on every startup.
func (db *DB) SeedDefaultPacks() error {
	count, err := db.Count("SELECT COUNT(*) FROM packs")
	if err != nil {
		return fmt.Errorf("failed to check pack count: %w", err)
	}

	if count > 0 {
		log.Printf("Card packs already populated with %d packs", count)
		return nil
	}

	log.Println("Seeding default card packs...")

	// Start transaction for bulk insert
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, p := range defaultPacks {
		if _, err := tx.Exec(
			"INSERT INTO packs (id, name, master_category) VALUES (?, ?, ?)",
			p.ID, p.Name, p.MasterCategory,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert pack %s: %w", p.ID, err)
		}
	}

	for _, c := range defaultCards {
		if _, err := tx.Exec(
			"INSERT INTO cards (id, word, clue, pack_id, active) VALUES (?, ?, ?, ?, "+db.Dialect.BoolValue(true)+")",
			c.ID, c.Word, c.Clue, c.PackID,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert card %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed data: %w", err)
	}

	log.Printf("Seeded %d packs and %d cards", len(defaultPacks), len(defaultCards))
	return nil
}

// ImportPacks upserts packs and cards in one transaction. Existing rows
// are replaced so re-importing a content file is idempotent.
func (db *DB) ImportPacks(packs []models.Pack, cards []models.Card) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, p := range packs {
		if _, err := tx.Exec("DELETE FROM packs WHERE id = ?", p.ID); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to replace pack %s: %w", p.ID, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO packs (id, name, master_category) VALUES (?, ?, ?)",
			p.ID, p.Name, p.MasterCategory,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert pack %s: %w", p.ID, err)
		}
	}

	for _, c := range cards {
		if _, err := tx.Exec("DELETE FROM cards WHERE id = ?", c.ID); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to replace card %s: %w", c.ID, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO cards (id, word, clue, pack_id, active) VALUES (?, ?, ?, ?, "+db.Dialect.BoolValue(c.Active)+")",
			c.ID, c.Word, c.Clue, c.PackID,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert card %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit imported content: %w", err)
	}
	return nil
}
