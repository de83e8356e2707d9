package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"eltopo/internal/config"
	"eltopo/internal/database"
	"eltopo/internal/models"
)

// seed loads the default packs, or imports packs and cards from a JSON
// file so new word sets can be shipped without a migration.
func main() {
	input := flag.String("input", "", "JSON file with packs and cards to import (default: seed built-in packs)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if *input == "" {
		if err := db.SeedDefaultPacks(); err != nil {
			log.Fatalf("Failed to seed default packs: %v", err)
		}
		fmt.Println("Default packs seeded")
		return
	}

	if err := importFile(db, *input); err != nil {
		log.Fatalf("Import failed: %v", err)
	}
}

func importFile(db *database.DB, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var payload struct {
		Packs []models.Pack `json:"packs"`
		Cards []models.Card `json:"cards"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := db.ImportPacks(payload.Packs, payload.Cards); err != nil {
		return err
	}

	fmt.Printf("Imported %d packs and %d cards\n", len(payload.Packs), len(payload.Cards))
	return nil
}
