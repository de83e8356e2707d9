package cache

import (
	"errors"
	"path/filepath"
	"testing"

	"eltopo/internal/localstate"
	"eltopo/internal/models"
)

type fakeSource struct {
	cards    []models.Card
	packs    []models.Pack
	cardsErr error
	packsErr error
}

func (f *fakeSource) ListActiveCards() ([]models.Card, error) {
	return f.cards, f.cardsErr
}

func (f *fakeSource) ListPacks() ([]models.Pack, error) {
	return f.packs, f.packsErr
}

func testState(t *testing.T) *localstate.Store {
	t.Helper()
	state, err := localstate.Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("failed to open state: %v", err)
	}
	return state
}

var testCards = []models.Card{
	{ID: "c1", Word: "Sofá", Clue: "Se usa para descansar", PackID: "pack-casa", Active: true},
	{ID: "c2", Word: "Nevera", Clue: "Conserva cosas frías", PackID: "pack-casa", Active: true},
	{ID: "c3", Word: "Paella", Clue: "Plato con arroz", PackID: "pack-comida", Active: true},
	{ID: "c4", Word: "Fútbol", Clue: "Once contra once", PackID: "pack-deportes", Active: true},
}

var testPacks = []models.Pack{
	{ID: "pack-casa", Name: "En Casa", MasterCategory: "clasico"},
	{ID: "pack-comida", Name: "Comida", MasterCategory: "clasico"},
	{ID: "pack-deportes", Name: "Deportes", MasterCategory: "deporte"},
}

func TestSyncPersistsSnapshot(t *testing.T) {
	state := testState(t)
	src := &fakeSource{cards: testCards, packs: testPacks}

	cache := NewCardCache(state, src)
	if cache.HasData() {
		t.Error("HasData() = true before first sync")
	}

	if err := cache.Sync(); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !cache.HasData() {
		t.Error("HasData() = false after sync")
	}
	if cache.SyncedAt().IsZero() {
		t.Error("SyncedAt() is zero after sync")
	}

	// A fresh cache over the same state file sees the snapshot without
	// any source round-trip
	reloaded := NewCardCache(state, &fakeSource{cardsErr: errors.New("unreachable")})
	if !reloaded.HasData() {
		t.Error("HasData() = false for cache reloaded from persisted snapshot")
	}
	if got := len(reloaded.Packs()); got != len(testPacks) {
		t.Errorf("Packs() length = %d after reload, want %d", got, len(testPacks))
	}
}

func TestSyncCardFailureIsFatal(t *testing.T) {
	state := testState(t)
	cache := NewCardCache(state, &fakeSource{cardsErr: errors.New("network down")})

	if err := cache.Sync(); err == nil {
		t.Error("Sync() error = nil when the card fetch fails")
	}
	if cache.HasData() {
		t.Error("HasData() = true after failed sync")
	}
}

func TestSyncToleratesPackFailure(t *testing.T) {
	state := testState(t)
	cache := NewCardCache(state, &fakeSource{cards: testCards, packsErr: errors.New("timeout")})

	if err := cache.Sync(); err != nil {
		t.Fatalf("Sync() error = %v, want nil when only the pack fetch fails", err)
	}
	if !cache.HasData() {
		t.Error("HasData() = false, cards should have landed")
	}
}

func TestRandomCardPackFilter(t *testing.T) {
	state := testState(t)
	cache := NewCardCache(state, &fakeSource{cards: testCards, packs: testPacks})
	if err := cache.Sync(); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	for i := 0; i < 20; i++ {
		card := cache.RandomCard([]string{"pack-comida"}, nil)
		if card == nil {
			t.Fatal("RandomCard() = nil for a pack with cards")
		}
		if card.PackID != "pack-comida" {
			t.Errorf("RandomCard() returned card from pack %q, want pack-comida", card.PackID)
		}
	}
}

func TestRandomCardCategoryExpansion(t *testing.T) {
	state := testState(t)
	cache := NewCardCache(state, &fakeSource{cards: testCards, packs: testPacks})
	if err := cache.Sync(); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	// "clasico" is a master category, so it expands to pack-casa and
	// pack-comida
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		card := cache.RandomCard([]string{"clasico"}, nil)
		if card == nil {
			t.Fatal("RandomCard() = nil for a category with cards")
		}
		seen[card.PackID] = true
		if card.PackID == "pack-deportes" {
			t.Errorf("RandomCard() returned card outside category: %q", card.PackID)
		}
	}
	if !seen["pack-casa"] || !seen["pack-comida"] {
		t.Errorf("category expansion missed member packs, saw %v", seen)
	}

	// A mixed list is treated as raw pack ids, not categories
	if card := cache.RandomCard([]string{"clasico", "pack-deportes"}, nil); card != nil {
		t.Errorf("RandomCard() = %v for mixed filter treated as pack ids, want nil", card)
	}
}

func TestRandomCardExclusionIgnoredWhenExhaustive(t *testing.T) {
	state := testState(t)
	cache := NewCardCache(state, &fakeSource{cards: testCards, packs: testPacks})
	if err := cache.Sync(); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	// pack-comida has exactly one card; excluding it must not leave the
	// caller empty-handed
	card := cache.RandomCard([]string{"pack-comida"}, []string{"c3"})
	if card == nil {
		t.Fatal("RandomCard() = nil when exclusion would empty the pool")
	}
	if card.ID != "c3" {
		t.Errorf("RandomCard() = %q, want the only candidate c3", card.ID)
	}

	// With alternatives available the exclusion holds
	for i := 0; i < 20; i++ {
		card := cache.RandomCard([]string{"pack-casa"}, []string{"c1"})
		if card == nil {
			t.Fatal("RandomCard() = nil")
		}
		if card.ID == "c1" {
			t.Error("RandomCard() returned an excluded card despite alternatives")
		}
	}
}

func TestRandomCardEmptyFilter(t *testing.T) {
	state := testState(t)
	cache := NewCardCache(state, &fakeSource{cards: testCards, packs: testPacks})
	if err := cache.Sync(); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if card := cache.RandomCard([]string{"pack-vacio"}, nil); card != nil {
		t.Errorf("RandomCard() = %v for unknown pack, want nil", card)
	}
	if card := cache.RandomCard(nil, nil); card != nil {
		t.Errorf("RandomCard() = %v for empty filter, want nil", card)
	}
}
