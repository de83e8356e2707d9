package session

import (
	"errors"
	"math/rand"
	"testing"

	"eltopo/internal/models"
)

func selectorRng() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestPickRandomCard(t *testing.T) {
	src := &fakeCards{cards: orchestratorTestCards}

	card, err := pickRandomCard(src, selectorRng(), []string{"pack-casa"}, "")
	if err != nil {
		t.Fatalf("pickRandomCard() error = %v", err)
	}
	if card.PackID != "pack-casa" {
		t.Errorf("card from pack %q, want pack-casa", card.PackID)
	}
}

func TestPickRandomCardHonorsExclusion(t *testing.T) {
	src := &fakeCards{cards: orchestratorTestCards}

	for i := 0; i < 30; i++ {
		card, err := pickRandomCard(src, rand.New(rand.NewSource(int64(i))), []string{"pack-casa"}, "c1")
		if err != nil {
			t.Fatalf("pickRandomCard() error = %v", err)
		}
		if card.ID == "c1" {
			t.Fatal("pickRandomCard() returned the excluded card despite alternatives")
		}
	}
}

func TestPickRandomCardNeverExcludesOnlyCandidate(t *testing.T) {
	src := &fakeCards{cards: []models.Card{
		{ID: "c4", Word: "Paella", Clue: "Plato con arroz", PackID: "pack-comida", Active: true},
	}}

	card, err := pickRandomCard(src, selectorRng(), []string{"pack-comida"}, "c4")
	if err != nil {
		t.Fatalf("pickRandomCard() error = %v", err)
	}
	if card.ID != "c4" {
		t.Errorf("pickRandomCard() = %q, want the only candidate c4", card.ID)
	}
}

func TestPickRandomCardRetriesTransientFailures(t *testing.T) {
	src := &fakeCards{cards: orchestratorTestCards, offsetErrs: 2}

	card, err := pickRandomCard(src, selectorRng(), []string{"pack-casa"}, "")
	if err != nil {
		t.Fatalf("pickRandomCard() error = %v after transient failures", err)
	}
	if card == nil {
		t.Fatal("pickRandomCard() = nil after transient failures")
	}
}

func TestPickRandomCardEmptyPacks(t *testing.T) {
	src := &fakeCards{cards: orchestratorTestCards}

	_, err := pickRandomCard(src, selectorRng(), []string{"pack-vacio"}, "")
	if !errors.Is(err, ErrNoActiveWords) {
		t.Errorf("pickRandomCard() error = %v, want ErrNoActiveWords", err)
	}
}

func TestPickRandomCardChunksLargeSelections(t *testing.T) {
	// More pack ids than one chunk holds; only the last pack has a card
	packIDs := make([]string, 0, selectionChunkSize+10)
	for i := 0; i < selectionChunkSize+9; i++ {
		packIDs = append(packIDs, "pack-empty")
	}
	packIDs = append(packIDs, "pack-comida")

	src := &fakeCards{cards: []models.Card{
		{ID: "c4", Word: "Paella", Clue: "Plato con arroz", PackID: "pack-comida", Active: true},
	}}

	card, err := pickRandomCard(src, selectorRng(), packIDs, "")
	if err != nil {
		t.Fatalf("pickRandomCard() error = %v", err)
	}
	if card.ID != "c4" {
		t.Errorf("pickRandomCard() = %q, want c4 from the populated pack", card.ID)
	}
}
