// Package cache maintains the device-local snapshot of cards and packs,
// so card selection works with zero network round-trips. The snapshot is
// overwritten wholesale on every sync; there are no merge semantics and
// no versioning, last sync wins.
package cache

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"eltopo/internal/localstate"
	"eltopo/internal/models"
)

const (
	cardsKey    = "card_cache"
	packsKey    = "pack_cache"
	syncedAtKey = "card_cache_synced_at"
)

// Source is the remote snapshot provider the cache syncs from.
type Source interface {
	ListActiveCards() ([]models.Card, error)
	ListPacks() ([]models.Pack, error)
}

// CardCache serves random-card queries from the local snapshot.
type CardCache struct {
	state    *localstate.Store
	source   Source
	cards    []models.Card
	packs    []models.Pack
	syncedAt time.Time
	rng      *rand.Rand
}

// NewCardCache loads any previously persisted snapshot from state.
func NewCardCache(state *localstate.Store, source Source) *CardCache {
	c := &CardCache{
		state:  state,
		source: source,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := state.Get(cardsKey, &c.cards); err != nil && err != localstate.ErrKeyNotFound {
		log.Printf("Warning: discarding unreadable card cache: %v", err)
	}
	if err := state.Get(packsKey, &c.packs); err != nil && err != localstate.ErrKeyNotFound {
		log.Printf("Warning: discarding unreadable pack cache: %v", err)
	}
	if err := state.Get(syncedAtKey, &c.syncedAt); err != nil && err != localstate.ErrKeyNotFound {
		log.Printf("Warning: discarding unreadable cache timestamp: %v", err)
	}

	return c
}

// Sync fetches the full active card set and pack set from the source and
// overwrites the local snapshot. The card fetch is all-or-nothing; a
// pack fetch failure after a successful card fetch is tolerated and does
// not roll the cards back.
func (c *CardCache) Sync() error {
	cards, err := c.source.ListActiveCards()
	if err != nil {
		return fmt.Errorf("card sync failed: %w", err)
	}

	c.cards = cards
	if err := c.state.Set(cardsKey, cards); err != nil {
		return fmt.Errorf("failed to persist card snapshot: %w", err)
	}

	c.syncedAt = time.Now()
	if err := c.state.Set(syncedAtKey, c.syncedAt); err != nil {
		return fmt.Errorf("failed to persist sync timestamp: %w", err)
	}

	packs, err := c.source.ListPacks()
	if err != nil {
		// Cards already landed; stale packs only weaken category
		// filtering, which degrades to raw pack-id matching.
		log.Printf("Warning: pack sync failed, keeping previous packs: %v", err)
		return nil
	}

	c.packs = packs
	if err := c.state.Set(packsKey, packs); err != nil {
		return fmt.Errorf("failed to persist pack snapshot: %w", err)
	}

	return nil
}

// HasData reports whether the cache holds at least one card.
func (c *CardCache) HasData() bool {
	return len(c.cards) > 0
}

// SyncedAt returns the time of the last successful card sync, zero if
// never synced.
func (c *CardCache) SyncedAt() time.Time {
	return c.syncedAt
}

// Packs returns the cached pack snapshot.
func (c *CardCache) Packs() []models.Pack {
	return c.packs
}

// RandomCard picks a uniform-random card among the packs selected by
// filterIDs, skipping excludeIDs when possible.
//
// filterIDs are either raw pack ids or master-category slugs: when every
// id matches a known category slug the filter is treated as a category
// filter and expanded to the member pack ids. If applying excludeIDs
// would eliminate every candidate, the exclusion is ignored, so the
// caller always gets a card whenever any selected pack has one. Returns
// nil only when the pack filter itself yields zero cards.
func (c *CardCache) RandomCard(filterIDs, excludeIDs []string) *models.Card {
	packIDs := c.resolveFilter(filterIDs)

	inPacks := make(map[string]bool, len(packIDs))
	for _, id := range packIDs {
		inPacks[id] = true
	}

	var candidates []models.Card
	for _, card := range c.cards {
		if inPacks[card.PackID] {
			candidates = append(candidates, card)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		if id != "" {
			excluded[id] = true
		}
	}

	var remaining []models.Card
	for _, card := range candidates {
		if !excluded[card.ID] {
			remaining = append(remaining, card)
		}
	}
	// Never return empty just because every alternative is excluded.
	if len(remaining) == 0 {
		remaining = candidates
	}

	card := remaining[c.rng.Intn(len(remaining))]
	return &card
}

// resolveFilter auto-detects whether filterIDs are category slugs. Only
// when every id matches a known master category is the list expanded to
// member pack ids; otherwise the ids are used as pack ids unchanged.
func (c *CardCache) resolveFilter(filterIDs []string) []string {
	if len(filterIDs) == 0 {
		return nil
	}

	categories := make(map[string]bool, len(c.packs))
	for _, p := range c.packs {
		categories[p.MasterCategory] = true
	}

	for _, id := range filterIDs {
		if !categories[id] {
			return filterIDs
		}
	}

	selected := make(map[string]bool, len(filterIDs))
	for _, id := range filterIDs {
		selected[id] = true
	}

	var packIDs []string
	for _, p := range c.packs {
		if selected[p.MasterCategory] {
			packIDs = append(packIDs, p.ID)
		}
	}
	return packIDs
}
