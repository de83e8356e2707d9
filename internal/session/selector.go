package session

import (
	"log"
	"math/rand"

	"eltopo/internal/models"
)

// CardSource is the remote store's card query surface: count-only
// queries plus a single-row offset fetch, which is all the chunked
// selection needs regardless of how many cards the selected packs hold.
type CardSource interface {
	CountActive(packIDs []string) (int, error)
	HasActiveCard(packIDs []string, cardID string) (bool, error)
	ActiveAtOffset(packIDs []string, excludeID string, offset int) (*models.Card, error)
}

const (
	// selectionChunkSize bounds the pack-id list length of any single
	// query. Chunking keeps query cost flat for arbitrarily large pack
	// selections; the price is uniformity within the winning chunk
	// only, not across chunks.
	selectionChunkSize = 50

	// selectionRetries is how many fresh random offsets are tried per
	// chunk when a fetch fails transiently before moving on.
	selectionRetries = 5
)

// pickRandomCard draws one active card from the given packs using the
// chunked count-then-offset strategy: shuffle the pack ids, walk them in
// fixed-size chunks, count candidates per chunk, and fetch exactly one
// row at a uniform random offset. The excluded card is skipped unless it
// is the only candidate. Returns ErrNoActiveWords when no chunk yields a
// card.
func pickRandomCard(src CardSource, rng *rand.Rand, packIDs []string, excludeID string) (*models.Card, error) {
	shuffled := make([]string, len(packIDs))
	copy(shuffled, packIDs)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	for start := 0; start < len(shuffled); start += selectionChunkSize {
		end := start + selectionChunkSize
		if end > len(shuffled) {
			end = len(shuffled)
		}
		chunk := shuffled[start:end]

		card, err := pickFromChunk(src, rng, chunk, excludeID)
		if err != nil {
			// Exhausted retries on this chunk; the next chunk may
			// still yield a card.
			log.Printf("Warning: card selection failed for chunk of %d packs: %v", len(chunk), err)
			continue
		}
		if card != nil {
			return card, nil
		}
	}

	return nil, ErrNoActiveWords
}

// pickFromChunk draws from a single chunk, or returns (nil, nil) when
// the chunk has no candidates.
func pickFromChunk(src CardSource, rng *rand.Rand, chunk []string, excludeID string) (*models.Card, error) {
	count, err := src.CountActive(chunk)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	// Never exclude the only candidate.
	exclude := ""
	effective := count
	if excludeID != "" && count > 1 {
		present, err := src.HasActiveCard(chunk, excludeID)
		if err != nil {
			return nil, err
		}
		if present {
			exclude = excludeID
			effective = count - 1
		}
	}

	var lastErr error
	for attempt := 0; attempt < selectionRetries; attempt++ {
		offset := rng.Intn(effective)
		card, err := src.ActiveAtOffset(chunk, exclude, offset)
		if err != nil {
			lastErr = err
			continue
		}
		if card != nil {
			return card, nil
		}
		// Count raced with a content change; retry with a fresh offset.
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}
