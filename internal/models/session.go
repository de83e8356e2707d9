package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Variant selects the game mode: classic uses the host's topo count,
// caos draws a random count, misterioso swaps one topo for a deceived
// topo holding a decoy word.
type Variant string

const (
	VariantClassic    Variant = "classic"
	VariantCaos       Variant = "caos"
	VariantMisterioso Variant = "misterioso"
)

// Valid checks the variant is one we know how to handle
func (v Variant) Valid() bool {
	switch v {
	case VariantClassic, VariantCaos, VariantMisterioso:
		return true
	}
	return false
}

// OfflineIDPrefix marks sessions that live only in local state and
// never touch the backing store.
const OfflineIDPrefix = "offline-"

// NewSessionID generates an id for an online session
func NewSessionID() string {
	return uuid.New().String()
}

// NewOfflineSessionID generates an id for a local-only session
func NewOfflineSessionID() string {
	return OfflineIDPrefix + uuid.New().String()
}

// Session is one game from lobby through finish. The card fields are
// denormalized onto the session so reveal works without a cards table
// lookup, including offline.
type Session struct {
	ID                   string    `json:"id"`
	HostUserID           string    `json:"host_user_id,omitempty"`
	HostGuestID          string    `json:"host_guest_id,omitempty"`
	Status               Status    `json:"status"`
	TopoCount            int       `json:"topo_count"`
	SelectedPackIDs      []string  `json:"selected_pack_ids"`
	CardID               string    `json:"card_id,omitempty"`
	WordText             string    `json:"word_text,omitempty"`
	ClueText             string    `json:"clue_text,omitempty"`
	DeceivedWordText     string    `json:"deceived_word_text,omitempty"`
	DeceivedClueText     string    `json:"deceived_clue_text,omitempty"`
	FirstSpeakerPlayerID string    `json:"first_speaker_player_id,omitempty"`
	CluesEnabled         bool      `json:"clues_enabled"`
	Variant              Variant   `json:"variant"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// IsOffline reports whether this session lives only on this device
func (s *Session) IsOffline() bool {
	return strings.HasPrefix(s.ID, OfflineIDPrefix)
}

// HasWord reports whether the session's card has been fully selected.
// Both the word and the clue must be present before dealing can start.
func (s *Session) HasWord() bool {
	return s.WordText != "" && s.ClueText != ""
}

// SetCard copies the selected card onto the session
func (s *Session) SetCard(c *Card) {
	s.CardID = c.ID
	s.WordText = c.Word
	s.ClueText = c.Clue
}

// SetDeceivedCard records the decoy word shown to a deceived topo
func (s *Session) SetDeceivedCard(word, clue string) {
	s.DeceivedWordText = word
	s.DeceivedClueText = clue
}

// ClearGame wipes all game state so the session can be replayed from
// the lobby with the same players
func (s *Session) ClearGame() {
	s.Status = StatusLobby
	s.CardID = ""
	s.WordText = ""
	s.ClueText = ""
	s.DeceivedWordText = ""
	s.DeceivedClueText = ""
	s.FirstSpeakerPlayerID = ""
}
