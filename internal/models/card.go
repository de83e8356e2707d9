package models

// Card is a single secret word with its clue. Cards belong to a pack
// and only active cards are ever dealt.
type Card struct {
	ID     string `json:"id"`
	Word   string `json:"word"`
	Clue   string `json:"clue"`
	PackID string `json:"pack_id"`
	Active bool   `json:"active"`
}

// Pack is a themed group of cards. Packs roll up into master
// categories (clasico, cultura, deporte) that the UI filters by.
type Pack struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	MasterCategory string `json:"master_category"`
}
