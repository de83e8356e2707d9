package models

import "time"

// Role is what a player was dealt. Unassigned is the lobby state;
// crew see the real word, topos see nothing, and a deceived topo sees
// a decoy word while believing they are crew.
type Role string

const (
	RoleUnassigned   Role = "unassigned"
	RoleCrew         Role = "crew"
	RoleTopo         Role = "topo"
	RoleDeceivedTopo Role = "deceived_topo"
)

// Valid checks the role is one we know how to handle
func (r Role) Valid() bool {
	switch r {
	case RoleUnassigned, RoleCrew, RoleTopo, RoleDeceivedTopo:
		return true
	}
	return false
}

// IsTopo reports whether this role is on the topo team, deceived or not
func (r Role) IsTopo() bool {
	return r == RoleTopo || r == RoleDeceivedTopo
}

// Player is a participant in a session. Either UserID or GuestID is
// set, never both.
type Player struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id,omitempty"`
	GuestID     string    `json:"guest_id,omitempty"`
	DisplayName string    `json:"display_name"`
	Gender      string    `json:"gender,omitempty"`
	AvatarKey   string    `json:"avatar_key,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Role        Role      `json:"role"`
	HasRevealed bool      `json:"has_revealed"`
	TurnOrder   int       `json:"turn_order"`
	CreatedAt   time.Time `json:"created_at"`
}

// ShownWord returns the word this player's device should display
// during reveal. Crew get the session word, a deceived topo gets the
// decoy, and a real topo gets nothing.
func (p *Player) ShownWord(s *Session) string {
	switch p.Role {
	case RoleCrew:
		return s.WordText
	case RoleDeceivedTopo:
		return s.DeceivedWordText
	default:
		return ""
	}
}
