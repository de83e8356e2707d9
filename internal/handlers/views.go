package handlers

import "eltopo/internal/models"

// sessionView shapes a session for API responses. The secret word is
// included because every device needs it locally to drive reveal; the
// reveal screen decides per-role what to show.
func sessionView(s *models.Session, players []models.Player) map[string]interface{} {
	view := map[string]interface{}{
		"session": s,
	}
	if players != nil {
		out := make([]map[string]interface{}, 0, len(players))
		for i := range players {
			out = append(out, playerView(&players[i]))
		}
		view["players"] = out
	}
	return view
}

func playerView(p *models.Player) map[string]interface{} {
	return map[string]interface{}{
		"id":           p.ID,
		"session_id":   p.SessionID,
		"user_id":      p.UserID,
		"guest_id":     p.GuestID,
		"display_name": p.DisplayName,
		"gender":       p.Gender,
		"avatar_key":   p.AvatarKey,
		"photo_url":    p.PhotoURL,
		"role":         p.Role,
		"has_revealed": p.HasRevealed,
		"turn_order":   p.TurnOrder,
	}
}
