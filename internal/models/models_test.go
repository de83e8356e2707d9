package models

import (
	"strings"
	"testing"
)

func TestResolvePhase(t *testing.T) {
	tests := []struct {
		name      string
		status    Status
		ephemeral Phase
		expected  Phase
	}{
		{
			name:      "lobby with no ephemeral phase",
			status:    StatusLobby,
			ephemeral: "",
			expected:  PhaseLobby,
		},
		{
			name:      "dealing with matching ephemeral phase",
			status:    StatusDealing,
			ephemeral: PhaseDealing,
			expected:  PhaseDealing,
		},
		{
			name:      "discussion is sticky over dealing status",
			status:    StatusDealing,
			ephemeral: PhaseDiscussion,
			expected:  PhaseDiscussion,
		},
		{
			name:      "finished status wins over discussion",
			status:    StatusFinished,
			ephemeral: PhaseDiscussion,
			expected:  PhaseFinished,
		},
		{
			name:      "closed status wins over discussion",
			status:    StatusClosed,
			ephemeral: PhaseDiscussion,
			expected:  PhaseClosed,
		},
		{
			name:      "stale lobby ephemeral does not mask dealing",
			status:    StatusDealing,
			ephemeral: PhaseLobby,
			expected:  PhaseDealing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ResolvePhase(tt.status, tt.ephemeral)
			if result != tt.expected {
				t.Errorf("ResolvePhase(%v, %v) = %v, want %v", tt.status, tt.ephemeral, result, tt.expected)
			}
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	terminal := []Status{StatusFinished, StatusClosed}
	live := []Status{StatusLobby, StatusDealing, StatusReady}

	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("Terminal() = false for %v, want true", s)
		}
	}
	for _, s := range live {
		if s.Terminal() {
			t.Errorf("Terminal() = true for %v, want false", s)
		}
	}
}

func TestRoleValidity(t *testing.T) {
	valid := []Role{RoleUnassigned, RoleCrew, RoleTopo, RoleDeceivedTopo}
	for _, r := range valid {
		if !r.Valid() {
			t.Errorf("Valid() = false for %v, want true", r)
		}
	}
	if Role("captain").Valid() {
		t.Error("Valid() = true for unknown role, want false")
	}

	if !RoleTopo.IsTopo() || !RoleDeceivedTopo.IsTopo() {
		t.Error("topo roles should report IsTopo")
	}
	if RoleCrew.IsTopo() || RoleUnassigned.IsTopo() {
		t.Error("non-topo roles should not report IsTopo")
	}
}

func TestShownWord(t *testing.T) {
	sess := &Session{
		WordText:         "Paella",
		ClueText:         "Plato con arroz",
		DeceivedWordText: "Tortilla",
	}

	tests := []struct {
		name     string
		role     Role
		expected string
	}{
		{name: "crew sees the real word", role: RoleCrew, expected: "Paella"},
		{name: "topo sees nothing", role: RoleTopo, expected: ""},
		{name: "deceived topo sees the decoy", role: RoleDeceivedTopo, expected: "Tortilla"},
		{name: "unassigned sees nothing", role: RoleUnassigned, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Player{Role: tt.role}
			if got := p.ShownWord(sess); got != tt.expected {
				t.Errorf("ShownWord() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSessionHasWord(t *testing.T) {
	s := &Session{}
	if s.HasWord() {
		t.Error("HasWord() = true for empty session")
	}

	s.WordText = "Paella"
	if s.HasWord() {
		t.Error("HasWord() = true with word but no clue")
	}

	s.ClueText = "Plato con arroz"
	if !s.HasWord() {
		t.Error("HasWord() = false with word and clue set")
	}
}

func TestSessionClearGame(t *testing.T) {
	s := &Session{
		Status:               StatusFinished,
		CardID:               "card-paella",
		WordText:             "Paella",
		ClueText:             "Plato con arroz",
		DeceivedWordText:     "Tortilla",
		DeceivedClueText:     "Lleva huevo",
		FirstSpeakerPlayerID: "p1",
	}

	s.ClearGame()

	if s.Status != StatusLobby {
		t.Errorf("Status = %v after clear, want %v", s.Status, StatusLobby)
	}
	if s.CardID != "" || s.WordText != "" || s.ClueText != "" {
		t.Error("card fields should be empty after clear")
	}
	if s.DeceivedWordText != "" || s.DeceivedClueText != "" {
		t.Error("deceived card fields should be empty after clear")
	}
	if s.FirstSpeakerPlayerID != "" {
		t.Error("first speaker should be empty after clear")
	}
}

func TestOfflineSessionIDs(t *testing.T) {
	offline := NewOfflineSessionID()
	if !strings.HasPrefix(offline, OfflineIDPrefix) {
		t.Errorf("NewOfflineSessionID() = %q, want %q prefix", offline, OfflineIDPrefix)
	}
	if !(&Session{ID: offline}).IsOffline() {
		t.Error("IsOffline() = false for offline-marked id")
	}

	online := NewSessionID()
	if (&Session{ID: online}).IsOffline() {
		t.Errorf("IsOffline() = true for %q", online)
	}
}
