package validation

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateDisplayName checks if a player display name is valid
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "display_name", Message: "display name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "display_name", Message: "display name must be at least 2 characters"}
	}
	if len(name) > 40 {
		return ValidationError{Field: "display_name", Message: "display name must be at most 40 characters"}
	}
	return nil
}

// ValidatePackSelection checks that at least one category is selected
func ValidatePackSelection(packIDs []string) error {
	if len(packIDs) == 0 {
		return ValidationError{Field: "selected_pack_ids", Message: "select at least one category"}
	}
	for _, id := range packIDs {
		if strings.TrimSpace(id) == "" {
			return ValidationError{Field: "selected_pack_ids", Message: "empty category id"}
		}
	}
	return nil
}

// ValidateTopoCount applies the game-design rule enforced at the UI
// boundary: at least one topo, and never more than half the table. The
// core itself only refuses zero players or a missing word.
func ValidateTopoCount(topoCount, playerCount int) error {
	if topoCount < 1 {
		return ValidationError{Field: "topo_count", Message: "at least one topo is required"}
	}
	if playerCount > 0 && topoCount > playerCount/2 {
		return ValidationError{Field: "topo_count", Message: "too many topos for this player count"}
	}
	return nil
}
