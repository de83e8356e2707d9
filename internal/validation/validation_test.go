package validation

import "testing"

func TestValidateDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid name",
			input:   "Ana",
			wantErr: false,
		},
		{
			name:    "minimum length",
			input:   "Al",
			wantErr: false,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "single character",
			input:   "A",
			wantErr: true,
		},
		{
			name:    "over forty characters",
			input:   "Nombre demasiado largo para cualquier tarjeta de jugador",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDisplayName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDisplayName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePackSelection(t *testing.T) {
	tests := []struct {
		name    string
		packIDs []string
		wantErr bool
	}{
		{
			name:    "one pack",
			packIDs: []string{"pack-casa"},
			wantErr: false,
		},
		{
			name:    "several packs",
			packIDs: []string{"pack-casa", "pack-comida"},
			wantErr: false,
		},
		{
			name:    "empty selection",
			packIDs: nil,
			wantErr: true,
		},
		{
			name:    "blank id in selection",
			packIDs: []string{"pack-casa", "  "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackSelection(tt.packIDs)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackSelection(%v) error = %v, wantErr %v", tt.packIDs, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTopoCount(t *testing.T) {
	tests := []struct {
		name        string
		topoCount   int
		playerCount int
		wantErr     bool
	}{
		{
			name:        "one topo of four",
			topoCount:   1,
			playerCount: 4,
			wantErr:     false,
		},
		{
			name:        "two topos of five",
			topoCount:   2,
			playerCount: 5,
			wantErr:     false,
		},
		{
			name:        "zero topos",
			topoCount:   0,
			playerCount: 4,
			wantErr:     true,
		},
		{
			name:        "half the table",
			topoCount:   2,
			playerCount: 4,
			wantErr:     false,
		},
		{
			name:        "more than half the table",
			topoCount:   3,
			playerCount: 4,
			wantErr:     true,
		},
		{
			name:        "unknown player count skips the ratio check",
			topoCount:   5,
			playerCount: 0,
			wantErr:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTopoCount(tt.topoCount, tt.playerCount)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTopoCount(%d, %d) error = %v, wantErr %v", tt.topoCount, tt.playerCount, err, tt.wantErr)
			}
		})
	}
}
