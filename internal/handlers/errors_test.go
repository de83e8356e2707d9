package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"eltopo/internal/session"
	"eltopo/internal/validation"
)

func TestRespondCoreError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation error",
			err:        validation.ValidationError{Field: "display_name", Message: "display name is required"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no packs selected",
			err:        session.ErrNoPacksSelected,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not found",
			err:        session.ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("loading session: %w", session.ErrNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "not host",
			err:        session.ErrNotHost,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "busy",
			err:        session.ErrBusy,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "no active words",
			err:        session.ErrNoActiveWords,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "offline without data",
			err:        session.ErrOfflineNoData,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "no channel",
			err:        session.ErrNoChannel,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "dealing timeout",
			err:        session.ErrDealingTimeout,
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "unknown error",
			err:        fmt.Errorf("disk on fire"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondCoreError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("response is not JSON: %v", err)
			}
			if body["error"] == "" {
				t.Error("response missing error field")
			}
		})
	}
}

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	respondJSON(rec, http.StatusCreated, map[string]string{"id": "abc"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["id"] != "abc" {
		t.Errorf("id = %q, want abc", body["id"])
	}
}
