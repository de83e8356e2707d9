package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"eltopo/internal/session"
	"eltopo/internal/validation"
)

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": userMsg})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondCoreError maps the core's sentinel errors onto HTTP responses
func respondCoreError(w http.ResponseWriter, err error) {
	var valErr validation.ValidationError
	switch {
	case errors.As(err, &valErr):
		respondWithError(w, http.StatusBadRequest, valErr.Error(), "", nil)
	case errors.Is(err, session.ErrNoPacksSelected),
		errors.Is(err, session.ErrNoPlayers),
		errors.Is(err, session.ErrNoWordAssigned):
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
	case errors.Is(err, session.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "session not found", "", nil)
	case errors.Is(err, session.ErrNotHost):
		respondWithError(w, http.StatusForbidden, err.Error(), "", nil)
	case errors.Is(err, session.ErrBusy):
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)
	case errors.Is(err, session.ErrNoActiveWords):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error(), "", nil)
	case errors.Is(err, session.ErrOfflineNoData),
		errors.Is(err, session.ErrNoChannel):
		respondWithError(w, http.StatusServiceUnavailable, err.Error(), "", nil)
	case errors.Is(err, session.ErrDealingTimeout):
		respondWithError(w, http.StatusGatewayTimeout, err.Error(), "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "internal error", "unhandled core error", err)
	}
}
