package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"eltopo/internal/cache"
	"eltopo/internal/connectivity"
	"eltopo/internal/models"
	"eltopo/internal/realtime"
	"eltopo/internal/session"
	"eltopo/internal/validation"
)

// SessionHandler exposes the game operations over JSON. Each request
// runs a fresh orchestrator acting as the caller's identity, so the
// same core drives hosted games and device builds alike.
type SessionHandler struct {
	store         session.Store
	cards         session.CardSource
	catalog       cache.Source
	cache         *cache.CardCache
	monitor       *connectivity.Monitor
	hub           *realtime.Hub
	tokenKey      []byte
	tokenTTL      time.Duration
	minPlayers    int
	publicBaseURL string
}

// NewSessionHandler creates the session handler
func NewSessionHandler(store session.Store, cards session.CardSource, catalog cache.Source, cardCache *cache.CardCache, monitor *connectivity.Monitor, hub *realtime.Hub, tokenKey []byte, tokenTTL time.Duration, minPlayers int, publicBaseURL string) *SessionHandler {
	return &SessionHandler{
		store:         store,
		cards:         cards,
		catalog:       catalog,
		cache:         cardCache,
		monitor:       monitor,
		hub:           hub,
		tokenKey:      tokenKey,
		tokenTTL:      tokenTTL,
		minPlayers:    minPlayers,
		publicBaseURL: publicBaseURL,
	}
}

// hubChannel adapts the in-process hub to the core's channel interface
type hubChannel struct {
	hub *realtime.Hub
}

func (h hubChannel) Broadcast(msg realtime.Message) error {
	h.hub.Publish(msg)
	return nil
}

func (h *SessionHandler) orchestrator(id session.Identity) *session.Orchestrator {
	o := session.NewOrchestrator(h.store, h.cards, h.cache, h.monitor, id)
	o.SetMinPlayers(h.minPlayers)
	o.AttachChannel(hubChannel{hub: h.hub})
	return o
}

// MintGuest issues a guest identity with a signed token
func (h *SessionHandler) MintGuest(w http.ResponseWriter, r *http.Request) {
	guestID := session.NewGuestID()
	token, err := session.SignGuestToken(guestID, h.tokenKey, h.tokenTTL)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to issue guest token", "", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"guest_id": guestID,
		"token":    token,
	})
}

// CreateSession creates a new session with its card pre-selected. When
// session_id names an existing reset session hosted by the caller, the
// fresh card is attached to that row instead, replaying it with its
// players intact.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID       string   `json:"session_id"`
		TopoCount       int      `json:"topo_count"`
		SelectedPackIDs []string `json:"selected_pack_ids"`
		ExcludeCardID   string   `json:"exclude_card_id"`
		CluesEnabled    bool     `json:"clues_enabled"`
		Variant         string   `json:"variant"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	if err := validation.ValidatePackSelection(req.SelectedPackIDs); err != nil {
		respondCoreError(w, err)
		return
	}
	variant := models.Variant(req.Variant)
	if variant != "" && !variant.Valid() {
		respondWithError(w, http.StatusBadRequest, "unknown variant", "", nil)
		return
	}

	o := h.orchestrator(IdentityFromContext(r.Context()))
	if req.SessionID != "" {
		if err := o.Load(req.SessionID); err != nil {
			respondCoreError(w, err)
			return
		}
	}

	sess, err := o.CreateSession(session.CreateParams{
		TopoCount:       req.TopoCount,
		SelectedPackIDs: req.SelectedPackIDs,
		ExcludeCardID:   req.ExcludeCardID,
		CluesEnabled:    req.CluesEnabled,
		Variant:         variant,
	})
	if err != nil {
		respondCoreError(w, err)
		return
	}

	if req.SessionID != "" {
		h.publishRowChange(sess.ID, "sessions", sess.ID)
		respondJSON(w, http.StatusCreated, sessionView(sess, o.Players()))
		return
	}
	respondJSON(w, http.StatusCreated, sessionView(sess, nil))
}

// GetSession fetches a session with its players in turn order, plus the
// number of devices currently subscribed to its room so the lobby can
// show who is actually connected
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, players, err := h.store.Fetch(r.PathValue("id"))
	if err != nil {
		respondCoreError(w, err)
		return
	}

	view := sessionView(sess, players)
	view["connected_devices"] = h.hub.RoomSize(sess.ID)
	respondJSON(w, http.StatusOK, view)
}

// JoinSession adds a player to a session
func (h *SessionHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string `json:"display_name"`
		Gender      string `json:"gender"`
		AvatarKey   string `json:"avatar_key"`
		PhotoURL    string `json:"photo_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}
	if err := validation.ValidateDisplayName(req.DisplayName); err != nil {
		respondCoreError(w, err)
		return
	}

	id := IdentityFromContext(r.Context())
	o := h.orchestrator(id)
	if err := o.Load(r.PathValue("id")); err != nil {
		respondCoreError(w, err)
		return
	}

	sess := o.Session()
	if sess.Status != models.StatusLobby {
		respondWithError(w, http.StatusConflict, "session is not accepting players", "", nil)
		return
	}

	player, err := o.AddPlayer(models.Player{
		UserID:      id.UserID,
		GuestID:     id.GuestID,
		DisplayName: req.DisplayName,
		Gender:      req.Gender,
		AvatarKey:   req.AvatarKey,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		respondCoreError(w, err)
		return
	}

	h.publishRowChange(sess.ID, "players", player.ID)
	respondJSON(w, http.StatusCreated, playerView(player))
}

// StartDealing assigns roles and turn order to all players
func (h *SessionHandler) StartDealing(w http.ResponseWriter, r *http.Request) {
	o, sess, ok := h.loadHost(w, r)
	if !ok {
		return
	}

	// Caos draws its own topo count, so the configured one is not checked
	if sess.Variant != models.VariantCaos {
		if err := validation.ValidateTopoCount(sess.TopoCount, len(o.Players())); err != nil {
			respondCoreError(w, err)
			return
		}
	}

	if err := o.StartDealing(); err != nil {
		respondCoreError(w, err)
		return
	}

	h.publishRowChange(sess.ID, "sessions", sess.ID)
	respondJSON(w, http.StatusOK, sessionView(o.Session(), o.Players()))
}

// MarkRevealed records that a player has seen their card
func (h *SessionHandler) MarkRevealed(w http.ResponseWriter, r *http.Request) {
	o := h.orchestrator(IdentityFromContext(r.Context()))
	if err := o.Load(r.PathValue("id")); err != nil {
		respondCoreError(w, err)
		return
	}

	playerID := r.PathValue("playerId")
	if err := o.MarkPlayerRevealed(playerID); err != nil {
		respondCoreError(w, err)
		return
	}

	h.publishRowChange(r.PathValue("id"), "players", playerID)
	respondJSON(w, http.StatusOK, map[string]bool{"revealed": true})
}

// ContinueToDiscussion broadcasts the ephemeral discussion phase
func (h *SessionHandler) ContinueToDiscussion(w http.ResponseWriter, r *http.Request) {
	o, sess, ok := h.loadHost(w, r)
	if !ok {
		return
	}

	if err := o.ContinueToDiscussion(); err != nil {
		respondCoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"phase":                   string(models.PhaseDiscussion),
		"first_speaker_player_id": sess.FirstSpeakerPlayerID,
	})
}

// FinishGame ends the session for every device
func (h *SessionHandler) FinishGame(w http.ResponseWriter, r *http.Request) {
	o, sess, ok := h.loadHost(w, r)
	if !ok {
		return
	}

	if err := o.FinishGame(); err != nil {
		respondCoreError(w, err)
		return
	}

	h.publishRowChange(sess.ID, "sessions", sess.ID)
	respondJSON(w, http.StatusOK, map[string]string{"status": string(models.StatusFinished)})
}

// ResetGame clears the game so the same session can be replayed
func (h *SessionHandler) ResetGame(w http.ResponseWriter, r *http.Request) {
	o, sess, ok := h.loadHost(w, r)
	if !ok {
		return
	}

	if err := o.ResetGame(); err != nil {
		respondCoreError(w, err)
		return
	}

	h.publishRowChange(sess.ID, "sessions", sess.ID)
	respondJSON(w, http.StatusOK, map[string]string{"status": string(models.StatusLobby)})
}

// JoinQR renders the session join link as a QR code PNG
func (h *SessionHandler) JoinQR(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if _, _, err := h.store.Fetch(sessionID); err != nil {
		respondCoreError(w, err)
		return
	}

	joinURL := h.publicBaseURL + "/join/" + sessionID
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to render QR code", "", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// ListCards serves the bulk card/pack snapshot devices sync their
// caches from
func (h *SessionHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.catalog.ListActiveCards()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list cards", "", err)
		return
	}

	packs, err := h.catalog.ListPacks()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list packs", "", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"cards": cards,
		"packs": packs,
	})
}

// loadHost loads the session as the request identity and enforces the
// host check shared by the host-only endpoints
func (h *SessionHandler) loadHost(w http.ResponseWriter, r *http.Request) (*session.Orchestrator, *models.Session, bool) {
	id := IdentityFromContext(r.Context())
	o := h.orchestrator(id)
	if err := o.Load(r.PathValue("id")); err != nil {
		respondCoreError(w, err)
		return nil, nil, false
	}

	sess := o.Session()
	if !id.IsHost(sess) {
		respondCoreError(w, session.ErrNotHost)
		return nil, nil, false
	}
	return o, sess, true
}

func (h *SessionHandler) publishRowChange(sessionID, table, rowID string) {
	h.hub.Publish(realtime.Message{
		Kind:      realtime.KindRowChange,
		SessionID: sessionID,
		Table:     table,
		RowID:     rowID,
	})
}
