package session

import (
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"eltopo/internal/cache"
	"eltopo/internal/connectivity"
	"eltopo/internal/models"
	"eltopo/internal/realtime"
)

// DeviceState is the device-local operation state. One enum field
// instead of a pile of loading/requested booleans; every operation is a
// transition on it.
type DeviceState int

const (
	StateIdle DeviceState = iota
	StateCreating
	StateDealing
	StateAwaitingAssignment
	StateReady
)

func (s DeviceState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCreating:
		return "creating"
	case StateDealing:
		return "dealing"
	case StateAwaitingAssignment:
		return "awaiting_assignment"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Channel is the per-session broadcast bus as seen by one device.
// Inbound messages are delivered to HandleMessage by the transport.
type Channel interface {
	Broadcast(msg realtime.Message) error
}

// DefaultMinPlayers is the smallest player count a game makes sense
// with.
const DefaultMinPlayers = 3

const (
	// assignmentTimeout is the dealing watchdog: if the session's
	// word/clue have not materialized by then, dealing fails with an
	// explicit retry affordance.
	assignmentTimeout = 10 * time.Second

	assignmentPollInterval = 500 * time.Millisecond
)

// Deceptive content shown to deceived topos when no alternative card
// can be sourced.
const (
	fallbackDeceivedWord = "Paraguas"
	fallbackDeceivedClue = "Se abre cuando llueve"
)

// Orchestrator is the session state machine for one device: it owns
// phase transitions, role assignment, turn-order randomization and the
// reconciliation between persisted status and ephemeral broadcast
// phase.
type Orchestrator struct {
	mu       sync.Mutex
	store    Store
	cards    CardSource
	cache    *cache.CardCache
	monitor  *connectivity.Monitor
	channel  Channel
	identity Identity
	rng      *rand.Rand

	minPlayers int

	state          DeviceState
	session        *models.Session
	players        []models.Player
	ephemeralPhase models.Phase
}

// NewOrchestrator wires the state machine to its collaborators. The
// channel is attached separately, once the transport has subscribed.
func NewOrchestrator(store Store, cards CardSource, cardCache *cache.CardCache, monitor *connectivity.Monitor, identity Identity) *Orchestrator {
	return &Orchestrator{
		store:      store,
		cards:      cards,
		cache:      cardCache,
		monitor:    monitor,
		identity:   identity,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		minPlayers: DefaultMinPlayers,
		state:      StateIdle,
	}
}

// AttachChannel connects the realtime bus. Passing nil detaches it.
func (o *Orchestrator) AttachChannel(ch Channel) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.channel = ch
}

// SetMinPlayers overrides the dealing-readiness minimum.
func (o *Orchestrator) SetMinPlayers(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.minPlayers = n
}

// Identity returns the device identity this orchestrator acts as.
func (o *Orchestrator) Identity() Identity {
	return o.identity
}

// State returns the device-local operation state.
func (o *Orchestrator) State() DeviceState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Session returns a copy of the loaded session, nil if none.
func (o *Orchestrator) Session() *models.Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil
	}
	s := *o.session
	return &s
}

// Players returns a copy of the loaded player list in turn order.
func (o *Orchestrator) Players() []models.Player {
	o.mu.Lock()
	defer o.mu.Unlock()
	players := make([]models.Player, len(o.players))
	copy(players, o.players)
	return players
}

// Phase returns the displayed phase, derived from persisted status and
// the device's ephemeral phase by the reconciliation rule.
func (o *Orchestrator) Phase() models.Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return ""
	}
	return models.ResolvePhase(o.session.Status, o.ephemeralPhase)
}

// CreateParams are the inputs of session creation.
type CreateParams struct {
	TopoCount       int
	SelectedPackIDs []string
	ExcludeCardID   string
	CluesEnabled    bool
	Variant         models.Variant
}

// CreateSession builds a new session with its secret card already
// attached. Local-first: whenever the card cache can serve the selected
// packs, the session is created as an unpersisted offline session with
// zero network dependency, even when the device is online. The remote
// path is the fallback, gated on connectivity.
func (o *Orchestrator) CreateSession(p CreateParams) (*models.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateCreating {
		return nil, ErrBusy
	}
	if len(p.SelectedPackIDs) == 0 {
		return nil, ErrNoPacksSelected
	}
	if p.TopoCount < 1 {
		p.TopoCount = 1
	}
	if p.Variant == "" {
		p.Variant = models.VariantClassic
	}

	o.state = StateCreating

	// A reset row left the loaded session wordless in the lobby; creation
	// then reattaches a fresh card to that same row instead of minting a
	// new one, keeping its players. That is what makes a session replayable.
	if o.replayableLocked() {
		sess, err := o.replayLocked(p)
		if err != nil {
			o.state = StateReady
			return nil, err
		}
		o.session = sess
		o.ephemeralPhase = models.PhaseLobby
		o.state = StateReady

		copied := *sess
		return &copied, nil
	}

	sess, err := o.createLocked(p)
	if err != nil {
		o.state = StateIdle
		return nil, err
	}

	o.session = sess
	o.players = nil
	o.ephemeralPhase = models.PhaseLobby
	o.state = StateReady

	copied := *sess
	return &copied, nil
}

// replayableLocked reports whether creation should target the loaded
// session: an online row back in the lobby with its game fields cleared
// by a reset, and this device hosting it. Everything else mints a new
// session.
func (o *Orchestrator) replayableLocked() bool {
	return o.session != nil &&
		!o.session.IsOffline() &&
		o.identity.IsHost(o.session) &&
		o.session.Status == models.StatusLobby &&
		!o.session.HasWord()
}

// replayLocked draws a fresh card and attaches it to the loaded session
// row. Local-first like creation, but the card always lands on the
// existing row, whichever source served it.
func (o *Orchestrator) replayLocked(p CreateParams) (*models.Session, error) {
	sess := o.session

	var card *models.Card
	if o.cache != nil && o.cache.HasData() {
		card = o.cache.RandomCard(p.SelectedPackIDs, []string{p.ExcludeCardID})
	}
	if card == nil {
		if o.monitor != nil && !o.monitor.Online() {
			return nil, ErrOfflineNoData
		}
		picked, err := pickRandomCard(o.cards, o.rng, p.SelectedPackIDs, p.ExcludeCardID)
		if err != nil {
			return nil, err
		}
		card = picked
	}

	if err := o.store.SetCard(sess.ID, card); err != nil {
		return nil, fmt.Errorf("failed to reassign card: %w", err)
	}
	sess.SetCard(card)
	sess.TopoCount = p.TopoCount
	sess.SelectedPackIDs = p.SelectedPackIDs
	sess.CluesEnabled = p.CluesEnabled
	sess.Variant = p.Variant
	sess.UpdatedAt = time.Now()
	return sess, nil
}

func (o *Orchestrator) createLocked(p CreateParams) (*models.Session, error) {
	sess := &models.Session{
		HostUserID:      o.identity.UserID,
		HostGuestID:     o.identity.GuestID,
		Status:          models.StatusLobby,
		TopoCount:       p.TopoCount,
		SelectedPackIDs: p.SelectedPackIDs,
		CluesEnabled:    p.CluesEnabled,
		Variant:         p.Variant,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	// Local-first path: any cached card beats a network round-trip.
	if o.cache != nil && o.cache.HasData() {
		if card := o.cache.RandomCard(p.SelectedPackIDs, []string{p.ExcludeCardID}); card != nil {
			sess.ID = models.NewOfflineSessionID()
			sess.SetCard(card)
			if err := o.store.Create(sess, nil); err != nil {
				return nil, fmt.Errorf("failed to store offline session: %w", err)
			}
			return sess, nil
		}
	}

	// The cache cannot serve these packs, so the remote store must.
	if o.monitor != nil && !o.monitor.Online() {
		return nil, ErrOfflineNoData
	}

	card, err := pickRandomCard(o.cards, o.rng, p.SelectedPackIDs, p.ExcludeCardID)
	if err != nil {
		return nil, err
	}

	sess.ID = models.NewSessionID()
	sess.SetCard(card)
	if err := o.store.Create(sess, nil); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}

// Load fetches an existing session and its players, replacing any
// locally loaded session.
func (o *Orchestrator) Load(sessionID string) error {
	sess, players, err := o.store.Fetch(sessionID)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.session = sess
	o.players = players
	o.ephemeralPhase = models.Phase(sess.Status)
	o.state = StateReady
	return nil
}

// AddPlayer registers a participant in the loaded session.
func (o *Orchestrator) AddPlayer(p models.Player) (*models.Player, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil {
		return nil, ErrNotFound
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.SessionID = o.session.ID
	p.Role = models.RoleUnassigned
	p.TurnOrder = len(o.players)
	p.CreatedAt = time.Now()

	if err := o.store.AddPlayer(&p); err != nil {
		return nil, fmt.Errorf("failed to add player: %w", err)
	}

	o.players = append(o.players, p)
	return &p, nil
}

// IsReadyForDealing is the UI gating predicate: loaded, not mid-
// operation, still in the lobby, enough players, secret content present.
// StartDealing itself only enforces the word/clue and non-empty player
// checks.
func (o *Orchestrator) IsReadyForDealing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.session != nil &&
		o.state == StateReady &&
		o.session.Status == models.StatusLobby &&
		len(o.players) >= o.minPlayers &&
		o.session.HasWord()
}

// StartDealing assigns roles and turn order. Every randomization is an
// independent Fisher–Yates shuffle: one for the alternate-role subset,
// one for turn order and one for the first speaker, so none of the
// three leaks information about the others.
func (o *Orchestrator) StartDealing() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil {
		return ErrNotFound
	}
	if o.state == StateDealing || o.state == StateAwaitingAssignment {
		return ErrBusy
	}
	if len(o.players) == 0 {
		return ErrNoPlayers
	}

	if !o.session.HasWord() {
		// Creation preloads the card, so this only happens when that
		// was somehow bypassed. Watch the row for the assignment to
		// materialize, with a hard deadline and a clean retry path.
		if err := o.awaitAssignmentLocked(); err != nil {
			return err
		}
	}

	o.state = StateDealing
	err := o.dealLocked()
	o.state = StateReady
	return err
}

// awaitAssignmentLocked polls the store until word/clue appear or the
// watchdog fires. State is restored on timeout so the operation can be
// re-invoked cleanly.
func (o *Orchestrator) awaitAssignmentLocked() error {
	o.state = StateAwaitingAssignment
	deadline := time.Now().Add(assignmentTimeout)

	for time.Now().Before(deadline) {
		time.Sleep(assignmentPollInterval)

		sess, players, err := o.store.Fetch(o.session.ID)
		if err != nil {
			continue
		}
		o.session = sess
		o.players = players
		if sess.HasWord() {
			return nil
		}
	}

	o.state = StateReady
	if !o.session.HasWord() {
		if o.session.WordText == "" && o.session.ClueText == "" {
			return ErrDealingTimeout
		}
		return ErrNoWordAssigned
	}
	return nil
}

func (o *Orchestrator) dealLocked() error {
	sess := o.session
	n := len(o.players)

	// Variant hook: caos replaces the configured topo count with a
	// fresh uniform draw over [1, playerCount].
	topoCount := sess.TopoCount
	if sess.Variant == models.VariantCaos {
		topoCount = o.rng.Intn(n) + 1
	}
	if topoCount > n {
		topoCount = n
	}

	// Shuffle #1: who gets the alternate role. Shuffling the full id
	// list and taking a prefix avoids any bias from join order.
	roleOrder := o.shuffledIndexes(n)
	topoRole := models.RoleTopo
	if sess.Variant == models.VariantMisterioso {
		topoRole = models.RoleDeceivedTopo
		if err := o.assignDeceivedCardLocked(); err != nil {
			return err
		}
	}

	roles := make([]models.Role, n)
	for i := range roles {
		roles[i] = models.RoleCrew
	}
	for _, idx := range roleOrder[:topoCount] {
		roles[idx] = topoRole
	}

	// Shuffle #2: turn order, deliberately decorrelated from the role
	// selection so reveal order leaks nothing about who the topo is.
	turnOrder := o.shuffledIndexes(n)
	turns := make([]int, n)
	for pos, idx := range turnOrder {
		turns[idx] = pos
	}

	for i := range o.players {
		p := &o.players[i]
		if err := o.store.UpdateAssignment(sess.ID, p.ID, roles[i], turns[i]); err != nil {
			return fmt.Errorf("failed to assign role to player %s: %w", p.ID, err)
		}
		p.Role = roles[i]
		p.TurnOrder = turns[i]
		p.HasRevealed = false
	}

	// Shuffle #3: the first speaker, independent of turn order. It is
	// persisted so a reload picks the same speaker.
	speakerIdx := o.shuffledIndexes(n)[0]
	firstSpeakerID := o.players[speakerIdx].ID
	if err := o.store.MarkDealt(sess.ID, firstSpeakerID); err != nil {
		return fmt.Errorf("failed to persist dealing: %w", err)
	}

	sess.FirstSpeakerPlayerID = firstSpeakerID
	sess.Status = models.StatusDealing
	o.ephemeralPhase = models.PhaseDealing

	sortPlayersByTurn(o.players)
	return nil
}

// assignDeceivedCardLocked sources a second, different card to show to
// deceived topos, falling back to fixed placeholder content when the
// selected packs hold no alternative.
func (o *Orchestrator) assignDeceivedCardLocked() error {
	sess := o.session

	word, clue := fallbackDeceivedWord, fallbackDeceivedClue
	if sess.IsOffline() {
		if card := o.cache.RandomCard(sess.SelectedPackIDs, []string{sess.CardID}); card != nil && card.ID != sess.CardID {
			word, clue = card.Word, card.Clue
		}
	} else {
		card, err := pickRandomCard(o.cards, o.rng, sess.SelectedPackIDs, sess.CardID)
		if err == nil && card.ID != sess.CardID {
			word, clue = card.Word, card.Clue
		}
	}

	if err := o.store.SetDeceivedCard(sess.ID, word, clue); err != nil {
		return fmt.Errorf("failed to persist deceived card: %w", err)
	}
	sess.SetDeceivedCard(word, clue)
	return nil
}

// MarkPlayerRevealed records that a player has confirmed seeing their
// card. The local view updates optimistically; a persistence failure is
// reported but the optimistic state stands, trading strict consistency
// for responsiveness.
func (o *Orchestrator) MarkPlayerRevealed(playerID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil {
		return ErrNotFound
	}

	found := false
	for i := range o.players {
		if o.players[i].ID == playerID {
			o.players[i].HasRevealed = true
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}

	if err := o.store.MarkRevealed(o.session.ID, playerID); err != nil {
		log.Printf("Warning: failed to persist reveal for player %s: %v", playerID, err)
		return fmt.Errorf("failed to persist reveal: %w", err)
	}
	return nil
}

// AllRevealed reports whether every player has confirmed their card.
func (o *Orchestrator) AllRevealed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.players) == 0 {
		return false
	}
	for i := range o.players {
		if !o.players[i].HasRevealed {
			return false
		}
	}
	return true
}

// ContinueToDiscussion moves the session into the ephemeral discussion
// phase. Host-only. The already-persisted first speaker is read, never
// recomputed; stability across reloads depends on that. Discussion is
// deliberately never written into the persisted status — devices learn
// it from the broadcast, and late joiners via the host sync reply.
func (o *Orchestrator) ContinueToDiscussion() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil {
		return ErrNotFound
	}
	if !o.identity.IsHost(o.session) {
		return ErrNotHost
	}

	// Offline sessions are single-device; there is nobody to tell.
	if !o.session.IsOffline() {
		if o.channel == nil {
			return ErrNoChannel
		}
		err := o.channel.Broadcast(realtime.Message{
			Kind:                 realtime.KindPhaseChange,
			SessionID:            o.session.ID,
			SenderID:             o.identity.Key(),
			Phase:                models.PhaseDiscussion,
			FirstSpeakerPlayerID: o.session.FirstSpeakerPlayerID,
		})
		if err != nil {
			return fmt.Errorf("failed to broadcast phase change: %w", err)
		}
	}

	o.ephemeralPhase = models.PhaseDiscussion
	return nil
}

// FinishGame ends the session. The finish is persisted, so it always
// wins over any ephemeral phase; the broadcast is a courtesy to spare
// other devices the row-change round-trip.
func (o *Orchestrator) FinishGame() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil {
		return ErrNotFound
	}

	if err := o.store.UpdateStatus(o.session.ID, models.StatusFinished); err != nil {
		return fmt.Errorf("failed to persist finish: %w", err)
	}
	o.session.Status = models.StatusFinished
	o.ephemeralPhase = models.PhaseFinished

	if !o.session.IsOffline() && o.channel != nil {
		err := o.channel.Broadcast(realtime.Message{
			Kind:      realtime.KindPhaseChange,
			SessionID: o.session.ID,
			SenderID:  o.identity.Key(),
			Phase:     models.PhaseFinished,
		})
		if err != nil {
			log.Printf("Warning: failed to broadcast finish: %v", err)
		}
	}
	return nil
}

// ResetGame rolls the session back for a replay. Offline sessions are
// deleted outright; online sessions keep their row and players but lose
// every game-specific field, returning to the lobby.
func (o *Orchestrator) ResetGame() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil {
		return ErrNotFound
	}

	if o.session.IsOffline() {
		if err := o.store.Delete(o.session.ID); err != nil {
			return fmt.Errorf("failed to delete offline session: %w", err)
		}
		o.session = nil
		o.players = nil
		o.ephemeralPhase = ""
		o.state = StateIdle
		return nil
	}

	if err := o.store.Reset(o.session.ID); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}

	sess, players, err := o.store.Fetch(o.session.ID)
	if err != nil {
		return err
	}
	o.session = sess
	o.players = players
	o.ephemeralPhase = models.PhaseLobby
	return nil
}

// HandleMessage consumes one inbound channel message. The transport
// calls it for every message of the subscribed session, including the
// subscribe ack.
func (o *Orchestrator) HandleMessage(msg realtime.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil || msg.SessionID != o.session.ID {
		return
	}

	switch msg.Kind {
	case realtime.KindSubscribed:
		// Ephemeral phase cannot be learned from the database, so a
		// fresh subscription always asks the room.
		if o.channel != nil {
			err := o.channel.Broadcast(realtime.Message{
				Kind:      realtime.KindPhaseSyncRequest,
				SessionID: o.session.ID,
				SenderID:  o.identity.Key(),
			})
			if err != nil {
				log.Printf("Warning: failed to request phase sync: %v", err)
			}
		}

	case realtime.KindPhaseSyncRequest:
		// Only the host answers, and only when its ephemeral phase is
		// something the database cannot tell the requester.
		if msg.SenderID == o.identity.Key() {
			return
		}
		if o.identity.IsHost(o.session) && o.ephemeralPhase == models.PhaseDiscussion && o.channel != nil {
			err := o.channel.Broadcast(realtime.Message{
				Kind:                 realtime.KindPhaseSyncState,
				SessionID:            o.session.ID,
				SenderID:             o.identity.Key(),
				Phase:                models.PhaseDiscussion,
				FirstSpeakerPlayerID: o.session.FirstSpeakerPlayerID,
			})
			if err != nil {
				log.Printf("Warning: failed to answer phase sync: %v", err)
			}
		}

	case realtime.KindPhaseChange, realtime.KindPhaseSyncState:
		if msg.SenderID == o.identity.Key() {
			return
		}
		o.ephemeralPhase = msg.Phase
		if msg.FirstSpeakerPlayerID != "" {
			o.session.FirstSpeakerPlayerID = msg.FirstSpeakerPlayerID
		}

	case realtime.KindRowChange:
		// Re-fetch and re-run the reconciliation rule; the ephemeral
		// phase survives unless the persisted status turned terminal.
		sess, players, err := o.store.Fetch(o.session.ID)
		if err != nil {
			log.Printf("Warning: failed to refresh session after row change: %v", err)
			return
		}
		o.session = sess
		o.players = players
	}
}

// shuffledIndexes returns a fresh Fisher–Yates permutation of [0, n).
func (o *Orchestrator) shuffledIndexes(n int) []int {
	return o.rng.Perm(n)
}

func sortPlayersByTurn(players []models.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].TurnOrder < players[j].TurnOrder
	})
}
