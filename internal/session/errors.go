package session

import "errors"

// Core operation failures. Operations return these explicitly rather
// than panicking; the HTTP layer maps them onto user-facing responses.
var (
	// ErrNoPacksSelected rejects session creation with an empty
	// category selection.
	ErrNoPacksSelected = errors.New("no categories selected")

	// ErrNotFound reports a missing session or player.
	ErrNotFound = errors.New("session not found")

	// ErrNoPlayers rejects dealing into an empty session.
	ErrNoPlayers = errors.New("no players in session")

	// ErrNoActiveWords reports that the selected categories hold no
	// active cards in the remote store.
	ErrNoActiveWords = errors.New("no active words in selected categories")

	// ErrNoWordAssigned reports a session without its secret content;
	// the fix is recreating the session, not dealing again.
	ErrNoWordAssigned = errors.New("no word assigned, recreate session")

	// ErrDealingTimeout reports that the word/clue never materialized
	// within the dealing watchdog window. The operation can be retried.
	ErrDealingTimeout = errors.New("word assignment timed out")

	// ErrOfflineNoData reports session creation attempted while offline
	// with an empty card cache.
	ErrOfflineNoData = errors.New("no connection and no offline data")

	// ErrNoChannel reports an ephemeral broadcast attempted without a
	// realtime channel. No silent fallback.
	ErrNoChannel = errors.New("no realtime channel available")

	// ErrNotHost rejects host-only actions from non-host devices.
	ErrNotHost = errors.New("only the host can do that")

	// ErrBusy guards against re-entrant invocations of an operation
	// that is still in flight.
	ErrBusy = errors.New("another operation is in progress")
)
