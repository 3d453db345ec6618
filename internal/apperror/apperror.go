// Package apperror defines the small set of error kinds used throughout
// the engine. Callers distinguish them with errors.Is; the HTTP boundary
// maps each kind to a status code.
package apperror

import "errors"

var (
	// ErrValidation: malformed action, amount out of range, wrong agent
	// for the current turn, sit into an occupied seat, buy-in outside
	// range. No state mutation.
	ErrValidation = errors.New("validation")

	// ErrUnavailable: unknown table id or agent id. No state mutation.
	ErrUnavailable = errors.New("unavailable")

	// ErrProtocolTiming: action submitted when no hand is active, or the
	// seat cannot act right now. No state mutation.
	ErrProtocolTiming = errors.New("protocol timing")

	// ErrExternalTransient: a persistence or escrow call failed. The
	// in-memory engine remains correct; the caller logs and, for
	// escrow, surfaces a settlement-failed marker.
	ErrExternalTransient = errors.New("external transient")

	// ErrInvariant: should be unreachable. Caught by the tick loop's
	// per-table guard, which aborts the hand and returns in-round bets.
	ErrInvariant = errors.New("invariant violation")
)
