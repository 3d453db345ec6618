// Package bot implements the server's built-in agent policies. Decide is a
// pure function of the current hand and table state: it never mutates
// either, leaving submission and rejection-fallback handling to the
// caller (normally the tableman tick loop).
package bot

import (
	"math/rand"

	"github.com/holdemtable/server/internal/card"
	"github.com/holdemtable/server/internal/evaluator"
	"github.com/holdemtable/server/internal/table"
)

// Decision is the outcome of a policy evaluation. Amount is the total
// chips the action carries; it is ignored for Fold and Check.
type Decision struct {
	Kind   table.ActionKind
	Amount int
}

// options bounds what seatNumber may legally do on its current turn. The
// raiseTo fields are expressed as a seat's new total CurrentBet, matching
// the ProcessAction contract for Bet/Raise amounts.
type options struct {
	canCheck   bool
	toCall     int
	currentBet int
	minRaiseTo int
	maxRaiseTo int // the seat's all-in total bet for this round
	pot        int
}

func legalOptions(t *table.Table, h *table.HandState, seatNumber int) options {
	seat := t.Seats[seatNumber]
	toCall := h.CurrentBet - seat.CurrentBet
	if toCall < 0 {
		toCall = 0
	}
	return options{
		canCheck:   toCall == 0,
		toCall:     toCall,
		currentBet: h.CurrentBet,
		minRaiseTo: h.CurrentBet + h.MinRaise,
		maxRaiseTo: seat.CurrentBet + seat.Stack,
		pot:        h.Pot,
	}
}

func (o options) canRaise() bool {
	return o.maxRaiseTo > o.currentBet
}

// Decide applies strategy's policy to seatNumber's turn and returns the
// action to submit via hand.ProcessAction. A raise or bet amount is
// always expressed as the seat's new total CurrentBet for the round,
// matching the ProcessAction contract.
func Decide(rng *rand.Rand, strategy table.AgentType, seatNumber int, h *table.HandState, t *table.Table) Decision {
	seat := t.Seats[seatNumber]
	opts := legalOptions(t, h, seatNumber)
	strength := HandStrength(seat, h)

	switch strategy {
	case table.TAG:
		return decideTAG(rng, opts, strength, raiseCountThisRound(h))
	case table.LAG:
		return decideLAG(rng, opts, strength, raiseCountThisRound(h))
	default:
		return decideFish(rng, opts, strength)
	}
}

// SafeFallback is the last-resort action a caller submits after a policy's
// chosen Decision is rejected by ProcessAction (e.g. a raise below
// minRaise): check if the seat is allowed to, otherwise fold.
func SafeFallback(canCheck bool) Decision {
	if canCheck {
		return Decision{Kind: table.Check}
	}
	return Decision{Kind: table.Fold}
}

// raiseCountThisRound counts the raises and bets already made in the
// current betting round, used by LAG to cap re-raise wars.
func raiseCountThisRound(h *table.HandState) int {
	n := 0
	for i := len(h.Actions) - 1; i >= 0; i-- {
		a := h.Actions[i]
		if a.Round != h.CurrentBettingRound {
			break
		}
		if a.Kind == table.Raise || a.Kind == table.Bet {
			n++
		}
	}
	return n
}

// HandStrength returns a scalar in [0, 1] estimating seat's chance of
// holding the best hand given what is known so far: the 169-entry
// starting-hand chart preflop, a cheap category-based heuristic once
// community cards are out.
func HandStrength(seat *table.Seat, h *table.HandState) float64 {
	if len(h.CommunityCards) == 0 {
		return preflopStrength(seat.HoleCards[0], seat.HoleCards[1])
	}
	return postflopStrength(seat, h)
}

func postflopStrength(seat *table.Seat, h *table.HandState) float64 {
	cards := make([]card.Card, 0, 7)
	cards = append(cards, seat.HoleCards[0], seat.HoleCards[1])
	cards = append(cards, h.CommunityCards...)
	ev := evaluator.Evaluate(cards)

	const categories = float64(evaluator.RoyalFlush) + 1
	step := 1.0 / categories
	strength := float64(ev.Rank) * step
	if len(ev.Values) > 0 {
		strength += (float64(ev.Values[0]) / 14.0) * step
	}
	if strength > 1 {
		strength = 1
	}
	return strength
}

// fractionOf reports how far into [lo, hi] amount falls, clamped to
// [0, 1]; used to size bets proportionally to the pot or the stack.
func fractionOf(amount, lo, hi int) float64 {
	if hi <= lo {
		return 0
	}
	f := float64(amount-lo) / float64(hi-lo)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// openKind picks Bet or Raise for a voluntary aggressive action taken
// while canCheck is true: the big blind's preflop option still carries a
// nonzero CurrentBet, so "opening" there is a raise, not a bet.
func openKind(opts options) table.ActionKind {
	if opts.currentBet == 0 {
		return table.Bet
	}
	return table.Raise
}

func clampRaiseTo(opts options, amountTo int) int {
	if amountTo < opts.minRaiseTo {
		amountTo = opts.minRaiseTo
	}
	if amountTo > opts.maxRaiseTo {
		amountTo = opts.maxRaiseTo
	}
	return amountTo
}
