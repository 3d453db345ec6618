package hand

import (
	"time"

	"github.com/holdemtable/server/internal/table"
)

// advanceRound closes out the current betting round and moves the hand to
// the next phase, dealing whatever community cards that phase reveals. If
// at most one player remains able to act afterward, it runs the board out
// immediately rather than waiting on further input.
func advanceRound(t *table.Table, h *table.HandState, now time.Time) {
	resetRoundBets(t, h)
	advancePhase(t, h, now)

	if h.Phase == table.Showdown {
		return
	}

	h.ActivePlayerOrder = buildRoundOrder(t, h.DealtOrder, h.DealerSeatNumber)
	h.CurrentPlayerIndex = 0

	if countCanAct(t, h.ActivePlayerOrder) <= 1 {
		runOutBoard(t, h, now)
	}
}

// resetRoundBets clears every seat's per-round commitment and acted flag
// ahead of the next betting round.
func resetRoundBets(t *table.Table, h *table.HandState) {
	h.CurrentBet = 0
	h.MinRaise = t.Config.BigBlind
	for _, seatNum := range h.DealtOrder {
		s := t.Seats[seatNum]
		s.CurrentBet = 0
		s.HasActed = false
	}
}

// advancePhase deals the next street's community cards (if any) and moves
// the hand's phase and betting round forward by one step.
func advancePhase(t *table.Table, h *table.HandState, now time.Time) {
	deck := h.Deck()
	switch h.Phase {
	case table.Preflop:
		h.CommunityCards = append(h.CommunityCards, deck.DrawN(3)...)
		h.Phase = table.Flop
		h.CurrentBettingRound = table.RoundFlop
	case table.Flop:
		h.CommunityCards = append(h.CommunityCards, deck.DrawN(1)...)
		h.Phase = table.Turn
		h.CurrentBettingRound = table.RoundTurn
	case table.Turn:
		h.CommunityCards = append(h.CommunityCards, deck.DrawN(1)...)
		h.Phase = table.River
		h.CurrentBettingRound = table.RoundRiver
	case table.River:
		h.Phase = table.Showdown
	}
	h.LastActionAt = now
}

// runOutBoard deals every remaining street with no further betting, for
// the case where every live player is already all-in.
func runOutBoard(t *table.Table, h *table.HandState, now time.Time) {
	for h.Phase != table.Showdown {
		advancePhase(t, h, now)
	}
	h.CurrentPlayerIndex = -1
}
