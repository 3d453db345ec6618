// Package hand implements the per-hand state machine: dealing, the
// betting-round action contract, side-pot computation, and showdown. It
// operates on *table.Table and *table.HandState; the table package owns
// the data, this package owns the rules.
package hand

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/holdemtable/server/internal/apperror"
	"github.com/holdemtable/server/internal/card"
	"github.com/holdemtable/server/internal/table"
)

// StartHand deals a new hand at t. It requires at least two active seats
// with chips, advances the dealer button, posts blinds, and builds the
// preflop action order. now is the wall-clock time recorded as the hand's
// start time and initial lastActionAt.
func StartHand(t *table.Table, now time.Time) error {
	if t.CurrentHand != nil {
		return fmt.Errorf("hand: %w: a hand is already in progress", apperror.ErrProtocolTiming)
	}
	if len(dealtOrder(t)) < 2 {
		return fmt.Errorf("hand: %w: need at least 2 active seats to start a hand", apperror.ErrProtocolTiming)
	}

	t.HandCount++
	t.AdvanceDealerButton()

	dealt := dealtOrder(t)
	for _, seatNum := range dealt {
		t.Seats[seatNum].ResetForNewHand()
	}

	startingStacks := make(map[int]int, len(dealt))
	for _, seatNum := range dealt {
		startingStacks[seatNum] = t.Seats[seatNum].Stack
	}

	deck, err := card.NewShuffled()
	if err != nil {
		return fmt.Errorf("hand: %w: %v", apperror.ErrInvariant, err)
	}

	id, err := randomID()
	if err != nil {
		return fmt.Errorf("hand: %w: %v", apperror.ErrInvariant, err)
	}

	h := table.NewHandState(id, t.HandCount, deck, startingStacks)
	h.DealtOrder = dealt
	h.StartedAt = now
	h.LastActionAt = now
	h.DealerSeatNumber = t.DealerSeatNumber

	for _, seatNum := range dealt {
		c1, _ := deck.Draw()
		c2, _ := deck.Draw()
		t.Seats[seatNum].DealHoleCards(c1, c2)
	}

	sbSeat, bbSeat := blindSeats(dealt, t.DealerSeatNumber)
	h.SmallBlindSeatNumber = sbSeat
	h.BigBlindSeatNumber = bbSeat

	postBlind(t, h, sbSeat, t.Config.SmallBlind, now)
	postBlind(t, h, bbSeat, t.Config.BigBlind, now)

	h.CurrentBet = t.Seats[bbSeat].CurrentBet
	h.MinRaise = t.Config.BigBlind
	h.CurrentBettingRound = table.RoundPreflop
	h.Phase = table.Preflop

	h.ActivePlayerOrder = buildRoundOrder(t, dealt, bbSeat)
	h.CurrentPlayerIndex = 0

	t.CurrentHand = h

	if countCanAct(t, h.ActivePlayerOrder) <= 1 {
		runOutBoard(t, h, now)
	}

	return nil
}

func randomID() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// dealtOrder returns every active (occupied, not sitting out, with chips)
// seat clockwise starting left of the dealer, with the dealer itself
// last.
func dealtOrder(t *table.Table) []int {
	n := len(t.Seats)
	order := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		idx := (t.DealerSeatNumber + i) % n
		s := t.Seats[idx]
		if s.Occupied() && !s.IsSittingOut && s.Stack > 0 {
			order = append(order, s.Number)
		}
	}
	return order
}

// blindSeats computes the small- and big-blind seats given the dealt
// order (clockwise starting left of dealer) and the dealer seat. In
// heads-up play the dealer posts the small blind.
func blindSeats(dealt []int, dealerSeat int) (sb, bb int) {
	if len(dealt) == 2 {
		if dealt[0] == dealerSeat {
			return dealt[0], dealt[1]
		}
		return dealt[1], dealt[0]
	}
	// dealt is already ordered starting left of the dealer, so dealt[0]
	// is the small blind and dealt[1] the big blind.
	return dealt[0], dealt[1]
}

func postBlind(t *table.Table, h *table.HandState, seatNum, amount int, now time.Time) {
	seat := t.Seats[seatNum]
	posted := amount
	if posted > seat.Stack {
		posted = seat.Stack
	}
	moveChips(h, seat, posted)
	recordAction(h, seat.Number, table.Call, posted, h.CurrentBettingRound, now)
	if seat.Stack == 0 {
		seat.IsAllIn = true
	}
}

// moveChips moves amount chips from seat into the pot.
func moveChips(h *table.HandState, seat *table.Seat, amount int) {
	if amount <= 0 {
		return
	}
	seat.Stack -= amount
	seat.CurrentBet += amount
	h.Pot += amount
	h.Contributed[seat.Number] += amount
}

// recordAction appends an audit-log entry and marks the hand's
// lastActionAt, regardless of whether chips moved.
func recordAction(h *table.HandState, seatNumber int, kind table.ActionKind, amount int, round table.BettingRound, now time.Time) {
	h.Actions = append(h.Actions, table.Action{
		SeatNumber: seatNumber,
		Kind:       kind,
		Amount:     amount,
		PotAfter:   h.Pot,
		Round:      round,
		At:         now,
	})
	h.LastActionAt = now
}

// buildRoundOrder returns, starting just after `after`, every seat in
// dealt that can still act this round (occupied, not folded, not all-in).
func buildRoundOrder(t *table.Table, dealt []int, after int) []int {
	n := len(dealt)
	afterIdx := -1
	for i, s := range dealt {
		if s == after {
			afterIdx = i
			break
		}
	}
	if afterIdx == -1 {
		afterIdx = n - 1
	}
	order := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		seatNum := dealt[(afterIdx+i)%n]
		s := t.Seats[seatNum]
		if !s.HasFolded && !s.IsAllIn {
			order = append(order, seatNum)
		}
	}
	return order
}

func countCanAct(t *table.Table, order []int) int {
	n := 0
	for _, seatNum := range order {
		s := t.Seats[seatNum]
		if !s.HasFolded && !s.IsAllIn {
			n++
		}
	}
	return n
}
