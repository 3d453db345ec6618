package hand

import (
	"fmt"
	"time"

	"github.com/holdemtable/server/internal/apperror"
	"github.com/holdemtable/server/internal/table"
)

// ProcessAction applies a single seat's move to the hand in progress at t.
// It is valid only when seatNumber is the current turn seat and that seat
// is neither folded nor all-in.
func ProcessAction(t *table.Table, seatNumber int, kind table.ActionKind, amount int, now time.Time) error {
	h := t.CurrentHand
	if h == nil || !isActingPhase(h.Phase) {
		return fmt.Errorf("hand: %w: no hand accepting actions", apperror.ErrProtocolTiming)
	}

	turnSeat, ok := h.CurrentTurnSeat()
	if !ok || turnSeat != seatNumber {
		return fmt.Errorf("hand: %w: seat %d is not the current turn", apperror.ErrProtocolTiming, seatNumber)
	}

	seat := t.Seats[seatNumber]
	if seat.HasFolded || seat.IsAllIn {
		return fmt.Errorf("hand: %w: seat %d cannot act", apperror.ErrProtocolTiming, seatNumber)
	}

	// Preflop, a plain bet is really a raise: the big blind is an
	// outstanding bet.
	if h.CurrentBettingRound == table.RoundPreflop && kind == table.Bet {
		kind = table.Raise
	}

	var err error
	switch kind {
	case table.Fold:
		err = applyFold(h, seat, now)
	case table.Check:
		err = applyCheck(h, seat, now)
	case table.Call:
		err = applyCall(h, seat, now)
	case table.Bet:
		err = applyBet(t, h, seat, amount, now)
	case table.Raise:
		err = applyRaise(t, h, seat, amount, now)
	case table.AllIn:
		err = applyAllIn(t, h, seat, now)
	default:
		err = fmt.Errorf("hand: %w: unknown action kind", apperror.ErrValidation)
	}
	if err != nil {
		return err
	}

	seat.HasActed = true

	if countNonFolded(t, h) <= 1 {
		awardUncontestedPot(t, h, now)
		return nil
	}

	if isRoundComplete(t, h) {
		advanceRound(t, h, now)
	} else {
		advanceTurn(t, h)
	}
	return nil
}

func isActingPhase(p table.Phase) bool {
	switch p {
	case table.Preflop, table.Flop, table.Turn, table.River:
		return true
	default:
		return false
	}
}

func applyFold(h *table.HandState, seat *table.Seat, now time.Time) error {
	seat.HasFolded = true
	recordAction(h, seat.Number, table.Fold, 0, h.CurrentBettingRound, now)
	return nil
}

func applyCheck(h *table.HandState, seat *table.Seat, now time.Time) error {
	if h.CurrentBet != seat.CurrentBet {
		return fmt.Errorf("hand: %w: cannot check facing a bet", apperror.ErrValidation)
	}
	recordAction(h, seat.Number, table.Check, 0, h.CurrentBettingRound, now)
	return nil
}

func applyCall(h *table.HandState, seat *table.Seat, now time.Time) error {
	toCall := h.CurrentBet - seat.CurrentBet
	if toCall <= 0 {
		return fmt.Errorf("hand: %w: nothing to call", apperror.ErrValidation)
	}
	amount := toCall
	if amount > seat.Stack {
		amount = seat.Stack
	}
	moveChips(h, seat, amount)
	recordAction(h, seat.Number, table.Call, amount, h.CurrentBettingRound, now)
	if seat.Stack == 0 {
		seat.IsAllIn = true
	}
	return nil
}

func applyBet(t *table.Table, h *table.HandState, seat *table.Seat, amount int, now time.Time) error {
	if h.CurrentBettingRound == table.RoundPreflop {
		return fmt.Errorf("hand: %w: bet not allowed preflop", apperror.ErrValidation)
	}
	if h.CurrentBet != 0 {
		return fmt.Errorf("hand: %w: bet not allowed, there is already a bet to call", apperror.ErrValidation)
	}
	isShoveForLess := amount == seat.Stack && amount < t.Config.BigBlind
	if amount < t.Config.BigBlind && !isShoveForLess {
		return fmt.Errorf("hand: %w: bet must be at least the big blind", apperror.ErrValidation)
	}
	if amount <= 0 || amount > seat.Stack {
		return fmt.Errorf("hand: %w: invalid bet amount", apperror.ErrValidation)
	}

	moveChips(h, seat, amount)
	recordAction(h, seat.Number, table.Bet, amount, h.CurrentBettingRound, now)
	h.CurrentBet = seat.CurrentBet

	if amount >= t.Config.BigBlind {
		h.MinRaise = amount
		resetOthersHasActed(t, h, seat.Number)
	}
	if seat.Stack == 0 {
		seat.IsAllIn = true
	}
	return nil
}

func applyRaise(t *table.Table, h *table.HandState, seat *table.Seat, amount int, now time.Time) error {
	if amount <= h.CurrentBet {
		return fmt.Errorf("hand: %w: raise must strictly exceed the current bet", apperror.ErrValidation)
	}
	isAllIn := amount == seat.CurrentBet+seat.Stack
	if amount < h.CurrentBet+h.MinRaise && !isAllIn {
		return fmt.Errorf("hand: %w: raise below minimum raise size", apperror.ErrValidation)
	}
	committedNow := amount - seat.CurrentBet
	if committedNow > seat.Stack {
		return fmt.Errorf("hand: %w: raise exceeds stack", apperror.ErrValidation)
	}

	raiseIncrement := amount - h.CurrentBet
	standardRaise := raiseIncrement >= h.MinRaise

	moveChips(h, seat, committedNow)
	recordAction(h, seat.Number, table.Raise, committedNow, h.CurrentBettingRound, now)
	h.CurrentBet = seat.CurrentBet

	if standardRaise {
		h.MinRaise = raiseIncrement
		resetOthersHasActed(t, h, seat.Number)
	}
	if seat.Stack == 0 {
		seat.IsAllIn = true
	}
	return nil
}

func applyAllIn(t *table.Table, h *table.HandState, seat *table.Seat, now time.Time) error {
	if seat.Stack <= 0 {
		return fmt.Errorf("hand: %w: seat has no chips to push", apperror.ErrValidation)
	}
	amount := seat.Stack
	moveChips(h, seat, amount)
	recordAction(h, seat.Number, table.AllIn, amount, h.CurrentBettingRound, now)
	seat.IsAllIn = true

	if seat.CurrentBet > h.CurrentBet {
		raiseIncrement := seat.CurrentBet - h.CurrentBet
		standardRaise := raiseIncrement >= h.MinRaise
		h.CurrentBet = seat.CurrentBet
		if standardRaise {
			h.MinRaise = raiseIncrement
			resetOthersHasActed(t, h, seat.Number)
		}
	}
	return nil
}

// resetOthersHasActed reopens the round for every seat in the action
// order other than seatNumber, provided they are still live.
func resetOthersHasActed(t *table.Table, h *table.HandState, seatNumber int) {
	for _, s := range h.ActivePlayerOrder {
		if s == seatNumber {
			continue
		}
		seat := t.Seats[s]
		if !seat.HasFolded && !seat.IsAllIn {
			seat.HasActed = false
		}
	}
}

func countNonFolded(t *table.Table, h *table.HandState) int {
	n := 0
	for _, s := range h.DealtOrder {
		if !t.Seats[s].HasFolded {
			n++
		}
	}
	return n
}

// isRoundComplete reports whether every seat still live in the action
// order has settled this round: folded, all-in, or acted. A short all-in
// raise does not reopen action, so "acted" alone (not a currentBet
// comparison) is the completion signal once a seat's flag is set.
func isRoundComplete(t *table.Table, h *table.HandState) bool {
	for _, seatNum := range h.ActivePlayerOrder {
		s := t.Seats[seatNum]
		if s.HasFolded || s.IsAllIn {
			continue
		}
		if !s.HasActed {
			return false
		}
	}
	return true
}

// advanceTurn moves CurrentPlayerIndex to the next seat in
// ActivePlayerOrder that can still act.
func advanceTurn(t *table.Table, h *table.HandState) {
	n := len(h.ActivePlayerOrder)
	for i := 1; i <= n; i++ {
		idx := (h.CurrentPlayerIndex + i) % n
		s := t.Seats[h.ActivePlayerOrder[idx]]
		if !s.HasFolded && !s.IsAllIn {
			h.CurrentPlayerIndex = idx
			return
		}
	}
}

// awardUncontestedPot finishes the hand immediately when only one
// non-folded player remains; they win the whole pot without showing.
func awardUncontestedPot(t *table.Table, h *table.HandState, now time.Time) {
	var winnerSeat int
	for _, s := range h.DealtOrder {
		if !t.Seats[s].HasFolded {
			winnerSeat = s
			break
		}
	}
	seat := t.Seats[winnerSeat]
	seat.Stack += h.Pot
	h.Winners = []table.Winner{{
		AgentID:   seat.Agent.ID,
		AgentName: seat.Agent.DisplayName,
		Amount:    h.Pot,
		HandName:  "Last player standing",
	}}
	h.Phase = table.Showdown
	h.LastActionAt = now
}
