package hand

import (
	"fmt"
	"sort"
	"time"

	"github.com/holdemtable/server/internal/apperror"
	"github.com/holdemtable/server/internal/card"
	"github.com/holdemtable/server/internal/evaluator"
	"github.com/holdemtable/server/internal/table"
)

// CompleteShowdown finalizes a hand once its display hold has elapsed. If
// the hand was not already decided by an uncontested fold, it computes
// side pots, evaluates every eligible hand, and pays out the winners.
func CompleteShowdown(t *table.Table, now time.Time) error {
	h := t.CurrentHand
	if h == nil || h.Phase != table.Showdown {
		return fmt.Errorf("hand: %w: no hand waiting at showdown", apperror.ErrProtocolTiming)
	}

	if len(h.Winners) == 0 {
		refundUncalledBet(t, h)
		pots := computeSidePots(t, h)
		h.SidePots = pots
		payoutPots(t, h, pots)
	}

	finalize(t, h, now)
	return nil
}

// refundUncalledBet returns the portion of the single largest contributor's
// stake that no other player could ever cover: nobody is left to contest
// it, so it never enters a pot.
func refundUncalledBet(t *table.Table, h *table.HandState) {
	top, second := -1, -1
	topSeat, topCount := -1, 0
	for _, seatNum := range h.DealtOrder {
		c := h.Contributed[seatNum]
		if c <= 0 {
			continue
		}
		switch {
		case c > top:
			second = top
			top = c
			topSeat = seatNum
			topCount = 1
		case c == top:
			topCount++
		case c > second:
			second = c
		}
	}
	if topCount != 1 || top <= second {
		return
	}
	excess := top - max(second, 0)
	t.Seats[topSeat].Stack += excess
	h.Pot -= excess
	h.Contributed[topSeat] = second
}

// computeSidePots derives main and side pots from every dealt seat's
// total contribution this hand, including folded seats (their chips stay
// in whichever pots their contribution level covers, but they are not
// eligible to win any of them).
func computeSidePots(t *table.Table, h *table.HandState) []table.SidePot {
	levelSet := make(map[int]bool)
	for _, seatNum := range h.DealtOrder {
		if c := h.Contributed[seatNum]; c > 0 {
			levelSet[c] = true
		}
	}
	levels := make([]int, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	pots := make([]table.SidePot, 0, len(levels))
	prev := 0
	for _, level := range levels {
		var contributors, eligible []int
		for _, seatNum := range h.DealtOrder {
			if h.Contributed[seatNum] >= level {
				contributors = append(contributors, seatNum)
				if !t.Seats[seatNum].HasFolded {
					eligible = append(eligible, seatNum)
				}
			}
		}
		amount := (level - prev) * len(contributors)
		if amount > 0 {
			pots = append(pots, table.SidePot{Amount: amount, Eligible: eligible})
		}
		prev = level
	}

	if len(pots) > 0 {
		sum := 0
		for _, p := range pots {
			sum += p.Amount
		}
		if diff := h.Pot - sum; diff != 0 {
			pots[len(pots)-1].Amount += diff
		}
	}
	return pots
}

// payoutPots evaluates each pot's eligible hands and splits it among the
// tied winners, crediting the earliest seat in dealt order with any
// odd-chip remainder.
func payoutPots(t *table.Table, h *table.HandState, pots []table.SidePot) {
	carry := 0
	for _, pot := range pots {
		amount := pot.Amount + carry
		carry = 0

		eligible := inDealtOrder(h.DealtOrder, pot.Eligible)
		if len(eligible) == 0 {
			carry = amount
			continue
		}

		type contender struct {
			seatNum int
			hand    evaluator.EvaluatedHand
		}
		contenders := make([]contender, 0, len(eligible))
		for _, seatNum := range eligible {
			seat := t.Seats[seatNum]
			cards := append([]card.Card{}, seat.HoleCards[0], seat.HoleCards[1])
			cards = append(cards, h.CommunityCards...)
			contenders = append(contenders, contender{seatNum: seatNum, hand: evaluator.Evaluate(cards)})
		}

		best := contenders[0].hand
		for _, c := range contenders[1:] {
			if evaluator.Compare(c.hand, best) > 0 {
				best = c.hand
			}
		}

		var tied []contender
		for _, c := range contenders {
			if evaluator.Compare(c.hand, best) == 0 {
				tied = append(tied, c)
			}
		}

		share := amount / len(tied)
		remainder := amount % len(tied)
		for i, c := range tied {
			payout := share
			if i == 0 {
				payout += remainder
			}
			seat := t.Seats[c.seatNum]
			seat.Stack += payout
			h.Winners = append(h.Winners, table.Winner{
				AgentID:   seat.Agent.ID,
				AgentName: seat.Agent.DisplayName,
				Amount:    payout,
				HandName:  c.hand.Name,
			})
		}
	}
}

// inDealtOrder returns the subset of dealtOrder present in eligible,
// preserving dealtOrder's clockwise-from-dealer sequence.
func inDealtOrder(dealtOrder, eligible []int) []int {
	set := make(map[int]bool, len(eligible))
	for _, s := range eligible {
		set[s] = true
	}
	out := make([]int, 0, len(eligible))
	for _, s := range dealtOrder {
		if set[s] {
			out = append(out, s)
		}
	}
	return out
}

// finalize updates lifetime counters, archives the hand, handles
// bust-outs, and clears the table's current hand.
func finalize(t *table.Table, h *table.HandState, now time.Time) {
	h.Phase = table.Complete
	h.CompletedAt = now

	for _, seatNum := range h.DealtOrder {
		if agent := t.Seats[seatNum].Agent; agent != nil {
			agent.HandsPlayed++
		}
	}
	for _, w := range h.Winners {
		if seat := t.SeatOf(w.AgentID); seat != nil && seat.Agent != nil {
			seat.Agent.HandsWon++
		}
	}

	t.ArchiveHand(&table.HandSnapshot{
		HandNumber:     h.HandNumber,
		StartedAt:      h.StartedAt,
		CompletedAt:    h.CompletedAt,
		CommunityCards: h.CommunityCards,
		Pot:            h.Pot,
		Winners:        h.Winners,
		Actions:        h.Actions,
	})

	for _, seatNum := range h.DealtOrder {
		seat := t.Seats[seatNum]
		if seat.Stack > 0 || seat.Agent == nil {
			continue
		}
		if seat.Agent.IsBot() {
			seat.BuyIn += t.Config.MaxBuyIn
			seat.Stack = t.Config.MaxBuyIn
		} else {
			seat.IsSittingOut = true
		}
	}

	t.CurrentHand = nil
}

// Abort is the tick loop's per-table recovery guard: on an unexpected
// failure mid-hand it returns every seat's in-round currentBet to its
// stack and clears the hand, preserving chip conservation.
func Abort(t *table.Table) {
	h := t.CurrentHand
	if h == nil {
		return
	}
	for _, seatNum := range h.DealtOrder {
		seat := t.Seats[seatNum]
		seat.Stack += seat.CurrentBet
		seat.CurrentBet = 0
	}
	t.CurrentHand = nil
}
