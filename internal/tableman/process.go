package tableman

import (
	"time"

	"github.com/holdemtable/server/internal/bot"
	"github.com/holdemtable/server/internal/hand"
	"github.com/holdemtable/server/internal/table"
)

// processTableLocked runs the ProcessTable pass of spec.md §4.6 against
// entry.table, with entry.mu already held. depth bounds the bot-only
// fast-forward recursion within a single tick.
func (m *Manager) processTableLocked(entry *tableEntry, depth int) {
	t := entry.table
	now := m.clock.Now()

	if t.CurrentHand == nil {
		if t.ActiveSeatCount() < 2 {
			return
		}
		clearSittingOutHumansWithFunds(t)
		if err := hand.StartHand(t, now); err != nil {
			m.logger.Error("start hand failed", "table", t.Config.ID, "err", err)
		}
		return
	}

	h := t.CurrentHand

	if h.Phase == table.Showdown {
		if now.Sub(h.LastActionAt) < m.showdownHold(t) {
			return
		}
		completedHand := h
		if err := hand.CompleteShowdown(t, now); err != nil {
			m.logger.Error("showdown failed, aborting hand", "table", t.Config.ID, "err", err)
			hand.Abort(t)
			return
		}
		m.recordCompletedHand(t, completedHand)
		if depth < m.timings.MaxRecurseDepth && allBots(t) {
			m.processTableLocked(entry, depth+1)
		}
		return
	}

	turnSeat, ok := h.CurrentTurnSeat()
	if !ok {
		return
	}
	seat := t.Seats[turnSeat]
	elapsed := now.Sub(h.LastActionAt)

	switch {
	case seat.Agent.IsBot():
		if elapsed < m.thinkDelay(t) {
			return
		}
		m.submitBotAction(entry, seat, now)
		if depth < m.timings.MaxRecurseDepth && allBots(t) {
			m.processTableLocked(entry, depth+1)
		}
	case elapsed >= m.timings.HumanTurnTimeout:
		autoActHuman(t, h, seat, now)
		if depth < m.timings.MaxRecurseDepth {
			m.processTableLocked(entry, depth+1)
		}
	}
}

// clearSittingOutHumansWithFunds brings back any human who was sitting
// out but now has chips, ahead of starting the next hand.
func clearSittingOutHumansWithFunds(t *table.Table) {
	for _, s := range t.Seats {
		if s.Occupied() && s.IsSittingOut && s.Stack > 0 && s.Agent != nil && !s.Agent.IsBot() {
			s.IsSittingOut = false
		}
	}
}

// submitBotAction asks the bot policy for a decision and submits it,
// falling back to check-if-possible-else-fold if the policy's choice is
// rejected, and force-folding as an absolute last resort so the tick
// always makes progress (spec.md §4.5).
func (m *Manager) submitBotAction(entry *tableEntry, seat *table.Seat, now time.Time) {
	t := entry.table
	h := t.CurrentHand

	decision := bot.Decide(entry.rng, seat.Agent.Type, seat.Number, h, t)
	if err := hand.ProcessAction(t, seat.Number, decision.Kind, decision.Amount, now); err == nil {
		return
	}

	canCheck := h.CurrentBet == seat.CurrentBet
	fallback := bot.SafeFallback(canCheck)
	if err := hand.ProcessAction(t, seat.Number, fallback.Kind, fallback.Amount, now); err == nil {
		return
	}

	m.logger.Error("bot fallback rejected, forcing fold", "table", t.Config.ID, "seat", seat.Number)
	_ = hand.ProcessAction(t, seat.Number, table.Fold, 0, now)
}

// autoActHuman enforces the 30s human turn timeout: check if nothing is
// owed, otherwise fold.
func autoActHuman(t *table.Table, h *table.HandState, seat *table.Seat, now time.Time) {
	if h.CurrentBet == seat.CurrentBet {
		_ = hand.ProcessAction(t, seat.Number, table.Check, 0, now)
		return
	}
	_ = hand.ProcessAction(t, seat.Number, table.Fold, 0, now)
}
