package tableman

import (
	"github.com/holdemtable/server/internal/card"
	"github.com/holdemtable/server/internal/table"
)

// TableSummary is ListTables' per-table row.
type TableSummary struct {
	ID                string
	Name              string
	SmallBlind        int
	BigBlind          int
	MaxSeats          int
	OccupiedSeats     int
	CurrentHandNumber int
	Phase             string
}

// SeatView is one seat in a rendered TableView. HoleCards is nil unless
// the viewer is entitled to see it: their own seat, or any non-folded
// seat once the hand has reached showdown.
type SeatView struct {
	Number       int
	AgentID      string
	DisplayName  string
	Stack        int
	CurrentBet   int
	HoleCards    []card.Card
	IsSittingOut bool
	HasFolded    bool
	IsAllIn      bool
}

// TableView is GetTable's full rendered view of a table for one viewer.
type TableView struct {
	ID               string
	Name             string
	SmallBlind       int
	BigBlind         int
	Seats            []SeatView
	CommunityCards   []card.Card
	Pot              int
	Phase            string
	HandNumber       int
	DealerSeatNumber int
	CurrentTurnSeat  int
	HasCurrentTurn   bool
}

func summarize(t *table.Table) TableSummary {
	phase := "waiting"
	if t.CurrentHand != nil {
		phase = t.CurrentHand.Phase.String()
	}
	return TableSummary{
		ID: t.Config.ID, Name: t.Config.Name,
		SmallBlind: t.Config.SmallBlind, BigBlind: t.Config.BigBlind,
		MaxSeats: t.Config.MaxSeats, OccupiedSeats: countOccupied(t),
		CurrentHandNumber: t.HandCount, Phase: phase,
	}
}

func countOccupied(t *table.Table) int {
	n := 0
	for _, s := range t.Seats {
		if s.Occupied() {
			n++
		}
	}
	return n
}

// render builds a TableView with hole cards masked for every seat except
// viewerAgentID's own and, once the hand is at or past showdown, every
// seat that did not fold.
func render(t *table.Table, viewerAgentID string) TableView {
	v := TableView{
		ID: t.Config.ID, Name: t.Config.Name,
		SmallBlind: t.Config.SmallBlind, BigBlind: t.Config.BigBlind,
		HandNumber: t.HandCount, DealerSeatNumber: t.DealerSeatNumber,
	}

	revealAll := false
	if h := t.CurrentHand; h != nil {
		v.CommunityCards = h.CommunityCards
		v.Pot = h.Pot
		v.Phase = h.Phase.String()
		if turn, ok := h.CurrentTurnSeat(); ok {
			v.CurrentTurnSeat = turn
			v.HasCurrentTurn = true
		}
		revealAll = h.Phase == table.Showdown || h.Phase == table.Complete
	} else {
		v.Phase = "waiting"
	}

	for _, s := range t.Seats {
		if !s.Occupied() {
			continue
		}
		sv := SeatView{
			Number: s.Number, Stack: s.Stack, CurrentBet: s.CurrentBet,
			IsSittingOut: s.IsSittingOut, HasFolded: s.HasFolded, IsAllIn: s.IsAllIn,
		}
		if s.Agent != nil {
			sv.AgentID = s.Agent.ID
			sv.DisplayName = s.Agent.DisplayName
		}
		if s.HasCards && (s.Agent != nil && s.Agent.ID == viewerAgentID || (revealAll && !s.HasFolded)) {
			sv.HoleCards = []card.Card{s.HoleCards[0], s.HoleCards[1]}
		}
		v.Seats = append(v.Seats, sv)
	}
	return v
}
