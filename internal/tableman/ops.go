package tableman

import (
	"fmt"
	"sort"
	"time"

	"github.com/holdemtable/server/internal/apperror"
	"github.com/holdemtable/server/internal/hand"
	"github.com/holdemtable/server/internal/table"
)

// LeaveResult is what LeaveAgent returns for the HTTP adapter to settle
// on-chain.
type LeaveResult struct {
	CashOut       int
	WalletAddress string
}

// LeaderboardRow is one agent's merged cumulative-plus-unrealized standing.
type LeaderboardRow struct {
	AgentID          string
	DisplayName      string
	CumulativeProfit int
	UnrealizedDelta  int
	TotalProfit      int
}

// ListTables returns a summary of every known table.
func (m *Manager) ListTables() []TableSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]TableSummary, 0, len(m.tables))
	for _, e := range m.tables {
		e.mu.Lock()
		out = append(out, summarize(e.table))
		e.mu.Unlock()
	}
	return out
}

// GetTable renders the full view of a table for viewerAgentID, masking
// hole cards per spec.md §4.6.
func (m *Manager) GetTable(tableID, viewerAgentID string) (TableView, error) {
	e, err := m.entry(tableID)
	if err != nil {
		return TableView{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return render(e.table, viewerAgentID), nil
}

// AddBot seats a fresh bot of the given strategy in the first empty seat.
func (m *Manager) AddBot(tableID string, strategy table.AgentType) error {
	e, err := m.entry(tableID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.table
	seatNum, ok := firstEmptySeat(t)
	if !ok {
		return fmt.Errorf("tableman: %w: table %s is full", apperror.ErrValidation, tableID)
	}
	agent := &table.Agent{
		ID:          fmt.Sprintf("%s-bot-%d-%d", tableID, seatNum, t.HandCount),
		DisplayName: fmt.Sprintf("%s-bot", strategy.String()),
		Type:        strategy,
	}
	buyIn := (t.Config.MinBuyIn + t.Config.MaxBuyIn) / 2
	if err := t.SeatAgent(seatNum, agent, buyIn, false); err != nil {
		return fmt.Errorf("tableman: %w: %v", apperror.ErrValidation, err)
	}
	return nil
}

// SitAgent seats a new human agent at seatNumber with buyIn chips. It
// starts sitting out so the tick loop deals it in only on the next hand
// boundary (spec.md §4.6).
func (m *Manager) SitAgent(tableID string, seatNumber int, agentID, displayName string, buyIn int, walletAddress string) error {
	e, err := m.entry(tableID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.table
	if t.SeatOf(agentID) != nil {
		return fmt.Errorf("tableman: %w: agent %s already seated at %s", apperror.ErrValidation, agentID, tableID)
	}
	agent := &table.Agent{ID: agentID, DisplayName: displayName, Type: table.Human, WalletAddress: walletAddress}
	if err := t.SeatAgent(seatNumber, agent, buyIn, true); err != nil {
		return fmt.Errorf("tableman: %w: %v", apperror.ErrValidation, err)
	}
	return nil
}

// StandAgent marks agentID sitting out; it keeps its seat and stack but is
// skipped for future hands until ResumeAgent.
func (m *Manager) StandAgent(tableID, agentID string) error {
	return m.setSittingOut(tableID, agentID, true)
}

// ResumeAgent clears the sitting-out flag so agentID is dealt into the
// next hand.
func (m *Manager) ResumeAgent(tableID, agentID string) error {
	return m.setSittingOut(tableID, agentID, false)
}

func (m *Manager) setSittingOut(tableID, agentID string, sittingOut bool) error {
	e, err := m.entry(tableID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	seat := e.table.SeatOf(agentID)
	if seat == nil {
		return fmt.Errorf("tableman: %w: agent %s not seated at %s", apperror.ErrUnavailable, agentID, tableID)
	}
	seat.IsSittingOut = sittingOut
	return nil
}

// SubmitAction validates that it is agentID's turn and delegates to the
// hand package. now lets tests and the HTTP layer both inject the clock's
// time rather than reading it twice.
func (m *Manager) SubmitAction(tableID, agentID string, kind table.ActionKind, amount int, now time.Time) error {
	e, err := m.entry(tableID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.table
	seat := t.SeatOf(agentID)
	if seat == nil {
		return fmt.Errorf("tableman: %w: agent %s not seated at %s", apperror.ErrUnavailable, agentID, tableID)
	}
	if t.CurrentHand == nil {
		return fmt.Errorf("tableman: %w: no hand in progress at %s", apperror.ErrProtocolTiming, tableID)
	}
	turnSeat, ok := t.CurrentHand.CurrentTurnSeat()
	if !ok || turnSeat != seat.Number {
		return fmt.Errorf("tableman: %w: it is not agent %s's turn", apperror.ErrProtocolTiming, agentID)
	}
	return hand.ProcessAction(t, seat.Number, kind, amount, now)
}

// RebuyAgent adds amount to agentID's stack. Only legal between hands, and
// only up to the table's max buy-in (spec.md §4.6).
func (m *Manager) RebuyAgent(tableID, agentID string, amount int) error {
	e, err := m.entry(tableID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.table
	if t.CurrentHand != nil {
		return fmt.Errorf("tableman: %w: cannot rebuy mid-hand at %s", apperror.ErrProtocolTiming, tableID)
	}
	seat := t.SeatOf(agentID)
	if seat == nil {
		return fmt.Errorf("tableman: %w: agent %s not seated at %s", apperror.ErrUnavailable, agentID, tableID)
	}
	if amount <= 0 {
		return fmt.Errorf("tableman: %w: rebuy amount must be positive", apperror.ErrValidation)
	}
	if seat.Stack+amount > t.Config.MaxBuyIn {
		return fmt.Errorf("tableman: %w: rebuy would exceed max buy-in of %d", apperror.ErrValidation, t.Config.MaxBuyIn)
	}
	seat.Stack += amount
	seat.BuyIn += amount
	return nil
}

// LeaveAgent removes agentID from the table, force-folding it first if the
// departure happens mid-hand and it has not already folded.
func (m *Manager) LeaveAgent(tableID, agentID string, now time.Time) (LeaveResult, error) {
	e, err := m.entry(tableID)
	if err != nil {
		return LeaveResult{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.table
	seat := t.SeatOf(agentID)
	if seat == nil {
		return LeaveResult{}, fmt.Errorf("tableman: %w: agent %s not seated at %s", apperror.ErrUnavailable, agentID, tableID)
	}

	if t.CurrentHand != nil && !seat.HasFolded && !seat.IsAllIn {
		if turnSeat, ok := t.CurrentHand.CurrentTurnSeat(); ok && turnSeat == seat.Number {
			_ = hand.ProcessAction(t, seat.Number, table.Fold, 0, now)
		} else {
			seat.HasFolded = true
		}
	}

	cashOut := seat.Stack
	agent, err := t.RemoveAgent(seat.Number)
	if err != nil {
		return LeaveResult{}, fmt.Errorf("tableman: %w: %v", apperror.ErrInvariant, err)
	}
	if t.CurrentHand != nil {
		// RemoveAgent resets the seat; keep the emptied seat out of the
		// rest of this hand.
		seat.HasFolded = true
	}
	return LeaveResult{CashOut: cashOut, WalletAddress: agent.WalletAddress}, nil
}

// Leaderboard returns every seated agent's cumulative profit plus the
// unrealized delta of the current in-progress hand only, per spec.md
// §4.6's double-counting note. Rows are sorted by total profit, highest
// first, ties broken by agent id.
func (m *Manager) Leaderboard() []LeaderboardRow {
	m.mu.RLock()
	entries := make([]*tableEntry, 0, len(m.tables))
	for _, e := range m.tables {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	rows := make(map[string]LeaderboardRow)
	for _, e := range entries {
		e.mu.Lock()
		t := e.table
		for _, s := range t.Seats {
			if !s.Occupied() {
				continue
			}
			unrealized := 0
			if t.CurrentHand != nil {
				if start, ok := t.CurrentHand.StartingStack(s.Number); ok {
					unrealized = s.Stack - start
				}
			}
			row := rows[s.Agent.ID]
			row.AgentID = s.Agent.ID
			row.DisplayName = s.Agent.DisplayName
			row.CumulativeProfit += s.Agent.CumulativeProfit
			row.UnrealizedDelta += unrealized
			rows[s.Agent.ID] = row
		}
		e.mu.Unlock()
	}

	out := make([]LeaderboardRow, 0, len(rows))
	for _, row := range rows {
		row.TotalProfit = row.CumulativeProfit + row.UnrealizedDelta
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalProfit != out[j].TotalProfit {
			return out[i].TotalProfit > out[j].TotalProfit
		}
		return out[i].AgentID < out[j].AgentID
	})
	return out
}

func firstEmptySeat(t *table.Table) (int, bool) {
	for _, s := range t.Seats {
		if !s.Occupied() {
			return s.Number, true
		}
	}
	return 0, false
}
