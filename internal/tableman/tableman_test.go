package tableman

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/holdemtable/server/internal/apperror"
	"github.com/holdemtable/server/internal/config"
	"github.com/holdemtable/server/internal/escrow"
	"github.com/holdemtable/server/internal/persist"
	"github.com/holdemtable/server/internal/table"
)

func testLogger() *log.Logger {
	l := log.New(io.Discard)
	l.SetLevel(log.FatalLevel)
	return l
}

func newTestManager(t *testing.T, cfg config.TableConfig, timings Timings) *Manager {
	t.Helper()
	store := persist.NewInMemoryStore()
	queue := persist.NewQueue(store, testLogger(), 64)
	m, err := New(context.Background(), []config.TableConfig{cfg}, quartz.NewMock(t), testLogger(), queue, store, escrow.NewMock(), timings)
	require.NoError(t, err)
	return m
}

func botOnlyConfig() config.TableConfig {
	return config.TableConfig{Name: "t1", SmallBlind: 1, BigBlind: 2, MinBuyIn: 40, MaxBuyIn: 200, MaxSeats: 6}
}

func instantTimings() Timings {
	return Timings{
		TickPeriod:          time.Millisecond,
		BotThinkDelay:       0,
		BotOnlyThinkDelay:   0,
		ShowdownHoldHuman:   0,
		ShowdownHoldBotOnly: 0,
		HumanTurnTimeout:    30 * time.Second,
		MaxRecurseDepth:     50,
	}
}

func TestNewSeedsThreeBotsOnASixSeatTable(t *testing.T) {
	m := newTestManager(t, botOnlyConfig(), instantTimings())
	summaries := m.ListTables()
	require.Len(t, summaries, 1)
	require.Equal(t, 3, summaries[0].OccupiedSeats)
	require.Equal(t, "t1", summaries[0].ID)
}

func TestBotOnlyTableCompletesManyHandsAcrossTicks(t *testing.T) {
	m := newTestManager(t, botOnlyConfig(), instantTimings())
	entry := m.tables["t1"]

	ctx := context.Background()
	for i := 0; i < 30 && entry.table.HandCount < 10; i++ {
		m.Tick(ctx)
	}

	require.GreaterOrEqual(t, entry.table.HandCount, 10)
}

func TestGetTableMasksHoleCardsFromNonViewer(t *testing.T) {
	m := newTestManager(t, botOnlyConfig(), instantTimings())
	entry := m.tables["t1"]
	ctx := context.Background()

	for i := 0; i < 10 && entry.table.CurrentHand == nil; i++ {
		m.Tick(ctx)
	}
	require.NotNil(t, entry.table.CurrentHand, "expected a hand to be dealt")

	view, err := m.GetTable("t1", "nobody-is-this-agent")
	require.NoError(t, err)
	for _, sv := range view.Seats {
		require.Nil(t, sv.HoleCards, "hole cards must be hidden from a non-participant viewer mid-hand")
	}
}

func TestGetTableUnknownTableIsUnavailable(t *testing.T) {
	m := newTestManager(t, botOnlyConfig(), instantTimings())
	_, err := m.GetTable("does-not-exist", "a0")
	require.ErrorIs(t, err, apperror.ErrUnavailable)
}

func TestSitAgentRejectsDuplicateSeatForSameAgent(t *testing.T) {
	cfg := config.TableConfig{Name: "t1", SmallBlind: 1, BigBlind: 2, MinBuyIn: 40, MaxBuyIn: 200, MaxSeats: 2}
	m := newTestManager(t, cfg, instantTimings())
	// The 2-seat table has only two bots seeded; remove one to make room.
	entry := m.tables["t1"]
	entry.table.Seats[1].Agent = nil
	entry.table.Seats[1].Stack = 0

	require.NoError(t, m.SitAgent("t1", 1, "human-1", "Alice", 100, "0xalice"))
	err := m.SitAgent("t1", 1, "human-1", "Alice", 100, "0xalice")
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestRebuyAgentRejectsMidHand(t *testing.T) {
	m := newTestManager(t, botOnlyConfig(), instantTimings())
	entry := m.tables["t1"]
	ctx := context.Background()
	for i := 0; i < 10 && entry.table.CurrentHand == nil; i++ {
		m.Tick(ctx)
	}
	require.NotNil(t, entry.table.CurrentHand)

	var anySeated string
	for _, s := range entry.table.Seats {
		if s.Occupied() {
			anySeated = s.Agent.ID
			break
		}
	}
	err := m.RebuyAgent("t1", anySeated, 50)
	require.ErrorIs(t, err, apperror.ErrProtocolTiming)
}

func TestRebuyAgentRejectsAmountOverMaxBuyIn(t *testing.T) {
	cfg := config.TableConfig{Name: "t1", SmallBlind: 1, BigBlind: 2, MinBuyIn: 40, MaxBuyIn: 200, MaxSeats: 6}
	m := newTestManager(t, cfg, instantTimings())
	entry := m.tables["t1"]
	seat := entry.table.Seats[0]
	require.True(t, seat.Occupied())

	err := m.RebuyAgent("t1", seat.Agent.ID, 1000)
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestLeaveAgentForceFoldsMidHandWhenItIsTheirTurn(t *testing.T) {
	m := newTestManager(t, botOnlyConfig(), instantTimings())
	entry := m.tables["t1"]
	ctx := context.Background()
	for i := 0; i < 10 && entry.table.CurrentHand == nil; i++ {
		m.Tick(ctx)
	}
	h := entry.table.CurrentHand
	require.NotNil(t, h)

	turnSeatNum, ok := h.CurrentTurnSeat()
	require.True(t, ok)
	turnAgentID := entry.table.Seats[turnSeatNum].Agent.ID
	stackBeforeLeaving := entry.table.Seats[turnSeatNum].Stack

	result, err := m.LeaveAgent("t1", turnAgentID, time.Now())
	require.NoError(t, err)
	require.Equal(t, stackBeforeLeaving, result.CashOut)
	require.Nil(t, entry.table.Seats[turnSeatNum].Agent, "seat must be vacated after leaving")
}

func TestLeaveAgentUnknownAgentIsUnavailable(t *testing.T) {
	m := newTestManager(t, botOnlyConfig(), instantTimings())
	_, err := m.LeaveAgent("t1", "ghost-agent", time.Now())
	require.ErrorIs(t, err, apperror.ErrUnavailable)
}

func TestLeaderboardSumsCumulativeAndUnrealizedAcrossSeats(t *testing.T) {
	m := newTestManager(t, botOnlyConfig(), instantTimings())
	entry := m.tables["t1"]
	ctx := context.Background()
	for i := 0; i < 10 && entry.table.CurrentHand == nil; i++ {
		m.Tick(ctx)
	}
	require.NotNil(t, entry.table.CurrentHand)

	rows := m.Leaderboard()
	require.Len(t, rows, 3)
	for _, row := range rows {
		require.Equal(t, row.CumulativeProfit+row.UnrealizedDelta, row.TotalProfit)
	}
}

func TestSubmitActionRejectsWhenNotAgentsTurn(t *testing.T) {
	m := newTestManager(t, botOnlyConfig(), instantTimings())
	entry := m.tables["t1"]
	ctx := context.Background()
	for i := 0; i < 10 && entry.table.CurrentHand == nil; i++ {
		m.Tick(ctx)
	}
	h := entry.table.CurrentHand
	require.NotNil(t, h)

	turnSeatNum, ok := h.CurrentTurnSeat()
	require.True(t, ok)

	var notTurnAgentID string
	for _, s := range entry.table.Seats {
		if s.Occupied() && s.Number != turnSeatNum {
			notTurnAgentID = s.Agent.ID
			break
		}
	}
	require.NotEmpty(t, notTurnAgentID)

	err := m.SubmitAction("t1", notTurnAgentID, table.Fold, 0, time.Now())
	require.ErrorIs(t, err, apperror.ErrProtocolTiming)
}

func TestAddBotRejectsFullTable(t *testing.T) {
	cfg := config.TableConfig{Name: "t1", SmallBlind: 1, BigBlind: 2, MinBuyIn: 40, MaxBuyIn: 200, MaxSeats: 2}
	m := newTestManager(t, cfg, instantTimings())
	err := m.AddBot("t1", table.Fish)
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestHumanSeatAutoFoldsAfterTurnTimeout(t *testing.T) {
	cfg := config.TableConfig{Name: "t1", SmallBlind: 1, BigBlind: 2, MinBuyIn: 40, MaxBuyIn: 200, MaxSeats: 2}
	timings := instantTimings()
	timings.HumanTurnTimeout = 30 * time.Second
	m := newTestManager(t, cfg, timings)

	entry := m.tables["t1"]
	entry.table.Seats[0].Agent = nil
	entry.table.Seats[0].Stack = 0
	entry.table.Seats[1].Agent = nil
	entry.table.Seats[1].Stack = 0

	require.NoError(t, m.SitAgent("t1", 0, "human-0", "Alice", 100, ""))
	require.NoError(t, m.SitAgent("t1", 1, "human-1", "Bob", 100, ""))
	require.NoError(t, m.ResumeAgent("t1", "human-0"))
	require.NoError(t, m.ResumeAgent("t1", "human-1"))

	mockClock := m.clock.(*quartz.Mock)
	ctx := context.Background()

	m.Tick(ctx)
	h := entry.table.CurrentHand
	require.NotNil(t, h, "expected a hand to start with two resumed humans")

	actionsBefore := len(h.Actions)

	mockClock.Advance(31 * time.Second)
	m.Tick(ctx)

	require.Greater(t, len(h.Actions), actionsBefore, "the timed-out human's turn must be auto-resolved")
}

func TestAllBotsReportsFalseWhenAnyHumanIsSeated(t *testing.T) {
	m := newTestManager(t, botOnlyConfig(), instantTimings())
	entry := m.tables["t1"]
	require.True(t, allBots(entry.table))

	entry.table.Seats[0].Agent = &table.Agent{ID: "human-0", Type: table.Human}
	require.False(t, allBots(entry.table))
}
